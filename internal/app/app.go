package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/variantify/internal/ctxlog"
	"github.com/specialistvlad/variantify/internal/diff"
	"github.com/specialistvlad/variantify/internal/hclscene"
	"github.com/specialistvlad/variantify/internal/reconcile"
	"github.com/specialistvlad/variantify/internal/report"
	"github.com/specialistvlad/variantify/internal/scene"
	"github.com/zclconf/go-cty/cty"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logW   io.Writer
	logger *slog.Logger
	config *Config
}

// NewApp is the constructor for the main application. The rebuilt scene is
// written to outW unless the config names an output file; logs and
// diagnostics go to logW.
func NewApp(outW, logW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")
	return &App{
		outW:   outW,
		logW:   logW,
		logger: logger,
		config: cfg,
	}
}

// Run loads the template and the scene, reconciles the configured
// candidates and writes the rebuilt scene and, if configured, the report.
func (a *App) Run(ctx context.Context) error {
	runID := uuid.NewString()
	ctx, logger := ctxlog.With(ctxlog.WithLogger(ctx, a.logger), "run_id", runID)
	logger.Debug("App.Run method started.")

	sc, err := hclscene.LoadScene(ctx, a.config.ScenePaths...)
	if err != nil {
		a.printLoadError(err)
		return fmt.Errorf("loading scene: %w", err)
	}
	template, err := a.loadTemplate(ctx, sc)
	if err != nil {
		return err
	}
	logger.Info("Scene loaded.", "template", template.Name(), "files", len(sc.Files))

	candidates := make([]*scene.Node, 0, len(a.config.Candidates))
	for _, address := range a.config.Candidates {
		n, err := sc.Find(address)
		if err != nil {
			return fmt.Errorf("candidate: %w", err)
		}
		candidates = append(candidates, n)
	}

	ignore := diff.DefaultIgnore().With(a.config.IgnoreNames, a.config.IgnorePaths)
	res, err := reconcile.Run(ctx, template, candidates, reconcile.Host{
		UI:     sc.UI,
		Scope:  []*scene.Node{sc.Root},
		Source: sc.Source,
	}, reconcile.Options{
		Ignore:  &ignore,
		Workers: a.config.Workers,
	})
	if err != nil {
		return fmt.Errorf("reconciling: %w", err)
	}
	a.printDiagnostics(res.Diagnostics, sc.Files)

	if err := a.writeScene(sc); err != nil {
		return err
	}
	if a.config.ReportPath != "" {
		r := report.Build(report.Input{
			RunID:      runID,
			Template:   a.templateName(),
			Candidates: a.config.Candidates,
			Result:     res,
			FormatValue: func(v cty.Value) string {
				if s, err := hclscene.FormatValue(sc.Root, v); err == nil {
					return s
				}
				return scene.Describe(v)
			},
		})
		if err := r.WriteFile(a.config.ReportPath); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		logger.Info("Report written.", "path", a.config.ReportPath)
	}

	logger.Debug("App.Run method finished.")
	return nil
}

// loadTemplate reads the template file or, when a template node is
// configured, detaches a copy of that scene node.
func (a *App) loadTemplate(ctx context.Context, sc *hclscene.Scene) (*scene.Node, error) {
	if a.config.TemplateNode == "" {
		template, err := hclscene.LoadTemplate(ctx, a.config.TemplatePath)
		if err != nil {
			a.printLoadError(err)
			return nil, fmt.Errorf("loading template: %w", err)
		}
		return template, nil
	}
	n, err := sc.Find(a.config.TemplateNode)
	if err != nil {
		return nil, fmt.Errorf("template node: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("Template taken from the scene.", "address", a.config.TemplateNode)
	return scene.Clone(n), nil
}

func (a *App) templateName() string {
	if a.config.TemplateNode != "" {
		return a.config.TemplateNode
	}
	return a.config.TemplatePath
}

func (a *App) writeScene(sc *hclscene.Scene) error {
	if a.config.OutPath == "" {
		return hclscene.WriteScene(a.outW, sc.Root, sc.UI)
	}
	if err := hclscene.WriteFile(a.config.OutPath, sc.Root, sc.UI); err != nil {
		return err
	}
	a.logger.Info("Scene written.", "path", a.config.OutPath)
	return nil
}

func (a *App) printLoadError(err error) {
	var loadErr *hclscene.LoadError
	if errors.As(err, &loadErr) {
		a.printDiagnostics(loadErr.Diags, loadErr.Files)
	}
}

func (a *App) printDiagnostics(diags hcl.Diagnostics, files map[string]*hcl.File) {
	if len(diags) == 0 {
		return
	}
	wr := hcl.NewDiagnosticTextWriter(a.logW, files, 78, false)
	if err := wr.WriteDiagnostics(diags); err != nil {
		a.logger.Error("Failed to print diagnostics.", "error", err)
	}
}
