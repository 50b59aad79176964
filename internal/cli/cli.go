package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/variantify/internal/app"
	"github.com/spf13/pflag"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := pflag.NewFlagSet("variantify", pflag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.SortFlags = false

	flagSet.Usage = func() {
		fmt.Fprint(output, `
Variantify - Rebuilds diverged copies of a template graph from the template.

Usage:
  variantify [options] --template FILE --candidate ADDRESS [SCENE_PATH...]
  variantify [options] --template-node ADDRESS --candidate ADDRESS [SCENE_PATH...]

Arguments:
  SCENE_PATH
    Path to a single .hcl file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	templateFlag := flagSet.StringP("template", "t", "", "Path to the .hcl file declaring the template graph.")
	templateNodeFlag := flagSet.String("template-node", "", "Address of a scene node to use as the template instead of --template.")
	sceneFlag := flagSet.StringSliceP("scene", "s", nil, "Path to a scene file or directory. Repeatable.")
	candidateFlag := flagSet.StringArrayP("candidate", "c", nil, "Address of a candidate node in the scene, e.g. 'Enemy[1]'. Repeatable.")
	outFlag := flagSet.StringP("out", "o", "", "Write the rebuilt scene to this file instead of standard output.")
	reportFlag := flagSet.String("report", "", "Write a YAML report of the batch to this file.")
	ignoreNameFlag := flagSet.StringSlice("ignore-name", nil, "Field name to leave out of the comparison. Repeatable.")
	ignorePathFlag := flagSet.StringSlice("ignore-path", nil, "Field path to leave out of the comparison, e.g. 'stats.hp'. Repeatable.")
	workersFlag := flagSet.Int("workers", 4, "Number of candidates classified concurrently.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	scenes := append(*sceneFlag, flagSet.Args()...)
	if *templateFlag == "" && *templateNodeFlag == "" && len(scenes) == 0 && len(*candidateFlag) == 0 {
		slog.Debug("Nothing to do, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	config, err := app.NewConfig(app.Config{
		TemplatePath: *templateFlag,
		TemplateNode: *templateNodeFlag,
		ScenePaths:   scenes,
		Candidates:   *candidateFlag,
		OutPath:      *outFlag,
		ReportPath:   *reportFlag,
		IgnoreNames:  *ignoreNameFlag,
		IgnorePaths:  *ignorePathFlag,
		Workers:      *workersFlag,
		LogFormat:    strings.ToLower(*logFormatFlag),
		LogLevel:     strings.ToLower(*logLevelFlag),
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
