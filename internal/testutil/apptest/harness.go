// Package apptest runs the whole application against files written to a
// temporary directory.
package apptest

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/variantify/internal/app"
	"github.com/specialistvlad/variantify/internal/testutil"
	"github.com/stretchr/testify/require"
)

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	// Dir is the temporary directory the files were written to.
	Dir       string
	Output    string
	LogOutput string
	Err       error
}

// Path returns name joined to the harness directory.
func (r *HarnessResult) Path(name string) string {
	return filepath.Join(r.Dir, filepath.FromSlash(name))
}

// RunApp provides a standardized harness for running integration tests
// using a default background context.
func RunApp(t *testing.T, files map[string]string, cfg app.Config) *HarnessResult {
	t.Helper()
	return RunAppWithContext(context.Background(), t, files, cfg)
}

// RunAppWithContext writes files into a temporary directory, resolves every
// relative path of cfg against it, and runs the app once.
func RunAppWithContext(ctx context.Context, t *testing.T, files map[string]string, cfg app.Config) *HarnessResult {
	t.Helper()

	dir := testutil.WriteFiles(t, t.TempDir(), files)
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, filepath.FromSlash(p))
	}
	cfg.TemplatePath = abs(cfg.TemplatePath)
	cfg.OutPath = abs(cfg.OutPath)
	cfg.ReportPath = abs(cfg.ReportPath)
	scenes := make([]string, len(cfg.ScenePaths))
	for i, p := range cfg.ScenePaths {
		scenes[i] = abs(p)
	}
	cfg.ScenePaths = scenes
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
	}

	appConfig, err := app.NewConfig(cfg)
	require.NoError(t, err)

	logBuffer := &testutil.SafeBuffer{}
	var out bytes.Buffer
	runErr := app.NewApp(&out, logBuffer, appConfig).Run(ctx)

	t.Cleanup(func() {
		if os.Getenv("VARIANTIFY_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return &HarnessResult{
		Dir:       dir,
		Output:    out.String(),
		LogOutput: logBuffer.String(),
		Err:       runErr,
	}
}
