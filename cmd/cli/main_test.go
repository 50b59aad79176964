package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/variantify/internal/cli"
	"github.com/stretchr/testify/require"
)

func TestRun_RebuildsCandidate(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	templatePath := filepath.Join(dir, "turret.hcl")
	scenePath := filepath.Join(dir, "scene.hcl")
	require.NoError(t, os.WriteFile(templatePath, []byte(`
node "Turret" {
  range = 10
}
`), 0600))
	require.NoError(t, os.WriteFile(scenePath, []byte(`
node "Turret" {
  range = 99
}
`), 0600))
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, errOut, []string{"-t", templatePath, "-c", "Turret", scenePath})

	// --- Assert ---
	require.NoError(t, err, "log output:\n%s", errOut.String())
	require.Contains(t, out.String(), "range = 99")
	require.Contains(t, errOut.String(), "Batch finished.")
}

func TestRun_LoadError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	templatePath := filepath.Join(dir, "turret.hcl")
	require.NoError(t, os.WriteFile(templatePath, []byte(`node "Turret" {`), 0600))
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, errOut, []string{"-t", templatePath, "-c", "Turret", dir})

	// --- Assert ---
	require.Error(t, err)
	require.Contains(t, err.Error(), "loading template")
	require.Contains(t, errOut.String(), "Unclosed configuration block")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, errOut, []string{"-h"})

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, errOut.String(), "Usage:", "Expected help text to be printed to the error output")
	require.Empty(t, out.String())
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, errOut, []string{"--this-is-not-a-valid-flag"})

	// --- Assert ---
	require.Error(t, err)
	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 2, exitErr.Code)
	require.Contains(t, err.Error(), "unknown flag: --this-is-not-a-valid-flag")
}
