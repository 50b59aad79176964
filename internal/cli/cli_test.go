package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/specialistvlad/variantify/internal/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	// Arrange
	args := []string{
		"-t", "turret.hcl",
		"--candidate", "Turret",
		"-c", "Enemy[1]",
		"--scene", "a.hcl,b.hcl",
		"--ignore-name", "seed",
		"--ignore-path", "stats.hp",
		"--workers", "8",
		"--log-level", "DEBUG",
		"-o", "out.hcl",
		"--report", "report.yaml",
		"extra",
	}

	// Act
	cfg, shouldExit, err := Parse(args, &bytes.Buffer{})

	// Assert
	require.NoError(t, err)
	assert.False(t, shouldExit)
	assert.Equal(t, &app.Config{
		TemplatePath: "turret.hcl",
		ScenePaths:   []string{"a.hcl", "b.hcl", "extra"},
		Candidates:   []string{"Turret", "Enemy[1]"},
		OutPath:      "out.hcl",
		ReportPath:   "report.yaml",
		IgnoreNames:  []string{"seed"},
		IgnorePaths:  []string{"stats.hp"},
		Workers:      8,
		LogFormat:    "text",
		LogLevel:     "debug",
	}, cfg)
}

func TestParse_TemplateNode(t *testing.T) {
	cfg, shouldExit, err := Parse([]string{"--template-node", "Turret", "-c", "Turret[1]", "scene"}, &bytes.Buffer{})

	require.NoError(t, err)
	assert.False(t, shouldExit)
	assert.Equal(t, "Turret", cfg.TemplateNode)
	assert.Empty(t, cfg.TemplatePath)
	assert.Equal(t, []string{"scene"}, cfg.ScenePaths)
}

func TestParse_HelpAndEmpty(t *testing.T) {
	for _, args := range [][]string{{"-h"}, {"--help"}, {}} {
		var out bytes.Buffer

		cfg, shouldExit, err := Parse(args, &out)

		require.NoError(t, err)
		assert.True(t, shouldExit)
		assert.Nil(t, cfg)
		assert.Contains(t, out.String(), "Usage:")
		assert.Contains(t, out.String(), "--candidate")
	}
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{name: "unknown flag", args: []string{"--nope"}, wantMsg: "unknown flag: --nope"},
		{name: "missing template", args: []string{"-c", "A", "scene"}, wantMsg: "template path or template node address is required"},
		{name: "two templates", args: []string{"-t", "t.hcl", "--template-node", "A", "-c", "A", "scene"}, wantMsg: "mutually exclusive"},
		{name: "missing candidate", args: []string{"-t", "t.hcl", "scene"}, wantMsg: "candidate address is required"},
		{name: "bad workers", args: []string{"-t", "t.hcl", "-c", "A", "--workers", "0", "scene"}, wantMsg: "workers must be at least 1"},
		{name: "bad log format", args: []string{"-t", "t.hcl", "-c", "A", "--log-format", "xml", "scene"}, wantMsg: "invalid log-format"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, shouldExit, err := Parse(tc.args, &bytes.Buffer{})

			require.Error(t, err)
			assert.False(t, shouldExit)
			var exitErr *ExitError
			require.True(t, errors.As(err, &exitErr))
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.wantMsg)
		})
	}
}
