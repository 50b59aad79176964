package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		TemplatePath: "turret.hcl",
		ScenePaths:   []string{"scene"},
		Candidates:   []string{"Turret"},
		Workers:      1,
	}
}

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := NewConfig(validConfig())

	require.NoError(t, err)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestNewConfig_Validation(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "no template", mutate: func(c *Config) { c.TemplatePath = "" }, wantErr: "template path or template node address is required"},
		{name: "two templates", mutate: func(c *Config) { c.TemplateNode = "Turret" }, wantErr: "mutually exclusive"},
		{name: "no scene", mutate: func(c *Config) { c.ScenePaths = nil }, wantErr: "scene path is required"},
		{name: "no candidate", mutate: func(c *Config) { c.Candidates = nil }, wantErr: "candidate address is required"},
		{name: "zero workers", mutate: func(c *Config) { c.Workers = 0 }, wantErr: "workers must be at least 1, got 0"},
		{name: "bad format", mutate: func(c *Config) { c.LogFormat = "xml" }, wantErr: "invalid log-format"},
		{name: "bad level", mutate: func(c *Config) { c.LogLevel = "trace" }, wantErr: "invalid log-level"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)

			got, err := NewConfig(cfg)

			require.Error(t, err)
			assert.Nil(t, got)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
