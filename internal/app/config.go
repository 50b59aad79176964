package app

import (
	"errors"
	"fmt"
	"slices"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	TemplatePath string   // hcl file declaring the template graph
	TemplateNode string   // address of a scene node to use as the template instead
	ScenePaths   []string // hcl files or directories holding the scene
	Candidates   []string // addresses of the candidates inside the scene

	// OutPath receives the rebuilt scene. Empty means the app's output writer.
	OutPath    string
	ReportPath string

	IgnoreNames []string
	IgnorePaths []string
	Workers     int

	LogFormat string
	LogLevel  string
}

var (
	logFormats = []string{"text", "json"}
	logLevels  = []string{"debug", "info", "warn", "error"}
)

// NewConfig validates cfg and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.TemplatePath == "" && cfg.TemplateNode == "" {
		return nil, errors.New("a template path or template node address is required")
	}
	if cfg.TemplatePath != "" && cfg.TemplateNode != "" {
		return nil, errors.New("template path and template node are mutually exclusive")
	}
	if len(cfg.ScenePaths) == 0 {
		return nil, errors.New("at least one scene path is required")
	}
	if len(cfg.Candidates) == 0 {
		return nil, errors.New("at least one candidate address is required")
	}
	if cfg.Workers < 1 {
		return nil, fmt.Errorf("workers must be at least 1, got %d", cfg.Workers)
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if !slices.Contains(logFormats, cfg.LogFormat) {
		return nil, errors.New("invalid log-format: must be 'text' or 'json'")
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if !slices.Contains(logLevels, cfg.LogLevel) {
		return nil, errors.New("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}
	return &cfg, nil
}
