package config

import (
	"fmt"
	"time"

	"github.com/penwyp/go-activity-timeline/internal/core/model"
)

// Config is the persisted configuration of go-activity-timeline.
type Config struct {
	Sources SourcesConfig `mapstructure:"sources"`
	View    ViewConfig    `mapstructure:"view"`
	Refresh RefreshConfig `mapstructure:"refresh"`
	Export  ExportConfig  `mapstructure:"export"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// SourcesConfig locates the two upstream streams. Activity and Processing take a file
// path or an http(s) URL; Dir is scanned when either is empty.
type SourcesConfig struct {
	Activity    string        `mapstructure:"activity"`
	Processing  string        `mapstructure:"processing"`
	Dir         string        `mapstructure:"dir"`
	Token       string        `mapstructure:"token"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MinInterval time.Duration `mapstructure:"min_interval"`
}

type ViewConfig struct {
	Tab string `mapstructure:"tab"`
	// TabExplicit is set when tab came from a file, env var or flag instead of the default.
	TabExplicit    bool          `mapstructure:"-"`
	PageSize       int           `mapstructure:"page_size"`
	SearchDebounce time.Duration `mapstructure:"search_debounce"`
	Timezone       string        `mapstructure:"timezone"`
}

type RefreshConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Watch    bool          `mapstructure:"watch"`
}

type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Sources: SourcesConfig{
			Dir:         ".",
			Timeout:     15 * time.Second,
			MinInterval: 2 * time.Second,
		},
		View: ViewConfig{
			Tab:            string(model.TabActivity),
			PageSize:       50,
			SearchDebounce: 200 * time.Millisecond,
			Timezone:       "Local",
		},
		Refresh: RefreshConfig{
			Interval: 30 * time.Second,
			Watch:    true,
		},
		Export: ExportConfig{
			Dir: ".",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "~/.go-activity-timeline/timeline.log",
		},
	}
}

// Validate rejects values no component can run with.
func (c *Config) Validate() error {
	if _, ok := model.ParseTab(c.View.Tab); !ok {
		return fmt.Errorf("view.tab must be %q or %q, got %q", model.TabActivity, model.TabProcessing, c.View.Tab)
	}
	if c.View.PageSize <= 0 {
		return fmt.Errorf("view.page_size must be positive, got %d", c.View.PageSize)
	}
	if c.View.SearchDebounce < 0 {
		return fmt.Errorf("view.search_debounce must not be negative")
	}
	if _, err := time.LoadLocation(timezoneName(c.View.Timezone)); err != nil {
		return fmt.Errorf("view.timezone %q: %w", c.View.Timezone, err)
	}
	if c.Refresh.Interval < 0 {
		return fmt.Errorf("refresh.interval must not be negative")
	}
	if c.Sources.Timeout < 0 || c.Sources.MinInterval < 0 {
		return fmt.Errorf("sources.timeout and sources.min_interval must not be negative")
	}
	return nil
}

func timezoneName(tz string) string {
	if tz == "" {
		return "Local"
	}
	return tz
}
