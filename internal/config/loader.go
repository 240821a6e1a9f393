package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "TIMELINE"

// Loader handles configuration loading with Viper.
type Loader struct {
	v          *viper.Viper
	configFile string
	flags      map[string]*pflag.Flag
}

func NewLoader() *Loader {
	return &Loader{v: viper.New(), flags: make(map[string]*pflag.Flag)}
}

// SetConfigFile sets an explicit config file path.
func (l *Loader) SetConfigFile(path string) {
	l.configFile = path
}

// BindFlag lets a command-line flag override key when the flag is set.
func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("no flag to bind for %s", key)
	}
	l.flags[key] = flag
	return l.v.BindPFlag(key, flag)
}

// Load loads configuration with precedence defaults < config file < env vars < CLI flags.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	l.setupViper(cfg)

	if err := l.loadConfigFile(); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	expandPaths(cfg)
	cfg.View.TabExplicit = l.explicit("view.tab")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// explicit reports whether key was given by a changed flag, an env var or the config file.
func (l *Loader) explicit(key string) bool {
	if flag, ok := l.flags[key]; ok && flag.Changed {
		return true
	}
	if _, ok := os.LookupEnv(envName(key)); ok {
		return true
	}
	return l.v.InConfig(key)
}

// ConfigFileUsed returns the config file that was loaded, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

func (l *Loader) setupViper(cfg *Config) {
	v := l.v

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if home, _ := os.UserHomeDir(); home != "" {
		v.AddConfigPath(filepath.Join(home, ".go-activity-timeline"))
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v, cfg)
	bindEnvVars(v)
	v.AutomaticEnv()
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("sources.activity", cfg.Sources.Activity)
	v.SetDefault("sources.processing", cfg.Sources.Processing)
	v.SetDefault("sources.dir", cfg.Sources.Dir)
	v.SetDefault("sources.token", cfg.Sources.Token)
	v.SetDefault("sources.timeout", cfg.Sources.Timeout)
	v.SetDefault("sources.min_interval", cfg.Sources.MinInterval)

	v.SetDefault("view.tab", cfg.View.Tab)
	v.SetDefault("view.page_size", cfg.View.PageSize)
	v.SetDefault("view.search_debounce", cfg.View.SearchDebounce)
	v.SetDefault("view.timezone", cfg.View.Timezone)

	v.SetDefault("refresh.interval", cfg.Refresh.Interval)
	v.SetDefault("refresh.watch", cfg.Refresh.Watch)

	v.SetDefault("export.dir", cfg.Export.Dir)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.file", cfg.Logging.File)
}

// bindEnvVars binds TIMELINE_* variables explicitly; Unmarshal misses nested keys otherwise.
func bindEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		_ = v.BindEnv(key, envName(key))
	}
}

func envName(key string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func (l *Loader) loadConfigFile() error {
	if l.configFile != "" {
		l.v.SetConfigFile(l.configFile)
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && l.configFile == "" {
			return nil
		}
		return err
	}
	return nil
}

func expandTilde(path string) string {
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

func expandPaths(cfg *Config) {
	cfg.Sources.Activity = expandTilde(cfg.Sources.Activity)
	cfg.Sources.Processing = expandTilde(cfg.Sources.Processing)
	cfg.Sources.Dir = expandTilde(cfg.Sources.Dir)
	cfg.Export.Dir = expandTilde(cfg.Export.Dir)
	cfg.Logging.File = expandTilde(cfg.Logging.File)
}

// LoadDefault loads configuration from the default search paths.
func LoadDefault() (*Config, error) {
	return NewLoader().Load()
}
