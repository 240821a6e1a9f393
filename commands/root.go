package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-activity-timeline/internal/application/history"
	"github.com/penwyp/go-activity-timeline/internal/config"
	"github.com/penwyp/go-activity-timeline/internal/core/filter"
	"github.com/penwyp/go-activity-timeline/internal/core/model"
	"github.com/penwyp/go-activity-timeline/internal/core/timeline"
	"github.com/penwyp/go-activity-timeline/internal/presentation/formatter"
	"github.com/penwyp/go-activity-timeline/internal/util"
)

// options holds the raw flag values shared by every command.
type options struct {
	configFile string
	debug      bool

	// Filtering
	action string
	entity string
	from   string
	to     string
	search string

	// One-shot output
	outputFormat string
	exportFormat string
}

// flagKeys maps config keys to the flags that override them.
var flagKeys = map[string]string{
	"sources.activity":   "activity",
	"sources.processing": "processing",
	"sources.dir":        "dir",
	"sources.token":      "token",
	"sources.timeout":    "timeout",
	"view.tab":           "tab",
	"view.timezone":      "timezone",
	"view.page_size":     "limit",
	"export.dir":         "export-dir",
	"logging.file":       "log-file",
	"refresh.interval":   "refresh",
	"refresh.watch":      "watch",
}

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	opts := &options{}
	defaults := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "go-activity-timeline [flags]",
		Short: "Unified timeline of activity-log and document-processing events",
		Long: `go-activity-timeline merges an activity log and a document-processing history
into one filterable, day-grouped timeline.

Sources are local JSON/JSONL files or http(s) endpoints. When --activity or
--processing is omitted, --dir is scanned for activity*.json[l] and
processing*.json[l] files.

Examples:
  go-activity-timeline                                   # Timeline of ./activity*.json
  go-activity-timeline --dir ./exports --tab processing  # Processing history
  go-activity-timeline --action created --entity risk    # Only created risks
  go-activity-timeline --from 2024-05-01 --to 2024-05-07 # One week
  go-activity-timeline --search invoice --output csv     # Search, CSV to stdout
  go-activity-timeline --export json                     # Write history-<today>.json
  go-activity-timeline watch                             # Interactive view`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTimeline(cmd, opts)
		},
	}

	// Sources
	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configFile, "config", "",
		"Config file (default ~/.go-activity-timeline/config.yaml)")
	pf.String("activity", defaults.Sources.Activity,
		"Activity log file or URL")
	pf.String("processing", defaults.Sources.Processing,
		"Processing history file or URL")
	pf.String("dir", defaults.Sources.Dir,
		"Directory scanned for source files")
	pf.String("token", defaults.Sources.Token,
		"Bearer token for http sources")
	pf.Duration("timeout", defaults.Sources.Timeout,
		"Timeout of one http fetch")

	// Filtering
	pf.String("tab", defaults.View.Tab,
		"Timeline tab (activity, processing)")
	pf.StringVar(&opts.action, "action", "",
		"Only show this action (e.g. created, updated)")
	pf.StringVar(&opts.entity, "entity", "",
		"Only show this entity type (e.g. document, fact)")
	pf.StringVar(&opts.from, "from", "",
		"Only show entries on or after this date (YYYY-MM-DD)")
	pf.StringVar(&opts.to, "to", "",
		"Only show entries on or before this date (YYYY-MM-DD)")
	pf.StringVar(&opts.search, "search", "",
		"Case-insensitive text search over title, description, actor, action and entity")

	// Output and system
	pf.String("timezone", defaults.View.Timezone,
		"Timezone setting (e.g., Asia/Shanghai, UTC)")
	pf.String("export-dir", defaults.Export.Dir,
		"Directory export files are written to")
	pf.String("log-file", defaults.Logging.File,
		"Log file path")
	pf.BoolVar(&opts.debug, "debug", false,
		"Enable debug mode")

	cmd.Flags().Int("limit", defaults.View.PageSize,
		"Number of entries shown")
	cmd.Flags().StringVarP(&opts.outputFormat, "output", "o", model.FormatTable,
		"Output format (table, json, csv)")
	cmd.Flags().StringVar(&opts.exportFormat, "export", "",
		"Also export the filtered set to a file (json, csv)")

	cmd.AddCommand(newWatchCmd(opts))
	return cmd
}

func Execute() error {
	return rootCmd.Execute()
}

// loadConfig merges defaults, config file, TIMELINE_* env vars and the flags set on cmd.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	loader := config.NewLoader()
	if opts.configFile != "" {
		loader.SetConfigFile(opts.configFile)
	}
	for key, name := range flagKeys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := loader.BindFlag(key, flag); err != nil {
			return nil, err
		}
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}
	if used := loader.ConfigFileUsed(); used != "" {
		util.LogDebugf("Using config file %s", used)
	}
	return cfg, nil
}

// setup loads configuration and starts logging.
func setup(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return nil, err
	}

	logLevel := cfg.Logging.Level
	if opts.debug {
		logLevel = "debug"
	}
	if cfg.Logging.File != "" {
		if err := ensureDir(filepath.Dir(cfg.Logging.File)); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	util.InitLogger(logLevel, cfg.Logging.File, opts.debug)
	return cfg, nil
}

// historyConfig turns the loaded configuration and filter flags into an application config.
func historyConfig(cfg *config.Config, opts *options) *history.Config {
	return &history.Config{
		ActivitySource:   cfg.Sources.Activity,
		ProcessingSource: cfg.Sources.Processing,
		DataDir:          expandPath(cfg.Sources.Dir),
		Token:            cfg.Sources.Token,
		FetchTimeout:     cfg.Sources.Timeout,
		MinFetchInterval: cfg.Sources.MinInterval,
		Tab:              model.Tab(cfg.View.Tab),
		TabExplicit:      cfg.View.TabExplicit,
		Filter: filter.State{
			Search:       strings.TrimSpace(opts.search),
			ActionFilter: opts.action,
			EntityFilter: opts.entity,
			DateFrom:     opts.from,
			DateTo:       opts.to,
		},
		PageSize:        cfg.View.PageSize,
		SearchDebounce:  cfg.View.SearchDebounce,
		Timezone:        cfg.View.Timezone,
		RefreshInterval: cfg.Refresh.Interval,
		Watch:           cfg.Refresh.Watch,
		ExportDir:       expandPath(cfg.Export.Dir),
	}
}

func validateFormats(output, export string) error {
	switch output {
	case model.FormatTable, model.FormatJSON, model.FormatCSV:
	default:
		return fmt.Errorf("%w: output %q", formatter.ErrUnsupportedFormat, output)
	}
	switch export {
	case "", model.FormatJSON, model.FormatCSV:
	default:
		return fmt.Errorf("%w: export %q", formatter.ErrUnsupportedFormat, export)
	}
	return nil
}

func runTimeline(cmd *cobra.Command, opts *options) error {
	if err := validateFormats(opts.outputFormat, opts.exportFormat); err != nil {
		return err
	}

	cfg, err := setup(cmd, opts)
	if err != nil {
		return err
	}
	defer util.CloseLogger()

	hc := historyConfig(cfg, opts)
	hc.Watch = false

	o, err := history.NewOrchestrator(hc)
	if err != nil {
		return err
	}
	defer o.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	o.LoadOnce(ctx)

	if err := sourceErrors(cmd, o.State()); err != nil {
		return err
	}

	f, err := formatter.NewFormatter(opts.outputFormat, util.GetTimeProvider().Location())
	if err != nil {
		return err
	}
	if err := f.Format(cmd.OutOrStdout(), o.State().Result()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if opts.exportFormat != "" {
		path, err := o.Export(opts.exportFormat)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d entries to %s\n", len(o.State().Filtered()), path)
	}
	return nil
}

// sourceErrors warns about each failed source and fails only when nothing loaded.
func sourceErrors(cmd *cobra.Command, state *history.StateManager) error {
	var errs []error
	for _, source := range []model.Source{model.SourceActivity, model.SourceProcessing} {
		status := state.Status(source)
		if status.State != timeline.SourceFailed {
			continue
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s source: %v\n", source, status.Err)
		errs = append(errs, status.Err)
	}
	if len(errs) == 2 {
		return fmt.Errorf("no source could be loaded: %w", errors.Join(errs...))
	}
	return nil
}

// Helper functions

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
