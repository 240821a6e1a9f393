package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-activity-timeline/internal/application/history"
	"github.com/penwyp/go-activity-timeline/internal/config"
	"github.com/penwyp/go-activity-timeline/internal/util"
)

func newWatchCmd(opts *options) *cobra.Command {
	defaults := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Browse the timeline interactively",
		Long: `Opens a full-screen, auto-refreshing timeline.

Keys:
  /          search (Enter or Esc leaves the field)
  j/k        move the selection
  Enter      open or close the detail panel; Esc closes it
  m          load more entries
  Tab, t     switch between activity and processing
  a, e       filter by the selected entry's action or entity
  c          clear all filters
  J, C       export the filtered set as JSON or CSV
  r          refresh now
  h, ?       help
  q          quit`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, opts)
		},
	}

	cmd.Flags().Int("limit", defaults.View.PageSize,
		"Entries per page")
	cmd.Flags().Duration("refresh", defaults.Refresh.Interval,
		"Data refresh interval")
	cmd.Flags().Bool("watch", defaults.Refresh.Watch,
		"Reload local source files when they change")
	return cmd
}

func runWatch(cmd *cobra.Command, opts *options) error {
	cfg, err := setup(cmd, opts)
	if err != nil {
		return err
	}
	defer util.CloseLogger()

	o, err := history.NewOrchestrator(historyConfig(cfg, opts))
	if err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return o.Run(ctx)
}
