package history

import (
	"fmt"
	"time"

	"github.com/penwyp/go-activity-timeline/internal/core/filter"
	"github.com/penwyp/go-activity-timeline/internal/core/model"
	"github.com/penwyp/go-activity-timeline/internal/core/pagination"
)

// Config contains configuration for the timeline commands
type Config struct {
	// Sources: a file path or http(s) URL each; DataDir is scanned for whichever is empty.
	ActivitySource   string
	ProcessingSource string
	DataDir          string
	Token            string
	FetchTimeout     time.Duration
	MinFetchInterval time.Duration

	// View
	Tab model.Tab
	// TabExplicit marks Tab as the user's choice; the first-load auto-pick is skipped.
	TabExplicit    bool
	Filter         filter.State
	PageSize       int
	SearchDebounce time.Duration
	Timezone       string

	// Refresh
	RefreshInterval time.Duration
	Watch           bool

	ExportDir string
}

// Validate fills defaults and rejects unusable values.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		c.DataDir = "."
	}
	if c.Tab == "" {
		c.Tab = model.TabActivity
	}
	if _, ok := model.ParseTab(string(c.Tab)); !ok {
		return fmt.Errorf("unknown tab %q", c.Tab)
	}
	if c.PageSize <= 0 {
		c.PageSize = pagination.DefaultPageSize
	}
	if c.SearchDebounce <= 0 {
		c.SearchDebounce = filter.DefaultSearchDebounce
	}
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
	if c.RefreshInterval == 0 {
		c.RefreshInterval = 30 * time.Second
	}
	if c.ExportDir == "" {
		c.ExportDir = "."
	}
	return c.Filter.Validate()
}
