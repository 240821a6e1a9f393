// Package pipeline chains normalize, filter, window and group into one pure function.
package pipeline

import (
	"time"

	"github.com/penwyp/go-activity-timeline/internal/core/filter"
	"github.com/penwyp/go-activity-timeline/internal/core/model"
	"github.com/penwyp/go-activity-timeline/internal/core/pagination"
	"github.com/penwyp/go-activity-timeline/internal/core/timeline"
)

// Input is everything the timeline output depends on.
type Input struct {
	Activities []model.RawActivityEvent
	Processing []model.RawProcessingEvent
	Filter     filter.State
	Tab        model.Tab
	Visible    int
	Now        time.Time
	Location   *time.Location
}

// Result is the derived view.
type Result struct {
	// Total is the number of entries in the active stream before filtering.
	Total int
	// Filtered is the full filtered set; exports read from it.
	Filtered []timeline.TimelineEntry
	// Groups covers only the visible window of Filtered.
	Groups  []timeline.DayGroup
	HasMore bool
}

// Run recomputes the view from scratch. Each stage is linear in the input size.
func Run(in Input) Result {
	loc := in.Location
	if loc == nil {
		loc = time.Local
	}
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}

	entries := timeline.Assemble(in.Activities, in.Processing, in.Tab)
	filtered := filter.Apply(entries, in.Filter, loc)
	visible := pagination.Take(filtered, in.Visible)

	return Result{
		Total:    len(entries),
		Filtered: filtered,
		Groups:   timeline.GroupByDay(visible, now, loc),
		HasMore:  in.Visible < len(filtered),
	}
}

// VisibleEntries flattens the groups back into the visible list.
func (r Result) VisibleEntries() []timeline.TimelineEntry {
	var out []timeline.TimelineEntry
	for _, g := range r.Groups {
		out = append(out, g.Entries...)
	}
	return out
}
