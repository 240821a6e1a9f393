package display

import (
	"time"

	"github.com/penwyp/go-activity-timeline/internal/core/filter"
	"github.com/penwyp/go-activity-timeline/internal/core/model"
	"github.com/penwyp/go-activity-timeline/internal/core/pipeline"
	"github.com/penwyp/go-activity-timeline/internal/core/timeline"
)

// SourceView is the per-source line of the status bar.
type SourceView struct {
	Source model.Source
	Status timeline.SourceStatus
	Count  int
}

// ViewState is everything one frame needs.
type ViewState struct {
	Tab     model.Tab
	Sources []SourceView

	Filter        filter.State
	SearchInput   string
	SearchFocused bool

	Result     pipeline.Result
	Selected   int
	ExpandedID string

	ShowHelp      bool
	StatusMessage string
	LastRefresh   time.Time
	Location      *time.Location
}

// SelectedEntry returns the highlighted entry, if any.
func (s ViewState) SelectedEntry() (timeline.TimelineEntry, bool) {
	i := 0
	for _, g := range s.Result.Groups {
		for _, e := range g.Entries {
			if i == s.Selected {
				return e, true
			}
			i++
		}
	}
	return timeline.TimelineEntry{}, false
}
