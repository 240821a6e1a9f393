package timeline

import (
	"time"

	"github.com/penwyp/go-activity-timeline/internal/core/model"
)

// UnknownDateKey is the day key of entries whose timestamp is missing or unparsable.
const UnknownDateKey = "unknown"

// Actor identifies who performed an activity.
type Actor struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// TimelineEntry is the source-agnostic representation of one event.
type TimelineEntry struct {
	ID          string
	ActionKey   string
	EntityKey   string
	Title       string
	Description string // empty means omitted
	Timestamp   string // as delivered by the producer
	Time        time.Time
	Actor       *Actor
	Metadata    map[string]any
	Source      model.Source
}

// HasTime reports whether the entry timestamp parsed.
func (e TimelineEntry) HasTime() bool {
	return !e.Time.IsZero()
}

// ActorName returns the actor name or "" when the entry has no actor.
func (e TimelineEntry) ActorName() string {
	if e.Actor == nil {
		return ""
	}
	return e.Actor.Name
}

// DayGroup is a run of entries sharing a calendar date.
type DayGroup struct {
	DateKey string
	Label   string
	IsToday bool
	Entries []TimelineEntry
}
