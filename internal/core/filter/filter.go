// Package filter narrows a timeline with a conjunction of independent predicates.
// Every function is pure: entries in, entries out.
package filter

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/penwyp/go-activity-timeline/internal/core/timeline"
	"github.com/penwyp/go-activity-timeline/internal/util"
)

// ErrInvalidDate is returned for date bounds that are not YYYY-MM-DD.
var ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

// endOfDay is added to the dateTo calendar date to make the bound inclusive.
const endOfDay = 24*time.Hour - time.Millisecond

// State is the user's filter selection. Empty fields are unset.
type State struct {
	Search       string
	ActionFilter string
	EntityFilter string
	DateFrom     string // YYYY-MM-DD, inclusive from local midnight
	DateTo       string // YYYY-MM-DD, inclusive through 23:59:59.999Z
}

// IsZero reports whether no predicate is active.
func (s State) IsZero() bool {
	return s == State{}
}

// Validate checks the date bounds.
func (s State) Validate() error {
	for _, v := range []string{s.DateFrom, s.DateTo} {
		if v == "" {
			continue
		}
		if _, err := time.Parse(util.ISODate, v); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidDate, v)
		}
	}
	return nil
}

// ToggleAction activates value on the action axis, or clears the axis when value is
// already active.
func (s *State) ToggleAction(value string) {
	s.ActionFilter = toggle(s.ActionFilter, value)
}

// ToggleEntity activates value on the entity axis, or clears the axis when value is
// already active.
func (s *State) ToggleEntity(value string) {
	s.EntityFilter = toggle(s.EntityFilter, value)
}

func toggle(current, value string) string {
	if current == value {
		return ""
	}
	return value
}

// Apply keeps the entries matching every active predicate, in their original order.
// loc is the timezone whose midnight starts the DateFrom day.
func Apply(entries []timeline.TimelineEntry, s State, loc *time.Location) []timeline.TimelineEntry {
	m := compile(s, loc)
	if m.matchAll() {
		return entries
	}

	result := make([]timeline.TimelineEntry, 0, len(entries))
	for _, e := range entries {
		if m.matches(e) {
			result = append(result, e)
		}
	}
	return result
}

// Matches reports whether a single entry passes s.
func Matches(e timeline.TimelineEntry, s State, loc *time.Location) bool {
	return compile(s, loc).matches(e)
}

type matcher struct {
	action  string
	entity  string
	search  string
	hasFrom bool
	from    time.Time
	hasTo   bool
	to      time.Time
	// rejectAll is set when a date bound does not parse; nothing can satisfy it.
	rejectAll bool
}

func compile(s State, loc *time.Location) matcher {
	if loc == nil {
		loc = time.Local
	}
	m := matcher{
		action: s.ActionFilter,
		entity: s.EntityFilter,
		search: strings.ToLower(strings.TrimSpace(s.Search)),
	}
	if s.DateFrom != "" {
		from, err := util.ParseISODate(s.DateFrom, loc)
		if err != nil {
			m.rejectAll = true
		}
		m.hasFrom, m.from = true, from
	}
	if s.DateTo != "" {
		to, err := util.ParseISODate(s.DateTo, time.UTC)
		if err != nil {
			m.rejectAll = true
		}
		m.hasTo, m.to = true, to.Add(endOfDay)
	}
	return m
}

func (m matcher) matchAll() bool {
	return !m.rejectAll && m.action == "" && m.entity == "" && m.search == "" && !m.hasFrom && !m.hasTo
}

func (m matcher) matches(e timeline.TimelineEntry) bool {
	if m.rejectAll {
		return false
	}
	if m.action != "" && e.ActionKey != m.action {
		return false
	}
	if m.entity != "" && e.EntityKey != m.entity {
		return false
	}
	if m.hasFrom && (!e.HasTime() || e.Time.Before(m.from)) {
		return false
	}
	if m.hasTo && (!e.HasTime() || e.Time.After(m.to)) {
		return false
	}
	if m.search != "" && !strings.Contains(strings.ToLower(SearchText(e)), m.search) {
		return false
	}
	return true
}

// SearchText is the haystack free-text search runs against.
func SearchText(e timeline.TimelineEntry) string {
	return strings.Join([]string{e.Title, e.Description, e.ActorName(), e.ActionKey, e.EntityKey}, " ")
}
