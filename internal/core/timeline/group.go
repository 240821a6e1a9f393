package timeline

import (
	"time"

	"github.com/penwyp/go-activity-timeline/internal/util"
)

const (
	labelToday     = "Today"
	labelYesterday = "Yesterday"
)

// DateKey returns the calendar date of the entry in loc, or UnknownDateKey.
func DateKey(e TimelineEntry, loc *time.Location) string {
	if !e.HasTime() {
		return UnknownDateKey
	}
	return e.Time.In(loc).Format(util.ISODate)
}

// GroupByDay partitions entries into day groups in a single top-to-bottom scan.
// Groups appear in the order their date is first seen and entries keep their input order;
// nothing is re-sorted, so callers pass the list already ordered (newest first).
func GroupByDay(entries []TimelineEntry, now time.Time, loc *time.Location) []DayGroup {
	if len(entries) == 0 {
		return []DayGroup{}
	}

	groups := make([]DayGroup, 0, 8)
	index := make(map[string]int)

	for _, entry := range entries {
		key := DateKey(entry, loc)
		if i, ok := index[key]; ok {
			groups[i].Entries = append(groups[i].Entries, entry)
			continue
		}

		label, isToday := DayLabel(entry.Time, now, loc)
		if key == UnknownDateKey {
			label, isToday = "Unknown date", false
		}
		index[key] = len(groups)
		groups = append(groups, DayGroup{
			DateKey: key,
			Label:   label,
			IsToday: isToday,
			Entries: []TimelineEntry{entry},
		})
	}
	return groups
}

// DayLabel names the day of t relative to now:
// Today, Yesterday, a weekday within the last week, otherwise the full date
// (the year is shown only when it differs from the current one).
func DayLabel(t, now time.Time, loc *time.Location) (label string, isToday bool) {
	delta := util.DaysBetween(t, now, loc)
	local := t.In(loc)

	switch {
	case delta == 0:
		return labelToday, true
	case delta == 1:
		return labelYesterday, false
	case delta > 1 && delta < 7:
		return local.Weekday().String(), false
	}

	if local.Year() != now.In(loc).Year() {
		return local.Format("Monday, January 2, 2006"), false
	}
	return local.Format("Monday, January 2"), false
}
