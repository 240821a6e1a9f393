package formatter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/penwyp/go-activity-timeline/internal/core/taxonomy"
	"github.com/penwyp/go-activity-timeline/internal/core/timeline"
)

// KeyCount is the number of entries sharing a classification key.
type KeyCount struct {
	Key   string
	Label string
	Count int
}

// Summary breaks a filtered set down by action and entity, most frequent first.
type Summary struct {
	Total    int
	ByAction []KeyCount
	ByEntity []KeyCount
}

func Summarize(entries []timeline.TimelineEntry) Summary {
	actions := make(map[string]int)
	entities := make(map[string]int)
	for _, e := range entries {
		actions[e.ActionKey]++
		entities[e.EntityKey]++
	}
	return Summary{
		Total:    len(entries),
		ByAction: rank(actions, ActionLabel),
		ByEntity: rank(entities, EntityLabel),
	}
}

func rank(counts map[string]int, label func(string) string) []KeyCount {
	out := make([]KeyCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, KeyCount{Key: k, Label: label(k), Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func (s Summary) String() string {
	if s.Total == 0 {
		return "No entries"
	}
	return fmt.Sprintf("Actions: %s | Entities: %s", joinCounts(s.ByAction), joinCounts(s.ByEntity))
}

func joinCounts(counts []KeyCount) string {
	parts := make([]string, len(counts))
	for i, c := range counts {
		parts[i] = fmt.Sprintf("%s %d", c.Key, c.Count)
	}
	return strings.Join(parts, ", ")
}

// ActionLabel is the registered label for key, or key itself when unregistered.
func ActionLabel(key string) string {
	if taxonomy.IsKnownAction(key) {
		return taxonomy.GetActionDescriptor(key).Label
	}
	return key
}

// EntityLabel is the registered label for key, or key itself when unregistered.
func EntityLabel(key string) string {
	if taxonomy.IsKnownEntity(key) {
		return taxonomy.GetEntityDescriptor(key).Label
	}
	return key
}
