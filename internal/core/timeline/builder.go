package timeline

import (
	"fmt"
	"strings"

	"github.com/penwyp/go-activity-timeline/internal/core/model"
	"github.com/penwyp/go-activity-timeline/internal/core/taxonomy"
	"github.com/penwyp/go-activity-timeline/internal/util"
)

const (
	unknownActorName       = "Unknown"
	defaultProcessingTitle = "Document processing"
	processingActionKey    = "processed"
	processingEntityKey    = "document"
	extractedSummaryPrefix = "Extracted: "
	processingIDPrefix     = "proc-"
)

// titleMetadataKeys are consulted in order for an activity title.
var titleMetadataKeys = []string{"name", "target_name", "filename"}

// NormalizeActivity converts an activity-log record into a timeline entry. It never fails:
// malformed actions and unknown keys degrade to the taxonomy defaults.
func NormalizeActivity(raw model.RawActivityEvent) TimelineEntry {
	entityKey, actionKey := taxonomy.ParseAction(raw.Action)

	entry := TimelineEntry{
		ID:        raw.ID,
		ActionKey: actionKey,
		EntityKey: entityKey,
		Title:     activityTitle(raw.Metadata, entityKey, actionKey),
		Timestamp: raw.CreatedAt,
		Metadata:  raw.Metadata,
		Source:    model.SourceActivity,
	}
	if desc, ok := metadataString(raw.Metadata, "description"); ok {
		entry.Description = desc
	}
	if raw.Actor != nil {
		entry.Actor = &Actor{
			Name:      firstNonEmpty(raw.Actor.DisplayName, raw.Actor.Username, unknownActorName),
			AvatarURL: raw.Actor.AvatarURL,
		}
	}
	entry.Time, _ = util.ParseTimestamp(raw.CreatedAt)
	return entry
}

// NormalizeProcessing converts a processing-history record into a timeline entry.
// index is the record's position in its batch and keeps ids unique when several
// documents share a timestamp.
func NormalizeProcessing(raw model.RawProcessingEvent, index int) TimelineEntry {
	entry := TimelineEntry{
		ID:          fmt.Sprintf("%s%d-%s", processingIDPrefix, index, raw.Timestamp),
		ActionKey:   processingActionKey,
		EntityKey:   processingEntityKey,
		Title:       firstNonEmpty(raw.Filename, defaultProcessingTitle),
		Description: extractionSummary(raw),
		Timestamp:   raw.Timestamp,
		Metadata:    processingMetadata(raw),
		Source:      model.SourceProcessing,
	}
	entry.Time, _ = util.ParseTimestamp(raw.Timestamp)
	return entry
}

// BuildFromActivities normalizes a batch of activity records, preserving order.
func BuildFromActivities(events []model.RawActivityEvent) []TimelineEntry {
	entries := make([]TimelineEntry, 0, len(events))
	for _, ev := range events {
		entries = append(entries, NormalizeActivity(ev))
	}
	return entries
}

// BuildFromProcessing normalizes a batch of processing records, preserving order.
func BuildFromProcessing(events []model.RawProcessingEvent) []TimelineEntry {
	entries := make([]TimelineEntry, 0, len(events))
	for i, ev := range events {
		entries = append(entries, NormalizeProcessing(ev, i))
	}
	return entries
}

func activityTitle(meta map[string]any, entityKey, actionKey string) string {
	for _, key := range titleMetadataKeys {
		if title, ok := metadataString(meta, key); ok {
			return title
		}
	}

	verb := actionKey
	if taxonomy.IsKnownAction(actionKey) {
		verb = taxonomy.GetActionDescriptor(actionKey).Label
	}
	return taxonomy.GetEntityDescriptor(entityKey).Label + " " + strings.ToLower(verb)
}

func extractionSummary(raw model.RawProcessingEvent) string {
	parts := make([]string, 0, 6)
	for _, c := range raw.ExtractionCounts() {
		if c.Count != 0 {
			parts = append(parts, fmt.Sprintf("%d %s", c.Count, c.Label))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return extractedSummaryPrefix + strings.Join(parts, ", ")
}

func processingMetadata(raw model.RawProcessingEvent) map[string]any {
	meta := make(map[string]any)
	if raw.Filename != "" {
		meta["filename"] = raw.Filename
	}
	if raw.Status != "" {
		meta["status"] = raw.Status
	}
	if raw.ModelUsed != "" {
		meta["model_used"] = raw.ModelUsed
	}
	if raw.TokensUsed != 0 {
		meta["tokens_used"] = raw.TokensUsed
	}
	if raw.DurationMs != 0 {
		meta["duration_ms"] = raw.DurationMs
	}
	for _, c := range raw.ExtractionCounts() {
		if c.Count != 0 {
			meta[c.Field] = c.Count
		}
	}
	return meta
}

// metadataString reads key from a free-form metadata map. Absent and null values report false.
func metadataString(meta map[string]any, key string) (string, bool) {
	v, ok := meta[key]
	if !ok || v == nil {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return fmt.Sprint(v), true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
