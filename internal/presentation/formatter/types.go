package formatter

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/penwyp/go-activity-timeline/internal/core/model"
	"github.com/penwyp/go-activity-timeline/internal/core/pipeline"
	"github.com/penwyp/go-activity-timeline/internal/core/timeline"
)

// ErrUnsupportedFormat is returned for output or export formats other than table, json and csv.
var ErrUnsupportedFormat = errors.New("unsupported format")

// FlatRecord is the export shape of a timeline entry. Metadata is left out.
type FlatRecord struct {
	Action      string `json:"action"`
	Entity      string `json:"entity"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Actor       string `json:"actor"`
	Timestamp   string `json:"timestamp"`
}

var flatHeader = []string{"action", "entity", "title", "description", "actor", "timestamp"}

func (r FlatRecord) fields() []string {
	return []string{r.Action, r.Entity, r.Title, r.Description, r.Actor, r.Timestamp}
}

func ToFlatRecord(e timeline.TimelineEntry) FlatRecord {
	return FlatRecord{
		Action:      e.ActionKey,
		Entity:      e.EntityKey,
		Title:       e.Title,
		Description: e.Description,
		Actor:       e.ActorName(),
		Timestamp:   e.Timestamp,
	}
}

func ToFlatRecords(entries []timeline.TimelineEntry) []FlatRecord {
	out := make([]FlatRecord, len(entries))
	for i, e := range entries {
		out[i] = ToFlatRecord(e)
	}
	return out
}

// Formatter writes a computed view for the one-shot command.
type Formatter interface {
	Format(w io.Writer, result pipeline.Result) error
}

// NewFormatter returns the formatter for an output format name.
func NewFormatter(format string, loc *time.Location) (Formatter, error) {
	switch format {
	case model.FormatTable, "":
		return NewTableFormatter(loc), nil
	case model.FormatJSON:
		return NewJSONFormatter(), nil
	case model.FormatCSV:
		return NewCSVFormatter(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}
