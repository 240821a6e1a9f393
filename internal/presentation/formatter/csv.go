package formatter

import (
	"io"
	"strings"

	"github.com/penwyp/go-activity-timeline/internal/core/pipeline"
	"github.com/penwyp/go-activity-timeline/internal/core/timeline"
)

// ExportCSV renders entries as CSV: a bare header line, then one line per entry with every field
// double-quoted and inner quotes doubled. Lines are joined by "\n" without a trailing newline.
// An empty set still yields the header.
func ExportCSV(entries []timeline.TimelineEntry) []byte {
	var b strings.Builder
	b.WriteString(strings.Join(flatHeader, ","))
	for _, e := range entries {
		b.WriteByte('\n')
		for i, field := range ToFlatRecord(e).fields() {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(quoteField(field))
		}
	}
	return []byte(b.String())
}

func quoteField(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

type CSVFormatter struct{}

func NewCSVFormatter() *CSVFormatter {
	return &CSVFormatter{}
}

func (f *CSVFormatter) Format(w io.Writer, result pipeline.Result) error {
	if _, err := w.Write(ExportCSV(result.VisibleEntries())); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
