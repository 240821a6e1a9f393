package formatter

import (
	"io"

	"github.com/bytedance/sonic"

	"github.com/penwyp/go-activity-timeline/internal/core/pipeline"
	"github.com/penwyp/go-activity-timeline/internal/core/timeline"
)

// ExportJSON renders entries as a pretty-printed array of flat records.
func ExportJSON(entries []timeline.TimelineEntry) ([]byte, error) {
	return sonic.ConfigStd.MarshalIndent(ToFlatRecords(entries), "", "  ")
}

type JSONFormatter struct{}

func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

func (f *JSONFormatter) Format(w io.Writer, result pipeline.Result) error {
	data, err := ExportJSON(result.VisibleEntries())
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}
