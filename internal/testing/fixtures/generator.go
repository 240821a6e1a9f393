// Package fixtures builds activity-log and processing-history payloads for tests.
package fixtures

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"

	"github.com/penwyp/go-activity-timeline/internal/core/model"
)

// Actions cycles through these when generating activity events.
var Actions = []string{"document.created", "fact.updated", "risk.deleted"}

// Activities returns n events, newest first: event i is "a<i>", performs
// Actions[i%3] on "Item <i>" and happened i steps before start.
func Activities(n int, start time.Time, step time.Duration) []model.RawActivityEvent {
	events := make([]model.RawActivityEvent, n)
	for i := range events {
		events[i] = model.RawActivityEvent{
			ID:        fmt.Sprintf("a%d", i),
			Action:    Actions[i%len(Actions)],
			Metadata:  map[string]any{"name": fmt.Sprintf("Item %d", i)},
			CreatedAt: start.Add(-time.Duration(i) * step).Format(time.RFC3339),
		}
	}
	return events
}

// Processing returns n sessions, newest first: session i processed "doc-<i>.pdf",
// extracted i facts and ran i steps before start.
func Processing(n int, start time.Time, step time.Duration) []model.RawProcessingEvent {
	events := make([]model.RawProcessingEvent, n)
	for i := range events {
		events[i] = model.RawProcessingEvent{
			Filename:       fmt.Sprintf("doc-%d.pdf", i),
			Status:         "completed",
			FactsExtracted: i,
			Timestamp:      start.Add(-time.Duration(i) * step).Format(time.RFC3339),
		}
	}
	return events
}

// Generator writes payload files into a directory.
type Generator struct {
	baseDir string
}

func NewGenerator(baseDir string) *Generator {
	return &Generator{baseDir: baseDir}
}

func (g *Generator) BaseDir() string {
	return g.baseDir
}

// WriteActivityLog writes the {activities, total} envelope.
func (g *Generator) WriteActivityLog(name string, events []model.RawActivityEvent, total int) (string, error) {
	return g.writeJSON(name, model.ActivityLogResponse{Activities: events, Total: total})
}

// WriteActivityJSONL writes one activity event per line.
func (g *Generator) WriteActivityJSONL(name string, events []model.RawActivityEvent) (string, error) {
	return writeLines(g, name, events)
}

// WriteProcessing writes a processing-history array.
func (g *Generator) WriteProcessing(name string, events []model.RawProcessingEvent) (string, error) {
	return g.writeJSON(name, events)
}

// WriteRaw writes body verbatim, for malformed input.
func (g *Generator) WriteRaw(name, body string) (string, error) {
	return g.write(name, []byte(body))
}

func (g *Generator) writeJSON(name string, v any) (string, error) {
	data, err := sonic.Marshal(v)
	if err != nil {
		return "", err
	}
	return g.write(name, data)
}

func writeLines[T any](g *Generator, name string, events []T) (string, error) {
	var buf bytes.Buffer
	for _, e := range events {
		line, err := sonic.Marshal(e)
		if err != nil {
			return "", err
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	return g.write(name, buf.Bytes())
}

func (g *Generator) write(name string, data []byte) (string, error) {
	path := filepath.Join(g.baseDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}
