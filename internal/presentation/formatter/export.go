package formatter

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/penwyp/go-activity-timeline/internal/core/model"
	"github.com/penwyp/go-activity-timeline/internal/core/timeline"
	"github.com/penwyp/go-activity-timeline/internal/util"
)

// Downloader delivers an export blob under a file name.
type Downloader interface {
	Download(name string, data []byte) (string, error)
}

// FileDownloader writes exports into a directory.
type FileDownloader struct {
	dir string
}

func NewFileDownloader(dir string) *FileDownloader {
	if dir == "" {
		dir = "."
	}
	return &FileDownloader{dir: dir}
}

func (d *FileDownloader) Download(name string, data []byte) (string, error) {
	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory %s: %w", d.dir, err)
	}
	path := filepath.Join(d.dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export %s: %w", path, err)
	}
	return path, nil
}

// ExportFileName returns history-<ISO date of today>.<format>.
func ExportFileName(today time.Time, format string) string {
	return fmt.Sprintf("history-%s.%s", today.Format(util.ISODate), format)
}

// Encode serializes entries in an export format.
func Encode(entries []timeline.TimelineEntry, format string) ([]byte, error) {
	switch format {
	case model.FormatJSON:
		return ExportJSON(entries)
	case model.FormatCSV:
		return ExportCSV(entries), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// Exporter serializes the filtered set and hands it to a Downloader.
type Exporter struct {
	downloader Downloader
	now        func() time.Time
}

func NewExporter(downloader Downloader, now func() time.Time) *Exporter {
	if now == nil {
		now = time.Now
	}
	return &Exporter{downloader: downloader, now: now}
}

// Export writes entries and returns where they went.
func (e *Exporter) Export(entries []timeline.TimelineEntry, format string) (string, error) {
	data, err := Encode(entries, format)
	if err != nil {
		return "", err
	}
	path, err := e.downloader.Download(ExportFileName(e.now(), format), data)
	if err != nil {
		return "", err
	}
	util.LogInfof("Exported %d entries to %s", len(entries), path)
	return path, nil
}

// ExportAsync runs Export in the background. done, when non-nil, receives the outcome.
func (e *Exporter) ExportAsync(entries []timeline.TimelineEntry, format string, done func(path string, err error)) {
	snapshot := append([]timeline.TimelineEntry(nil), entries...)
	go func() {
		path, err := e.Export(snapshot, format)
		if err != nil {
			util.LogErrorf("Export %s failed: %v", format, err)
		}
		if done != nil {
			done(path, err)
		}
	}()
}
