package history

import (
	"context"

	"github.com/penwyp/go-activity-timeline/internal/core/model"
	"github.com/penwyp/go-activity-timeline/internal/presentation/display"
	"github.com/penwyp/go-activity-timeline/internal/presentation/interaction"
)

// Loader fetches and decodes both upstream streams.
type Loader interface {
	LoadActivities(ctx context.Context) ([]model.RawActivityEvent, error)
	LoadProcessing(ctx context.Context) ([]model.RawProcessingEvent, error)
	// WatchPaths lists the local files behind the sources.
	WatchPaths() []string
	// SourceFor maps a watched path back to its stream.
	SourceFor(path string) (model.Source, bool)
}

// DisplayController handles terminal display operations
type DisplayController interface {
	EnterAlternateScreen()
	ExitAlternateScreen()
	RenderLoading(message string)
	Render(state display.ViewState)
}

// InputHandler processes keyboard input events
type InputHandler interface {
	Events() <-chan interaction.KeyEvent
	Close() error
}

// FileMonitor watches for file changes
type FileMonitor interface {
	Events() <-chan model.FileEvent
	Close() error
}
