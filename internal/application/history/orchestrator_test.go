package history

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-activity-timeline/internal/core/model"
	"github.com/penwyp/go-activity-timeline/internal/core/timeline"
	"github.com/penwyp/go-activity-timeline/internal/presentation/display"
	"github.com/penwyp/go-activity-timeline/internal/presentation/interaction"
)

type fakeLoader struct {
	activities    []model.RawActivityEvent
	processing    []model.RawProcessingEvent
	activityErr   error
	processingErr error

	activityCalls   atomic.Int32
	processingCalls atomic.Int32
}

func (f *fakeLoader) LoadActivities(ctx context.Context) ([]model.RawActivityEvent, error) {
	f.activityCalls.Add(1)
	return f.activities, f.activityErr
}

func (f *fakeLoader) LoadProcessing(ctx context.Context) ([]model.RawProcessingEvent, error) {
	f.processingCalls.Add(1)
	return f.processing, f.processingErr
}

func (f *fakeLoader) WatchPaths() []string { return []string{"/data/activity.json"} }

func (f *fakeLoader) SourceFor(path string) (model.Source, bool) {
	if path == "/data/activity.json" {
		return model.SourceActivity, true
	}
	return "", false
}

type fakeDisplay struct {
	mu     sync.Mutex
	frames []display.ViewState
}

func (d *fakeDisplay) EnterAlternateScreen()        {}
func (d *fakeDisplay) ExitAlternateScreen()         {}
func (d *fakeDisplay) RenderLoading(message string) {}

func (d *fakeDisplay) Render(state display.ViewState) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frames = append(d.frames, state)
}

func (d *fakeDisplay) last() (display.ViewState, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.frames) == 0 {
		return display.ViewState{}, false
	}
	return d.frames[len(d.frames)-1], true
}

type fakeKeyboard struct {
	events chan interaction.KeyEvent
	closed atomic.Bool
}

func newFakeKeyboard() *fakeKeyboard {
	return &fakeKeyboard{events: make(chan interaction.KeyEvent, 16)}
}

func (k *fakeKeyboard) Events() <-chan interaction.KeyEvent { return k.events }

func (k *fakeKeyboard) Close() error {
	k.closed.Store(true)
	return nil
}

func char(r rune) interaction.KeyEvent {
	return interaction.KeyEvent{Key: r, Type: interaction.KeyChar}
}

func newTestOrchestrator(t *testing.T, loader *fakeLoader) *Orchestrator {
	t.Helper()
	config := &Config{
		Timezone:        "UTC",
		PageSize:        10,
		SearchDebounce:  10 * time.Millisecond,
		RefreshInterval: -1,
		ExportDir:       t.TempDir(),
	}
	o, err := NewOrchestratorWithLoader(config, loader)
	require.NoError(t, err)
	return o
}

func TestOrchestrator_LoadOnceAndExport(t *testing.T) {
	loader := &fakeLoader{activities: makeActivities(12), processing: makeProcessing(2)}
	o := newTestOrchestrator(t, loader)

	o.LoadOnce(context.Background())

	res := o.State().Result()
	assert.Equal(t, 12, res.Total)
	assert.Len(t, res.VisibleEntries(), 10)

	path, err := o.Export(model.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, o.config.ExportDir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "history-"))
	assert.True(t, strings.HasSuffix(path, ".csv"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(string(data), "\n")
	assert.Equal(t, "action,entity,title,description,actor,timestamp", lines[0])
	assert.Len(t, lines, 13, "export covers the whole filtered set, not the page")
}

func TestOrchestrator_LoadOnceKeepsHealthySource(t *testing.T) {
	loader := &fakeLoader{activities: makeActivities(3), processingErr: errors.New("boom")}
	o := newTestOrchestrator(t, loader)

	o.LoadOnce(context.Background())

	assert.Equal(t, timeline.SourceReady, o.State().Status(model.SourceActivity).State)
	assert.Equal(t, timeline.SourceFailed, o.State().Status(model.SourceProcessing).State)
	assert.Len(t, o.State().Filtered(), 3)
}

func TestOrchestrator_ExplicitTabSkipsAutoPick(t *testing.T) {
	tests := []struct {
		name     string
		explicit bool
		expected model.Tab
	}{
		{name: "defaulted tab", explicit: false, expected: model.TabProcessing},
		{name: "chosen tab", explicit: true, expected: model.TabActivity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{
				Tab:             model.TabActivity,
				TabExplicit:     tt.explicit,
				Timezone:        "UTC",
				RefreshInterval: -1,
				ExportDir:       t.TempDir(),
			}
			o, err := NewOrchestratorWithLoader(config, &fakeLoader{processing: makeProcessing(1)})
			require.NoError(t, err)

			o.LoadOnce(context.Background())

			assert.Equal(t, tt.expected, o.State().Tab())
		})
	}
}

func TestOrchestrator_InvalidConfig(t *testing.T) {
	_, err := NewOrchestratorWithLoader(&Config{Tab: "nope"}, &fakeLoader{})
	assert.Error(t, err)

	_, err = NewOrchestratorWithLoader(&Config{Timezone: "Mars/Olympus"}, &fakeLoader{})
	assert.Error(t, err)
}

func TestOrchestrator_SearchFocusAndCommit(t *testing.T) {
	o := newTestOrchestrator(t, &fakeLoader{activities: makeActivities(20)})
	o.LoadOnce(context.Background())
	ctx := context.Background()

	o.handleKeyboard(ctx, char('/'))
	require.True(t, o.State().SearchFocused())

	for _, r := range "Item 1x" {
		assert.False(t, o.handleKeyboard(ctx, char(r)), "typing never quits")
	}
	o.handleKeyboard(ctx, interaction.KeyEvent{Type: interaction.KeyBackspace})
	assert.Equal(t, "Item 1", o.State().SearchInput())

	o.handleKeyboard(ctx, interaction.KeyEvent{Type: interaction.KeyEnter})
	assert.False(t, o.State().SearchFocused())
	assert.Equal(t, "Item 1", o.State().Filter().Search)
	assert.Len(t, o.State().Filtered(), 11)
	assert.False(t, o.debouncer.Pending())
}

func TestOrchestrator_DebouncedSearchSignalsOnce(t *testing.T) {
	o := newTestOrchestrator(t, &fakeLoader{activities: makeActivities(5)})
	ctx := context.Background()

	o.handleKeyboard(ctx, char('/'))
	o.handleKeyboard(ctx, char('I'))
	o.handleKeyboard(ctx, char('t'))

	select {
	case <-o.searchDue:
	case <-time.After(time.Second):
		t.Fatal("debounced search never fired")
	}
	assert.Empty(t, o.State().Filter().Search, "commit happens on the loop goroutine")

	select {
	case <-o.searchDue:
		t.Fatal("burst of keystrokes fired more than once")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestOrchestrator_PillsFollowSelection(t *testing.T) {
	o := newTestOrchestrator(t, &fakeLoader{activities: makeActivities(9)})
	o.LoadOnce(context.Background())
	ctx := context.Background()

	o.handleKeyboard(ctx, char('j'))
	selected, ok := o.State().Selected()
	require.True(t, ok)

	o.handleKeyboard(ctx, char('a'))
	assert.Equal(t, selected.ActionKey, o.State().Filter().ActionFilter)
	o.handleKeyboard(ctx, char('e'))
	assert.Equal(t, selected.EntityKey, o.State().Filter().EntityFilter)
	assert.Len(t, o.State().Filtered(), 3)

	o.handleKeyboard(ctx, char('c'))
	assert.True(t, o.State().Filter().IsZero())
}

func TestOrchestrator_DetailAndEscape(t *testing.T) {
	o := newTestOrchestrator(t, &fakeLoader{activities: makeActivities(2)})
	o.LoadOnce(context.Background())
	ctx := context.Background()

	o.handleKeyboard(ctx, interaction.KeyEvent{Type: interaction.KeyEnter})
	assert.Equal(t, "a0", o.State().ExpandedID())
	o.handleKeyboard(ctx, interaction.KeyEvent{Type: interaction.KeyEscape})
	assert.Empty(t, o.State().ExpandedID())

	assert.True(t, o.handleKeyboard(ctx, char('q')))
	assert.True(t, o.handleKeyboard(ctx, interaction.KeyEvent{Type: interaction.KeyCtrlC}))
}

func TestOrchestrator_ExportKeyPostsNotice(t *testing.T) {
	o := newTestOrchestrator(t, &fakeLoader{activities: makeActivities(4)})
	o.LoadOnce(context.Background())

	o.handleKeyboard(context.Background(), char('J'))
	assert.Contains(t, o.State().View().StatusMessage, "Exporting 4 entries as json")

	select {
	case msg := <-o.notices:
		require.True(t, strings.HasPrefix(msg, "Exported to "), msg)
		path := strings.TrimPrefix(msg, "Exported to ")
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "["))
	case <-time.After(time.Second):
		t.Fatal("export never reported back")
	}
}

func TestOrchestrator_FileChangeRefreshesOwningSource(t *testing.T) {
	loader := &fakeLoader{activities: makeActivities(1)}
	o := newTestOrchestrator(t, loader)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	o.handleFileChange(ctx, model.FileEvent{Path: "/data/activity.json", Operation: "WRITE"})
	r := <-o.results
	assert.Equal(t, model.SourceActivity, r.source)
	assert.Equal(t, int32(1), loader.activityCalls.Load())
	assert.Equal(t, int32(0), loader.processingCalls.Load())
	require.Eventually(t, func() bool {
		_, busy := o.inflight.Load(model.SourceActivity)
		return !busy
	}, time.Second, time.Millisecond)

	o.handleFileChange(ctx, model.FileEvent{Path: "/elsewhere/other.json", Operation: "WRITE"})
	<-o.results
	<-o.results
	assert.Equal(t, int32(1), loader.processingCalls.Load())
}

func TestOrchestrator_LoopRendersUntilQuit(t *testing.T) {
	o := newTestOrchestrator(t, &fakeLoader{activities: makeActivities(3), processing: makeProcessing(1)})
	screen := &fakeDisplay{}
	keyboard := newFakeKeyboard()
	o.display = screen
	o.keyboard = keyboard

	done := make(chan error, 1)
	go func() { done <- o.loop(context.Background()) }()

	require.Eventually(t, func() bool {
		frame, ok := screen.last()
		return ok && len(frame.Result.Filtered) == 3 && frame.Sources[1].Count == 1
	}, time.Second, 5*time.Millisecond)

	keyboard.events <- char('t')
	require.Eventually(t, func() bool {
		frame, _ := screen.last()
		return frame.Tab == model.TabProcessing
	}, time.Second, 5*time.Millisecond)

	keyboard.events <- char('q')
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop on quit")
	}

	require.NoError(t, o.Close())
	assert.True(t, keyboard.closed.Load())
}

func TestOrchestrator_LoopStopsOnCancel(t *testing.T) {
	o := newTestOrchestrator(t, &fakeLoader{})
	o.display = &fakeDisplay{}
	o.keyboard = newFakeKeyboard()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- o.loop(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("loop ignored cancellation")
	}
}
