package history

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/penwyp/go-activity-timeline/internal/core/filter"
	"github.com/penwyp/go-activity-timeline/internal/core/model"
	"github.com/penwyp/go-activity-timeline/internal/data/watcher"
	"github.com/penwyp/go-activity-timeline/internal/presentation/display"
	"github.com/penwyp/go-activity-timeline/internal/presentation/formatter"
	"github.com/penwyp/go-activity-timeline/internal/presentation/interaction"
	"github.com/penwyp/go-activity-timeline/internal/util"
)

type loadResult struct {
	source     model.Source
	activities []model.RawActivityEvent
	processing []model.RawProcessingEvent
	err        error
}

// Orchestrator coordinates loading, input, refresh and rendering for the timeline view.
type Orchestrator struct {
	config *Config
	loc    *time.Location

	loader   Loader
	state    *StateManager
	exporter *formatter.Exporter

	display  DisplayController
	keyboard InputHandler
	watcher  FileMonitor

	debouncer *filter.Debouncer
	results   chan loadResult
	searchDue chan struct{}
	notices   chan string

	inflight sync.Map // model.Source -> struct{}
}

// NewOrchestrator validates config and builds the non-terminal components.
func NewOrchestrator(config *Config) (*Orchestrator, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	loader, err := NewDataLoader(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create data loader: %w", err)
	}
	return NewOrchestratorWithLoader(config, loader)
}

// NewOrchestratorWithLoader is NewOrchestrator with an explicit loader.
func NewOrchestratorWithLoader(config *Config, loader Loader) (*Orchestrator, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := util.InitializeTimeProvider(config.Timezone); err != nil {
		return nil, fmt.Errorf("failed to initialize timezone: %w", err)
	}
	tp := util.GetTimeProvider()
	loc := tp.Location()

	state := NewStateManager(config.Tab, config.Filter, config.PageSize, loc)
	if config.TabExplicit {
		state.PinTab()
	}

	return &Orchestrator{
		config:    config,
		loc:       loc,
		loader:    loader,
		state:     state,
		exporter:  formatter.NewExporter(formatter.NewFileDownloader(config.ExportDir), tp.Now),
		debouncer: filter.NewDebouncer(config.SearchDebounce),
		results:   make(chan loadResult, 8),
		searchDue: make(chan struct{}, 1),
		notices:   make(chan string, 8),
	}, nil
}

// State exposes the state manager.
func (o *Orchestrator) State() *StateManager {
	return o.state
}

// LoadOnce fetches both sources synchronously, for the one-shot command.
func (o *Orchestrator) LoadOnce(ctx context.Context) {
	var wg sync.WaitGroup
	results := make([]loadResult, 2)
	for i, source := range []model.Source{model.SourceActivity, model.SourceProcessing} {
		wg.Add(1)
		go func(i int, source model.Source) {
			defer wg.Done()
			results[i] = o.load(ctx, source)
		}(i, source)
	}
	wg.Wait()
	for _, r := range results {
		o.apply(r)
	}
}

func (o *Orchestrator) load(ctx context.Context, source model.Source) loadResult {
	r := loadResult{source: source}
	if source == model.SourceProcessing {
		r.processing, r.err = o.loader.LoadProcessing(ctx)
	} else {
		r.activities, r.err = o.loader.LoadActivities(ctx)
	}
	return r
}

func (o *Orchestrator) apply(r loadResult) {
	if r.source == model.SourceProcessing {
		o.state.ApplyProcessing(r.processing, r.err)
	} else {
		o.state.ApplyActivities(r.activities, r.err)
	}
}

// refresh starts a background fetch of source unless one is already running.
func (o *Orchestrator) refresh(ctx context.Context, source model.Source) {
	if _, busy := o.inflight.LoadOrStore(source, struct{}{}); busy {
		return
	}
	o.state.MarkLoading(source)
	go func() {
		defer o.inflight.Delete(source)
		r := o.load(ctx, source)
		select {
		case o.results <- r:
		case <-ctx.Done():
		}
	}()
}

func (o *Orchestrator) refreshAll(ctx context.Context) {
	o.refresh(ctx, model.SourceActivity)
	o.refresh(ctx, model.SourceProcessing)
}

// Run starts the interactive main loop.
func (o *Orchestrator) Run(ctx context.Context) error {
	util.LogInfo("Starting activity timeline...")
	defer o.Close()

	keyboard, err := interaction.NewKeyboardReader()
	if err != nil {
		return fmt.Errorf("failed to initialize keyboard: %w", err)
	}
	o.keyboard = keyboard

	if o.display == nil {
		o.display = display.NewTerminalDisplay()
	}
	o.display.EnterAlternateScreen()
	defer o.display.ExitAlternateScreen()
	o.display.RenderLoading("Loading activity and processing history...")

	if o.config.Watch {
		o.startWatcher()
	}
	return o.loop(ctx)
}

func (o *Orchestrator) startWatcher() {
	paths := o.loader.WatchPaths()
	if len(paths) == 0 {
		return
	}
	w, err := watcher.NewFileWatcher(paths)
	if err != nil {
		util.LogWarnf("File watching disabled: %v", err)
		return
	}
	o.watcher = w
}

// loop is the single goroutine that mutates view state in response to events.
func (o *Orchestrator) loop(ctx context.Context) error {
	o.refreshAll(ctx)

	var tick <-chan time.Time
	if o.config.RefreshInterval > 0 {
		ticker := time.NewTicker(o.config.RefreshInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	var fileEvents <-chan model.FileEvent
	if o.watcher != nil {
		fileEvents = o.watcher.Events()
	}

	for {
		select {
		case <-ctx.Done():
			util.LogInfo("Shutting down activity timeline...")
			return nil

		case r := <-o.results:
			o.apply(r)

		case <-tick:
			o.refreshAll(ctx)

		case event, ok := <-fileEvents:
			if !ok {
				fileEvents = nil
				continue
			}
			o.handleFileChange(ctx, event)

		case <-o.searchDue:
			o.state.CommitSearch()

		case msg := <-o.notices:
			o.state.SetStatusMessage(msg)

		case keyEvent := <-o.keyboard.Events():
			if o.handleKeyboard(ctx, keyEvent) {
				return nil
			}
		}
		o.display.Render(o.state.View())
	}
}

func (o *Orchestrator) handleFileChange(ctx context.Context, event model.FileEvent) {
	util.LogDebugf("File changed: %s (%s)", event.Path, event.Operation)
	path, err := filepath.Abs(event.Path)
	if err != nil {
		path = event.Path
	}
	if source, ok := o.loader.SourceFor(path); ok {
		o.refresh(ctx, source)
		return
	}
	o.refreshAll(ctx)
}

// handleKeyboard applies one keystroke. Returns true when the user asked to quit.
func (o *Orchestrator) handleKeyboard(ctx context.Context, event interaction.KeyEvent) bool {
	cmd := interaction.Resolve(event, o.state.SearchFocused())

	switch cmd {
	case interaction.CmdQuit:
		return true

	case interaction.CmdFocusSearch:
		o.state.SetSearchFocus(true)
	case interaction.CmdBlurSearch:
		o.state.SetSearchFocus(false)
		o.debouncer.Cancel()
		o.state.CommitSearch()
	case interaction.CmdSearchInput:
		o.state.SetSearchInput(o.state.SearchInput() + string(event.Key))
		o.scheduleSearch()
	case interaction.CmdSearchBackspace:
		text := []rune(o.state.SearchInput())
		if len(text) > 0 {
			o.state.SetSearchInput(string(text[:len(text)-1]))
			o.scheduleSearch()
		}

	case interaction.CmdCollapse:
		o.state.Collapse()
	case interaction.CmdUp:
		o.state.MoveSelection(-1)
	case interaction.CmdDown:
		o.state.MoveSelection(1)
	case interaction.CmdToggleDetail:
		o.state.ToggleExpanded()
	case interaction.CmdLoadMore:
		o.state.LoadMore()
	case interaction.CmdSwitchTab:
		o.state.SwitchTab()

	case interaction.CmdToggleActionPill:
		if e, ok := o.state.Selected(); ok {
			o.state.ToggleAction(e.ActionKey)
		}
	case interaction.CmdToggleEntityPill:
		if e, ok := o.state.Selected(); ok {
			o.state.ToggleEntity(e.EntityKey)
		}
	case interaction.CmdClearFilters:
		o.debouncer.Cancel()
		o.state.ClearFilters()

	case interaction.CmdExportJSON:
		o.export(model.FormatJSON)
	case interaction.CmdExportCSV:
		o.export(model.FormatCSV)

	case interaction.CmdRefresh:
		o.refreshAll(ctx)
	case interaction.CmdHelp:
		o.state.ToggleHelp()
	}
	return false
}

// scheduleSearch restarts the debounce timer; the commit itself happens on the loop goroutine.
func (o *Orchestrator) scheduleSearch() {
	o.debouncer.Trigger(func() {
		select {
		case o.searchDue <- struct{}{}:
		default:
		}
	})
}

// export is fire-and-forget; the outcome only shows up as a status message.
func (o *Orchestrator) export(format string) {
	entries := o.state.Filtered()
	o.state.SetStatusMessage(fmt.Sprintf("Exporting %d entries as %s...", len(entries), format))
	o.exporter.ExportAsync(entries, format, func(path string, err error) {
		msg := "Exported to " + path
		if err != nil {
			msg = "Export failed: " + err.Error()
		}
		select {
		case o.notices <- msg:
		default:
		}
	})
}

// Export writes the filtered set once, for the one-shot command.
func (o *Orchestrator) Export(format string) (string, error) {
	return o.exporter.Export(o.state.Filtered(), format)
}

// Close cleans up all resources
func (o *Orchestrator) Close() error {
	o.debouncer.Cancel()
	if o.keyboard != nil {
		if err := o.keyboard.Close(); err != nil {
			util.LogErrorf("Failed to restore terminal: %v", err)
		}
		o.keyboard = nil
	}
	if o.watcher != nil {
		if err := o.watcher.Close(); err != nil {
			return fmt.Errorf("failed to close file watcher: %w", err)
		}
		o.watcher = nil
	}
	return nil
}
