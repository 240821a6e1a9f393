package history

import (
	"sync"
	"time"

	"github.com/penwyp/go-activity-timeline/internal/core/filter"
	"github.com/penwyp/go-activity-timeline/internal/core/model"
	"github.com/penwyp/go-activity-timeline/internal/core/pagination"
	"github.com/penwyp/go-activity-timeline/internal/core/pipeline"
	"github.com/penwyp/go-activity-timeline/internal/core/timeline"
	"github.com/penwyp/go-activity-timeline/internal/presentation/display"
)

// StateManager holds the view state behind the interactive timeline in a thread-safe manner.
// Any change to the filter, the committed search or the tab resets the pagination window,
// the selection and the open detail panel.
type StateManager struct {
	mu sync.RWMutex

	assembler *timeline.Assembler
	filter    filter.State
	pager     *pagination.Controller

	searchInput   string
	searchFocused bool
	selected      int
	expandedID    string
	showHelp      bool
	statusMessage string
	lastRefresh   time.Time

	loc *time.Location
	now func() time.Time
}

// NewStateManager creates a new StateManager instance
func NewStateManager(tab model.Tab, initial filter.State, pageSize int, loc *time.Location) *StateManager {
	if loc == nil {
		loc = time.Local
	}
	return &StateManager{
		assembler:   timeline.NewAssembler(tab),
		filter:      initial,
		pager:       pagination.NewController(pageSize),
		searchInput: initial.Search,
		loc:         loc,
		now:         time.Now,
	}
}

// resetView runs after every filter or tab mutation. Callers hold mu.
func (sm *StateManager) resetView() {
	sm.pager.Reset()
	sm.selected = 0
	sm.expandedID = ""
}

// Filter returns the committed filter state.
func (sm *StateManager) Filter() filter.State {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.filter
}

// UpdateFilter applies fn to the filter. The view resets when the filter changed.
func (sm *StateManager) UpdateFilter(fn func(*filter.State)) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	next := sm.filter
	fn(&next)
	if next == sm.filter {
		return false
	}
	sm.filter = next
	sm.searchInput = next.Search
	sm.resetView()
	return true
}

// ToggleAction selects value as the action pill, or clears it when already selected.
func (sm *StateManager) ToggleAction(value string) bool {
	return sm.UpdateFilter(func(s *filter.State) { s.ToggleAction(value) })
}

// ToggleEntity selects value as the entity pill, or clears it when already selected.
func (sm *StateManager) ToggleEntity(value string) bool {
	return sm.UpdateFilter(func(s *filter.State) { s.ToggleEntity(value) })
}

// ClearFilters drops search and every pill.
func (sm *StateManager) ClearFilters() bool {
	return sm.UpdateFilter(func(s *filter.State) { *s = filter.State{} })
}

// SetSearchInput records typed text without filtering on it yet.
func (sm *StateManager) SetSearchInput(text string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.searchInput = text
}

// SearchInput returns the text in the search field.
func (sm *StateManager) SearchInput() string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.searchInput
}

// CommitSearch makes the typed text the active search.
func (sm *StateManager) CommitSearch() bool {
	text := sm.SearchInput()
	return sm.UpdateFilter(func(s *filter.State) { s.Search = text })
}

func (sm *StateManager) SetSearchFocus(focused bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.searchFocused = focused
}

func (sm *StateManager) SearchFocused() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.searchFocused
}

// Tab returns the active tab.
func (sm *StateManager) Tab() model.Tab {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.assembler.Tab()
}

// PinTab keeps the starting tab when the first loads arrive.
func (sm *StateManager) PinTab() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.assembler.Pin()
}

// SetTab switches tabs on user request.
func (sm *StateManager) SetTab(tab model.Tab) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if !sm.assembler.SetTab(tab) {
		return false
	}
	sm.resetView()
	return true
}

// SwitchTab flips to the other tab.
func (sm *StateManager) SwitchTab() bool {
	return sm.SetTab(sm.Tab().Other())
}

// ApplyActivities stores an activity fetch outcome.
func (sm *StateManager) ApplyActivities(events []model.RawActivityEvent, err error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.assembler.SetActivities(events, err) {
		sm.resetView()
	}
	if err == nil {
		sm.lastRefresh = sm.now()
	}
	sm.clampSelection()
}

// ApplyProcessing stores a processing fetch outcome.
func (sm *StateManager) ApplyProcessing(events []model.RawProcessingEvent, err error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.assembler.SetProcessing(events, err) {
		sm.resetView()
	}
	if err == nil {
		sm.lastRefresh = sm.now()
	}
	sm.clampSelection()
}

// MarkLoading flags a source as refetching.
func (sm *StateManager) MarkLoading(source model.Source) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.assembler.MarkLoading(source)
}

// Status returns the fetch status of source.
func (sm *StateManager) Status(source model.Source) timeline.SourceStatus {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.assembler.Status(source)
}

// LoadMore widens the window by one page.
func (sm *StateManager) LoadMore() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if !sm.pager.HasMore(len(sm.result().Filtered)) {
		return false
	}
	sm.pager.LoadMore()
	return true
}

// Visible returns the pagination window size.
func (sm *StateManager) Visible() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.pager.Visible()
}

// MoveSelection moves the highlight by delta within the visible entries.
func (sm *StateManager) MoveSelection(delta int) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.selected += delta
	sm.clampSelection()
}

func (sm *StateManager) clampSelection() {
	visible := len(sm.result().VisibleEntries())
	if sm.selected >= visible {
		sm.selected = visible - 1
	}
	if sm.selected < 0 {
		sm.selected = 0
	}
}

// Selected returns the highlighted entry, if any.
func (sm *StateManager) Selected() (timeline.TimelineEntry, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.selectedLocked()
}

// selectedLocked resolves the selection. Callers hold mu.
func (sm *StateManager) selectedLocked() (timeline.TimelineEntry, bool) {
	entries := sm.result().VisibleEntries()
	if sm.selected < 0 || sm.selected >= len(entries) {
		return timeline.TimelineEntry{}, false
	}
	return entries[sm.selected], true
}

// ToggleExpanded opens the detail panel of the selection, or closes it when open.
func (sm *StateManager) ToggleExpanded() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	e, ok := sm.selectedLocked()
	if !ok {
		return
	}
	if sm.expandedID == e.ID {
		sm.expandedID = ""
		return
	}
	sm.expandedID = e.ID
}

// Collapse closes the detail panel. Reports whether one was open.
func (sm *StateManager) Collapse() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.expandedID == "" {
		return false
	}
	sm.expandedID = ""
	return true
}

func (sm *StateManager) ExpandedID() string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.expandedID
}

func (sm *StateManager) ToggleHelp() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.showHelp = !sm.showHelp
}

func (sm *StateManager) SetStatusMessage(msg string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.statusMessage = msg
}

// Result runs the pipeline over the current state.
func (sm *StateManager) Result() pipeline.Result {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.result()
}

// Filtered returns the full filtered set of the active tab; exports read it.
func (sm *StateManager) Filtered() []timeline.TimelineEntry {
	return sm.Result().Filtered
}

func (sm *StateManager) result() pipeline.Result {
	activities, processing := sm.assembler.Raw()
	return pipeline.Run(pipeline.Input{
		Activities: activities,
		Processing: processing,
		Filter:     sm.filter,
		Tab:        sm.assembler.Tab(),
		Visible:    sm.pager.Visible(),
		Now:        sm.now(),
		Location:   sm.loc,
	})
}

// View assembles a display frame.
func (sm *StateManager) View() display.ViewState {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	activities, processing := sm.assembler.Counts()
	return display.ViewState{
		Tab: sm.assembler.Tab(),
		Sources: []display.SourceView{
			{Source: model.SourceActivity, Status: sm.assembler.Status(model.SourceActivity), Count: activities},
			{Source: model.SourceProcessing, Status: sm.assembler.Status(model.SourceProcessing), Count: processing},
		},
		Filter:        sm.filter,
		SearchInput:   sm.searchInput,
		SearchFocused: sm.searchFocused,
		Result:        sm.result(),
		Selected:      sm.selected,
		ExpandedID:    sm.expandedID,
		ShowHelp:      sm.showHelp,
		StatusMessage: sm.statusMessage,
		LastRefresh:   sm.lastRefresh,
		Location:      sm.loc,
	}
}
