package timeline

import (
	"github.com/penwyp/go-activity-timeline/internal/core/model"
)

// SourceState tracks one upstream fetch.
type SourceState int

const (
	SourceLoading SourceState = iota
	SourceReady
	SourceFailed
)

func (s SourceState) String() string {
	switch s {
	case SourceReady:
		return "ready"
	case SourceFailed:
		return "failed"
	default:
		return "loading"
	}
}

// SourceStatus is the current state of one source plus its last error.
type SourceStatus struct {
	State SourceState
	Err   error
	// Loaded is true once the source has succeeded at least once.
	Loaded bool
}

// Assembler holds the two raw streams and exposes the one selected by the active tab.
// It never interleaves both streams. Not safe for concurrent use.
type Assembler struct {
	tab        model.Tab
	autoPicked bool

	activities []model.RawActivityEvent
	processing []model.RawProcessingEvent

	activityStatus   SourceStatus
	processingStatus SourceStatus
}

// NewAssembler starts on the given tab with both sources loading.
func NewAssembler(initial model.Tab) *Assembler {
	if _, ok := model.ParseTab(string(initial)); !ok {
		initial = model.TabActivity
	}
	return &Assembler{tab: initial}
}

// Tab returns the active tab.
func (a *Assembler) Tab() model.Tab {
	return a.tab
}

// SetTab switches tabs on user request. It also disarms the auto-pick so a later
// load never overrides the user's choice. Reports whether the tab changed.
func (a *Assembler) SetTab(tab model.Tab) bool {
	a.autoPicked = true
	if tab == a.tab {
		return false
	}
	if _, ok := model.ParseTab(string(tab)); !ok {
		return false
	}
	a.tab = tab
	return true
}

// Pin keeps the current tab for good: the auto-pick never fires. Used when the
// starting tab was chosen by the user rather than defaulted.
func (a *Assembler) Pin() {
	a.autoPicked = true
}

// SetActivities records the outcome of an activity-log fetch. On error the previous
// payload is kept. Reports whether the active tab changed as a result.
func (a *Assembler) SetActivities(events []model.RawActivityEvent, err error) bool {
	if err != nil {
		a.activityStatus.State = SourceFailed
		a.activityStatus.Err = err
		return false
	}
	a.activities = events
	a.activityStatus = SourceStatus{State: SourceReady, Loaded: true}
	return a.autoPick()
}

// SetProcessing records the outcome of a processing-history fetch. On error the previous
// payload is kept. Reports whether the active tab changed as a result.
func (a *Assembler) SetProcessing(events []model.RawProcessingEvent, err error) bool {
	if err != nil {
		a.processingStatus.State = SourceFailed
		a.processingStatus.Err = err
		return false
	}
	a.processing = events
	a.processingStatus = SourceStatus{State: SourceReady, Loaded: true}
	return a.autoPick()
}

// MarkLoading flags a source as refetching without discarding its payload.
func (a *Assembler) MarkLoading(source model.Source) {
	switch source {
	case model.SourceActivity:
		a.activityStatus.State = SourceLoading
	case model.SourceProcessing:
		a.processingStatus.State = SourceLoading
	}
}

// autoPick runs once, the first time both sources have loaded: an empty activity log
// next to a non-empty processing history switches to the processing tab.
func (a *Assembler) autoPick() bool {
	if a.autoPicked || !a.activityStatus.Loaded || !a.processingStatus.Loaded {
		return false
	}
	a.autoPicked = true
	if len(a.activities) == 0 && len(a.processing) > 0 && a.tab != model.TabProcessing {
		a.tab = model.TabProcessing
		return true
	}
	return false
}

// Status returns the fetch status of a source.
func (a *Assembler) Status(source model.Source) SourceStatus {
	if source == model.SourceProcessing {
		return a.processingStatus
	}
	return a.activityStatus
}

// ActiveStatus returns the status of the source behind the active tab.
func (a *Assembler) ActiveStatus() SourceStatus {
	return a.Status(tabSource(a.tab))
}

// Counts returns the raw record count per source.
func (a *Assembler) Counts() (activities, processing int) {
	return len(a.activities), len(a.processing)
}

// Raw returns both stored payloads.
func (a *Assembler) Raw() ([]model.RawActivityEvent, []model.RawProcessingEvent) {
	return a.activities, a.processing
}

// Entries normalizes the active stream. Output order equals producer order.
func (a *Assembler) Entries() []TimelineEntry {
	return Assemble(a.activities, a.processing, a.tab)
}

// Assemble drives the stream selected by tab through its normalizer.
func Assemble(activities []model.RawActivityEvent, processing []model.RawProcessingEvent, tab model.Tab) []TimelineEntry {
	if tab == model.TabProcessing {
		return BuildFromProcessing(processing)
	}
	return BuildFromActivities(activities)
}

func tabSource(tab model.Tab) model.Source {
	if tab == model.TabProcessing {
		return model.SourceProcessing
	}
	return model.SourceActivity
}
