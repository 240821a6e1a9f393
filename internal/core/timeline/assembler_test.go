package timeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-activity-timeline/internal/core/model"
)

var errUpstream = errors.New("upstream unavailable")

func sampleProcessing() []model.RawProcessingEvent {
	return []model.RawProcessingEvent{
		{Filename: "a.pdf", FactsExtracted: 2, Timestamp: "2024-05-02T08:00:00Z"},
	}
}

func TestAssembler_AutoPicksProcessingOnce(t *testing.T) {
	a := NewAssembler(model.TabActivity)

	assert.False(t, a.SetActivities(nil, nil))
	assert.Equal(t, model.TabActivity, a.Tab())

	changed := a.SetProcessing(sampleProcessing(), nil)
	assert.True(t, changed)
	assert.Equal(t, model.TabProcessing, a.Tab())

	// User goes back to activity; later loads must not flip the tab again.
	assert.True(t, a.SetTab(model.TabActivity))
	assert.False(t, a.SetActivities(nil, nil))
	assert.False(t, a.SetProcessing(sampleProcessing(), nil))
	assert.Equal(t, model.TabActivity, a.Tab())
}

func TestAssembler_NoAutoPickAfterManualChoice(t *testing.T) {
	a := NewAssembler(model.TabActivity)
	a.SetTab(model.TabActivity)

	a.SetActivities(nil, nil)
	a.SetProcessing(sampleProcessing(), nil)

	assert.Equal(t, model.TabActivity, a.Tab())
}

func TestAssembler_PinnedTabSurvivesFirstLoad(t *testing.T) {
	a := NewAssembler(model.TabActivity)
	a.Pin()

	assert.False(t, a.SetActivities(nil, nil))
	assert.False(t, a.SetProcessing(sampleProcessing(), nil))

	assert.Equal(t, model.TabActivity, a.Tab())
	assert.Empty(t, a.Entries())
}

func TestAssembler_NoAutoPickWhenActivityHasData(t *testing.T) {
	a := NewAssembler(model.TabActivity)
	a.SetProcessing(sampleProcessing(), nil)
	a.SetActivities([]model.RawActivityEvent{{ID: "1", Action: "fact.created"}}, nil)

	assert.Equal(t, model.TabActivity, a.Tab())

	// The guard is spent even though nothing switched.
	a.SetActivities(nil, nil)
	assert.Equal(t, model.TabActivity, a.Tab())
}

func TestAssembler_WaitsForBothSources(t *testing.T) {
	a := NewAssembler(model.TabActivity)
	a.SetActivities(nil, nil)
	a.SetProcessing(nil, errUpstream)
	assert.Equal(t, model.TabActivity, a.Tab())

	// First successful load of processing arms the heuristic.
	assert.True(t, a.SetProcessing(sampleProcessing(), nil))
	assert.Equal(t, model.TabProcessing, a.Tab())
}

func TestAssembler_FailureKeepsPreviousPayload(t *testing.T) {
	a := NewAssembler(model.TabActivity)
	a.SetActivities([]model.RawActivityEvent{{ID: "1", Action: "fact.created"}}, nil)

	a.SetActivities(nil, errUpstream)

	status := a.Status(model.SourceActivity)
	assert.Equal(t, SourceFailed, status.State)
	assert.ErrorIs(t, status.Err, errUpstream)
	assert.True(t, status.Loaded)
	require.Len(t, a.Entries(), 1)
	assert.Equal(t, "1", a.Entries()[0].ID)
}

func TestAssembler_SourcesFailIndependently(t *testing.T) {
	a := NewAssembler(model.TabProcessing)
	a.SetActivities(nil, errUpstream)
	a.SetProcessing(sampleProcessing(), nil)

	assert.Equal(t, SourceReady, a.ActiveStatus().State)
	assert.Len(t, a.Entries(), 1)
	assert.Equal(t, SourceFailed, a.Status(model.SourceActivity).State)
}

func TestAssembler_MarkLoading(t *testing.T) {
	a := NewAssembler(model.TabActivity)
	a.SetActivities([]model.RawActivityEvent{{ID: "1"}}, nil)
	a.MarkLoading(model.SourceActivity)

	assert.Equal(t, SourceLoading, a.ActiveStatus().State)
	assert.Len(t, a.Entries(), 1)
	assert.Equal(t, "loading", a.ActiveStatus().State.String())
}

func TestAssembler_OneSourceAtATime(t *testing.T) {
	a := NewAssembler(model.TabActivity)
	a.SetActivities([]model.RawActivityEvent{{ID: "1", Action: "fact.created"}}, nil)
	a.SetProcessing(sampleProcessing(), nil)

	for _, e := range a.Entries() {
		assert.Equal(t, model.SourceActivity, e.Source)
	}
	a.SetTab(model.TabProcessing)
	for _, e := range a.Entries() {
		assert.Equal(t, model.SourceProcessing, e.Source)
	}

	acts, procs := a.Counts()
	assert.Equal(t, 1, acts)
	assert.Equal(t, 1, procs)
}

func TestNewAssembler_InvalidTab(t *testing.T) {
	a := NewAssembler(model.Tab("bogus"))
	assert.Equal(t, model.TabActivity, a.Tab())
	assert.False(t, a.SetTab(model.Tab("bogus")))
}
