package model

import (
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawActivityEvent_Unmarshal(t *testing.T) {
	data := []byte(`{
		"id": "1",
		"action": "document.created",
		"actor": {"display_name": "Ada", "avatar_url": "https://a/1.png"},
		"metadata": {"name": "Plan.pdf", "size": 12},
		"created_at": "2024-05-01T10:00:00Z"
	}`)

	var ev RawActivityEvent
	require.NoError(t, sonic.Unmarshal(data, &ev))

	assert.Equal(t, "1", ev.ID)
	assert.Equal(t, "document.created", ev.Action)
	require.NotNil(t, ev.Actor)
	assert.Equal(t, "Ada", ev.Actor.DisplayName)
	assert.Equal(t, "Plan.pdf", ev.Metadata["name"])
	assert.Equal(t, "2024-05-01T10:00:00Z", ev.CreatedAt)
}

func TestRawActivityEvent_NoActor(t *testing.T) {
	var ev RawActivityEvent
	require.NoError(t, sonic.Unmarshal([]byte(`{"id":"2","action":"risk.deleted","metadata":{},"created_at":""}`), &ev))
	assert.Nil(t, ev.Actor)
}

func TestRawProcessingEvent_ExtractionCounts(t *testing.T) {
	ev := RawProcessingEvent{FactsExtracted: 3, RisksAdded: 1}
	counts := ev.ExtractionCounts()

	require.Len(t, counts, 6)
	assert.Equal(t, "facts", counts[0].Label)
	assert.Equal(t, 3, counts[0].Count)
	assert.Equal(t, "risks", counts[3].Label)
	assert.Equal(t, 1, counts[3].Count)
	assert.Equal(t, "people", counts[5].Label)
}

func TestParseTab(t *testing.T) {
	tab, ok := ParseTab("processing")
	assert.True(t, ok)
	assert.Equal(t, TabProcessing, tab)

	_, ok = ParseTab("both")
	assert.False(t, ok)

	assert.Equal(t, TabActivity, TabProcessing.Other())
	assert.Equal(t, TabProcessing, TabActivity.Other())
}
