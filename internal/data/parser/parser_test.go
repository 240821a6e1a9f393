package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseActivities_Envelope(t *testing.T) {
	p := NewParser("test")
	data := []byte(`{
		"activities": [
			{"id": "1", "action": "document.created", "metadata": {"name": "Plan.pdf"}, "created_at": "2024-05-01T10:00:00Z"},
			{"id": "2", "action": "risk.deleted", "actor": {"username": "ada"}, "metadata": {}, "created_at": "2024-05-01T09:00:00Z"}
		],
		"total": 57
	}`)

	events, total, err := p.ParseActivities(data)

	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, 57, total)
	assert.Equal(t, "1", events[0].ID)
	assert.Equal(t, "Plan.pdf", events[0].Metadata["name"])
	require.NotNil(t, events[1].Actor)
	assert.Equal(t, "ada", events[1].Actor.Username)
}

func TestParseActivities_EnvelopeWithoutTotal(t *testing.T) {
	events, total, err := NewParser("test").ParseActivities([]byte(`{"activities": [{"id": "1", "action": "fact.created"}]}`))
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, 1, total)
}

func TestParseActivities_EmptyEnvelope(t *testing.T) {
	events, total, err := NewParser("test").ParseActivities([]byte(`{"activities": [], "total": 0}`))
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, 0, total)
}

func TestParseActivities_Array(t *testing.T) {
	events, total, err := NewParser("test").ParseActivities([]byte(`[{"id": "a", "action": "fact.created"}, {"id": "b", "action": "fact.updated"}]`))
	require.NoError(t, err)
	assert.Len(t, events, 2)
	assert.Equal(t, 2, total)
}

func TestParseActivities_JSONLSkipsInvalidLines(t *testing.T) {
	data := []byte(`{"id": "1", "action": "fact.created", "created_at": "2024-05-01T10:00:00Z"}
invalid json line here

{"id": "2", "action": "fact.deleted", "created_at": "2024-05-01T11:00:00Z"}
{incomplete json`)

	events, total, err := NewParser("test").ParseActivities(data)

	require.NoError(t, err, "Parser should skip invalid lines and continue")
	require.Len(t, events, 2)
	assert.Equal(t, 2, total)
	assert.Equal(t, "1", events[0].ID)
	assert.Equal(t, "2", events[1].ID)
}

func TestParseActivities_Errors(t *testing.T) {
	p := NewParser("test")

	_, _, err := p.ParseActivities([]byte(`[{"id": 1`))
	assert.Error(t, err)

	_, _, err = p.ParseActivities([]byte(`<html>`))
	assert.Error(t, err)

	events, total, err := p.ParseActivities([]byte("  \n"))
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Zero(t, total)
}

func TestParseProcessing(t *testing.T) {
	data := []byte(`[
		{"filename": "Report.docx", "status": "completed", "facts_extracted": 3, "questions_added": 0, "timestamp": "2024-05-02T08:00:00Z"},
		{"timestamp": "2024-05-02T07:00:00Z", "duration_ms": 1500}
	]`)

	events, err := NewParser("test").ParseProcessing(data)

	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Report.docx", events[0].Filename)
	assert.Equal(t, 3, events[0].FactsExtracted)
	assert.Equal(t, 0, events[0].QuestionsAdded)
	assert.Equal(t, 1500, events[1].DurationMs)
}

func TestParseProcessing_JSONL(t *testing.T) {
	data := []byte(`{"filename": "a.pdf", "timestamp": "2024-05-02T08:00:00Z"}
not json
{"filename": "b.pdf", "timestamp": "2024-05-02T09:00:00Z"}`)

	events, err := NewParser("test").ParseProcessing(data)

	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "b.pdf", events[1].Filename)
}

func TestParseProcessing_Errors(t *testing.T) {
	_, err := NewParser("test").ParseProcessing([]byte(`"just a string"`))
	assert.Error(t, err)

	events, err := NewParser("test").ParseProcessing(nil)
	require.NoError(t, err)
	assert.Empty(t, events)
}
