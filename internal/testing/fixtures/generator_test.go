package fixtures

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-activity-timeline/internal/core/model"
)

var start = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func TestActivities(t *testing.T) {
	events := Activities(4, start, time.Hour)
	require.Len(t, events, 4)
	assert.Equal(t, "a0", events[0].ID)
	assert.Equal(t, "document.created", events[0].Action)
	assert.Equal(t, "document.created", events[3].Action)
	assert.Equal(t, "Item 2", events[2].Metadata["name"])
	assert.Equal(t, "2024-05-10T09:00:00Z", events[3].CreatedAt)
}

func TestProcessing(t *testing.T) {
	events := Processing(2, start, time.Minute)
	assert.Equal(t, "doc-1.pdf", events[1].Filename)
	assert.Equal(t, 1, events[1].FactsExtracted)
	assert.Equal(t, "2024-05-10T11:59:00Z", events[1].Timestamp)
}

func TestGeneratorWritesPayloads(t *testing.T) {
	g := NewGenerator(t.TempDir())

	path, err := g.WriteActivityLog("activity.json", Activities(2, start, time.Hour), 10)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var envelope model.ActivityLogResponse
	require.NoError(t, sonic.Unmarshal(data, &envelope))
	assert.Equal(t, 10, envelope.Total)
	assert.Len(t, envelope.Activities, 2)

	path, err = g.WriteActivityJSONL("nested/activity.jsonl", Activities(3, start, time.Hour))
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(data)), "\n"), 3)

	path, err = g.WriteProcessing("processing.json", Processing(1, start, time.Minute))
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "["))
}
