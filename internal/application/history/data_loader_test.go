package history

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-activity-timeline/internal/core/model"
	"github.com/penwyp/go-activity-timeline/internal/data/fetch"
)

type staticSource struct {
	name string
	data []byte
	err  error
}

func (s *staticSource) Name() string { return s.name }

func (s *staticSource) Fetch(ctx context.Context) ([]byte, error) {
	return s.data, s.err
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestNewDataLoader_ScansDataDir(t *testing.T) {
	dir := t.TempDir()
	activity := writeFile(t, dir, "activity.json", `{"activities":[{"id":"1","action":"fact.created","created_at":"2024-05-01T10:00:00Z"}],"total":1}`)
	processing := writeFile(t, dir, "processing.json", `[{"filename":"a.pdf","timestamp":"2024-05-01T09:00:00Z"}]`)

	dl, err := NewDataLoader(&Config{DataDir: dir})
	require.NoError(t, err)

	acts, err := dl.LoadActivities(context.Background())
	require.NoError(t, err)
	assert.Len(t, acts, 1)

	procs, err := dl.LoadProcessing(context.Background())
	require.NoError(t, err)
	assert.Len(t, procs, 1)

	assert.ElementsMatch(t, []string{activity, processing}, dl.WatchPaths())
	src, ok := dl.SourceFor(processing)
	require.True(t, ok)
	assert.Equal(t, model.SourceProcessing, src)

	stats := dl.Stats(model.SourceActivity)
	assert.Equal(t, 1, stats.Count)
	assert.False(t, stats.LoadedAt.IsZero())
}

func TestNewDataLoader_ExplicitSourceWins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "activity.json", `[]`)
	explicit := writeFile(t, t.TempDir(), "mine.json", `[{"id":"x","action":"risk.created"}]`)

	dl, err := NewDataLoader(&Config{DataDir: dir, ActivitySource: explicit})
	require.NoError(t, err)

	acts, err := dl.LoadActivities(context.Background())
	require.NoError(t, err)
	require.Len(t, acts, 1)
	assert.Equal(t, "x", acts[0].ID)
}

func TestNewDataLoader_HTTPSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"filename":"remote.pdf","facts_extracted":2}]`))
	}))
	defer server.Close()

	dl, err := NewDataLoader(&Config{DataDir: t.TempDir(), ProcessingSource: server.URL})
	require.NoError(t, err)

	procs, err := dl.LoadProcessing(context.Background())
	require.NoError(t, err)
	require.Len(t, procs, 1)
	assert.Equal(t, "remote.pdf", procs[0].Filename)
	assert.Empty(t, dl.WatchPaths(), "remote sources are not watched")
}

func TestDataLoader_MissingSource(t *testing.T) {
	dl, err := NewDataLoader(&Config{DataDir: t.TempDir()})
	require.NoError(t, err)

	_, err = dl.LoadActivities(context.Background())
	assert.ErrorIs(t, err, fetch.ErrSourceNotConfigured)
	assert.ErrorIs(t, dl.Stats(model.SourceActivity).Err, fetch.ErrSourceNotConfigured)

	_, err = dl.LoadProcessing(context.Background())
	assert.ErrorIs(t, err, fetch.ErrSourceNotConfigured)
}

func TestDataLoader_FetchAndParseErrors(t *testing.T) {
	boom := errors.New("boom")
	dl := NewDataLoaderFromSources(
		[]fetch.Source{&staticSource{name: "a", err: boom}},
		[]fetch.Source{&staticSource{name: "p", data: []byte(`<html>`)}},
	)

	_, err := dl.LoadActivities(context.Background())
	assert.ErrorIs(t, err, boom)

	_, err = dl.LoadProcessing(context.Background())
	assert.Error(t, err)
}

func TestDataLoader_MergesSeveralSourcesNewestFirst(t *testing.T) {
	dl := NewDataLoaderFromSources(
		[]fetch.Source{
			&staticSource{name: "old", data: []byte(`[{"id":"1","action":"fact.created","created_at":"2024-05-01T10:00:00Z"},{"id":"nots","action":"fact.created"}]`)},
			&staticSource{name: "new", data: []byte(`[{"id":"2","action":"fact.created","created_at":"2024-05-02T10:00:00Z"}]`)},
		},
		[]fetch.Source{
			&staticSource{name: "p1", data: []byte(`[{"filename":"a","timestamp":"2024-05-01T00:00:00Z"}]`)},
			&staticSource{name: "p2", data: []byte(`[{"filename":"b","timestamp":"2024-05-03T00:00:00Z"}]`)},
		},
	)

	acts, err := dl.LoadActivities(context.Background())
	require.NoError(t, err)
	require.Len(t, acts, 3)
	assert.Equal(t, []string{"2", "1", "nots"}, []string{acts[0].ID, acts[1].ID, acts[2].ID})

	procs, err := dl.LoadProcessing(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "b", procs[0].Filename)
}

func TestDataLoader_SingleSourceKeepsProducerOrder(t *testing.T) {
	dl := NewDataLoaderFromSources([]fetch.Source{
		&staticSource{name: "a", data: []byte(`[{"id":"old","created_at":"2024-05-01T10:00:00Z"},{"id":"new","created_at":"2024-05-02T10:00:00Z"}]`)},
	}, nil)

	acts, err := dl.LoadActivities(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "old", acts[0].ID)
}

func TestDataLoader_ReusesUnchangedFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "processing.json", `[{"filename":"a.pdf","timestamp":"2024-05-01T09:00:00Z"}]`)
	dl := NewDataLoaderFromSources(nil, []fetch.Source{fetch.NewFileSource(path)})

	first, err := dl.LoadProcessing(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, dl.processingCache.Len())

	second, err := dl.LoadProcessing(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	writeFile(t, dir, "processing.json", `[{"filename":"a.pdf","timestamp":"2024-05-01T09:00:00Z"},{"filename":"b.pdf","timestamp":"2024-05-02T09:00:00Z"}]`)
	third, err := dl.LoadProcessing(context.Background())
	require.NoError(t, err)
	assert.Len(t, third, 2, "a rewritten file is decoded again")
}
