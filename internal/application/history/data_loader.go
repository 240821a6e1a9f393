package history

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/penwyp/go-activity-timeline/internal/core/model"
	"github.com/penwyp/go-activity-timeline/internal/data/cache"
	"github.com/penwyp/go-activity-timeline/internal/data/fetch"
	"github.com/penwyp/go-activity-timeline/internal/data/parser"
	"github.com/penwyp/go-activity-timeline/internal/data/scanner"
	"github.com/penwyp/go-activity-timeline/internal/util"
)

// LoadStats describes the last fetch of one stream.
type LoadStats struct {
	Count    int
	Total    int
	LoadedAt time.Time
	Elapsed  time.Duration
	Err      error
}

type activityBatch struct {
	events []model.RawActivityEvent
	total  int
}

// DataLoader resolves the configured sources and decodes their payloads.
// Decoded local files are reused until they change on disk.
type DataLoader struct {
	activity   []fetch.Source
	processing []fetch.Source

	activityCache   *cache.FileCache[activityBatch]
	processingCache *cache.FileCache[[]model.RawProcessingEvent]

	mu    sync.RWMutex
	stats map[model.Source]LoadStats
}

// NewDataLoader resolves explicit sources first and scans cfg.DataDir for the rest.
func NewDataLoader(cfg *Config) (*DataLoader, error) {
	opts := fetch.Options{
		Timeout:     cfg.FetchTimeout,
		Token:       cfg.Token,
		MinInterval: cfg.MinFetchInterval,
	}

	dl := NewDataLoaderFromSources(nil, nil)

	var scanned *scanner.ScanResult
	scan := func() (scanner.ScanResult, error) {
		if scanned == nil {
			result, err := scanner.NewFileScanner(cfg.DataDir).Scan()
			if err != nil {
				return scanner.ScanResult{}, fmt.Errorf("failed to scan %s: %w", cfg.DataDir, err)
			}
			scanned = &result
		}
		return *scanned, nil
	}

	resolve := func(location string, pick func(scanner.ScanResult) []string) ([]fetch.Source, error) {
		if location != "" {
			src, err := fetch.New(location, opts)
			if err != nil {
				return nil, err
			}
			return []fetch.Source{src}, nil
		}
		result, err := scan()
		if err != nil {
			return nil, err
		}
		var sources []fetch.Source
		for _, path := range pick(result) {
			sources = append(sources, fetch.NewFileSource(path))
		}
		return sources, nil
	}

	var err error
	if dl.activity, err = resolve(cfg.ActivitySource, func(r scanner.ScanResult) []string { return r.Activity }); err != nil {
		return nil, err
	}
	if dl.processing, err = resolve(cfg.ProcessingSource, func(r scanner.ScanResult) []string { return r.Processing }); err != nil {
		return nil, err
	}

	util.LogInfof("Resolved %d activity and %d processing sources", len(dl.activity), len(dl.processing))
	return dl, nil
}

// NewDataLoaderFromSources wires sources directly.
func NewDataLoaderFromSources(activity, processing []fetch.Source) *DataLoader {
	return &DataLoader{
		activity:        activity,
		processing:      processing,
		activityCache:   cache.New[activityBatch](),
		processingCache: cache.New[[]model.RawProcessingEvent](),
		stats:           make(map[model.Source]LoadStats),
	}
}

// LoadActivities fetches every activity source. Several sources are merged newest first.
func (dl *DataLoader) LoadActivities(ctx context.Context) ([]model.RawActivityEvent, error) {
	start := time.Now()
	if len(dl.activity) == 0 {
		err := fmt.Errorf("activity log: %w", fetch.ErrSourceNotConfigured)
		dl.record(model.SourceActivity, LoadStats{Err: err})
		return nil, err
	}

	var events []model.RawActivityEvent
	total := 0
	for _, src := range dl.activity {
		batch, err := fetchDecoded(ctx, src, dl.activityCache, func(data []byte) (activityBatch, error) {
			parsed, n, err := parser.NewParser(src.Name()).ParseActivities(data)
			return activityBatch{events: parsed, total: n}, err
		})
		if err != nil {
			dl.record(model.SourceActivity, LoadStats{Err: err})
			return nil, err
		}
		events = append(events, batch.events...)
		total += batch.total
	}
	if len(dl.activity) > 1 {
		sortNewestFirst(events, func(e model.RawActivityEvent) string { return e.CreatedAt })
	}

	dl.record(model.SourceActivity, LoadStats{Count: len(events), Total: total, LoadedAt: time.Now(), Elapsed: time.Since(start)})
	util.LogDebugf("Loaded %d activity events (total %d) in %v", len(events), total, time.Since(start))
	return events, nil
}

// LoadProcessing fetches every processing source. Several sources are merged newest first.
func (dl *DataLoader) LoadProcessing(ctx context.Context) ([]model.RawProcessingEvent, error) {
	start := time.Now()
	if len(dl.processing) == 0 {
		err := fmt.Errorf("processing history: %w", fetch.ErrSourceNotConfigured)
		dl.record(model.SourceProcessing, LoadStats{Err: err})
		return nil, err
	}

	var events []model.RawProcessingEvent
	for _, src := range dl.processing {
		batch, err := fetchDecoded(ctx, src, dl.processingCache, parser.NewParser(src.Name()).ParseProcessing)
		if err != nil {
			dl.record(model.SourceProcessing, LoadStats{Err: err})
			return nil, err
		}
		events = append(events, batch...)
	}
	if len(dl.processing) > 1 {
		sortNewestFirst(events, func(e model.RawProcessingEvent) string { return e.Timestamp })
	}

	dl.record(model.SourceProcessing, LoadStats{Count: len(events), Total: len(events), LoadedAt: time.Now(), Elapsed: time.Since(start)})
	util.LogDebugf("Loaded %d processing events in %v", len(events), time.Since(start))
	return events, nil
}

// fetchDecoded fetches and decodes src. Local files are served from c while unchanged.
func fetchDecoded[T any](ctx context.Context, src fetch.Source, c *cache.FileCache[T], decode func([]byte) (T, error)) (T, error) {
	var zero T

	fs, local := src.(*fetch.FileSource)
	var stamp cache.Stamp
	var stampErr error
	if local {
		value, reason := c.Get(fs.Path())
		if reason == cache.MissReasonNone {
			util.LogDebugf("Reusing decoded %s", fs.Path())
			return value, nil
		}
		util.LogDebugf("Decoding %s (%s)", fs.Path(), reason)
		stamp, stampErr = cache.StatFile(fs.Path())
	}

	data, err := src.Fetch(ctx)
	if err != nil {
		return zero, err
	}
	value, err := decode(data)
	if err != nil {
		return zero, err
	}
	if local && stampErr == nil {
		c.Set(fs.Path(), stamp, value)
	}
	return value, nil
}

// WatchPaths returns the local files behind the sources.
func (dl *DataLoader) WatchPaths() []string {
	var paths []string
	for _, src := range append(append([]fetch.Source(nil), dl.activity...), dl.processing...) {
		if fs, ok := src.(*fetch.FileSource); ok {
			paths = append(paths, fs.Path())
		}
	}
	return paths
}

// SourceFor reports which stream a watched path feeds.
func (dl *DataLoader) SourceFor(path string) (model.Source, bool) {
	match := func(sources []fetch.Source) bool {
		for _, src := range sources {
			if fs, ok := src.(*fetch.FileSource); ok && fs.Path() == path {
				return true
			}
		}
		return false
	}
	switch {
	case match(dl.activity):
		return model.SourceActivity, true
	case match(dl.processing):
		return model.SourceProcessing, true
	}
	return "", false
}

// Stats returns the outcome of the last load of source.
func (dl *DataLoader) Stats(source model.Source) LoadStats {
	dl.mu.RLock()
	defer dl.mu.RUnlock()
	return dl.stats[source]
}

func (dl *DataLoader) record(source model.Source, stats LoadStats) {
	if stats.Err != nil {
		util.LogWarnf("Loading %s failed: %v", source, stats.Err)
	}
	dl.mu.Lock()
	defer dl.mu.Unlock()
	dl.stats[source] = stats
}

// sortNewestFirst orders merged events by timestamp, keeping unparsable ones last in
// their original order.
func sortNewestFirst[T any](events []T, timestamp func(T) string) {
	sort.SliceStable(events, func(i, j int) bool {
		ti, okI := util.ParseTimestamp(timestamp(events[i]))
		tj, okJ := util.ParseTimestamp(timestamp(events[j]))
		if okI != okJ {
			return okI
		}
		return ti.After(tj)
	})
}
