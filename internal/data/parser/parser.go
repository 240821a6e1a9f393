package parser

import (
	"bufio"
	"bytes"
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/penwyp/go-activity-timeline/internal/core/model"
	"github.com/penwyp/go-activity-timeline/internal/util"
)

const maxLineSize = 10 * 1024 * 1024

// Parser decodes upstream payloads. Activity payloads may be the service envelope
// {"activities": [...], "total": n}, a bare array, or JSON Lines; processing payloads may be
// an array or JSON Lines. Invalid JSONL lines are skipped.
type Parser struct {
	name string
}

// NewParser creates a parser; name labels log lines (usually the source location).
func NewParser(name string) *Parser {
	return &Parser{name: name}
}

// ParseActivities decodes an activity-log payload. total is the producer-reported total,
// or the number of decoded events when the payload carries none.
func (p *Parser) ParseActivities(data []byte) (events []model.RawActivityEvent, total int, err error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []model.RawActivityEvent{}, 0, nil
	}

	switch trimmed[0] {
	case '{':
		var resp model.ActivityLogResponse
		if err := sonic.Unmarshal(trimmed, &resp); err == nil && resp.Activities != nil {
			total = resp.Total
			if total == 0 {
				total = len(resp.Activities)
			}
			return resp.Activities, total, nil
		}
	case '[':
		if err := sonic.Unmarshal(trimmed, &events); err != nil {
			return nil, 0, fmt.Errorf("failed to decode activity array from %s: %w", p.name, err)
		}
		return events, len(events), nil
	default:
		return nil, 0, fmt.Errorf("failed to decode activity payload from %s: unexpected leading %q", p.name, trimmed[0])
	}

	events, err = parseLines[model.RawActivityEvent](p.name, trimmed)
	if err != nil {
		return nil, 0, err
	}
	return events, len(events), nil
}

// ParseProcessing decodes a processing-history payload.
func (p *Parser) ParseProcessing(data []byte) ([]model.RawProcessingEvent, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []model.RawProcessingEvent{}, nil
	}

	switch trimmed[0] {
	case '[':
		var events []model.RawProcessingEvent
		if err := sonic.Unmarshal(trimmed, &events); err != nil {
			return nil, fmt.Errorf("failed to decode processing array from %s: %w", p.name, err)
		}
		return events, nil
	case '{':
		return parseLines[model.RawProcessingEvent](p.name, trimmed)
	default:
		return nil, fmt.Errorf("failed to decode processing payload from %s: unexpected leading %q", p.name, trimmed[0])
	}
}

func parseLines[T any](name string, data []byte) ([]T, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	out := make([]T, 0)
	lineCount := 0
	for scanner.Scan() {
		lineCount++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var v T
		if err := sonic.Unmarshal(line, &v); err != nil {
			util.LogDebugf("Skip invalid JSON line %s:%d - %v", name, lineCount, err)
			continue
		}
		out = append(out, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", name, err)
	}
	return out, nil
}
