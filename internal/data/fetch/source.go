package fetch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

var (
	// ErrSourceNotConfigured is returned when a source has no location.
	ErrSourceNotConfigured = errors.New("source not configured")
	// ErrUnexpectedStatus is returned for non-2xx HTTP responses.
	ErrUnexpectedStatus = errors.New("unexpected status")
)

// Source yields a raw payload for one upstream stream.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]byte, error)
}

// Options tunes sources built by New.
type Options struct {
	Timeout     time.Duration
	Token       string
	MinInterval time.Duration
}

// IsRemote reports whether location is an http(s) URL.
func IsRemote(location string) bool {
	lower := strings.ToLower(location)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// New returns an HTTPSource for URLs and a FileSource otherwise.
func New(location string, opts Options) (Source, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, ErrSourceNotConfigured
	}
	if IsRemote(location) {
		var limiter *rate.Limiter
		if opts.MinInterval > 0 {
			limiter = rate.NewLimiter(rate.Every(opts.MinInterval), 1)
		}
		return NewHTTPSource(location, opts.Timeout, opts.Token, limiter), nil
	}
	return NewFileSource(location), nil
}

// FileSource reads a payload from disk.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Name() string { return s.path }

// Path returns the cleaned absolute path when it can be resolved.
func (s *FileSource) Path() string {
	if abs, err := filepath.Abs(s.path); err == nil {
		return abs
	}
	return s.path
}

func (s *FileSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	return data, nil
}
