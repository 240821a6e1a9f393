// Package cache keeps decoded file payloads in memory until the file changes on disk.
package cache

import (
	"os"
	"sync"
	"time"
)

type MissReason int

const (
	MissReasonNone MissReason = iota
	MissReasonNotFound
	MissReasonError
	MissReasonSize
	MissReasonModTime
)

func (r MissReason) String() string {
	switch r {
	case MissReasonNone:
		return "hit"
	case MissReasonNotFound:
		return "not cached"
	case MissReasonError:
		return "stat failed"
	case MissReasonSize:
		return "size changed"
	case MissReasonModTime:
		return "modtime changed"
	}
	return "unknown"
}

// Stamp identifies one version of a file.
type Stamp struct {
	Size    int64
	ModTime time.Time
}

// StatFile returns the current stamp of path.
func StatFile(path string) (Stamp, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Stamp{}, err
	}
	return Stamp{Size: info.Size(), ModTime: info.ModTime()}, nil
}

type entry[T any] struct {
	stamp Stamp
	value T
}

// FileCache maps file paths to values decoded from them. A Get only hits while the
// file still has the stamp recorded by Set.
type FileCache[T any] struct {
	mu      sync.RWMutex
	entries map[string]entry[T]
}

func New[T any]() *FileCache[T] {
	return &FileCache[T]{entries: make(map[string]entry[T])}
}

// Get returns the cached value of path, or the reason it cannot be used.
func (c *FileCache[T]) Get(path string) (T, MissReason) {
	var zero T

	c.mu.RLock()
	e, ok := c.entries[path]
	c.mu.RUnlock()
	if !ok {
		return zero, MissReasonNotFound
	}

	current, err := StatFile(path)
	if err != nil {
		c.Invalidate(path)
		return zero, MissReasonError
	}
	if current.Size != e.stamp.Size {
		c.Invalidate(path)
		return zero, MissReasonSize
	}
	if !current.ModTime.Equal(e.stamp.ModTime) {
		c.Invalidate(path)
		return zero, MissReasonModTime
	}
	return e.value, MissReasonNone
}

// Set stores value for path. stamp must be taken before the file was read so a write
// racing the read invalidates the entry.
func (c *FileCache[T]) Set(path string, stamp Stamp, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[path] = entry[T]{stamp: stamp, value: value}
}

func (c *FileCache[T]) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, path)
}

func (c *FileCache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[T])
}

func (c *FileCache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
