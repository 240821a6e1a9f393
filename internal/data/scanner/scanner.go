package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/penwyp/go-activity-timeline/internal/core/model"
	"github.com/penwyp/go-activity-timeline/internal/util"
)

// FileScanner discovers activity and processing payload files in a data directory.
type FileScanner struct {
	baseDir  string
	prefixes map[model.Source]string
	maxDepth int
}

// ScanResult groups discovered files by the source they feed.
type ScanResult struct {
	Activity   []string
	Processing []string
}

// Empty reports whether nothing was found.
func (r ScanResult) Empty() bool {
	return len(r.Activity) == 0 && len(r.Processing) == 0
}

// NewFileScanner creates a new FileScanner instance
func NewFileScanner(baseDir string) *FileScanner {
	return &FileScanner{
		baseDir: baseDir,
		prefixes: map[model.Source]string{
			model.SourceActivity:   "activity",
			model.SourceProcessing: "processing",
		},
		maxDepth: 2,
	}
}

// Scan walks baseDir (two levels deep) and returns matching .json/.jsonl files, sorted by path.
func (s *FileScanner) Scan() (ScanResult, error) {
	start := time.Now()
	var result ScanResult
	totalCount := 0

	util.LogDebug(fmt.Sprintf("Start scanning directory: %s", s.baseDir))

	root := filepath.Clean(s.baseDir)
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			util.LogDebug(fmt.Sprintf("Skip file (error): %s - %v", path, err))
			return nil
		}

		if info.IsDir() {
			if path != root && s.depth(root, path) > s.maxDepth {
				return filepath.SkipDir
			}
			return nil
		}

		totalCount++
		switch s.classify(info.Name()) {
		case model.SourceActivity:
			result.Activity = append(result.Activity, path)
		case model.SourceProcessing:
			result.Processing = append(result.Processing, path)
		}
		return nil
	})

	sort.Strings(result.Activity)
	sort.Strings(result.Processing)

	util.LogDebug(fmt.Sprintf("File scan completed: duration %v, scanned %d files, found %d activity and %d processing files",
		time.Since(start), totalCount, len(result.Activity), len(result.Processing)))

	return result, err
}

func (s *FileScanner) classify(name string) model.Source {
	lower := strings.ToLower(name)
	ext := filepath.Ext(lower)
	if ext != ".json" && ext != ".jsonl" {
		return ""
	}
	for source, prefix := range s.prefixes {
		if strings.HasPrefix(lower, prefix) {
			return source
		}
	}
	return ""
}

func (s *FileScanner) depth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}
