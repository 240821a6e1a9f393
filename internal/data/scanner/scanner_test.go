package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileScanner(t *testing.T) {
	baseDir := "/tmp/test"
	scanner := NewFileScanner(baseDir)

	assert.NotNil(t, scanner)
	assert.Equal(t, baseDir, scanner.baseDir)
	assert.Len(t, scanner.prefixes, 2)
	assert.Equal(t, 2, scanner.maxDepth)
}

func TestFileScannerScanEmptyDirectory(t *testing.T) {
	result, err := NewFileScanner(t.TempDir()).Scan()

	require.NoError(t, err)
	assert.True(t, result.Empty(), "Empty directory should return no files")
}

func TestFileScannerScanNonExistentDirectory(t *testing.T) {
	result, err := NewFileScanner("/path/that/does/not/exist").Scan()

	require.NoError(t, err, "Scanner should handle non-existent directory gracefully")
	assert.True(t, result.Empty())
}

func TestFileScannerScanClassifiesFiles(t *testing.T) {
	tempDir := t.TempDir()

	testFiles := []string{
		"activity.json",
		"Activity-2024-05.JSONL",
		"processing_history.json",
		"processing.txt",
		"notes.json",
		"readme.md",
		"export/activity-old.jsonl",
		"a/b/c/activity-too-deep.json",
	}
	for _, name := range testFiles {
		path := filepath.Join(tempDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("[]"), 0644))
	}

	result, err := NewFileScanner(tempDir).Scan()
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(tempDir, "Activity-2024-05.JSONL"),
		filepath.Join(tempDir, "activity.json"),
		filepath.Join(tempDir, "export", "activity-old.jsonl"),
	}, result.Activity)
	assert.Equal(t, []string{filepath.Join(tempDir, "processing_history.json")}, result.Processing)
}

func TestClassify(t *testing.T) {
	s := NewFileScanner(".")
	tests := []struct {
		name string
		want string
	}{
		{"activity.json", "activity"},
		{"activity_log.jsonl", "activity"},
		{"processing.json", "processing"},
		{"PROCESSING.JSON", "processing"},
		{"activity.csv", ""},
		{"history.json", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(s.classify(tt.name)))
		})
	}
}
