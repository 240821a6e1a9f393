//go:build e2e
// +build e2e

package commands

import (
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-activity-timeline/internal/testing/e2e"
	"github.com/penwyp/go-activity-timeline/internal/testing/fixtures"
)

func buildBinary(t *testing.T) string {
	t.Helper()
	binaryPath := filepath.Join(t.TempDir(), "go-activity-timeline")
	buildCmd := exec.Command("go", "build", "-o", binaryPath, "../cmd")
	output, err := buildCmd.CombinedOutput()
	require.NoError(t, err, "Failed to build binary: %s", string(output))
	return binaryPath
}

func TestWatchCommand_Interactive(t *testing.T) {
	dir := writeFixtures(t)
	binary := buildBinary(t)

	session, err := e2e.Start(e2e.Config{
		Command: binary,
		Args: []string{"watch", "--dir", dir, "--timezone", "UTC", "--refresh", "1h",
			"--log-file", filepath.Join(t.TempDir(), "timeline.log"), "--export-dir", t.TempDir()},
	})
	require.NoError(t, err)
	defer session.Close()

	require.NoError(t, session.WaitForScreen("Activity (3)", 5*time.Second))
	require.NoError(t, session.WaitForScreen("Q3 plan", 5*time.Second))

	require.NoError(t, session.Send("/Vendor\r"))
	require.NoError(t, session.WaitForScreen("Search: Vendor", 5*time.Second))
	require.NoError(t, session.WaitForScreen("1 of 1 shown", 5*time.Second))
	assert.False(t, session.Screen().Contains("Q3 plan"))

	require.NoError(t, session.Send("a"))
	require.NoError(t, session.WaitForScreen("[action: deleted ✕]", 5*time.Second))

	require.NoError(t, session.Send("c"))
	require.NoError(t, session.WaitForScreen("3 of 3 shown", 5*time.Second))

	require.NoError(t, session.Send("t"))
	require.NoError(t, session.WaitForScreen("minutes.pdf", 5*time.Second))

	require.NoError(t, session.Send("q"))
	assert.NoError(t, session.Wait(5*time.Second))
}

func TestWatchCommand_PagesLargeLog(t *testing.T) {
	g := fixtures.NewGenerator(t.TempDir())
	start := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	_, err := g.WriteActivityJSONL("activity.jsonl", fixtures.Activities(120, start, time.Hour))
	require.NoError(t, err)

	session, err := e2e.Start(e2e.Config{
		Command: buildBinary(t),
		Args: []string{"watch", "--dir", g.BaseDir(), "--timezone", "UTC", "--limit", "50",
			"--log-file", filepath.Join(t.TempDir(), "timeline.log")},
	})
	require.NoError(t, err)
	defer session.Close()

	require.NoError(t, session.WaitForScreen("50 of 120 shown", 5*time.Second))
	require.NoError(t, session.Send("m"))
	require.NoError(t, session.WaitForScreen("100 of 120 shown", 5*time.Second))
	require.NoError(t, session.Send("m"))
	require.NoError(t, session.WaitForScreen("120 of 120 shown", 5*time.Second))

	require.NoError(t, session.Send("q"))
	assert.NoError(t, session.Wait(5*time.Second))
}
