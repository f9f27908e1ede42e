package simplelogger

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fixClock(t *testing.T) {
	t.Helper()
	old := now
	now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = old })
}

func TestLog_WritesAndAppends(t *testing.T) {
	fixClock(t)
	t.Setenv(EnvLogFile, filepath.Join(t.TempDir(), "panediff.log"))
	require.True(t, Enabled())

	Log("walk %s", "started")
	Log("step %d\n", 2)

	b, err := os.ReadFile(os.Getenv(EnvLogFile))
	require.NoError(t, err)
	require.Equal(t, "2024-03-01T12:00:00Z walk started\n2024-03-01T12:00:00Z step 2\n", string(b))
}

func TestLog_NoOpWhenUnset(t *testing.T) {
	t.Setenv(EnvLogFile, "")
	require.False(t, Enabled())
	Log("should not %s", "panic")
}

func TestLog_NoOpWhenPathIsDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvLogFile, dir)

	Log("ignored %d", 1)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}
