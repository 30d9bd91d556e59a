package journal

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEntriesAreJSONLines(t *testing.T) {
	var buf bytes.Buffer
	j := New(&buf, quietLogger())
	fixed := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	j.SetClock(func() time.Time { return fixed })

	j.Info("detect", "loop started", "interval", "300ms")
	j.Decision("control", "click join", "x", 400, "y", 300)
	j.Error("control", "tick failed", "error", errors.New("boom"))

	var entries []Entry
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var e Entry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		entries = append(entries, e)
	}
	require.Len(t, entries, 3)

	assert.Equal(t, CategoryInfo, entries[0].Category)
	assert.Equal(t, CategoryDecision, entries[1].Category)
	assert.Equal(t, CategoryError, entries[2].Category)
	assert.Equal(t, "control", entries[1].Source)
	assert.Equal(t, float64(400), entries[1].Fields["x"])
	assert.Equal(t, "boom", entries[2].Fields["error"])
	assert.True(t, fixed.Equal(entries[0].Time))

	// Monotonic ULIDs keep file order even within one millisecond.
	assert.Less(t, entries[0].ID, entries[1].ID)
	assert.Less(t, entries[1].ID, entries[2].ID)
}

func TestRecentKeepsLatest(t *testing.T) {
	j := New(nil, quietLogger())
	j.keep = 3
	for _, msg := range []string{"a", "b", "c", "d", "e"} {
		j.Info("test", msg)
	}

	recent := j.Recent(0)
	require.Len(t, recent, 3)
	assert.Equal(t, "c", recent[0].Message)
	assert.Equal(t, "e", recent[2].Message)

	last := j.Recent(1)
	require.Len(t, last, 1)
	assert.Equal(t, "e", last[0].Message)
}

func TestSubscribeReceivesEntries(t *testing.T) {
	j := New(nil, quietLogger())
	var got []Category
	j.Subscribe(func(e Entry) { got = append(got, e.Category) })

	j.Info("a", "one")
	j.Decision("a", "two")
	assert.Equal(t, []Category{CategoryInfo, CategoryDecision}, got)
}

func TestOpenAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "journal.jsonl")

	j, err := Open(path, quietLogger())
	require.NoError(t, err)
	j.Info("test", "first")
	require.NoError(t, j.Close())

	j, err = Open(path, quietLogger())
	require.NoError(t, err)
	j.Info("test", "second")
	require.NoError(t, j.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, bytes.Count(data, []byte("\n")))
}

func TestFieldsOddArguments(t *testing.T) {
	f := fields([]any{"k", 1, "dangling"})
	assert.Equal(t, 1, f["k"])
	assert.Equal(t, "dangling", f["!BADKEY"])
	assert.Nil(t, fields(nil))
}
