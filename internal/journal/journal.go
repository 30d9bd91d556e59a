// Package journal is the append-only log sink for autonomous behavior. Every
// state transition and action attempt is recorded as a timestamped,
// categorized entry for post-hoc debugging.
package journal

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Category classifies an entry.
type Category string

const (
	CategoryInfo     Category = "info"
	CategoryDecision Category = "decision"
	CategoryError    Category = "error"
)

// Entry is one journal record. Entries are written as JSON lines.
type Entry struct {
	ID       string         `json:"id"`
	Time     time.Time      `json:"time"`
	Category Category       `json:"category"`
	Source   string         `json:"source"`
	Message  string         `json:"message"`
	Fields   map[string]any `json:"fields,omitempty"`
}

// String formats the entry for single-line displays.
func (e Entry) String() string {
	return fmt.Sprintf("%s [%s] %s: %s", e.Time.Format("15:04:05"), e.Category, e.Source, e.Message)
}

const defaultKeep = 200

// Journal appends entries to a writer, mirrors them to slog and keeps the
// most recent ones in memory for status displays. It is safe for concurrent use.
type Journal struct {
	mu        sync.Mutex
	w         io.Writer
	closer    io.Closer
	logger    *slog.Logger
	clock     func() time.Time
	entropy   io.Reader
	recent    []Entry
	keep      int
	listeners []func(Entry)
}

// New creates a journal writing to w. A nil logger uses slog.Default.
func New(w io.Writer, logger *slog.Logger) *Journal {
	if w == nil {
		w = io.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Journal{
		w:       w,
		logger:  logger,
		clock:   time.Now,
		entropy: ulid.Monotonic(rand.Reader, 0),
		keep:    defaultKeep,
	}
}

// Open creates a journal appending to the file at path, creating parent
// directories as needed.
func Open(path string, logger *slog.Logger) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	j := New(f, logger)
	j.closer = f
	return j, nil
}

// SetClock overrides the time source.
func (j *Journal) SetClock(clock func() time.Time) {
	j.mu.Lock()
	j.clock = clock
	j.mu.Unlock()
}

// Subscribe registers fn to receive every new entry. fn runs on the
// goroutine that recorded the entry.
func (j *Journal) Subscribe(fn func(Entry)) {
	j.mu.Lock()
	j.listeners = append(j.listeners, fn)
	j.mu.Unlock()
}

// Info records routine progress such as loop start and stop.
func (j *Journal) Info(source, msg string, kv ...any) Entry {
	return j.record(CategoryInfo, source, msg, kv)
}

// Decision records a state transition or an action attempt and its outcome.
func (j *Journal) Decision(source, msg string, kv ...any) Entry {
	return j.record(CategoryDecision, source, msg, kv)
}

// Error records a failure together with its context.
func (j *Journal) Error(source, msg string, kv ...any) Entry {
	return j.record(CategoryError, source, msg, kv)
}

func (j *Journal) record(cat Category, source, msg string, kv []any) Entry {
	j.mu.Lock()
	now := j.clock()
	entry := Entry{
		ID:       ulid.MustNew(ulid.Timestamp(now), j.entropy).String(),
		Time:     now,
		Category: cat,
		Source:   source,
		Message:  msg,
		Fields:   fields(kv),
	}

	if data, err := json.Marshal(entry); err == nil {
		data = append(data, '\n')
		if _, err := j.w.Write(data); err != nil {
			j.logger.Warn("Journal: write failed", "error", err)
		}
	} else {
		j.logger.Warn("Journal: entry not serializable", "error", err)
	}

	j.recent = append(j.recent, entry)
	if len(j.recent) > j.keep {
		j.recent = append(j.recent[:0], j.recent[len(j.recent)-j.keep:]...)
	}
	listeners := append([]func(Entry){}, j.listeners...)
	j.mu.Unlock()

	attrs := append([]any{"source", source, "category", string(cat)}, kv...)
	switch cat {
	case CategoryError:
		j.logger.Error(msg, attrs...)
	default:
		j.logger.Info(msg, attrs...)
	}

	for _, fn := range listeners {
		fn(entry)
	}
	return entry
}

// Recent returns up to n of the latest entries, oldest first.
func (j *Journal) Recent(n int) []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	if n <= 0 || n > len(j.recent) {
		n = len(j.recent)
	}
	out := make([]Entry, n)
	copy(out, j.recent[len(j.recent)-n:])
	return out
}

// Close closes the underlying file, if the journal owns one.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closer == nil {
		return nil
	}
	err := j.closer.Close()
	j.closer = nil
	j.w = io.Discard
	return err
}

// fields turns alternating key/value arguments into a map. Non-string keys
// and a trailing key without value are kept under "!BADKEY" like slog does.
func fields(kv []any) map[string]any {
	if len(kv) == 0 {
		return nil
	}
	out := make(map[string]any, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok || i+1 >= len(kv) {
			out["!BADKEY"] = kv[i]
			if ok {
				out["!BADKEY"] = key
			}
			continue
		}
		v := kv[i+1]
		if err, isErr := v.(error); isErr {
			v = err.Error()
		} else if s, isStringer := v.(fmt.Stringer); isStringer {
			v = s.String()
		}
		out[key] = v
	}
	return out
}
