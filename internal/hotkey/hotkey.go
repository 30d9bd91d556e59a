// Package hotkey listens for the global emergency-stop key.
package hotkey

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	hook "github.com/robotn/gohook"
)

// DefaultKey stops the control loop when pressed anywhere.
const DefaultKey = "esc"

// Normalize lower-cases key and checks that the hook library knows it.
func Normalize(key string) (string, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return DefaultKey, nil
	}
	if _, ok := hook.Keycode[key]; !ok {
		return "", fmt.Errorf("unknown hotkey %q", key)
	}
	return key, nil
}

// Listener runs a callback when its key goes down. The callback runs on the
// hook goroutine, never on a monitor loop.
//
// Each Run registers a fresh hook handler tagged with a generation number.
// Handlers left behind by earlier runs stay registered with the hook library
// but ignore presses, so a restarted listener fires once per press.
type Listener struct {
	key     string
	onPress func()
	logger  *slog.Logger

	mu  sync.Mutex
	gen uint64
}

// NewListener creates a listener for key.
func NewListener(key string, onPress func(), logger *slog.Logger) (*Listener, error) {
	key, err := Normalize(key)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Listener{key: key, onPress: onPress, logger: logger}, nil
}

// Key returns the watched key.
func (l *Listener) Key() string {
	return l.key
}

// arm starts a new generation and returns the handler bound to it.
func (l *Listener) arm() func(hook.Event) {
	l.mu.Lock()
	l.gen++
	gen := l.gen
	l.mu.Unlock()
	return func(hook.Event) { l.press(gen) }
}

// disarm retires the current generation.
func (l *Listener) disarm() {
	l.mu.Lock()
	l.gen++
	l.mu.Unlock()
}

// press runs the callback if gen is the live generation and reports whether
// it did.
func (l *Listener) press(gen uint64) bool {
	l.mu.Lock()
	live := gen == l.gen
	l.mu.Unlock()
	if !live {
		return false
	}
	l.logger.Info("Hotkey: pressed", "key", l.key)
	l.onPress()
	return true
}

// Run installs the global hook and blocks until ctx is cancelled.
func (l *Listener) Run(ctx context.Context) {
	hook.Register(hook.KeyDown, []string{l.key}, l.arm())
	defer l.disarm()
	events := hook.Start()
	done := hook.Process(events)
	l.logger.Info("Hotkey: listening", "key", l.key)

	select {
	case <-ctx.Done():
		hook.End()
	case <-done:
	}
	l.logger.Info("Hotkey: stopped")
}
