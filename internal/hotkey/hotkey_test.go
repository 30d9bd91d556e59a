package hotkey

import (
	"testing"

	hook "github.com/robotn/gohook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	key, err := Normalize("")
	require.NoError(t, err)
	assert.Equal(t, DefaultKey, key)

	key, err = Normalize(" ESC ")
	require.NoError(t, err)
	assert.Equal(t, "esc", key)

	key, err = Normalize("F12")
	require.NoError(t, err)
	assert.Equal(t, "f12", key)

	_, err = Normalize("hyperspace")
	assert.Error(t, err)
}

func TestNewListenerRejectsUnknownKey(t *testing.T) {
	_, err := NewListener("hyperspace", func() {}, nil)
	assert.Error(t, err)

	l, err := NewListener("esc", func() {}, nil)
	require.NoError(t, err)
	assert.Equal(t, "esc", l.Key())
}

func TestRestartedListenerFiresOncePerPress(t *testing.T) {
	presses := 0
	l, err := NewListener("esc", func() { presses++ }, nil)
	require.NoError(t, err)

	first := l.arm()
	l.disarm()
	second := l.arm()

	first(hook.Event{})
	second(hook.Event{})
	assert.Equal(t, 1, presses)

	l.disarm()
	second(hook.Event{})
	assert.Equal(t, 1, presses)
}
