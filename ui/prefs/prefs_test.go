package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", prefsFile)
	p := LoadFrom(path)
	assert.Equal(t, 320.0, p.FloatWithFallback("panel.width", 320))
	assert.True(t, p.Bool("panel.on_top", true))

	p.SetFloat("panel.width", 360)
	p.SetBool("panel.on_top", false)
	require.NoError(t, p.SaveIfChanged())

	again := LoadFrom(path)
	assert.Equal(t, 360.0, again.FloatWithFallback("panel.width", 320))
	assert.False(t, again.Bool("panel.on_top", true))
}

func TestSaveIfChangedSkipsCleanPrefs(t *testing.T) {
	path := filepath.Join(t.TempDir(), prefsFile)
	p := LoadFrom(path)
	require.NoError(t, p.SaveIfChanged())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	p.SetFloat("panel.height", 480)
	require.NoError(t, p.SaveIfChanged())
	_, err = os.Stat(path)
	assert.NoError(t, err)
}
