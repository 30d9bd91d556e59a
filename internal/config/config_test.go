package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	Defaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 300*time.Millisecond, cfg.Detect.Interval)
	assert.Equal(t, 0.85, cfg.Detect.Threshold)
	assert.Zero(t, cfg.Detect.Blur)
	assert.Equal(t, 5*time.Second, cfg.Action.Cooldown)
	assert.Equal(t, "return.png", cfg.Action.Targets["return"])
	assert.Equal(t, "esc", cfg.Hotkey.Key)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config/iclicker-monitor/templates"), cfg.Paths.Templates)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
detect:
  interval: 250ms
  threshold: 0.9
action:
  targets:
    answer: option_b.png
hotkey:
  key: F12
`), 0o644))

	v := viper.New()
	Defaults(v)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.Detect.Interval)
	assert.Equal(t, 0.9, cfg.Detect.Threshold)
	assert.Equal(t, "option_b.png", cfg.Action.Targets["answer"])
	assert.Equal(t, "f12", cfg.Hotkey.Key)
}

func TestValidate(t *testing.T) {
	v := viper.New()
	Defaults(v)

	v.Set("detect.threshold", 1.5)
	_, err := Load(v)
	assert.ErrorContains(t, err, "detect.threshold")

	v.Set("detect.threshold", 0.85)
	v.Set("detect.blur", 4)
	_, err = Load(v)
	assert.ErrorContains(t, err, "detect.blur")

	v.Set("detect.blur", 0)
	v.Set("control.interval", "0s")
	_, err = Load(v)
	assert.ErrorContains(t, err, "control.interval")
}

func TestExpandPath(t *testing.T) {
	t.Setenv("ICLICKER_TEST_DIR", "/srv/iclicker")
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, filepath.Join(home, "x/y"), ExpandPath("~/x/y"))
	assert.Equal(t, "/srv/iclicker/db", ExpandPath("$ICLICKER_TEST_DIR/db"))
}
