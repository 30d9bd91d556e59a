// Package config holds the runtime settings of the monitor.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the resolved configuration. Paths are already expanded.
type Config struct {
	Paths   Paths
	Detect  Detect
	Control Control
	Action  Action
	Hotkey  Hotkey
}

// Paths locates the on-disk inputs and outputs.
type Paths struct {
	Templates string // One subdirectory per interface label
	Actions   string // Action target images
	Icons     string // Course icons named after the course
	Database  string // Course database
	Journal   string // Journal file, JSON lines
}

// Detect configures the detection loop.
type Detect struct {
	Interval  time.Duration
	Threshold float64
	Blur      int
	Watch     time.Duration // Template reload polling, zero disables
}

// Control configures the control loop and shutdown.
type Control struct {
	Interval    time.Duration
	Backoff     time.Duration
	StopTimeout time.Duration
}

// Action configures click targets and throttling.
type Action struct {
	Cooldown time.Duration
	Targets  map[string]string // Action name to target file name
}

// Hotkey configures the emergency stop key.
type Hotkey struct {
	Enabled bool
	Key     string
}

// Defaults registers default values on v.
func Defaults(v *viper.Viper) {
	v.SetDefault("paths.templates", "~/.config/iclicker-monitor/templates")
	v.SetDefault("paths.actions", "~/.config/iclicker-monitor/actions")
	v.SetDefault("paths.icons", "~/.config/iclicker-monitor/icons")
	v.SetDefault("paths.database", "~/.local/share/iclicker-monitor/courses.db")
	v.SetDefault("paths.journal", "~/.local/share/iclicker-monitor/journal.jsonl")

	v.SetDefault("detect.interval", "300ms")
	v.SetDefault("detect.threshold", 0.85)
	v.SetDefault("detect.blur", 0)
	v.SetDefault("detect.watch", "5s")

	v.SetDefault("control.interval", "700ms")
	v.SetDefault("control.backoff", "2s")
	v.SetDefault("control.stop_timeout", "5s")

	v.SetDefault("action.cooldown", "5s")
	v.SetDefault("action.targets", map[string]string{
		"join":   "join.png",
		"answer": "answer.png",
		"leave":  "leave.png",
		"return": "return.png",
	})

	v.SetDefault("hotkey.enabled", true)
	v.SetDefault("hotkey.key", "esc")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load resolves the configuration from v.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Paths: Paths{
			Templates: ExpandPath(v.GetString("paths.templates")),
			Actions:   ExpandPath(v.GetString("paths.actions")),
			Icons:     ExpandPath(v.GetString("paths.icons")),
			Database:  ExpandPath(v.GetString("paths.database")),
			Journal:   ExpandPath(v.GetString("paths.journal")),
		},
		Detect: Detect{
			Interval:  v.GetDuration("detect.interval"),
			Threshold: v.GetFloat64("detect.threshold"),
			Blur:      v.GetInt("detect.blur"),
			Watch:     v.GetDuration("detect.watch"),
		},
		Control: Control{
			Interval:    v.GetDuration("control.interval"),
			Backoff:     v.GetDuration("control.backoff"),
			StopTimeout: v.GetDuration("control.stop_timeout"),
		},
		Action: Action{
			Cooldown: v.GetDuration("action.cooldown"),
			Targets:  v.GetStringMapString("action.targets"),
		},
		Hotkey: Hotkey{
			Enabled: v.GetBool("hotkey.enabled"),
			Key:     strings.ToLower(v.GetString("hotkey.key")),
		},
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings the loops cannot run with.
func (c Config) Validate() error {
	if c.Detect.Interval <= 0 {
		return fmt.Errorf("detect.interval must be positive, got %s", c.Detect.Interval)
	}
	if c.Control.Interval <= 0 {
		return fmt.Errorf("control.interval must be positive, got %s", c.Control.Interval)
	}
	if c.Detect.Threshold <= 0 || c.Detect.Threshold > 1 {
		return fmt.Errorf("detect.threshold must be in (0, 1], got %g", c.Detect.Threshold)
	}
	if c.Detect.Blur > 0 && c.Detect.Blur%2 == 0 {
		return fmt.Errorf("detect.blur must be odd, got %d", c.Detect.Blur)
	}
	return nil
}

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	}
	return os.ExpandEnv(path)
}
