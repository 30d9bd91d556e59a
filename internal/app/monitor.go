package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"iclicker-monitor/internal/action"
	"iclicker-monitor/internal/capture"
	"iclicker-monitor/internal/config"
	"iclicker-monitor/internal/control"
	"iclicker-monitor/internal/detect"
	"iclicker-monitor/internal/hotkey"
	"iclicker-monitor/internal/journal"
	"iclicker-monitor/internal/schedule"
	"iclicker-monitor/internal/templates"
)

// Monitor is the assembled application: the loops, their shared state and
// the stores they read.
type Monitor struct {
	Config  config.Config
	State   *State
	Runner  *Runner
	Store   *schedule.SQLiteStore
	Oracle  *schedule.Oracle
	Library *templates.Library
	Journal *journal.Journal
}

// Build wires a monitor from cfg. Missing templates or target images only
// reduce what the monitor can do; they are logged and startup continues.
func Build(cfg config.Config, j *journal.Journal, logger *slog.Logger) (*Monitor, error) {
	if logger == nil {
		logger = slog.Default()
	}

	store, err := schedule.OpenSQLite(cfg.Paths.Database)
	if err != nil {
		return nil, fmt.Errorf("open course database: %w", err)
	}

	lib := templates.LoadSmoothed(cfg.Paths.Templates, cfg.Detect.Blur)
	if lib.Len() == 0 {
		j.Info(source, "Monitor: no templates loaded, every capture will be unmatched", "root", cfg.Paths.Templates)
	}

	catalog := action.NewCatalog(cfg.Paths.Actions, cfg.Action.Targets, cfg.Action.Cooldown)
	for _, spec := range catalog.Specs() {
		if spec.Target == "" {
			continue
		}
		if _, err := os.Stat(spec.Target); errors.Is(err, os.ErrNotExist) {
			j.Info(source, "Monitor: action target missing, action disabled",
				"action", spec.Name.String(), "path", spec.Target)
		}
	}

	state := NewState()
	state.Follow(j)

	sampler := capture.NewSampler(cfg.Detect.Blur)
	cell := detect.NewCell()
	detectLoop := detect.NewLoop(sampler, lib, detect.NewClassifier(cfg.Detect.Threshold), cell, j)
	detectLoop.Interval = cfg.Detect.Interval
	detectLoop.Backoff = cfg.Control.Backoff
	detectLoop.OnChange(func(_, next detect.Result) { state.SetLabel(next) })

	oracle := schedule.NewOracle(store)
	engine := action.NewEngine(catalog, action.NewScreenExecutor(sampler, action.RobotPointer{}, logger),
		schedule.IconDir{Dir: cfg.Paths.Icons}, j)
	engine.Threshold = cfg.Detect.Threshold

	controlLoop := control.NewLoop(oracle, cell, engine, j)
	controlLoop.Interval = cfg.Control.Interval
	controlLoop.Backoff = cfg.Control.Backoff
	controlLoop.OnStatus(state.SetSchedule)
	controlLoop.OnOutcome(state.SetOutcome)

	var helpers []Loop
	if cfg.Detect.Watch > 0 {
		watcher := templates.NewWatcher(lib, cfg.Detect.Watch)
		watcher.OnReload(func(l *templates.Library) {
			j.Info(source, "Monitor: templates reloaded", "templates", l.Summary())
		})
		helpers = append(helpers, watcher)
	}

	var runner *Runner
	if cfg.Hotkey.Enabled {
		listener, err := hotkey.NewListener(cfg.Hotkey.Key, func() { runner.EmergencyStop() }, logger)
		if err != nil {
			logger.Warn("Monitor: emergency-stop hotkey disabled", "error", err)
		} else {
			helpers = append(helpers, listener)
		}
	}
	runner = NewRunner(detectLoop, controlLoop, state, j, helpers...)
	if cfg.Control.StopTimeout > 0 {
		runner.StopTimeout = cfg.Control.StopTimeout
	}

	return &Monitor{
		Config:  cfg,
		State:   state,
		Runner:  runner,
		Store:   store,
		Oracle:  oracle,
		Library: lib,
		Journal: j,
	}, nil
}

// Close stops the loops and releases the stores.
func (m *Monitor) Close() error {
	err := m.Runner.Stop()
	m.Library.Close()
	return errors.Join(err, m.Store.Close())
}
