package main

import (
	"fmt"
	"log/slog"

	"iclicker-monitor/internal/app"
	"iclicker-monitor/internal/journal"
	"iclicker-monitor/ui/panel"
	"iclicker-monitor/ui/prefs"

	fyneapp "fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"
)

func buildMonitor() (*app.Monitor, error) {
	j, err := journal.Open(cfg.Paths.Journal, slog.Default())
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	m, err := app.Build(cfg, j, slog.Default())
	if err != nil {
		j.Close()
		return nil, err
	}
	slog.Info("Monitor ready",
		"templates", m.Library.Summary(),
		"database", cfg.Paths.Database,
		"journal", cfg.Paths.Journal)
	return m, nil
}

func closeMonitor(m *app.Monitor) {
	if err := m.Close(); err != nil {
		slog.Warn("Shutdown incomplete", "error", err)
	}
	_ = m.Journal.Close()
}

// runPanel opens the floating control panel.
func runPanel(cmd *cobra.Command, _ []string) error {
	m, err := buildMonitor()
	if err != nil {
		return err
	}
	defer closeMonitor(m)

	fyneApp := fyneapp.NewWithID("io.github.iclicker-monitor")
	win := panel.New(cmd.Context(), fyneApp, m, prefs.Load())
	go func() {
		<-cmd.Context().Done()
		fyneApp.Quit()
	}()
	win.Run()
	return nil
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the monitor headless until interrupted",
		Long: `Start the detection and control loops without the panel. Press the
emergency-stop hotkey to stop clicking; send SIGINT to exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := buildMonitor()
			if err != nil {
				return err
			}
			defer closeMonitor(m)

			if err := m.Runner.Start(cmd.Context()); err != nil {
				return err
			}
			<-cmd.Context().Done()
			return nil
		},
	}
}
