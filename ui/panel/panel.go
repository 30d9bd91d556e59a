// Package panel provides the floating status and control window.
package panel

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"iclicker-monitor/internal/action"
	"iclicker-monitor/internal/app"
	"iclicker-monitor/internal/detect"
	"iclicker-monitor/internal/journal"
	"iclicker-monitor/internal/schedule"
	"iclicker-monitor/internal/version"
	"iclicker-monitor/pkg/colorutil"
	"iclicker-monitor/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

const (
	prefKeyWidth  = "panel.width"
	prefKeyHeight = "panel.height"
)

// Panel is the floating window showing the clock, today's courses and the
// monitor status, with start, pause and emergency-stop buttons.
type Panel struct {
	fyne.Window
	app     fyne.App
	monitor *app.Monitor
	prefs   *prefs.Prefs

	clock      *canvas.Text
	date       *widget.Label
	label      *canvas.Text
	status     *widget.Label
	lastAction *widget.Label
	statusBar  *widget.Label
	courseList *widget.List

	startBtn *widget.Button
	pauseBtn *widget.Button
	stopBtn  *widget.Button

	mu      sync.Mutex
	courses []schedule.Course
	ctx     context.Context
}

// New creates the panel for m.
func New(ctx context.Context, fyneApp fyne.App, m *app.Monitor, p *prefs.Prefs) *Panel {
	fyneApp.Settings().SetTheme(&app.PanelTheme{})
	win := fyneApp.NewWindow("iClicker Monitor " + version.Version)

	pn := &Panel{
		Window:  win,
		app:     fyneApp,
		monitor: m,
		prefs:   p,
		ctx:     ctx,
	}

	pn.setupUI()
	pn.setupEventHandlers()
	pn.Resize(fyne.NewSize(
		float32(p.FloatWithFallback(prefKeyWidth, 320)),
		float32(p.FloatWithFallback(prefKeyHeight, 460)),
	))
	pn.SetCloseIntercept(pn.onClose)
	return pn
}

// setupUI creates the panel layout.
func (pn *Panel) setupUI() {
	pn.clock = canvas.NewText("--:--:--", colorutil.Green)
	pn.clock.TextSize = 28
	pn.clock.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	pn.clock.Alignment = fyne.TextAlignCenter
	pn.date = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{})

	pn.courseList = widget.NewList(
		func() int {
			pn.mu.Lock()
			defer pn.mu.Unlock()
			return max(len(pn.courses), 1)
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("Course 00:00-00:00")
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			pn.mu.Lock()
			defer pn.mu.Unlock()
			text := "No classes today"
			if id < len(pn.courses) {
				c := pn.courses[id]
				text = fmt.Sprintf("%s  %s-%s", c.Name, c.Start, c.End)
			}
			obj.(*widget.Label).SetText(text)
		},
	)

	pn.label = canvas.NewText(detect.DisplayName(detect.UnmatchedName), colorutil.Grey)
	pn.label.TextStyle = fyne.TextStyle{Bold: true}
	pn.label.Alignment = fyne.TextAlignCenter
	pn.status = widget.NewLabel("Schedule: " + schedule.Status{}.String())
	pn.status.Wrapping = fyne.TextWrapWord
	pn.lastAction = widget.NewLabel("Last action: none")
	pn.lastAction.Wrapping = fyne.TextWrapWord

	pn.startBtn = widget.NewButtonWithIcon("Start", theme.MediaPlayIcon(), pn.onStart)
	pn.startBtn.Importance = widget.SuccessImportance
	pn.pauseBtn = widget.NewButtonWithIcon("Pause", theme.MediaPauseIcon(), pn.onPause)
	pn.pauseBtn.Importance = widget.WarningImportance
	pn.pauseBtn.Disable()
	pn.stopBtn = widget.NewButtonWithIcon("Stop clicks", theme.MediaStopIcon(), pn.onEmergencyStop)
	pn.stopBtn.Importance = widget.DangerImportance
	pn.stopBtn.Disable()

	pn.statusBar = widget.NewLabel("Ready | " + pn.monitor.Library.Summary())

	header := container.NewVBox(pn.clock, pn.date, widget.NewSeparator())
	statusBox := container.NewVBox(
		widget.NewSeparator(),
		pn.label,
		pn.status,
		pn.lastAction,
		container.NewGridWithColumns(3, pn.startBtn, pn.pauseBtn, pn.stopBtn),
	)
	courses := container.NewBorder(widget.NewLabel("Today"), nil, nil, nil, pn.courseList)
	content := container.NewBorder(
		header, // top
		container.NewVBox(statusBox, pn.statusBar), // bottom
		nil,     // left
		nil,     // right
		courses, // center
	)
	pn.SetContent(content)
}

// setupEventHandlers registers for monitor events.
func (pn *Panel) setupEventHandlers() {
	state := pn.monitor.State

	state.On(app.EventLabelChanged, func(data interface{}) {
		if r, ok := data.(detect.Result); ok {
			pn.label.Text = detect.DisplayName(r.Name)
			pn.label.Color = colorutil.ForLabel(r.Name)
			pn.label.Refresh()
		}
	})

	state.On(app.EventScheduleChanged, func(data interface{}) {
		if st, ok := data.(schedule.Status); ok {
			pn.status.SetText("Schedule: " + st.String())
		}
	})

	state.On(app.EventActionTaken, func(data interface{}) {
		if o, ok := data.(action.Outcome); ok {
			pn.lastAction.SetText(fmt.Sprintf("Last action (%s): %s", o.At.Format("15:04:05"), o))
		}
	})

	state.On(app.EventRunningChanged, func(interface{}) {
		pn.syncButtons()
	})

	state.On(app.EventJournal, func(data interface{}) {
		if e, ok := data.(journal.Entry); ok && e.Category != journal.CategoryInfo {
			pn.updateStatus(e.Message)
		}
	})
}

// Run starts the clock and blocks in the fyne event loop.
func (pn *Panel) Run() {
	go pn.tick()
	pn.reloadCourses()
	pn.ShowAndRun()
}

// tick updates the clock every second and reloads the course list each
// minute so a date change or course edit shows up.
func (pn *Panel) tick() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-pn.ctx.Done():
			return
		case now := <-ticker.C:
			pn.clock.Text = now.Format("15:04:05")
			pn.clock.Refresh()
			pn.date.SetText(fmt.Sprintf("%s %s", now.Format("2006-01-02"), schedule.WeekdayOf(now)))
			if now.Second() == 0 {
				pn.reloadCourses()
			}
		}
	}
}

func (pn *Panel) reloadCourses() {
	courses, err := pn.monitor.Store.CoursesForDay(pn.ctx, schedule.WeekdayOf(pn.monitor.Oracle.Now()))
	if err != nil {
		slog.Warn("Panel: failed to load today's courses", "error", err)
		pn.updateStatus("Failed to load courses")
		return
	}
	pn.mu.Lock()
	pn.courses = courses
	pn.mu.Unlock()
	pn.courseList.Refresh()
}

func (pn *Panel) syncButtons() {
	snap := pn.monitor.State.Snapshot()
	if snap.Running {
		pn.startBtn.Disable()
		pn.pauseBtn.Enable()
	} else {
		pn.startBtn.Enable()
		pn.pauseBtn.Disable()
	}
	if snap.Control {
		pn.stopBtn.Enable()
	} else {
		pn.stopBtn.Disable()
	}
}

// updateStatus updates the status bar text.
func (pn *Panel) updateStatus(text string) {
	pn.statusBar.SetText(text)
}

func (pn *Panel) onStart() {
	if err := pn.monitor.Runner.Start(pn.ctx); err != nil {
		pn.updateStatus("Start failed: " + err.Error())
		return
	}
	pn.updateStatus("Monitoring")
}

func (pn *Panel) onPause() {
	if err := pn.monitor.Runner.Stop(); err != nil {
		pn.updateStatus("Pause: " + err.Error())
		return
	}
	pn.updateStatus("Paused")
}

func (pn *Panel) onEmergencyStop() {
	pn.monitor.Runner.EmergencyStop()
	pn.updateStatus("Clicking stopped")
}

func (pn *Panel) onClose() {
	size := pn.Canvas().Size()
	pn.prefs.SetFloat(prefKeyWidth, float64(size.Width))
	pn.prefs.SetFloat(prefKeyHeight, float64(size.Height))
	if err := pn.prefs.SaveIfChanged(); err != nil {
		slog.Warn("Panel: failed to save preferences", "error", err)
	}
	if err := pn.monitor.Runner.Stop(); err != nil {
		slog.Warn("Panel: loops did not stop cleanly", "error", err)
	}
	pn.app.Quit()
}
