package action

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"

	"iclicker-monitor/internal/capture"
	"iclicker-monitor/internal/vision"

	"github.com/go-vgo/robotgo"
)

// ErrTargetMissing is returned when a target image file cannot be read.
var ErrTargetMissing = errors.New("action: target image missing")

// Executor finds targets on screen and clicks them. Matches are in screen
// coordinates.
type Executor interface {
	Locate(target string, threshold float64) (vision.Match, bool, error)
	LocateAll(target string, threshold float64) ([]vision.Match, error)
	Click(p image.Point) error
}

// Capturer produces screen snapshots.
type Capturer interface {
	Capture() (capture.Snapshot, error)
}

// Pointer moves and clicks the system pointer.
type Pointer interface {
	Location() image.Point
	Move(p image.Point)
	Click()
}

// RobotPointer drives the real pointer through robotgo.
type RobotPointer struct{}

func (RobotPointer) Location() image.Point {
	x, y := robotgo.Location()
	return image.Pt(x, y)
}

func (RobotPointer) Move(p image.Point) {
	robotgo.Move(p.X, p.Y)
}

func (RobotPointer) Click() {
	robotgo.Click("left", false)
}

// ScreenExecutor matches target images against a fresh capture and clicks
// through a Pointer. Target bitmaps are loaded per call so edits on disk
// apply immediately.
type ScreenExecutor struct {
	screen  Capturer
	pointer Pointer
	logger  *slog.Logger
}

// NewScreenExecutor creates an executor. A nil logger uses slog.Default.
func NewScreenExecutor(screen Capturer, pointer Pointer, logger *slog.Logger) *ScreenExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScreenExecutor{screen: screen, pointer: pointer, logger: logger}
}

// loadTarget reads a target image smoothed with the capture's kernel.
func loadTarget(path string, blur int) (vision.Gray, error) {
	if _, err := os.Stat(path); err != nil {
		return vision.Gray{}, fmt.Errorf("%w: %s", ErrTargetMissing, path)
	}
	g, err := vision.LoadSmoothed(path, blur)
	if err != nil {
		return vision.Gray{}, fmt.Errorf("%w: %v", ErrTargetMissing, err)
	}
	return g, nil
}

// Locate returns the best on-screen match of target if it reaches threshold.
func (e *ScreenExecutor) Locate(target string, threshold float64) (vision.Match, bool, error) {
	snap, err := e.screen.Capture()
	if err != nil {
		return vision.Match{}, false, err
	}
	defer snap.Close()

	tpl, err := loadTarget(target, snap.Blur)
	if err != nil {
		return vision.Match{}, false, err
	}
	defer tpl.Close()

	m, ok := vision.Locate(snap.Image, tpl, threshold)
	if !ok {
		return vision.Match{}, false, nil
	}
	return m.Offset(snap.Origin), true, nil
}

// LocateAll returns every non-overlapping on-screen match of target.
func (e *ScreenExecutor) LocateAll(target string, threshold float64) ([]vision.Match, error) {
	snap, err := e.screen.Capture()
	if err != nil {
		return nil, err
	}
	defer snap.Close()

	tpl, err := loadTarget(target, snap.Blur)
	if err != nil {
		return nil, err
	}
	defer tpl.Close()

	matches := vision.LocateAll(snap.Image, tpl, threshold)
	for i := range matches {
		matches[i] = matches[i].Offset(snap.Origin)
	}
	return matches, nil
}

// Click moves the pointer to p and clicks.
func (e *ScreenExecutor) Click(p image.Point) error {
	from := e.pointer.Location()
	e.pointer.Move(p)
	e.pointer.Click()
	e.logger.Info("Action: click", "from", from.String(), "to", p.String())
	return nil
}
