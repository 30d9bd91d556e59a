// Package capture grabs the live screen and prepares it for matching.
package capture

import (
	"fmt"
	"image"
	"time"

	"iclicker-monitor/internal/vision"

	"github.com/kbinani/screenshot"
)

// Snapshot is one preprocessed grayscale capture. It is discarded after a
// single classification pass; the owner must Close it.
type Snapshot struct {
	At     time.Time
	Origin image.Point // Screen position of the capture's top-left pixel
	Blur   int         // Gaussian kernel applied, 0 if none
	Image  vision.Gray
}

// Close releases the snapshot bitmap.
func (s *Snapshot) Close() error {
	return s.Image.Close()
}

// Grabber returns a raw RGBA capture and the screen rectangle it covers.
type Grabber func() (*image.RGBA, image.Rectangle, error)

// Sampler captures the screen, converts it to grayscale and optionally
// smooths it to reduce pixel noise before matching.
type Sampler struct {
	grab  Grabber
	blur  int
	clock func() time.Time
}

// NewSampler creates a sampler for the primary display. blur is the Gaussian
// kernel size; values below 3 disable smoothing.
func NewSampler(blur int) *Sampler {
	return &Sampler{grab: PrimaryDisplay, blur: blur, clock: time.Now}
}

// NewSamplerWithGrabber creates a sampler with a custom capture source.
func NewSamplerWithGrabber(grab Grabber, blur int) *Sampler {
	return &Sampler{grab: grab, blur: blur, clock: time.Now}
}

// Blur returns the smoothing kernel applied to captures, 0 if none.
func (s *Sampler) Blur() int {
	if s.blur < 3 {
		return 0
	}
	return s.blur
}

// Capture takes one snapshot.
func (s *Sampler) Capture() (Snapshot, error) {
	at := s.clock()
	rgba, bounds, err := s.grab()
	if err != nil {
		return Snapshot{}, fmt.Errorf("screen capture failed: %w", err)
	}

	gray, err := vision.FromImage(rgba)
	if err != nil {
		return Snapshot{}, fmt.Errorf("grayscale conversion failed: %w", err)
	}
	kernel := 0
	if s.blur >= 3 {
		smoothed := gray.Blur(s.blur)
		_ = gray.Close()
		gray = smoothed
		kernel = s.blur
	}

	return Snapshot{At: at, Origin: bounds.Min, Blur: kernel, Image: gray}, nil
}

// PrimaryDisplay captures the first active display.
func PrimaryDisplay() (*image.RGBA, image.Rectangle, error) {
	if screenshot.NumActiveDisplays() < 1 {
		return nil, image.Rectangle{}, fmt.Errorf("no active display")
	}
	bounds := screenshot.GetDisplayBounds(0)
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, bounds, err
	}
	return img, bounds, nil
}

// StaticImage returns a grabber that always yields img, for offline
// classification of saved screenshots.
func StaticImage(img image.Image) Grabber {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			rgba.Set(x, y, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return func() (*image.RGBA, image.Rectangle, error) {
		return rgba, rgba.Bounds(), nil
	}
}
