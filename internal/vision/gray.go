// Package vision provides grayscale bitmaps and the template matching primitive
// shared by the interface classifier and the action executor.
package vision

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"gocv.io/x/gocv"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrEmpty is returned when an operation receives an empty bitmap.
var ErrEmpty = errors.New("vision: empty bitmap")

// Gray is an owned single-channel 8-bit bitmap backed by an OpenCV matrix.
// The zero value is an empty bitmap. Callers must Close a Gray they own.
type Gray struct {
	mat gocv.Mat
	ok  bool
}

func wrap(mat gocv.Mat) Gray {
	return Gray{mat: mat, ok: true}
}

// Mat exposes the underlying matrix. It must not be closed by the caller.
func (g Gray) Mat() gocv.Mat { return g.mat }

// Width returns the bitmap width in pixels.
func (g Gray) Width() int {
	if g.Empty() {
		return 0
	}
	return g.mat.Cols()
}

// Height returns the bitmap height in pixels.
func (g Gray) Height() int {
	if g.Empty() {
		return 0
	}
	return g.mat.Rows()
}

// Size returns the bitmap dimensions as a point.
func (g Gray) Size() image.Point {
	return image.Pt(g.Width(), g.Height())
}

// Empty reports whether the bitmap holds no pixels.
func (g Gray) Empty() bool {
	return !g.ok || g.mat.Empty()
}

// Close releases the matrix memory.
func (g *Gray) Close() error {
	if !g.ok {
		return nil
	}
	g.ok = false
	return g.mat.Close()
}

// Clone returns an independent copy of the bitmap.
func (g Gray) Clone() Gray {
	if g.Empty() {
		return Gray{}
	}
	return wrap(g.mat.Clone())
}

// Load reads an image file and converts it to grayscale.
// PNG, JPEG, GIF, BMP and WebP files are supported.
func Load(path string) (Gray, error) {
	file, err := os.Open(path)
	if err != nil {
		return Gray{}, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return Gray{}, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return FromImage(img)
}

// LoadSmoothed loads path and applies the same Gaussian kernel a capture was
// smoothed with, so both sides of a match see equal filtering.
func LoadSmoothed(path string, kernel int) (Gray, error) {
	g, err := Load(path)
	if err != nil || kernel < 3 {
		return g, err
	}
	smoothed := g.Blur(kernel)
	_ = g.Close()
	return smoothed, nil
}

// FromImage converts any image to a grayscale bitmap using the ITU-R 601 luma
// weights, the same weights OpenCV uses for RGB to gray conversion.
func FromImage(img image.Image) (Gray, error) {
	if rgba, ok := img.(*image.RGBA); ok {
		return FromRGBA(rgba)
	}

	gray, ok := img.(*image.Gray)
	if !ok || gray.Bounds().Min != (image.Point{}) {
		b := img.Bounds()
		gray = image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	}
	if gray.Bounds().Empty() {
		return Gray{}, ErrEmpty
	}

	mat, err := gocv.ImageGrayToMatGray(gray)
	if err != nil {
		return Gray{}, fmt.Errorf("failed to convert gray image: %w", err)
	}
	return wrap(mat), nil
}

// FromRGBA converts an RGBA capture to grayscale through OpenCV.
func FromRGBA(img *image.RGBA) (Gray, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return Gray{}, ErrEmpty
	}

	// NewMatFromBytes needs tightly packed rows
	pix := img.Pix
	if img.Stride != 4*w || b.Min != (image.Point{}) {
		packed := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.Draw(packed, packed.Bounds(), img, b.Min, draw.Src)
		pix = packed.Pix
	}

	mat, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC4, pix)
	if err != nil {
		return Gray{}, fmt.Errorf("failed to wrap capture: %w", err)
	}
	defer mat.Close()

	gray := gocv.NewMat()
	gocv.CvtColor(mat, &gray, gocv.ColorRGBAToGray)
	return wrap(gray), nil
}

// Blur applies a Gaussian smoothing filter with the given odd kernel size and
// returns a new bitmap. A kernel smaller than 3 returns a clone.
func (g Gray) Blur(kernel int) Gray {
	if g.Empty() {
		return Gray{}
	}
	if kernel < 3 {
		return g.Clone()
	}
	if kernel%2 == 0 {
		kernel++
	}
	dst := gocv.NewMat()
	gocv.GaussianBlur(g.mat, &dst, image.Pt(kernel, kernel), 0, 0, gocv.BorderDefault)
	return wrap(dst)
}

// Image copies the bitmap back into a Go image, mainly for previews and tests.
func (g Gray) Image() *image.Gray {
	w, h := g.Width(), g.Height()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.SetGray(x, y, color.Gray{Y: g.mat.GetUCharAt(y, x)})
		}
	}
	return out
}
