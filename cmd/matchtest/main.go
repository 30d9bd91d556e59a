// Command matchtest matches a target image against a screenshot and prints
// every placement above the threshold.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"os"

	"iclicker-monitor/internal/vision"

	"gocv.io/x/gocv"
)

func main() {
	screenPath := flag.String("image", "", "Path to a screenshot (PNG, JPEG, BMP or WebP)")
	targetPath := flag.String("target", "", "Path to the target image to find")
	threshold := flag.Float64("threshold", vision.DefaultThreshold, "Minimum match score")
	all := flag.Bool("all", false, "Report every non-overlapping match instead of the best one")
	blur := flag.Int("blur", 0, "Gaussian kernel applied to screenshot and target (odd, 0 disables)")
	outPath := flag.String("out", "", "Write the screenshot with matches outlined to this file")
	flag.Parse()

	if *screenPath == "" || *targetPath == "" {
		fmt.Println("Usage: matchtest -image <screenshot> -target <target> [-threshold 0.85] [-all] [-blur 5] [-out annotated.png]")
		os.Exit(1)
	}

	screen, err := vision.LoadSmoothed(*screenPath, *blur)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load screenshot: %v\n", err)
		os.Exit(1)
	}
	defer screen.Close()

	target, err := vision.LoadSmoothed(*targetPath, *blur)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load target: %v\n", err)
		os.Exit(1)
	}
	defer target.Close()

	fmt.Printf("Screenshot: %dx%d  Target: %dx%d  Threshold: %.2f\n",
		screen.Width(), screen.Height(), target.Width(), target.Height(), *threshold)

	best, err := vision.BestMatch(screen, target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Matching failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Best score: %.4f at %v\n", best.Score, best.Bounds.Min)

	var matches []vision.Match
	if *all {
		matches = vision.LocateAll(screen, target, *threshold)
	} else if m, ok := vision.Locate(screen, target, *threshold); ok {
		matches = []vision.Match{m}
	}

	fmt.Printf("\n%d match(es) above threshold:\n", len(matches))
	fmt.Printf("%-4s %8s %8s %8s %8s\n", "#", "X", "Y", "ClickX", "ClickY")
	for i, m := range matches {
		c := m.Center()
		fmt.Printf("%-4d %8d %8d %8d %8d  score=%.4f\n", i+1, m.Bounds.Min.X, m.Bounds.Min.Y, c.X, c.Y, m.Score)
	}
	if left, ok := vision.Leftmost(matches); ok && len(matches) > 1 {
		fmt.Printf("\nLeftmost: %v\n", left.Center())
	}

	if *outPath != "" {
		if err := writeAnnotated(*outPath, screen, matches); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", *outPath, err)
			os.Exit(1)
		}
		fmt.Printf("\nWrote %s\n", *outPath)
	}
}

// writeAnnotated outlines each match in red on a color copy of the screenshot.
func writeAnnotated(path string, screen vision.Gray, matches []vision.Match) error {
	canvas := gocv.NewMat()
	defer canvas.Close()
	gocv.CvtColor(screen.Mat(), &canvas, gocv.ColorGrayToBGR)

	red := color.RGBA{R: 255, A: 255}
	for i, m := range matches {
		gocv.Rectangle(&canvas, m.Bounds, red, 2)
		gocv.PutText(&canvas, fmt.Sprintf("%d", i+1), m.Bounds.Min.Add(image.Pt(2, -4)),
			gocv.FontHersheyPlain, 1.2, red, 1)
	}
	if !gocv.IMWrite(path, canvas) {
		return fmt.Errorf("encoder rejected %s", path)
	}
	return nil
}
