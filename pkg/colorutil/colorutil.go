// Package colorutil provides the status colors shared by the panel and the CLI.
package colorutil

import (
	"fmt"
	"image/color"
)

// Status colors used throughout the application.
var (
	Slate  = color.RGBA{R: 0x2C, G: 0x3E, B: 0x50, A: 255}
	Grey   = color.RGBA{R: 0x95, G: 0xA5, B: 0xA6, A: 255}
	Green  = color.RGBA{R: 0x2E, G: 0xCC, B: 0x71, A: 255}
	Blue   = color.RGBA{R: 0x34, G: 0x98, B: 0xDB, A: 255}
	Orange = color.RGBA{R: 0xF3, G: 0x9C, B: 0x12, A: 255}
	Red    = color.RGBA{R: 0xE7, G: 0x4C, B: 0x3C, A: 255}
	Purple = color.RGBA{R: 0x9B, G: 0x59, B: 0xB6, A: 255}
)

// labelColors highlights interface labels by how urgently they need action.
var labelColors = map[string]color.RGBA{
	"course_menu":        Blue,
	"course_not_started": Grey,
	"course_starts":      Green,
	"poll_starts":        Orange,
	"poll_answered":      Green,
	"send_answer":        Orange,
	"leave_session":      Red,
}

// ForLabel returns the highlight color of a resolved label name. Unknown
// labels are purple, unmatched is grey.
func ForLabel(name string) color.RGBA {
	if c, ok := labelColors[name]; ok {
		return c
	}
	if name == "unmatched" || name == "" {
		return Grey
	}
	return Purple
}

// Hex formats c as #RRGGBB.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}
