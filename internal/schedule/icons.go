package schedule

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
)

var unsafeNameChars = regexp.MustCompile(`[^\p{L}\p{N}_-]`)

var iconExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp"}

// IconDir resolves course names to icon images stored as
// <dir>/<sanitized name>.<ext>.
type IconDir struct {
	Dir string
}

// SanitizeName strips everything but letters, digits, underscores and
// hyphens, the same rule used when icons are saved.
func SanitizeName(name string) string {
	return unsafeNameChars.ReplaceAllString(name, "")
}

// IconPathFor returns the icon file of a course, trying the known extensions
// in order and then any file with the sanitized base name.
func (d IconDir) IconPathFor(courseName string) (string, bool) {
	if d.Dir == "" {
		return "", false
	}
	if info, err := os.Stat(d.Dir); err != nil || !info.IsDir() {
		return "", false
	}
	base := SanitizeName(courseName)
	if base == "" {
		return "", false
	}

	for _, ext := range iconExtensions {
		path := filepath.Join(d.Dir, base+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}

	matches, err := filepath.Glob(filepath.Join(d.Dir, base+".*"))
	if err != nil || len(matches) == 0 {
		return "", false
	}
	sort.Strings(matches)
	return matches[0], true
}
