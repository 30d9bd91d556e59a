// Package templates loads the labeled reference bitmaps used to recognize
// interface states. Each immediate subdirectory of the template root is one
// label; every image file inside it is one template of that label.
package templates

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"iclicker-monitor/internal/vision"
)

// Template is one reference bitmap. It is immutable after load.
type Template struct {
	Path  string
	Image vision.Gray
}

// Library holds label groups loaded from a template root.
type Library struct {
	mu     sync.RWMutex
	root   string
	blur   int
	groups map[string][]Template
}

// IsImageFile reports whether name has a template image extension.
func IsImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}

// Load reads every label directory under root. A missing root yields an empty
// library rather than an error; unreadable files and empty label directories
// are skipped with a warning.
func Load(root string) *Library {
	return LoadSmoothed(root, 0)
}

// LoadSmoothed is Load with every template passed through the Gaussian kernel
// the screen sampler uses. Kernels below 3 leave templates unfiltered.
func LoadSmoothed(root string, blur int) *Library {
	if blur < 3 {
		blur = 0
	}
	lib := &Library{root: root, blur: blur, groups: make(map[string][]Template)}

	entries, err := os.ReadDir(root)
	if err != nil {
		slog.Warn("Templates: root not readable, library is empty", "root", root, "error", err)
		return lib
	}

	total := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		group := loadGroup(filepath.Join(root, name), blur)
		if len(group) == 0 {
			slog.Warn("Templates: label has no decodable images, dropped", "label", name)
			continue
		}
		lib.groups[name] = group
		total += len(group)
	}

	slog.Info("Templates: loaded", "root", root, "labels", len(lib.groups), "images", total, "blur", blur)
	return lib
}

func loadGroup(dir string, blur int) []Template {
	entries, err := os.ReadDir(dir)
	if err != nil {
		slog.Warn("Templates: cannot read label directory", "dir", dir, "error", err)
		return nil
	}

	var group []Template
	for _, entry := range entries {
		if entry.IsDir() || !IsImageFile(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		img, err := vision.LoadSmoothed(path, blur)
		if err != nil {
			slog.Warn("Templates: skipping image", "path", path, "error", err)
			continue
		}
		group = append(group, Template{Path: path, Image: img})
	}
	return group
}

// Root returns the directory the library was loaded from.
func (l *Library) Root() string {
	return l.root
}

// Blur returns the kernel templates were smoothed with, 0 if none.
func (l *Library) Blur() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.blur
}

// Labels returns the loaded label names in lexical order.
func (l *Library) Labels() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.groups))
	for name := range l.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TemplatesFor returns the templates of a label in file-name order, or nil.
func (l *Library) TemplatesFor(name string) []Template {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.groups[name]
}

// Visit calls fn for each label in lexical order while holding the read lock,
// so a concurrent Replace cannot release bitmaps that fn is matching against.
func (l *Library) Visit(fn func(label string, group []Template)) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.groups))
	for name := range l.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fn(name, l.groups[name])
	}
}

// Len returns the number of labels.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.groups)
}

// Count returns the total number of template images.
func (l *Library) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n := 0
	for _, g := range l.groups {
		n += len(g)
	}
	return n
}

// Replace swaps in the groups of other and releases the previous bitmaps.
// other must not be used afterwards.
func (l *Library) Replace(other *Library) {
	other.mu.Lock()
	groups := other.groups
	other.groups = nil
	other.mu.Unlock()

	l.mu.Lock()
	old := l.groups
	l.groups = groups
	l.root = other.root
	l.blur = other.blur
	l.mu.Unlock()

	closeGroups(old)
}

// Summary describes the library for logs and status displays.
func (l *Library) Summary() string {
	return fmt.Sprintf("%d labels, %d images", l.Len(), l.Count())
}

// Close releases all template bitmaps.
func (l *Library) Close() {
	l.mu.Lock()
	old := l.groups
	l.groups = make(map[string][]Template)
	l.mu.Unlock()
	closeGroups(old)
}

func closeGroups(groups map[string][]Template) {
	for _, group := range groups {
		for i := range group {
			_ = group[i].Image.Close()
		}
	}
}
