// Package soul loads the static persona document that opens every system
// prompt. The text is read once per process and cached; Reload is the only
// way the cached value changes.
package soul

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// Loader is the process-wide cache for the soul text. Safe for concurrent
// use: duplicate concurrent loads are idempotent reads of a static file.
type Loader struct {
	path string

	mu     sync.RWMutex
	loaded bool
	text   string
}

// NewLoader creates a Loader for the given soul file path.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Get returns the cached soul text, loading it on first call.
// A missing file is an error; the persona is not optional.
func (l *Loader) Get() (string, error) {
	l.mu.RLock()
	if l.loaded {
		text := l.text
		l.mu.RUnlock()
		return text, nil
	}
	l.mu.RUnlock()
	return l.Reload()
}

// Reload re-reads the soul file and replaces the cached text. This is the
// explicit cache-busting call; nothing else invalidates the cache.
func (l *Loader) Reload() (string, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return "", fmt.Errorf("read soul file (%s): %w", l.path, err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("soul file is empty (%s)", l.path)
	}

	l.mu.Lock()
	l.text = text
	l.loaded = true
	l.mu.Unlock()
	return text, nil
}

// Path returns the watched soul file path.
func (l *Loader) Path() string {
	return l.path
}
