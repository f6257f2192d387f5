package chartsync

import (
	"strings"
	"sync"
)

// displayNames maps internal pattern codes to friendlier display names.
// Codes without an entry pass through unchanged.
var displayNames = map[string]string{
	"gravestone_doji": "inverse doji",
}

// DisplayName renders one pattern code for the user.
func DisplayName(code string) string {
	if name, ok := displayNames[code]; ok {
		return name
	}
	return code
}

// PatternAnnotator tracks the most recently observed pattern label. No
// history of past patterns is kept.
type PatternAnnotator struct {
	mu    sync.Mutex
	label string
}

func NewPatternAnnotator() *PatternAnnotator {
	return &PatternAnnotator{}
}

// Observe applies the pattern list of an accepted stream message. An
// empty list leaves the label unchanged; a non-empty list replaces it
// with the joined display rendering. Returns the label and whether it
// changed.
func (a *PatternAnnotator) Observe(patterns []string) (string, bool) {
	if len(patterns) == 0 {
		a.mu.Lock()
		defer a.mu.Unlock()
		return a.label, false
	}

	names := make([]string, len(patterns))
	for i, code := range patterns {
		names[i] = DisplayName(code)
	}
	label := strings.Join(names, ", ")

	a.mu.Lock()
	defer a.mu.Unlock()
	changed := label != a.label
	a.label = label
	return a.label, changed
}

// Label returns the latest pattern label.
func (a *PatternAnnotator) Label() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.label
}

// Reset clears the label when the active context changes.
func (a *PatternAnnotator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.label = ""
}
