// Package i18n tracks the active dictation language and the layout
// direction of its script, for mirroring the overlay.
package i18n

import (
	"sync"

	"golang.org/x/text/language"
)

// Direction is the horizontal layout direction of a script.
type Direction int

const (
	LTR Direction = iota
	RTL
)

var (
	mu       sync.RWMutex
	current  = "en"
	provider func() string
)

// Set records the active language code.
func Set(code string) {
	if code == "" {
		return
	}
	mu.Lock()
	current = code
	mu.Unlock()
}

// Current returns the active language code.
func Current() string {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// SetProvider registers the settings lookup consulted by Sync.
func SetProvider(fn func() string) {
	mu.Lock()
	provider = fn
	mu.Unlock()
}

// Sync re-reads the active language from the settings provider. The overlay
// runs this once per show event, before the event payload is applied, so
// localized strings and mirroring are current by the time anything renders.
func Sync() {
	mu.RLock()
	fn := provider
	mu.RUnlock()
	if fn == nil {
		return
	}
	Set(fn())
}

// Languages written right-to-left, by base language code.
var rtlLanguages = map[string]bool{
	"ar": true, // Arabic
	"dv": true, // Divehi
	"fa": true, // Persian
	"he": true, // Hebrew
	"ps": true, // Pashto
	"sd": true, // Sindhi
	"ug": true, // Uyghur
	"ur": true, // Urdu
	"yi": true, // Yiddish
}

// DirectionOf returns the layout direction for a language code. Unparseable
// or empty codes fall back to LTR.
func DirectionOf(code string) Direction {
	tag, err := language.Parse(code)
	if err != nil {
		return LTR
	}
	base, conf := tag.Base()
	if conf == language.No {
		return LTR
	}
	if rtlLanguages[base.String()] {
		return RTL
	}
	return LTR
}

// CurrentDirection returns the layout direction of the active language.
func CurrentDirection() Direction {
	return DirectionOf(Current())
}
