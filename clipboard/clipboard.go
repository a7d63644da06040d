// Package clipboard wraps the system clipboard, write path only.
package clipboard

import cb "github.com/atotto/clipboard"

func Copy(text string) error {
	return cb.WriteAll(text)
}

// System adapts the package to the overlay's Clipboard interface.
type System struct{}

func (System) Copy(text string) error { return Copy(text) }
