// Package hotkey registers the global cancel shortcut (Ctrl+Shift+X).
package hotkey

type Hotkey interface {
	Register() error
	Unregister()
	Keydown() <-chan struct{}
	Keyup() <-chan struct{}
}
