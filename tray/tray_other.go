//go:build !darwin

package tray

// The tray is only wired up on macOS; elsewhere Init just hands back the
// quit channel so the rest of the app is none the wiser.

func Init() <-chan struct{} {
	return quitCh
}

func updateVisibleIcon(bool) {}
