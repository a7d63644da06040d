//go:build !gui

package main

import "hush/overlay"

func initGUI() {
	panic("hush: built without GUI support (rebuild with -tags gui)")
}

func guiApply(overlay.Snapshot, bool) {}
