//go:build gui

package main

import (
	"runtime"

	"hush/gui"
	"hush/overlay"
)

var guiApp *gui.App

func initGUI() {
	guiMode = true

	// Fyne/GLFW must own the main thread; run() moves to a goroutine.
	runtime.LockOSThread()

	guiApp = gui.NewApp(
		func() { run() },
		func() {
			if machine != nil {
				machine.CopyText()
			}
		},
		func() {
			if machine != nil {
				machine.Close()
			}
		},
	)
	if err := gui.Run(guiApp); err != nil {
		panic(err)
	}
	gracefulShutdown()
}

func guiApply(snap overlay.Snapshot, mirrored bool) {
	if guiApp != nil {
		guiApp.ApplySnapshot(snap, mirrored)
	}
}
