//go:build gui

package gui

import (
	_ "embed"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/go-gl/glfw/v3.3/glfw"

	"hush/overlay"
)

//go:embed assets/tray.png
var trayIcon []byte

type App struct {
	fyneApp fyne.App
	window  fyne.Window
	view    *OverlayView
	onReady func()
	posX    int
	posY    int
	shown   bool
}

func NewApp(onReady func(), onCopy, onClose func()) *App {
	return &App{
		onReady: onReady,
		view:    NewOverlayView(onCopy, onClose),
	}
}

func Run(a *App) error {
	a.fyneApp = app.NewWithID("io.hush.gui")
	a.fyneApp.Settings().SetTheme(&overlayTheme{})

	// Set up system tray using Fyne's built-in support
	if desk, ok := a.fyneApp.(desktop.App); ok {
		icon := fyne.NewStaticResource("tray.png", trayIcon)
		menu := fyne.NewMenu("hush",
			fyne.NewMenuItem("Quit", func() {
				a.fyneApp.Quit()
			}),
		)
		desk.SetSystemTrayMenu(menu)
		desk.SetSystemTrayIcon(icon)
	}

	// Get primary monitor work area for positioning
	var screenW, screenH int
	monitor := glfw.GetPrimaryMonitor()
	if monitor != nil {
		_, _, screenW, screenH = monitor.GetWorkarea()
	} else {
		screenW, screenH = 1920, 1080 // fallback
	}

	// Create frameless splash window on desktop
	if drv, ok := a.fyneApp.Driver().(desktop.Driver); ok {
		a.window = drv.CreateSplashWindow()
	} else {
		a.window = a.fyneApp.NewWindow("hush")
	}

	a.window.SetContent(a.view)
	a.window.SetFixedSize(true)
	a.window.SetPadded(false)

	viewSize := a.view.MinSize()
	a.window.Resize(viewSize)

	// Bottom-center, with a margin for the dock
	a.posX = (screenW - int(viewSize.Width)) / 2
	a.posY = screenH - int(viewSize.Height) - 20

	go a.onReady()

	// Run event loop without showing the window; it stays hidden until the
	// first show event makes the snapshot visible.
	a.fyneApp.Run()
	return nil
}

func (a *App) Quit() {
	if a.fyneApp != nil {
		a.fyneApp.Quit()
	}
}

// ApplySnapshot is the render function: the window is a pure projection of
// the snapshot, with no branching on history.
func (a *App) ApplySnapshot(snap overlay.Snapshot, mirrored bool) {
	a.view.SetSnapshot(snap, mirrored)
	fyne.Do(func() {
		if a.window == nil {
			return
		}
		a.view.Refresh()
		if snap.Visible == a.shown {
			return
		}
		a.shown = snap.Visible
		if !snap.Visible {
			a.window.Hide()
			return
		}

		// Position and configure before showing, without stealing focus.
		if glfwWin := glfw.GetCurrentContext(); glfwWin != nil {
			glfwWin.SetPos(a.posX, a.posY)
			glfwWin.SetAttrib(glfw.FocusOnShow, glfw.False)
			glfwWin.SetAttrib(glfw.Floating, glfw.True)
			glfwWin.Show()
		} else {
			a.window.Show()
		}
	})
}
