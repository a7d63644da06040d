//go:build darwin

package tray

import (
	_ "embed"

	"github.com/energye/systray"
	"golang.design/x/hotkey/mainthread"
)

//go:embed assets/idle.png
var iconIdle []byte

//go:embed assets/active.png
var iconActive []byte

var (
	mCopy     *systray.MenuItem
	mOverlay  *systray.MenuItem
	mLanguage *systray.MenuItem
	langItems []*systray.MenuItem
)

func Init() <-chan struct{} {
	start, _ := systray.RunWithExternalLoop(onReady, onExit)
	done := make(chan struct{})
	mainthread.Call(func() {
		start()
		close(done)
	})
	<-done
	return quitCh
}

func updateVisibleIcon(on bool) {
	if on {
		systray.SetIcon(iconActive)
		if mOverlay != nil {
			mOverlay.SetTitle("Hide Overlay")
		}
	} else {
		systray.SetTemplateIcon(iconIdle, iconIdle)
		if mOverlay != nil {
			mOverlay.SetTitle("Show Overlay")
		}
	}
}

func onReady() {
	systray.SetTemplateIcon(iconIdle, iconIdle)
	systray.SetTooltip("hush – dictation overlay")

	mCopy = systray.AddMenuItem("Copy Last Transcript", "Copy the last dictation result to the clipboard")
	mCopy.Click(func() {
		if copyLastFn != nil {
			copyLastFn()
		}
	})

	systray.AddSeparator()

	mOverlay = systray.AddMenuItem("Show Overlay", "Show or hide the overlay")
	mOverlay.Click(func() {
		if visible {
			if hideFn != nil {
				hideFn()
			}
		} else {
			if showFn != nil {
				showFn()
			}
		}
	})

	mLanguage = systray.AddMenuItem("Language", "Dictation language")
	for i, lang := range Languages {
		item := mLanguage.AddSubMenuItemCheckbox(lang.Label, lang.Label, lang.Code == langCode)
		idx := i
		item.Click(func() {
			langMu.Lock()
			langCode = Languages[idx].Code
			cb := langCb
			langMu.Unlock()
			for _, it := range langItems {
				it.Uncheck()
			}
			langItems[idx].Check()
			if cb != nil {
				cb(Languages[idx].Code)
			}
		})
		langItems = append(langItems, item)
	}

	systray.AddSeparator()

	mQuit := systray.AddMenuItem("Quit", "Quit hush")
	mQuit.Click(func() {
		Quit()
	})
}

func onExit() {}
