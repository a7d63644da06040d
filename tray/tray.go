// Package tray manages the system tray icon and menu.
package tray

import "sync"

var (
	quitCh    = make(chan struct{})
	closeOnce sync.Once

	copyLastFn func()
	showFn     func()
	hideFn     func()

	visible bool

	langMu   sync.Mutex
	langCode string // current dictation language code
	langCb   func(string)
)

type Language struct {
	Code  string // ISO-639-1
	Label string
}

// Languages offered in the tray menu. Matches the dictation pipeline's
// supported set.
var Languages = []Language{
	{"ar", "Arabic"},
	{"zh", "Chinese"},
	{"cs", "Czech"},
	{"da", "Danish"},
	{"nl", "Dutch"},
	{"en", "English"},
	{"fi", "Finnish"},
	{"fr", "French"},
	{"de", "German"},
	{"el", "Greek"},
	{"he", "Hebrew"},
	{"hi", "Hindi"},
	{"hu", "Hungarian"},
	{"id", "Indonesian"},
	{"it", "Italian"},
	{"ja", "Japanese"},
	{"ko", "Korean"},
	{"no", "Norwegian"},
	{"fa", "Persian"},
	{"pl", "Polish"},
	{"pt", "Portuguese"},
	{"ro", "Romanian"},
	{"ru", "Russian"},
	{"es", "Spanish"},
	{"sv", "Swedish"},
	{"th", "Thai"},
	{"tr", "Turkish"},
	{"uk", "Ukrainian"},
	{"vi", "Vietnamese"},
}

func OnCopyLast(fn func())         { copyLastFn = fn }
func OnShowHide(show, hide func()) { showFn = show; hideFn = hide }

// SetVisible mirrors the overlay's visibility in the tray icon.
func SetVisible(on bool) {
	visible = on
	updateVisibleIcon(on)
}

func SetLanguage(code string, onSwitch func(string)) {
	langMu.Lock()
	langCode = code
	langCb = onSwitch
	langMu.Unlock()
}

// CurrentLanguage returns the language selected in the tray menu. This is the
// settings lookup behind the overlay's per-show language sync.
func CurrentLanguage() string {
	langMu.Lock()
	defer langMu.Unlock()
	return langCode
}

func Quit() {
	closeOnce.Do(func() { close(quitCh) })
}
