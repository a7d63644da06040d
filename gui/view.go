//go:build gui

package gui

import (
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"hush/overlay"
)

const (
	viewWidth  = 360
	viewHeight = 84
	barGap     = 6
	barMaxH    = 56
	barMinH    = 4
)

var (
	colorBarLow  = color.RGBA{255, 215, 0, 255}
	colorBarHigh = color.RGBA{255, 60, 30, 255}
	colorText    = color.RGBA{230, 230, 230, 255}
	colorStatus  = color.RGBA{150, 150, 150, 255}
	colorCopied  = color.RGBA{80, 220, 120, 255}
)

// OverlayView renders a snapshot: level bars while recording, streamed or
// final text otherwise, plus the copy confirmation. Tap copies, secondary
// tap closes.
type OverlayView struct {
	widget.BaseWidget

	mu       sync.Mutex
	snap     overlay.Snapshot
	mirrored bool

	onCopy  func()
	onClose func()
}

func NewOverlayView(onCopy, onClose func()) *OverlayView {
	v := &OverlayView{onCopy: onCopy, onClose: onClose}
	v.ExtendBaseWidget(v)
	return v
}

// SetSnapshot stores the latest render model. Call Refresh via fyne.Do.
func (v *OverlayView) SetSnapshot(snap overlay.Snapshot, mirrored bool) {
	v.mu.Lock()
	v.snap = snap
	v.mirrored = mirrored
	v.mu.Unlock()
}

func (v *OverlayView) Tapped(*fyne.PointEvent) {
	if v.onCopy != nil {
		v.onCopy()
	}
}

func (v *OverlayView) TappedSecondary(*fyne.PointEvent) {
	if v.onClose != nil {
		v.onClose()
	}
}

func (v *OverlayView) MinSize() fyne.Size {
	return fyne.NewSize(viewWidth, viewHeight)
}

func (v *OverlayView) CreateRenderer() fyne.WidgetRenderer {
	r := &viewRenderer{view: v}
	for i := range r.bars {
		r.bars[i] = canvas.NewRectangle(colorBarLow)
	}
	r.text = canvas.NewText("", colorText)
	r.text.TextSize = 16
	r.status = canvas.NewText("", colorStatus)
	r.status.TextSize = 11
	r.copied = canvas.NewText("✓ copied", colorCopied)
	r.copied.TextSize = 11
	return r
}

type viewRenderer struct {
	view   *OverlayView
	bars   [overlay.RenderBars]*canvas.Rectangle
	text   *canvas.Text
	status *canvas.Text
	copied *canvas.Text
	size   fyne.Size
}

func (r *viewRenderer) Layout(size fyne.Size) {
	r.size = size
	r.place()
}

func (r *viewRenderer) MinSize() fyne.Size {
	return r.view.MinSize()
}

func (r *viewRenderer) place() {
	size := r.size
	if size.Width == 0 {
		size = r.view.MinSize()
	}

	r.view.mu.Lock()
	snap := r.view.snap
	mirrored := r.view.mirrored
	r.view.mu.Unlock()

	barW := (size.Width - barGap*float32(overlay.RenderBars+1)) / float32(overlay.RenderBars)
	base := size.Height - 14

	for i, bar := range r.bars {
		idx := i
		if mirrored {
			idx = overlay.RenderBars - 1 - i
		}
		h := float32(overlay.BarHeight(snap.Levels[idx]))*barMaxH + barMinH
		x := barGap + float32(i)*(barW+barGap)
		bar.Move(fyne.NewPos(x, base-h))
		bar.Resize(fyne.NewSize(barW, h))
	}

	r.text.Move(fyne.NewPos(barGap*2, size.Height/2-12))
	r.text.Resize(fyne.NewSize(size.Width-barGap*4, 24))
	r.status.Move(fyne.NewPos(barGap*2, size.Height-13))
	r.copied.Move(fyne.NewPos(size.Width-70, size.Height-13))
}

func (r *viewRenderer) Refresh() {
	r.view.mu.Lock()
	snap := r.view.snap
	mirrored := r.view.mirrored
	r.view.mu.Unlock()

	showBars := snap.State == overlay.Recording && snap.Text == ""

	for i, bar := range r.bars {
		if !showBars {
			bar.Hide()
			continue
		}
		bar.Show()
		idx := i
		if mirrored {
			idx = overlay.RenderBars - 1 - i
		}
		if overlay.BarHeight(snap.Levels[idx]) > 0.6 {
			bar.FillColor = colorBarHigh
		} else {
			bar.FillColor = colorBarLow
		}
	}

	r.text.Text = snap.Text
	if showBars {
		r.text.Hide()
	} else {
		r.text.Show()
	}
	if mirrored {
		r.text.Alignment = fyne.TextAlignTrailing
	} else {
		r.text.Alignment = fyne.TextAlignLeading
	}

	r.status.Text = statusLabel(snap.State)
	if snap.Copied {
		r.copied.Show()
	} else {
		r.copied.Hide()
	}

	r.place()
	r.text.Refresh()
	r.status.Refresh()
	r.copied.Refresh()
	for _, bar := range r.bars {
		bar.Refresh()
	}
}

func statusLabel(s overlay.State) string {
	switch s {
	case overlay.Recording:
		return "listening"
	case overlay.Transcribing:
		return "transcribing…"
	case overlay.Processing:
		return "processing…"
	case overlay.Done:
		return "done · tap to copy, right-click to close"
	}
	return ""
}

func (r *viewRenderer) Objects() []fyne.CanvasObject {
	objs := make([]fyne.CanvasObject, 0, overlay.RenderBars+3)
	for _, bar := range r.bars {
		objs = append(objs, bar)
	}
	return append(objs, r.text, r.status, r.copied)
}

func (r *viewRenderer) Destroy() {}
