//go:build gui

package gui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// overlayTheme is a near-black palette for the floating overlay window, so the
// level bars and text carry the contrast instead of the chrome.
type overlayTheme struct{}

func (o *overlayTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNameBackground:
		return color.RGBA{14, 14, 16, 255}
	case theme.ColorNameForeground:
		return color.RGBA{212, 212, 216, 255}
	case theme.ColorNameShadow:
		return color.RGBA{0, 0, 0, 96}
	}
	return theme.DefaultTheme().Color(name, theme.VariantDark)
}

func (o *overlayTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (o *overlayTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (o *overlayTheme) Size(name fyne.ThemeSizeName) float32 {
	return theme.DefaultTheme().Size(name)
}
