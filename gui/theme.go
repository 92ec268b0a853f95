//go:build gui

package gui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// launcherTheme is always dark, with the recording red as primary and a
// larger entry font for the launcher query.
type launcherTheme struct {
	fyne.Theme
}

func newLauncherTheme() fyne.Theme {
	return &launcherTheme{Theme: theme.DefaultTheme()}
}

var palette = map[fyne.ThemeColorName]color.Color{
	theme.ColorNameBackground:      color.NRGBA{R: 18, G: 18, B: 20, A: 255},
	theme.ColorNameInputBackground: color.NRGBA{R: 30, G: 30, B: 34, A: 255},
	theme.ColorNameForeground:      color.NRGBA{R: 210, G: 210, B: 214, A: 255},
	theme.ColorNamePrimary:         color.NRGBA{R: 255, G: 59, B: 48, A: 255},
	theme.ColorNameFocus:           color.NRGBA{R: 255, G: 59, B: 48, A: 96},
}

func (t *launcherTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	if c, ok := palette[name]; ok {
		return c
	}
	return t.Theme.Color(name, theme.VariantDark)
}

func (t *launcherTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameText:
		return 15
	case theme.SizeNameInputRadius:
		return 8
	}
	return t.Theme.Size(name)
}
