package app

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// PanelTheme is the dark theme of the floating control panel.
type PanelTheme struct{}

var _ fyne.Theme = (*PanelTheme)(nil)

func (t *PanelTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNameBackground:
		return color.NRGBA{R: 0x2C, G: 0x3E, B: 0x50, A: 0xFF} // Slate
	case theme.ColorNameButton:
		return color.NRGBA{R: 0x34, G: 0x49, B: 0x5E, A: 0xFF}
	case theme.ColorNamePrimary:
		return color.NRGBA{R: 0x2E, G: 0xCC, B: 0x71, A: 0xFF} // Running green
	case theme.ColorNameForeground:
		return color.NRGBA{R: 0xEC, G: 0xF0, B: 0xF1, A: 0xFF}
	case theme.ColorNameDisabled:
		return color.NRGBA{R: 0x7F, G: 0x8C, B: 0x8D, A: 0xFF}
	default:
		return theme.DefaultTheme().Color(name, theme.VariantDark)
	}
}

func (t *PanelTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *PanelTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *PanelTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameText:
		return 12 // Compact floating panel
	case theme.SizeNamePadding:
		return 3
	default:
		return theme.DefaultTheme().Size(name)
	}
}
