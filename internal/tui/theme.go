package tui

import "github.com/charmbracelet/lipgloss"

// ---------------------------------------------------------------------------
// Catppuccin Mocha palette — true-color hex values
// https://catppuccin.com/palette
// ---------------------------------------------------------------------------

const (
	colorPink     lipgloss.Color = "#f5c2e7"
	colorMauve    lipgloss.Color = "#cba6f7"
	colorRed      lipgloss.Color = "#f38ba8"
	colorPeach    lipgloss.Color = "#fab387"
	colorYellow   lipgloss.Color = "#f9e2af"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorTeal     lipgloss.Color = "#94e2d5"
	colorBlue     lipgloss.Color = "#89b4fa"
	colorLavender lipgloss.Color = "#b4befe"

	colorText     lipgloss.Color = "#cdd6f4"
	colorSubtext0 lipgloss.Color = "#a6adc8"
	colorOverlay0 lipgloss.Color = "#6c7086"
	colorSurface1 lipgloss.Color = "#45475a"
	colorSurface0 lipgloss.Color = "#313244"
	colorBase     lipgloss.Color = "#1e1e2e"
	colorCrust    lipgloss.Color = "#11111b"
)

// Theme carries the accent-dependent styles. The accent follows the
// configured theme name; the multi-call accent is always red so a second
// live call is visible from any screen.
type Theme struct {
	Accent      lipgloss.Color
	MultiAccent lipgloss.Color

	Title    lipgloss.Style
	Subtle   lipgloss.Style
	Bar      lipgloss.Style
	BarMulti lipgloss.Style
	Footer   lipgloss.Style
	Badge    lipgloss.Style
	BadgeOff lipgloss.Style
	Box      lipgloss.Style
	Selected lipgloss.Style

	ToastInfo    lipgloss.Style
	ToastSuccess lipgloss.Style
	ToastError   lipgloss.Style
}

// AccentColors maps the configurable theme names to their accent color.
func AccentColors() map[string]lipgloss.Color {
	return map[string]lipgloss.Color{
		"orange": colorPeach,
		"yellow": colorYellow,
		"green":  colorGreen,
		"blue":   colorBlue,
		"red":    colorRed,
		"pink":   colorPink,
		"purple": colorMauve,
	}
}

// NewTheme builds the style set for a theme name. Unknown names fall back
// to orange.
func NewTheme(name string) Theme {
	accent, ok := AccentColors()[name]
	if !ok {
		accent = colorPeach
	}

	toast := lipgloss.NewStyle().Padding(0, 1).Foreground(colorCrust)
	return Theme{
		Accent:      accent,
		MultiAccent: colorRed,

		Title:    lipgloss.NewStyle().Bold(true).Foreground(accent),
		Subtle:   lipgloss.NewStyle().Foreground(colorSubtext0),
		Bar:      lipgloss.NewStyle().Background(colorSurface0).Foreground(accent).Padding(0, 1),
		BarMulti: lipgloss.NewStyle().Background(colorRed).Foreground(colorCrust).Padding(0, 1),
		Footer:   lipgloss.NewStyle().Foreground(colorOverlay0),
		Badge:    lipgloss.NewStyle().Background(accent).Foreground(colorCrust).Padding(0, 1),
		BadgeOff: lipgloss.NewStyle().Background(colorSurface1).Foreground(colorSubtext0).Padding(0, 1),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Background(colorBase).
			Padding(1, 2),
		Selected: lipgloss.NewStyle().Foreground(accent).Bold(true),

		ToastInfo:    toast.Background(colorTeal),
		ToastSuccess: toast.Background(colorGreen),
		ToastError:   toast.Background(colorRed),
	}
}
