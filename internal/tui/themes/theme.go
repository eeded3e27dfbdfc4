// Package themes holds the dashboard color schemes.
package themes

import (
	"github.com/Veraticus/kroner/internal/format"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Theme is the resolved set of colors and styles the dashboard draws with.
type Theme struct {
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	Normal        lipgloss.Style
	Bold          lipgloss.Style
	Code          lipgloss.Style
	Selected      lipgloss.Style
	BorderedBox   lipgloss.Style
	RoundedBox    lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusError   lipgloss.Style
	StatusInfo    lipgloss.Style
	StatusPending lipgloss.Style
	Primary       lipgloss.Color
	Foreground    lipgloss.Color
	Muted         lipgloss.Color
	Border        lipgloss.Color
	Success       lipgloss.Color
	Error         lipgloss.Color
}

// palette is the handful of colors a theme is derived from.
type palette struct {
	accent, onAccent string
	text, subtext    string
	muted, border    string
	surface          string
	positive         string
	negative         string
	info             string
}

func newTheme(p palette) Theme {
	text := lipgloss.Color(p.text)
	return Theme{
		Primary:    lipgloss.Color(p.accent),
		Foreground: text,
		Muted:      lipgloss.Color(p.muted),
		Border:     lipgloss.Color(p.border),
		Success:    lipgloss.Color(p.positive),
		Error:      lipgloss.Color(p.negative),

		Title:    lipgloss.NewStyle().Bold(true).Foreground(text).MarginBottom(1),
		Subtitle: lipgloss.NewStyle().Foreground(lipgloss.Color(p.subtext)).MarginBottom(1),
		Normal:   lipgloss.NewStyle().Foreground(text),
		Bold:     lipgloss.NewStyle().Bold(true).Foreground(text),
		Code: lipgloss.NewStyle().
			Background(lipgloss.Color(p.surface)).
			Foreground(text).
			Padding(0, 1),
		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(p.accent)).
			Foreground(lipgloss.Color(p.onAccent)).
			Bold(true),

		BorderedBox: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color(p.border)).
			Padding(1, 2),
		RoundedBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(p.border)).
			Padding(1, 2),

		StatusSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color(p.positive)).Bold(true),
		StatusError:   lipgloss.NewStyle().Foreground(lipgloss.Color(p.negative)).Bold(true),
		StatusInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color(p.info)).Bold(true),
		StatusPending: lipgloss.NewStyle().Foreground(lipgloss.Color(p.muted)).Italic(true),
	}
}

// Default is the theme used when ui.theme is unset or unknown.
var Default = newTheme(palette{
	accent: "#7c3aed", onAccent: "#fafafa",
	text: "#fafafa", subtext: "#a3a3a3",
	muted: "#737373", border: "#404040",
	surface:  "#262626",
	positive: "#10b981",
	negative: "#ef4444",
	info:     "#3b82f6",
})

// CatppuccinMocha follows the Catppuccin Mocha palette.
var CatppuccinMocha = newTheme(palette{
	accent: "#cba6f7", onAccent: "#1e1e2e",
	text: "#cdd6f4", subtext: "#a6adc8",
	muted: "#6c7086", border: "#45475a",
	surface:  "#313244",
	positive: "#a6e3a1",
	negative: "#f38ba8",
	info:     "#89dceb",
})

// Nord follows the Nord palette.
var Nord = newTheme(palette{
	accent: "#88c0d0", onAccent: "#2e3440",
	text: "#eceff4", subtext: "#d8dee9",
	muted: "#4c566a", border: "#434c5e",
	surface:  "#3b4252",
	positive: "#a3be8c",
	negative: "#bf616a",
	info:     "#81a1c1",
})

// GetTheme returns a theme by its ui.theme name.
func GetTheme(name string) Theme {
	switch name {
	case "catppuccin-mocha":
		return CatppuccinMocha
	case "nord":
		return Nord
	default:
		return Default
	}
}

// CategoryColor returns the stable color for a category name.
func CategoryColor(name string) lipgloss.Color {
	hue := float64(format.CategoryHue(name))
	return lipgloss.Color(colorful.Hsl(hue, 0.55, 0.62).Hex())
}

// AmountColor picks the color for a signed amount.
func (t Theme) AmountColor(amount int64) lipgloss.Color {
	if amount < 0 {
		return t.Error
	}
	return t.Success
}

// UsageColor is the fill color of a budget bar: base until the budget is
// exceeded, then the error color.
func (t Theme) UsageColor(base lipgloss.Color, over bool) lipgloss.Color {
	if over {
		return t.Error
	}
	return base
}
