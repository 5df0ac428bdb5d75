package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Theme represents a color theme for the TUI
type Theme struct {
	Name string

	// Primary colors
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Accent    lipgloss.AdaptiveColor

	// Semantic colors
	Success lipgloss.AdaptiveColor
	Warning lipgloss.AdaptiveColor
	Error   lipgloss.AdaptiveColor

	// UI colors
	Border   lipgloss.AdaptiveColor
	Muted    lipgloss.AdaptiveColor
	Selected lipgloss.AdaptiveColor
}

// palette lists [light, dark] pairs in Theme field order
type palette [8][2]string

func buildTheme(name string, p palette) Theme {
	c := func(i int) lipgloss.AdaptiveColor {
		return lipgloss.AdaptiveColor{Light: p[i][0], Dark: p[i][1]}
	}
	return Theme{
		Name:      name,
		Primary:   c(0),
		Secondary: c(1),
		Accent:    c(2),
		Success:   c(3),
		Warning:   c(4),
		Error:     c(5),
		Border:    c(6),
		Muted:     c(1),
		Selected:  c(7),
	}
}

// Available themes
var (
	DefaultTheme = buildTheme("default", palette{
		{"#1E40AF", "#3B82F6"}, {"#6B7280", "#9CA3AF"}, {"#7C3AED", "#A855F7"}, {"#059669", "#10B981"},
		{"#D97706", "#F59E0B"}, {"#DC2626", "#EF4444"}, {"#D1D5DB", "#374151"}, {"#DBEAFE", "#1E3A8A"},
	})

	HighContrastTheme = buildTheme("high-contrast", palette{
		{"#000000", "#FFFFFF"}, {"#666666", "#BBBBBB"}, {"#000080", "#8080FF"}, {"#006600", "#00FF00"},
		{"#CC6600", "#FFAA00"}, {"#CC0000", "#FF4444"}, {"#000000", "#FFFFFF"}, {"#CCCCCC", "#333333"},
	})

	MinimalTheme = buildTheme("minimal", palette{
		{"#2D3748", "#E2E8F0"}, {"#718096", "#A0AEC0"}, {"#4A5568", "#CBD5E0"}, {"#2F855A", "#68D391"},
		{"#C05621", "#F6AD55"}, {"#C53030", "#FC8181"}, {"#E2E8F0", "#2D3748"}, {"#EDF2F7", "#2D3748"},
	})
)

var themes = map[string]Theme{
	DefaultTheme.Name:      DefaultTheme,
	HighContrastTheme.Name: HighContrastTheme,
	MinimalTheme.Name:      MinimalTheme,
}

// ThemeByName returns the named theme, or the default theme and false
func ThemeByName(name string) (Theme, bool) {
	if theme, ok := themes[name]; ok {
		return theme, true
	}
	return DefaultTheme, false
}

// IsColorDisabled checks if colors should be disabled
func IsColorDisabled() bool {
	return os.Getenv("NO_COLOR") != ""
}

// Styles contains all the styled components
type Styles struct {
	Theme Theme

	Title   lipgloss.Style
	Header  lipgloss.Style
	Body    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style

	Selected lipgloss.Style
	Focused  lipgloss.Style
	Blurred  lipgloss.Style
	Spinner  lipgloss.Style
}

// NewStyles derives the component styles from a theme
func NewStyles(theme Theme) *Styles {
	if IsColorDisabled() {
		return plainStyles(theme)
	}

	return &Styles{
		Theme: theme,

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			Padding(0, 1),

		Header: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),

		Body:    lipgloss.NewStyle(),
		Muted:   lipgloss.NewStyle().Foreground(theme.Muted),
		Success: lipgloss.NewStyle().Foreground(theme.Success).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(theme.Warning).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(theme.Error).Bold(true),

		Selected: lipgloss.NewStyle().
			Background(theme.Selected).
			Foreground(theme.Primary).
			Bold(true),

		Focused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Primary).
			Padding(0, 1),

		Blurred: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		Spinner: lipgloss.NewStyle().Foreground(theme.Primary).Bold(true),
	}
}

func plainStyles(theme Theme) *Styles {
	plain := lipgloss.NewStyle()
	box := lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1)
	return &Styles{
		Theme:    theme,
		Title:    plain.Padding(0, 1),
		Header:   plain,
		Body:     plain,
		Muted:    plain,
		Success:  plain,
		Warning:  plain,
		Error:    plain,
		Selected: plain.Reverse(true),
		Focused:  box,
		Blurred:  box,
		Spinner:  plain,
	}
}
