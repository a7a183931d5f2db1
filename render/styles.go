package render

import "github.com/charmbracelet/lipgloss"

// One Dark palette
var (
	ColorFgPrimary = lipgloss.Color("#ABB2BF")
	ColorFgMuted   = lipgloss.Color("#636B78")
	ColorRed       = lipgloss.Color("#E06C75")
	ColorBlue      = lipgloss.Color("#61AFEF")
	ColorMagenta   = lipgloss.Color("#C678DD")
	ColorYellow    = lipgloss.Color("#E5C07B")
	ColorBorder    = lipgloss.Color("#3F4451")
)

type styles struct {
	title        lipgloss.Style
	heading      lipgloss.Style
	paragraph    lipgloss.Style
	emphasized   lipgloss.Style
	effectsLabel lipgloss.Style
	effectsBox   lipgloss.Style
	errorBox     lipgloss.Style
}

func newStyles(width int) styles {
	return styles{
		title: lipgloss.NewStyle().
			Foreground(ColorMagenta).
			Bold(true).
			MarginBottom(1),
		heading: lipgloss.NewStyle().
			Bold(true).
			MarginTop(1),
		paragraph: lipgloss.NewStyle().
			Foreground(ColorFgPrimary).
			Width(width),
		emphasized: lipgloss.NewStyle().
			Foreground(ColorBlue).
			Bold(true),
		effectsLabel: lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true),
		effectsBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1).
			Width(width - 2),
		errorBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorRed).
			Foreground(ColorRed).
			Padding(0, 1).
			Width(width - 2),
	}
}
