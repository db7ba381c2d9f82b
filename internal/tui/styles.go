package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ecoimpact/carbonsim/internal/risk"
)

// Palette.
var (
	ColorHeader    = lipgloss.AdaptiveColor{Light: "#1A5E20", Dark: "#81C784"}
	ColorLabel     = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#A0A0A0"}
	ColorValue     = lipgloss.AdaptiveColor{Light: "#111111", Dark: "#F5F5F5"}
	ColorMuted     = lipgloss.AdaptiveColor{Light: "#888888", Dark: "#6C6C6C"}
	ColorHighlight = lipgloss.AdaptiveColor{Light: "#0D47A1", Dark: "#64B5F6"}
	ColorOK        = lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#66BB6A"}
	ColorWarning   = lipgloss.AdaptiveColor{Light: "#E65100", Dark: "#FFB74D"}
	ColorCritical  = lipgloss.AdaptiveColor{Light: "#B71C1C", Dark: "#EF5350"}
)

// Shared styles.
var (
	HeaderStyle   = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	LabelStyle    = lipgloss.NewStyle().Foreground(ColorLabel)
	ValueStyle    = lipgloss.NewStyle().Foreground(ColorValue).Bold(true)
	SubtleStyle   = lipgloss.NewStyle().Foreground(ColorMuted).Italic(true)
	InfoStyle     = lipgloss.NewStyle().Foreground(ColorHighlight)
	OKStyle       = lipgloss.NewStyle().Foreground(ColorOK).Bold(true)
	WarningStyle  = lipgloss.NewStyle().Foreground(ColorWarning)
	CriticalStyle = lipgloss.NewStyle().Foreground(ColorCritical).Bold(true)
	HelpStyle     = lipgloss.NewStyle().Foreground(ColorMuted)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorMuted).
			Padding(0, 1)

	TableHeaderStyle = lipgloss.NewStyle().
				Foreground(ColorHeader).
				Bold(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(ColorMuted)
	TableSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(lipgloss.Color("#2E7D32")).
				Bold(true)
)

// RiskStyle colours a risk category.
func RiskStyle(c risk.Category) lipgloss.Style {
	switch c {
	case risk.LowRisk:
		return OKStyle
	case risk.AtRisk:
		return WarningStyle
	default:
		return CriticalStyle
	}
}
