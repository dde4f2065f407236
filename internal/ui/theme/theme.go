// Package theme holds the lipgloss styles used by the CLI.
package theme

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/curriculum/internal/content"
	"github.com/abhisek/curriculum/internal/unlock"
)

// Color palette
var (
	Primary   = lipgloss.Color("#8B5CF6") // Vivid Purple
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F97316") // Orange
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Tier colors
var (
	Bronze   = lipgloss.Color("#CD7F32")
	Silver   = lipgloss.Color("#C0C0C0")
	Gold     = lipgloss.Color("#FFD700")
	Platinum = lipgloss.Color("#E5E4E2")
	Diamond  = lipgloss.Color("#B9F2FF")
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Warning = lipgloss.NewStyle().
		Foreground(Accent)

	Failure = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)
)

// States
var (
	Locked = lipgloss.NewStyle().
		Foreground(TextDim)

	Available = lipgloss.NewStyle().
			Foreground(Text)

	InProgress = lipgloss.NewStyle().
			Foreground(Accent)

	Completed = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)
)

// Components
var (
	ProgressFilled = lipgloss.NewStyle().
			Background(Secondary)

	ProgressEmpty = lipgloss.NewStyle().
			Background(Border)

	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)
)

// State returns the style for an unlock state.
func State(s unlock.State) lipgloss.Style {
	switch s {
	case unlock.StateCompleted:
		return Completed
	case unlock.StateInProgress:
		return InProgress
	case unlock.StateAvailable:
		return Available
	default:
		return Locked
	}
}

// Tier returns the style for an achievement or skill tier.
func Tier(t content.Tier) lipgloss.Style {
	c := TextDim
	switch t {
	case content.TierBronze:
		c = Bronze
	case content.TierSilver:
		c = Silver
	case content.TierGold:
		c = Gold
	case content.TierPlatinum:
		c = Platinum
	case content.TierDiamond:
		c = Diamond
	}
	return lipgloss.NewStyle().Foreground(c).Bold(true)
}
