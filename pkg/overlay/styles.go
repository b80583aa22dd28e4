package overlay

import "github.com/charmbracelet/lipgloss"

// Colors shared by frames, lists and controller chrome.
var (
	Primary      = lipgloss.Color("212")
	Error        = lipgloss.Color("196")
	Warning      = lipgloss.Color("214")
	Info         = lipgloss.Color("45")
	Muted        = lipgloss.Color("241")
	BgSecondary  = lipgloss.Color("235")
	BorderNormal = lipgloss.Color("240")
)

// Variant selects the frame color of an element. Elements read it from the
// "variant" scope binding.
type Variant string

const (
	VariantDefault Variant = "default"
	VariantDanger  Variant = "danger"
	VariantWarning Variant = "warning"
	VariantInfo    Variant = "info"
)

// Frame is the base style around every element.
var Frame = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(BorderNormal).
	Padding(0, 1)

// frameFor returns the frame style for v.
func frameFor(v Variant) lipgloss.Style {
	switch v {
	case VariantDanger:
		return Frame.BorderForeground(Error)
	case VariantWarning:
		return Frame.BorderForeground(Warning)
	case VariantInfo:
		return Frame.BorderForeground(Info)
	default:
		return Frame.BorderForeground(Primary)
	}
}

// Text styles
var (
	Title     = lipgloss.NewStyle().Bold(true)
	MutedText = lipgloss.NewStyle().Foreground(Muted)
	ErrorText = lipgloss.NewStyle().Foreground(Error)
)

// Button styles used by controllers that draw their own hints.
var (
	Button = lipgloss.NewStyle().
		Foreground(lipgloss.Color("252")).
		Background(lipgloss.Color("238")).
		Padding(0, 2)

	ButtonFocused = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(Primary).
			Bold(true).
			Padding(0, 2)

	ButtonDangerFocused = lipgloss.NewStyle().
				Foreground(lipgloss.Color("255")).
				Background(Error).
				Bold(true).
				Padding(0, 2)
)

// List styles
var (
	ListItemNormal = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	ListItemSelected = lipgloss.NewStyle().
				Background(lipgloss.Color("237")).
				Foreground(lipgloss.Color("255")).
				Bold(true)

	ListCursor = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)
)
