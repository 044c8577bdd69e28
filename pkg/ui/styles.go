package ui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Primary   = lipgloss.Color("#7D56F4") // Purple - brand color
	Secondary = lipgloss.Color("#00D4AA") // Cyan/Teal

	Success = lipgloss.Color("#00D26A")
	Warning = lipgloss.Color("#FFB800")
	Error   = lipgloss.Color("#FF3838")
	Muted   = lipgloss.Color("#6B7280")
	Text    = lipgloss.Color("#FAFAFA")

	// HTTP status code colors
	Status2xx = lipgloss.Color("#00D26A")
	Status3xx = lipgloss.Color("#4D96FF")
	Status4xx = lipgloss.Color("#FFD93D")
	Status5xx = lipgloss.Color("#FF3838")

	// Encoding family colors
	FamilyEBCDIC  = lipgloss.Color("#FF6B6B")
	FamilyUnicode = lipgloss.Color("#4D96FF")
	FamilyISO     = lipgloss.Color("#6BCB77")
	FamilyWindows = lipgloss.Color("#FFD93D")
)

// Pre-configured styles
var (
	BannerStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	VersionStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	SectionStyle = lipgloss.NewStyle().
			Foreground(Text).
			Bold(true).
			MarginTop(1)

	ConfigLabelStyle = lipgloss.NewStyle().
				Foreground(Muted).
				Width(18)

	ConfigValueStyle = lipgloss.NewStyle().
				Foreground(Text)

	StatLabelStyle = lipgloss.NewStyle().
			Foreground(Muted)

	StatValueStyle = lipgloss.NewStyle().
			Foreground(Text).
			Bold(true)

	BracketStyle = lipgloss.NewStyle().
			Foreground(Muted)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(Text).
			Bold(true).
			Underline(true)

	PassStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	FailStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	WarnStyle = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	DividerStyle = lipgloss.NewStyle().
			Foreground(Muted)

	HelpStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(Primary)
)

// StatusCodeStyle returns the appropriate style for HTTP status codes.
// Zero means no status was read and renders muted.
func StatusCodeStyle(code int) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	switch {
	case code >= 200 && code < 300:
		return base.Foreground(Status2xx)
	case code >= 300 && code < 400:
		return base.Foreground(Status3xx)
	case code >= 400 && code < 500:
		return base.Foreground(Status4xx)
	case code >= 500:
		return base.Foreground(Status5xx)
	default:
		return base.Foreground(Muted)
	}
}

// StateStyle returns the style for a send state label
// ("Ready", "Sent", "Done", "No Response", "Error").
func StateStyle(state string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	switch state {
	case "Done":
		return base.Foreground(Success)
	case "Sent":
		return base.Foreground(Secondary)
	case "No Response":
		return base.Foreground(Warning)
	case "Error":
		return base.Foreground(Error)
	default:
		return base.Foreground(Muted)
	}
}

// FamilyStyle returns the badge style for an encoding family.
func FamilyStyle(family string) lipgloss.Style {
	base := lipgloss.NewStyle()
	switch family {
	case "EBCDIC":
		return base.Foreground(FamilyEBCDIC)
	case "Unicode":
		return base.Foreground(FamilyUnicode)
	case "ISO":
		return base.Foreground(FamilyISO)
	case "Windows":
		return base.Foreground(FamilyWindows)
	default:
		return base.Foreground(Muted)
	}
}
