package ui

import "github.com/charmbracelet/lipgloss"

// Theme holds the palette and derived lipgloss styles.
type Theme struct {
	Text     lipgloss.Style
	Faint    lipgloss.Style
	Muted    lipgloss.Style
	Accent   lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Danger   lipgloss.Style
	Info     lipgloss.Style
	Title    lipgloss.Style
	Selected lipgloss.Style
	Marker   lipgloss.Style
	Border   lipgloss.Style
}

func defaultTheme() Theme {
	var (
		faint   = lipgloss.Color("#808080")
		muted   = lipgloss.Color("#666666")
		accent  = lipgloss.Color("#87AFFF")
		success = lipgloss.Color("#5FD75F")
		warning = lipgloss.Color("#FFD700")
		danger  = lipgloss.Color("#FF6B6B")
		info    = lipgloss.Color("#87CEEB")
	)
	return Theme{
		Text:     lipgloss.NewStyle(),
		Faint:    lipgloss.NewStyle().Foreground(faint),
		Muted:    lipgloss.NewStyle().Foreground(muted),
		Accent:   lipgloss.NewStyle().Foreground(accent),
		Success:  lipgloss.NewStyle().Foreground(success),
		Warning:  lipgloss.NewStyle().Foreground(warning),
		Danger:   lipgloss.NewStyle().Foreground(danger),
		Info:     lipgloss.NewStyle().Foreground(info),
		Title:    lipgloss.NewStyle().Bold(true),
		Selected: lipgloss.NewStyle().Reverse(true),
		Marker:   lipgloss.NewStyle().Foreground(warning).Bold(true),
		Border:   lipgloss.NewStyle().Foreground(muted),
	}
}

// subStateStyle colors a unit sub-state the way systemctl's own output does.
func (t Theme) subStateStyle(sub string) lipgloss.Style {
	switch sub {
	case "running", "listening", "active":
		return t.Success
	case "exited", "elapsed":
		return t.Warning
	case "failed":
		return t.Danger
	case "waiting":
		return t.Info
	case "dead", "stopped", "inactive":
		return t.Muted
	default:
		return t.Text
	}
}

// priorityStyle colors a log record by syslog severity.
func (t Theme) priorityStyle(p int) lipgloss.Style {
	switch {
	case p < 0:
		return t.Text
	case p <= 3:
		return t.Danger
	case p == 4:
		return t.Warning
	case p == 5:
		return t.Info
	case p == 7:
		return t.Faint
	default:
		return t.Text
	}
}
