package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit        key.Binding
	Help        key.Binding
	Reload      key.Binding
	ToggleScope key.Binding
	ToggleLogs  key.Binding
	Escape      key.Binding
	Confirm     key.Binding

	// Pickers and modals
	StatusPicker    key.Binding
	CategoryPicker  key.Binding
	SeverityPicker  key.Binding
	TimePicker      key.Binding
	FileStatePicker key.Binding
	ActionPicker    key.Binding
	Details         key.Binding
	UnitFile        key.Binding

	// Navigation
	Up           key.Binding
	Down         key.Binding
	Top          key.Binding
	Bottom       key.Binding
	PageUp       key.Binding
	PageDown     key.Binding
	HalfPageUp   key.Binding
	HalfPageDown key.Binding

	// Search and log matches
	Search    key.Binding
	NextMatch key.Binding
	PrevMatch key.Binding
	Follow    key.Binding
}

// defaultKeyMap returns the default key bindings.
func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Help"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Reload units"),
		),
		ToggleScope: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "Toggle system/user scope"),
		),
		ToggleLogs: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "Toggle log panel"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Close / clear"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),

		StatusPicker: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Filter by sub-state"),
		),
		CategoryPicker: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "Unit category"),
		),
		SeverityPicker: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "Log severity"),
		),
		TimePicker: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Log time range"),
		),
		FileStatePicker: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Filter by enablement"),
		),
		ActionPicker: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Unit actions"),
		),
		Details: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "Unit details"),
		),
		UnitFile: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "View unit file"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "Page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdown", "Page down"),
		),
		HalfPageUp: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "Half page up"),
		),
		HalfPageDown: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "Half page down"),
		),

		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Search"),
		),
		NextMatch: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "Next match"),
		),
		PrevMatch: key.NewBinding(
			key.WithKeys("N"),
			key.WithHelp("N", "Previous match"),
		),
		Follow: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("Space", "Jump to latest / follow"),
		),
	}
}
