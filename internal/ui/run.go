package ui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"unitctl/internal/config"
	"unitctl/internal/systemd"
)

// Options carry everything the UI needs to run.
type Options struct {
	Context context.Context
	Units   systemd.UnitSource
	Journal systemd.JournalSource
	Config  config.Config
	Log     zerolog.Logger
}

// Run starts the bubbletea program and blocks until quit or context cancel.
func Run(opts Options) error {
	model := New(opts.Context, opts.Units, opts.Journal, opts.Config, opts.Log)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(opts.Context))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
