// Package app wires configuration, logging, the systemd client, and the UI
// together.
package app

import (
	"context"
	"fmt"

	"unitctl/internal/config"
	"unitctl/internal/logx"
	"unitctl/internal/systemd"
	"unitctl/internal/ui"
)

// Options configure the application.
type Options struct {
	ConfigPath string
	// UserScope forces the per-user unit namespace, overriding the config.
	UserScope bool
	// DebugLog overrides the config's diagnostic log path.
	DebugLog string
}

// Run boots the control panel until the context is cancelled or the user
// quits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.UserScope {
		cfg.Scope = "user"
	}
	if opts.DebugLog != "" {
		cfg.DebugLog = opts.DebugLog
	}

	log := logx.Nop()
	if cfg.DebugLog != "" {
		logger, closer, err := logx.Open(cfg.DebugLog)
		if err != nil {
			return err
		}
		defer closer.Close()
		log = logger
	}

	client := systemd.NewClient(log)
	log.Info().Str("scope", cfg.Scope).Str("category", cfg.Category).Msg("starting")

	return ui.Run(ui.Options{
		Context: ctx,
		Units:   client,
		Journal: client,
		Config:  cfg,
		Log:     log,
	})
}
