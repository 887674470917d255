package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"unitctl/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override config path (optional)")
	userScope := flag.Bool("user", false, "manage the per-user service manager")
	debugLog := flag.String("debug-log", "", "write diagnostic logs to this file")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		UserScope:  *userScope,
		DebugLog:   *debugLog,
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "unitctl: %v\n", err)
		return 1
	}
	return 0
}
