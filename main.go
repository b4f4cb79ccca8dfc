package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/stupside/beacon/cmd"
)

// Exit codes. Interrupted runs follow the shell convention for SIGINT.
const (
	exitOK          = 0
	exitFailure     = 1
	exitInterrupted = 130
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	level := slog.LevelInfo
	if slices.Contains(args, "--debug") {
		level = slog.LevelDebug
	}
	// Profiles are printed on stdout, so logs always go to stderr.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Root().Run(ctx, args); err != nil {
		if cause := context.Cause(ctx); cause != nil {
			slog.InfoContext(ctx, "collection interrupted", "cause", cause)
			return exitInterrupted
		}
		slog.Error("beacon failed", "error", err)
		return exitFailure
	}
	return exitOK
}
