package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/stupside/beacon/internal/version"
)

// infoCommand returns the "info" CLI subcommand.
func infoCommand() *cli.Command {
	return &cli.Command{
		Name:  "info",
		Usage: "Print build information",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, err := fmt.Fprintf(cmd.Root().Writer, "beacon %s (commit %s, built %s)\n",
				version.Version, version.Commit, version.BuildTime)
			return err
		},
	}
}
