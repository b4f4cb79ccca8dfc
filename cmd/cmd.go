package cmd

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/stupside/beacon/internal/app"
	"github.com/stupside/beacon/internal/version"
)

// Root returns the root CLI command. Only the commands that talk to a browser
// or the network read the config file; classify, presets and info work
// without one.
func Root() *cli.Command {
	return &cli.Command{
		Name:    "beacon",
		Usage:   "Collect and classify browser fingerprints",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.yaml",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			collectCommand(),
			classifyCommand(),
			presetsCommand(),
			gatewaysCommand(),
			infoCommand(),
		},
		Metadata: map[string]any{},
	}
}

// loadConfig is the Before hook of commands that need the config file.
func loadConfig(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	root := cmd.Root()
	cfg, err := app.Load(root.String("config"))
	if err != nil {
		return ctx, err
	}
	root.Metadata["config"] = cfg
	return ctx, nil
}
