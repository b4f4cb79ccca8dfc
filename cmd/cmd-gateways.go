package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/stupside/beacon/internal/app"
	"github.com/stupside/beacon/internal/gateway"
)

const defaultGatewayTimeout = 3 * time.Second

// gatewaysCommand returns the "gateways" CLI subcommand.
func gatewaysCommand() *cli.Command {
	return &cli.Command{
		Name:  "gateways",
		Usage: "List the UPnP internet gateways visible from this host",
		Before: loadConfig,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := app.ConfigFrom(cmd)
			if err != nil {
				return err
			}

			timeout := cfg.Gateway.Timeout
			if timeout <= 0 {
				timeout = defaultGatewayTimeout
			}

			gateways, err := gateway.NewScanner(timeout).Scan(ctx)
			if err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}

			if len(gateways) == 0 {
				slog.Info("no gateways found")
				return nil
			}

			slog.Info("scan complete", "count", len(gateways))
			for _, g := range gateways {
				slog.Info("gateway found",
					"name", g.Name,
					"manufacturer", g.Manufacturer,
					"model", g.Model,
					"address", g.Address,
					"target", g.Target,
				)
			}
			return nil
		},
	}
}
