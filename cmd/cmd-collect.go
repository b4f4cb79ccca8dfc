package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/stupside/beacon/internal/app"
	"github.com/stupside/beacon/internal/browser"
	"github.com/stupside/beacon/internal/collect"
	"github.com/stupside/beacon/internal/gateway"
	"github.com/stupside/beacon/internal/identity"
	"github.com/stupside/beacon/internal/probe"
	"github.com/stupside/beacon/internal/transport"
)

// collectCommand returns the "collect" CLI subcommand.
func collectCommand() *cli.Command {
	var urlArg string

	return &cli.Command{
		Name:  "collect",
		Usage: "Run one collection pass against a page and print the profile",
		Before: loadConfig,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "preset",
				Usage: "Emulation preset, overrides browser.preset (see \"beacon presets\")",
			},
			&cli.BoolFlag{
				Name:  "no-submit",
				Usage: "Print the profile without sending it to the backend",
			},
		},
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:        "url",
				Destination: &urlArg,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if urlArg == "" {
				return errors.New("missing page URL")
			}

			cfg, err := app.ConfigFrom(cmd)
			if err != nil {
				return err
			}

			name := cfg.Browser.Preset
			if cmd.IsSet("preset") {
				name = cmd.String("preset")
			}
			preset, err := browser.LookupPreset(name)
			if err != nil {
				return err
			}

			client, err := transport.New(cfg.Transport)
			if err != nil {
				return err
			}

			session, err := browser.Open(ctx, cfg.Browser, preset, urlArg)
			if err != nil {
				return err
			}
			defer session.Close()

			opts := probe.Options{
				AdblockSettle: cfg.Collect.AdblockSettle,
				Geolocation: probe.GeoOptions{
					Timeout:    cfg.Collect.GeolocationTimeout,
					MaximumAge: cfg.Collect.GeolocationMaxAge,
				},
				LocalIPTimeout: cfg.Collect.LocalIPTimeout,
				Fonts:          cfg.Collect.Fonts,
				IPInfo:         client,
			}
			if cfg.Gateway.Enabled {
				opts.Gateway = gateway.NewScanner(cfg.Gateway.Timeout)
			}

			var submitter collect.Submitter
			if !cmd.Bool("no-submit") {
				submitter = client
			}

			resolver := identity.NewResolver(session.Cookies(), identity.WithTTL(cfg.Identity.TTL))
			collector := collect.New(cfg.Collect, session, probe.All(opts), resolver, submitter)

			slog.InfoContext(ctx, "collecting", "url", urlArg, "preset", name)
			profile := collector.Run(ctx)

			waitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Transport.Timeout)
			defer cancel()
			if err := collector.Wait(waitCtx); err != nil {
				slog.WarnContext(ctx, "profile submission still in flight", "error", err)
			}

			enc := json.NewEncoder(cmd.Root().Writer)
			enc.SetIndent("", "  ")
			if err := enc.Encode(profile); err != nil {
				return fmt.Errorf("printing profile: %w", err)
			}
			return nil
		},
	}
}
