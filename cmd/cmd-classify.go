package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/stupside/beacon/internal/device"
)

// staticHints answers every hints request with the same values.
type staticHints device.Hints

func (h staticHints) HighEntropyValues(context.Context, []string) (device.Hints, error) {
	return device.Hints(h), nil
}

// classifyCommand returns the "classify" CLI subcommand.
func classifyCommand() *cli.Command {
	return &cli.Command{
		Name:  "classify",
		Usage: "Classify a device from its user agent and optional client hints",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "ua", Usage: "User-Agent string", Required: true},
			&cli.StringFlag{Name: "platform", Usage: "navigator.platform value"},
			&cli.StringFlag{Name: "hints-model", Usage: "Client Hints model"},
			&cli.StringFlag{Name: "hints-platform", Usage: "Client Hints platform"},
			&cli.StringFlag{Name: "hints-platform-version", Usage: "Client Hints platform version"},
			&cli.StringFlag{Name: "hints-arch", Usage: "Client Hints architecture"},
			&cli.StringFlag{Name: "renderer", Usage: "Unmasked WebGL renderer"},
			&cli.IntFlag{Name: "screen-width"},
			&cli.IntFlag{Name: "screen-height"},
			&cli.IntFlag{Name: "cores", Usage: "navigator.hardwareConcurrency"},
			&cli.StringFlag{Name: "tz", Usage: "IANA time zone"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			snap := device.Snapshot{
				UserAgent:           cmd.String("ua"),
				Platform:            cmd.String("platform"),
				WebGLRenderer:       cmd.String("renderer"),
				ScreenWidth:         cmd.Int("screen-width"),
				ScreenHeight:        cmd.Int("screen-height"),
				HardwareConcurrency: cmd.Int("cores"),
				TimeZone:            cmd.String("tz"),
			}

			hints := staticHints{
				Model:           cmd.String("hints-model"),
				Platform:        cmd.String("hints-platform"),
				PlatformVersion: cmd.String("hints-platform-version"),
				Architecture:    cmd.String("hints-arch"),
			}
			if hints.Model != "" || hints.Platform != "" || hints.PlatformVersion != "" || hints.Architecture != "" {
				snap.Hints = hints
			}

			c := device.Classify(ctx, snap)
			slog.DebugContext(ctx, "classification source", "source", c.Source)

			enc := json.NewEncoder(cmd.Root().Writer)
			enc.SetIndent("", "  ")
			if err := enc.Encode(c); err != nil {
				return fmt.Errorf("printing classification: %w", err)
			}

			if c.Mobile {
				fmt.Fprintln(cmd.Root().Writer, device.Diagnostics(snap, c))
			}
			return nil
		},
	}
}
