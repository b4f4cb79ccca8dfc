package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/stupside/beacon/internal/browser"
)

// presetsCommand returns the "presets" CLI subcommand.
func presetsCommand() *cli.Command {
	return &cli.Command{
		Name:  "presets",
		Usage: "List the device emulation presets",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			w := tabwriter.NewWriter(cmd.Root().Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tPLATFORM\tSCREEN\tTIMEZONE\tUSER AGENT")
			for _, p := range browser.Presets() {
				fmt.Fprintf(w, "%s\t%s\t%dx%d@%g\t%s\t%s\n",
					p.Name, p.NavigatorPlatform, p.ScreenWidth, p.ScreenHeight, p.DeviceScaleFactor, p.TimezoneID, p.UserAgent)
			}
			return w.Flush()
		},
	}
}
