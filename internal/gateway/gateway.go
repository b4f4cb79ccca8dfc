// Package gateway discovers UPnP internet gateways on the local network.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/huin/goupnp"
)

// Search targets for internet gateway devices.
const (
	TargetIGDv1 = "urn:schemas-upnp-org:device:InternetGatewayDevice:1"
	TargetIGDv2 = "urn:schemas-upnp-org:device:InternetGatewayDevice:2"
)

// Info holds discovery information about a gateway.
type Info struct {
	Name         string `json:"name"`
	Manufacturer string `json:"manufacturer"`
	Model        string `json:"model"`
	Address      string `json:"address"`
	Target       string `json:"target"`
}

// DiscoverFunc runs one SSDP search.
type DiscoverFunc func(ctx context.Context, target string) ([]goupnp.MaybeRootDevice, error)

// Scanner searches the local network for gateways.
type Scanner struct {
	Timeout  time.Duration
	Targets  []string
	Discover DiscoverFunc
}

// NewScanner returns a Scanner for both IGD versions.
func NewScanner(timeout time.Duration) *Scanner {
	return &Scanner{
		Timeout:  timeout,
		Targets:  []string{TargetIGDv1, TargetIGDv2},
		Discover: goupnp.DiscoverDevicesCtx,
	}
}

// Scan returns the gateways seen within the timeout, deduplicated by
// location. A failing search target is logged and skipped.
func (s *Scanner) Scan(ctx context.Context) ([]Info, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	var (
		gateways []Info
		failures int
	)
	seen := make(map[string]struct{})

	for _, target := range s.Targets {
		found, err := s.search(ctx, target)
		if err != nil {
			slog.WarnContext(ctx, "gateway discovery error", "target", target, "error", err)
			failures++
			continue
		}
		for _, g := range found {
			if _, ok := seen[g.Address]; ok {
				continue
			}
			seen[g.Address] = struct{}{}
			gateways = append(gateways, g)
		}
	}

	if failures == len(s.Targets) && failures > 0 {
		return nil, fmt.Errorf("all %d gateway searches failed", failures)
	}
	return gateways, nil
}

func (s *Scanner) search(ctx context.Context, target string) ([]Info, error) {
	results, err := s.Discover(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("SSDP discovery: %w", err)
	}

	var gateways []Info
	for _, r := range results {
		if r.Err != nil || r.Root == nil {
			continue
		}
		address := ""
		if r.Location != nil {
			address = r.Location.String()
		}
		gateways = append(gateways, Info{
			Name:         r.Root.Device.FriendlyName,
			Manufacturer: r.Root.Device.Manufacturer,
			Model:        r.Root.Device.ModelName,
			Address:      address,
			Target:       target,
		})
	}
	return gateways, nil
}
