package probe

import (
	"context"
	"log/slog"

	"github.com/stupside/beacon/internal/gateway"
	"github.com/stupside/beacon/internal/profile"
)

// GatewayScanner lists the gateways visible from the collecting host.
type GatewayScanner interface {
	Scan(ctx context.Context) ([]gateway.Info, error)
}

// Gateway runs a UPnP gateway scan on the collecting host. It does not touch
// the browser. A nil Scanner means the scan is disabled.
type Gateway struct {
	Scanner GatewayScanner
}

func (Gateway) Name() string { return NameGateway }

func (g Gateway) Run(ctx context.Context, _ Environment) profile.Result {
	if g.Scanner == nil {
		return profile.Fail(profile.CodeDisabled)
	}

	found, err := g.Scanner.Scan(ctx)
	if err != nil {
		slog.DebugContext(ctx, "gateway scan failed", "error", err)
		return profile.Fail(codeFailed)
	}
	if found == nil {
		found = []gateway.Info{}
	}
	return profile.OK(found)
}
