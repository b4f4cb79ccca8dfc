package probe

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/stupside/beacon/internal/profile"
)

// DefaultLocalIPTimeout bounds ICE gathering.
const DefaultLocalIPTimeout = 2 * time.Second

var ipv4 = regexp.MustCompile(`([0-9]{1,3}(\.[0-9]{1,3}){3})`)

// LocalIPs lists the IPv4 addresses leaked by WebRTC ICE candidates. It
// settles with whatever it has once gathering completes or the timeout
// elapses.
type LocalIPs struct {
	Timeout time.Duration
}

func (LocalIPs) Name() string { return NameLocalIPs }

func (l LocalIPs) Run(ctx context.Context, env Environment) profile.Result {
	timeout := l.Timeout
	if timeout <= 0 {
		timeout = DefaultLocalIPTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ips := []string{}

	candidates, err := env.ICECandidates(ctx)
	switch {
	case errors.Is(err, ErrUnsupported):
		return profile.OK(ips)
	case err != nil:
		slog.DebugContext(ctx, "ice gathering failed", "error", err)
		return profile.Fail(codeFor(err, codeFailed))
	}

	for {
		select {
		case <-ctx.Done():
			return profile.OK(ips)
		case c, ok := <-candidates:
			if !ok {
				return profile.OK(ips)
			}
			ips = addIP(ips, c)
		}
	}
}

func addIP(ips []string, candidate string) []string {
	m := ipv4.FindStringSubmatch(candidate)
	if m == nil || strings.HasPrefix(m[1], "127.") {
		return ips
	}
	for _, ip := range ips {
		if ip == m[1] {
			return ips
		}
	}
	return append(ips, m[1])
}
