package probe

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/stupside/beacon/internal/profile"
)

// Geolocation defaults.
const (
	DefaultGeoTimeout = 5 * time.Second
	DefaultGeoMaxAge  = 10 * time.Minute
)

// geoGrace bounds the wait beyond the geolocation timeout, since the
// browser only starts the timeout once permission is settled.
const geoGrace = time.Second

// IPInfoSource looks up the caller's network location on the analytics
// backend.
type IPInfoSource interface {
	IPInfo(ctx context.Context) (json.RawMessage, error)
}

type LocationReport struct {
	TimeZone string          `json:"tz"`
	Offset   int             `json:"offset"`
	IPInfo   json.RawMessage `json:"ipInfo,omitempty"`
	GPS      *Position       `json:"gps,omitempty"`
}

// Location reports the time zone, the backend IP lookup and, when the user
// allows it, the GPS position. Only the time zone read can fail the probe.
type Location struct {
	IPInfo      IPInfoSource
	Geolocation GeoOptions
}

func (Location) Name() string { return NameLocation }

func (l Location) Run(ctx context.Context, env Environment) profile.Result {
	var r LocationReport
	if err := env.Read(ctx, NameLocation, &r); err != nil {
		slog.DebugContext(ctx, "location read failed", "error", err)
		return profile.Fail(codeFor(err, codeFailed))
	}

	if l.IPInfo != nil {
		info, err := l.IPInfo.IPInfo(ctx)
		if err != nil {
			slog.DebugContext(ctx, "ip info lookup failed", "error", err)
		} else {
			r.IPInfo = info
		}
	}

	opts := l.Geolocation
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultGeoTimeout
	}
	if opts.MaximumAge <= 0 {
		opts.MaximumAge = DefaultGeoMaxAge
	}

	gctx, cancel := context.WithTimeout(ctx, opts.Timeout+geoGrace)
	defer cancel()

	pos, err := env.Geolocation(gctx, opts)
	if err != nil {
		slog.DebugContext(ctx, "geolocation unavailable", "error", err)
	} else {
		r.GPS = &pos
	}

	return profile.OK(r)
}
