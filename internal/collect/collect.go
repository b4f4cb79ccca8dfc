// Package collect runs one collection pass: identity, device classification,
// every probe, and the submission of the resulting profile.
package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stupside/beacon/internal/app"
	"github.com/stupside/beacon/internal/device"
	"github.com/stupside/beacon/internal/identity"
	"github.com/stupside/beacon/internal/probe"
	"github.com/stupside/beacon/internal/profile"
)

// Resolver resolves the visitor identity.
type Resolver interface {
	Resolve(ctx context.Context) (identity.Visitor, error)
}

// Submitter delivers a finished profile.
type Submitter interface {
	Submit(ctx context.Context, v any) error
}

// Collector builds profiles. A Collector may run several passes, but each
// pass owns its own Profile.
type Collector struct {
	cfg       app.CollectConfig
	env       probe.Environment
	probes    []probe.Probe
	identity  Resolver
	transport Submitter
	now       func() time.Time

	inflight sync.WaitGroup
}

type Option func(*Collector)

// WithClock replaces the wall clock used for run metadata.
func WithClock(now func() time.Time) Option {
	return func(c *Collector) { c.now = now }
}

// New creates a Collector. transport may be nil, in which case nothing is
// submitted.
func New(cfg app.CollectConfig, env probe.Environment, probes []probe.Probe, id Resolver, transport Submitter, opts ...Option) *Collector {
	c := &Collector{
		cfg:       cfg,
		env:       env,
		probes:    probes,
		identity:  id,
		transport: transport,
		now:       time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Run performs one pass. It never fails: every problem ends up as an error
// marker in the profile or in the log. Submission happens in the background;
// call Wait before shutting down.
func (c *Collector) Run(ctx context.Context) (p *profile.Profile) {
	start := c.now()
	p = profile.New()

	defer func() {
		if v := recover(); v != nil {
			slog.ErrorContext(ctx, "collection pass panicked", "panic", v)
		}
	}()

	c.stampIdentity(ctx, p)
	c.stampDevice(ctx, p)

	results := c.runProbes(ctx)
	for i, pr := range c.probes {
		c.set(ctx, p, pr.Name(), results[i])
	}

	end := c.now()
	c.set(ctx, p, profile.KeyCollectedAt, end.UnixMilli())
	c.set(ctx, p, profile.KeyCollectDuration, end.Sub(start).Milliseconds())
	c.set(ctx, p, profile.KeySessionKey, identity.NewSessionKey(end))

	c.submit(ctx, p)
	return p
}

// Wait blocks until background submissions finish or ctx is done.
func (c *Collector) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for submissions: %w", ctx.Err())
	}
}

func (c *Collector) set(ctx context.Context, p *profile.Profile, key string, v any) {
	if err := p.Set(key, v); err != nil {
		slog.ErrorContext(ctx, "profile write rejected", "key", key, "error", err)
	}
}

// stampIdentity and stampDevice each recover on their own, so a fault in one
// step still leaves the rest of the pass to run and submit.
func (c *Collector) stampIdentity(ctx context.Context, p *profile.Profile) {
	v := c.resolveVisitor(ctx)
	if v.ID == "" {
		v = identity.Visitor{ID: identity.NewVisitorID(c.now()), VisitCount: 1}
	}

	c.set(ctx, p, profile.KeyVisitorID, v.ID)
	c.set(ctx, p, profile.KeyVisitCount, v.VisitCount)
}

func (c *Collector) resolveVisitor(ctx context.Context) (v identity.Visitor) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "resolving identity panicked", "panic", r)
			v = identity.Visitor{}
		}
	}()

	v, err := c.identity.Resolve(ctx)
	if err != nil {
		slog.WarnContext(ctx, "resolving identity", "error", err)
	}
	return v
}

func (c *Collector) stampDevice(ctx context.Context, p *profile.Profile) {
	snap, cls := c.classify(ctx)

	c.set(ctx, p, profile.KeyDeviceBrand, cls.Brand)
	c.set(ctx, p, profile.KeyDeviceModel, cls.Model)
	c.set(ctx, p, profile.KeyOS, cls.OS)
	c.set(ctx, p, profile.KeyOSVersion, cls.OSVersion)
	c.set(ctx, p, profile.KeyDeviceType, cls.DeviceType)
	c.set(ctx, p, profile.KeyArchitecture, cls.Architecture)

	if cls.Mobile && c.cfg.ShowDiagnostics {
		c.showDiagnostics(ctx, snap, cls)
	}
}

func (c *Collector) classify(ctx context.Context) (snap device.Snapshot, cls device.Classification) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "classifying device panicked", "panic", r)
			cls = device.Unclassified()
		}
	}()

	snap = readSnapshot(ctx, c.env)
	return snap, device.Classify(ctx, snap)
}

func (c *Collector) showDiagnostics(ctx context.Context, snap device.Snapshot, cls device.Classification) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "showing diagnostics panicked", "panic", r)
		}
	}()

	if err := c.env.ShowDiagnostic(ctx, device.DiagnosticsID, device.Diagnostics(snap, cls)); err != nil {
		slog.DebugContext(ctx, "showing diagnostics failed", "error", err)
	}
}

// runProbes runs every probe concurrently. Each probe writes only its own
// slot, so results are merged after the join without locking.
func (c *Collector) runProbes(ctx context.Context) []profile.Result {
	var g errgroup.Group
	if c.cfg.MaxConcurrency > 0 {
		g.SetLimit(c.cfg.MaxConcurrency)
	}

	results := make([]profile.Result, len(c.probes))

	for i, pr := range c.probes {
		g.Go(func() error {
			results[i] = c.runProbe(ctx, pr)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		slog.WarnContext(ctx, "some probes failed", "error", err)
	}
	return results
}

func (c *Collector) runProbe(ctx context.Context, pr probe.Probe) profile.Result {
	if c.cfg.ProbeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.ProbeTimeout)
		defer cancel()
	}

	done := make(chan profile.Result, 1)
	go func() {
		defer func() {
			if v := recover(); v != nil {
				slog.ErrorContext(ctx, "probe panicked", "probe", pr.Name(), "panic", v)
				done <- profile.Fail(profile.CodePanic)
			}
		}()
		done <- pr.Run(ctx, c.env)
	}()

	select {
	case r := <-done:
		if r.Failed() {
			slog.DebugContext(ctx, "probe failed", "probe", pr.Name(), "error", r.Code())
		}
		return r
	case <-ctx.Done():
		slog.DebugContext(ctx, "probe timed out", "probe", pr.Name())
		return profile.Fail(profile.CodeTimeout)
	}
}

func (c *Collector) submit(ctx context.Context, p *profile.Profile) {
	if c.transport == nil {
		return
	}

	body, err := json.Marshal(p)
	if err != nil {
		slog.ErrorContext(ctx, "encoding profile failed", "error", err)
		return
	}

	ctx = context.WithoutCancel(ctx)
	c.inflight.Go(func() {
		if err := c.transport.Submit(ctx, json.RawMessage(body)); err != nil {
			slog.WarnContext(ctx, "submitting profile failed", "error", err)
			return
		}
		slog.DebugContext(ctx, "profile submitted", "bytes", len(body))
	})
}
