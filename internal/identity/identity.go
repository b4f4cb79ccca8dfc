// Package identity keeps a visitor id and visit count across runs and mints
// per-run session keys.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Cookie names and lifetime.
const (
	KeyVisitorID  = "visitor_id"
	KeyVisitCount = "visit_count"

	DefaultTTL = 365 * 24 * time.Hour
)

// Store persists identity values.
type Store interface {
	// Get returns the value under name. ok is false when it is absent.
	Get(ctx context.Context, name string) (value string, ok bool, err error)
	Set(ctx context.Context, name, value string, ttl time.Duration) error
}

// Visitor is the resolved identity for one run.
type Visitor struct {
	ID         string
	VisitCount int
	First      bool
}

// Resolver reads or creates the visitor identity.
type Resolver struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

type Option func(*Resolver)

// WithTTL sets the lifetime of stored values.
func WithTTL(ttl time.Duration) Option {
	return func(r *Resolver) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithClock replaces the wall clock used for new ids.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

func NewResolver(store Store, opts ...Option) *Resolver {
	r := &Resolver{store: store, ttl: DefaultTTL, now: time.Now}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolve returns the stored visitor with its visit count incremented, or a
// new visitor with a count of 1. A store failure still yields a usable
// Visitor alongside the error.
func (r *Resolver) Resolve(ctx context.Context) (Visitor, error) {
	id, ok, err := r.store.Get(ctx, KeyVisitorID)
	if err != nil {
		return r.fresh(), fmt.Errorf("reading visitor id: %w", err)
	}

	if !ok || id == "" {
		v := r.fresh()
		v.First = true
		return v, errors.Join(
			r.set(ctx, KeyVisitorID, v.ID),
			r.set(ctx, KeyVisitCount, "1"),
		)
	}

	raw, _, err := r.store.Get(ctx, KeyVisitCount)
	if err != nil {
		return Visitor{ID: id, VisitCount: 1}, fmt.Errorf("reading visit count: %w", err)
	}

	count := parseCount(raw) + 1
	return Visitor{ID: id, VisitCount: count}, r.set(ctx, KeyVisitCount, strconv.Itoa(count))
}

func (r *Resolver) fresh() Visitor {
	return Visitor{ID: NewVisitorID(r.now()), VisitCount: 1}
}

func (r *Resolver) set(ctx context.Context, name, value string) error {
	if err := r.store.Set(ctx, name, value, r.ttl); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// parseCount reads a stored count. Missing or malformed counts are 0.
func parseCount(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// NewVisitorID returns "v_<random>_<base36 unix ms>".
func NewVisitorID(now time.Time) string {
	return "v_" + random(12) + "_" + base36(now)
}

// NewSessionKey returns "sess_<random>_<base36 unix ms>". Session keys are
// never stored.
func NewSessionKey(now time.Time) string {
	return "sess_" + random(9) + "_" + base36(now)
}

func random(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}

func base36(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 36)
}
