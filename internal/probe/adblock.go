package probe

import (
	"context"
	"log/slog"
	"time"

	"github.com/stupside/beacon/internal/profile"
)

// DefaultAdblockSettle is how long the bait stays in the page before it is
// measured.
const DefaultAdblockSettle = 100 * time.Millisecond

var adBait = BaitSpec{Class: "adsbox", Height: 10}

// Adblock reports whether a content blocker collapsed a bait element.
type Adblock struct {
	Settle time.Duration
}

func (Adblock) Name() string { return NameAdblock }

func (a Adblock) Run(ctx context.Context, env Environment) profile.Result {
	bait, err := env.InsertBait(ctx, adBait)
	if err != nil {
		slog.DebugContext(ctx, "inserting bait failed", "error", err)
		return profile.Fail(codeFor(err, codeFailed))
	}
	defer func() {
		if err := bait.Remove(context.WithoutCancel(ctx)); err != nil {
			slog.DebugContext(ctx, "removing bait failed", "error", err)
		}
	}()

	settle := a.Settle
	if settle <= 0 {
		settle = DefaultAdblockSettle
	}

	t := time.NewTimer(settle)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return profile.Fail(profile.CodeTimeout)
	case <-t.C:
	}

	h, err := bait.OffsetHeight(ctx)
	if err != nil {
		slog.DebugContext(ctx, "measuring bait failed", "error", err)
		return profile.Fail(codeFailed)
	}
	return profile.OK(h == 0)
}
