package collect

import (
	"context"
	"log/slog"

	"github.com/stupside/beacon/internal/device"
	"github.com/stupside/beacon/internal/probe"
)

// ReadSignals is the browser read feeding the device classifier.
const ReadSignals = "signals"

type signals struct {
	UserAgent           string  `json:"ua"`
	Platform            string  `json:"platform"`
	ScreenWidth         int     `json:"screenWidth"`
	ScreenHeight        int     `json:"screenHeight"`
	HardwareConcurrency int     `json:"hardwareConcurrency"`
	DeviceMemory        float64 `json:"deviceMemory"`
	TimeZone            string  `json:"timeZone"`
	Language            string  `json:"language"`
	HasHints            bool    `json:"hasHints"`
}

// readSnapshot gathers the classifier inputs. Missing signals are left at
// their zero value.
func readSnapshot(ctx context.Context, env probe.Environment) device.Snapshot {
	var sig signals
	if err := env.Read(ctx, ReadSignals, &sig); err != nil {
		slog.WarnContext(ctx, "reading device signals failed", "error", err)
	}

	snap := device.Snapshot{
		UserAgent:           sig.UserAgent,
		Platform:            sig.Platform,
		ScreenWidth:         sig.ScreenWidth,
		ScreenHeight:        sig.ScreenHeight,
		HardwareConcurrency: sig.HardwareConcurrency,
		DeviceMemory:        sig.DeviceMemory,
		TimeZone:            sig.TimeZone,
		Language:            sig.Language,
		WebGLRenderer:       renderer(ctx, env),
	}
	if sig.HasHints {
		snap.Hints = env
	}
	return snap
}

func renderer(ctx context.Context, env probe.Environment) string {
	gl, err := env.WebGL(ctx, 1, 1)
	if err != nil {
		slog.DebugContext(ctx, "webgl unavailable for classification", "error", err)
		return ""
	}
	defer func() {
		if err := gl.Release(context.WithoutCancel(ctx)); err != nil {
			slog.DebugContext(ctx, "releasing webgl surface failed", "error", err)
		}
	}()

	info, err := gl.Info(ctx)
	if err != nil {
		slog.DebugContext(ctx, "webgl read failed", "error", err)
		return ""
	}
	if info.UnmaskedRenderer != "" {
		return info.UnmaskedRenderer
	}
	return info.Renderer
}
