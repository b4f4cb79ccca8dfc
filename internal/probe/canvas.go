package probe

import (
	"context"
	"log/slog"
	"math"
	"unicode/utf16"

	"github.com/stupside/beacon/internal/hash"
	"github.com/stupside/beacon/internal/profile"
)

const (
	codeNoCanvas = "no_canvas"

	canvasWidth  = 300
	canvasHeight = 150
)

// canvasOps is the fixed draw list. Any change to it changes every canvas
// hash ever collected.
var canvasOps = []Op{
	set("textBaseline", "alphabetic"),
	set("font", "16px Arial"),
	set("fillStyle", "#f60"),
	call("fillRect", 125, 1, 62, 20),
	set("fillStyle", "#069"),
	call("fillText", "Browser FP Test", 2, 15),
	set("strokeStyle", "rgba(102, 204, 0, 0.7)"),
	call("strokeRect", 5, 5, 50, 50),

	set("globalAlpha", 0.7),
	call("arc", 50, 50, 20, 0, math.Pi*2, true),
	set("fillStyle", "rgba(200, 0, 0, 0.5)"),
	call("fill"),
	call("beginPath"),
	call("moveTo", 10, 10),
	call("lineTo", 60, 60),
	call("lineTo", 10, 60),
	call("closePath"),
	call("stroke"),
	set("globalAlpha", 1.0),

	set("globalCompositeOperation", "multiply"),
	set("fillStyle", "rgb(0,200,0)"),
	call("fillRect", 30, 30, 40, 40),
	set("globalCompositeOperation", "source-over"),

	call("save"),
	set("font", "20px Times New Roman"),
	call("rotate", 0.1),
	set("fillStyle", "#0af"),
	call("fillText", "Entropy!", 80, 40),
	call("restore"),

	call("save"),
	set("font", "18px Courier New"),
	call("rotate", -0.1),
	set("fillStyle", "#fa0"),
	call("fillText", "Canvas FP", 10, 80),
	call("restore"),
}

type CanvasReport struct {
	Hash          int32 `json:"hash"`
	DataURLLength int   `json:"dataURLLength"`
}

// Canvas renders the fixed draw list and hashes the resulting data URL.
type Canvas struct{}

func (Canvas) Name() string { return NameCanvas }

func (Canvas) Run(ctx context.Context, env Environment) profile.Result {
	s, err := env.Canvas(ctx, canvasWidth, canvasHeight)
	if err != nil {
		slog.DebugContext(ctx, "canvas unavailable", "error", err)
		return profile.Fail(codeNoCanvas)
	}
	defer release(ctx, s)

	if err := s.Draw(ctx, canvasOps); err != nil {
		slog.DebugContext(ctx, "canvas draw failed", "error", err)
		return profile.Fail(codeNoCanvas)
	}

	dataURL, err := s.DataURL(ctx)
	if err != nil {
		slog.DebugContext(ctx, "canvas export failed", "error", err)
		return profile.Fail(codeNoCanvas)
	}

	return profile.OK(CanvasReport{
		Hash:          hash.String(dataURL),
		DataURLLength: len(utf16.Encode([]rune(dataURL))),
	})
}

type releaser interface {
	Release(ctx context.Context) error
}

func release(ctx context.Context, r releaser) {
	if err := r.Release(context.WithoutCancel(ctx)); err != nil {
		slog.DebugContext(ctx, "releasing surface failed", "error", err)
	}
}
