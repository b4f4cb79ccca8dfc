package probe

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/stupside/beacon/internal/profile"
)

// DefaultFonts are the families tested when none are configured.
var DefaultFonts = []string{"Arial", "Helvetica", "Times New Roman", "Courier New", "Verdana", "Georgia"}

const (
	fontSample    = "FontTest"
	fontSize      = "72px"
	fontTolerance = 1.0
)

type FontsReport struct {
	Found []string `json:"found"`
	Total int      `json:"total"`
}

// Fonts detects installed families by comparing text widths against the
// monospace fallback.
type Fonts struct {
	Families []string
}

func (Fonts) Name() string { return NameFonts }

func (f Fonts) Run(ctx context.Context, env Environment) profile.Result {
	families := f.Families
	if len(families) == 0 {
		families = DefaultFonts
	}

	s, err := env.Canvas(ctx, canvasWidth, canvasHeight)
	if err != nil {
		slog.DebugContext(ctx, "canvas unavailable for fonts", "error", err)
		return profile.Fail(codeNoCanvas)
	}
	defer release(ctx, s)

	base, err := s.MeasureText(ctx, fontSize+" monospace", fontSample)
	if err != nil {
		slog.DebugContext(ctx, "measuring baseline failed", "error", err)
		return profile.Fail(codeNoCanvas)
	}

	found := []string{}
	for _, family := range families {
		w, err := s.MeasureText(ctx, fmt.Sprintf("%s %q, monospace", fontSize, family), fontSample)
		if err != nil {
			slog.DebugContext(ctx, "measuring font failed", "font", family, "error", err)
			continue
		}
		if math.Abs(w-base) > fontTolerance {
			found = append(found, family)
		}
	}

	return profile.OK(FontsReport{Found: found, Total: len(families)})
}
