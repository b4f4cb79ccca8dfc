package device

import (
	"context"
	"log/slog"
	"strings"
)

var (
	mobileHintKeys  = []string{"architecture", "model", "platform", "platformVersion", "fullVersionList"}
	desktopHintKeys = []string{"architecture", "bitness", "model", "platform", "platformVersion", "fullVersionList", "wow64"}
)

// hintBrands maps a lower-cased hint model to a brand. Order matters: the
// first brand with an identifier contained in the model wins. Vivo matches on
// its series prefixes (v1..v5) rather than a bare "v", which would claim
// nearly every model string, Lava and Galaxy names included.
var hintBrands = []struct {
	brand string
	ids   []string
}{
	{"Samsung", []string{"sm-", "samsung"}},
	{"Apple", []string{"iphone"}},
	{"Xiaomi", []string{"mi", "redmi", "poco"}},
	{"Vivo", []string{"vivo", "v1", "v2", "v3", "v4", "v5"}},
	{"Oppo", []string{"oppo", "cph", "pclm", "pbem"}},
	{"Realme", []string{"realme"}},
	{"OnePlus", []string{"oneplus"}},
	{"Motorola", []string{"moto"}},
	{"Infinix", []string{"infinix"}},
	{"Tecno", []string{"tecno"}},
	{"Lava", []string{"lava"}},
	{"Micromax", []string{"micromax"}},
	{"Nokia", []string{"nokia"}},
	{"iQOO", []string{"iqoo"}},
}

func brandFromHintModel(model string) string {
	m := strings.ToLower(model)
	if m == "" {
		return Unknown
	}
	for _, b := range hintBrands {
		for _, id := range b.ids {
			if strings.Contains(m, id) {
				return b.brand
			}
		}
	}
	return Unknown
}

func requestHints(ctx context.Context, s Snapshot, keys []string) (h Hints, ok bool) {
	if s.Hints == nil {
		return Hints{}, false
	}
	defer func() {
		if v := recover(); v != nil {
			slog.DebugContext(ctx, "client hints call panicked, falling back to user agent", "panic", v)
			h, ok = Hints{}, false
		}
	}()
	h, err := s.Hints.HighEntropyValues(ctx, keys)
	if err != nil {
		slog.DebugContext(ctx, "client hints unavailable, falling back to user agent", "error", err)
		return Hints{}, false
	}
	return h, true
}

func mobileFromHints(ctx context.Context, s Snapshot) (Classification, bool) {
	h, ok := requestHints(ctx, s, mobileHintKeys)
	if !ok {
		return Classification{}, false
	}

	return Classification{
		Brand:        brandFromHintModel(h.Model),
		Model:        orUnknown(h.Model),
		OS:           orUnknown(h.Platform),
		OSVersion:    orUnknown(h.PlatformVersion),
		DeviceType:   typeFromUserAgent(strings.ToLower(s.UserAgent)),
		Architecture: orUnknown(h.Architecture),
		Source:       SourceClientHints,
	}, true
}

func desktopFromHints(ctx context.Context, s Snapshot) (Classification, bool) {
	h, ok := requestHints(ctx, s, desktopHintKeys)
	if !ok {
		return Classification{}, false
	}

	arch := h.Architecture
	if arch == "" {
		arch = h.Bitness
	}

	return Classification{
		Brand:        Unknown,
		Model:        Unknown,
		OS:           orUnknown(h.Platform),
		OSVersion:    orUnknown(h.PlatformVersion),
		DeviceType:   TypeDesktop,
		Architecture: orUnknown(arch),
		Source:       SourceClientHints,
	}, true
}
