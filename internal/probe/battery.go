package probe

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"regexp"
	"strings"

	"github.com/stupside/beacon/internal/device"
	"github.com/stupside/beacon/internal/profile"
)

const (
	codeIOSNotSupported = "ios_not_supported"

	reasonIOS         = "Battery API is not available on iOS devices for privacy reasons"
	reasonUnsupported = "Battery API not available in this browser"
)

// NameUserAgent is the read returning navigator.userAgent.
const NameUserAgent = "userAgent"

type BatteryReport struct {
	Charging        bool     `json:"charging"`
	Level           float64  `json:"level"`
	Percentage      int      `json:"percentage"`
	ChargingTime    *float64 `json:"chargingTime"`
	DischargingTime *float64 `json:"dischargingTime"`
	Capacity        *string  `json:"capacity"`
}

// Battery reports the battery state with a capacity estimate derived from
// the user agent. iOS never exposes the API, so it is not called there.
type Battery struct{}

func (Battery) Name() string { return NameBattery }

func (Battery) Run(ctx context.Context, env Environment) profile.Result {
	var ua string
	if err := env.Read(ctx, NameUserAgent, &ua); err != nil {
		slog.DebugContext(ctx, "user agent read failed", "error", err)
	}

	if device.IsIOS(ua) {
		return profile.FailWith(codeIOSNotSupported, map[string]any{
			"reason":     reasonIOS,
			"percentage": nil,
			"capacity":   nil,
		})
	}

	st, err := env.Battery(ctx)
	switch {
	case errors.Is(err, ErrUnsupported):
		return profile.FailWith(profile.CodeNotSupported, map[string]any{
			"reason":     reasonUnsupported,
			"percentage": nil,
			"capacity":   nil,
		})
	case err != nil:
		return profile.FailWith(profile.CodeNotAllowed, map[string]any{
			"details":    err.Error(),
			"percentage": nil,
			"capacity":   nil,
		})
	}

	r := BatteryReport{
		Charging:        st.Charging,
		Level:           st.Level,
		Percentage:      int(math.Round(st.Level * 100)),
		ChargingTime:    st.ChargingTime,
		DischargingTime: st.DischargingTime,
	}
	if c := EstimateCapacity(ua); c != "" {
		r.Capacity = &c
	}
	return profile.OK(r)
}

var appleSilicon = regexp.MustCompile(`m1|m2|m3`)

// EstimateCapacity guesses the battery capacity from the user agent. It
// returns "" when the device family is not recognized.
func EstimateCapacity(ua string) string {
	ua = strings.ToLower(ua)
	switch {
	case strings.Contains(ua, "macbook"), strings.Contains(ua, "macintosh"):
		if appleSilicon.MatchString(ua) {
			return "Estimated: 50-100Wh (Apple Silicon)"
		}
		return "Estimated: 50-95Wh (Intel MacBook)"
	case strings.Contains(ua, "windows") && strings.Contains(ua, "mobile"):
		return "Estimated: 30-80Wh (Windows Laptop)"
	case strings.Contains(ua, "iphone"):
		return "Estimated: 10-20Wh (iPhone)"
	case strings.Contains(ua, "ipad"):
		return "Estimated: 25-40Wh (iPad)"
	case strings.Contains(ua, "android"):
		return "Estimated: 10-25Wh (Android)"
	}
	return ""
}
