package device

import (
	"fmt"
	"log/slog"
	"strings"
)

// GenericWindows labels a Windows desktop that no heuristic could place.
const GenericWindows = "Generic Windows PC"

// heuristic returns a device class label, or "" when it has nothing to say.
type heuristic struct {
	name string
	fn   func(Snapshot) string
}

var windowsHeuristics = []heuristic{
	{"webgl", fromRenderer},
	{"screen", fromScreen},
	{"hardware", fromHardware},
	{"timezone", fromTimeZone},
}

// windowsBrand labels a Windows desktop whose brand the UA did not reveal.
// The result is a device class, not a manufacturer.
func windowsBrand(s Snapshot) string {
	return firstLabel(windowsHeuristics, s)
}

func firstLabel(hs []heuristic, s Snapshot) string {
	for _, h := range hs {
		label, err := runHeuristic(h, s)
		if err != nil {
			slog.Debug("device heuristic failed", "heuristic", h.name, "error", err)
			continue
		}
		if label != "" {
			return label
		}
	}
	return GenericWindows
}

func runHeuristic(h heuristic, s Snapshot) (label string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("heuristic %s: %v", h.name, r)
		}
	}()
	return h.fn(s), nil
}

func fromRenderer(s Snapshot) string {
	r := strings.ToLower(s.WebGLRenderer)
	switch {
	case r == "":
		return ""
	case strings.Contains(r, "intel"):
		if strings.Contains(r, "uhd") || strings.Contains(r, "iris") {
			return "Intel-based Laptop"
		}
		return "Intel Graphics Device"
	case strings.Contains(r, "nvidia"):
		if strings.Contains(r, "rtx") || strings.Contains(r, "gtx") {
			return "Gaming/Workstation PC"
		}
		return "NVIDIA Graphics Device"
	case strings.Contains(r, "amd"), strings.Contains(r, "radeon"):
		return "AMD Graphics Device"
	}
	return ""
}

func fromScreen(s Snapshot) string {
	w, h := s.ScreenWidth, s.ScreenHeight
	switch {
	case w <= 0 || h <= 0:
		return ""
	case w == 1366 && h == 768:
		return "Generic Laptop"
	case w == 1920 && h == 1080:
		if s.HardwareConcurrency >= 8 {
			return "Gaming/Workstation"
		}
		return "Business Laptop"
	case w >= 2560:
		return "Premium Device"
	case float64(w)/float64(h) > 2:
		return "Ultrawide Display Device"
	}
	return ""
}

func fromHardware(s Snapshot) string {
	switch c := s.HardwareConcurrency; {
	case c <= 0:
		return ""
	case c >= 16:
		return "High-End Workstation"
	case c >= 8:
		return "Gaming/Performance PC"
	case c >= 4:
		return "Standard Desktop/Laptop"
	default:
		return "Budget/Entry-Level Device"
	}
}

func fromTimeZone(s Snapshot) string {
	switch tz := s.TimeZone; {
	case tz == "":
		return ""
	case strings.Contains(tz, "America"):
		return "North American PC"
	case strings.Contains(tz, "Asia"):
		return "Asian Market PC"
	case strings.Contains(tz, "Europe"):
		return "European PC"
	default:
		return "Regional PC"
	}
}
