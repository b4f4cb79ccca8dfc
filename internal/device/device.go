// Package device resolves brand, model, OS and architecture from the noisy
// signals a browser exposes. Resolution is a cascade of ordered strategies:
// User-Agent Client Hints first, then User-Agent pattern tables, then (for
// Windows desktops) hardware and locale heuristics. Every field falls back to
// Unknown on its own.
package device

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

// Unknown is the sentinel for any unresolved field.
const Unknown = "Unknown"

// Device types.
const (
	TypeMobile  = "Mobile"
	TypeTablet  = "Tablet"
	TypeDesktop = "Desktop"
	TypeLaptop  = "Laptop"
)

// Sources name the tier that settled a classification.
const (
	SourceClientHints = "client-hints"
	SourceUserAgent   = "user-agent"
	SourceHeuristic   = "heuristic"
)

// Classification is the resolved device identity.
type Classification struct {
	Brand        string `json:"brand"`
	Model        string `json:"model"`
	OS           string `json:"os"`
	OSVersion    string `json:"osVersion"`
	DeviceType   string `json:"deviceType"`
	Architecture string `json:"architecture"`

	Mobile bool   `json:"-"`
	Source string `json:"-"`
}

// Unclassified is the result when nothing about the device could be read.
func Unclassified() Classification {
	return Classification{
		Brand:        Unknown,
		Model:        Unknown,
		OS:           Unknown,
		OSVersion:    Unknown,
		DeviceType:   Unknown,
		Architecture: Unknown,
	}
}

// BrandVersion is one entry of a UA-CH brand list.
type BrandVersion struct {
	Brand   string `json:"brand"`
	Version string `json:"version"`
}

// Hints holds the high-entropy User-Agent Client Hints.
type Hints struct {
	Architecture    string         `json:"architecture"`
	Bitness         string         `json:"bitness"`
	Model           string         `json:"model"`
	Platform        string         `json:"platform"`
	PlatformVersion string         `json:"platformVersion"`
	WOW64           bool           `json:"wow64"`
	Mobile          bool           `json:"mobile"`
	FullVersionList []BrandVersion `json:"fullVersionList"`
}

// HintsSource requests high-entropy client hints.
type HintsSource interface {
	HighEntropyValues(ctx context.Context, keys []string) (Hints, error)
}

// Snapshot is everything the classifier looks at. Zero values mean the signal
// was not available.
type Snapshot struct {
	UserAgent string `json:"userAgent"`
	Platform  string `json:"platform"`

	// Hints is nil when the high-entropy hints API is absent.
	Hints HintsSource `json:"-"`

	WebGLRenderer       string  `json:"webglRenderer"`
	ScreenWidth         int     `json:"screenWidth"`
	ScreenHeight        int     `json:"screenHeight"`
	HardwareConcurrency int     `json:"hardwareConcurrency"`
	DeviceMemory        float64 `json:"deviceMemory"`
	TimeZone            string  `json:"timeZone"`
	Language            string  `json:"language"`
}

var mobilePattern = regexp.MustCompile(`(?i)mobile|android|iphone|ipad|ipod`)

var iosPattern = regexp.MustCompile(`(?i)iphone|ipad|ipod`)

// IsMobile reports whether ua selects the mobile classification path.
func IsMobile(ua string) bool {
	return mobilePattern.MatchString(ua)
}

// IsIOS reports whether ua belongs to an iPhone, iPad or iPod.
func IsIOS(ua string) bool {
	return iosPattern.MatchString(ua)
}

// strategy is one tier of the cascade. It reports false when it could not
// settle the classification and the next tier should run.
type strategy func(ctx context.Context, s Snapshot) (Classification, bool)

var (
	mobileTiers  = []strategy{mobileFromHints, mobileFromUserAgent}
	desktopTiers = []strategy{desktopFromHints, desktopFromUserAgent}
)

// Classify resolves s. It never fails: the worst outcome is a Classification
// full of Unknown. Given the same snapshot it always returns the same result.
func Classify(ctx context.Context, s Snapshot) Classification {
	mobile := IsMobile(s.UserAgent)

	tiers := desktopTiers
	if mobile {
		tiers = mobileTiers
	}

	c := Unclassified()
	for _, tier := range tiers {
		if got, ok := tier(ctx, s); ok {
			c = got
			break
		}
	}
	c.Mobile = mobile

	if !mobile && c.Brand == Unknown && c.OS == "Windows" {
		c.Brand = windowsBrand(s)
		c.Source = SourceHeuristic
	}

	slog.DebugContext(ctx, "device classified",
		"brand", c.Brand,
		"model", c.Model,
		"os", c.OS,
		"os_version", c.OSVersion,
		"type", c.DeviceType,
		"arch", c.Architecture,
		"source", c.Source,
	)
	return c
}

func orUnknown(s string) string {
	if s == "" {
		return Unknown
	}
	return s
}

func typeFromUserAgent(lowerUA string) string {
	switch {
	case strings.Contains(lowerUA, "mobile"):
		return TypeMobile
	case strings.Contains(lowerUA, "tablet"):
		return TypeTablet
	default:
		return TypeDesktop
	}
}
