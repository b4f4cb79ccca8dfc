package browser

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"

	"github.com/stupside/beacon/internal/device"
)

// ErrUnknownPreset is returned by LookupPreset for names not in the catalog.
var ErrUnknownPreset = errors.New("unknown preset")

// Preset is a fixed, internally consistent device identity: UA, navigator
// platform, Client Hints, screen, locale and hardware all describe the same
// virtual device.
type Preset struct {
	Name                string
	UserAgent           string
	Brands              [][2]string // [brand, majorVersion]
	FullVersionList     [][2]string // [brand, fullVersion]
	Platform            string      // Client Hints platform (e.g. "Windows")
	PlatformVersion     string
	Architecture        string
	Bitness             string
	Model               string
	Mobile              bool
	NavigatorPlatform   string // navigator.platform value
	AcceptLanguage      string
	Languages           []string
	HardwareConcurrency int64
	ScreenWidth         int
	ScreenHeight        int
	DeviceScaleFactor   float64
	TimezoneID          string
}

const (
	chromeMajor = "131"
	chromeFull  = "131.0.6778.86"
	greaseBrand = "Not_A Brand"
)

func chromeUA(uaOS, suffix string) string {
	return fmt.Sprintf(
		"Mozilla/5.0 (%s) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/%s.0.0.0 %sSafari/537.36",
		uaOS, chromeMajor, suffix,
	)
}

var chromeBrands = [][2]string{
	{greaseBrand, "24"},
	{"Chromium", chromeMajor},
	{"Google Chrome", chromeMajor},
}

var chromeFullVersions = [][2]string{
	{greaseBrand, "24.0.0.0"},
	{"Chromium", chromeFull},
	{"Google Chrome", chromeFull},
}

var presets = []Preset{
	{
		Name:                "windows-chrome",
		UserAgent:           chromeUA("Windows NT 10.0; Win64; x64", ""),
		Brands:              chromeBrands,
		FullVersionList:     chromeFullVersions,
		Platform:            "Windows",
		PlatformVersion:     "15.0.0",
		Architecture:        "x86",
		Bitness:             "64",
		NavigatorPlatform:   "Win32",
		AcceptLanguage:      "en-US,en;q=0.9",
		Languages:           []string{"en-US", "en"},
		HardwareConcurrency: 8,
		ScreenWidth:         1920,
		ScreenHeight:        1080,
		DeviceScaleFactor:   1,
		TimezoneID:          "America/New_York",
	},
	{
		Name:                "macos-chrome",
		UserAgent:           chromeUA("Macintosh; Intel Mac OS X 10_15_7", ""),
		Brands:              chromeBrands,
		FullVersionList:     chromeFullVersions,
		Platform:            "macOS",
		PlatformVersion:     "14.5.0",
		Architecture:        "arm",
		Bitness:             "64",
		NavigatorPlatform:   "MacIntel",
		AcceptLanguage:      "en-GB,en;q=0.9,en-US;q=0.8",
		Languages:           []string{"en-GB", "en", "en-US"},
		HardwareConcurrency: 8,
		ScreenWidth:         1512,
		ScreenHeight:        982,
		DeviceScaleFactor:   2,
		TimezoneID:          "Europe/London",
	},
	{
		Name:                "android-samsung",
		UserAgent:           chromeUA("Linux; Android 13; SM-G991B", "Mobile "),
		Brands:              chromeBrands,
		FullVersionList:     chromeFullVersions,
		Platform:            "Android",
		PlatformVersion:     "13.0.0",
		Model:               "SM-G991B",
		Mobile:              true,
		NavigatorPlatform:   "Linux armv8l",
		AcceptLanguage:      "en-IN,en;q=0.9",
		Languages:           []string{"en-IN", "en"},
		HardwareConcurrency: 8,
		ScreenWidth:         384,
		ScreenHeight:        854,
		DeviceScaleFactor:   2.8125,
		TimezoneID:          "Asia/Kolkata",
	},
	{
		// Safari sends no Client Hints.
		Name:                "iphone-safari",
		UserAgent:           "Mozilla/5.0 (iPhone; CPU iPhone OS 17_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Mobile/15E148 Safari/604.1",
		Mobile:              true,
		NavigatorPlatform:   "iPhone",
		AcceptLanguage:      "en-US,en;q=0.9",
		Languages:           []string{"en-US", "en"},
		HardwareConcurrency: 6,
		ScreenWidth:         393,
		ScreenHeight:        852,
		DeviceScaleFactor:   3,
		TimezoneID:          "America/Los_Angeles",
	},
}

// Presets lists the catalog sorted by name.
func Presets() []Preset {
	out := slices.Clone(presets)
	slices.SortFunc(out, func(a, b Preset) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// LookupPreset returns the named preset. An empty name means no emulation
// and yields nil.
func LookupPreset(name string) (*Preset, error) {
	if name == "" {
		return nil, nil
	}
	i := slices.IndexFunc(presets, func(p Preset) bool { return p.Name == name })
	if i < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	p := presets[i]
	return &p, nil
}

// HasHints reports whether the preset exposes high-entropy Client Hints.
func (p *Preset) HasHints() bool {
	return len(p.Brands) > 0
}

// Hints returns what the page would read from getHighEntropyValues.
func (p *Preset) Hints() device.Hints {
	list := make([]device.BrandVersion, len(p.FullVersionList))
	for i, b := range p.FullVersionList {
		list[i] = device.BrandVersion{Brand: b[0], Version: b[1]}
	}
	return device.Hints{
		Architecture:    p.Architecture,
		Bitness:         p.Bitness,
		Model:           p.Model,
		Platform:        p.Platform,
		PlatformVersion: p.PlatformVersion,
		Mobile:          p.Mobile,
		FullVersionList: list,
	}
}

// Snapshot returns the classifier inputs the preset presents to a page.
func (p *Preset) Snapshot() device.Snapshot {
	s := device.Snapshot{
		UserAgent:           p.UserAgent,
		Platform:            p.NavigatorPlatform,
		ScreenWidth:         p.ScreenWidth,
		ScreenHeight:        p.ScreenHeight,
		HardwareConcurrency: int(p.HardwareConcurrency),
		TimeZone:            p.TimezoneID,
	}
	if len(p.Languages) > 0 {
		s.Language = p.Languages[0]
	}
	if p.HasHints() {
		s.Hints = presetHints{p}
	}
	return s
}

type presetHints struct{ p *Preset }

func (h presetHints) HighEntropyValues(context.Context, []string) (device.Hints, error) {
	return h.p.Hints(), nil
}

func brandVersions(list [][2]string) []*emulation.UserAgentBrandVersion {
	out := make([]*emulation.UserAgentBrandVersion, len(list))
	for i, b := range list {
		out[i] = &emulation.UserAgentBrandVersion{Brand: b[0], Version: b[1]}
	}
	return out
}

// emulate applies the preset through CDP overrides. It must run before
// navigation.
func emulate(p *Preset) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		if err := emulation.SetAutomationOverride(false).Do(ctx); err != nil {
			return err
		}

		if err := emulation.SetHardwareConcurrencyOverride(p.HardwareConcurrency).Do(ctx); err != nil {
			return err
		}

		if err := emulation.SetTimezoneOverride(p.TimezoneID).Do(ctx); err != nil {
			return err
		}

		if len(p.Languages) > 0 {
			if err := emulation.SetLocaleOverride().WithLocale(p.Languages[0]).Do(ctx); err != nil {
				return err
			}
		}

		w, h := int64(p.ScreenWidth), int64(p.ScreenHeight)
		metrics := emulation.SetDeviceMetricsOverride(w, h, p.DeviceScaleFactor, p.Mobile).
			WithScreenWidth(w).
			WithScreenHeight(h)
		if err := metrics.Do(ctx); err != nil {
			return err
		}

		if p.Mobile {
			if err := emulation.SetTouchEmulationEnabled(true).WithMaxTouchPoints(5).Do(ctx); err != nil {
				return err
			}
		}

		ua := emulation.SetUserAgentOverride(p.UserAgent)
		ua.AcceptLanguage = p.AcceptLanguage
		ua.Platform = p.NavigatorPlatform

		if p.HasHints() {
			ua.UserAgentMetadata = &emulation.UserAgentMetadata{
				Brands:          brandVersions(p.Brands),
				FullVersionList: brandVersions(p.FullVersionList),
				Platform:        p.Platform,
				PlatformVersion: p.PlatformVersion,
				Architecture:    p.Architecture,
				Model:           p.Model,
				Mobile:          p.Mobile,
				Bitness:         p.Bitness,
			}
		}
		return ua.Do(ctx)
	}
}
