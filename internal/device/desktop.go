package device

import (
	"context"
	"regexp"
	"strings"
)

type desktopModel struct {
	name string
	re   *regexp.Regexp
}

type desktopBrand struct {
	name     string
	patterns []*regexp.Regexp
	models   []desktopModel
}

func res(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(`(?i)` + e)
	}
	return out
}

func models(names ...string) []desktopModel {
	out := make([]desktopModel, len(names))
	for i, n := range names {
		out[i] = desktopModel{name: n, re: regexp.MustCompile(`(?i)` + regexp.QuoteMeta(n))}
	}
	return out
}

// desktopBrands is checked in order against the UA and the platform. The first
// brand wins, then its first matching model.
var desktopBrands = []desktopBrand{
	{
		name:     "Apple",
		patterns: res(`macintosh|mac os|darwin`, `\bapple\b`),
		models:   models("MacBook", "iMac", "Mac mini", "Mac Pro", "Mac Studio"),
	},
	{
		name:     "Dell",
		patterns: res(`dell`, `latitude|inspiron|optiplex|precision|xps|alienware`),
		models:   models("Latitude", "Inspiron", "OptiPlex", "Precision", "XPS", "Alienware"),
	},
	{
		name:     "HP",
		patterns: res(`\bhp\b|hewlett.?packard`, `pavilion|elitebook|probook|envy|spectre|omen`),
		models:   models("Pavilion", "EliteBook", "ProBook", "Envy", "Spectre", "Omen"),
	},
	{
		name:     "Lenovo",
		patterns: res(`lenovo`, `thinkpad|ideapad|yoga|legion|thinkcentre`),
		models:   models("ThinkPad", "IdeaPad", "Yoga", "Legion", "ThinkCentre"),
	},
	{
		name:     "Acer",
		patterns: res(`acer`, `aspire|predator|swift|nitro`),
		models:   models("Aspire", "Predator", "Swift", "Nitro"),
	},
	{
		name:     "ASUS",
		patterns: res(`asus`, `zenbook|vivobook|\brog\b|\btuf\b`),
		models: append(models("ZenBook", "VivoBook"),
			desktopModel{name: "ROG", re: regexp.MustCompile(`(?i)\brog\b|republic.of.gamers`)},
			desktopModel{name: "TUF", re: regexp.MustCompile(`(?i)\btuf\b`)},
		),
	},
	{
		name:     "MSI",
		patterns: res(`\bmsi\b`, `gaming|creator|prestige`),
		models:   models("Gaming", "Creator", "Prestige"),
	},
	{
		name:     "Microsoft",
		patterns: res(`surface`),
		models:   models("Surface Pro", "Surface Laptop", "Surface Book", "Surface Studio"),
	},
	{
		name:     "Samsung",
		patterns: res(`samsung`),
		models:   models("Galaxy", "Notebook"),
	},
	{
		name:     "Toshiba",
		patterns: res(`toshiba`),
		models:   models("Satellite", "Tecra"),
	},
	{
		name:     "Sony",
		patterns: res(`sony|vaio`),
		models:   models("VAIO"),
	},
	{
		name:     "Fujitsu",
		patterns: res(`fujitsu`),
		models:   models("LIFEBOOK"),
	},
}

// oemTokens catch OEM markers that older Windows browsers append to the UA.
var oemTokens = []struct {
	brand string
	re    *regexp.Regexp
}{
	{"Dell", regexp.MustCompile(`(trident|edge).*dell`)},
	{"HP", regexp.MustCompile(`(trident|edge).*\bhp`)},
	{"Lenovo", regexp.MustCompile(`(trident|edge).*lenovo`)},
	{"Acer", regexp.MustCompile(`(trident|edge).*acer`)},
	{"ASUS", regexp.MustCompile(`(trident|edge).*asus`)},
	{"MSI", regexp.MustCompile(`(trident|edge).*\bmsi\b`)},
	{"Toshiba", regexp.MustCompile(`(trident|edge).*toshiba`)},
	{"Sony", regexp.MustCompile(`(trident|edge).*(sony|vaio)`)},
	{"Samsung", regexp.MustCompile(`(trident|edge).*samsung`)},
	{"Fujitsu", regexp.MustCompile(`(trident|edge).*fujitsu`)},
}

func desktopModelFor(ua, platform string) (brand, model string) {
	for _, b := range desktopBrands {
		matched := false
		for _, p := range b.patterns {
			if p.MatchString(ua) || p.MatchString(platform) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}

		for _, m := range b.models {
			if m.re.MatchString(ua) || m.re.MatchString(platform) {
				return b.name, m.name
			}
		}
		return b.name, Unknown
	}

	if strings.Contains(ua, "windows") {
		for _, o := range oemTokens {
			if o.re.MatchString(ua) {
				return o.brand, Unknown
			}
		}
	}
	return Unknown, Unknown
}

var formFactor = regexp.MustCompile(`laptop|mobile`)

func desktopType(ua string) string {
	switch {
	case formFactor.MatchString(ua) && !strings.Contains(ua, "phone"):
		return TypeLaptop
	case strings.Contains(ua, "tablet"):
		return TypeTablet
	default:
		return TypeDesktop
	}
}

func desktopFromUserAgent(_ context.Context, s Snapshot) (Classification, bool) {
	ua := strings.ToLower(s.UserAgent)

	brand, model := desktopModelFor(ua, s.Platform)
	os, version, arch := desktopOS(ua, s.Platform)
	if arch == Unknown {
		arch = desktopArch(ua, s.Platform)
	}

	return Classification{
		Brand:        brand,
		Model:        model,
		OS:           os,
		OSVersion:    version,
		DeviceType:   desktopType(ua),
		Architecture: arch,
		Source:       SourceUserAgent,
	}, true
}
