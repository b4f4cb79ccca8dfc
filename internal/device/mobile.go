package device

import (
	"context"
	"regexp"
	"strings"
)

type modelPattern struct {
	re    *regexp.Regexp
	brand string
	model string // fixed model; empty means the upper-cased first capture
}

// mobileModels is tried against the UA, then the platform. First match wins.
var mobileModels = []modelPattern{
	{re: regexp.MustCompile(`(sm-[a-z0-9]+)`), brand: "Samsung"},
	{re: regexp.MustCompile(`iphone`), brand: "Apple", model: "iPhone"},
	{re: regexp.MustCompile(`ipad`), brand: "Apple", model: "iPad"},
	{re: regexp.MustCompile(`ipod`), brand: "Apple", model: "iPod"},
	{re: regexp.MustCompile(`(redmi\s?[a-z0-9]+|mi\s?[a-z0-9]+|poco\s?[a-z0-9]+)`), brand: "Xiaomi"},
	{re: regexp.MustCompile(`(vivo\s?[a-z0-9]+|v[0-9]{4,})`), brand: "Vivo"},
	{re: regexp.MustCompile(`(oppo\s?[a-z0-9]+|cph[0-9]+)`), brand: "Oppo"},
	{re: regexp.MustCompile(`(realme\s?[a-z0-9]+)`), brand: "Realme"},
	{re: regexp.MustCompile(`(oneplus\s?[a-z0-9]+)`), brand: "OnePlus"},
	{re: regexp.MustCompile(`(moto\s?[a-z0-9]+)`), brand: "Motorola"},
	{re: regexp.MustCompile(`(infinix\s?[a-z0-9]+)`), brand: "Infinix"},
	{re: regexp.MustCompile(`(tecno\s?[a-z0-9]+)`), brand: "Tecno"},
	{re: regexp.MustCompile(`(lava\s?[a-z0-9]+)`), brand: "Lava"},
	{re: regexp.MustCompile(`(micromax\s?[a-z0-9]+)`), brand: "Micromax"},
	{re: regexp.MustCompile(`(nokia\s?[a-z0-9]+)`), brand: "Nokia"},
	{re: regexp.MustCompile(`(iqoo\s?[a-z0-9]+)`), brand: "iQOO"},
}

type generation struct {
	token string
	label string
}

var (
	iphoneGenerations = []generation{
		{"iphone; cpu iphone os 17", "iPhone 15 Series"},
		{"iphone; cpu iphone os 16", "iPhone 14 Series"},
		{"iphone; cpu iphone os 15", "iPhone 13 Series"},
		{"iphone; cpu iphone os 14", "iPhone 12 Series"},
	}
	ipadGenerations = []generation{
		{"ipad; cpu os 17", "iPad (2023+)"},
		{"ipad; cpu os 16", "iPad (2022)"},
	}
)

func appleModel(ua, fallback string) string {
	pick := func(gens []generation, base string) string {
		for _, g := range gens {
			if strings.Contains(ua, g.token) {
				return g.label
			}
		}
		return base
	}

	switch {
	case strings.Contains(ua, "iphone"):
		return pick(iphoneGenerations, "iPhone")
	case strings.Contains(ua, "ipad"):
		return pick(ipadGenerations, "iPad")
	case strings.Contains(ua, "ipod"):
		return "iPod Touch"
	}
	return fallback
}

func mobileModel(ua, platform string) (brand, model string) {
	for _, p := range mobileModels {
		m := p.re.FindStringSubmatch(ua)
		if m == nil {
			m = p.re.FindStringSubmatch(platform)
		}
		if m == nil {
			continue
		}

		switch {
		case p.brand == "Apple":
			return p.brand, appleModel(ua, p.model)
		case p.model != "":
			return p.brand, p.model
		default:
			return p.brand, strings.ToUpper(m[1])
		}
	}
	return Unknown, Unknown
}

func mobileFromUserAgent(_ context.Context, s Snapshot) (Classification, bool) {
	ua := strings.ToLower(s.UserAgent)
	platform := strings.ToLower(s.Platform)

	brand, model := mobileModel(ua, platform)
	os, version := mobileOS(ua)

	return Classification{
		Brand:        brand,
		Model:        model,
		OS:           os,
		OSVersion:    version,
		DeviceType:   typeFromUserAgent(ua),
		Architecture: mobileArch(ua, platform),
		Source:       SourceUserAgent,
	}, true
}
