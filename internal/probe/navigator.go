package probe

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/stupside/beacon/internal/device"
	"github.com/stupside/beacon/internal/profile"
)

type NavigatorReport struct {
	UserAgent      string   `json:"ua"`
	Platform       string   `json:"plat"`
	Language       string   `json:"lang"`
	Languages      []string `json:"langs"`
	Cookies        bool     `json:"cookies"`
	Online         bool     `json:"online"`
	DoNotTrack     *string  `json:"dnt"`
	Java           bool     `json:"java"`
	BrowserName    string   `json:"browserName"`
	BrowserVersion string   `json:"browserVersion"`
}

type navigatorRead struct {
	NavigatorReport
	Brands []device.BrandVersion `json:"brands"`
}

// Navigator reports the navigator fields and the detected browser.
type Navigator struct{}

func (Navigator) Name() string { return NameNavigator }

func (Navigator) Run(ctx context.Context, env Environment) profile.Result {
	var raw navigatorRead
	if err := env.Read(ctx, NameNavigator, &raw); err != nil {
		slog.DebugContext(ctx, "navigator read failed", "error", err)
		return profile.Fail(codeFor(err, codeFailed))
	}

	r := raw.NavigatorReport
	if r.Languages == nil {
		r.Languages = []string{}
	}
	r.BrowserName, r.BrowserVersion = DetectBrowser(r.UserAgent, raw.Brands)
	return profile.OK(r)
}

type browserRule struct {
	name    string
	match   func(ua string) bool
	version *regexp.Regexp
	group   int
}

func matches(expr string) func(string) bool {
	re := regexp.MustCompile(`(?i)` + expr)
	return re.MatchString
}

func version(expr string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + expr + `/([0-9.]+)`)
}

var (
	isChromium = matches(`chrome|crios|crmo`)
	isEdge     = matches(`edg`)
	isSafari   = matches(`safari`)
	isWebKitUA = matches(`mobile/[0-9a-z]+$`)
)

// iOS browsers all run WebKit and differ only by their UA token.
var iosBrowsers = []browserRule{
	{name: "Chrome iOS", match: matches(`crios`), version: version(`crios`), group: 1},
	{name: "Firefox iOS", match: matches(`fxios`), version: version(`fxios`), group: 1},
	{name: "Edge iOS", match: matches(`edgios`), version: version(`edgios`), group: 1},
	{name: "Opera iOS", match: matches(`opios`), version: version(`opios`), group: 1},
	{
		name:    "Safari iOS",
		match:   func(ua string) bool { return isSafari(ua) || isWebKitUA(ua) },
		version: version(`version`),
		group:   1,
	},
}

var otherBrowsers = []browserRule{
	{
		name:    "Chrome",
		match:   func(ua string) bool { return isChromium(ua) && !isEdge(ua) },
		version: version(`chrome`),
		group:   1,
	},
	{name: "Firefox", match: matches(`firefox|fxios`), version: version(`firefox`), group: 1},
	{
		name:    "Safari",
		match:   func(ua string) bool { return isSafari(ua) && !isChromium(ua) && !isEdge(ua) },
		version: version(`version`),
		group:   1,
	},
	{name: "Edge", match: isEdge, version: version(`edg`), group: 1},
	{name: "Opera", match: matches(`opera|opr`), version: regexp.MustCompile(`(?i)(opera|opr)/([0-9.]+)`), group: 2},
}

var greaseBrand = regexp.MustCompile(`(?i)^not.a.brand$`)

// DetectBrowser names the browser from the user agent. A non-GREASE UA-CH
// brand, when present, takes precedence.
func DetectBrowser(ua string, brands []device.BrandVersion) (name, ver string) {
	name, ver = device.Unknown, device.Unknown

	rules := otherBrowsers
	if device.IsIOS(ua) {
		rules = iosBrowsers
	}
	for _, r := range rules {
		if !r.match(ua) {
			continue
		}
		name = r.name
		if m := r.version.FindStringSubmatch(ua); m != nil {
			ver = m[r.group]
		}
		break
	}

	for _, b := range brands {
		if greaseBrand.MatchString(b.Brand) {
			continue
		}
		return b.Brand, b.Version
	}
	return name, ver
}
