package device

import (
	"regexp"
	"strings"
)

var (
	androidVersion = regexp.MustCompile(`android\s([0-9.]+)`)
	iosVersion     = regexp.MustCompile(`(?:iphone os|cpu os) ([0-9_]+)`)
	macVersion     = regexp.MustCompile(`mac os x ([0-9_]+)`)
	windowsVersion = regexp.MustCompile(`windows nt ([0-9.]+)`)
)

// windowsNT maps kernel versions to marketing names. NT 10.0 covers both
// Windows 10 and 11.
var windowsNT = map[string]string{
	"10.0": "10/11",
	"6.3":  "8.1",
	"6.2":  "8",
	"6.1":  "7",
	"6.0":  "Vista",
	"5.1":  "XP",
}

var linuxDistros = []struct {
	name string
	re   *regexp.Regexp
}{
	{"Ubuntu", regexp.MustCompile(`ubuntu`)},
	{"Fedora", regexp.MustCompile(`fedora`)},
	{"Debian", regexp.MustCompile(`debian`)},
	{"CentOS", regexp.MustCompile(`centos`)},
	{"Red Hat", regexp.MustCompile(`red.?hat`)},
	{"openSUSE", regexp.MustCompile(`opensuse`)},
	{"Arch", regexp.MustCompile(`\barch\b`)},
}

func submatch(re *regexp.Regexp, s string) string {
	if m := re.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}

func mobileOS(ua string) (os, version string) {
	switch {
	case strings.Contains(ua, "android"):
		return "Android", orUnknown(submatch(androidVersion, ua))
	case strings.Contains(ua, "iphone os"), strings.Contains(ua, "ios"), strings.Contains(ua, "ipad; cpu os"):
		return "iOS", orUnknown(strings.ReplaceAll(submatch(iosVersion, ua), "_", "."))
	case strings.Contains(ua, "windows"):
		return "Windows", Unknown
	case strings.Contains(ua, "mac os x"):
		return "macOS", Unknown
	case strings.Contains(ua, "linux"):
		return "Linux", Unknown
	}
	return Unknown, Unknown
}

func mobileArch(ua, platform string) string {
	switch {
	case strings.Contains(ua, "arm"), strings.Contains(ua, "aarch64"),
		strings.Contains(platform, "arm"), strings.Contains(platform, "aarch64"):
		return "ARM"
	case strings.Contains(ua, "x86_64"), strings.Contains(ua, "win64"), strings.Contains(platform, "64"):
		return "x86_64"
	case strings.Contains(ua, "x86"), strings.Contains(ua, "i686"):
		return "x86"
	}
	return Unknown
}

// desktopOS also reports the architecture when the OS implies it (macOS).
func desktopOS(ua, platform string) (os, version, arch string) {
	switch {
	case strings.Contains(ua, "windows"):
		nt := submatch(windowsVersion, ua)
		version = Unknown
		if nt != "" {
			version = nt
			if name, ok := windowsNT[nt]; ok {
				version = name
			}
			if nt == "10.0" && strings.Contains(ua, "edg/") {
				version = "11"
			}
		}
		return "Windows", version, Unknown

	case strings.Contains(ua, "mac os x"), strings.Contains(ua, "darwin"):
		version = orUnknown(strings.ReplaceAll(submatch(macVersion, ua), "_", "."))
		arch = "Intel x86_64"
		if strings.Contains(strings.ToLower(platform), "arm") || strings.Contains(ua, "arm64") {
			arch = "Apple Silicon (ARM)"
		}
		return "macOS", version, arch

	case strings.Contains(ua, "linux"):
		for _, d := range linuxDistros {
			if d.re.MatchString(ua) {
				return "Linux", d.name, Unknown
			}
		}
		return "Linux", Unknown, Unknown
	}
	return Unknown, Unknown, Unknown
}

func desktopArch(ua, platform string) string {
	p := strings.ToLower(platform)
	switch {
	case strings.Contains(ua, "x86_64"), strings.Contains(ua, "win64"), strings.Contains(ua, "amd64"):
		return "x86_64"
	case strings.Contains(ua, "arm"), strings.Contains(ua, "aarch64"), strings.Contains(p, "arm"), strings.Contains(p, "aarch64"):
		return "ARM64"
	case strings.Contains(p, "64"):
		return "x86_64"
	case strings.Contains(ua, "x86"), strings.Contains(ua, "i686"), strings.Contains(ua, "i386"):
		return "x86"
	}
	return Unknown
}
