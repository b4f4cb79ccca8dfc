// Package probe holds the independent measurements that make up a profile.
// Each probe owns one namespace of the profile and turns every failure into
// an error marker instead of returning it.
package probe

import (
	"context"
	"errors"

	"github.com/stupside/beacon/internal/profile"
)

// Probe is one measurement.
type Probe interface {
	// Name is the profile namespace the probe writes.
	Name() string
	Run(ctx context.Context, env Environment) profile.Result
}

// Namespaces.
const (
	NameAdblock            = "adblock"
	NameNavigator          = "navigator"
	NameHardware           = "hardware"
	NameDisplay            = "display"
	NameTimeZone           = "tz"
	NameCanvas             = "canvas"
	NameWebGL              = "webgl"
	NameGPU                = "gpu"
	NameWebGLFingerprint   = "webgl_fingerprint"
	NameAudio              = "audio"
	NameFonts              = "fonts"
	NameFeatures           = "features"
	NameNetwork            = "network"
	NameStorage            = "storage"
	NameLocalStorageData   = "localStorageData"
	NameSessionStorageData = "sessionStorageData"
	NameSession            = "session"
	NameCSS                = "css"
	NameLocation           = "loc"
	NameMediaDevices       = "mediaDevices"
	NameSpeechVoices       = "speechVoices"
	NameClipboard          = "clipboard"
	NamePermissions        = "permissions"
	NameBattery            = "battery"
	NameInteraction        = "interaction"
	NameLocalIPs           = "localIPs"
	NameGateway            = "gateway"
)

// codeFailed is the generic code for errors with no better classification.
const codeFailed = "fail"

// codeFor maps an environment error to an error code.
func codeFor(err error, fallback string) string {
	switch {
	case errors.Is(err, ErrUnsupported):
		return profile.CodeNotSupported
	case errors.Is(err, ErrDenied):
		return profile.CodeNotAllowed
	default:
		return fallback
	}
}
