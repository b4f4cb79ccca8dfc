package probe

import "time"

// Options configures the probe set.
type Options struct {
	AdblockSettle  time.Duration
	Geolocation    GeoOptions
	LocalIPTimeout time.Duration
	Fonts          []string
	IPInfo         IPInfoSource
	Gateway        GatewayScanner
}

// All returns every probe, one per namespace.
func All(o Options) []Probe {
	probes := []Probe{
		Adblock{Settle: o.AdblockSettle},
		Navigator{},
		Canvas{},
		WebGL{},
		GPU{},
		WebGLFingerprint{},
		Audio{},
		Fonts{Families: o.Fonts},
		Location{IPInfo: o.IPInfo, Geolocation: o.Geolocation},
		MediaDevices{},
		SpeechVoices{},
		Permissions{},
		Battery{},
		LocalIPs{Timeout: o.LocalIPTimeout},
		Gateway{Scanner: o.Gateway},
	}
	for _, name := range Reads {
		probes = append(probes, Read{Namespace: name})
	}
	return probes
}

// Names returns the namespaces of probes in order.
func Names(probes []Probe) []string {
	names := make([]string, len(probes))
	for i, p := range probes {
		names[i] = p.Name()
	}
	return names
}
