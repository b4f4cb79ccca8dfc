package probe

import (
	"context"
	"log/slog"

	"github.com/stupside/beacon/internal/profile"
)

// MediaDevices lists the media input and output devices.
type MediaDevices struct{}

func (MediaDevices) Name() string { return NameMediaDevices }

func (MediaDevices) Run(ctx context.Context, env Environment) profile.Result {
	devices, err := env.MediaDevices(ctx)
	if err != nil {
		slog.DebugContext(ctx, "enumerating media devices failed", "error", err)
		return profile.Fail(codeFor(err, profile.CodeNotAllowed))
	}
	if devices == nil {
		devices = []MediaDevice{}
	}
	return profile.OK(devices)
}

// SpeechVoices lists the speech synthesis voices.
type SpeechVoices struct{}

func (SpeechVoices) Name() string { return NameSpeechVoices }

func (SpeechVoices) Run(ctx context.Context, env Environment) profile.Result {
	voices, err := env.SpeechVoices(ctx)
	if err != nil {
		slog.DebugContext(ctx, "listing voices failed", "error", err)
		return profile.Fail(codeFor(err, profile.CodeNotAllowed))
	}
	if voices == nil {
		voices = []Voice{}
	}
	return profile.OK(voices)
}

type PermissionsReport struct {
	Geolocation   string `json:"geolocation"`
	Notifications string `json:"notifications"`
}

// Permissions reports the geolocation and notification permission states.
type Permissions struct{}

func (Permissions) Name() string { return NamePermissions }

func (Permissions) Run(ctx context.Context, env Environment) profile.Result {
	var r PermissionsReport
	queries := []struct {
		name string
		dst  *string
	}{
		{"geolocation", &r.Geolocation},
		{"notifications", &r.Notifications},
	}
	for _, q := range queries {
		state, err := env.Permission(ctx, q.name)
		if err != nil {
			slog.DebugContext(ctx, "permission query failed", "permission", q.name, "error", err)
			return profile.Fail(codeFor(err, profile.CodeNotAllowed))
		}
		*q.dst = state
	}
	return profile.OK(r)
}
