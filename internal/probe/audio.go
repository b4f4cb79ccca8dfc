package probe

import (
	"context"
	"errors"
	"log/slog"

	"github.com/stupside/beacon/internal/profile"
)

const (
	codeNoAudio   = "no_audio"
	codeAudioFail = "audio_fail"
)

// Audio reports the audio context sample rate, channel count and state.
type Audio struct{}

func (Audio) Name() string { return NameAudio }

func (Audio) Run(ctx context.Context, env Environment) profile.Result {
	info, err := env.Audio(ctx)
	switch {
	case errors.Is(err, ErrUnsupported):
		return profile.Fail(codeNoAudio)
	case err != nil:
		slog.DebugContext(ctx, "audio read failed", "error", err)
		return profile.Fail(codeAudioFail)
	}
	return profile.OK(info)
}
