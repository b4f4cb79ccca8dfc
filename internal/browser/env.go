package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/stupside/beacon/internal/device"
	"github.com/stupside/beacon/internal/probe"
)

// ICE gathering stops iceMargin before the caller's deadline so the
// candidates can still be drained.
const (
	iceDefaultWait = 2 * time.Second
	iceMargin      = 100 * time.Millisecond
)

var _ probe.Environment = (*Session)(nil)

func (s *Session) Read(ctx context.Context, name string, out any) error {
	return s.call(ctx, readPrefix+name, out)
}

func (s *Session) HighEntropyValues(ctx context.Context, keys []string) (device.Hints, error) {
	var h device.Hints
	err := s.call(ctx, "hints", &h, keys)
	return h, err
}

func (s *Session) Canvas(ctx context.Context, width, height int) (probe.Surface, error) {
	var id int
	if err := s.call(ctx, "canvas_new", &id, width, height); err != nil {
		return nil, err
	}
	return &surface{handle{s, id}}, nil
}

func (s *Session) WebGL(ctx context.Context, width, height int) (probe.GLSurface, error) {
	var id int
	if err := s.call(ctx, "webgl_new", &id, width, height); err != nil {
		return nil, err
	}
	return &glSurface{handle{s, id}}, nil
}

func (s *Session) Audio(ctx context.Context) (probe.AudioInfo, error) {
	var info probe.AudioInfo
	err := s.call(ctx, "audio", &info)
	return info, err
}

func (s *Session) InsertBait(ctx context.Context, spec probe.BaitSpec) (probe.Bait, error) {
	var id int
	if err := s.call(ctx, "bait_insert", &id, spec); err != nil {
		return nil, err
	}
	return &bait{handle{s, id}}, nil
}

func (s *Session) Geolocation(ctx context.Context, opts probe.GeoOptions) (probe.Position, error) {
	var pos probe.Position
	err := s.call(ctx, "geolocation", &pos,
		opts.HighAccuracy, opts.Timeout.Milliseconds(), opts.MaximumAge.Milliseconds())
	return pos, err
}

func (s *Session) Battery(ctx context.Context) (probe.BatteryStatus, error) {
	var b probe.BatteryStatus
	err := s.call(ctx, "battery", &b)
	return b, err
}

func (s *Session) MediaDevices(ctx context.Context) ([]probe.MediaDevice, error) {
	var devices []probe.MediaDevice
	err := s.call(ctx, "media_devices", &devices)
	return devices, err
}

func (s *Session) SpeechVoices(ctx context.Context) ([]probe.Voice, error) {
	var voices []probe.Voice
	err := s.call(ctx, "speech_voices", &voices)
	return voices, err
}

func (s *Session) Permission(ctx context.Context, name string) (string, error) {
	var state string
	err := s.call(ctx, "permission", &state, name)
	return state, err
}

// ICECandidates gathers until ICE completes or shortly before ctx expires,
// then hands back every candidate on a closed channel.
func (s *Session) ICECandidates(ctx context.Context) (<-chan string, error) {
	wait := iceDefaultWait
	if dl, ok := ctx.Deadline(); ok {
		wait = max(time.Until(dl)-iceMargin, 0)
	}

	var found []string
	if err := s.call(ctx, "ice", &found, wait.Milliseconds()); err != nil {
		return nil, err
	}

	out := make(chan string, len(found))
	for _, c := range found {
		out <- c
	}
	close(out)
	return out, nil
}

func (s *Session) ShowDiagnostic(ctx context.Context, id, text string) error {
	return s.call(ctx, "diagnostic", nil, id, text)
}

// handle is a page-side object registered by one of the *_new scripts.
type handle struct {
	s  *Session
	id int
}

func (h handle) Release(ctx context.Context) error {
	if err := h.s.call(ctx, "release", nil, h.id); err != nil {
		return fmt.Errorf("releasing handle %d: %w", h.id, err)
	}
	return nil
}

type surface struct{ handle }

func (c *surface) Draw(ctx context.Context, ops []probe.Op) error {
	return c.s.call(ctx, "canvas_draw", nil, c.id, ops)
}

func (c *surface) DataURL(ctx context.Context) (string, error) {
	var u string
	err := c.s.call(ctx, "canvas_data_url", &u, c.id)
	return u, err
}

func (c *surface) MeasureText(ctx context.Context, font, text string) (float64, error) {
	var w float64
	err := c.s.call(ctx, "canvas_measure", &w, c.id, font, text)
	return w, err
}

type glSurface struct{ handle }

func (g *glSurface) Info(ctx context.Context) (probe.GLInfo, error) {
	var info probe.GLInfo
	err := g.s.call(ctx, "webgl_info", &info, g.id)
	return info, err
}

// Render returns the RGBA pixels. They cross the protocol base64 encoded,
// which is how encoding/json decodes into []byte.
func (g *glSurface) Render(ctx context.Context, scene probe.Scene) ([]byte, error) {
	var px []byte
	err := g.s.call(ctx, "webgl_render", &px, g.id, scene)
	return px, err
}

type bait struct{ handle }

func (b *bait) OffsetHeight(ctx context.Context) (float64, error) {
	var h float64
	err := b.s.call(ctx, "bait_height", &h, b.id)
	return h, err
}

func (b *bait) Remove(ctx context.Context) error {
	return b.Release(ctx)
}
