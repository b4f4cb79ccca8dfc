package probe_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/stupside/beacon/internal/device"
	"github.com/stupside/beacon/internal/probe"
)

// fakeEnv is an Environment where every capability is unsupported unless a
// hook is set.
type fakeEnv struct {
	reads map[string]any

	canvas       func(w, h int) (probe.Surface, error)
	webgl        func(w, h int) (probe.GLSurface, error)
	audio        func() (probe.AudioInfo, error)
	bait         func(spec probe.BaitSpec) (probe.Bait, error)
	geolocation  func(ctx context.Context, opts probe.GeoOptions) (probe.Position, error)
	battery      func() (probe.BatteryStatus, error)
	mediaDevices func() ([]probe.MediaDevice, error)
	voices       func() ([]probe.Voice, error)
	permission   func(name string) (string, error)
	ice          func(ctx context.Context) (<-chan string, error)
	hints        func(keys []string) (device.Hints, error)

	mu          sync.Mutex
	diagnostics map[string]string
}

func (f *fakeEnv) Read(_ context.Context, name string, out any) error {
	v, ok := f.reads[name]
	if !ok {
		return fmt.Errorf("read %s: %w", name, probe.ErrUnsupported)
	}
	if err, ok := v.(error); ok {
		return err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func (f *fakeEnv) Canvas(_ context.Context, w, h int) (probe.Surface, error) {
	if f.canvas == nil {
		return nil, probe.ErrUnsupported
	}
	return f.canvas(w, h)
}

func (f *fakeEnv) WebGL(_ context.Context, w, h int) (probe.GLSurface, error) {
	if f.webgl == nil {
		return nil, probe.ErrUnsupported
	}
	return f.webgl(w, h)
}

func (f *fakeEnv) Audio(context.Context) (probe.AudioInfo, error) {
	if f.audio == nil {
		return probe.AudioInfo{}, probe.ErrUnsupported
	}
	return f.audio()
}

func (f *fakeEnv) InsertBait(_ context.Context, spec probe.BaitSpec) (probe.Bait, error) {
	if f.bait == nil {
		return nil, probe.ErrUnsupported
	}
	return f.bait(spec)
}

func (f *fakeEnv) Geolocation(ctx context.Context, opts probe.GeoOptions) (probe.Position, error) {
	if f.geolocation == nil {
		return probe.Position{}, probe.ErrUnsupported
	}
	return f.geolocation(ctx, opts)
}

func (f *fakeEnv) Battery(context.Context) (probe.BatteryStatus, error) {
	if f.battery == nil {
		return probe.BatteryStatus{}, probe.ErrUnsupported
	}
	return f.battery()
}

func (f *fakeEnv) MediaDevices(context.Context) ([]probe.MediaDevice, error) {
	if f.mediaDevices == nil {
		return nil, probe.ErrUnsupported
	}
	return f.mediaDevices()
}

func (f *fakeEnv) SpeechVoices(context.Context) ([]probe.Voice, error) {
	if f.voices == nil {
		return nil, probe.ErrUnsupported
	}
	return f.voices()
}

func (f *fakeEnv) Permission(_ context.Context, name string) (string, error) {
	if f.permission == nil {
		return "", probe.ErrUnsupported
	}
	return f.permission(name)
}

func (f *fakeEnv) ICECandidates(ctx context.Context) (<-chan string, error) {
	if f.ice == nil {
		return nil, probe.ErrUnsupported
	}
	return f.ice(ctx)
}

func (f *fakeEnv) HighEntropyValues(_ context.Context, keys []string) (device.Hints, error) {
	if f.hints == nil {
		return device.Hints{}, probe.ErrUnsupported
	}
	return f.hints(keys)
}

func (f *fakeEnv) ShowDiagnostic(_ context.Context, id, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.diagnostics == nil {
		f.diagnostics = make(map[string]string)
	}
	f.diagnostics[id] = text
	return nil
}

type fakeSurface struct {
	ops      []probe.Op
	dataURL  string
	widths   map[string]float64
	released bool
}

func (s *fakeSurface) Draw(_ context.Context, ops []probe.Op) error {
	s.ops = append(s.ops, ops...)
	return nil
}

func (s *fakeSurface) DataURL(context.Context) (string, error) {
	return s.dataURL, nil
}

func (s *fakeSurface) MeasureText(_ context.Context, font, _ string) (float64, error) {
	w, ok := s.widths[font]
	if !ok {
		return s.widths["72px monospace"], nil
	}
	return w, nil
}

func (s *fakeSurface) Release(context.Context) error {
	s.released = true
	return nil
}

type fakeGL struct {
	info     probe.GLInfo
	infoErr  error
	pixels   []byte
	scene    probe.Scene
	released bool
}

func (g *fakeGL) Info(context.Context) (probe.GLInfo, error) {
	return g.info, g.infoErr
}

func (g *fakeGL) Render(_ context.Context, scene probe.Scene) ([]byte, error) {
	g.scene = scene
	if g.pixels == nil {
		return nil, fmt.Errorf("render: context lost")
	}
	return g.pixels, nil
}

func (g *fakeGL) Release(context.Context) error {
	g.released = true
	return nil
}

type fakeBait struct {
	height  float64
	removed bool
}

func (b *fakeBait) OffsetHeight(context.Context) (float64, error) {
	return b.height, nil
}

func (b *fakeBait) Remove(context.Context) error {
	b.removed = true
	return nil
}
