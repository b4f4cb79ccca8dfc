package collect_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stupside/beacon/internal/app"
	"github.com/stupside/beacon/internal/collect"
	"github.com/stupside/beacon/internal/device"
	"github.com/stupside/beacon/internal/identity"
	"github.com/stupside/beacon/internal/probe"
	"github.com/stupside/beacon/internal/profile"
)

const (
	windowsUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	samsungUA = "Mozilla/5.0 (Linux; Android 13; SM-G991B) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Mobile Safari/537.36"
)

// fakeEnv serves the reads the collector itself needs. Anything a test probe
// does not override panics through the nil embedded interface.
type fakeEnv struct {
	probe.Environment

	reads map[string]any
	geo   error

	// panicOn names a read that panics instead of answering.
	panicOn    string
	hintsPanic bool

	mu          sync.Mutex
	diagnostics []string
}

func (e *fakeEnv) Read(_ context.Context, name string, out any) error {
	if name == e.panicOn {
		panic("bridge torn down during " + name)
	}
	v, ok := e.reads[name]
	if !ok {
		return probe.ErrUnsupported
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func (e *fakeEnv) WebGL(context.Context, int, int) (probe.GLSurface, error) {
	return nil, probe.ErrUnsupported
}

func (e *fakeEnv) HighEntropyValues(context.Context, []string) (device.Hints, error) {
	if e.hintsPanic {
		panic("userAgentData vanished")
	}
	return device.Hints{}, probe.ErrUnsupported
}

func (e *fakeEnv) Geolocation(context.Context, probe.GeoOptions) (probe.Position, error) {
	if e.geo != nil {
		return probe.Position{}, e.geo
	}
	return probe.Position{Latitude: 48.85, Longitude: 2.35, Accuracy: 20}, nil
}

func (e *fakeEnv) ShowDiagnostic(_ context.Context, id, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.diagnostics = append(e.diagnostics, id+"|"+text)
	return nil
}

func newEnv(ua string) *fakeEnv {
	return &fakeEnv{reads: map[string]any{
		collect.ReadSignals: map[string]any{
			"ua":                  ua,
			"platform":            "Win32",
			"screenWidth":         1366,
			"screenHeight":        768,
			"hardwareConcurrency": 4,
			"timeZone":            "Europe/Paris",
		},
		probe.NameLocation: map[string]any{"tz": "Europe/Paris", "offset": -120},
	}}
}

type probeFunc struct {
	name string
	run  func(ctx context.Context) profile.Result
}

func (p probeFunc) Name() string { return p.name }

func (p probeFunc) Run(ctx context.Context, _ probe.Environment) profile.Result { return p.run(ctx) }

func static(name string, v any) probe.Probe {
	return probeFunc{name: name, run: func(context.Context) profile.Result { return profile.OK(v) }}
}

type recordingTransport struct {
	mu     sync.Mutex
	bodies []json.RawMessage
	err    error
}

func (t *recordingTransport) Submit(_ context.Context, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bodies = append(t.bodies, b)
	return t.err
}

func (t *recordingTransport) submitted() []json.RawMessage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]json.RawMessage(nil), t.bodies...)
}

type failingResolver struct{}

func (failingResolver) Resolve(context.Context) (identity.Visitor, error) {
	return identity.Visitor{}, errors.New("cookie jar unavailable")
}

type panickingResolver struct{}

func (panickingResolver) Resolve(context.Context) (identity.Visitor, error) {
	panic("cookie store closed")
}

func config() app.CollectConfig {
	return app.CollectConfig{ProbeTimeout: time.Second}
}

func decode(t *testing.T, p *profile.Profile) map[string]any {
	t.Helper()
	b, err := json.Marshal(p)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	return m
}

func TestRun_WritesEveryNamespace(t *testing.T) {
	t.Parallel()

	probes := []probe.Probe{static("a", 1), static("b", "two"), static("c", true)}
	tr := &recordingTransport{}
	c := collect.New(config(), newEnv(windowsUA), probes, identity.NewResolver(identity.NewMemoryStore()), tr)

	p := c.Run(t.Context())
	require.NoError(t, c.Wait(t.Context()))

	assert.Empty(t, p.Missing([]string{"a", "b", "c"}))
	assert.Empty(t, p.Missing([]string{
		profile.KeyVisitorID, profile.KeyVisitCount,
		profile.KeyDeviceBrand, profile.KeyDeviceModel, profile.KeyOS, profile.KeyOSVersion,
		profile.KeyDeviceType, profile.KeyArchitecture,
		profile.KeyCollectedAt, profile.KeyCollectDuration, profile.KeySessionKey,
	}))

	m := decode(t, p)
	assert.Equal(t, "Generic Laptop", m[profile.KeyDeviceBrand])
	assert.Equal(t, "Windows", m[profile.KeyOS])
	assert.Equal(t, "x86_64", m[profile.KeyArchitecture])
	assert.EqualValues(t, 1, m[profile.KeyVisitCount])
	assert.Regexp(t, `^sess_`, m[profile.KeySessionKey])

	require.Len(t, tr.submitted(), 1)
	assert.JSONEq(t, string(mustJSON(t, p)), string(tr.submitted()[0]))
}

func TestRun_IsolatesFaultyProbes(t *testing.T) {
	t.Parallel()

	cfg := config()
	cfg.ProbeTimeout = 50 * time.Millisecond

	probes := []probe.Probe{
		static("ok", "fine"),
		probeFunc{name: "boom", run: func(context.Context) profile.Result { panic("broken probe") }},
		probeFunc{name: "stuck", run: func(context.Context) profile.Result {
			time.Sleep(time.Second)
			return profile.OK("late")
		}},
		probeFunc{name: "denied", run: func(context.Context) profile.Result { return profile.Fail(profile.CodeNotAllowed) }},
	}
	c := collect.New(cfg, newEnv(windowsUA), probes, identity.NewResolver(identity.NewMemoryStore()), nil)

	m := decode(t, c.Run(t.Context()))

	assert.Equal(t, "fine", m["ok"])
	assert.Equal(t, map[string]any{"error": profile.CodePanic}, m["boom"])
	assert.Equal(t, map[string]any{"error": profile.CodeTimeout}, m["stuck"])
	assert.Equal(t, map[string]any{"error": profile.CodeNotAllowed}, m["denied"])
}

func TestRun_RespectsConcurrencyLimit(t *testing.T) {
	t.Parallel()

	var running, peak atomic.Int32
	slow := func(name string) probe.Probe {
		return probeFunc{name: name, run: func(context.Context) profile.Result {
			n := running.Add(1)
			defer running.Add(-1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			return profile.OK(nil)
		}}
	}

	cfg := config()
	cfg.MaxConcurrency = 2
	c := collect.New(cfg, newEnv(windowsUA), []probe.Probe{slow("a"), slow("b"), slow("c"), slow("d")},
		identity.NewResolver(identity.NewMemoryStore()), nil)

	p := c.Run(t.Context())

	assert.Empty(t, p.Missing([]string{"a", "b", "c", "d"}))
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRun_RepeatedRunsDifferOnlyInVolatileKeys(t *testing.T) {
	t.Parallel()

	probes := []probe.Probe{static("a", map[string]any{"x": 1}), static("b", []string{"y"})}
	c := collect.New(config(), newEnv(windowsUA), probes, identity.NewResolver(identity.NewMemoryStore()), nil)

	first := decode(t, c.Run(t.Context()))
	second := decode(t, c.Run(t.Context()))

	assert.EqualValues(t, 1, first[profile.KeyVisitCount])
	assert.EqualValues(t, 2, second[profile.KeyVisitCount])
	assert.Equal(t, first[profile.KeyVisitorID], second[profile.KeyVisitorID])

	for _, m := range []map[string]any{first, second} {
		delete(m, profile.KeyVisitCount)
		delete(m, profile.KeyCollectedAt)
		delete(m, profile.KeyCollectDuration)
		delete(m, profile.KeySessionKey)
	}
	assert.Equal(t, first, second)
}

func TestRun_GeolocationDeniedStillSubmits(t *testing.T) {
	t.Parallel()

	env := newEnv(windowsUA)
	env.geo = probe.ErrDenied
	tr := &recordingTransport{}
	c := collect.New(config(), env, []probe.Probe{probe.Location{}},
		identity.NewResolver(identity.NewMemoryStore()), tr)

	m := decode(t, c.Run(t.Context()))
	require.NoError(t, c.Wait(t.Context()))

	assert.Equal(t, map[string]any{"tz": "Europe/Paris", "offset": float64(-120)}, m[probe.NameLocation])
	require.Len(t, tr.submitted(), 1)
	assert.Contains(t, string(tr.submitted()[0]), `"loc":{"tz":"Europe/Paris","offset":-120}`)
}

func TestRun_SubmitFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	tr := &recordingTransport{err: errors.New("503 service unavailable")}
	c := collect.New(config(), newEnv(windowsUA), []probe.Probe{static("a", 1)},
		identity.NewResolver(identity.NewMemoryStore()), tr)

	p := c.Run(t.Context())

	require.NoError(t, c.Wait(t.Context()))
	assert.True(t, p.Has("a"))
	assert.Len(t, tr.submitted(), 1)
}

func TestRun_IdentityFailureFallsBackToFreshVisitor(t *testing.T) {
	t.Parallel()

	now := time.UnixMilli(1_700_000_000_000)
	c := collect.New(config(), newEnv(windowsUA), nil, failingResolver{}, nil,
		collect.WithClock(func() time.Time { return now }))

	m := decode(t, c.Run(t.Context()))

	assert.Regexp(t, `^v_[0-9a-f]{12}_[0-9a-z]+$`, m[profile.KeyVisitorID])
	assert.EqualValues(t, 1, m[profile.KeyVisitCount])
	assert.EqualValues(t, now.UnixMilli(), m[profile.KeyCollectedAt])
	assert.EqualValues(t, 0, m[profile.KeyCollectDuration])
}

func TestRun_StepPanicsStillCompleteThePass(t *testing.T) {
	t.Parallel()

	withHints := func() *fakeEnv {
		env := newEnv(windowsUA)
		env.reads[collect.ReadSignals].(map[string]any)["hasHints"] = true
		env.hintsPanic = true
		return env
	}
	brokenSignals := func() *fakeEnv {
		env := newEnv(windowsUA)
		env.panicOn = collect.ReadSignals
		return env
	}

	tests := []struct {
		name      string
		env       *fakeEnv
		resolver  collect.Resolver
		wantBrand string
		wantOS    string
		wantArch  string
	}{
		{
			name:      "identity resolver panics",
			env:       newEnv(windowsUA),
			resolver:  panickingResolver{},
			wantBrand: "Generic Laptop",
			wantOS:    "Windows",
			wantArch:  "x86_64",
		},
		{
			name:      "client hints panic",
			env:       withHints(),
			resolver:  identity.NewResolver(identity.NewMemoryStore()),
			wantBrand: "Generic Laptop",
			wantOS:    "Windows",
			wantArch:  "x86_64",
		},
		{
			name:      "device signals panic",
			env:       brokenSignals(),
			resolver:  identity.NewResolver(identity.NewMemoryStore()),
			wantBrand: device.Unknown,
			wantOS:    device.Unknown,
			wantArch:  device.Unknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tr := &recordingTransport{}
			c := collect.New(config(), tt.env, []probe.Probe{static("a", 1)}, tt.resolver, tr)

			p := c.Run(t.Context())
			require.NoError(t, c.Wait(t.Context()))

			assert.Empty(t, p.Missing([]string{
				"a",
				profile.KeyVisitorID, profile.KeyVisitCount,
				profile.KeyDeviceBrand, profile.KeyDeviceModel, profile.KeyOS, profile.KeyOSVersion,
				profile.KeyDeviceType, profile.KeyArchitecture,
				profile.KeyCollectedAt, profile.KeyCollectDuration, profile.KeySessionKey,
			}))

			m := decode(t, p)
			assert.EqualValues(t, 1, m["a"])
			assert.Regexp(t, `^v_`, m[profile.KeyVisitorID])
			assert.EqualValues(t, 1, m[profile.KeyVisitCount])
			assert.Equal(t, tt.wantBrand, m[profile.KeyDeviceBrand])
			assert.Equal(t, tt.wantOS, m[profile.KeyOS])
			assert.Equal(t, tt.wantArch, m[profile.KeyArchitecture])

			require.Len(t, tr.submitted(), 1)
			assert.JSONEq(t, string(mustJSON(t, p)), string(tr.submitted()[0]))
		})
	}
}

func TestRun_ShowsMobileDiagnostics(t *testing.T) {
	t.Parallel()

	cfg := config()
	cfg.ShowDiagnostics = true

	env := newEnv(samsungUA)
	c := collect.New(cfg, env, nil, identity.NewResolver(identity.NewMemoryStore()), nil)

	m := decode(t, c.Run(t.Context()))

	assert.Equal(t, "Samsung", m[profile.KeyDeviceBrand])
	assert.Equal(t, "SM-G991B", m[profile.KeyDeviceModel])
	require.Len(t, env.diagnostics, 1)
	assert.Contains(t, env.diagnostics[0], device.DiagnosticsID+"|UserAgent: "+samsungUA)
}

func TestRun_DesktopSkipsDiagnostics(t *testing.T) {
	t.Parallel()

	cfg := config()
	cfg.ShowDiagnostics = true

	env := newEnv(windowsUA)
	collect.New(cfg, env, nil, identity.NewResolver(identity.NewMemoryStore()), nil).Run(t.Context())

	assert.Empty(t, env.diagnostics)
}

func TestWait_HonorsContext(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	defer close(release)

	blocking := submitFunc(func(context.Context, any) error {
		<-release
		return nil
	})
	c := collect.New(config(), newEnv(windowsUA), nil, identity.NewResolver(identity.NewMemoryStore()), blocking)
	c.Run(t.Context())

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, c.Wait(ctx), context.DeadlineExceeded)
}

type submitFunc func(ctx context.Context, v any) error

func (f submitFunc) Submit(ctx context.Context, v any) error { return f(ctx, v) }

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}
