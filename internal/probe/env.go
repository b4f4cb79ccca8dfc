package probe

import (
	"context"
	"errors"
	"time"

	"github.com/stupside/beacon/internal/device"
)

var (
	// ErrUnsupported is returned when the browser lacks the requested API.
	ErrUnsupported = errors.New("api not supported")

	// ErrDenied is returned when the browser refuses access to an API.
	ErrDenied = errors.New("access denied")
)

// Environment is the browser as seen by probes. Implementations return
// ErrUnsupported or ErrDenied (possibly wrapped) so probes can pick the right
// error code.
type Environment interface {
	device.HintsSource

	// Read evaluates a named one-shot read and decodes its JSON result into out.
	Read(ctx context.Context, name string, out any) error

	// Canvas creates a 2D drawing surface.
	Canvas(ctx context.Context, width, height int) (Surface, error)

	// WebGL creates a WebGL surface.
	WebGL(ctx context.Context, width, height int) (GLSurface, error)

	Audio(ctx context.Context) (AudioInfo, error)
	InsertBait(ctx context.Context, spec BaitSpec) (Bait, error)
	Geolocation(ctx context.Context, opts GeoOptions) (Position, error)
	Battery(ctx context.Context) (BatteryStatus, error)
	MediaDevices(ctx context.Context) ([]MediaDevice, error)
	SpeechVoices(ctx context.Context) ([]Voice, error)

	// Permission returns the permission state ("granted", "denied", "prompt").
	Permission(ctx context.Context, name string) (string, error)

	// ICECandidates streams raw ICE candidate lines from a local peer
	// connection. The channel is closed when gathering completes.
	ICECandidates(ctx context.Context) (<-chan string, error)

	// ShowDiagnostic prepends a preformatted element with the given id.
	ShowDiagnostic(ctx context.Context, id, text string) error
}

// Surface is a 2D canvas.
type Surface interface {
	Draw(ctx context.Context, ops []Op) error
	DataURL(ctx context.Context) (string, error)
	MeasureText(ctx context.Context, font, text string) (float64, error)
	Release(ctx context.Context) error
}

// GLSurface is a WebGL canvas.
type GLSurface interface {
	Info(ctx context.Context) (GLInfo, error)

	// Render draws scene and returns the RGBA pixels of the whole surface.
	Render(ctx context.Context, scene Scene) ([]byte, error)
	Release(ctx context.Context) error
}

// Bait is an element inserted into the page to detect content blockers.
type Bait interface {
	OffsetHeight(ctx context.Context) (float64, error)
	Remove(ctx context.Context) error
}

// Op is one 2D context instruction: either a property assignment (Set) or a
// method call (Call).
type Op struct {
	Set   string `json:"set,omitempty"`
	Call  string `json:"call,omitempty"`
	Value any    `json:"value"`
	Args  []any  `json:"args,omitempty"`
}

func set(prop string, v any) Op {
	return Op{Set: prop, Value: v}
}

func call(method string, args ...any) Op {
	return Op{Call: method, Args: args}
}

// Scene is a single-program WebGL draw.
type Scene struct {
	ClearColor     [4]float64 `json:"clearColor"`
	VertexShader   string     `json:"vertexShader"`
	FragmentShader string     `json:"fragmentShader"`
	Attribute      string     `json:"attribute"`
	Vertices       []float64  `json:"vertices"`
}

// GLInfo holds the WebGL parameters. The unmasked values are empty when the
// debug renderer extension is missing.
type GLInfo struct {
	Vendor           string `json:"vendor"`
	Renderer         string `json:"renderer"`
	Version          string `json:"version"`
	MaxTextureSize   int    `json:"maxTex"`
	UnmaskedVendor   string `json:"unmaskedVendor,omitempty"`
	UnmaskedRenderer string `json:"unmaskedRenderer,omitempty"`
}

type AudioInfo struct {
	SampleRate  float64 `json:"rate"`
	MaxChannels int     `json:"maxCh"`
	State       string  `json:"state"`
}

type BaitSpec struct {
	Class  string `json:"className"`
	Height int    `json:"height"`
}

type GeoOptions struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaximumAge   time.Duration
}

type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
}

// BatteryStatus mirrors the battery manager. Infinite times are nil.
type BatteryStatus struct {
	Charging        bool     `json:"charging"`
	Level           float64  `json:"level"`
	ChargingTime    *float64 `json:"chargingTime"`
	DischargingTime *float64 `json:"dischargingTime"`
}

type MediaDevice struct {
	Kind     string `json:"kind"`
	Label    string `json:"label"`
	GroupID  string `json:"groupId"`
	DeviceID string `json:"deviceId"`
}

type Voice struct {
	Name         string `json:"name"`
	Lang         string `json:"lang"`
	LocalService bool   `json:"localService"`
	Default      bool   `json:"default"`
}
