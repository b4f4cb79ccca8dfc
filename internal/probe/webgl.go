package probe

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/stupside/beacon/internal/hash"
	"github.com/stupside/beacon/internal/profile"
)

const (
	codeNoWebGL   = "no_webgl"
	codeWebGLFail = "webgl_fail"

	fingerprintSize = 32
)

var fingerprintScene = Scene{
	ClearColor:     [4]float64{0.5, 0.8, 0.1, 1.0},
	VertexShader:   "attribute vec2 pos; void main() { gl_Position = vec4(pos, 0, 1); }",
	FragmentShader: "void main() { gl_FragColor = vec4(0.2, 0.6, 0.9, 1.0); }",
	Attribute:      "pos",
	Vertices:       []float64{0, 1, -1, -1, 1, -1},
}

func readGL(ctx context.Context, env Environment) (GLInfo, string) {
	s, err := env.WebGL(ctx, canvasWidth, canvasHeight)
	if err != nil {
		slog.DebugContext(ctx, "webgl unavailable", "error", err)
		return GLInfo{}, glCode(err, codeWebGLFail)
	}
	defer release(ctx, s)

	info, err := s.Info(ctx)
	if err != nil {
		slog.DebugContext(ctx, "webgl read failed", "error", err)
		return GLInfo{}, codeWebGLFail
	}
	return info, ""
}

func glCode(err error, fallback string) string {
	if errors.Is(err, ErrUnsupported) {
		return codeNoWebGL
	}
	return fallback
}

// WebGL reports the WebGL context parameters.
type WebGL struct{}

func (WebGL) Name() string { return NameWebGL }

func (WebGL) Run(ctx context.Context, env Environment) profile.Result {
	info, code := readGL(ctx, env)
	if code != "" {
		return profile.Fail(code)
	}
	return profile.OK(info)
}

type GPUReport struct {
	Vendor   string `json:"vendor"`
	Renderer string `json:"renderer"`
}

// GPU reports the unmasked vendor and renderer, falling back to the masked
// ones.
type GPU struct{}

func (GPU) Name() string { return NameGPU }

func (GPU) Run(ctx context.Context, env Environment) profile.Result {
	info, code := readGL(ctx, env)
	if code != "" {
		return profile.Fail(code)
	}
	return profile.OK(gpuFrom(info))
}

func gpuFrom(info GLInfo) GPUReport {
	r := GPUReport{Vendor: info.UnmaskedVendor, Renderer: info.UnmaskedRenderer}
	if r.Vendor == "" {
		r.Vendor = info.Vendor
	}
	if r.Renderer == "" {
		r.Renderer = info.Renderer
	}
	return r
}

type WebGLFingerprintReport struct {
	Hash string `json:"hash"`
}

// WebGLFingerprint renders a fixed 32x32 scene and hashes its pixels.
type WebGLFingerprint struct{}

func (WebGLFingerprint) Name() string { return NameWebGLFingerprint }

func (WebGLFingerprint) Run(ctx context.Context, env Environment) profile.Result {
	s, err := env.WebGL(ctx, fingerprintSize, fingerprintSize)
	if err != nil {
		slog.DebugContext(ctx, "webgl unavailable", "error", err)
		return profile.Fail(glCode(err, codeFailed))
	}
	defer release(ctx, s)

	pixels, err := s.Render(ctx, fingerprintScene)
	if err != nil {
		slog.DebugContext(ctx, "webgl render failed", "error", err)
		return profile.Fail(codeFailed)
	}

	return profile.OK(WebGLFingerprintReport{Hash: strconv.Itoa(int(hash.Bytes(pixels)))})
}
