package profile

import (
	"encoding/json"
	"maps"
)

// Error codes shared across probes.
const (
	CodeNotSupported = "not_supported"
	CodeNotAllowed   = "not_allowed"
	CodeTimeout      = "timeout"
	CodePanic        = "panic"
	CodeDisabled     = "disabled"
	CodeMissing      = "missing"
)

// Result is the outcome of a single probe. It is either a success payload or
// an error marker, never both.
type Result struct {
	data  any
	code  string
	extra map[string]any
}

// OK wraps a success payload.
func OK(data any) Result {
	return Result{data: data}
}

// Fail returns an error marker with the given code.
func Fail(code string) Result {
	return Result{code: code}
}

// FailWith returns an error marker carrying extra fields next to the code,
// e.g. {error: "ios_not_supported", percentage: null}.
func FailWith(code string, extra map[string]any) Result {
	extra = maps.Clone(extra)
	delete(extra, "error")
	return Result{code: code, extra: extra}
}

// Failed reports whether r is an error marker.
func (r Result) Failed() bool {
	return r.code != ""
}

// Code returns the error code, or "" for a success.
func (r Result) Code() string {
	return r.code
}

// Data returns the success payload, or nil for an error marker.
func (r Result) Data() any {
	if r.Failed() {
		return nil
	}
	return r.data
}

// Extra returns the fields attached to an error marker.
func (r Result) Extra() map[string]any {
	return maps.Clone(r.extra)
}

func (r Result) MarshalJSON() ([]byte, error) {
	if !r.Failed() {
		return json.Marshal(r.data)
	}
	m := make(map[string]any, len(r.extra)+1)
	maps.Copy(m, r.extra)
	m["error"] = r.code
	return json.Marshal(m)
}
