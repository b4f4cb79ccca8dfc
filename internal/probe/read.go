package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"

	"github.com/stupside/beacon/internal/profile"
)

// Read is a one-shot read evaluated entirely in the browser. The read may
// report its own failure as {"error": code, ...}.
type Read struct {
	Namespace string
}

func (r Read) Name() string { return r.Namespace }

func (r Read) Run(ctx context.Context, env Environment) profile.Result {
	var raw json.RawMessage
	if err := env.Read(ctx, r.Namespace, &raw); err != nil {
		slog.DebugContext(ctx, "read failed", "read", r.Namespace, "error", err)
		return profile.Fail(codeFor(err, codeFailed))
	}
	// A read that resolved to nothing carries no value to record.
	if t := bytes.TrimSpace(raw); len(t) == 0 || bytes.Equal(t, []byte("null")) {
		slog.DebugContext(ctx, "read returned no value", "read", r.Namespace)
		return profile.Fail(codeFailed)
	}

	var marker map[string]any
	if json.Unmarshal(raw, &marker) == nil {
		if code, ok := marker["error"].(string); ok && code != "" {
			return profile.FailWith(code, marker)
		}
	}
	return profile.OK(raw)
}

// Reads are the namespaces filled by a direct browser read.
var Reads = []string{
	NameHardware,
	NameDisplay,
	NameTimeZone,
	NameFeatures,
	NameNetwork,
	NameStorage,
	NameLocalStorageData,
	NameSessionStorageData,
	NameSession,
	NameCSS,
	NameClipboard,
	NameInteraction,
}
