package browser

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/runtime"

	"github.com/stupside/beacon/internal/probe"
)

//go:embed js/*.js
var scripts embed.FS

// readPrefix names the one-shot reads: js/read_<name>.js.
const readPrefix = "read_"

func script(name string) (string, error) {
	b, err := scripts.ReadFile("js/" + name + ".js")
	if err != nil {
		return "", fmt.Errorf("script %q: %w", name, probe.ErrUnsupported)
	}
	return strings.TrimSpace(string(b)), nil
}

// expression wraps a function expression so that its result, or the failure
// it throws, comes back as an outcome.
func expression(fn string, args ...any) (string, error) {
	if args == nil {
		args = []any{}
	}
	b, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("encoding arguments: %w", err)
	}
	return fmt.Sprintf("window.__beacon.invoke(%s, %s)", fn, b), nil
}

func awaitPromise(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithAwaitPromise(true).WithReturnByValue(true)
}

type outcome struct {
	OK  json.RawMessage `json:"ok"`
	Err string          `json:"err"`
}

func (o outcome) decode(out any) error {
	switch o.Err {
	case "":
	case "unsupported":
		return probe.ErrUnsupported
	case "denied":
		return probe.ErrDenied
	default:
		return errors.New(o.Err)
	}

	if out == nil {
		return nil
	}
	raw := o.OK
	if len(raw) == 0 {
		raw = json.RawMessage("null")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding result: %w", err)
	}
	return nil
}
