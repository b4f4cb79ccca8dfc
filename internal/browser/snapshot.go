package browser

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

const pageStateJS = `({
	url: location.href,
	title: document.title,
	ua: navigator.userAgent,
	platform: navigator.platform,
	viewport: [innerWidth, innerHeight],
})`

// pageState is the navigator view recorded next to each capture, so a capture
// shows which identity the page actually saw.
type pageState struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	UserAgent string `json:"ua"`
	Platform  string `json:"platform"`
	Viewport  [2]int `json:"viewport"`
}

// debugDir is .debug/<page>/<preset>, so runs of the same page under
// different presets do not overwrite each other.
func debugDir(targetURL string, preset *Preset) string {
	name := "native"
	if preset != nil {
		name = preset.Name
	}
	return filepath.Join(".debug", sanitize(targetURL), name)
}

// capture saves a screenshot, the page HTML and the page state under the
// session's debug directory. It only runs at debug level.
func (s *Session) capture(label string) {
	ctx := s.ctx
	if !slog.Default().Enabled(ctx, slog.LevelDebug) {
		return
	}

	if err := os.MkdirAll(s.debugDir, 0o755); err != nil {
		slog.DebugContext(ctx, "capture: mkdir failed", "error", err)
		return
	}
	prefix := filepath.Join(s.debugDir, fmt.Sprintf("%s_%d", label, time.Now().UnixMilli()))

	parts := []struct {
		ext  string
		read func() ([]byte, error)
	}{
		{".png", func() ([]byte, error) {
			var buf []byte
			err := chromedp.Run(ctx, chromedp.FullScreenshot(&buf, 90))
			return buf, err
		}},
		{".html", func() ([]byte, error) {
			var html string
			err := chromedp.Run(ctx, chromedp.OuterHTML("html", &html))
			return []byte(html), err
		}},
		{".json", func() ([]byte, error) {
			var st pageState
			if err := chromedp.Run(ctx, chromedp.Evaluate(pageStateJS, &st)); err != nil {
				return nil, err
			}
			return json.MarshalIndent(st, "", "  ")
		}},
	}

	for _, p := range parts {
		b, err := p.read()
		if err != nil {
			slog.DebugContext(ctx, "capture: read failed", "label", label, "part", p.ext, "error", err)
			continue
		}
		if err := os.WriteFile(prefix+p.ext, b, 0o644); err != nil {
			slog.DebugContext(ctx, "capture: write failed", "path", prefix+p.ext, "error", err)
		}
	}

	slog.DebugContext(ctx, "capture: saved", "label", label, "path", prefix)
}

// sanitize turns a URL into a safe directory name.
func sanitize(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	s := strings.NewReplacer("/", "_", ":", "_").Replace(u.Host + u.Path)
	if len(s) > 80 {
		s = s[:80]
	}
	return s
}
