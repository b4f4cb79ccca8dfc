// Package browser drives headless Chrome through chromedp and exposes the
// page to the probes.
package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	cdpbrowser "github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/stupside/beacon/internal/app"
)

// Session owns the chromedp lifecycle for one collected page.
type Session struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	url         string
	debugDir    string
}

// Open starts a browser, applies the preset when one is given, and navigates
// to targetURL.
func Open(ctx context.Context, cfg app.BrowserConfig, preset *Preset, targetURL string) (*Session, error) {
	runtimeJS, err := script("runtime")
	if err != nil {
		return nil, err
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocatorOpts(cfg, preset)...)

	taskCtx, taskCancel := chromedp.NewContext(allocCtx)

	actions := []chromedp.Action{
		runtime.Enable(),
		network.Enable(),
		cdpbrowser.SetDownloadBehavior(cdpbrowser.SetDownloadBehaviorBehaviorDeny),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(runtimeJS).Do(ctx)
			return err
		}),
	}
	if preset != nil {
		actions = append(actions, emulate(preset))
	}
	actions = append(actions,
		chromedp.Navigate(targetURL),
		chromedp.Evaluate(runtimeJS, nil),
	)

	// Navigate with a timeout, but don't use a child context: canceling a
	// child of the chromedp task context breaks the target in chromedp v0.14.
	navDone := make(chan error, 1)
	go func() {
		navDone <- chromedp.Run(taskCtx, actions...)
	}()

	select {
	case err = <-navDone:
	case <-time.After(cfg.Timeout):
		err = fmt.Errorf("navigation timed out after %s", cfg.Timeout)
	}
	if err != nil {
		taskCancel()
		allocCancel()
		return nil, fmt.Errorf("opening %s: %w", targetURL, err)
	}

	s := &Session{
		ctx:         taskCtx,
		cancel:      taskCancel,
		allocCancel: allocCancel,
		url:         targetURL,
		debugDir:    debugDir(targetURL, preset),
	}
	s.capture("after_nav")

	return s, nil
}

// Close captures the final page and tears down the browser and allocator.
func (s *Session) Close() {
	s.capture("before_close")
	s.cancel()
	s.allocCancel()
}

// run executes actions on the page. The page context is never derived from
// ctx; ctx only bounds how long the caller waits.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	done := make(chan error, 1)
	go func() {
		done <- chromedp.Run(s.ctx, actions...)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// call invokes the named script with args and decodes its result into out.
func (s *Session) call(ctx context.Context, name string, out any, args ...any) error {
	src, err := script(name)
	if err != nil {
		return err
	}
	expr, err := expression(src, args...)
	if err != nil {
		return err
	}

	var obj *runtime.RemoteObject
	if err := s.run(ctx, chromedp.Evaluate(expr, &obj, awaitPromise)); err != nil {
		return fmt.Errorf("evaluating %s: %w", name, err)
	}
	if obj == nil {
		return fmt.Errorf("evaluating %s: no result", name)
	}

	var o outcome
	if err := json.Unmarshal([]byte(obj.Value), &o); err != nil {
		return fmt.Errorf("decoding %s outcome: %w", name, err)
	}
	return o.decode(out)
}

// allocatorOpts returns chromedp exec-allocator options that avoid common
// headless-detection flags. Window size and UA come from the preset.
func allocatorOpts(cfg app.BrowserConfig, preset *Preset) []chromedp.ExecAllocatorOption {
	var headlessVal string
	if cfg.Headless {
		headlessVal = "new"
	}

	opts := []chromedp.ExecAllocatorOption{
		chromedp.ExecPath(cfg.ChromePath),

		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,

		chromedp.Flag("headless", headlessVal),
		chromedp.Flag("no-sandbox", cfg.NoSandbox),

		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("disable-background-timer-throttling", true),
		chromedp.Flag("disable-backgrounding-occluded-windows", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
	}

	if cfg.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(cfg.UserDataDir))
	}

	if preset != nil {
		opts = append(opts,
			chromedp.WindowSize(preset.ScreenWidth, preset.ScreenHeight),
			chromedp.UserAgent(preset.UserAgent),
		)
	}
	return opts
}
