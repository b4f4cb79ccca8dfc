package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/stupside/beacon/internal/identity"
)

// CookieStore keeps identity values in the page's cookie jar, scoped to the
// collected URL.
type CookieStore struct {
	s *Session
}

var _ identity.Store = (*CookieStore)(nil)

// Cookies returns a store backed by the session's cookie jar.
func (s *Session) Cookies() *CookieStore {
	return &CookieStore{s: s}
}

func (c *CookieStore) Get(ctx context.Context, name string) (string, bool, error) {
	var cookies []*network.Cookie
	err := c.s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		cookies, err = network.GetCookies().WithURLs([]string{c.s.url}).Do(ctx)
		return err
	}))
	if err != nil {
		return "", false, fmt.Errorf("reading cookie %s: %w", name, err)
	}

	for _, ck := range cookies {
		if ck.Name == name {
			return ck.Value, true, nil
		}
	}
	return "", false, nil
}

func (c *CookieStore) Set(ctx context.Context, name, value string, ttl time.Duration) error {
	expires := cdp.TimeSinceEpoch(time.Now().Add(ttl))

	err := c.s.run(ctx, network.SetCookie(name, value).
		WithURL(c.s.url).
		WithPath("/").
		WithSameSite(network.CookieSameSiteLax).
		WithExpires(&expires))
	if err != nil {
		return fmt.Errorf("writing cookie %s: %w", name, err)
	}
	return nil
}
