// Package httpsrc reads the input CSV from an HTTP(S) URL. Transient
// failures (transport errors, 429 and 5xx) are retried with exponential
// backoff.
package httpsrc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"healthetl/internal/etlerr"
)

// Options tunes the retry loop. Zero values take the defaults noted.
type Options struct {
	// Timeout bounds the response headers of one attempt (30s).
	Timeout time.Duration
	// Retries is the number of attempts after the first (3). A negative
	// value disables retries.
	Retries int
	// Backoff is the first wait; each retry doubles it up to MaxBackoff
	// (200ms, 5s).
	Backoff    time.Duration
	MaxBackoff time.Duration
	// Client replaces the default http.Client, mainly for tests.
	Client *http.Client
}

// URL is a datasource.Source over one GET-able URL.
type URL struct {
	url    string
	opt    Options
	client *http.Client
}

// New returns a source for rawURL.
func New(rawURL string, opt Options) *URL {
	if opt.Timeout <= 0 {
		opt.Timeout = 30 * time.Second
	}
	if opt.Retries < 0 {
		opt.Retries = 0
	} else if opt.Retries == 0 {
		opt.Retries = 3
	}
	if opt.Backoff <= 0 {
		opt.Backoff = 200 * time.Millisecond
	}
	if opt.MaxBackoff <= 0 {
		opt.MaxBackoff = 5 * time.Second
	}
	c := opt.Client
	if c == nil {
		c = &http.Client{Transport: &http.Transport{ResponseHeaderTimeout: opt.Timeout}}
	}
	return &URL{url: rawURL, opt: opt, client: c}
}

// Open issues the GET and returns the response body. 404 and 410 map to
// etlerr.ErrNotFound; other non-2xx statuses fail without retry unless
// transient.
func (u *URL) Open(ctx context.Context) (io.ReadCloser, error) {
	var lastErr error
	for attempt := 0; attempt <= u.opt.Retries; attempt++ {
		if attempt > 0 {
			if err := wait(ctx, backoff(u.opt.Backoff, attempt-1, u.opt.MaxBackoff)); err != nil {
				return nil, err
			}
		}
		body, retry, err := u.get(ctx)
		if err == nil {
			return body, nil
		}
		if !retry {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("get %s: giving up after %d attempts: %w", u.url, u.opt.Retries+1, lastErr)
}

func (u *URL) get(ctx context.Context) (io.ReadCloser, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", u.url, err)
	}
	req.Header.Set("Accept", "text/csv, */*;q=0.5")

	resp, err := u.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, true, err
	}
	switch code := resp.StatusCode; {
	case code >= 200 && code < 300:
		return resp.Body, false, nil
	case code == http.StatusNotFound || code == http.StatusGone:
		resp.Body.Close()
		return nil, false, etlerr.NotFound("source", u.url)
	default:
		resp.Body.Close()
		err := fmt.Errorf("get %s: status %d", u.url, code)
		return nil, transient(code), err
	}
}

func (u *URL) String() string { return u.url }

func transient(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// backoff returns initial*2^n capped at limit.
func backoff(initial time.Duration, n int, limit time.Duration) time.Duration {
	d := initial
	for i := 0; i < n && d < limit; i++ {
		d *= 2
	}
	return min(d, limit)
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
