// Package fetch supplies the document-fetching collaborator consumed by the
// source adapters: an HTTP client that yields parsed goquery trees, with
// request interception, cookie injection and bot-challenge detection on the
// way through.
package fetch

import (
	"context"
	"net/http"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
)

// Fetcher is the capability the adapters consume: one URL in, one parsed
// document out. Cancellation and timeouts live here, not in the adapter.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL, method string) (*goquery.Document, error)
}

// Interceptor may rewrite a request before it is issued.
type Interceptor func(*http.Request) error

type ClientOptions struct {
	Timeout      time.Duration
	UserAgent    string
	Referer      string
	Cookies      *CookieStore
	Interceptors []Interceptor
	// Bypass wraps the transport with the Cloudflare bypass layer for sites
	// that gate plain clients behind challenge pages.
	Bypass    bool
	Transport http.RoundTripper

	DebugLogger interface {
		Debugf(string, ...any)
	}
}

type Client struct {
	hc           *http.Client
	interceptors []Interceptor
	log          interface{ Debugf(string, ...any) }
}

func NewClient(opts ClientOptions) *Client {
	base := opts.Transport
	if base == nil {
		base = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxConnsPerHost:     100,
			MaxIdleConnsPerHost: 100,
			ForceAttemptHTTP2:   true,
		}
	}
	if opts.Bypass {
		base = cloudflarebp.AddCloudFlareByPass(base)
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	interceptors := make([]Interceptor, 0, len(opts.Interceptors)+2)
	if opts.UserAgent != "" {
		interceptors = append(interceptors, WithHeader("User-Agent", opts.UserAgent))
	}
	if opts.Referer != "" {
		interceptors = append(interceptors, WithHeader("Referer", opts.Referer))
	}
	interceptors = append(interceptors, opts.Interceptors...)

	c := &Client{
		hc: &http.Client{
			Timeout:   timeout,
			Transport: cookieTripper{base: base, store: opts.Cookies},
		},
		interceptors: interceptors,
		log:          opts.DebugLogger,
	}

	if opts.DebugLogger != nil {
		opts.DebugLogger.Debugf("fetch client initialized (timeout=%s, bypass=%t)\n", timeout, opts.Bypass)
	}

	return c
}

// HTTPClient exposes the underlying client for collaborators that stream raw
// bytes (image downloads) instead of parsed documents.
func (c *Client) HTTPClient() *http.Client {
	return c.hc
}

// Fetch issues one request and parses the body. HTTP 403 and 503 become a
// BotChallengeError so the caller can hand off to its challenge-solving flow;
// there is no retry here.
func (c *Client) Fetch(ctx context.Context, rawURL, method string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}

	for _, ic := range c.interceptors {
		if err := ic(req); err != nil {
			return nil, err
		}
	}

	if c.log != nil {
		c.log.Debugf("HTTP %s %s\n", req.Method, req.URL.String())
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusServiceUnavailable:
		return nil, &BotChallengeError{Status: resp.StatusCode, URL: rawURL}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, &HTTPError{Status: resp.StatusCode, URL: rawURL}
	}

	return goquery.NewDocumentFromReader(resp.Body)
}

// cookieTripper injects stored cookies for the request host.
type cookieTripper struct {
	base  http.RoundTripper
	store *CookieStore
}

func (t cookieTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.store != nil && req.Header.Get("Cookie") == "" {
		if h := t.store.Header(req.URL.Hostname()); h != "" {
			req.Header.Set("Cookie", h)
		}
	}

	return t.base.RoundTrip(req)
}

// WithHeader returns an interceptor setting a fixed header.
func WithHeader(key, value string) Interceptor {
	return func(req *http.Request) error {
		req.Header.Set(key, value)
		return nil
	}
}

// ForceHTTPS rewrites the request scheme before the fetch goes out.
func ForceHTTPS() Interceptor {
	return func(req *http.Request) error {
		req.URL.Scheme = "https"
		return nil
	}
}
