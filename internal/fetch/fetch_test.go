package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchParsesDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><h1>hello</h1></body></html>`))
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{})

	doc, err := c.Fetch(context.Background(), srv.URL, http.MethodGet)
	require.NoError(t, err)
	assert.Equal(t, "hello", doc.Find("h1").Text())
}

func TestFetchBotChallengeStatuses(t *testing.T) {
	for _, status := range []int{http.StatusForbidden, http.StatusServiceUnavailable} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		c := NewClient(ClientOptions{})
		_, err := c.Fetch(context.Background(), srv.URL, http.MethodGet)
		srv.Close()

		require.Error(t, err)
		assert.True(t, IsBotChallenge(err), "status %d should read as a bot challenge", status)

		var bc *BotChallengeError
		require.ErrorAs(t, err, &bc)
		assert.Equal(t, status, bc.Status)
		assert.Equal(t, srv.URL, bc.URL)
	}
}

func TestFetchPlainHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{})
	_, err := c.Fetch(context.Background(), srv.URL, http.MethodGet)

	require.Error(t, err)
	assert.False(t, IsBotChallenge(err))

	var he *HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusNotFound, he.Status)
}

func TestFetchAppliesHeadersAndInterceptors(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{
		UserAgent:    "test-agent/1.0",
		Referer:      "https://example.test/",
		Interceptors: []Interceptor{WithHeader("X-Requested-With", "XMLHttpRequest")},
	})

	_, err := c.Fetch(context.Background(), srv.URL, http.MethodGet)
	require.NoError(t, err)

	assert.Equal(t, "test-agent/1.0", got.Get("User-Agent"))
	assert.Equal(t, "https://example.test/", got.Get("Referer"))
	assert.Equal(t, "XMLHttpRequest", got.Get("X-Requested-With"))
}

func TestFetchInjectsStoredCookies(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Cookie")
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	store, err := OpenCookieStore(filepath.Join(t.TempDir(), "cookies.yaml"))
	require.NoError(t, err)
	require.NoError(t, store.Set("127.0.0.1", "cf_clearance", "abc123"))
	require.NoError(t, store.Set("127.0.0.1", "session", "xyz"))

	c := NewClient(ClientOptions{Cookies: store})
	_, err = c.Fetch(context.Background(), srv.URL, http.MethodGet)
	require.NoError(t, err)

	assert.Equal(t, "cf_clearance=abc123; session=xyz", got)
}

func TestDefaultUserAgentOverride(t *testing.T) {
	assert.Equal(t, "custom/2.0", DefaultUserAgent("custom/2.0"))
}
