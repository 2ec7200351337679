package httpclient

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_SetsHeadersPerType(t *testing.T) {
	var gotUA, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
	}))
	defer server.Close()

	tests := []struct {
		name       string
		opts       Options
		wantUA     string
		wantAccept string
	}{
		{name: "feed default", opts: Options{}, wantUA: DefaultUserAgent, wantAccept: "application/rss+xml"},
		{name: "feed custom agent", opts: Options{Type: FeedClient, UserAgent: "digest-test"}, wantUA: "digest-test", wantAccept: "application/rss+xml"},
		{name: "browser", opts: Options{Type: BrowserClient}, wantUA: "Mozilla/5.0", wantAccept: "text/html"},
		{name: "cloudflare", opts: Options{Type: CloudflareClient}, wantUA: "curl/8.7.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := NewClient(tt.opts).Get(server.URL)
			require.NoError(t, err)
			resp.Body.Close()

			assert.Contains(t, gotUA, tt.wantUA)
			if tt.wantAccept != "" {
				assert.Contains(t, gotAccept, tt.wantAccept)
			}
		})
	}
}

func TestNewClient_StopsAfterTenRedirects(t *testing.T) {
	hits := 0
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.Redirect(w, r, server.URL+"/next", http.StatusFound)
	}))
	defer server.Close()

	resp, err := NewClient(Options{}).Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, maxRedirects, hits)
}

func TestNewClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	_, err := NewClient(Options{Timeout: 20 * time.Millisecond}).Get(server.URL)
	assert.Error(t, err)
}
