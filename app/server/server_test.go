package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/shade/app/store"
)

func newTestServer(t *testing.T, cfg Config) *Server {
	srv, err := New(store.NewMemory(), cfg)
	require.NoError(t, err)
	return srv
}

func TestServer_Routes(t *testing.T) {
	srv := newTestServer(t, Config{Version: "test"})
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	client := &http.Client{Timeout: 5 * time.Second}

	t.Run("ping", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/ping")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "pong", string(body))
	})

	t.Run("index renders with theme attribute", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), `data-bs-theme="light"`)
		assert.Contains(t, string(body), `id="themeToggle"`)
	})

	t.Run("app info header set", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, "shade", resp.Header.Get("App-Name"))
	})

	t.Run("static files served", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/static/style.css")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("api get theme", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/v1/theme")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"theme":"light","source":"default"}`, string(body))
	})

	t.Run("api put theme", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPut, ts.URL+"/api/v1/theme",
			strings.NewReader(`{"theme":"dark"}`))
		require.NoError(t, err)
		req.Header.Set("X-Visitor-ID", "v1")
		resp, err := client.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		// stored preference visible on subsequent get
		getReq, err := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/theme", http.NoBody)
		require.NoError(t, err)
		getReq.Header.Set("X-Visitor-ID", "v1")
		getResp, err := client.Do(getReq)
		require.NoError(t, err)
		defer getResp.Body.Close()
		body, err := io.ReadAll(getResp.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"theme":"dark","source":"stored"}`, string(body))
	})

	t.Run("web theme toggle", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, ts.URL+"/web/theme",
			strings.NewReader("current=light"))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		resp, err := client.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "true", resp.Header.Get("HX-Refresh"))

		var themeSet bool
		for _, c := range resp.Cookies() {
			if c.Name == "theme" {
				themeSet = true
				assert.Equal(t, "dark", c.Value)
			}
		}
		assert.True(t, themeSet, "theme cookie set by toggle")
	})
}

func TestServer_BaseURL(t *testing.T) {
	srv := newTestServer(t, Config{BaseURL: "/shade"})
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	client := &http.Client{
		Timeout: 5 * time.Second,
		CheckRedirect: func(_ *http.Request, _ []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	t.Run("redirects bare base path", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/shade")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusMovedPermanently, resp.StatusCode)
		assert.Equal(t, "/shade/", resp.Header.Get("Location"))
	})

	t.Run("serves under prefix", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/shade/")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), `data-bs-theme=`)
	})
}

func TestServer_Run(t *testing.T) {
	srv := newTestServer(t, Config{Address: "127.0.0.1:18185", ReadTimeout: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	// wait for server to come up
	client := &http.Client{Timeout: time.Second}
	require.Eventually(t, func() bool {
		resp, err := client.Get("http://127.0.0.1:18185/ping")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServer_Defaults(t *testing.T) {
	srv := newTestServer(t, Config{})
	assert.Equal(t, int64(64*1024), srv.bodySizeLimit())
	assert.Equal(t, int64(1000), srv.requestsPerSec())
	assert.Equal(t, 5*time.Second, srv.shutdownTimeout())

	srv = newTestServer(t, Config{BodySizeLimit: 100, RequestsPerSec: 5, ShutdownTimeout: time.Second})
	assert.Equal(t, int64(100), srv.bodySizeLimit())
	assert.Equal(t, int64(5), srv.requestsPerSec())
	assert.Equal(t, time.Second, srv.shutdownTimeout())
}
