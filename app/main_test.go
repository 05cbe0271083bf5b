package main

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/shade/app/enum"
)

func TestIntegration(t *testing.T) {
	tmpDir := t.TempDir()
	opts.DB = filepath.Join(tmpDir, "test.db")
	opts.Server.Address = "127.0.0.1:18480" // use non-standard port to avoid conflicts
	opts.Server.ReadTimeout = 5
	opts.Server.Title = "Shade"
	opts.Cache.MaxKeys = 100

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- run(ctx)
	}()

	waitForServer(t, "http://127.0.0.1:18480/ping")

	client := &http.Client{Timeout: 5 * time.Second}

	t.Run("index applies light default", func(t *testing.T) {
		resp, err := client.Get("http://127.0.0.1:18480/")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), `data-bs-theme="light"`)
		assert.Contains(t, string(body), "bi bi-moon-fill")
	})

	t.Run("toggle persists and flips", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, "http://127.0.0.1:18480/web/theme",
			strings.NewReader("current=light"))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		resp, err := client.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var themeCookie *http.Cookie
		for _, c := range resp.Cookies() {
			if c.Name == "theme" {
				themeCookie = c
			}
		}
		require.NotNil(t, themeCookie)
		assert.Equal(t, "dark", themeCookie.Value)

		// reload with the cookie, dark applied regardless of signal
		getReq, err := http.NewRequest(http.MethodGet, "http://127.0.0.1:18480/", http.NoBody)
		require.NoError(t, err)
		getReq.AddCookie(themeCookie)
		getReq.Header.Set("Sec-CH-Prefers-Color-Scheme", "light")
		getResp, err := client.Do(getReq)
		require.NoError(t, err)
		defer getResp.Body.Close()
		body, err := io.ReadAll(getResp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), `data-bs-theme="dark"`)
		assert.Contains(t, string(body), "bi bi-sun-fill")
	})

	t.Run("api reflects stored preference", func(t *testing.T) {
		putReq, err := http.NewRequest(http.MethodPut, "http://127.0.0.1:18480/api/v1/theme",
			strings.NewReader(`{"theme":"dark"}`))
		require.NoError(t, err)
		putReq.Header.Set("X-Visitor-ID", "itest")
		putResp, err := client.Do(putReq)
		require.NoError(t, err)
		defer putResp.Body.Close()
		assert.Equal(t, http.StatusOK, putResp.StatusCode)

		getReq, err := http.NewRequest(http.MethodGet, "http://127.0.0.1:18480/api/v1/theme", http.NoBody)
		require.NoError(t, err)
		getReq.Header.Set("X-Visitor-ID", "itest")
		getResp, err := client.Do(getReq)
		require.NoError(t, err)
		defer getResp.Body.Close()
		body, err := io.ReadAll(getResp.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"theme":"dark","source":"stored"}`, string(body))
	})

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestMakeStore_FallsBackToMemory(t *testing.T) {
	st := makeStore("/nonexistent/dir/shade.db")
	require.NotNil(t, st)
	defer st.Close()

	ctx := context.Background()
	require.NoError(t, st.Set(ctx, "v1", enum.ThemeDark))
	theme, err := st.Get(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, enum.ThemeDark, theme)
}

func waitForServer(t *testing.T, url string) {
	client := &http.Client{Timeout: time.Second}
	require.Eventually(t, func() bool {
		resp, err := client.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 10*time.Second, 100*time.Millisecond)
}
