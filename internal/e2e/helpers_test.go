package e2e

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"mlserved/internal/httpapi"
	"mlserved/internal/manager"
)

// newServer starts an httptest server over a real manager rooted at a
// temporary repository directory.
func newServer(t *testing.T, cfg manager.ManagerConfig) (*httptest.Server, *manager.Manager) {
	t.Helper()
	if cfg.ReposDir == "" {
		cfg.ReposDir = t.TempDir()
	}
	mgr := manager.NewWithConfig(cfg)
	srv := httptest.NewServer(httpapi.NewMux(mgr))
	t.Cleanup(func() {
		srv.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mgr.Close(ctx)
	})
	return srv, mgr
}

func httpDo(t *testing.T, method, url string, payload any) (*http.Response, []byte) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, url, body)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	out, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, out
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	return httpDo(t, http.MethodGet, url, nil)
}

func httpPostJSON(t *testing.T, url string, payload any) (*http.Response, []byte) {
	t.Helper()
	return httpDo(t, http.MethodPost, url, payload)
}

func decode(t *testing.T, body []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("json: %v body=%s", err, string(body))
	}
}
