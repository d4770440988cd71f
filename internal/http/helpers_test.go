package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/require"

	"storefront/internal/catalog"
	"storefront/internal/http/handlers"
	applog "storefront/internal/log"
	"storefront/internal/metrics"
	"storefront/internal/repos"
	"storefront/internal/storage"
	"storefront/web"
)

type testApp struct {
	app   *fiber.App
	blobs *storage.Memory
}

func newTestApp(t *testing.T, rateLimit int) testApp {
	t.Helper()
	return newTestAppWith(t, func(o *handlers.AppOptions) { o.RateLimit = rateLimit })
}

func newTestAppWith(t *testing.T, configure func(*handlers.AppOptions)) testApp {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	products, err := repos.NewProductRepo(db).All()
	require.NoError(t, err)
	blobs := storage.NewMemory()
	reg := prometheus.NewRegistry()
	deps := handlers.NewDeps(catalog.New(products), blobs, repos.NewOrderRepo(db), metrics.NewCartMetrics(reg), handlers.DepsOptions{})
	opts := handlers.AppOptions{
		Views:   web.Views(),
		Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}
	if configure != nil {
		configure(&opts)
	}
	return testApp{app: handlers.NewApp(deps, opts), blobs: blobs}
}

// client keeps the sid cookie across requests like a browser.
type client struct {
	t   *testing.T
	app *fiber.App
	sid string
}

func (ta testApp) client(t *testing.T) *client { return &client{t: t, app: ta.app} }

func (cl *client) do(method, path string, body any) (*http.Response, []byte) {
	cl.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(cl.t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return cl.send(req)
}

func (cl *client) form(method, path, encoded string) (*http.Response, []byte) {
	cl.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(encoded))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return cl.send(req)
}

func (cl *client) send(req *http.Request) (*http.Response, []byte) {
	cl.t.Helper()
	if cl.sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: cl.sid})
	}
	resp, err := cl.app.Test(req, -1)
	require.NoError(cl.t, err)
	for _, ck := range resp.Cookies() {
		if ck.Name == "sid" {
			cl.sid = ck.Value
		}
	}
	b, err := io.ReadAll(resp.Body)
	require.NoError(cl.t, err)
	return resp, b
}

func decode(t *testing.T, b []byte) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m), string(b))
	return m
}

type logEntry struct {
	Kind   string         `json:"kind"`
	Action string         `json:"action"`
	Status int            `json:"status"`
	Fields map[string]any `json:"fields"`
}

type lockedBuf struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf lockedBuf
	restore := applog.SetOutput(&buf)
	defer restore()

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.b.String()), "\n") {
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func findLog(entries []logEntry, kind, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Kind == kind && e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}
