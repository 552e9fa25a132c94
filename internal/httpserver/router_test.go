package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type seen struct {
	method  string
	path    string
	escaped string
	query   string
	host    string
	auth    string
	body    string
}

func newBackend(t *testing.T) (*httptest.Server, <-chan seen) {
	t.Helper()
	ch := make(chan seen, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		ch <- seen{
			method:  r.Method,
			path:    r.URL.Path,
			escaped: r.URL.EscapedPath(),
			query:   r.URL.RawQuery,
			host:    r.Host,
			auth:    r.Header.Get("Authorization"),
			body:    string(body),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":1}`))
	}))
	t.Cleanup(srv.Close)
	return srv, ch
}

// startProxy 通过真实 listener 提供路由，ReverseProxy 依赖请求的 context
func startProxy(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	router, err := NewRouter(opts, nil)
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	srv := httptest.NewServer(router.Engine)
	t.Cleanup(srv.Close)
	return srv
}

func waitSeen(t *testing.T, ch <-chan seen) seen {
	t.Helper()
	select {
	case got := <-ch:
		return got
	case <-time.After(5 * time.Second):
		t.Fatal("backend received no request")
		return seen{}
	}
}

func doRequest(t *testing.T, srv *httptest.Server, method, path, body string) (*http.Response, string) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer t")
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp, string(data)
}

func TestProxyStripsPrefixAndRewritesHost(t *testing.T) {
	backend, ch := newBackend(t)
	proxy := startProxy(t, Options{Target: backend.URL, StripPrefix: "/api"})

	resp, body := doRequest(t, proxy, http.MethodPost, "/api/mappings?x=1", `{"tg_channel":"-1"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}
	got := waitSeen(t, ch)
	u, _ := url.Parse(backend.URL)
	if got.method != http.MethodPost || got.path != "/mappings" || got.query != "x=1" {
		t.Fatalf("backend saw %+v", got)
	}
	if got.host != u.Host {
		t.Fatalf("Host = %q, want %q", got.host, u.Host)
	}
	if got.auth != "Bearer t" || got.body != `{"tg_channel":"-1"}` {
		t.Fatalf("backend saw %+v", got)
	}
}

func TestProxyPaths(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		request string
		path    string
		escaped string
	}{
		{name: "bare prefix", prefix: "/api", request: "/api", path: "/", escaped: "/"},
		{name: "double api", prefix: "/api/", request: "/api/api/deadletters", path: "/api/deadletters", escaped: "/api/deadletters"},
		{name: "escaped slash kept", prefix: "/api", request: "/api/files/a%2Fb", path: "/files/a/b", escaped: "/files/a%2Fb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend, ch := newBackend(t)
			proxy := startProxy(t, Options{Target: backend.URL, StripPrefix: tt.prefix})

			resp, body := doRequest(t, proxy, http.MethodGet, tt.request, "")
			if resp.StatusCode != http.StatusCreated {
				t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
			}
			got := waitSeen(t, ch)
			if got.path != tt.path || got.escaped != tt.escaped {
				t.Fatalf("backend path = %q (escaped %q), want %q (%q)", got.path, got.escaped, tt.path, tt.escaped)
			}
		})
	}
}

func TestProxyUpstreamDown(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	target := backend.URL
	backend.Close()

	proxy := startProxy(t, Options{Target: target, StripPrefix: "/api"})
	resp, body := doRequest(t, proxy, http.MethodGet, "/api/system/stats", "")

	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var payload map[string]string
	if err := json.Unmarshal([]byte(body), &payload); err != nil || payload["error"] != "backend unreachable" {
		t.Fatalf("body = %s", body)
	}
}

func TestHealthAndNotFound(t *testing.T) {
	router, err := NewRouter(Options{Target: "http://backend:8000", StripPrefix: "/api"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodHead, "/healthz", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusNotFound},
		{http.MethodGet, "/mapping", http.StatusNotFound},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		router.Engine.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
		if w.Code != tt.want {
			t.Errorf("%s %s = %d, want %d", tt.method, tt.path, w.Code, tt.want)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router, err := NewRouter(Options{Target: "http://backend:8000", StripPrefix: "/api", Metrics: true}, nil)
	if err != nil {
		t.Fatal(err)
	}
	w := httptest.NewRecorder()
	router.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "relayconsole_proxy_upstream_errors_total") {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestStaticFallback(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "index.html"), []byte("<div id=app></div>"), 0o644)
	os.MkdirAll(filepath.Join(dir, "assets"), 0o755)
	os.WriteFile(filepath.Join(dir, "assets", "app.js"), []byte("console.log(1)"), 0o644)

	router, err := NewRouter(Options{Target: "http://backend:8000", StripPrefix: "/api", StaticDir: dir}, nil)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path string
		want string
	}{
		{"/assets/app.js", "console.log(1)"},
		{"/", "<div id=app></div>"},
		{"/mapping", "<div id=app></div>"},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		router.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if w.Code != http.StatusOK || w.Body.String() != tt.want {
			t.Errorf("GET %s = %d %q", tt.path, w.Code, w.Body.String())
		}
	}
}

func TestInvalidTarget(t *testing.T) {
	for _, target := range []string{"", "backend:8000", "://x"} {
		if _, err := NewRouter(Options{Target: target}, nil); err == nil {
			t.Errorf("target %q: expected error", target)
		}
	}
}

func TestStripPrefix(t *testing.T) {
	tests := []struct {
		path, prefix, want string
	}{
		{"/api/login", "/api", "/login"},
		{"/api", "/api", "/"},
		{"/apix", "/api", "/apix"},
		{"/api/api/deadletters", "/api", "/api/deadletters"},
		{"/login", "", "/login"},
	}
	for _, tt := range tests {
		if got := StripPrefix(tt.path, tt.prefix); got != tt.want {
			t.Errorf("StripPrefix(%q, %q) = %q, want %q", tt.path, tt.prefix, got, tt.want)
		}
	}
}

func TestServerGracefulShutdown(t *testing.T) {
	router, err := NewRouter(Options{Target: "http://backend:8000", StripPrefix: "/api"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewServer(ln.Addr().String(), router, nil).Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
