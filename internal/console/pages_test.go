package console

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"relayconsole/internal/httpclient"
	"relayconsole/internal/resource"
)

type memTokens struct {
	mu    sync.Mutex
	token string
}

func (m *memTokens) SetToken(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *memTokens) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *memTokens) Authenticated() bool { return m.Token() != "" }

type call struct {
	method string
	path   string
	body   string
}

type fakeRelay struct {
	mu    sync.Mutex
	calls []call
}

func (f *fakeRelay) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.calls = append(f.calls, call{method: r.Method, path: r.URL.Path, body: string(body)})
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch r.Method + " " + r.URL.Path {
	case "POST /api/login":
		var req struct {
			Password string `json:"password"`
		}
		json.Unmarshal(body, &req)
		if req.Password != "change_me" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail":"invalid password"}`))
			return
		}
		w.Write([]byte(`{"token":"signed"}`))
	case "GET /api/system/stats":
		w.Write([]byte(`{"queue_length":3,"success_today":10,"failed_today":1,"dead_count":4}`))
	case "PUT /api/mappings/5":
		w.Write([]byte(`{"id":5,"tg_channel":"-1005","qq_channel":"77","remark":"muted","gray_ratio":0,"enabled":false}`))
	case "GET /api/api/deadletters":
		w.Write([]byte(`[{"id":1},{"id":2}]`))
	case "POST /api/api/deadletters/retry":
		w.Write([]byte(`{"ok":true,"count":2}`))
	case "POST /api/api/deadletters/8/retry":
		w.Write([]byte(`{"ok":false,"reason":"not_found"}`))
	default:
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"Not Found"}`))
	}
}

func (f *fakeRelay) snapshot() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func setup(t *testing.T, password string) (*Navigator, *memTokens, *fakeRelay, *bytes.Buffer) {
	t.Helper()
	relay := &fakeRelay{}
	srv := httptest.NewServer(relay)
	t.Cleanup(srv.Close)

	tokens := &memTokens{}
	api := resource.New(httpclient.New(httpclient.Config{BaseURL: srv.URL}, tokens, nil), resource.Options{})
	out := &bytes.Buffer{}
	prompt := func(string) (string, error) { return password + "\n", nil }

	nav := NewNavigator(tokens, nil)
	NewPages(tokens, api, out, prompt, nil).Register(nav)
	return nav, tokens, relay, out
}

func TestLoginFlow(t *testing.T) {
	nav, tokens, relay, out := setup(t, "change_me")
	ctx := context.Background()

	// 未登录访问 dashboard 会落到登录页
	m, err := nav.Navigate(ctx, "/", nil)
	if err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if m.Page != PageLogin {
		t.Fatalf("landed on %q", m.Page)
	}
	if tokens.Token() != "signed" {
		t.Fatalf("token = %q", tokens.Token())
	}
	if !strings.Contains(out.String(), "Logged in.") {
		t.Fatalf("output = %q", out.String())
	}

	out.Reset()
	if _, err := nav.Navigate(ctx, "/", nil); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if !strings.Contains(out.String(), "Dead letters") || !strings.Contains(out.String(), "4") {
		t.Fatalf("dashboard output = %q", out.String())
	}

	calls := relay.snapshot()
	if len(calls) != 2 || calls[0].path != "/api/login" || calls[1].path != "/api/system/stats" {
		t.Fatalf("calls = %+v", calls)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	nav, tokens, _, _ := setup(t, "nope")

	_, err := nav.Navigate(context.Background(), "/login", nil)
	if err == nil || !strings.Contains(err.Error(), "invalid password") {
		t.Fatalf("expected invalid password error, got %v", err)
	}
	if tokens.Token() != "" {
		t.Fatal("token must stay empty after a failed login")
	}
}

func TestMappingUpdateSendsOnlyGivenFlags(t *testing.T) {
	nav, tokens, relay, out := setup(t, "")
	tokens.token = "signed"

	_, err := nav.Navigate(context.Background(), "/mapping", []string{"update", "5", "-remark", "muted", "-gray", "0", "-enabled=false"})
	if err != nil {
		t.Fatalf("Navigate: %v", err)
	}

	calls := relay.snapshot()
	if len(calls) != 1 || calls[0].method != http.MethodPut || calls[0].path != "/api/mappings/5" {
		t.Fatalf("calls = %+v", calls)
	}
	var body map[string]interface{}
	if err := json.Unmarshal([]byte(calls[0].body), &body); err != nil {
		t.Fatal(err)
	}
	if len(body) != 3 || body["remark"] != "muted" || body["gray_ratio"] != float64(0) || body["enabled"] != false {
		t.Fatalf("body = %v", body)
	}
	if !strings.Contains(out.String(), "muted") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestDeadRetry(t *testing.T) {
	nav, tokens, relay, out := setup(t, "")
	tokens.token = "signed"
	ctx := context.Background()

	if _, err := nav.Navigate(ctx, "/dead", []string{"retry", "-all"}); err != nil {
		t.Fatalf("retry -all: %v", err)
	}
	if !strings.Contains(out.String(), "Requeued 2 of 2") {
		t.Fatalf("output = %q", out.String())
	}
	calls := relay.snapshot()
	if len(calls) != 2 || calls[1].path != "/api/api/deadletters/retry" || calls[1].body != `{"ids":[1,2]}` {
		t.Fatalf("calls = %+v", calls)
	}

	_, err := nav.Navigate(ctx, "/dead", []string{"retry", "8"})
	if err == nil || !strings.Contains(err.Error(), "not_found") {
		t.Fatalf("expected not_found error, got %v", err)
	}

	if _, err := nav.Navigate(ctx, "/dead", []string{"retry", "x"}); err == nil {
		t.Fatal("expected error for invalid id")
	}
}

func TestOneLine(t *testing.T) {
	if got := oneLine("a\n  b\tc", 10); got != "a b c" {
		t.Fatalf("oneLine = %q", got)
	}
	if got := oneLine("abcdefghij", 5); got != "abcd…" {
		t.Fatalf("oneLine = %q", got)
	}
}
