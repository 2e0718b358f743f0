package http

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/dkeye/Tandem/internal/adapters/directory"
	"github.com/dkeye/Tandem/internal/app"
	"github.com/dkeye/Tandem/internal/app/orch"
	"github.com/dkeye/Tandem/internal/config"
	"github.com/dkeye/Tandem/internal/core"
	"github.com/dkeye/Tandem/internal/domain"
	"github.com/gin-gonic/gin"
)

type nopConn struct{}

func (nopConn) TrySend(core.Frame) error { return nil }
func (nopConn) Close()                   {}

func testConfig() *config.Config {
	return &config.Config{
		Mode:   "test",
		Secret: "test-secret",
		ICEServers: []config.ICEServer{
			{URLs: []string{"stun:stun.example.org:3478"}},
		},
	}
}

type fixture struct {
	o   *orch.Orchestrator
	dir *directory.Memory
	r   *gin.Engine
}

func newFixture(t *testing.T, limiter *app.MatchLimiter) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := directory.NewMemory()
	o := orch.New(nil, rand.New(rand.NewSource(1)), nil, limiter)
	return &fixture{o: o, dir: dir, r: SetupRouter(context.Background(), testConfig(), o, dir)}
}

func (f *fixture) online(t *testing.T, h domain.ConnHandle, u domain.UserID) {
	t.Helper()
	f.o.Connect(h, nopConn{}, nil)
	if err := f.o.RegisterUser(h, u); err != nil {
		t.Fatal(err)
	}
}

func (f *fixture) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.r.ServeHTTP(w, req)

	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestHealthzSetsClientToken(t *testing.T) {
	f := newFixture(t, nil)
	w, _ := f.do(t, nethttp.MethodGet, "/healthz", nil)
	if w.Code != nethttp.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("healthz = %d %q", w.Code, w.Body.String())
	}
	if len(w.Result().Cookies()) == 0 {
		t.Fatal("session cookie not set")
	}
}

func TestStartCall(t *testing.T) {
	f := newFixture(t, nil)

	w, body := f.do(t, nethttp.MethodPost, "/api/audio-call/start", gin.H{"user_id": "A"})
	if w.Code != nethttp.StatusConflict || body["status"] != "user_not_connected" {
		t.Fatalf("unregistered = %d %v", w.Code, body)
	}

	f.online(t, "h1", "A")
	w, body = f.do(t, nethttp.MethodPost, "/api/audio-call/start", gin.H{"user_id": "A"})
	if w.Code != nethttp.StatusOK || body["status"] != "no_partner_available" {
		t.Fatalf("alone = %d %v", w.Code, body)
	}

	f.online(t, "h2", "B")
	w, body = f.do(t, nethttp.MethodPost, "/api/audio-call/start", gin.H{"user_id": "A"})
	if w.Code != nethttp.StatusOK || body["status"] != "partner_found" || body["partner_user_id"] != "B" {
		t.Fatalf("paired = %d %v", w.Code, body)
	}
	sid := body["session_id"].(string)

	w, body = f.do(t, nethttp.MethodPost, "/api/audio-call/start", gin.H{"user_id": "B"})
	if body["status"] != "no_partner_available" {
		t.Fatalf("busy partner = %d %v", w.Code, body)
	}

	w, body = f.do(t, nethttp.MethodPost, "/api/audio-call/end", gin.H{"session_id": sid})
	if w.Code != nethttp.StatusOK || body["status"] != "ok" {
		t.Fatalf("end = %d %v", w.Code, body)
	}
	w, _ = f.do(t, nethttp.MethodPost, "/api/audio-call/end", gin.H{"session_id": sid})
	if w.Code != nethttp.StatusOK {
		t.Fatalf("second end = %d", w.Code)
	}
}

func TestStartCallBadRequests(t *testing.T) {
	f := newFixture(t, nil)
	cases := []struct {
		name string
		body any
	}{
		{"missing user", gin.H{}},
		{"blank user", gin.H{"user_id": "   "}},
		{"too long", gin.H{"user_id": "0123456789012345678901234567890123456789"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, _ := f.do(t, nethttp.MethodPost, "/api/audio-call/start", tc.body)
			if w.Code != nethttp.StatusBadRequest {
				t.Fatalf("code = %d", w.Code)
			}
		})
	}
	w, _ := f.do(t, nethttp.MethodPost, "/api/audio-call/end", gin.H{})
	if w.Code != nethttp.StatusBadRequest {
		t.Fatalf("end without session = %d", w.Code)
	}
}

func TestStartCallRateLimited(t *testing.T) {
	f := newFixture(t, app.NewMatchLimiter(0.001, 1))
	f.online(t, "h1", "A")

	if w, _ := f.do(t, nethttp.MethodPost, "/api/audio-call/start", gin.H{"user_id": "A"}); w.Code != nethttp.StatusOK {
		t.Fatalf("first = %d", w.Code)
	}
	w, body := f.do(t, nethttp.MethodPost, "/api/audio-call/start", gin.H{"user_id": "A"})
	if w.Code != nethttp.StatusTooManyRequests || body["status"] != "rate_limited" {
		t.Fatalf("second = %d %v", w.Code, body)
	}
}

func TestICEServers(t *testing.T) {
	f := newFixture(t, nil)
	w, body := f.do(t, nethttp.MethodGet, "/api/ice-servers", nil)
	if w.Code != nethttp.StatusOK {
		t.Fatalf("code = %d", w.Code)
	}
	servers, _ := body["ice_servers"].([]any)
	if len(servers) != 1 {
		t.Fatalf("ice_servers = %v", body)
	}
	first := servers[0].(map[string]any)
	if urls := first["urls"].([]any); urls[0] != "stun:stun.example.org:3478" {
		t.Fatalf("urls = %v", urls)
	}
}

func TestPresenceAndStats(t *testing.T) {
	f := newFixture(t, nil)
	f.online(t, "h1", "A")
	if err := f.dir.SetConnectionHandle(context.Background(), "A", "h1", 1); err != nil {
		t.Fatal(err)
	}

	w, body := f.do(t, nethttp.MethodGet, "/api/presence/A", nil)
	if w.Code != nethttp.StatusOK || body["online"] != true || body["connection_handle"] != "h1" || body["persisted_handle"] != "h1" {
		t.Fatalf("presence = %d %v", w.Code, body)
	}
	_, body = f.do(t, nethttp.MethodGet, "/api/presence/B", nil)
	if body["online"] != false || body["persisted_handle"] != nil {
		t.Fatalf("offline presence = %v", body)
	}

	_, body = f.do(t, nethttp.MethodGet, "/api/stats", nil)
	if body["online"] != float64(1) || body["sessions"] != float64(0) {
		t.Fatalf("stats = %v", body)
	}
}
