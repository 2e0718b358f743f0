package signal

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/Tandem/internal/app"
	"github.com/dkeye/Tandem/internal/app/orch"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T) (*orch.Orchestrator, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	o := orch.New(nil, rand.New(rand.NewSource(1)), app.SimplePolicy{}, nil)
	ctl := NewSignalWSController(o, DefaultOptions())

	ctx, cancel := context.WithCancel(context.Background())
	r := gin.New()
	r.GET("/ws", func(c *gin.Context) { ctl.HandleSignal(ctx, c) })
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return o, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func send(t *testing.T, ws *websocket.Conn, v any) {
	t.Helper()
	if err := ws.WriteJSON(v); err != nil {
		t.Fatalf("write: %v", err)
	}
}

// expect reads frames until one of type typ arrives.
func expect(t *testing.T, ws *websocket.Conn, typ string) map[string]any {
	t.Helper()
	_ = ws.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %s: %v", typ, err)
		}
		var m map[string]any
		if err := json.Unmarshal(data, &m); err != nil {
			t.Fatalf("bad frame %s", data)
		}
		if m["type"] == typ {
			return m
		}
	}
}

func register(t *testing.T, ws *websocket.Conn, user string) map[string]any {
	t.Helper()
	send(t, ws, map[string]any{"type": "register", "user_id": user})
	return expect(t, ws, "registration_ack")
}

func TestRegisterAck(t *testing.T) {
	_, url := newTestServer(t)
	ws := dial(t, url)

	ack := register(t, ws, "alice")
	if ack["status"] != "OK" || ack["user_id"] != "alice" || ack["connection_handle"] == "" {
		t.Fatalf("ack = %v", ack)
	}
}

func TestRegisterRejectsEmptyUser(t *testing.T) {
	_, url := newTestServer(t)
	ws := dial(t, url)

	send(t, ws, map[string]any{"type": "register", "user_id": "   "})
	if e := expect(t, ws, "error"); e["error"] != "invalid_user_id" {
		t.Fatalf("error = %v", e)
	}
}

func TestMalformedFrameGetsError(t *testing.T) {
	_, url := newTestServer(t)
	ws := dial(t, url)

	if err := ws.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	if e := expect(t, ws, "error"); e["error"] != "bad_json" {
		t.Fatalf("error = %v", e)
	}
	send(t, ws, map[string]any{"type": "ping"})
	expect(t, ws, "pong")
}

func TestCallFlowOverSocket(t *testing.T) {
	o, url := newTestServer(t)
	a := dial(t, url)
	b := dial(t, url)
	register(t, a, "A")
	register(t, b, "B")

	send(t, a, map[string]any{"type": "start_call"})
	res := expect(t, a, "start_call_result")
	if res["status"] != "partner_found" || res["partner_user_id"] != "B" {
		t.Fatalf("start_call_result = %v", res)
	}
	found := expect(t, b, "partner_found")
	if found["partner_user_id"] != "A" || found["session_id"] != res["session_id"] {
		t.Fatalf("partner_found on B = %v", found)
	}

	send(t, b, map[string]any{"type": "start_call"})
	if res := expect(t, b, "start_call_result"); res["status"] != "no_partner_available" {
		t.Fatalf("B start_call = %v", res)
	}

	send(t, a, map[string]any{"type": "offer", "to": "B", "sdp": map[string]any{"type": "offer", "sdp": "v=0"}})
	offer := expect(t, b, "offer")
	if offer["from"] != "A" {
		t.Fatalf("offer = %v", offer)
	}
	send(t, b, map[string]any{"type": "answer", "to": "A", "sdp": map[string]any{"type": "answer", "sdp": "v=0"}})
	if ans := expect(t, a, "answer"); ans["from"] != "B" {
		t.Fatalf("answer = %v", ans)
	}
	send(t, a, map[string]any{"type": "ice_candidate", "to": "B", "candidate": map[string]any{"candidate": "c1"}})
	ice := expect(t, b, "ice_candidate")
	if cand, _ := ice["candidate"].(map[string]any); cand["candidate"] != "c1" {
		t.Fatalf("ice = %v", ice)
	}

	a.Close()
	ended := expect(t, b, "call_ended")
	if ended["session_id"] != res["session_id"] {
		t.Fatalf("call_ended = %v", ended)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if handles, sessions := o.Calls.Counts(); handles == 0 && sessions == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("call table not cleared")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestEndCallOverSocket(t *testing.T) {
	_, url := newTestServer(t)
	a := dial(t, url)
	b := dial(t, url)
	register(t, a, "A")
	register(t, b, "B")

	send(t, a, map[string]any{"type": "start_call"})
	res := expect(t, a, "start_call_result")

	send(t, b, map[string]any{"type": "end_call", "session_id": res["session_id"]})
	expect(t, a, "call_ended")
	expect(t, b, "call_ended")

	// Unknown sessions are ignored; the socket stays usable.
	send(t, b, map[string]any{"type": "end_call", "session_id": "nope"})
	send(t, b, map[string]any{"type": "whoami"})
	who := expect(t, b, "whoami")
	if who["user_id"] != "B" || who["session_id"] != nil {
		t.Fatalf("whoami = %v", who)
	}
}

func TestStartCallRequiresRegistration(t *testing.T) {
	_, url := newTestServer(t)
	ws := dial(t, url)
	send(t, ws, map[string]any{"type": "start_call"})
	if e := expect(t, ws, "error"); e["error"] != "not_registered" {
		t.Fatalf("error = %v", e)
	}
}

func TestReRegistrationEvictsOldSocket(t *testing.T) {
	o, url := newTestServer(t)
	old := dial(t, url)
	register(t, old, "A")

	fresh := dial(t, url)
	ack := register(t, fresh, "A")

	expect(t, old, "evicted")
	if h, _ := o.Registry.ResolveHandle("A"); string(h) != ack["connection_handle"] {
		t.Fatalf("A resolves to %q, ack said %v", h, ack["connection_handle"])
	}
}

func TestEndCallIgnoredFromOutsider(t *testing.T) {
	o, url := newTestServer(t)
	a := dial(t, url)
	b := dial(t, url)
	register(t, a, "A")
	register(t, b, "B")

	send(t, a, map[string]any{"type": "start_call"})
	res := expect(t, a, "start_call_result")

	anon := dial(t, url)
	send(t, anon, map[string]any{"type": "end_call", "session_id": res["session_id"]})
	if e := expect(t, anon, "error"); e["error"] != "not_registered" {
		t.Fatalf("error = %v", e)
	}

	c := dial(t, url)
	register(t, c, "C")
	send(t, c, map[string]any{"type": "end_call", "session_id": res["session_id"]})
	send(t, c, map[string]any{"type": "ping"})
	expect(t, c, "pong")

	if p := o.Presence("A"); !p.InCall || string(p.Session) != res["session_id"] {
		t.Fatalf("session ended by an outsider: %+v", p)
	}
}

func TestRelayRequiresRegistration(t *testing.T) {
	_, url := newTestServer(t)
	b := dial(t, url)
	register(t, b, "B")

	anon := dial(t, url)
	send(t, anon, map[string]any{"type": "offer", "from": "A", "to": "B", "sdp": map[string]any{"sdp": "v=0"}})
	if e := expect(t, anon, "error"); e["error"] != "not_registered" {
		t.Fatalf("error = %v", e)
	}

	send(t, b, map[string]any{"type": "whoami"})
	_ = b.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		var m map[string]any
		if err := b.ReadJSON(&m); err != nil {
			t.Fatal(err)
		}
		if m["type"] == "offer" {
			t.Fatalf("spoofed offer delivered: %v", m)
		}
		if m["type"] == "whoami" {
			return
		}
	}
}
