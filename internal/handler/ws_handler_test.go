package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/freeeve/arena-agent/internal/auth"
	"github.com/freeeve/arena-agent/internal/model"
)

type staticStatus struct {
	st  *model.AgentStatus
	err error
}

func (s staticStatus) Status(context.Context) (*model.AgentStatus, error) { return s.st, s.err }

func newTestServer(t *testing.T) (*httptest.Server, *Hub, *auth.JWTManager) {
	t.Helper()
	hub := NewHub()
	mgr := auth.NewJWTManager("test-secret")
	src := staticStatus{st: &model.AgentStatus{Player: "me", Strategy: "search"}}
	srv := httptest.NewServer(NewRouter(hub, src, mgr))
	t.Cleanup(srv.Close)
	return srv, hub, mgr
}

func readEvent(t *testing.T, conn *websocket.Conn) WSEvent {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev WSEvent
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	return ev
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestServeWSRejectsMissingToken(t *testing.T) {
	srv, _, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/v1/ws")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestServeWSRejectsBadToken(t *testing.T) {
	srv, _, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/v1/ws?token=garbage")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestServeWSStreamsTicks(t *testing.T) {
	srv, hub, mgr := newTestServer(t)
	token, err := mgr.GenerateViewerToken("alice", time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if ev := readEvent(t, conn); ev.Type != EventConnected {
		t.Fatalf("expected connected, got %s", ev.Type)
	}

	msg, _ := json.Marshal(ClientMessage{Action: "subscribe", GameID: "game-7"})
	if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	waitFor(t, func() bool { return hub.GameSubscriberCount("game-7") == 1 })

	hub.BroadcastGameEvent("game-7", EventTick, &model.TickRecord{GameID: "game-7", Turn: 11})

	ev := readEvent(t, conn)
	if ev.Type != EventTick || ev.GameID != "game-7" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	data, _ := ev.Data.(map[string]any)
	if data["turn"].(float64) != 11 {
		t.Fatalf("expected turn 11, got %v", data["turn"])
	}

	conn.Close()
	waitFor(t, func() bool { return hub.ConnectionCount() == 0 })
}

func TestStatusRequiresToken(t *testing.T) {
	srv, _, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/v1/status")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestStatusReturnsAgentStatus(t *testing.T) {
	srv, _, mgr := newTestServer(t)
	token, _ := mgr.GenerateViewerToken("alice", time.Hour)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/status", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var st model.AgentStatus
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.Player != "me" || st.Strategy != "search" {
		t.Fatalf("unexpected status: %+v", st)
	}
}

func TestStatusSourceError(t *testing.T) {
	h := NewStatusHandler(staticStatus{err: context.DeadlineExceeded})
	rec := httptest.NewRecorder()
	h.Status(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestHealthzIsPublic(t *testing.T) {
	srv, _, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body map[string]string
	json.NewDecoder(resp.Body).Decode(&body)
	if body["status"] != "ok" {
		t.Fatalf("unexpected body: %v", body)
	}
}
