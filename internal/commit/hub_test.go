package commit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"drawboard/internal/domain"
)

func dialHub(t *testing.T, srv *httptest.Server, elementSetID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?elementSetId=" + elementSetID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, h *Hub, id string, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.ClientCount(id) != n {
		if time.Now().After(deadline) {
			t.Fatalf("clients on %s = %d, want %d", id, h.ClientCount(id), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubBroadcastsToSubscribers(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	watcher := dialHub(t, srv, "set-a")
	other := dialHub(t, srv, "set-b")
	waitForClients(t, hub, "set-a", 1)
	waitForClients(t, hub, "set-b", 1)

	msg := domain.NewElementSetUpdate("set-a", domain.Actor{ID: "u", Name: "Ada"}, []domain.DrawElement{{ID: "r1"}})
	if err := hub.Deliver(context.Background(), msg); err != nil {
		t.Fatal(err)
	}

	_ = watcher.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got domain.ElementSetUpdate
	if err := watcher.ReadJSON(&got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Kind != domain.ElementSetUpdateKind || got.Payload[0].ID != "r1" {
		t.Errorf("got %+v", got)
	}

	_ = other.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if err := other.ReadJSON(&got); err == nil {
		t.Error("client of another element set received the update")
	}
}

func TestHubPrimesWithLatest(t *testing.T) {
	latest := func(_ context.Context, id string) (domain.ElementSetUpdate, error) {
		return domain.NewElementSetUpdate(id, domain.Actor{ID: "u"}, []domain.DrawElement{{ID: "old"}}), nil
	}
	hub := NewHub(latest)
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	conn := dialHub(t, srv, "set-a")
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got domain.ElementSetUpdate
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Payload[0].ID != "old" {
		t.Errorf("got %+v", got)
	}
}

func TestHubRequiresElementSetID(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/ws")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestHubForgetsDisconnectedClients(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dialHub(t, srv, "set-a")
	waitForClients(t, hub, "set-a", 1)
	conn.Close()
	waitForClients(t, hub, "set-a", 0)
}
