package hub

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bcspragu/Minesweeper/minesweeper"
	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"
)

type testMsg struct {
	Text string `json:"text"`
}

// watch registers a websocket connection for gID with h and returns the
// client end.
func watch(t *testing.T, h *Hub, gID minesweeper.GameID, hello interface{}) *websocket.Conn {
	t.Helper()

	var upgrader websocket.Upgrader
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Upgrade: %v", err)
			return
		}
		if err := h.Register(ws, gID, hello); err != nil {
			t.Errorf("Register: %v", err)
		}
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) *testMsg {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg testMsg
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	return &msg
}

func TestToGame(t *testing.T) {
	h := New()
	a := watch(t, h, "game_a", &testMsg{Text: "hello a"})
	b := watch(t, h, "game_b", &testMsg{Text: "hello b"})

	// The greeting is only sent once registration is done.
	if diff := cmp.Diff(&testMsg{Text: "hello a"}, read(t, a)); diff != "" {
		t.Errorf("unexpected greeting (-want +got)\n%s", diff)
	}
	if diff := cmp.Diff(&testMsg{Text: "hello b"}, read(t, b)); diff != "" {
		t.Errorf("unexpected greeting (-want +got)\n%s", diff)
	}
	if n := h.Watchers("game_a"); n != 1 {
		t.Errorf("Watchers(game_a) = %d, want 1", n)
	}

	if err := h.ToGame("game_b", &testMsg{Text: "only b"}); err != nil {
		t.Fatalf("ToGame: %v", err)
	}
	if err := h.ToGame("game_a", &testMsg{Text: "only a"}); err != nil {
		t.Fatalf("ToGame: %v", err)
	}

	// Each connection only sees its own game's messages.
	if diff := cmp.Diff(&testMsg{Text: "only a"}, read(t, a)); diff != "" {
		t.Errorf("unexpected message for a (-want +got)\n%s", diff)
	}
	if diff := cmp.Diff(&testMsg{Text: "only b"}, read(t, b)); diff != "" {
		t.Errorf("unexpected message for b (-want +got)\n%s", diff)
	}
}

func TestUnregisterOnClose(t *testing.T) {
	h := New()
	conn := watch(t, h, "game_a", &testMsg{Text: "hello"})
	read(t, conn)

	conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for h.Watchers("game_a") != 0 {
		if time.Now().After(deadline) {
			t.Fatal("connection was never unregistered")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestToGameBadMessage(t *testing.T) {
	h := New()
	if err := h.ToGame("game_a", make(chan int)); err == nil {
		t.Error("ToGame with an unencodable message succeeded")
	}
}

func TestToGameDropsSlowConnections(t *testing.T) {
	h := New()

	// Nothing ever reads from an unbuffered send channel, so those
	// connections are always too slow.
	newConn := func(id string, buf int) *connection {
		c := &connection{id: id, h: h, gameID: "g", send: make(chan []byte, buf)}
		h.register <- c
		return c
	}
	newConn("g-slow-1", 0)
	healthy := newConn("g-healthy", 1)
	newConn("g-slow-2", 0)

	if err := h.ToGame("g", &testMsg{Text: "hi"}); err != nil {
		t.Fatalf("ToGame: %v", err)
	}

	if n := h.Watchers("g"); n != 1 {
		t.Errorf("Watchers(g) = %d, want 1", n)
	}
	select {
	case msg := <-healthy.send:
		if !strings.Contains(string(msg), `"hi"`) {
			t.Errorf("healthy connection got %q", msg)
		}
	default:
		t.Error("healthy connection never got the message")
	}
}
