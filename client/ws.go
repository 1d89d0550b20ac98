package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/bcspragu/Minesweeper/minesweeper"
	"github.com/bcspragu/Minesweeper/web"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

type wsClient struct {
	conn  *websocket.Conn
	msgs  chan []byte
	done  chan struct{}
	hooks WSHooks
}

// WSHooks are called as messages arrive for a watched game. Hooks are called
// one at a time, in the order the messages arrived.
type WSHooks struct {
	OnConnect func()
	OnUpdate  func(*web.GameUpdate)
	OnEnd     func(*web.GameEnd)
}

// ListenForUpdates watches a game, blocking until the connection is closed.
func (c *Client) ListenForUpdates(gID minesweeper.GameID, hooks WSHooks) error {
	scheme := "ws"
	if c.scheme == "https" {
		scheme = "wss"
	}

	addr := scheme + "://" + c.addr + "/api/game/" + string(gID) + "/ws"

	dialer := &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: 45 * time.Second,
		Jar:              c.http.Jar,
	}
	conn, _, err := dialer.Dial(addr, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer conn.Close()

	if hooks.OnConnect != nil {
		go hooks.OnConnect()
	}

	wsc := &wsClient{
		conn: conn,
		done: make(chan struct{}),
		// We buffer it in case messages come in while a hook is busy. We don't
		// want to process messages concurrently.
		msgs:  make(chan []byte, 100),
		hooks: hooks,
	}

	go wsc.handleMessages()

	err = wsc.read()
	// Let the hooks see everything that arrived before the close.
	<-wsc.done
	return err
}

func (ws *wsClient) read() error {
	defer close(ws.msgs)
	for {
		messageType, message, err := ws.conn.ReadMessage()
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("ReadMessage: %w", err)
		}

		if messageType != websocket.TextMessage {
			continue
		}

		ws.msgs <- message
	}
}

func (ws *wsClient) handleMessages() {
	defer close(ws.done)
	for msg := range ws.msgs {
		var justAction struct {
			Action string `json:"action"`
		}
		if err := json.Unmarshal(msg, &justAction); err != nil {
			log.Errorf("failed to unmarshal action from server: %v", err)
			continue
		}

		switch justAction.Action {
		case "GAME_UPDATE":
			ws.handleGameUpdate(msg)
		case "GAME_END":
			ws.handleGameEnd(msg)
		default:
			log.Warnf("unknown message action %q", justAction.Action)
		}
	}
}

func (ws *wsClient) handleGameUpdate(dat []byte) {
	var gu web.GameUpdate
	if err := json.Unmarshal(dat, &gu); err != nil {
		log.Errorf("handleGameUpdate: %v", err)
		return
	}

	if ws.hooks.OnUpdate == nil {
		return
	}
	ws.hooks.OnUpdate(&gu)
}

func (ws *wsClient) handleGameEnd(dat []byte) {
	var ge web.GameEnd
	if err := json.Unmarshal(dat, &ge); err != nil {
		log.Errorf("handleGameEnd: %v", err)
		return
	}

	if ws.hooks.OnEnd == nil {
		return
	}
	ws.hooks.OnEnd(&ge)
}
