package hub

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/bcspragu/Minesweeper/minesweeper"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// Hub maintains the set of active connections and broadcasts messages to the
// connections.
type Hub struct {
	// Registered connections.
	connections map[minesweeper.GameID][]*connection

	// Messages to send to everyone watching a game.
	broadcast chan *broadcastMsg

	// Register requests from the connections.
	register chan *connection

	// Unregister requests from connections.
	unregister chan *connection

	// Requests for the number of watchers of a game.
	count chan *countReq

	nextID uint64
}

// New creates a new Hub and starts it in a background Go routine.
func New() *Hub {
	h := &Hub{
		broadcast:   make(chan *broadcastMsg),
		register:    make(chan *connection),
		unregister:  make(chan *connection),
		count:       make(chan *countReq),
		connections: make(map[minesweeper.GameID][]*connection),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case c := <-h.register:
			conns := h.connections[c.gameID]
			h.connections[c.gameID] = append(conns, c)
			log.WithFields(log.Fields{"game_id": c.gameID, "conn_id": c.id}).Debug("registered connection")
		case c := <-h.unregister:
			h.deleteConn(c)
		case m := <-h.broadcast:
			// deleteConn edits the slice in place, so slow connections are
			// dropped once the loop is done with it.
			var slow []*connection
			for _, c := range h.connections[m.gameID] {
				select {
				case c.send <- m.msg:
				default:
					slow = append(slow, c)
				}
			}
			for _, c := range slow {
				log.WithFields(log.Fields{"game_id": c.gameID, "conn_id": c.id}).Warn("dropping slow connection")
				h.deleteConn(c)
			}
		case req := <-h.count:
			req.resp <- len(h.connections[req.gameID])
		}
	}
}

func (h *Hub) deleteConn(c *connection) {
	rconns := h.connections[c.gameID]
	for i, rconn := range rconns {
		if rconn.id == c.id {
			close(c.send)
			// Remove the connection.
			copy(rconns[i:], rconns[i+1:])
			rconns[len(rconns)-1] = nil
			h.connections[c.gameID] = rconns[:len(rconns)-1]
			if len(h.connections[c.gameID]) == 0 {
				delete(h.connections, c.gameID)
			}
			return
		}
	}
}

type broadcastMsg struct {
	gameID minesweeper.GameID
	msg    []byte
}

// ToGame sends a message to everyone watching a game.
func (h *Hub) ToGame(gID minesweeper.GameID, msg interface{}) error {
	dat, err := encode(msg)
	if err != nil {
		return err
	}

	h.broadcast <- &broadcastMsg{
		gameID: gID,
		msg:    dat,
	}

	return nil
}

type countReq struct {
	gameID minesweeper.GameID
	resp   chan int
}

// Watchers returns how many connections are registered for a game.
func (h *Hub) Watchers(gID minesweeper.GameID) int {
	req := &countReq{gameID: gID, resp: make(chan int, 1)}
	h.count <- req
	return <-req.resp
}

// Register associates a connection with the hub and a given game. hello, if
// not nil, is the first message the connection gets, ahead of any broadcast.
func (h *Hub) Register(ws *websocket.Conn, gID minesweeper.GameID, hello interface{}) error {
	conn := &connection{
		id:     h.newID(gID),
		h:      h,
		gameID: gID,
		send:   make(chan []byte, 256),
		ws:     ws,
	}
	if hello != nil {
		msg, err := encode(hello)
		if err != nil {
			return err
		}
		conn.send <- msg
	}
	h.register <- conn
	go conn.writePump()
	go conn.readPump()
	return nil
}

func encode(msg interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(msg); err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	return buf.Bytes(), nil
}

func (h *Hub) newID(gID minesweeper.GameID) string {
	return fmt.Sprintf("%s-%d", gID, atomic.AddUint64(&h.nextID, 1))
}
