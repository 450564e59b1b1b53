/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"net/http"
	"sync"

	"github.com/Seednode/impostor/game"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

// Messages coming from clients
type ClientMessage struct {
	Type     string `json:"type"`             // "remove", "rename", "reorder"
	ID       int    `json:"id"`               // player being acted on
	Name     string `json:"name,omitempty"`   // rename
	BeforeID int    `json:"before,omitempty"` // reorder
}

// ErrorMessage is sent only to the client whose command failed.
type ErrorMessage struct {
	Type    string `json:"type"` // "error"
	Message string `json:"message"`
}

type Client struct {
	conn *websocket.Conn
	send chan any
}

// Hub fans roster changes out to every connected screen and routes their
// edit gestures back into the roster callbacks.
type Hub struct {
	mu        sync.RWMutex
	clients   map[*Client]bool
	last      any
	callbacks game.RosterCallbacks

	// guard runs a callback with the app lock held
	guard func(func() error) error
}

func newHub(guard func(func() error) error) *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
		guard:   guard,
	}
}

// publish records the latest state and callbacks and sends the state to
// every client. Slow clients are dropped rather than waited on.
func (h *Hub) publish(msg any, callbacks game.RosterCallbacks) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.last = msg
	h.callbacks = callbacks

	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
			delete(h.clients, client)
			close(client.send)
		}
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c] = true

	if h.last != nil {
		c.send <- h.last
	}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

// closeAll disconnects all clients.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		close(c.send)
		_ = c.conn.Close()
		delete(h.clients, c)
	}
}

var errUnknownCommand = errors.New("unknown command")

func (h *Hub) dispatch(msg ClientMessage) error {
	h.mu.RLock()
	cb := h.callbacks
	h.mu.RUnlock()

	var fn func() error
	switch msg.Type {
	case "remove":
		if cb.OnRemove != nil {
			fn = func() error { return cb.OnRemove(msg.ID) }
		}
	case "rename":
		if cb.OnRename != nil {
			fn = func() error { return cb.OnRename(msg.ID, msg.Name) }
		}
	case "reorder":
		if cb.OnReorder != nil {
			fn = func() error { return cb.OnReorder(msg.ID, msg.BeforeID) }
		}
	}

	if fn == nil {
		return errUnknownCommand
	}

	return h.guard(fn)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func serveWS(a *app) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(a.cfg, "ERROR: Websocket upgrade from %s: %v", realIP(r), err)
			return
		}

		client := &Client{
			conn: conn,
			send: make(chan any, 8),
		}

		a.hub.register(client)
		logf(a.cfg, "SERVE: Websocket client %s connected (%d total)", realIP(r), a.hub.count())

		go client.writePump()
		client.readPump(a.hub)
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		if err := h.dispatch(msg); err != nil {
			h.reply(c, ErrorMessage{Type: "error", Message: err.Error()})
		}
	}
}

// reply sends msg to a single client, if it is still connected.
func (h *Hub) reply(c *Client, msg any) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.clients[c] {
		return
	}

	select {
	case c.send <- msg:
	default:
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}
