package sync

import (
	"bufio"
	"encoding/json"
	"log"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeTimeout = 2 * time.Second

// Hub fans import events out to TCP and WebSocket subscribers. The most
// recent event is replayed to clients that connect later.
type Hub struct {
	mu        sync.Mutex
	clients   map[net.Conn]struct{}
	wsClients map[*websocket.Conn]struct{}
	last      []byte
}

type Stats struct {
	TCPClients int `json:"tcp_clients"`
	WSClients  int `json:"ws_clients"`
}

type welcome struct {
	Type      string `json:"type"`
	Transport string `json:"transport"`
	Clients   int    `json:"clients"`
}

func NewHub() *Hub {
	return &Hub{
		clients:   make(map[net.Conn]struct{}),
		wsClients: make(map[*websocket.Conn]struct{}),
	}
}

// Add greets a TCP client, replays the last event and subscribes it, all
// under the hub lock so a concurrent broadcast is seen exactly once.
func (h *Hub) Add(conn net.Conn) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	b, _ := json.Marshal(welcome{Type: "welcome", Transport: "tcp", Clients: len(h.clients) + 1})
	if err := writeLine(conn, append(b, '\n')); err != nil {
		return err
	}
	if h.last != nil {
		if err := writeLine(conn, h.last); err != nil {
			return err
		}
	}
	h.clients[conn] = struct{}{}
	return nil
}

func (h *Hub) Remove(conn net.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	_ = conn.Close()
}

func (h *Hub) RemoveWS(ws *websocket.Conn) {
	h.mu.Lock()
	delete(h.wsClients, ws)
	h.mu.Unlock()
	_ = ws.Close()
}

// BroadcastJSON sends v as one JSON line to every client. Clients that fail
// a write are dropped.
func (h *Hub) BroadcastJSON(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("[sync] marshal event: %v", err)
		return
	}
	b = append(b, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = b

	for c := range h.clients {
		if err := writeLine(c, b); err != nil {
			_ = c.Close()
			delete(h.clients, c)
		}
	}

	for ws := range h.wsClients {
		_ = ws.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := ws.WriteMessage(websocket.TextMessage, b); err != nil {
			_ = ws.Close()
			delete(h.wsClients, ws)
		}
	}
}

func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{
		TCPClients: len(h.clients),
		WSClients:  len(h.wsClients),
	}
}

// AddWS is Add for WebSocket clients.
func (h *Hub) AddWS(ws *websocket.Conn) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	b, _ := json.Marshal(welcome{Type: "welcome", Transport: "websocket", Clients: len(h.wsClients) + 1})
	_ = ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := ws.WriteMessage(websocket.TextMessage, append(b, '\n')); err != nil {
		return err
	}
	if h.last != nil {
		if err := ws.WriteMessage(websocket.TextMessage, h.last); err != nil {
			return err
		}
	}
	h.wsClients[ws] = struct{}{}
	return nil
}

func writeLine(c net.Conn, b []byte) error {
	_ = c.SetWriteDeadline(time.Now().Add(writeTimeout))
	w := bufio.NewWriter(c)
	if _, err := w.Write(b); err != nil {
		return err
	}
	return w.Flush()
}
