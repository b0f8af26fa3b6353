// Package dashboard broadcasts session snapshots and closed trades to
// connected WebSocket viewers, and exposes a TOTP-gated admin control for
// requesting an orderly shutdown of the running session.
package dashboard

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"renkoconfluence/internal/model"

	"github.com/gorilla/websocket"
)

// Hub fans out snapshot and trade events to every connected client. It
// implements model.SnapshotSink and model.TradeSink so the orchestrator can
// register it directly as a sink without knowing about WebSockets.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool

	latestSnapshot json.RawMessage
	snapshotAt     time.Time
	seq            int64
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]bool)}
}

// PublishSnapshot implements model.SnapshotSink.
func (h *Hub) PublishSnapshot(snap model.SessionSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	h.broadcast("snapshot", data)
	return nil
}

// PublishTrade implements model.TradeSink.
func (h *Hub) PublishTrade(trade model.ClosedTrade) error {
	data, err := json.Marshal(trade)
	if err != nil {
		return err
	}
	h.broadcast("trade", data)
	return nil
}

func (h *Hub) broadcast(kind string, data json.RawMessage) {
	now := time.Now().UTC()

	h.mu.Lock()
	h.seq++
	seq := h.seq
	if kind == "snapshot" {
		h.latestSnapshot = data
		h.snapshotAt = now
	}
	h.mu.Unlock()

	envelope, err := json.Marshal(struct {
		Kind string          `json:"kind"`
		Data json.RawMessage `json:"data"`
		TS   time.Time       `json:"ts"`
		Seq  int64           `json:"seq"`
	}{Kind: kind, Data: data, TS: now, Seq: seq})
	if err != nil {
		log.Printf("[dashboard] envelope marshal error: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- envelope:
		default:
			log.Printf("[dashboard] client send buffer full, dropping %s", kind)
		}
	}
}

// LatestSnapshot returns the most recently broadcast snapshot, if any.
func (h *Hub) LatestSnapshot() (json.RawMessage, time.Time) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latestSnapshot, h.snapshotAt
}

// ClientCount returns the number of connected WebSocket clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Register upgrades a connection into a tracked Client and starts its pumps.
func (h *Hub) Register(conn *websocket.Conn) {
	client := &Client{conn: conn, send: make(chan []byte, 64), hub: h}

	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()

	log.Printf("[dashboard] client connected (%d total)", h.ClientCount())

	if snap, ts := h.LatestSnapshot(); snap != nil {
		envelope, _ := json.Marshal(struct {
			Kind string          `json:"kind"`
			Data json.RawMessage `json:"data"`
			TS   time.Time       `json:"ts"`
		}{Kind: "snapshot", Data: snap, TS: ts})
		select {
		case client.send <- envelope:
		default:
		}
	}

	go client.writePump()
	go client.readPump()
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}
