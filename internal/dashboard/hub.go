// Package dashboard streams stored predictions to browser clients over
// websockets and serves a minimal live feed page.
package dashboard

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const writeWait = 5 * time.Second

// ClientGauge receives the number of connected clients.
type ClientGauge interface {
	WSClientsSet(n int)
}

// Message is the envelope of every frame sent to clients.
type Message struct {
	Type   string `json:"type"`
	Record any    `json:"record,omitempty"`
}

// Hub fans published records out to every connected websocket client.
// Clients that fail a write are dropped.
type Hub struct {
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	broadcast chan Message
	stop      chan struct{}
	done      chan struct{}
	gauge     ClientGauge
	isRunning bool
	mu        sync.Mutex
}

// NewHub creates a hub. gauge may be nil.
func NewHub(gauge ClientGauge) *Hub {
	return &Hub{
		upgrader:  websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan Message, 100),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
		gauge:     gauge,
	}
}

// Start launches the broadcaster.
func (h *Hub) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.isRunning {
		return fmt.Errorf("dashboard hub is already running")
	}

	go h.broadcaster()

	h.isRunning = true
	log.Info().Msg("Dashboard hub started")
	return nil
}

// Stop halts the broadcaster and disconnects every client. A stopped hub
// cannot be restarted.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.isRunning {
		return
	}

	close(h.stop)
	<-h.done

	h.clientsMu.Lock()
	for client := range h.clients {
		client.Close()
	}
	h.clients = make(map[*websocket.Conn]bool)
	h.clientsMu.Unlock()
	h.reportClients(0)

	h.isRunning = false
	log.Info().Msg("Dashboard hub stopped")
}

// Publish queues a record for broadcast. It never blocks; when the queue
// is full the record is dropped.
func (h *Hub) Publish(record any) {
	select {
	case h.broadcast <- Message{Type: "prediction", Record: record}:
	default:
		log.Warn().Msg("Dashboard broadcast queue full, dropping update")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	return len(h.clients)
}

func (h *Hub) broadcaster() {
	defer close(h.done)
	for {
		select {
		case msg := <-h.broadcast:
			h.broadcastToClients(msg)
		case <-h.stop:
			return
		}
	}
}

func (h *Hub) broadcastToClients(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal dashboard message")
		return
	}

	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	for client := range h.clients {
		client.SetWriteDeadline(time.Now().Add(writeWait))
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Debug().Err(err).Msg("Dropping dashboard client")
			client.Close()
			delete(h.clients, client)
		}
	}
	h.reportClientsLocked()
}

// HandleWebSocket upgrades the request and keeps the client registered
// until it disconnects.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	h.clientsMu.Lock()
	h.clients[conn] = true
	h.reportClientsLocked()
	h.clientsMu.Unlock()

	// Reads only detect disconnects; clients never send anything useful.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.clientsMu.Lock()
	delete(h.clients, conn)
	h.reportClientsLocked()
	h.clientsMu.Unlock()
}

func (h *Hub) reportClientsLocked() {
	h.reportClients(len(h.clients))
}

func (h *Hub) reportClients(n int) {
	if h.gauge != nil {
		h.gauge.WSClientsSet(n)
	}
}
