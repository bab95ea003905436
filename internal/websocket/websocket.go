package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/abrezinsky/aesops/internal/logger"
	"github.com/abrezinsky/aesops/internal/models"
)

// Message types pushed to clients
const (
	TypeHello              = "hello"
	TypeRoundPaired        = "round_paired"
	TypeResultReported     = "result_reported"
	TypeRoundClosed        = "round_closed"
	TypeParticipantUpdated = "participant_updated"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	sendBuffer     = 256
	broadcastQueue = 64
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// envelope routes a message to the clients following one tournament.
type envelope struct {
	tournamentID int64
	msg          models.WSMessage
}

// Hub maintains the set of active clients and broadcasts messages to the clients
type Hub struct {
	log        logger.Logger
	clients    map[*Client]bool
	broadcast  chan envelope
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mutex      sync.RWMutex
}

// Client is a middleman between the websocket connection and the hub.
// A zero tournamentID follows every tournament.
type Client struct {
	hub          *Hub
	conn         *websocket.Conn
	send         chan models.WSMessage
	tournamentID int64
}

// New creates a new Hub instance
func New(log logger.Logger) *Hub {
	return &Hub{
		log:        log,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan envelope, broadcastQueue),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Start runs the hub's main loop until ctx is cancelled
func (h *Hub) Start(ctx context.Context) {
	go h.run(ctx)
}

func (h *Hub) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mutex.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mutex.Unlock()
			h.log.Debug("WebSocket hub stopped")
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("Client connected", "tournament_id", client.tournamentID, "total_clients", total)

			client.send <- models.WSMessage{
				Type:    TypeHello,
				Payload: map[string]int64{"tournament_id": client.tournamentID},
			}

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("Client disconnected", "total_clients", total)

		case env := <-h.broadcast:
			h.mutex.RLock()
			for client := range h.clients {
				if client.tournamentID != 0 && client.tournamentID != env.tournamentID {
					continue
				}
				select {
				case client.send <- env.msg:
				default:
					// Client's send channel is full, unregister
					go h.leave(client)
				}
			}
			h.mutex.RUnlock()
		}
	}
}

// leave unregisters c unless the hub has stopped.
func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// BroadcastMessage queues a message for clients following tournamentID.
// The message is dropped if the queue is full.
func (h *Hub) BroadcastMessage(tournamentID int64, msgType string, payload interface{}) {
	select {
	case h.broadcast <- envelope{tournamentID: tournamentID, msg: models.WSMessage{Type: msgType, Payload: payload}}:
	default:
		h.log.Warn("WebSocket broadcast queue full, dropping message", "type", msgType, "tournament_id", tournamentID)
	}
}

// BroadcastRoundPaired implements services.Broadcaster
func (h *Hub) BroadcastRoundPaired(round *models.Round) {
	h.BroadcastMessage(round.TournamentID, TypeRoundPaired, round)
}

// BroadcastResultReported implements services.Broadcaster
func (h *Hub) BroadcastResultReported(match *models.Match) {
	h.BroadcastMessage(match.TournamentID, TypeResultReported, match)
}

// BroadcastRoundClosed implements services.Broadcaster
func (h *Hub) BroadcastRoundClosed(tournamentID int64, round int) {
	h.BroadcastMessage(tournamentID, TypeRoundClosed, map[string]interface{}{
		"tournament_id": tournamentID,
		"round":         round,
	})
}

// BroadcastParticipantUpdated implements services.Broadcaster
func (h *Hub) BroadcastParticipantUpdated(p *models.Participant) {
	h.BroadcastMessage(p.TournamentID, TypeParticipantUpdated, p)
}

// readPump pumps messages from the websocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.hub.leave(c)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("WebSocket error", "error", err)
			}
			break
		}

		var msg models.WSMessage
		if err := json.Unmarshal(message, &msg); err == nil {
			c.hub.log.Debug("Received message", "type", msg.Type)
		}
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs upgrades the request. The optional tournament query parameter
// restricts the feed to one tournament.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	var tournamentID int64
	if raw := r.URL.Query().Get("tournament"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 0 {
			http.Error(w, "invalid tournament parameter", http.StatusBadRequest)
			return
		}
		tournamentID = id
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("WebSocket upgrade error", "error", err)
		return
	}

	client := &Client{
		hub:          h,
		conn:         conn,
		send:         make(chan models.WSMessage, sendBuffer),
		tournamentID: tournamentID,
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
