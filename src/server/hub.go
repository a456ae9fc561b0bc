package server

import (
	"encoding/json"
	"net/http"

	"virtual-trader/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// runHub is the main hub loop. A single goroutine owns the client set, so
// every client sees price updates in the order the feed delivered them.
func (s *TradeServer) runHub() {
	for {
		select {
		case client := <-s.register:
			s.clients[client] = struct{}{}
			// Send full holdings snapshot on connect
			s.sendInitialSnapshot(client)

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
			}

		case update := <-s.broadcast:
			msg := models.MUpdateMessage{Type: "update", Data: update}

			// Broadcast to all clients
			for client := range s.clients {
				select {
				case client.send <- msg:
					// Message sent successfully
				default:
					// Client too slow, disconnect to prevent hub blocking.
					// One stalled browser must never delay the others.
					delete(s.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// -----------------------------------------------------------------------------

// sendInitialSnapshot pushes the current holdings joined with cached live
// prices to a freshly registered client.
func (s *TradeServer) sendInitialSnapshot(client *Client) {
	holdings, err := s.portfolio.Holdings()
	if err != nil {
		s.Logger.Error("snapshot for new client failed: %v", err)
		return
	}

	msg := models.MInitialMessage{Type: "initial", Data: holdings}
	select {
	case client.send <- msg:
	default:
		// Fresh client with a full buffer is already dead; the pumps clean up.
	}
}

// -----------------------------------------------------------------------------
// Data Exchange Interface Implementation
// -----------------------------------------------------------------------------

// BroadcastPrice - invoked by the feed connector for every trade. Queues the
// update for the hub loop; the buffered channel absorbs bursts without
// blocking the feed read loop.
func (s *TradeServer) BroadcastPrice(symbol string, price float64) {
	s.broadcast <- models.MPriceUpdate{Symbol: symbol, Price: price}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *TradeServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		// Buffered channel to prevent blocking the hub loop
		send: make(chan interface{}, 256),
	}

	s.register <- client

	// Start goroutines for reading/writing
	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

// HandleClientMessage processes subscribe/unsubscribe requests from a
// browser session. The registry signals the feed connector in turn.
func (s *TradeServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MClientCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Info("Failed to parse client command: %v", err)
		return
	}

	switch cmd.Action {
	case "subscribe":
		if s.registry.Add(cmd.Symbol) {
			s.Logger.Info("client subscribed %s", cmd.Symbol)
		}
	case "unsubscribe":
		if s.registry.Remove(cmd.Symbol) {
			s.Logger.Info("client unsubscribed %s", cmd.Symbol)
		}
	default:
		s.Logger.Debug("ignoring client action %q", cmd.Action)
	}
}
