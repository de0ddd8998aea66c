// internal/server/handlers/websocket.go

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// StatusClient is one connected WebSocket client following a query's
// lifecycle events
type StatusClient struct {
	conn      *websocket.Conn
	send      chan []byte
	queryID   string
	sub       *nats.Subscription
	closeOnce sync.Once
}

// WebSocketConfig contains configuration for WebSocket connections
type WebSocketConfig struct {
	// Time allowed to write a message to the peer
	WriteWait time.Duration

	// Time allowed to read the next pong message from the peer
	PongWait time.Duration

	// Send pings to peer with this period
	PingPeriod time.Duration

	// Maximum message size allowed from peer
	MaxMessageSize int64
}

// DefaultWebSocketConfig returns the default WebSocket configuration
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     (60 * time.Second * 9) / 10,
		MaxMessageSize: 4096,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// QueryStatusHandler streams a query's lifecycle events over WebSocket.
// Events are bridged from the NATS subject <topic>.<queryID>; the feed
// is one-way and the connection closes when the client goes away.
func QueryStatusHandler(natsConn *nats.Conn, topic string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		queryID := chi.URLParam(r, "id")
		if queryID == "" {
			http.Error(w, "Missing query ID", http.StatusBadRequest)
			return
		}

		if natsConn == nil {
			http.Error(w, "Status feed is not enabled", http.StatusServiceUnavailable)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error().Err(err).Msg("Failed to upgrade to WebSocket")
			return
		}

		client := &StatusClient{
			conn:    conn,
			send:    make(chan []byte, 64),
			queryID: queryID,
		}

		subject := fmt.Sprintf("%s.%s", topic, queryID)
		sub, err := natsConn.Subscribe(subject, func(msg *nats.Msg) {
			select {
			case client.send <- msg.Data:
			default:
				// Slow client; drop the event rather than block the bus
			}
		})
		if err != nil {
			log.Error().Err(err).Str("subject", subject).Msg("Failed to subscribe to query events")
			conn.Close()
			return
		}
		client.sub = sub

		go client.writePump()
		go client.readPump()

		welcome, _ := json.Marshal(map[string]interface{}{
			"type":     "welcome",
			"query_id": queryID,
			"time":     time.Now(),
		})
		client.send <- welcome

		log.Debug().Str("query_id", queryID).Msg("New status feed connection")
	}
}

// readPump discards client frames and detects disconnects
func (c *StatusClient) readPump() {
	config := DefaultWebSocketConfig()

	defer c.closeConnection()

	c.conn.SetReadLimit(config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Debug().Err(err).Str("query_id", c.queryID).Msg("WebSocket read error")
			}
			break
		}
	}
}

// writePump pumps lifecycle events to the WebSocket connection
func (c *StatusClient) writePump() {
	config := DefaultWebSocketConfig()
	ticker := time.NewTicker(config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.closeConnection()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// closeConnection unsubscribes from the event subject and closes the
// connection. Both pumps defer it; the teardown runs once.
func (c *StatusClient) closeConnection() {
	c.closeOnce.Do(func() {
		if c.sub != nil {
			c.sub.Unsubscribe()
		}
		c.conn.Close()
	})
}
