package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

type Client struct {
	conn   *websocket.Conn
	userID string
	send   chan []byte
	hub    *Hub

	mu     sync.Mutex
	topics map[string]bool
	closed bool
}

func (c *Client) subscribed(topic string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.topics[topic]
}

func (c *Client) subscribe(topic string) {
	c.mu.Lock()
	c.topics[topic] = true
	c.mu.Unlock()
}

// trySend queues a message for the write pump. It reports false, and never
// blocks or panics, when the buffer is full or the client is already being
// torn down; the read pump can still be delivering frames at that point.
func (c *Client) trySend(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// closeSend closes the send channel exactly once, whichever of the
// slow-consumer drop and the unregister path gets there first.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// TokenVerifier resolves a bearer token to a user id. The HTTP middleware
// provides the real implementation; tests substitute their own.
type TokenVerifier func(token string) (string, error)

// Handler upgrades the connection and wires the client into the hub. Every
// client starts subscribed to the shared posts feed and to its own user
// topic, so notifications reach it without any client-to-server message.
func Handler(hub *Hub, verify TokenVerifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			log.Printf("WebSocket connection rejected: no token provided")
			http.Error(w, "Token required", http.StatusUnauthorized)
			return
		}

		userID, err := verify(token)
		if err != nil {
			log.Printf("WebSocket connection rejected: %v", err)
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed: %v", err)
			return
		}

		client := &Client{
			conn:   conn,
			userID: userID,
			send:   make(chan []byte, 256),
			hub:    hub,
			topics: map[string]bool{
				TopicPosts:        true,
				UserTopic(userID): true,
			},
		}

		hub.register <- client

		welcome, _ := json.Marshal(Event{
			Type: "connected",
			Payload: map[string]interface{}{
				"userId": userID,
				"time":   time.Now().Unix(),
			},
		})
		client.trySend(welcome)

		go client.writePump()
		go client.readPump()
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			break
		}

		var msg struct {
			Type    string `json:"type"`
			Channel string `json:"channel"`
		}
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Printf("WebSocket message unmarshal error: %v", err)
			continue
		}

		switch msg.Type {
		case "subscribe":
			c.handleSubscribe(msg.Channel)
		case "ping":
			c.sendPong()
		}
	}
}

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
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
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

func (c *Client) handleSubscribe(channel string) {
	if channel == "" {
		return
	}
	c.subscribe(channel)

	response, err := json.Marshal(Event{
		Type: "subscribed",
		Payload: map[string]interface{}{
			"channel": channel,
			"userId":  c.userID,
		},
	})
	if err != nil {
		log.Printf("Error marshaling subscription response: %v", err)
		return
	}
	c.trySend(response)
}

func (c *Client) sendPong() {
	response, err := json.Marshal(Event{
		Type:    "pong",
		Payload: map[string]interface{}{"time": time.Now().Unix()},
	})
	if err != nil {
		return
	}
	c.trySend(response)
}
