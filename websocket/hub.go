package websocket

import (
	"encoding/json"
	"log"
	"sync"
)

// Event is the envelope for every message pushed over the realtime channel.
// Delivery is best effort: no acknowledgement, no retry. Clients that fall
// behind are dropped and must re-fetch on reconnect.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

const (
	EventNewPost         = "newPost"
	EventPostUpdated     = "postUpdated"
	EventPostDeleted     = "postDeleted"
	EventNewNotification = "newNotification"
)

// TopicPosts carries the shared feed events. Notifications go to a per-user
// topic so they never reach unrelated clients.
const TopicPosts = "posts"

func UserTopic(userID string) string {
	return "user:" + userID
}

type message struct {
	topic string
	data  []byte
}

type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan message
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 64),
	}
}

// Run owns the client set. It must be running before the first connection is
// accepted; one goroutine, started from main.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("WebSocket client registered (user %s). Total clients: %d", client.userID, total)

		case client := <-h.unregister:
			h.mu.Lock()
			delete(h.clients, client)
			total := len(h.clients)
			h.mu.Unlock()
			client.closeSend()
			log.Printf("WebSocket client unregistered. Total clients: %d", total)

		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if !client.subscribed(msg.topic) {
					continue
				}
				if !client.trySend(msg.data) {
					// Slow consumer: drop it rather than buffer without
					// bound. Its read pump may still be running, so the
					// channel close is funneled through closeSend.
					delete(h.clients, client)
					client.closeSend()
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) publish(topic, eventType string, payload interface{}) {
	data, err := json.Marshal(Event{Type: eventType, Payload: payload})
	if err != nil {
		log.Printf("Error marshaling %s event: %v", eventType, err)
		return
	}
	h.broadcast <- message{topic: topic, data: data}
}

// PublishNewPost announces a freshly created, relation-resolved post to every
// feed subscriber.
func (h *Hub) PublishNewPost(post interface{}) {
	h.publish(TopicPosts, EventNewPost, post)
}

// PublishPostUpdated carries the full resolved post after a vote or comment.
func (h *Hub) PublishPostUpdated(post interface{}) {
	h.publish(TopicPosts, EventPostUpdated, post)
}

// PublishPostDeleted carries only the id; subscribers drop the post locally.
func (h *Hub) PublishPostDeleted(postID string) {
	h.publish(TopicPosts, EventPostDeleted, map[string]string{"id": postID})
}

// PublishNewNotification delivers to the target user's topic only.
func (h *Hub) PublishNewNotification(userID string, notification interface{}) {
	h.publish(UserTopic(userID), EventNewNotification, notification)
}

func (h *Hub) ConnectedClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
