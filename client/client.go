package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"forkful/models"
	ws "forkful/websocket"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Client connects to a Forkful server, loads the current post listing and
// then follows the realtime channel. Delivery is best effort: if the
// connection drops, the caller reconnects with a fresh Client and gets a
// fresh full fetch.
type Client struct {
	baseURL string
	token   string
	feed    *Feed
	httpc   *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		feed:    NewFeed(),
		httpc:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) Feed() *Feed {
	return c.feed
}

// Run connects the realtime channel, performs the initial listing fetch and
// merges events until the context ends or the connection drops. Events
// arriving while the initial fetch is in flight are merged on top of it; the
// feed's replace-by-id rule absorbs any overlap.
func (c *Client) Run(ctx context.Context) error {
	wsURL := httpToWS(c.baseURL) + "/ws?token=" + c.token

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial realtime channel: %w", err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	if err := c.loadInitial(ctx); err != nil {
		return err
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("realtime channel closed: %w", err)
		}
		c.handleEvent(raw)
	}
}

func (c *Client) loadInitial(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/posts", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("fetch posts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch posts: unexpected status %d", resp.StatusCode)
	}

	var posts []*models.Post
	if err := json.NewDecoder(resp.Body).Decode(&posts); err != nil {
		return fmt.Errorf("decode posts: %w", err)
	}

	c.feed.Replace(posts)
	return nil
}

func (c *Client) handleEvent(raw []byte) {
	var event struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(raw, &event); err != nil {
		return
	}

	switch event.Type {
	case ws.EventNewPost:
		var post models.Post
		if json.Unmarshal(event.Payload, &post) == nil {
			c.feed.Prepend(&post)
		}
	case ws.EventPostUpdated:
		var post models.Post
		if json.Unmarshal(event.Payload, &post) == nil {
			c.feed.Update(&post)
		}
	case ws.EventPostDeleted:
		var payload struct {
			ID string `json:"id"`
		}
		if json.Unmarshal(event.Payload, &payload) == nil {
			if id, err := primitive.ObjectIDFromHex(payload.ID); err == nil {
				c.feed.Remove(id)
			}
		}
	}
}

func httpToWS(url string) string {
	switch {
	case strings.HasPrefix(url, "https://"):
		return "wss://" + strings.TrimPrefix(url, "https://")
	case strings.HasPrefix(url, "http://"):
		return "ws://" + strings.TrimPrefix(url, "http://")
	default:
		return url
	}
}
