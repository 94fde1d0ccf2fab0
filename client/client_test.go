package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"forkful/models"
	ws "forkful/websocket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// newTestBackend serves a fixed post listing and a live hub, which is all the
// client needs.
func newTestBackend(t *testing.T, initial []*models.Post) (*ws.Hub, *httptest.Server) {
	t.Helper()

	hub := ws.NewHub()
	go hub.Run()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/posts", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(initial)
	})
	mux.HandleFunc("/ws", ws.Handler(hub, func(token string) (string, error) {
		return token, nil
	}))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return hub, server
}

func TestClientSyncsWithServer(t *testing.T) {
	existing := &models.Post{
		ID:      primitive.NewObjectID(),
		Content: "already there",
	}
	hub, server := newTestBackend(t, []*models.Post{existing})

	c := New(server.URL, "alice")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	require.Eventually(t, func() bool {
		return c.Feed().Len() == 1
	}, 2*time.Second, 10*time.Millisecond, "initial fetch never landed")

	// A new post is prepended.
	created := &models.Post{
		ID:      primitive.NewObjectID(),
		Content: "Hello",
	}
	hub.PublishNewPost(created)

	require.Eventually(t, func() bool {
		return c.Feed().Len() == 2
	}, 2*time.Second, 10*time.Millisecond)

	posts := c.Feed().Posts()
	assert.Equal(t, created.ID, posts[0].ID)
	assert.Equal(t, "Hello", posts[0].Content)
	assert.Equal(t, 0, posts[0].Upvotes)
	assert.Equal(t, existing.ID, posts[1].ID)

	// An update replaces the post in place, exactly as a fresh listing would
	// report it.
	upvoted := &models.Post{
		ID:      created.ID,
		Content: "Hello",
		Upvotes: 1,
	}
	hub.PublishPostUpdated(upvoted)

	require.Eventually(t, func() bool {
		return c.Feed().Posts()[0].Upvotes == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 2, c.Feed().Len())

	// Deletion removes it.
	hub.PublishPostDeleted(created.ID.Hex())

	require.Eventually(t, func() bool {
		return c.Feed().Len() == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, existing.ID, c.Feed().Posts()[0].ID)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("client did not stop after cancel")
	}
}

func TestClientDropsUpdateForUnknownPost(t *testing.T) {
	hub, server := newTestBackend(t, nil)

	c := New(server.URL, "bob")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go c.Run(ctx)

	require.Eventually(t, func() bool {
		return hub.ConnectedClients() == 1
	}, 2*time.Second, 10*time.Millisecond)

	hub.PublishPostUpdated(&models.Post{
		ID:      primitive.NewObjectID(),
		Content: "ghost",
	})

	// Give the event time to arrive; it must not be inserted.
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 0, c.Feed().Len())
}
