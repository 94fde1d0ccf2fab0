// Package client is the Go counterpart of the web UI's community feed: it
// keeps a local, recency-ordered view of posts in sync with the server by
// merging realtime events into the result of one initial listing fetch.
package client

import (
	"sync"

	"forkful/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Feed is the local ordered collection of posts. Merging rules:
// a new post is prepended, an update replaces the matching post in place, an
// update for an unknown post is dropped, a delete removes by id. The
// replace-by-identity rule is also what makes the initial-fetch/live-event
// race harmless.
type Feed struct {
	mu    sync.RWMutex
	posts []*models.Post
}

func NewFeed() *Feed {
	return &Feed{}
}

// Replace installs the result of a full listing fetch.
func (f *Feed) Replace(posts []*models.Post) {
	f.mu.Lock()
	f.posts = append([]*models.Post(nil), posts...)
	f.mu.Unlock()
}

// Prepend puts a freshly created post at the front.
func (f *Feed) Prepend(post *models.Post) {
	f.mu.Lock()
	f.posts = append([]*models.Post{post}, f.posts...)
	f.mu.Unlock()
}

// Update swaps in the new version of a post, keeping its position. Updates
// for posts not in the feed are silently dropped, never inserted.
func (f *Feed) Update(post *models.Post) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.posts {
		if p.ID == post.ID {
			f.posts[i] = post
			return true
		}
	}
	return false
}

// Remove drops the post with the given id, if present.
func (f *Feed) Remove(id primitive.ObjectID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.posts {
		if p.ID == id {
			f.posts = append(f.posts[:i], f.posts[i+1:]...)
			return true
		}
	}
	return false
}

// Posts returns a snapshot of the current view, front first.
func (f *Feed) Posts() []*models.Post {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]*models.Post(nil), f.posts...)
}

func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.posts)
}
