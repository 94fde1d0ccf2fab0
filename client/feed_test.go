package client

import (
	"testing"

	"forkful/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func post(content string) *models.Post {
	return &models.Post{
		ID:      primitive.NewObjectID(),
		Content: content,
	}
}

func TestFeedPrependPutsNewestFirst(t *testing.T) {
	feed := NewFeed()
	feed.Replace([]*models.Post{post("older"), post("oldest")})

	feed.Prepend(post("newest"))

	posts := feed.Posts()
	require.Len(t, posts, 3)
	assert.Equal(t, "newest", posts[0].Content)
	assert.Equal(t, "older", posts[1].Content)
}

func TestFeedUpdateReplacesInPlace(t *testing.T) {
	first := post("first")
	second := post("second")
	third := post("third")

	feed := NewFeed()
	feed.Replace([]*models.Post{first, second, third})

	updated := &models.Post{ID: second.ID, Content: "second", Upvotes: 4}
	assert.True(t, feed.Update(updated))

	posts := feed.Posts()
	require.Len(t, posts, 3)
	assert.Equal(t, first.ID, posts[0].ID)
	assert.Equal(t, second.ID, posts[1].ID, "position must be preserved")
	assert.Equal(t, 4, posts[1].Upvotes)
	assert.Equal(t, third.ID, posts[2].ID)
}

func TestFeedUpdateUnknownPostIsDropped(t *testing.T) {
	feed := NewFeed()
	feed.Replace([]*models.Post{post("only")})

	assert.False(t, feed.Update(post("stranger")))
	assert.Equal(t, 1, feed.Len(), "no insert-on-miss")
}

func TestFeedRemove(t *testing.T) {
	doomed := post("doomed")
	keeper := post("keeper")

	feed := NewFeed()
	feed.Replace([]*models.Post{keeper, doomed})

	assert.True(t, feed.Remove(doomed.ID))
	assert.False(t, feed.Remove(doomed.ID))

	posts := feed.Posts()
	require.Len(t, posts, 1)
	assert.Equal(t, keeper.ID, posts[0].ID)
}

func TestFeedReplaceAfterLiveEvents(t *testing.T) {
	// The initial fetch can land after the first live events; a later update
	// for a post present in both still merges by identity.
	live := post("live")

	feed := NewFeed()
	feed.Prepend(live)
	feed.Replace([]*models.Post{live, post("fetched")})

	updated := &models.Post{ID: live.ID, Content: "live", Upvotes: 1}
	assert.True(t, feed.Update(updated))
	assert.Equal(t, 1, feed.Posts()[0].Upvotes)
	assert.Equal(t, 2, feed.Len())
}
