package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"forkful/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListPosts returns every community post, newest first, with author names
// resolved on the post and all embedded comments.
func (h *Handler) ListPosts(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := h.posts().Find(ctx, bson.M{}, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}
	defer cursor.Close(ctx)

	var posts []*models.Post
	if err := cursor.All(ctx, &posts); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode posts"})
		return
	}

	if err := h.resolvePosts(ctx, posts); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve authors"})
		return
	}

	if posts == nil {
		posts = []*models.Post{}
	}
	c.JSON(http.StatusOK, posts)
}

// CreatePost accepts a multipart form: content (required), video (optional
// URL) and image (optional file, stored on Cloudinary).
func (h *Handler) CreatePost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	content := c.PostForm("content")
	if content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Content is required"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	image, err := h.uploadFormImage(ctx, c, "posts")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload image"})
		return
	}

	post := &models.Post{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Content:   content,
		Image:     image,
		Video:     c.PostForm("video"),
		Comments:  []models.Comment{},
		CreatedAt: time.Now().Unix(),
	}

	if _, err := h.posts().InsertOne(ctx, post); err != nil {
		log.Printf("CreatePost error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	if err := h.resolvePost(ctx, post); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve authors"})
		return
	}

	h.hub.PublishNewPost(post)
	c.JSON(http.StatusCreated, post)
}

// UpvotePost adds one upvote. Votes are deliberately not idempotent: the same
// caller can vote again and again, and each call counts.
func (h *Handler) UpvotePost(c *gin.Context) {
	h.votePost(c, "upvotes")
}

func (h *Handler) DownvotePost(c *gin.Context) {
	h.votePost(c, "downvotes")
}

// votePost increments a single counter with an atomic $inc, so two concurrent
// voters can never lose each other's vote.
func (h *Handler) votePost(c *gin.Context, field string) {
	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post models.Post
	err = h.posts().FindOneAndUpdate(ctx,
		bson.M{"_id": postID},
		bson.M{"$inc": bson.M{field: 1}},
		opts,
	).Decode(&post)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	if err != nil {
		log.Printf("votePost error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update post"})
		return
	}

	if err := h.resolvePost(ctx, &post); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve authors"})
		return
	}

	h.hub.PublishPostUpdated(&post)
	c.JSON(http.StatusOK, &post)
}

type addCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// AddComment appends a comment to the post. When someone comments on another
// user's post, the post's author gets a notification, pushed both over the
// realtime channel and (best effort) as a browser push.
func (h *Handler) AddComment(c *gin.Context) {
	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Comment text is required"})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	comment := models.Comment{
		UserID:    userID,
		Text:      req.Text,
		CreatedAt: time.Now().Unix(),
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post models.Post
	err = h.posts().FindOneAndUpdate(ctx,
		bson.M{"_id": postID},
		bson.M{"$push": bson.M{"comments": comment}},
		opts,
	).Decode(&post)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	if err != nil {
		log.Printf("AddComment error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add comment"})
		return
	}

	if err := h.resolvePost(ctx, &post); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve authors"})
		return
	}

	// Notify the post's author, unless they commented on their own post.
	if post.UserID != userID {
		h.notifyPostAuthor(ctx, &post, userID, req.Text)
	}

	h.hub.PublishPostUpdated(&post)
	c.JSON(http.StatusOK, &post)
}

func (h *Handler) notifyPostAuthor(ctx context.Context, post *models.Post, commenterID primitive.ObjectID, text string) {
	var commenter models.User
	if err := h.users().FindOne(ctx, bson.M{"_id": commenterID}).Decode(&commenter); err != nil {
		log.Printf("notifyPostAuthor: failed to fetch commenter: %v", err)
		return
	}

	notification := &models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    post.UserID,
		Message:   fmt.Sprintf("%s commented on your post: %q", commenter.Name, text),
		CreatedAt: time.Now().Unix(),
	}

	if _, err := h.notifications().InsertOne(ctx, notification); err != nil {
		log.Printf("notifyPostAuthor: failed to store notification: %v", err)
		return
	}

	h.hub.PublishNewNotification(post.UserID.Hex(), notification)
	h.sendPush(post.UserID, "New comment", notification.Message)
}

// DeletePost removes a post. Only its author may delete it; everyone else
// gets a 403. Subscribers are told so the post disappears from live feeds.
func (h *Handler) DeletePost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var post models.Post
	err = h.posts().FindOne(ctx, bson.M{"_id": postID}).Decode(&post)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch post"})
		return
	}

	if post.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized"})
		return
	}

	if _, err := h.posts().DeleteOne(ctx, bson.M{"_id": postID}); err != nil {
		log.Printf("DeletePost error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}

	h.hub.PublishPostDeleted(postID.Hex())
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}
