package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"forkful/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListNotifications returns the caller's 5 most recent notifications, newest
// first.
func (h *Handler) ListNotifications(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(5)
	cursor, err := h.notifications().Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}
	defer cursor.Close(ctx)

	var notifications []*models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode notifications"})
		return
	}

	if notifications == nil {
		notifications = []*models.Notification{}
	}
	c.JSON(http.StatusOK, notifications)
}

type createNotificationRequest struct {
	Message string `json:"message" binding:"required"`
	UserID  string `json:"userId"`
}

// CreateNotification is the direct creation path used by other flows; the
// target defaults to the caller when no userId is given.
func (h *Handler) CreateNotification(c *gin.Context) {
	var req createNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}

	callerID, ok := currentUserID(c)
	if !ok {
		return
	}

	targetID := callerID
	if req.UserID != "" {
		id, err := primitive.ObjectIDFromHex(req.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid target user ID"})
			return
		}
		targetID = id
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	notification := &models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    targetID,
		Message:   req.Message,
		CreatedAt: time.Now().Unix(),
	}

	if _, err := h.notifications().InsertOne(ctx, notification); err != nil {
		log.Printf("CreateNotification error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create notification"})
		return
	}

	c.JSON(http.StatusCreated, notification)
}
