package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type pushSubscription struct {
	ID     primitive.ObjectID   `bson:"_id,omitempty"`
	UserID primitive.ObjectID   `bson:"userId"`
	Sub    webpush.Subscription `bson:"sub"`
}

// VapidPublicKey hands the browser the key it needs to subscribe.
func (h *Handler) VapidPublicKey(c *gin.Context) {
	if h.cfg.VAPIDPublicKey == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Push notifications not configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"publicKey": h.cfg.VAPIDPublicKey})
}

// SubscribePush stores (or replaces) the caller's browser push subscription.
func (h *Handler) SubscribePush(c *gin.Context) {
	var req struct {
		Endpoint string `json:"endpoint" binding:"required"`
		Keys     struct {
			P256dh string `json:"p256dh" binding:"required"`
			Auth   string `json:"auth" binding:"required"`
		} `json:"keys" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sub := pushSubscription{
		UserID: userID,
		Sub: webpush.Subscription{
			Endpoint: req.Endpoint,
			Keys: webpush.Keys{
				P256dh: req.Keys.P256dh,
				Auth:   req.Keys.Auth,
			},
		},
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := h.pushSubs().ReplaceOne(ctx, bson.M{"userId": userID}, sub, opts); err != nil {
		log.Printf("SubscribePush error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store subscription"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Subscribed"})
}

// sendPush delivers a browser push to the user, best effort, off the request
// path. Expired subscriptions are cleaned up on the way.
func (h *Handler) sendPush(userID primitive.ObjectID, title, body string) {
	if h.cfg.VAPIDPrivateKey == "" {
		return
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Panic in push notification: %v", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var sub pushSubscription
		err := h.pushSubs().FindOne(ctx, bson.M{"userId": userID}).Decode(&sub)
		if err == mongo.ErrNoDocuments {
			return // No subscription
		}
		if err != nil {
			log.Printf("Failed to find subscription for user %s: %v", userID.Hex(), err)
			return
		}

		payload, err := json.Marshal(map[string]interface{}{
			"title": title,
			"body":  body,
			"data": map[string]interface{}{
				"url":       "/notifications",
				"timestamp": time.Now().Unix(),
			},
		})
		if err != nil {
			return
		}

		resp, err := webpush.SendNotification(payload, &sub.Sub, &webpush.Options{
			Subscriber:      "mailto:admin@forkful.app",
			VAPIDPublicKey:  h.cfg.VAPIDPublicKey,
			VAPIDPrivateKey: h.cfg.VAPIDPrivateKey,
			TTL:             30,
		})
		if err != nil {
			log.Printf("Failed to send push notification to user %s: %v", userID.Hex(), err)
			if resp != nil && resp.StatusCode == http.StatusGone {
				// Subscription expired; drop it.
				if _, delErr := h.pushSubs().DeleteOne(ctx, bson.M{"userId": userID}); delErr != nil {
					log.Printf("Failed to delete expired subscription: %v", delErr)
				}
			}
			return
		}
		resp.Body.Close()
	}()
}
