package handlers

import (
	"context"
	"net/http"

	"forkful/database"
	"forkful/models"
	"forkful/websocket"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Config carries the secrets handlers need beyond their storage and realtime
// handles. Everything is passed in from main; no ambient globals.
type Config struct {
	JWTSecret       string
	CloudinaryURL   string
	VAPIDPublicKey  string
	VAPIDPrivateKey string
}

// Handler owns one database handle and one hub and applies exactly one state
// change per request. Broadcasts fire only after the write has committed.
type Handler struct {
	db  *mongo.Database
	hub *websocket.Hub
	cfg Config
}

func New(db *mongo.Database, hub *websocket.Hub, cfg Config) *Handler {
	return &Handler{db: db, hub: hub, cfg: cfg}
}

func (h *Handler) users() *mongo.Collection         { return h.db.Collection(database.Users) }
func (h *Handler) posts() *mongo.Collection         { return h.db.Collection(database.Posts) }
func (h *Handler) recipes() *mongo.Collection       { return h.db.Collection(database.Recipes) }
func (h *Handler) notifications() *mongo.Collection { return h.db.Collection(database.Notifications) }
func (h *Handler) pushSubs() *mongo.Collection      { return h.db.Collection(database.PushSubs) }

// currentUserID reads the id the auth middleware stored in the context.
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("userId"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return primitive.NilObjectID, false
	}
	return userID, true
}

// resolvePosts replaces author references with display names on the posts and
// every embedded comment. One $in query covers all referenced users, however
// many posts are being returned.
func (h *Handler) resolvePosts(ctx context.Context, posts []*models.Post) error {
	idSet := make(map[primitive.ObjectID]bool)
	for _, p := range posts {
		idSet[p.UserID] = true
		for _, cm := range p.Comments {
			idSet[cm.UserID] = true
		}
	}
	if len(idSet) == 0 {
		return nil
	}

	ids := make([]primitive.ObjectID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	cursor, err := h.users().Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var users []models.UserSummary
	if err := cursor.All(ctx, &users); err != nil {
		return err
	}

	byID := make(map[primitive.ObjectID]*models.UserSummary, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	for _, p := range posts {
		p.User = summaryOrUnknown(byID, p.UserID)
		for i := range p.Comments {
			p.Comments[i].User = summaryOrUnknown(byID, p.Comments[i].UserID)
		}
	}
	return nil
}

func (h *Handler) resolvePost(ctx context.Context, post *models.Post) error {
	return h.resolvePosts(ctx, []*models.Post{post})
}

func summaryOrUnknown(byID map[primitive.ObjectID]*models.UserSummary, id primitive.ObjectID) *models.UserSummary {
	if s, ok := byID[id]; ok {
		return s
	}
	return &models.UserSummary{ID: id, Name: "Unknown User"}
}
