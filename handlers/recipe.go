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
	"go.mongodb.org/mongo-driver/mongo"
)

// ListRecipes returns every recipe with its creator's name resolved, for the
// homepage feed.
func (h *Handler) ListRecipes(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := h.recipes().Find(ctx, bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipes"})
		return
	}
	defer cursor.Close(ctx)

	var recipes []*models.Recipe
	if err := cursor.All(ctx, &recipes); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode recipes"})
		return
	}

	if err := h.resolveRecipes(ctx, recipes); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve creators"})
		return
	}

	if recipes == nil {
		recipes = []*models.Recipe{}
	}
	c.JSON(http.StatusOK, recipes)
}

// ListMyRecipes returns the caller's own recipes, for the dashboard.
func (h *Handler) ListMyRecipes(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := h.recipes().Find(ctx, bson.M{"createdBy": userID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipes"})
		return
	}
	defer cursor.Close(ctx)

	var recipes []*models.Recipe
	if err := cursor.All(ctx, &recipes); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode recipes"})
		return
	}

	if recipes == nil {
		recipes = []*models.Recipe{}
	}
	c.JSON(http.StatusOK, recipes)
}

// CreateRecipe stores a recipe and bumps the creator's posted-recipe count,
// recomputing their rank from the new count.
func (h *Handler) CreateRecipe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	title := c.PostForm("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	image, err := h.uploadFormImage(ctx, c, "recipes")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload image"})
		return
	}

	recipe := &models.Recipe{
		ID:        primitive.NewObjectID(),
		Title:     title,
		Image:     image,
		PrepTime:  c.PostForm("prepTime"),
		CreatedBy: userID,
		CreatedAt: time.Now().Unix(),
	}

	if _, err := h.recipes().InsertOne(ctx, recipe); err != nil {
		log.Printf("CreateRecipe error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create recipe"})
		return
	}

	if err := h.adjustPostedRecipes(ctx, userID, 1); err != nil {
		log.Printf("CreateRecipe rank update error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update chef rank"})
		return
	}

	c.JSON(http.StatusCreated, recipe)
}

// DeleteRecipe removes a recipe. Creator only; the creator's posted-recipe
// count goes back down and the rank is recomputed, so it can regress.
func (h *Handler) DeleteRecipe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	recipeID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var recipe models.Recipe
	err = h.recipes().FindOne(ctx, bson.M{"_id": recipeID}).Decode(&recipe)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipe"})
		return
	}

	if recipe.CreatedBy != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized"})
		return
	}

	if _, err := h.recipes().DeleteOne(ctx, bson.M{"_id": recipeID}); err != nil {
		log.Printf("DeleteRecipe error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete recipe"})
		return
	}

	if err := h.adjustPostedRecipes(ctx, userID, -1); err != nil {
		log.Printf("DeleteRecipe rank update error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update chef rank"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Recipe deleted"})
}

// adjustPostedRecipes moves the count by delta and derives the rank from the
// resulting count inside one pipeline update, so the whole change is a
// single atomic write and the stored rank can never come from a stale count.
// The ladder in the $switch is built from the same table RankForRecipeCount
// evaluates.
func (h *Handler) adjustPostedRecipes(ctx context.Context, userID primitive.ObjectID, delta int) error {
	branches := bson.A{}
	for _, rung := range models.RankLadder() {
		branches = append(branches, bson.M{
			"case": bson.M{"$gte": bson.A{"$postedRecipes", rung.MinCount}},
			"then": rung.Label,
		})
	}

	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"postedRecipes": bson.M{"$add": bson.A{"$postedRecipes", delta}},
		}}},
		{{Key: "$set", Value: bson.M{
			"rank": bson.M{"$switch": bson.M{
				"branches": branches,
				"default":  models.DefaultRank(),
			}},
		}}},
	}

	res, err := h.users().UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (h *Handler) resolveRecipes(ctx context.Context, recipes []*models.Recipe) error {
	idSet := make(map[primitive.ObjectID]bool)
	for _, r := range recipes {
		idSet[r.CreatedBy] = true
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

	for _, r := range recipes {
		r.Creator = summaryOrUnknown(byID, r.CreatedBy)
	}
	return nil
}
