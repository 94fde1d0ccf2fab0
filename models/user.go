package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username      string             `bson:"username" json:"username"`
	Name          string             `bson:"name" json:"name"`
	Email         string             `bson:"email" json:"email"`
	PasswordHash  string             `bson:"passwordHash" json:"-"`
	PostedRecipes int                `bson:"postedRecipes" json:"postedRecipes"`
	Rank          string             `bson:"rank" json:"rank"`
	CreatedAt     int64              `bson:"createdAt" json:"createdAt"`
}

// UserSummary is the resolved form of an author reference. It is attached to
// responses and broadcast payloads, never persisted.
type UserSummary struct {
	ID   primitive.ObjectID `bson:"_id" json:"id"`
	Name string             `bson:"name" json:"name"`
}

// RankThreshold is one rung of the chef ladder: the label earned at MinCount
// posted recipes or more.
type RankThreshold struct {
	MinCount int
	Label    string
}

// Ordered highest first; the first rung at or below the count wins.
var rankLadder = []RankThreshold{
	{16, "Legendary Chef"},
	{11, "Master Chef"},
	{6, "Professional Chef"},
	{1, "Pro"},
}

const defaultRank = "Beginner"

// RankForRecipeCount maps a user's posted-recipe count to their rank label.
// The rank is always recomputed from the count, never patched in place, so a
// deleted recipe can move a user back down.
func RankForRecipeCount(count int) string {
	for _, t := range rankLadder {
		if count >= t.MinCount {
			return t.Label
		}
	}
	return defaultRank
}

// RankLadder exposes the ladder for callers that evaluate it elsewhere, such
// as the storage-side rank derivation. The returned slice is a copy.
func RankLadder() []RankThreshold {
	return append([]RankThreshold(nil), rankLadder...)
}

// DefaultRank is the label below every ladder rung.
func DefaultRank() string {
	return defaultRank
}
