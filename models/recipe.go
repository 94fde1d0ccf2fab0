package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Recipe struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title     string             `bson:"title" json:"title"`
	Image     string             `bson:"image,omitempty" json:"image,omitempty"`
	PrepTime  string             `bson:"prepTime" json:"prepTime"`
	CreatedBy primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	CreatedAt int64              `bson:"createdAt" json:"createdAt"`
	Creator   *UserSummary       `bson:"-" json:"creator,omitempty"` // Populated in response only
}
