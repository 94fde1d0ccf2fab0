package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Message   string             `bson:"message" json:"message"`
	CreatedAt int64              `bson:"createdAt" json:"createdAt"`
}
