package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Post struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Content   string             `bson:"content" json:"content"`
	Image     string             `bson:"image,omitempty" json:"image,omitempty"`
	Video     string             `bson:"video,omitempty" json:"video,omitempty"`
	Upvotes   int                `bson:"upvotes" json:"upvotes"`
	Downvotes int                `bson:"downvotes" json:"downvotes"`
	Comments  []Comment          `bson:"comments" json:"comments"`
	CreatedAt int64              `bson:"createdAt" json:"createdAt"`
	User      *UserSummary       `bson:"-" json:"user,omitempty"` // Populated in response only
}

// Comment is embedded in its post and has no identity of its own; it is only
// ever appended, and removed only when the whole post goes.
type Comment struct {
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt int64              `bson:"createdAt" json:"createdAt"`
	User      *UserSummary       `bson:"-" json:"user,omitempty"` // Populated in response only
}
