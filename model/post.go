package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Author is the denormalized user reference captured on a post at
// creation time. It is never reassigned afterwards.
type Author struct {
	ID       primitive.ObjectID `json:"_id" bson:"_id"`
	Username string             `json:"username" bson:"username"`
}

// Post use for handling requests from and db storage of posts
type Post struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title     string             `json:"title" bson:"title"`
	Body      string             `json:"body" bson:"body"`
	Tags      []string           `json:"tags" bson:"tags"`
	User      Author             `json:"user" bson:"user"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}
