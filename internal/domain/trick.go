// internal/domain/trick.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trick represents a single trick definition in the catalog.
type Trick struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"` // e.g. "Kickflip", "Butterfly Twist"
	Slug        string             `bson:"slug" json:"slug"` // URL-safe unique name, e.g. "butterfly-twist"
	Description string             `bson:"description,omitempty" json:"description,omitempty"`

	Categories []string `bson:"categories,omitempty" json:"categories,omitempty"` // e.g. "Flip", "Twist", "Kick"
	Difficulty int      `bson:"difficulty,omitempty" json:"difficulty,omitempty"` // 1 (beginner) .. 10
	Prereqs    []string `bson:"prereqs,omitempty" json:"prereqs,omitempty"`       // slugs of recommended prior tricks

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
