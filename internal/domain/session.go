package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrickTally records attempts and landings for one trick within a session.
type TrickTally struct {
	TrickID  primitive.ObjectID `bson:"trickId" json:"trickId"`
	Attempts int                `bson:"attempts" json:"attempts"`
	Lands    int                `bson:"lands" json:"lands"`
}

// Session represents one timed training session logged by a user.
type Session struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	StartedAt time.Time          `bson:"startedAt" json:"startedAt"`
	DurationS int                `bson:"durationS,omitempty" json:"durationS,omitempty"` // elapsed seconds, set on finish
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Tallies   []TrickTally       `bson:"tallies,omitempty" json:"tallies,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
