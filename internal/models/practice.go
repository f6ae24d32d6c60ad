package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PracticeSession is one live mock-interview run, streamed over the
// websocket endpoint. Stored in Mongo; answer turns expire via TTL.
type PracticeSession struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PracticeID string             `bson:"practice_id" json:"practice_id"` // uuid v4
	UserID     string             `bson:"user_id" json:"user_id"`

	Position string `bson:"position,omitempty" json:"position,omitempty"`
	Status   string `bson:"status" json:"status"` // active|ended

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	EndedAt   *time.Time `bson:"ended_at,omitempty" json:"ended_at,omitempty"`
}

// PracticeTurn is one question/answer exchange inside a practice session.
type PracticeTurn struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PracticeID string             `bson:"practice_id" json:"practice_id"`
	TurnIndex  int64              `bson:"turn_index" json:"turn_index"`

	Question string `bson:"question" json:"question"`
	Answer   string `bson:"answer" json:"answer"`

	CoachStatus   string `bson:"coach_status" json:"coach_status"` // pending|processing|done|failed
	CoachResponse string `bson:"coach_response,omitempty" json:"coach_response,omitempty"`

	ProcessingTimeMS int64     `bson:"processing_time_ms,omitempty" json:"processing_time_ms,omitempty"`
	Timestamp        time.Time `bson:"timestamp" json:"timestamp"`
	ExpiresAt        time.Time `bson:"expires_at" json:"expires_at"` // TTL index
}
