package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/khadmahq/khadma/internal/models"
	"github.com/khadmahq/khadma/internal/utils"
)

type PracticeRepository interface {
	CreateSession(ctx context.Context, s *models.PracticeSession) error
	GetSession(ctx context.Context, practiceID string) (*models.PracticeSession, error)
	EndSession(ctx context.Context, practiceID string, endedAt time.Time) error
	InsertTurn(ctx context.Context, t *models.PracticeTurn) error
	UpdateTurnCoach(ctx context.Context, practiceID string, turnIndex int64, response, status string, processingMS int64) error
	ListTurns(ctx context.Context, practiceID string, limit int64) ([]models.PracticeTurn, error)
}

type practiceRepo struct {
	sessions *mongo.Collection
	turns    *mongo.Collection
}

func NewPracticeRepo(db *mongo.Database) PracticeRepository {
	return &practiceRepo{
		sessions: db.Collection("practice_sessions"),
		turns:    db.Collection("practice_turns"),
	}
}

func (r *practiceRepo) CreateSession(ctx context.Context, s *models.PracticeSession) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	_, err := r.sessions.InsertOne(ctx, s)
	return err
}

func (r *practiceRepo) GetSession(ctx context.Context, practiceID string) (*models.PracticeSession, error) {
	var s models.PracticeSession
	err := r.sessions.FindOne(ctx, bson.M{"practice_id": practiceID}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &s, err
}

func (r *practiceRepo) EndSession(ctx context.Context, practiceID string, endedAt time.Time) error {
	_, err := r.sessions.UpdateOne(ctx,
		bson.M{"practice_id": practiceID},
		bson.M{"$set": bson.M{
			"status":   "ended",
			"ended_at": endedAt.UTC(),
		}},
	)
	return err
}

func (r *practiceRepo) InsertTurn(ctx context.Context, t *models.PracticeTurn) error {
	if t.Timestamp.IsZero() {
		t.Timestamp = time.Now().UTC()
	}
	_, err := r.turns.InsertOne(ctx, t)
	return err
}

func (r *practiceRepo) UpdateTurnCoach(ctx context.Context, practiceID string, turnIndex int64, response, status string, processingMS int64) error {
	set := bson.M{"coach_status": status}
	if response != "" {
		set["coach_response"] = response
	}
	if processingMS > 0 {
		set["processing_time_ms"] = processingMS
	}
	_, err := r.turns.UpdateOne(ctx,
		bson.M{"practice_id": practiceID, "turn_index": turnIndex},
		bson.M{"$set": set},
	)
	return err
}

func (r *practiceRepo) ListTurns(ctx context.Context, practiceID string, limit int64) ([]models.PracticeTurn, error) {
	if limit <= 0 {
		limit = 100
	}
	cur, err := r.turns.Find(ctx,
		bson.M{"practice_id": practiceID},
		options.Find().SetSort(bson.D{{Key: "turn_index", Value: 1}}).SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.PracticeTurn
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
