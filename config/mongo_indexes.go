package config

import (
	"context"
	"errors"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureMongoIndexes() error {
	if MongoClient == nil {
		return errors.New("MongoClient is nil; call InitMongo() first")
	}

	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "khadma"
	}
	db := MongoClient.Database(dbName)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// practice_turns indexes
	turns := db.Collection("practice_turns")
	_, err := turns.Indexes().CreateMany(ctx, []mongo.IndexModel{
		// 1) TTL index: expire at ExpiresAt (must be Date)
		{
			Keys: bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().
				SetName("ttl_expires_at").
				SetExpireAfterSeconds(0),
		},
		// 2) Ensure no duplicate turn per practice session
		{
			Keys: bson.D{{Key: "practice_id", Value: 1}, {Key: "turn_index", Value: 1}},
			Options: options.Index().
				SetName("uniq_practice_turn").
				SetUnique(true),
		},
		// 3) Query helper
		{
			Keys:    bson.D{{Key: "practice_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("by_practice_ts"),
		},
	})
	if err != nil {
		return err
	}

	// practice_sessions indexes
	sessions := db.Collection("practice_sessions")
	_, err = sessions.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "practice_id", Value: 1}},
			Options: options.Index().
				SetName("uniq_practice_id").
				SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("by_user_created"),
		},
	})
	return err
}
