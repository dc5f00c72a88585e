// internal/repository/mongo/completion_repo.go
package mongo

import (
	"alcyxob/hyrox-trainer/internal/domain"
	"alcyxob/hyrox-trainer/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const completionCollectionName = "completed_workouts"

// mongoCompletionRepository implements repository.CompletionRepository
type mongoCompletionRepository struct {
	collection *mongo.Collection
}

// NewMongoCompletionRepository creates a new completion ledger repository.
func NewMongoCompletionRepository(db *mongo.Database) repository.CompletionRepository {
	return &mongoCompletionRepository{
		collection: db.Collection(completionCollectionName),
	}
}

// Upsert writes the completion at (programID, week, dayOfWeek). The unique
// index on that key makes concurrent upserts converge on one document.
func (r *mongoCompletionRepository) Upsert(ctx context.Context, programID string, week, dayOfWeek int, fields domain.CompletionFields, completedAt time.Time) (*domain.CompletedWorkout, error) {
	if programID == "" {
		return nil, errors.New("completion requires a program id")
	}
	filter := bson.M{"userProgramId": programID, "week": week, "dayOfWeek": dayOfWeek}

	set := bson.M{
		"completedAt":      completedAt.UTC(),
		"completionStatus": fields.CompletionStatus,
		"percentComplete":  fields.PercentComplete,
	}
	unset := bson.M{}
	optional := map[string]any{
		"sessionId":      fields.SessionID,
		"actualDuration": fields.ActualDuration,
		"rpe":            fields.RPE,
		"performance":    fields.Performance,
	}
	for key, v := range optional {
		if isEmpty(v) {
			unset[key] = ""
		} else {
			set[key] = v
		}
	}

	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"_id": uuid.NewString()},
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var saved domain.CompletedWorkout
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&saved)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", repository.ErrUpdateFailed, err)
	}
	saved.CompletedAt = saved.CompletedAt.UTC()
	return &saved, nil
}

// ListByProgramID retrieves the ledger of a program, oldest first.
func (r *mongoCompletionRepository) ListByProgramID(ctx context.Context, programID string) ([]domain.CompletedWorkout, error) {
	completions := []domain.CompletedWorkout{}
	findOptions := options.Find().SetSort(bson.D{{Key: "completedAt", Value: 1}, {Key: "week", Value: 1}, {Key: "dayOfWeek", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"userProgramId": programID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &completions); err != nil {
		return nil, err
	}
	for i := range completions {
		completions[i].CompletedAt = completions[i].CompletedAt.UTC()
	}
	return completions, nil
}

// EnsureCompletionIndexes creates necessary indexes. Call during startup.
func EnsureCompletionIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// The ledger key
			Keys: bson.D{
				{Key: "userProgramId", Value: 1},
				{Key: "week", Value: 1},
				{Key: "dayOfWeek", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "userProgramId", Value: 1}, {Key: "completedAt", Value: 1}},
			Options: options.Index(),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create indexes for %s: %w", collection.Name(), err)
	}
	return nil
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case string:
		return t == ""
	case *int:
		return t == nil
	case map[string]any:
		return t == nil
	default:
		return v == nil
	}
}
