package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"coachfit/server/internal/domain"
	"coachfit/server/internal/repository"
)

const workoutLogCollectionName = "workout_logs"

// mongoWorkoutLogRepository implements repository.WorkoutLogRepository.
type mongoWorkoutLogRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutLogRepository creates a new WorkoutLog repository.
func NewMongoWorkoutLogRepository(db *mongo.Database) repository.WorkoutLogRepository {
	return &mongoWorkoutLogRepository{collection: db.Collection(workoutLogCollectionName)}
}

// Upsert writes the canonical log for (userId, date), replacing the entries
// if one already exists. The unique compound index backs the one-log-per-day
// policy.
func (r *mongoWorkoutLogRepository) Upsert(ctx context.Context, log *domain.WorkoutLog) (*domain.WorkoutLog, error) {
	if log.UserID == primitive.NilObjectID || log.Date == "" {
		return nil, errors.New("log requires userId and date")
	}
	if _, err := domain.ParseDate(log.Date); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	filter := bson.M{"userId": log.UserID, "date": log.Date}
	update := bson.M{
		"$set": bson.M{
			"entries":    log.Entries,
			"templateId": log.TemplateID,
			"dayIndex":   log.DayIndex,
			"updatedAt":  now,
		},
		"$setOnInsert": bson.M{
			"userId":    log.UserID,
			"date":      log.Date,
			"createdAt": now,
		},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var saved domain.WorkoutLog
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// GetByUserAndDate retrieves the single log for one calendar date.
func (r *mongoWorkoutLogRepository) GetByUserAndDate(ctx context.Context, userID primitive.ObjectID, date string) (*domain.WorkoutLog, error) {
	var log domain.WorkoutLog
	err := r.collection.FindOne(ctx, bson.M{"userId": userID, "date": date}).Decode(&log)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &log, nil
}

// GetByUserID retrieves a user's logs, optionally bounded by an inclusive
// date range, newest first. The YYYY-MM-DD format sorts lexicographically.
func (r *mongoWorkoutLogRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID, from, to string) ([]domain.WorkoutLog, error) {
	filter := bson.M{"userId": userID}
	dateRange := bson.M{}
	if from != "" {
		dateRange["$gte"] = from
	}
	if to != "" {
		dateRange["$lte"] = to
	}
	if len(dateRange) > 0 {
		filter["date"] = dateRange
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []domain.WorkoutLog
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// Delete removes the log for one calendar date.
func (r *mongoWorkoutLogRepository) Delete(ctx context.Context, userID primitive.ObjectID, date string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"userId": userID, "date": date})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetUploadID links a confirmed session video to its log.
func (r *mongoWorkoutLogRepository) SetUploadID(ctx context.Context, logID, uploadID primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{"uploadId": uploadID, "updatedAt": time.Now().UTC()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": logID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureWorkoutLogIndexes creates the unique (userId, date) index backing
// the one-log-per-day policy. Call during startup.
func EnsureWorkoutLogIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
