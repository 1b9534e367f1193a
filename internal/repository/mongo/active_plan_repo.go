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

const activePlanCollectionName = "active_plans"

// mongoActivePlanRepository implements repository.ActivePlanRepository.
type mongoActivePlanRepository struct {
	collection *mongo.Collection
}

// NewMongoActivePlanRepository creates a new ActivePlan repository.
func NewMongoActivePlanRepository(db *mongo.Database) repository.ActivePlanRepository {
	return &mongoActivePlanRepository{collection: db.Collection(activePlanCollectionName)}
}

// Get retrieves the active-plan pointer for a user.
func (r *mongoActivePlanRepository) Get(ctx context.Context, userID primitive.ObjectID) (*domain.ActivePlan, error) {
	var plan domain.ActivePlan
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// Set upserts the pointer in a single operation, so a user can never
// observe two active plans at once. A nil templateID records an explicit
// deactivation.
func (r *mongoActivePlanRepository) Set(ctx context.Context, userID primitive.ObjectID, templateID *primitive.ObjectID, dayIndex int) error {
	filter := bson.M{"userId": userID}
	set := bson.M{
		"userId":    userID,
		"dayIndex":  dayIndex,
		"updatedAt": time.Now().UTC(),
	}
	update := bson.M{"$set": set}
	if templateID != nil && *templateID != primitive.NilObjectID {
		set["templateId"] = *templateID
	} else {
		update["$unset"] = bson.M{"templateId": ""}
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// EnsureActivePlanIndexes creates the unique per-user index. Call during
// startup; the unique constraint is what enforces "at most one pointer".
func EnsureActivePlanIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
