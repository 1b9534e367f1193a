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

const assignmentCollectionName = "assignments"

// mongoAssignmentRepository implements repository.AssignmentRepository.
type mongoAssignmentRepository struct {
	collection *mongo.Collection
}

// NewMongoAssignmentRepository creates a new Assignment repository.
func NewMongoAssignmentRepository(db *mongo.Database) repository.AssignmentRepository {
	return &mongoAssignmentRepository{collection: db.Collection(assignmentCollectionName)}
}

// Create records a coach handing a template to a patient.
func (r *mongoAssignmentRepository) Create(ctx context.Context, a *domain.Assignment) (primitive.ObjectID, error) {
	if a.CoachID == primitive.NilObjectID || a.PatientID == primitive.NilObjectID || a.TemplateID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("assignment requires coachId, patientId, and templateId")
	}
	a.ID = primitive.NewObjectID()
	a.CreatedAt = time.Now().UTC()

	if _, err := r.collection.InsertOne(ctx, a); err != nil {
		return primitive.NilObjectID, err
	}
	return a.ID, nil
}

// GetByPatientID lists the templates assigned to a patient, newest first.
func (r *mongoAssignmentRepository) GetByPatientID(ctx context.Context, patientID primitive.ObjectID) ([]domain.Assignment, error) {
	return r.find(ctx, bson.M{"patientId": patientID})
}

// GetByCoachID lists everything a coach has assigned, newest first.
func (r *mongoAssignmentRepository) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Assignment, error) {
	return r.find(ctx, bson.M{"coachId": coachID})
}

func (r *mongoAssignmentRepository) find(ctx context.Context, filter bson.M) ([]domain.Assignment, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var assignments []domain.Assignment
	if err = cursor.All(ctx, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

// EnsureAssignmentIndexes creates necessary indexes. Call during startup.
func EnsureAssignmentIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "patientId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
