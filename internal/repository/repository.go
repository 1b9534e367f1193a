package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"coachfit/server/internal/domain"
)

// Error constants for the repository layer.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicate    = RepositoryError("duplicate key")
	ErrUpdateFailed = RepositoryError("update failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	AddPatientToCoach(ctx context.Context, coachID, patientID primitive.ObjectID) error
	SetCoachForPatient(ctx context.Context, patientID, coachID primitive.ObjectID) error
	GetPatientsByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error)
}

// TemplateRepository defines the interface for interacting with workout
// templates. All reads and writes except GetByID are owner-scoped.
type TemplateRepository interface {
	Create(ctx context.Context, tpl *domain.Template) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Template, error)
	GetByOwnerID(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Template, error)
	Update(ctx context.Context, tpl *domain.Template) error
	Delete(ctx context.Context, id, ownerID primitive.ObjectID) error
}

// ActivePlanRepository manages the per-user active-plan pointer. Set is an
// atomic upsert: from the caller's point of view there is never an
// intermediate state with two pointers.
type ActivePlanRepository interface {
	Get(ctx context.Context, userID primitive.ObjectID) (*domain.ActivePlan, error)
	Set(ctx context.Context, userID primitive.ObjectID, templateID *primitive.ObjectID, dayIndex int) error
}

// WorkoutLogRepository stores logged sessions. One canonical log exists per
// (userID, date); Upsert replaces the entries for that date.
type WorkoutLogRepository interface {
	Upsert(ctx context.Context, log *domain.WorkoutLog) (*domain.WorkoutLog, error)
	GetByUserAndDate(ctx context.Context, userID primitive.ObjectID, date string) (*domain.WorkoutLog, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID, from, to string) ([]domain.WorkoutLog, error)
	Delete(ctx context.Context, userID primitive.ObjectID, date string) error
	SetUploadID(ctx context.Context, logID, uploadID primitive.ObjectID) error
}

// AssignmentRepository records which templates a coach handed to which
// patients.
type AssignmentRepository interface {
	Create(ctx context.Context, a *domain.Assignment) (primitive.ObjectID, error)
	GetByPatientID(ctx context.Context, patientID primitive.ObjectID) ([]domain.Assignment, error)
	GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Assignment, error)
}

// UploadRepository stores session-video metadata.
type UploadRepository interface {
	Create(ctx context.Context, upload *domain.Upload) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Upload, error)
	GetByLogID(ctx context.Context, logID primitive.ObjectID) (*domain.Upload, error)
}
