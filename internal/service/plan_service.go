package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"coachfit/server/internal/calendar"
	"coachfit/server/internal/classify"
	"coachfit/server/internal/domain"
	"coachfit/server/internal/plan"
	"coachfit/server/internal/repository"
	"coachfit/server/internal/storage"
)

// --- Error Definitions ---
var (
	ErrPlanTemplateNotUsable = errors.New("template is not owned by or assigned to this user")
	ErrNoActivePlan          = errors.New("no active plan for this user")
	ErrLogNotFound           = errors.New("workout log not found")
	ErrInvalidDate           = errors.New("date must be in YYYY-MM-DD format")
	ErrStorageDisabled       = errors.New("file storage is not configured")
	ErrInvalidContentType    = errors.New("invalid or missing video content type")
	ErrUploadMissing         = errors.New("no video uploaded for this log")
)

// ActivePlanView is the active-plan pointer with its template resolved, the
// shape the dashboard renders from.
type ActivePlanView struct {
	domain.ActivePlan
	Template *domain.Template `json:"template,omitempty"`
}

// CalendarCell is a grid cell annotated with whether the user logged
// anything that day.
type CalendarCell struct {
	calendar.Cell
	HasActivity bool `json:"hasActivity"`
}

// UploadURLResponse returns a presigned URL plus the object key the client
// reports back on confirm.
type UploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

type PlanService interface {
	// Active plan
	GetActivePlan(ctx context.Context, userID primitive.ObjectID) (*ActivePlanView, error)
	Activate(ctx context.Context, userID, templateID primitive.ObjectID, dayIndex int) (*ActivePlanView, error)
	Deactivate(ctx context.Context, userID primitive.ObjectID) error

	// Workout logs
	LogWorkout(ctx context.Context, userID primitive.ObjectID, workout domain.WorkoutLog) (*domain.WorkoutLog, error)
	GetLogs(ctx context.Context, userID primitive.ObjectID, from, to string) ([]domain.WorkoutLog, error)
	DeleteLog(ctx context.Context, userID primitive.ObjectID, date string) error

	// Calendar
	Calendar(ctx context.Context, userID primitive.ObjectID, ref string, view calendar.View) ([]CalendarCell, error)

	// Session video
	RequestVideoUploadURL(ctx context.Context, userID primitive.ObjectID, date, contentType string) (*UploadURLResponse, error)
	ConfirmVideoUpload(ctx context.Context, userID primitive.ObjectID, date, objectKey, fileName string, fileSize int64, contentType string) (*domain.WorkoutLog, error)
	VideoDownloadURL(ctx context.Context, userID primitive.ObjectID, date string) (string, error)
}

// planService implements the PlanService interface.
type planService struct {
	templateRepo   repository.TemplateRepository
	activePlanRepo repository.ActivePlanRepository
	logRepo        repository.WorkoutLogRepository
	assignmentRepo repository.AssignmentRepository
	uploadRepo     repository.UploadRepository
	fileStorage    storage.FileStorage // nil when S3 is not configured
	clock          func() time.Time    // swappable in tests
}

// NewPlanService creates a new instance of planService. fileStorage may be
// nil; video operations then fail with ErrStorageDisabled.
func NewPlanService(
	templateRepo repository.TemplateRepository,
	activePlanRepo repository.ActivePlanRepository,
	logRepo repository.WorkoutLogRepository,
	assignmentRepo repository.AssignmentRepository,
	uploadRepo repository.UploadRepository,
	fileStorage storage.FileStorage,
) PlanService {
	return &planService{
		templateRepo:   templateRepo,
		activePlanRepo: activePlanRepo,
		logRepo:        logRepo,
		assignmentRepo: assignmentRepo,
		uploadRepo:     uploadRepo,
		fileStorage:    fileStorage,
		clock:          func() time.Time { return time.Now().UTC() },
	}
}

// === Active plan ===

// GetActivePlan returns the pointer with its template resolved, or nil when
// the user never activated anything (or explicitly deactivated).
func (s *planService) GetActivePlan(ctx context.Context, userID primitive.ObjectID) (*ActivePlanView, error) {
	pointer, err := s.activePlanRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	view := &ActivePlanView{ActivePlan: *pointer}
	if !pointer.IsActive() {
		return view, nil
	}

	tpl, err := s.templateRepo.GetByID(ctx, *pointer.TemplateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Dangling pointer: the template was deleted underneath it.
			view.TemplateID = nil
			return view, nil
		}
		return nil, err
	}
	view.Template = tpl
	return view, nil
}

// Activate points the user at a template. The template must be usable by
// the user: either they own it, or a coach assigned it to them. Replacing a
// previous pointer is a single upsert, so no intermediate state with two
// plans is ever observable.
func (s *planService) Activate(ctx context.Context, userID, templateID primitive.ObjectID, dayIndex int) (*ActivePlanView, error) {
	if userID == primitive.NilObjectID || templateID == primitive.NilObjectID {
		return nil, errors.New("user ID and template ID are required")
	}

	tpl, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}

	if tpl.OwnerID != userID {
		assigned, err := s.isAssigned(ctx, userID, templateID)
		if err != nil {
			return nil, err
		}
		if !assigned {
			return nil, ErrPlanTemplateNotUsable
		}
	}

	if dayIndex < 0 || dayIndex >= len(tpl.Days) {
		dayIndex = 0
	}
	if err := s.activePlanRepo.Set(ctx, userID, &templateID, dayIndex); err != nil {
		return nil, err
	}
	return s.GetActivePlan(ctx, userID)
}

// Deactivate clears the pointer (templateId becomes null, the record stays).
func (s *planService) Deactivate(ctx context.Context, userID primitive.ObjectID) error {
	return s.activePlanRepo.Set(ctx, userID, nil, 0)
}

func (s *planService) isAssigned(ctx context.Context, userID, templateID primitive.ObjectID) (bool, error) {
	assignments, err := s.assignmentRepo.GetByPatientID(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, a := range assignments {
		if a.TemplateID == templateID {
			return true, nil
		}
	}
	return false, nil
}

// === Workout logs ===

// LogWorkout upserts the canonical log for (user, date). Numeric fields in
// the entries go through the coerce-and-clamp policy and entries missing a
// muscle group get one from the classifier, so aggregate views downstream
// never see untagged exercises.
func (s *planService) LogWorkout(ctx context.Context, userID primitive.ObjectID, workout domain.WorkoutLog) (*domain.WorkoutLog, error) {
	if _, err := domain.ParseDate(workout.Date); err != nil {
		return nil, ErrInvalidDate
	}
	workout.UserID = userID

	for i := range workout.Entries {
		e := &workout.Entries[i]
		if e.Type == domain.LogEntryTypeNote {
			e.Text = strings.TrimSpace(e.Text)
			continue
		}
		if e.MuscleGroup == "" {
			e.MuscleGroup = classify.DetectGroup(e.Name)
		}
		e.TargetSets = plan.CoerceCount(e.TargetSets)
		e.TargetReps = plan.CoerceCount(e.TargetReps)
		for j := range e.Sets {
			e.Sets[j].Reps = plan.CoerceCount(e.Sets[j].Reps)
			if e.Sets[j].Weight != nil && *e.Sets[j].Weight < 0 {
				zero := 0.0
				e.Sets[j].Weight = &zero
			}
		}
	}

	return s.logRepo.Upsert(ctx, &workout)
}

// GetLogs lists the user's logs, optionally bounded by an inclusive
// YYYY-MM-DD range.
func (s *planService) GetLogs(ctx context.Context, userID primitive.ObjectID, from, to string) ([]domain.WorkoutLog, error) {
	for _, d := range []string{from, to} {
		if d == "" {
			continue
		}
		if _, err := domain.ParseDate(d); err != nil {
			return nil, ErrInvalidDate
		}
	}
	return s.logRepo.GetByUserID(ctx, userID, from, to)
}

// DeleteLog removes the log for one date, along with any session video
// attached to it. Video cleanup failures do not resurrect the log.
func (s *planService) DeleteLog(ctx context.Context, userID primitive.ObjectID, date string) error {
	if _, err := domain.ParseDate(date); err != nil {
		return ErrInvalidDate
	}

	existing, err := s.logRepo.GetByUserAndDate(ctx, userID, date)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrLogNotFound
		}
		return err
	}

	if err := s.logRepo.Delete(ctx, userID, date); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrLogNotFound
		}
		return err
	}

	if existing.UploadID != nil && s.fileStorage != nil {
		upload, err := s.uploadRepo.GetByID(ctx, *existing.UploadID)
		if err != nil {
			return nil
		}
		if err := s.fileStorage.DeleteObject(ctx, upload.ObjectKey); err != nil {
			log.WithError(err).WithField("objectKey", upload.ObjectKey).Warn("failed to delete session video")
		}
	}
	return nil
}

// === Calendar ===

// Calendar produces the week or month grid around ref, with each cell
// annotated from the user's logs.
func (s *planService) Calendar(ctx context.Context, userID primitive.ObjectID, ref string, view calendar.View) ([]CalendarCell, error) {
	refDate, err := domain.ParseDate(ref)
	if err != nil {
		return nil, ErrInvalidDate
	}

	cells := calendar.Grid(refDate, view, s.clock())

	// One range query covers the whole grid.
	logs, err := s.logRepo.GetByUserID(ctx, userID, cells[0].Date, cells[len(cells)-1].Date)
	if err != nil {
		return nil, err
	}
	marks := calendar.Marks(logs)

	out := make([]CalendarCell, len(cells))
	for i, c := range cells {
		out[i] = CalendarCell{Cell: c, HasActivity: marks.Has(c.Date)}
	}
	return out, nil
}

// === Session video ===

// RequestVideoUploadURL presigns a PUT for attaching a video to the log of
// the given date. The log must already exist.
func (s *planService) RequestVideoUploadURL(ctx context.Context, userID primitive.ObjectID, date, contentType string) (*UploadURLResponse, error) {
	if s.fileStorage == nil {
		return nil, ErrStorageDisabled
	}
	if contentType == "" || !strings.HasPrefix(strings.ToLower(contentType), "video/") {
		return nil, ErrInvalidContentType
	}

	workout, err := s.logRepo.GetByUserAndDate(ctx, userID, date)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLogNotFound
		}
		return nil, err
	}

	ext := ""
	if parts := strings.Split(contentType, "/"); len(parts) == 2 {
		ext = parts[1]
	}
	objectKey := path.Join("logs", userID.Hex(), workout.ID.Hex(), fmt.Sprintf("%s.%s", uuid.NewString(), ext))

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, err
	}
	return &UploadURLResponse{UploadURL: uploadURL, ObjectKey: objectKey}, nil
}

// ConfirmVideoUpload records the upload metadata and links it to the log.
// Called after the client PUT the file against the presigned URL.
func (s *planService) ConfirmVideoUpload(ctx context.Context, userID primitive.ObjectID, date, objectKey, fileName string, fileSize int64, contentType string) (*domain.WorkoutLog, error) {
	if s.fileStorage == nil {
		return nil, ErrStorageDisabled
	}
	if objectKey == "" {
		return nil, errors.New("object key is required")
	}

	workout, err := s.logRepo.GetByUserAndDate(ctx, userID, date)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLogNotFound
		}
		return nil, err
	}

	upload := &domain.Upload{
		UserID:      userID,
		LogID:       workout.ID,
		ObjectKey:   objectKey,
		FileName:    fileName,
		FileSize:    fileSize,
		ContentType: contentType,
	}
	uploadID, err := s.uploadRepo.Create(ctx, upload)
	if err != nil {
		return nil, err
	}

	if err := s.logRepo.SetUploadID(ctx, workout.ID, uploadID); err != nil {
		return nil, err
	}
	return s.logRepo.GetByUserAndDate(ctx, userID, date)
}

// VideoDownloadURL presigns a GET for the video attached to the log of the
// given date. Callers are responsible for deciding who may ask for whose
// logs (a patient for their own, a coach for their patients').
func (s *planService) VideoDownloadURL(ctx context.Context, userID primitive.ObjectID, date string) (string, error) {
	if s.fileStorage == nil {
		return "", ErrStorageDisabled
	}

	workout, err := s.logRepo.GetByUserAndDate(ctx, userID, date)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrLogNotFound
		}
		return "", err
	}
	if workout.UploadID == nil {
		return "", ErrUploadMissing
	}

	upload, err := s.uploadRepo.GetByID(ctx, *workout.UploadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUploadMissing
		}
		return "", err
	}
	return s.fileStorage.GeneratePresignedDownloadURL(ctx, upload.ObjectKey, storage.DefaultPresignedURLExpiry)
}
