package service

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"coachfit/server/internal/domain"
	"coachfit/server/internal/repository"
)

// --- Error Definitions ---
var (
	ErrPatientNotFound        = errors.New("patient not found with the provided email")
	ErrUserNotPatient         = errors.New("user found but is not a patient")
	ErrPatientAlreadyAssigned = errors.New("patient is already assigned to another coach")
	ErrPatientNotOwned        = errors.New("patient does not belong to this coach")
	ErrAlreadyAssigned        = errors.New("template is already assigned to this patient")
)

// AssignmentView is an assignment enriched with the template it points to,
// which is what both coach and patient lists render.
type AssignmentView struct {
	domain.Assignment
	Template *domain.Template `json:"template,omitempty"`
}

// PatientActivity is a coach-side summary of what a patient has been doing.
type PatientActivity struct {
	Patient  domain.User `json:"patient"`
	LogCount int         `json:"logCount"`
	LastDate string      `json:"lastDate,omitempty"` // YYYY-MM-DD of the most recent log
}

type CoachService interface {
	AddPatientByEmail(ctx context.Context, coachID primitive.ObjectID, patientEmail string) (*domain.User, error)
	GetPatients(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error)
	AssignTemplate(ctx context.Context, coachID, patientID, templateID primitive.ObjectID) (*domain.Assignment, error)
	GetAssignmentsForPatient(ctx context.Context, patientID primitive.ObjectID) ([]AssignmentView, error)
	GetAssignedTemplates(ctx context.Context, patientID primitive.ObjectID) ([]domain.Template, error)
	GetPatientActivity(ctx context.Context, coachID, patientID primitive.ObjectID) (*PatientActivity, error)
	GetPatientLogs(ctx context.Context, coachID, patientID primitive.ObjectID, from, to string) ([]domain.WorkoutLog, error)
	VerifyPatient(ctx context.Context, coachID, patientID primitive.ObjectID) (*domain.User, error)
}

// coachService implements the CoachService interface.
type coachService struct {
	userRepo       repository.UserRepository
	templateRepo   repository.TemplateRepository
	assignmentRepo repository.AssignmentRepository
	logRepo        repository.WorkoutLogRepository
}

// NewCoachService creates a new instance of coachService.
func NewCoachService(
	userRepo repository.UserRepository,
	templateRepo repository.TemplateRepository,
	assignmentRepo repository.AssignmentRepository,
	logRepo repository.WorkoutLogRepository,
) CoachService {
	return &coachService{
		userRepo:       userRepo,
		templateRepo:   templateRepo,
		assignmentRepo: assignmentRepo,
		logRepo:        logRepo,
	}
}

// AddPatientByEmail links an existing patient account to the coach's
// roster. A patient belongs to at most one coach at a time.
func (s *coachService) AddPatientByEmail(ctx context.Context, coachID primitive.ObjectID, patientEmail string) (*domain.User, error) {
	email := normalizeEmail(patientEmail)
	if email == "" {
		return nil, ErrPatientNotFound
	}

	patient, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	if !patient.IsPatient() {
		return nil, ErrUserNotPatient
	}
	if patient.CoachID != nil {
		if *patient.CoachID == coachID {
			// Idempotent: adding an already-linked patient is not an error.
			return patient, nil
		}
		return nil, ErrPatientAlreadyAssigned
	}

	if err := s.userRepo.AddPatientToCoach(ctx, coachID, patient.ID); err != nil {
		return nil, err
	}
	if err := s.userRepo.SetCoachForPatient(ctx, patient.ID, coachID); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, patient.ID)
}

// GetPatients lists the patients on the coach's roster.
func (s *coachService) GetPatients(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error) {
	return s.userRepo.GetPatientsByCoachID(ctx, coachID)
}

// AssignTemplate hands one of the coach's templates to one of their
// patients. The patient can then activate it like their own.
func (s *coachService) AssignTemplate(ctx context.Context, coachID, patientID, templateID primitive.ObjectID) (*domain.Assignment, error) {
	tpl, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	if tpl.OwnerID != coachID {
		return nil, ErrTemplateAccessDenied
	}

	patient, err := s.userRepo.GetByID(ctx, patientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	if patient.CoachID == nil || *patient.CoachID != coachID {
		return nil, ErrPatientNotOwned
	}

	existing, err := s.assignmentRepo.GetByPatientID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	for _, a := range existing {
		if a.TemplateID == templateID {
			return nil, ErrAlreadyAssigned
		}
	}

	assignment := &domain.Assignment{
		CoachID:    coachID,
		PatientID:  patientID,
		TemplateID: templateID,
	}
	id, err := s.assignmentRepo.Create(ctx, assignment)
	if err != nil {
		return nil, err
	}
	assignment.ID = id
	return assignment, nil
}

// GetAssignmentsForPatient lists a patient's assignments with their
// templates resolved. Assignments whose template has since been deleted are
// skipped rather than surfaced as errors.
func (s *coachService) GetAssignmentsForPatient(ctx context.Context, patientID primitive.ObjectID) ([]AssignmentView, error) {
	assignments, err := s.assignmentRepo.GetByPatientID(ctx, patientID)
	if err != nil {
		return nil, err
	}

	views := make([]AssignmentView, 0, len(assignments))
	for _, a := range assignments {
		tpl, err := s.templateRepo.GetByID(ctx, a.TemplateID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, err
		}
		views = append(views, AssignmentView{Assignment: a, Template: tpl})
	}
	return views, nil
}

// GetAssignedTemplates returns just the templates a patient has been
// handed, in assignment order.
func (s *coachService) GetAssignedTemplates(ctx context.Context, patientID primitive.ObjectID) ([]domain.Template, error) {
	views, err := s.GetAssignmentsForPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	templates := make([]domain.Template, 0, len(views))
	for _, v := range views {
		templates = append(templates, *v.Template)
	}
	return templates, nil
}

// VerifyPatient checks that the patient is on the coach's roster and
// returns the patient record. Every coach-side read of patient data goes
// through this.
func (s *coachService) VerifyPatient(ctx context.Context, coachID, patientID primitive.ObjectID) (*domain.User, error) {
	patient, err := s.userRepo.GetByID(ctx, patientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	if patient.CoachID == nil || *patient.CoachID != coachID {
		return nil, ErrPatientNotOwned
	}
	return patient, nil
}

// GetPatientLogs lets a coach read a patient's workout logs, optionally
// bounded by an inclusive YYYY-MM-DD range.
func (s *coachService) GetPatientLogs(ctx context.Context, coachID, patientID primitive.ObjectID, from, to string) ([]domain.WorkoutLog, error) {
	if _, err := s.VerifyPatient(ctx, coachID, patientID); err != nil {
		return nil, err
	}
	return s.logRepo.GetByUserID(ctx, patientID, from, to)
}

// GetPatientActivity summarizes a patient's logging history for their
// coach.
func (s *coachService) GetPatientActivity(ctx context.Context, coachID, patientID primitive.ObjectID) (*PatientActivity, error) {
	patient, err := s.VerifyPatient(ctx, coachID, patientID)
	if err != nil {
		return nil, err
	}

	logs, err := s.logRepo.GetByUserID(ctx, patientID, "", "")
	if err != nil {
		return nil, err
	}

	activity := &PatientActivity{Patient: *patient, LogCount: len(logs)}
	for _, l := range logs {
		if l.Date > activity.LastDate {
			activity.LastDate = l.Date
		}
	}
	return activity, nil
}
