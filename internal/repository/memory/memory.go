// Package memory provides transient, mutex-guarded implementations of the
// repository interfaces. They back the service tests and let the server run
// without a database when no Mongo URI is configured.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"coachfit/server/internal/domain"
	"coachfit/server/internal/repository"
)

// Store holds every collection behind one lock. Individual repository views
// are obtained from it so that cross-collection operations (tests seeding
// users and templates together) share the same data.
type Store struct {
	mu          sync.RWMutex
	users       map[primitive.ObjectID]domain.User
	templates   map[primitive.ObjectID]domain.Template
	activePlans map[primitive.ObjectID]domain.ActivePlan
	logs        map[primitive.ObjectID]domain.WorkoutLog
	assignments map[primitive.ObjectID]domain.Assignment
	uploads     map[primitive.ObjectID]domain.Upload
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		users:       make(map[primitive.ObjectID]domain.User),
		templates:   make(map[primitive.ObjectID]domain.Template),
		activePlans: make(map[primitive.ObjectID]domain.ActivePlan),
		logs:        make(map[primitive.ObjectID]domain.WorkoutLog),
		assignments: make(map[primitive.ObjectID]domain.Assignment),
		uploads:     make(map[primitive.ObjectID]domain.Upload),
	}
}

func (s *Store) Users() repository.UserRepository             { return (*userRepo)(s) }
func (s *Store) Templates() repository.TemplateRepository     { return (*templateRepo)(s) }
func (s *Store) ActivePlans() repository.ActivePlanRepository { return (*activePlanRepo)(s) }
func (s *Store) WorkoutLogs() repository.WorkoutLogRepository { return (*workoutLogRepo)(s) }
func (s *Store) Assignments() repository.AssignmentRepository { return (*assignmentRepo)(s) }
func (s *Store) Uploads() repository.UploadRepository         { return (*uploadRepo)(s) }

// --- users ---

type userRepo Store

func (r *userRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return user.ID, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := u
	return &out, nil
}

func (r *userRepo) AddPatientToCoach(_ context.Context, coachID, patientID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	coach, ok := r.users[coachID]
	if !ok || coach.Role != domain.RoleCoach {
		return repository.ErrNotFound
	}
	for _, id := range coach.PatientIDs {
		if id == patientID {
			return nil
		}
	}
	coach.PatientIDs = append(coach.PatientIDs, patientID)
	coach.UpdatedAt = time.Now().UTC()
	r.users[coachID] = coach
	return nil
}

func (r *userRepo) SetCoachForPatient(_ context.Context, patientID, coachID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	patient, ok := r.users[patientID]
	if !ok || patient.Role != domain.RolePatient {
		return repository.ErrNotFound
	}
	patient.CoachID = &coachID
	patient.UpdatedAt = time.Now().UTC()
	r.users[patientID] = patient
	return nil
}

func (r *userRepo) GetPatientsByCoachID(_ context.Context, coachID primitive.ObjectID) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.User
	for _, u := range r.users {
		if u.Role == domain.RolePatient && u.CoachID != nil && *u.CoachID == coachID {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- templates ---

type templateRepo Store

func (r *templateRepo) Create(_ context.Context, tpl *domain.Template) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tpl.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	tpl.CreatedAt = now
	tpl.UpdatedAt = now
	r.templates[tpl.ID] = tpl.Clone()
	return tpl.ID, nil
}

func (r *templateRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tpl, ok := r.templates[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := tpl.Clone()
	return &out, nil
}

func (r *templateRepo) GetByOwnerID(_ context.Context, ownerID primitive.ObjectID) ([]domain.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Template
	for _, tpl := range r.templates {
		if tpl.OwnerID == ownerID {
			out = append(out, tpl.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *templateRepo) Update(_ context.Context, tpl *domain.Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.templates[tpl.ID]
	if !ok || existing.OwnerID != tpl.OwnerID {
		return repository.ErrNotFound
	}
	next := tpl.Clone()
	next.CreatedAt = existing.CreatedAt
	next.UpdatedAt = time.Now().UTC()
	r.templates[tpl.ID] = next
	return nil
}

func (r *templateRepo) Delete(_ context.Context, id, ownerID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.templates[id]
	if !ok || existing.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	delete(r.templates, id)
	return nil
}

// --- active plans ---

type activePlanRepo Store

func (r *activePlanRepo) Get(_ context.Context, userID primitive.ObjectID) (*domain.ActivePlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	plan, ok := r.activePlans[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := plan
	return &out, nil
}

func (r *activePlanRepo) Set(_ context.Context, userID primitive.ObjectID, templateID *primitive.ObjectID, dayIndex int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	plan := domain.ActivePlan{UserID: userID, DayIndex: dayIndex, UpdatedAt: time.Now().UTC()}
	if templateID != nil && *templateID != primitive.NilObjectID {
		id := *templateID
		plan.TemplateID = &id
	}
	r.activePlans[userID] = plan
	return nil
}

// --- workout logs ---

type workoutLogRepo Store

func (r *workoutLogRepo) Upsert(_ context.Context, log *domain.WorkoutLog) (*domain.WorkoutLog, error) {
	if _, err := domain.ParseDate(log.Date); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	for id, existing := range r.logs {
		if existing.UserID == log.UserID && existing.Date == log.Date {
			existing.Entries = log.Entries
			existing.TemplateID = log.TemplateID
			existing.DayIndex = log.DayIndex
			existing.UpdatedAt = now
			r.logs[id] = existing
			out := existing
			return &out, nil
		}
	}
	saved := *log
	saved.ID = primitive.NewObjectID()
	saved.CreatedAt = now
	saved.UpdatedAt = now
	r.logs[saved.ID] = saved
	out := saved
	return &out, nil
}

func (r *workoutLogRepo) GetByUserAndDate(_ context.Context, userID primitive.ObjectID, date string) (*domain.WorkoutLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, l := range r.logs {
		if l.UserID == userID && l.Date == date {
			out := l
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *workoutLogRepo) GetByUserID(_ context.Context, userID primitive.ObjectID, from, to string) ([]domain.WorkoutLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.WorkoutLog
	for _, l := range r.logs {
		if l.UserID != userID {
			continue
		}
		if from != "" && l.Date < from {
			continue
		}
		if to != "" && l.Date > to {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (r *workoutLogRepo) Delete(_ context.Context, userID primitive.ObjectID, date string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, l := range r.logs {
		if l.UserID == userID && l.Date == date {
			delete(r.logs, id)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *workoutLogRepo) SetUploadID(_ context.Context, logID, uploadID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.logs[logID]
	if !ok {
		return repository.ErrNotFound
	}
	l.UploadID = &uploadID
	l.UpdatedAt = time.Now().UTC()
	r.logs[logID] = l
	return nil
}

// --- assignments ---

type assignmentRepo Store

func (r *assignmentRepo) Create(_ context.Context, a *domain.Assignment) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = primitive.NewObjectID()
	a.CreatedAt = time.Now().UTC()
	r.assignments[a.ID] = *a
	return a.ID, nil
}

func (r *assignmentRepo) GetByPatientID(_ context.Context, patientID primitive.ObjectID) ([]domain.Assignment, error) {
	return (*Store)(r).findAssignments(func(a domain.Assignment) bool { return a.PatientID == patientID })
}

func (r *assignmentRepo) GetByCoachID(_ context.Context, coachID primitive.ObjectID) ([]domain.Assignment, error) {
	return (*Store)(r).findAssignments(func(a domain.Assignment) bool { return a.CoachID == coachID })
}

func (s *Store) findAssignments(match func(domain.Assignment) bool) ([]domain.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Assignment
	for _, a := range s.assignments {
		if match(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// --- uploads ---

type uploadRepo Store

func (r *uploadRepo) Create(_ context.Context, upload *domain.Upload) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	upload.ID = primitive.NewObjectID()
	upload.UploadedAt = time.Now().UTC()
	r.uploads[upload.ID] = *upload
	return upload.ID, nil
}

func (r *uploadRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Upload, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.uploads[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := u
	return &out, nil
}

func (r *uploadRepo) GetByLogID(_ context.Context, logID primitive.ObjectID) (*domain.Upload, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.uploads {
		if u.LogID == logID {
			out := u
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}
