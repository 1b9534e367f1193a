package service

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"coachfit/server/internal/domain"
	"coachfit/server/internal/plan"
	"coachfit/server/internal/repository"
)

// --- Error Definitions ---
var (
	ErrTemplateNotFound     = errors.New("template not found")
	ErrTemplateAccessDenied = errors.New("access denied to this template")
)

type TemplateService interface {
	ListTemplates(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Template, error)
	GetTemplate(ctx context.Context, ownerID, templateID primitive.ObjectID) (*domain.Template, error)
	SaveTemplate(ctx context.Context, ownerID primitive.ObjectID, tpl domain.Template) (*domain.Template, error)
	DeleteTemplate(ctx context.Context, ownerID, templateID primitive.ObjectID) error
	DuplicateTemplate(ctx context.Context, ownerID, templateID primitive.ObjectID) (*domain.Template, error)
	Summary(ctx context.Context, ownerID, templateID primitive.ObjectID) (*plan.Summary, error)
}

// templateService implements the TemplateService interface.
type templateService struct {
	templateRepo repository.TemplateRepository
}

// NewTemplateService creates a new instance of templateService.
func NewTemplateService(templateRepo repository.TemplateRepository) TemplateService {
	return &templateService{templateRepo: templateRepo}
}

// ListTemplates returns all templates owned by the user.
func (s *templateService) ListTemplates(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Template, error) {
	if ownerID == primitive.NilObjectID {
		return nil, errors.New("owner ID cannot be nil")
	}
	return s.templateRepo.GetByOwnerID(ctx, ownerID)
}

// GetTemplate returns one template, enforcing ownership.
func (s *templateService) GetTemplate(ctx context.Context, ownerID, templateID primitive.ObjectID) (*domain.Template, error) {
	tpl, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	if tpl.OwnerID != ownerID {
		return nil, ErrTemplateAccessDenied
	}
	return tpl, nil
}

// SaveTemplate upserts a template draft: no ID means create, an ID means
// update in place. A blank name gets the default label, and a draft with no
// days gets the starter days so a persisted template always has at least
// one.
func (s *templateService) SaveTemplate(ctx context.Context, ownerID primitive.ObjectID, tpl domain.Template) (*domain.Template, error) {
	if ownerID == primitive.NilObjectID {
		return nil, errors.New("owner ID cannot be nil")
	}
	tpl.OwnerID = ownerID
	if len(tpl.Days) == 0 {
		tpl.Days = plan.New(ownerID).Days
	}
	tpl = plan.EnsureName(tpl)

	if tpl.ID == primitive.NilObjectID {
		id, err := s.templateRepo.Create(ctx, &tpl)
		if err != nil {
			return nil, err
		}
		return s.templateRepo.GetByID(ctx, id)
	}

	// Ownership check before the update touches anything.
	existing, err := s.templateRepo.GetByID(ctx, tpl.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	if existing.OwnerID != ownerID {
		return nil, ErrTemplateAccessDenied
	}

	if err := s.templateRepo.Update(ctx, &tpl); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return s.templateRepo.GetByID(ctx, tpl.ID)
}

// DeleteTemplate removes a template owned by the user.
func (s *templateService) DeleteTemplate(ctx context.Context, ownerID, templateID primitive.ObjectID) error {
	if err := s.templateRepo.Delete(ctx, templateID, ownerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTemplateNotFound
		}
		return err
	}
	return nil
}

// DuplicateTemplate deep-copies a template under the same owner. The copy
// gets a fresh ID and the marked name; day and entry data is identical.
func (s *templateService) DuplicateTemplate(ctx context.Context, ownerID, templateID primitive.ObjectID) (*domain.Template, error) {
	src, err := s.GetTemplate(ctx, ownerID, templateID)
	if err != nil {
		return nil, err
	}

	copy := plan.Duplicate(*src)
	id, err := s.templateRepo.Create(ctx, &copy)
	if err != nil {
		return nil, err
	}
	return s.templateRepo.GetByID(ctx, id)
}

// Summary computes the series-per-muscle-group breakdown of a template.
func (s *templateService) Summary(ctx context.Context, ownerID, templateID primitive.ObjectID) (*plan.Summary, error) {
	tpl, err := s.GetTemplate(ctx, ownerID, templateID)
	if err != nil {
		return nil, err
	}
	summary := plan.SeriesByGroup(*tpl)
	return &summary, nil
}
