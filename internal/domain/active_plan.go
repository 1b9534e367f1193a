package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActivePlan is a per-user pointer to the single template the user is
// currently following. At most one exists per user; activating a new
// template replaces the pointer, deactivating clears TemplateID.
//
// The referenced template may belong to a different user (a coach assigning
// plans to a patient), so this is an association, not ownership.
type ActivePlan struct {
	UserID     primitive.ObjectID  `bson:"userId" json:"userId"`
	TemplateID *primitive.ObjectID `bson:"templateId,omitempty" json:"templateId,omitempty"`
	DayIndex   int                 `bson:"dayIndex" json:"dayIndex"` // Which day the user is currently on
	UpdatedAt  time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// IsActive reports whether the pointer currently references a template.
func (p *ActivePlan) IsActive() bool {
	return p != nil && p.TemplateID != nil && *p.TemplateID != primitive.NilObjectID
}
