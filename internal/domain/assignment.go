package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Assignment records that a coach handed a template to a patient. It is an
// append-only history; the patient decides separately which assigned
// template (if any) becomes their active plan.
type Assignment struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CoachID    primitive.ObjectID `bson:"coachId" json:"coachId"`
	PatientID  primitive.ObjectID `bson:"patientId" json:"patientId"`
	TemplateID primitive.ObjectID `bson:"templateId" json:"templateId"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}
