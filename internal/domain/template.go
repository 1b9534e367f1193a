package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultTemplateName is stored when a template is saved with a blank name.
const DefaultTemplateName = "Scheda senza titolo"

// Default prescription targets applied when an exercise is added to a day.
const (
	DefaultTargetSets = 3
	DefaultTargetReps = 10
)

// Template is a reusable, named multi-day workout plan owned by one user
// (a coach building plans for patients, or a patient building their own).
type Template struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID   primitive.ObjectID `bson:"ownerId" json:"ownerId"`
	Name      string             `bson:"name" json:"name"`
	Days      []Day              `bson:"days" json:"days"` // Insertion order is the training order (Day 1, Day 2, ...)
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Day is one training day inside a template. The name defaults to
// "Giorno N" at creation but is freely renamable and never re-derived.
type Day struct {
	ID      string          `bson:"id" json:"id"` // Draft-level UUID, stable across edits
	Name    string          `bson:"name" json:"name"`
	Entries []ExerciseEntry `bson:"entries" json:"entries"` // Display/performance order
}

// ExerciseEntry is one exercise prescription within a day. MuscleGroup and
// Equipment are denormalized from the catalog at insertion time and are NOT
// re-synced if the catalog later changes.
type ExerciseEntry struct {
	ID           string   `bson:"id" json:"id"`
	Name         string   `bson:"name" json:"name"`
	MuscleGroup  string   `bson:"muscleGroup,omitempty" json:"muscleGroup,omitempty"`
	Equipment    string   `bson:"equipment,omitempty" json:"equipment,omitempty"`
	TargetSets   int      `bson:"targetSets" json:"targetSets"`
	TargetReps   int      `bson:"targetReps" json:"targetReps"`
	TargetWeight *float64 `bson:"targetWeight,omitempty" json:"targetWeight,omitempty"` // nil means unspecified
	Note         string   `bson:"note,omitempty" json:"note,omitempty"`
}

// Clone returns a deep copy of the template. Entry and day slices are
// copied so edits on the clone never leak back into the receiver.
func (t Template) Clone() Template {
	out := t
	out.Days = make([]Day, len(t.Days))
	for i, d := range t.Days {
		out.Days[i] = d.Clone()
	}
	return out
}

// Clone returns a deep copy of the day.
func (d Day) Clone() Day {
	out := d
	out.Entries = make([]ExerciseEntry, len(d.Entries))
	for i, e := range d.Entries {
		out.Entries[i] = e
		if e.TargetWeight != nil {
			w := *e.TargetWeight
			out.Entries[i].TargetWeight = &w
		}
	}
	return out
}
