package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DateLayout is the calendar-date format used throughout the log model.
// Logs carry no time-of-day component.
const DateLayout = "2006-01-02"

// LogEntryTypeNote marks a free-text day note stored as a log entry,
// alongside regular exercise entries.
const LogEntryTypeNote = "note"

// WorkoutLog records what was actually performed on a given date, compared
// against the prescription. There is exactly one canonical log per
// (userId, date); writing again for the same date replaces the entries.
type WorkoutLog struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID  `bson:"userId" json:"userId"`
	Date       string              `bson:"date" json:"date"` // YYYY-MM-DD
	TemplateID *primitive.ObjectID `bson:"templateId,omitempty" json:"templateId,omitempty"`
	DayIndex   *int                `bson:"dayIndex,omitempty" json:"dayIndex,omitempty"`
	Entries    []LogEntry          `bson:"entries" json:"entries"`
	UploadID   *primitive.ObjectID `bson:"uploadId,omitempty" json:"uploadId,omitempty"` // Optional session video
	CreatedAt  time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// LogEntry is one per-exercise outcome within a logged session. Name,
// MuscleGroup and Equipment are captured from the prescription at log time.
type LogEntry struct {
	Type        string      `bson:"type,omitempty" json:"type,omitempty"` // "" for exercises, "note" for day notes
	ExerciseID  string      `bson:"exerciseId,omitempty" json:"exerciseId,omitempty"`
	Name        string      `bson:"name,omitempty" json:"name,omitempty"`
	MuscleGroup string      `bson:"muscleGroup,omitempty" json:"muscleGroup,omitempty"`
	Equipment   string      `bson:"equipment,omitempty" json:"equipment,omitempty"`
	TargetSets  int         `bson:"targetSets,omitempty" json:"targetSets,omitempty"`
	TargetReps  int         `bson:"targetReps,omitempty" json:"targetReps,omitempty"`
	Sets        []SetResult `bson:"sets,omitempty" json:"sets,omitempty"`
	Note        string      `bson:"note,omitempty" json:"note,omitempty"`
	Text        string      `bson:"text,omitempty" json:"text,omitempty"` // Body of a "note" entry
}

// SetResult captures one performed set.
type SetResult struct {
	Done   bool     `bson:"done" json:"done"`
	Reps   int      `bson:"reps" json:"reps"`
	Weight *float64 `bson:"weight,omitempty" json:"weight,omitempty"` // nil means not recorded
}

// ParseDate validates a YYYY-MM-DD log date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// FormatDate renders a time as a YYYY-MM-DD log date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
