// Package plan contains the pure template-editing operations and the
// series-per-muscle-group summary. Nothing in here performs I/O; every
// function takes entities in and hands new entities back, so each UI
// surface calls the same logic instead of re-deriving it locally.
package plan

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"coachfit/server/internal/catalog"
	"coachfit/server/internal/domain"
)

// CopySuffix is appended to the name of a duplicated template.
const CopySuffix = " (copia)"

// dayName builds the default label for the day at 1-based position n.
// The label is assigned once at creation and never re-derived.
func dayName(n int) string {
	return fmt.Sprintf("Giorno %d", n)
}

// New returns an unsaved template draft with two empty starter days.
// The ID stays unset until the template is persisted.
func New(ownerID primitive.ObjectID) domain.Template {
	return domain.Template{
		OwnerID: ownerID,
		Days: []domain.Day{
			{ID: uuid.NewString(), Name: dayName(1)},
			{ID: uuid.NewString(), Name: dayName(2)},
		},
	}
}

// Rename sets the template name after trimming. A name that is empty after
// trimming leaves the current one unchanged; a blank name never lands in
// the draft.
func Rename(t domain.Template, name string) domain.Template {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return t
	}
	out := t.Clone()
	out.Name = trimmed
	return out
}

// EnsureName substitutes the default label when a template is about to be
// persisted with a blank name.
func EnsureName(t domain.Template) domain.Template {
	if strings.TrimSpace(t.Name) == "" {
		out := t.Clone()
		out.Name = domain.DefaultTemplateName
		return out
	}
	return t
}

// AddDay appends a day labeled with the next sequential number. Existing
// days are not renumbered.
func AddDay(t domain.Template) domain.Template {
	out := t.Clone()
	out.Days = append(out.Days, domain.Day{ID: uuid.NewString(), Name: dayName(len(out.Days) + 1)})
	return out
}

// RemoveDay removes the day at index and returns the template together with
// the day index that should keep focus (clamped to max(0, index-1)).
// A template never drops to zero days: removing the last remaining day is a
// no-op, as is an out-of-range index.
func RemoveDay(t domain.Template, index int) (domain.Template, int) {
	if len(t.Days) <= 1 || index < 0 || index >= len(t.Days) {
		return t, clampIndex(index, len(t.Days))
	}
	out := t.Clone()
	out.Days = append(out.Days[:index], out.Days[index+1:]...)
	focus := index - 1
	if focus < 0 {
		focus = 0
	}
	return out, focus
}

func clampIndex(i, n int) int {
	if i < 0 || n == 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// RenameDay sets the label of the day at index. Out-of-range indices and
// blank names are no-ops.
func RenameDay(t domain.Template, index int, name string) domain.Template {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || index < 0 || index >= len(t.Days) {
		return t
	}
	out := t.Clone()
	out.Days[index].Name = trimmed
	return out
}

// AddEntry appends a new exercise entry derived from a catalog item, with
// the default 3x10 prescription and no weight. Existing entries keep their
// order; the new one goes at the end.
func AddEntry(d domain.Day, item catalog.Entry) domain.Day {
	out := d.Clone()
	out.Entries = append(out.Entries, domain.ExerciseEntry{
		ID:          uuid.NewString(),
		Name:        item.Name,
		MuscleGroup: item.MuscleGroup,
		Equipment:   item.Equipment,
		TargetSets:  domain.DefaultTargetSets,
		TargetReps:  domain.DefaultTargetReps,
	})
	return out
}

// EntryPatch carries a partial update for one exercise entry. Text fields
// apply when non-nil. The numeric fields accept whatever the client sent
// (number, numeric string, nil) and go through the coerce-and-clamp policy;
// they apply when Set* is true.
type EntryPatch struct {
	Name        *string
	MuscleGroup *string
	Equipment   *string
	Note        *string

	SetTargetSets bool
	TargetSets    any
	SetTargetReps bool
	TargetReps    any
	SetTargetWeight bool
	TargetWeight    any
}

// UpdateEntry shallow-merges a patch into the entry at index. Out-of-range
// indices are no-ops. Sets and reps are coerced to non-negative integers
// (invalid input lands as 0, never an error); weight coerces to nil when
// unparseable, matching "unspecified".
func UpdateEntry(d domain.Day, index int, patch EntryPatch) domain.Day {
	if index < 0 || index >= len(d.Entries) {
		return d
	}
	out := d.Clone()
	e := &out.Entries[index]

	if patch.Name != nil {
		e.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.MuscleGroup != nil {
		e.MuscleGroup = *patch.MuscleGroup
	}
	if patch.Equipment != nil {
		e.Equipment = *patch.Equipment
	}
	if patch.Note != nil {
		e.Note = *patch.Note
	}
	if patch.SetTargetSets {
		e.TargetSets = CoerceCount(patch.TargetSets)
	}
	if patch.SetTargetReps {
		e.TargetReps = CoerceCount(patch.TargetReps)
	}
	if patch.SetTargetWeight {
		e.TargetWeight = CoerceWeight(patch.TargetWeight)
	}
	return out
}

// RemoveEntry removes the entry at index; later entries shift down.
// Out-of-range indices are no-ops.
func RemoveEntry(d domain.Day, index int) domain.Day {
	if index < 0 || index >= len(d.Entries) {
		return d
	}
	out := d.Clone()
	out.Entries = append(out.Entries[:index], out.Entries[index+1:]...)
	return out
}

// Duplicate deep-copies a template, clears its ID and marks the name as a
// copy. Day and entry data is otherwise identical to the source.
func Duplicate(t domain.Template) domain.Template {
	out := t.Clone()
	out.ID = primitive.NilObjectID
	name := strings.TrimSpace(out.Name)
	if name == "" {
		name = domain.DefaultTemplateName
	}
	out.Name = name + CopySuffix
	return out
}

// CoerceCount implements the coerce-and-clamp policy for set/rep counts:
// any value the client managed to send becomes a non-negative integer, with
// everything unparseable collapsing to 0. Editing never fails on bad input.
func CoerceCount(v any) int {
	n := 0
	switch x := v.(type) {
	case nil:
	case int:
		n = x
	case int32:
		n = int(x)
	case int64:
		n = int(x)
	case float64:
		n = int(x)
	case float32:
		n = int(x)
	case json.Number:
		if f, err := x.Float64(); err == nil {
			n = int(f)
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
			n = int(f)
		}
	case bool:
		// Deliberately 0: a boolean is not a count.
	}
	if n < 0 {
		return 0
	}
	return n
}

// CoerceWeight turns client input into an optional non-negative weight.
// Empty or unparseable input means "unspecified" (nil), negatives clamp
// to zero.
func CoerceWeight(v any) *float64 {
	var f float64
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if f < 0 {
		f = 0
	}
	return &f
}
