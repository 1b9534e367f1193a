package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"coachfit/server/internal/catalog"
	"coachfit/server/internal/domain"
)

func testCatalogItem(t *testing.T, name string) catalog.Entry {
	t.Helper()
	e := catalog.FindByName(name)
	require.NotNil(t, e, "catalog item %q must exist", name)
	return *e
}

func TestNewTemplateHasTwoStarterDays(t *testing.T) {
	owner := primitive.NewObjectID()
	tpl := New(owner)

	require.Len(t, tpl.Days, 2)
	assert.Equal(t, "Giorno 1", tpl.Days[0].Name)
	assert.Equal(t, "Giorno 2", tpl.Days[1].Name)
	assert.Empty(t, tpl.Days[0].Entries)
	assert.Empty(t, tpl.Days[1].Entries)
	assert.True(t, tpl.ID.IsZero())
	assert.Equal(t, owner, tpl.OwnerID)
	assert.NotEqual(t, tpl.Days[0].ID, tpl.Days[1].ID)
}

func TestRenameTrimsAndIgnoresBlank(t *testing.T) {
	tpl := New(primitive.NewObjectID())
	tpl = Rename(tpl, "  Ipertrofia A  ")
	assert.Equal(t, "Ipertrofia A", tpl.Name)

	tpl = Rename(tpl, "   ")
	assert.Equal(t, "Ipertrofia A", tpl.Name, "blank rename must keep the old name")
}

func TestEnsureNameFallsBackWhenBlank(t *testing.T) {
	tpl := New(primitive.NewObjectID())
	assert.Equal(t, domain.DefaultTemplateName, EnsureName(tpl).Name)

	tpl.Name = "Full Body"
	assert.Equal(t, "Full Body", EnsureName(tpl).Name)
}

func TestAddDayDoesNotRenumberExisting(t *testing.T) {
	tpl := New(primitive.NewObjectID())
	tpl = RenameDay(tpl, 0, "Push")

	tpl = AddDay(tpl)
	require.Len(t, tpl.Days, 3)
	assert.Equal(t, "Push", tpl.Days[0].Name)
	assert.Equal(t, "Giorno 3", tpl.Days[2].Name)
}

func TestRemoveDayFloorsAtOne(t *testing.T) {
	tpl := New(primitive.NewObjectID())
	tpl, focus := RemoveDay(tpl, 1)
	require.Len(t, tpl.Days, 1)
	assert.Equal(t, 0, focus)

	// Removing the last remaining day is a no-op, repeatedly.
	for i := 0; i < 3; i++ {
		tpl, focus = RemoveDay(tpl, 0)
		require.Len(t, tpl.Days, 1)
		assert.Equal(t, 0, focus)
	}
}

func TestRemoveDayOutOfRangeIsNoOp(t *testing.T) {
	tpl := AddDay(New(primitive.NewObjectID()))
	before := len(tpl.Days)

	tpl, _ = RemoveDay(tpl, -1)
	assert.Len(t, tpl.Days, before)
	tpl, _ = RemoveDay(tpl, 99)
	assert.Len(t, tpl.Days, before)
}

func TestRemoveDayClampsFocus(t *testing.T) {
	tpl := AddDay(AddDay(New(primitive.NewObjectID()))) // 4 days
	tpl, focus := RemoveDay(tpl, 2)
	require.Len(t, tpl.Days, 3)
	assert.Equal(t, 1, focus)

	_, focus = RemoveDay(tpl, 0)
	assert.Equal(t, 0, focus)
}

func TestAddEntryDefaultsAndOrder(t *testing.T) {
	day := domain.Day{ID: "d1", Name: "Giorno 1"}
	day = AddEntry(day, testCatalogItem(t, "Panca Piana"))
	day = AddEntry(day, testCatalogItem(t, "Squat"))

	require.Len(t, day.Entries, 2)
	first := day.Entries[0]
	assert.Equal(t, "Panca Piana", first.Name)
	assert.Equal(t, "Petto", first.MuscleGroup)
	assert.Equal(t, "Bilanciere", first.Equipment)
	assert.Equal(t, domain.DefaultTargetSets, first.TargetSets)
	assert.Equal(t, domain.DefaultTargetReps, first.TargetReps)
	assert.Nil(t, first.TargetWeight)

	// Appended at the end, existing order preserved.
	assert.Equal(t, "Squat", day.Entries[1].Name)
}

func TestAddThenRemoveEntryRestoresDay(t *testing.T) {
	day := domain.Day{ID: "d1", Name: "Giorno 1"}
	day = AddEntry(day, testCatalogItem(t, "Panca Piana"))
	before := day.Clone()

	day = AddEntry(day, testCatalogItem(t, "Lat Machine"))
	day = RemoveEntry(day, 1)

	assert.Equal(t, before.Entries, day.Entries)
}

func TestUpdateEntryMergesAndCoerces(t *testing.T) {
	day := AddEntry(domain.Day{ID: "d1"}, testCatalogItem(t, "Squat"))

	day = UpdateEntry(day, 0, EntryPatch{
		SetTargetSets: true, TargetSets: "5",
		SetTargetReps: true, TargetReps: float64(8),
		SetTargetWeight: true, TargetWeight: "80",
	})
	e := day.Entries[0]
	assert.Equal(t, 5, e.TargetSets)
	assert.Equal(t, 8, e.TargetReps)
	require.NotNil(t, e.TargetWeight)
	assert.Equal(t, 80.0, *e.TargetWeight)
	assert.Equal(t, "Squat", e.Name, "untouched fields survive the merge")

	// Invalid numeric input coerces to zero, never errors.
	day = UpdateEntry(day, 0, EntryPatch{
		SetTargetSets: true, TargetSets: "abc",
		SetTargetReps: true, TargetReps: -4,
		SetTargetWeight: true, TargetWeight: "",
	})
	e = day.Entries[0]
	assert.Equal(t, 0, e.TargetSets)
	assert.Equal(t, 0, e.TargetReps)
	assert.Nil(t, e.TargetWeight)
}

func TestUpdateEntryOutOfRangeIsNoOp(t *testing.T) {
	day := AddEntry(domain.Day{ID: "d1"}, testCatalogItem(t, "Squat"))
	name := "Changed"
	got := UpdateEntry(day, 5, EntryPatch{Name: &name})
	assert.Equal(t, day.Entries, got.Entries)
}

func TestRemoveEntryShiftsDown(t *testing.T) {
	day := domain.Day{ID: "d1"}
	day = AddEntry(day, testCatalogItem(t, "Panca Piana"))
	day = AddEntry(day, testCatalogItem(t, "Squat"))
	day = AddEntry(day, testCatalogItem(t, "Plank"))

	day = RemoveEntry(day, 1)
	require.Len(t, day.Entries, 2)
	assert.Equal(t, "Panca Piana", day.Entries[0].Name)
	assert.Equal(t, "Plank", day.Entries[1].Name)

	same := RemoveEntry(day, 7)
	assert.Equal(t, day.Entries, same.Entries)
}

func TestDuplicateClearsIDAndMarksName(t *testing.T) {
	tpl := New(primitive.NewObjectID())
	tpl = Rename(tpl, "Ipertrofia A")
	tpl.ID = primitive.NewObjectID()
	tpl.Days[0] = AddEntry(tpl.Days[0], testCatalogItem(t, "Panca Piana"))
	w := 60.0
	tpl.Days[0].Entries[0].TargetWeight = &w

	copy := Duplicate(tpl)
	assert.True(t, copy.ID.IsZero())
	assert.Equal(t, "Ipertrofia A"+CopySuffix, copy.Name)
	assert.Equal(t, tpl.Days, copy.Days, "day/entry data is byte-for-byte identical")

	// Deep copy: mutating the duplicate must not touch the source.
	*copy.Days[0].Entries[0].TargetWeight = 99
	assert.Equal(t, 60.0, *tpl.Days[0].Entries[0].TargetWeight)
}

func TestCoerceCount(t *testing.T) {
	cases := []struct {
		in   any
		want int
	}{
		{nil, 0},
		{4, 4},
		{int64(7), 7},
		{3.9, 3},
		{-2, 0},
		{"12", 12},
		{" 6 ", 6},
		{"2.5", 2},
		{"abc", 0},
		{"", 0},
		{true, 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, CoerceCount(c.in), "input %#v", c.in)
	}
}

func TestCoerceWeight(t *testing.T) {
	assert.Nil(t, CoerceWeight(nil))
	assert.Nil(t, CoerceWeight(""))
	assert.Nil(t, CoerceWeight("not a number"))

	w := CoerceWeight("42.5")
	require.NotNil(t, w)
	assert.Equal(t, 42.5, *w)

	w = CoerceWeight(-10)
	require.NotNil(t, w)
	assert.Equal(t, 0.0, *w, "negative weights clamp to zero")
}
