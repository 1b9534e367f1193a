package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"coachfit/server/internal/calendar"
	"coachfit/server/internal/domain"
	"coachfit/server/internal/repository/memory"
)

// stubStorage stands in for S3 and records the keys it presigned.
type stubStorage struct {
	uploadKeys   []string
	downloadKeys []string
	deletedKeys  []string
}

func (s *stubStorage) GeneratePresignedUploadURL(_ context.Context, objectKey, _ string, _ time.Duration) (string, error) {
	s.uploadKeys = append(s.uploadKeys, objectKey)
	return "https://storage.local/put/" + objectKey, nil
}

func (s *stubStorage) GeneratePresignedDownloadURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	s.downloadKeys = append(s.downloadKeys, objectKey)
	return "https://storage.local/get/" + objectKey, nil
}

func (s *stubStorage) DeleteObject(_ context.Context, objectKey string) error {
	s.deletedKeys = append(s.deletedKeys, objectKey)
	return nil
}

type planFixture struct {
	store   *memory.Store
	storage *stubStorage
	svc     *planService
	userID  primitive.ObjectID
}

func newPlanFixture(t *testing.T) *planFixture {
	t.Helper()
	store := memory.NewStore()
	st := &stubStorage{}
	svc := NewPlanService(store.Templates(), store.ActivePlans(), store.WorkoutLogs(), store.Assignments(), store.Uploads(), st).(*planService)
	return &planFixture{store: store, storage: st, svc: svc, userID: primitive.NewObjectID()}
}

func (f *planFixture) seedTemplate(t *testing.T, ownerID primitive.ObjectID, days int) *domain.Template {
	t.Helper()
	tpl := domain.Template{OwnerID: ownerID, Name: "Scheda"}
	for i := 0; i < days; i++ {
		tpl.Days = append(tpl.Days, domain.Day{ID: fmt.Sprintf("day-%d", i+1), Name: fmt.Sprintf("Giorno %d", i+1)})
	}
	_, err := f.store.Templates().Create(context.Background(), &tpl)
	require.NoError(t, err)
	return &tpl
}

func TestActivateOwnTemplate(t *testing.T) {
	ctx := context.Background()
	f := newPlanFixture(t)
	tpl := f.seedTemplate(t, f.userID, 3)

	view, err := f.svc.Activate(ctx, f.userID, tpl.ID, 1)
	require.NoError(t, err)
	require.True(t, view.IsActive())
	assert.Equal(t, tpl.ID, *view.TemplateID)
	assert.Equal(t, 1, view.DayIndex)
	require.NotNil(t, view.Template)
	assert.Equal(t, "Scheda", view.Template.Name)
}

func TestActivateClampsDayIndex(t *testing.T) {
	ctx := context.Background()
	f := newPlanFixture(t)
	tpl := f.seedTemplate(t, f.userID, 2)

	view, err := f.svc.Activate(ctx, f.userID, tpl.ID, 9)
	require.NoError(t, err)
	assert.Equal(t, 0, view.DayIndex)
}

func TestActivateAssignedTemplate(t *testing.T) {
	ctx := context.Background()
	f := newPlanFixture(t)
	coachID := primitive.NewObjectID()
	tpl := f.seedTemplate(t, coachID, 2)

	// Not assigned yet: a foreign template is off limits.
	_, err := f.svc.Activate(ctx, f.userID, tpl.ID, 0)
	assert.ErrorIs(t, err, ErrPlanTemplateNotUsable)

	_, err = f.store.Assignments().Create(ctx, &domain.Assignment{
		CoachID: coachID, PatientID: f.userID, TemplateID: tpl.ID,
	})
	require.NoError(t, err)

	view, err := f.svc.Activate(ctx, f.userID, tpl.ID, 0)
	require.NoError(t, err)
	assert.True(t, view.IsActive())
}

func TestActivateUnknownTemplate(t *testing.T) {
	f := newPlanFixture(t)
	_, err := f.svc.Activate(context.Background(), f.userID, primitive.NewObjectID(), 0)
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestDeactivate(t *testing.T) {
	ctx := context.Background()
	f := newPlanFixture(t)
	tpl := f.seedTemplate(t, f.userID, 2)

	_, err := f.svc.Activate(ctx, f.userID, tpl.ID, 0)
	require.NoError(t, err)
	require.NoError(t, f.svc.Deactivate(ctx, f.userID))

	view, err := f.svc.GetActivePlan(ctx, f.userID)
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.False(t, view.IsActive())
	assert.Nil(t, view.Template)
}

func TestGetActivePlanNeverSet(t *testing.T) {
	f := newPlanFixture(t)
	view, err := f.svc.GetActivePlan(context.Background(), f.userID)
	require.NoError(t, err)
	assert.Nil(t, view)
}

func TestGetActivePlanDanglingTemplate(t *testing.T) {
	ctx := context.Background()
	f := newPlanFixture(t)
	tpl := f.seedTemplate(t, f.userID, 2)

	_, err := f.svc.Activate(ctx, f.userID, tpl.ID, 0)
	require.NoError(t, err)
	require.NoError(t, f.store.Templates().Delete(ctx, tpl.ID, f.userID))

	view, err := f.svc.GetActivePlan(ctx, f.userID)
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.False(t, view.IsActive())
}

func TestLogWorkoutUpsertsByDate(t *testing.T) {
	ctx := context.Background()
	f := newPlanFixture(t)

	first, err := f.svc.LogWorkout(ctx, f.userID, domain.WorkoutLog{
		Date:    "2026-08-24",
		Entries: []domain.LogEntry{{Name: "Squat", MuscleGroup: "Gambe"}},
	})
	require.NoError(t, err)

	second, err := f.svc.LogWorkout(ctx, f.userID, domain.WorkoutLog{
		Date:    "2026-08-24",
		Entries: []domain.LogEntry{{Name: "Panca Piana", MuscleGroup: "Petto"}},
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "same date must hit the same log")
	require.Len(t, second.Entries, 1)
	assert.Equal(t, "Panca Piana", second.Entries[0].Name)

	logs, err := f.svc.GetLogs(ctx, f.userID, "", "")
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestLogWorkoutClassifiesUntaggedEntries(t *testing.T) {
	ctx := context.Background()
	f := newPlanFixture(t)

	saved, err := f.svc.LogWorkout(ctx, f.userID, domain.WorkoutLog{
		Date: "2026-08-24",
		Entries: []domain.LogEntry{
			{Name: "Panca Piana"},
			{Name: "Esercizio Misterioso"},
			{Type: domain.LogEntryTypeNote, Text: "  giornata dura  "},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Petto", saved.Entries[0].MuscleGroup)
	assert.Equal(t, "Altro", saved.Entries[1].MuscleGroup)
	assert.Equal(t, "giornata dura", saved.Entries[2].Text)
	assert.Empty(t, saved.Entries[2].MuscleGroup, "day notes carry no group")
}

func TestLogWorkoutClampsNegativeNumbers(t *testing.T) {
	ctx := context.Background()
	f := newPlanFixture(t)
	neg := -20.0

	saved, err := f.svc.LogWorkout(ctx, f.userID, domain.WorkoutLog{
		Date: "2026-08-24",
		Entries: []domain.LogEntry{{
			Name:        "Squat",
			MuscleGroup: "Gambe",
			TargetSets:  -3,
			Sets:        []domain.SetResult{{Done: true, Reps: -5, Weight: &neg}},
		}},
	})
	require.NoError(t, err)
	entry := saved.Entries[0]
	assert.Equal(t, 0, entry.TargetSets)
	assert.Equal(t, 0, entry.Sets[0].Reps)
	require.NotNil(t, entry.Sets[0].Weight)
	assert.Equal(t, 0.0, *entry.Sets[0].Weight)
}

func TestLogWorkoutInvalidDate(t *testing.T) {
	f := newPlanFixture(t)
	_, err := f.svc.LogWorkout(context.Background(), f.userID, domain.WorkoutLog{Date: "24/08/2026"})
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestGetLogsDateRange(t *testing.T) {
	ctx := context.Background()
	f := newPlanFixture(t)
	for _, date := range []string{"2026-08-01", "2026-08-15", "2026-08-31"} {
		_, err := f.svc.LogWorkout(ctx, f.userID, domain.WorkoutLog{Date: date})
		require.NoError(t, err)
	}

	logs, err := f.svc.GetLogs(ctx, f.userID, "2026-08-10", "2026-08-20")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "2026-08-15", logs[0].Date)

	_, err = f.svc.GetLogs(ctx, f.userID, "bad", "")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestDeleteLog(t *testing.T) {
	ctx := context.Background()
	f := newPlanFixture(t)

	_, err := f.svc.LogWorkout(ctx, f.userID, domain.WorkoutLog{Date: "2026-08-24"})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteLog(ctx, f.userID, "2026-08-24"))
	assert.ErrorIs(t, f.svc.DeleteLog(ctx, f.userID, "2026-08-24"), ErrLogNotFound)
	assert.Empty(t, f.storage.deletedKeys)
}

func TestDeleteLogRemovesVideo(t *testing.T) {
	ctx := context.Background()
	f := newPlanFixture(t)

	_, err := f.svc.LogWorkout(ctx, f.userID, domain.WorkoutLog{Date: "2026-08-24"})
	require.NoError(t, err)

	resp, err := f.svc.RequestVideoUploadURL(ctx, f.userID, "2026-08-24", "video/mp4")
	require.NoError(t, err)
	_, err = f.svc.ConfirmVideoUpload(ctx, f.userID, "2026-08-24", resp.ObjectKey, "seduta.mp4", 1024, "video/mp4")
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteLog(ctx, f.userID, "2026-08-24"))
	assert.Equal(t, []string{resp.ObjectKey}, f.storage.deletedKeys)

	logs, err := f.svc.GetLogs(ctx, f.userID, "2026-08-24", "2026-08-24")
	require.NoError(t, err)
	assert.Empty(t, logs)
	_, err = f.svc.VideoDownloadURL(ctx, f.userID, "2026-08-24")
	assert.ErrorIs(t, err, ErrLogNotFound)
}

func TestDeleteLogWithVideoStorageDisabled(t *testing.T) {
	ctx := context.Background()
	f := newPlanFixture(t)

	logged, err := f.svc.LogWorkout(ctx, f.userID, domain.WorkoutLog{Date: "2026-08-24"})
	require.NoError(t, err)

	resp, err := f.svc.RequestVideoUploadURL(ctx, f.userID, "2026-08-24", "video/mp4")
	require.NoError(t, err)
	_, err = f.svc.ConfirmVideoUpload(ctx, f.userID, "2026-08-24", resp.ObjectKey, "seduta.mp4", 1024, "video/mp4")
	require.NoError(t, err)

	// Same store, but the S3 side is gone. The log still has to go.
	detached := NewPlanService(f.store.Templates(), f.store.ActivePlans(), f.store.WorkoutLogs(), f.store.Assignments(), f.store.Uploads(), nil)
	require.NoError(t, detached.DeleteLog(ctx, f.userID, logged.Date))
	assert.ErrorIs(t, detached.DeleteLog(ctx, f.userID, logged.Date), ErrLogNotFound)
}

func TestCalendarMarksActivity(t *testing.T) {
	ctx := context.Background()
	f := newPlanFixture(t)
	f.svc.clock = func() time.Time {
		return time.Date(2026, time.August, 29, 10, 0, 0, 0, time.UTC)
	}

	_, err := f.svc.LogWorkout(ctx, f.userID, domain.WorkoutLog{Date: "2026-08-25"})
	require.NoError(t, err)

	cells, err := f.svc.Calendar(ctx, f.userID, "2026-08-29", calendar.ViewWeek)
	require.NoError(t, err)
	require.Len(t, cells, 7)
	assert.Equal(t, "2026-08-24", cells[0].Date)

	byDate := map[string]CalendarCell{}
	for _, c := range cells {
		byDate[c.Date] = c
	}
	assert.True(t, byDate["2026-08-25"].HasActivity)
	assert.False(t, byDate["2026-08-26"].HasActivity)
	assert.True(t, byDate["2026-08-29"].IsToday)
}

func TestVideoUploadFlow(t *testing.T) {
	ctx := context.Background()
	f := newPlanFixture(t)

	log, err := f.svc.LogWorkout(ctx, f.userID, domain.WorkoutLog{Date: "2026-08-24"})
	require.NoError(t, err)

	resp, err := f.svc.RequestVideoUploadURL(ctx, f.userID, "2026-08-24", "video/mp4")
	require.NoError(t, err)
	wantPrefix := fmt.Sprintf("logs/%s/%s/", f.userID.Hex(), log.ID.Hex())
	assert.True(t, strings.HasPrefix(resp.ObjectKey, wantPrefix), "object key %q", resp.ObjectKey)
	assert.True(t, strings.HasSuffix(resp.ObjectKey, ".mp4"))
	assert.Contains(t, resp.UploadURL, resp.ObjectKey)

	updated, err := f.svc.ConfirmVideoUpload(ctx, f.userID, "2026-08-24", resp.ObjectKey, "seduta.mp4", 1024, "video/mp4")
	require.NoError(t, err)
	require.NotNil(t, updated.UploadID)

	url, err := f.svc.VideoDownloadURL(ctx, f.userID, "2026-08-24")
	require.NoError(t, err)
	assert.Contains(t, url, resp.ObjectKey)
}

func TestVideoUploadValidation(t *testing.T) {
	ctx := context.Background()
	f := newPlanFixture(t)

	_, err := f.svc.RequestVideoUploadURL(ctx, f.userID, "2026-08-24", "image/png")
	assert.ErrorIs(t, err, ErrInvalidContentType)

	// No log for the date yet.
	_, err = f.svc.RequestVideoUploadURL(ctx, f.userID, "2026-08-24", "video/mp4")
	assert.ErrorIs(t, err, ErrLogNotFound)

	_, err = f.svc.LogWorkout(ctx, f.userID, domain.WorkoutLog{Date: "2026-08-24"})
	require.NoError(t, err)
	_, err = f.svc.VideoDownloadURL(ctx, f.userID, "2026-08-24")
	assert.ErrorIs(t, err, ErrUploadMissing)
}

func TestVideoStorageDisabled(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := NewPlanService(store.Templates(), store.ActivePlans(), store.WorkoutLogs(), store.Assignments(), store.Uploads(), nil)

	_, err := svc.RequestVideoUploadURL(ctx, primitive.NewObjectID(), "2026-08-24", "video/mp4")
	assert.ErrorIs(t, err, ErrStorageDisabled)
	_, err = svc.VideoDownloadURL(ctx, primitive.NewObjectID(), "2026-08-24")
	assert.ErrorIs(t, err, ErrStorageDisabled)
}
