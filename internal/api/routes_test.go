package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coachfit/server/internal/repository/memory"
	"coachfit/server/internal/service"
)

const testSecret = "routes-test-secret"

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	authService := service.NewAuthService(store.Users(), testSecret, time.Hour)
	templateService := service.NewTemplateService(store.Templates())
	planService := service.NewPlanService(store.Templates(), store.ActivePlans(), store.WorkoutLogs(), store.Assignments(), store.Uploads(), nil)
	coachService := service.NewCoachService(store.Users(), store.Templates(), store.Assignments(), store.WorkoutLogs())

	router := gin.New()
	SetupRoutes(router, testSecret, authService, templateService, planService, coachService)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// registerAndLogin creates an account and returns its token.
func registerAndLogin(t *testing.T, router *gin.Engine, email, role string) string {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name": "Test", "email": email, "password": "password123", "role": role,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": email, "password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestPing(t *testing.T) {
	router := newTestRouter(t)
	w := doJSON(t, router, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t)
	for _, path := range []string{"/api/v1/me", "/api/v1/templates", "/api/v1/plan", "/api/v1/logs"} {
		w := doJSON(t, router, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	router := newTestRouter(t)
	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name": "Test", "email": "x@example.com", "password": "password123", "role": "admin",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTemplateLifecycleOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router, "coach@example.com", "coach")

	// Create with coercible numeric strings in the payload.
	w := doJSON(t, router, http.MethodPost, "/api/v1/templates", token, gin.H{
		"name": "Forza A",
		"days": []gin.H{{
			"name": "Giorno 1",
			"entries": []gin.H{{
				"name":         "Panca Piana",
				"targetSets":   "5",
				"targetReps":   8,
				"targetWeight": "abc",
			}},
		}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created TemplateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Len(t, created.Days, 1)
	entry := created.Days[0].Entries[0]
	assert.Equal(t, 5, entry.TargetSets)
	assert.Equal(t, 8, entry.TargetReps)
	assert.Nil(t, entry.TargetWeight, "garbage weight coerces to unset")
	assert.Equal(t, "Petto", entry.MuscleGroup, "group filled in from the name")

	// List
	w = doJSON(t, router, http.MethodGet, "/api/v1/templates", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []TemplateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	assert.Len(t, listed, 1)

	// Summary
	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/templates/%s/summary", created.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Petto")

	// Duplicate
	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/templates/%s/duplicate", created.ID), token, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "Forza A (copia)")

	// Another user cannot read it.
	other := registerAndLogin(t, router, "other@example.com", "coach")
	w = doJSON(t, router, http.MethodGet, "/api/v1/templates/"+created.ID, other, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Delete
	w = doJSON(t, router, http.MethodDelete, "/api/v1/templates/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestLogAndCalendarOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router, "patient@example.com", "patient")

	w := doJSON(t, router, http.MethodPut, "/api/v1/logs", token, gin.H{
		"date": "2026-08-24",
		"entries": []gin.H{{
			"name": "Squat",
			"sets": []gin.H{{"done": true, "reps": "10", "weight": 80}},
		}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"muscleGroup":"Gambe"`)

	w = doJSON(t, router, http.MethodGet, "/api/v1/calendar?view=week&date=2026-08-24", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cells []service.CalendarCell
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cells))
	require.Len(t, cells, 7)
	assert.True(t, cells[0].HasActivity, "Monday the 24th was logged")

	w = doJSON(t, router, http.MethodGet, "/api/v1/calendar?view=decade&date=2026-08-24", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Video endpoints answer 503 with storage disabled.
	w = doJSON(t, router, http.MethodPost, "/api/v1/logs/2026-08-24/video/upload-url", token, gin.H{"contentType": "video/mp4"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/v1/logs/2026-08-24", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCoachRoutesRequireCoachRole(t *testing.T) {
	router := newTestRouter(t)
	patientToken := registerAndLogin(t, router, "patient@example.com", "patient")

	w := doJSON(t, router, http.MethodGet, "/api/v1/coach/patients", patientToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCoachPatientFlowOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	coachToken := registerAndLogin(t, router, "coach@example.com", "coach")
	patientToken := registerAndLogin(t, router, "patient@example.com", "patient")

	w := doJSON(t, router, http.MethodPost, "/api/v1/coach/patients", coachToken, gin.H{
		"patientEmail": "patient@example.com",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Coach creates and assigns a template.
	w = doJSON(t, router, http.MethodPost, "/api/v1/templates", coachToken, gin.H{"name": "Ipertrofia"})
	require.Equal(t, http.StatusCreated, w.Code)
	var tpl TemplateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tpl))

	var patient UserResponse
	w = doJSON(t, router, http.MethodGet, "/api/v1/coach/patients", coachToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var patients []UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &patients))
	require.Len(t, patients, 1)
	patient = patients[0]

	w = doJSON(t, router, http.MethodPost, "/api/v1/coach/patients/"+patient.ID+"/assignments", coachToken, gin.H{
		"templateId": tpl.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Patient sees the assignment and activates it.
	w = doJSON(t, router, http.MethodGet, "/api/v1/assignments", patientToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Ipertrofia")

	w = doJSON(t, router, http.MethodPut, "/api/v1/plan", patientToken, gin.H{
		"templateId": tpl.ID,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodGet, "/api/v1/plan", patientToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Ipertrofia")

	// And can deactivate again.
	w = doJSON(t, router, http.MethodDelete, "/api/v1/plan", patientToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
