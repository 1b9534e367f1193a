package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"coachfit/server/internal/calendar"
	"coachfit/server/internal/domain"
	"coachfit/server/internal/plan"
	"coachfit/server/internal/service"
)

type PlanHandler struct {
	planService service.PlanService
}

func NewPlanHandler(planService service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// --- DTOs ---

type ActivateRequest struct {
	TemplateID string `json:"templateId" binding:"required"`
	DayIndex   int    `json:"dayIndex"`
}

type SetResultRequest struct {
	Done   bool `json:"done"`
	Reps   any  `json:"reps"`
	Weight any  `json:"weight"`
}

type LogEntryRequest struct {
	Type        string             `json:"type"`
	ExerciseID  string             `json:"exerciseId"`
	Name        string             `json:"name"`
	MuscleGroup string             `json:"muscleGroup"`
	Equipment   string             `json:"equipment"`
	TargetSets  any                `json:"targetSets"`
	TargetReps  any                `json:"targetReps"`
	Sets        []SetResultRequest `json:"sets"`
	Note        string             `json:"note"`
	Text        string             `json:"text"`
}

type LogRequest struct {
	Date       string            `json:"date" binding:"required"`
	TemplateID string            `json:"templateId"`
	DayIndex   *int              `json:"dayIndex"`
	Entries    []LogEntryRequest `json:"entries"`
}

type UploadURLRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type ConfirmUploadRequest struct {
	ObjectKey   string `json:"objectKey" binding:"required"`
	FileName    string `json:"fileName"`
	FileSize    int64  `json:"fileSize"`
	ContentType string `json:"contentType"`
}

func mapLogRequest(req LogRequest) (domain.WorkoutLog, error) {
	log := domain.WorkoutLog{Date: req.Date, DayIndex: req.DayIndex}
	if req.TemplateID != "" {
		templateID, err := primitive.ObjectIDFromHex(req.TemplateID)
		if err != nil {
			return domain.WorkoutLog{}, errors.New("invalid template ID format")
		}
		log.TemplateID = &templateID
	}

	for _, e := range req.Entries {
		entry := domain.LogEntry{
			Type:        e.Type,
			ExerciseID:  e.ExerciseID,
			Name:        e.Name,
			MuscleGroup: e.MuscleGroup,
			Equipment:   e.Equipment,
			TargetSets:  plan.CoerceCount(e.TargetSets),
			TargetReps:  plan.CoerceCount(e.TargetReps),
			Note:        e.Note,
			Text:        e.Text,
		}
		for _, s := range e.Sets {
			entry.Sets = append(entry.Sets, domain.SetResult{
				Done:   s.Done,
				Reps:   plan.CoerceCount(s.Reps),
				Weight: plan.CoerceWeight(s.Weight),
			})
		}
		log.Entries = append(log.Entries, entry)
	}
	return log, nil
}

// --- Handler Methods: active plan ---

// GetActive returns the user's active plan with its template resolved.
// Responds 200 with a null body when nothing is active.
func (h *PlanHandler) GetActive(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	view, err := h.planService.GetActivePlan(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve active plan.")
		return
	}
	c.JSON(http.StatusOK, view)
}

// Activate points the user at a template.
func (h *PlanHandler) Activate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req ActivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	templateID, err := primitive.ObjectIDFromHex(req.TemplateID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid template ID format.")
		return
	}

	view, err := h.planService.Activate(c.Request.Context(), userID, templateID, req.DayIndex)
	if err != nil {
		h.mapPlanError(c, err, "Failed to activate plan.")
		return
	}
	c.JSON(http.StatusOK, view)
}

// Deactivate clears the user's active plan pointer.
func (h *PlanHandler) Deactivate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.planService.Deactivate(c.Request.Context(), userID); err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to deactivate plan.")
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Handler Methods: workout logs ---

// UpsertLog writes the canonical log for one date.
func (h *PlanHandler) UpsertLog(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req LogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	log, err := mapLogRequest(req)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := h.planService.LogWorkout(c.Request.Context(), userID, log)
	if err != nil {
		h.mapPlanError(c, err, "Failed to save workout log.")
		return
	}
	c.JSON(http.StatusOK, saved)
}

// ListLogs returns the user's logs, optionally bounded with ?from= and
// ?to= (inclusive, YYYY-MM-DD).
func (h *PlanHandler) ListLogs(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	logs, err := h.planService.GetLogs(c.Request.Context(), userID, c.Query("from"), c.Query("to"))
	if err != nil {
		h.mapPlanError(c, err, "Failed to retrieve workout logs.")
		return
	}
	if logs == nil {
		logs = []domain.WorkoutLog{}
	}
	c.JSON(http.StatusOK, logs)
}

// DeleteLog removes the log for one date.
func (h *PlanHandler) DeleteLog(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.planService.DeleteLog(c.Request.Context(), userID, c.Param("date")); err != nil {
		h.mapPlanError(c, err, "Failed to delete workout log.")
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Handler Methods: calendar ---

// Calendar returns the week or month grid around ?date= with activity
// marks from the user's logs. Defaults to the current month.
func (h *PlanHandler) Calendar(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	view := calendar.View(c.DefaultQuery("view", string(calendar.ViewMonth)))
	if view != calendar.ViewWeek && view != calendar.ViewMonth {
		abortWithError(c, http.StatusBadRequest, "Query parameter 'view' must be 'week' or 'month'.")
		return
	}
	ref := c.Query("date")
	if ref == "" {
		ref = domain.FormatDate(time.Now().UTC())
	}

	cells, err := h.planService.Calendar(c.Request.Context(), userID, ref, view)
	if err != nil {
		h.mapPlanError(c, err, "Failed to build calendar.")
		return
	}
	c.JSON(http.StatusOK, cells)
}

// --- Handler Methods: session video ---

// RequestUploadURL presigns a PUT for attaching a video to one date's log.
func (h *PlanHandler) RequestUploadURL(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	resp, err := h.planService.RequestVideoUploadURL(c.Request.Context(), userID, c.Param("date"), req.ContentType)
	if err != nil {
		h.mapPlanError(c, err, "Failed to generate upload URL.")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ConfirmUpload records an upload the client completed against a presigned
// URL and links it to the log.
func (h *PlanHandler) ConfirmUpload(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req ConfirmUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	log, err := h.planService.ConfirmVideoUpload(c.Request.Context(), userID, c.Param("date"), req.ObjectKey, req.FileName, req.FileSize, req.ContentType)
	if err != nil {
		h.mapPlanError(c, err, "Failed to confirm upload.")
		return
	}
	c.JSON(http.StatusOK, log)
}

// DownloadURL presigns a GET for the video attached to one date's log.
func (h *PlanHandler) DownloadURL(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	url, err := h.planService.VideoDownloadURL(c.Request.Context(), userID, c.Param("date"))
	if err != nil {
		h.mapPlanError(c, err, "Failed to generate download URL.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"downloadUrl": url})
}

func (h *PlanHandler) mapPlanError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrInvalidDate), errors.Is(err, service.ErrInvalidContentType):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrTemplateNotFound), errors.Is(err, service.ErrLogNotFound), errors.Is(err, service.ErrUploadMissing):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrPlanTemplateNotUsable):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrStorageDisabled):
		abortWithError(c, http.StatusServiceUnavailable, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, fallback)
	}
}
