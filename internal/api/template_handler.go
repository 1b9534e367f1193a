package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"coachfit/server/internal/classify"
	"coachfit/server/internal/domain"
	"coachfit/server/internal/plan"
	"coachfit/server/internal/service"
)

type TemplateHandler struct {
	templateService service.TemplateService
}

func NewTemplateHandler(templateService service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

// --- DTOs ---

// EntryRequest carries one exercise prescription. The numeric fields are
// deliberately untyped: clients send numbers, numeric strings or nothing,
// and the values are coerced on the way in rather than rejected.
type EntryRequest struct {
	ID           string `json:"id"`
	Name         string `json:"name" binding:"required"`
	MuscleGroup  string `json:"muscleGroup"`
	Equipment    string `json:"equipment"`
	TargetSets   any    `json:"targetSets"`
	TargetReps   any    `json:"targetReps"`
	TargetWeight any    `json:"targetWeight"`
	Note         string `json:"note"`
}

type DayRequest struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Entries []EntryRequest `json:"entries"`
}

type TemplateRequest struct {
	Name string       `json:"name"`
	Days []DayRequest `json:"days"`
}

type TemplateResponse struct {
	ID        string       `json:"id"`
	OwnerID   string       `json:"ownerId"`
	Name      string       `json:"name"`
	Days      []domain.Day `json:"days"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

func mapTemplateRequest(req TemplateRequest) domain.Template {
	tpl := domain.Template{Name: req.Name}
	for _, dayReq := range req.Days {
		day := domain.Day{ID: dayReq.ID, Name: dayReq.Name}
		if day.ID == "" {
			day.ID = uuid.NewString()
		}
		for _, e := range dayReq.Entries {
			entry := domain.ExerciseEntry{
				ID:           e.ID,
				Name:         e.Name,
				MuscleGroup:  e.MuscleGroup,
				Equipment:    e.Equipment,
				TargetSets:   plan.CoerceCount(e.TargetSets),
				TargetReps:   plan.CoerceCount(e.TargetReps),
				TargetWeight: plan.CoerceWeight(e.TargetWeight),
				Note:         e.Note,
			}
			if entry.ID == "" {
				entry.ID = uuid.NewString()
			}
			if entry.MuscleGroup == "" {
				entry.MuscleGroup = classify.DetectGroup(entry.Name)
			}
			day.Entries = append(day.Entries, entry)
		}
		tpl.Days = append(tpl.Days, day)
	}
	return tpl
}

func mapTemplateResponse(tpl *domain.Template) TemplateResponse {
	return TemplateResponse{
		ID:        tpl.ID.Hex(),
		OwnerID:   tpl.OwnerID.Hex(),
		Name:      tpl.Name,
		Days:      tpl.Days,
		CreatedAt: tpl.CreatedAt,
		UpdatedAt: tpl.UpdatedAt,
	}
}

func mapTemplatesResponse(tpls []domain.Template) []TemplateResponse {
	out := make([]TemplateResponse, len(tpls))
	for i := range tpls {
		out[i] = mapTemplateResponse(&tpls[i])
	}
	return out
}

// --- Handler Methods ---

// List returns all templates owned by the authenticated user.
func (h *TemplateHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	templates, err := h.templateService.ListTemplates(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve templates.")
		return
	}
	c.JSON(http.StatusOK, mapTemplatesResponse(templates))
}

// Get returns one template owned by the authenticated user.
func (h *TemplateHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	templateID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid template ID format.")
		return
	}

	tpl, err := h.templateService.GetTemplate(c.Request.Context(), userID, templateID)
	if err != nil {
		h.mapTemplateError(c, err, "Failed to retrieve template.")
		return
	}
	c.JSON(http.StatusOK, mapTemplateResponse(tpl))
}

// Create saves a new template draft for the authenticated user.
func (h *TemplateHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	saved, err := h.templateService.SaveTemplate(c.Request.Context(), userID, mapTemplateRequest(req))
	if err != nil {
		h.mapTemplateError(c, err, "Failed to save template.")
		return
	}
	c.JSON(http.StatusCreated, mapTemplateResponse(saved))
}

// Update replaces an existing template owned by the authenticated user.
func (h *TemplateHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	templateID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid template ID format.")
		return
	}
	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	tpl := mapTemplateRequest(req)
	tpl.ID = templateID
	saved, err := h.templateService.SaveTemplate(c.Request.Context(), userID, tpl)
	if err != nil {
		h.mapTemplateError(c, err, "Failed to save template.")
		return
	}
	c.JSON(http.StatusOK, mapTemplateResponse(saved))
}

// Delete removes a template owned by the authenticated user.
func (h *TemplateHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	templateID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid template ID format.")
		return
	}

	if err := h.templateService.DeleteTemplate(c.Request.Context(), userID, templateID); err != nil {
		h.mapTemplateError(c, err, "Failed to delete template.")
		return
	}
	c.Status(http.StatusNoContent)
}

// Duplicate deep-copies a template under the same owner.
func (h *TemplateHandler) Duplicate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	templateID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid template ID format.")
		return
	}

	dup, err := h.templateService.DuplicateTemplate(c.Request.Context(), userID, templateID)
	if err != nil {
		h.mapTemplateError(c, err, "Failed to duplicate template.")
		return
	}
	c.JSON(http.StatusCreated, mapTemplateResponse(dup))
}

// Summary returns the series-per-muscle-group breakdown of a template.
func (h *TemplateHandler) Summary(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	templateID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid template ID format.")
		return
	}

	summary, err := h.templateService.Summary(c.Request.Context(), userID, templateID)
	if err != nil {
		h.mapTemplateError(c, err, "Failed to compute template summary.")
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *TemplateHandler) mapTemplateError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrTemplateNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrTemplateAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, fallback)
	}
}
