package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"coachfit/server/internal/domain"
	"coachfit/server/internal/service"
)

type CoachHandler struct {
	coachService service.CoachService
	planService  service.PlanService
}

func NewCoachHandler(coachService service.CoachService, planService service.PlanService) *CoachHandler {
	return &CoachHandler{coachService: coachService, planService: planService}
}

// --- DTOs ---

type AddPatientRequest struct {
	PatientEmail string `json:"patientEmail" binding:"required,email"`
}

type AssignTemplateRequest struct {
	TemplateID string `json:"templateId" binding:"required"`
}

// --- Handler Methods ---

// AddPatient links an existing patient account to the coach's roster by
// email.
func (h *CoachHandler) AddPatient(c *gin.Context) {
	var req AddPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}

	patient, err := h.coachService.AddPatientByEmail(c.Request.Context(), coachID, req.PatientEmail)
	if err != nil {
		h.mapCoachError(c, err, "Failed to add patient.")
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(patient))
}

// GetPatients lists the coach's roster.
func (h *CoachHandler) GetPatients(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}

	patients, err := h.coachService.GetPatients(c.Request.Context(), coachID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve patients.")
		return
	}
	if patients == nil {
		c.JSON(http.StatusOK, []UserResponse{})
		return
	}
	c.JSON(http.StatusOK, MapUsersToResponse(patients))
}

// AssignTemplate hands one of the coach's templates to a patient.
func (h *CoachHandler) AssignTemplate(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	patientID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid patient ID format.")
		return
	}
	var req AssignTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	templateID, err := primitive.ObjectIDFromHex(req.TemplateID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid template ID format.")
		return
	}

	assignment, err := h.coachService.AssignTemplate(c.Request.Context(), coachID, patientID, templateID)
	if err != nil {
		h.mapCoachError(c, err, "Failed to assign template.")
		return
	}
	c.JSON(http.StatusCreated, assignment)
}

// GetPatientAssignments lists a patient's assignments for their coach.
func (h *CoachHandler) GetPatientAssignments(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	patientID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid patient ID format.")
		return
	}

	if _, err := h.coachService.VerifyPatient(c.Request.Context(), coachID, patientID); err != nil {
		h.mapCoachError(c, err, "Failed to retrieve assignments.")
		return
	}
	views, err := h.coachService.GetAssignmentsForPatient(c.Request.Context(), patientID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve assignments.")
		return
	}
	c.JSON(http.StatusOK, views)
}

// GetPatientActivity summarizes a patient's logging history.
func (h *CoachHandler) GetPatientActivity(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	patientID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid patient ID format.")
		return
	}

	activity, err := h.coachService.GetPatientActivity(c.Request.Context(), coachID, patientID)
	if err != nil {
		h.mapCoachError(c, err, "Failed to retrieve patient activity.")
		return
	}
	c.JSON(http.StatusOK, activity)
}

// GetPatientLogs lets the coach read a patient's workout logs, optionally
// bounded with ?from= and ?to=.
func (h *CoachHandler) GetPatientLogs(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	patientID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid patient ID format.")
		return
	}

	logs, err := h.coachService.GetPatientLogs(c.Request.Context(), coachID, patientID, c.Query("from"), c.Query("to"))
	if err != nil {
		h.mapCoachError(c, err, "Failed to retrieve patient logs.")
		return
	}
	if logs == nil {
		logs = []domain.WorkoutLog{}
	}
	c.JSON(http.StatusOK, logs)
}

// GetPatientVideoURL presigns a GET for a patient's session video so the
// coach can review it.
func (h *CoachHandler) GetPatientVideoURL(c *gin.Context) {
	coachID, ok := currentUserID(c)
	if !ok {
		return
	}
	patientID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid patient ID format.")
		return
	}

	if _, err := h.coachService.VerifyPatient(c.Request.Context(), coachID, patientID); err != nil {
		h.mapCoachError(c, err, "Failed to generate download URL.")
		return
	}

	url, err := h.planService.VideoDownloadURL(c.Request.Context(), patientID, c.Param("date"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLogNotFound), errors.Is(err, service.ErrUploadMissing):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrStorageDisabled):
			abortWithError(c, http.StatusServiceUnavailable, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to generate download URL.")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"downloadUrl": url})
}

// MyAssignments lists the authenticated patient's own assignments with
// their templates resolved.
func (h *CoachHandler) MyAssignments(c *gin.Context) {
	patientID, ok := currentUserID(c)
	if !ok {
		return
	}

	views, err := h.coachService.GetAssignmentsForPatient(c.Request.Context(), patientID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve assignments.")
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *CoachHandler) mapCoachError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrPatientNotFound), errors.Is(err, service.ErrTemplateNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrUserNotPatient),
		errors.Is(err, service.ErrPatientAlreadyAssigned),
		errors.Is(err, service.ErrPatientNotOwned),
		errors.Is(err, service.ErrTemplateAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrAlreadyAssigned):
		abortWithError(c, http.StatusConflict, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, fallback)
	}
}
