package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"coachfit/server/internal/catalog"
	"coachfit/server/internal/classify"
)

// CatalogHandler serves the built-in exercise library. The library is
// static, so there is no service behind it.
type CatalogHandler struct{}

func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// CatalogResponse bundles the filtered entries with the filter vocabulary
// the client renders its pickers from.
type CatalogResponse struct {
	Exercises    []catalog.Entry `json:"exercises"`
	MuscleGroups []string        `json:"muscleGroups"`
	Equipments   []string        `json:"equipments"`
	Modalities   []string        `json:"modalities"`
}

type ClassifyResponse struct {
	Name        string `json:"name"`
	MuscleGroup string `json:"muscleGroup"`
}

// Search filters the exercise library by free-text query, muscle group and
// equipment. With no filters it returns the whole library.
func (h *CatalogHandler) Search(c *gin.Context) {
	entries := catalog.Search(
		c.Query("query"),
		c.Query("muscleGroup"),
		c.Query("equipment"),
	)
	if entries == nil {
		entries = []catalog.Entry{}
	}

	c.JSON(http.StatusOK, CatalogResponse{
		Exercises:    entries,
		MuscleGroups: catalog.MuscleGroups,
		Equipments:   catalog.Equipments(),
		Modalities:   catalog.Modalities(),
	})
}

// GetByID returns one library entry.
func (h *CatalogHandler) GetByID(c *gin.Context) {
	entry := catalog.FindByID(c.Param("id"))
	if entry == nil {
		abortWithError(c, http.StatusNotFound, "Exercise not found in catalog.")
		return
	}
	c.JSON(http.StatusOK, entry)
}

// Classify maps a free-form exercise name to a muscle group.
func (h *CatalogHandler) Classify(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		abortWithError(c, http.StatusBadRequest, "Query parameter 'name' is required.")
		return
	}
	c.JSON(http.StatusOK, ClassifyResponse{
		Name:        name,
		MuscleGroup: classify.DetectGroup(name),
	})
}
