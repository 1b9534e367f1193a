package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"coachfit/server/internal/domain"
	"coachfit/server/internal/service"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	templateService service.TemplateService,
	planService service.PlanService,
	coachService service.CoachService,
) {
	authHandler := NewAuthHandler(authService)
	catalogHandler := NewCatalogHandler()
	templateHandler := NewTemplateHandler(templateService)
	planHandler := NewPlanHandler(planService)
	coachHandler := NewCoachHandler(coachService, planService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userID, ok := currentUserID(c)
			if !ok {
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userID.Hex(), "role": role})
		})

		// --- Exercise catalog (read-only, shared by both roles) ---
		catalogGroup := protected.Group("/catalog")
		{
			catalogGroup.GET("", catalogHandler.Search)
			catalogGroup.GET("/:id", catalogHandler.GetByID)
		}
		protected.GET("/classify", catalogHandler.Classify)

		// --- Template editing ---
		templateGroup := protected.Group("/templates")
		{
			templateGroup.GET("", templateHandler.List)
			templateGroup.POST("", templateHandler.Create)
			templateGroup.GET("/:id", templateHandler.Get)
			templateGroup.PUT("/:id", templateHandler.Update)
			templateGroup.DELETE("/:id", templateHandler.Delete)
			templateGroup.POST("/:id/duplicate", templateHandler.Duplicate)
			templateGroup.GET("/:id/summary", templateHandler.Summary)
		}

		// --- Active plan, logs, calendar (the training surface) ---
		planGroup := protected.Group("/plan")
		{
			planGroup.GET("", planHandler.GetActive)
			planGroup.PUT("", planHandler.Activate)
			planGroup.DELETE("", planHandler.Deactivate)
		}

		logGroup := protected.Group("/logs")
		{
			logGroup.GET("", planHandler.ListLogs)
			logGroup.PUT("", planHandler.UpsertLog)
			logGroup.DELETE("/:date", planHandler.DeleteLog)
			logGroup.POST("/:date/video/upload-url", planHandler.RequestUploadURL)
			logGroup.POST("/:date/video/confirm", planHandler.ConfirmUpload)
			logGroup.GET("/:date/video/download-url", planHandler.DownloadURL)
		}

		protected.GET("/calendar", planHandler.Calendar)

		// --- Patient's view of what their coach assigned ---
		protected.GET("/assignments", coachHandler.MyAssignments)

		// --- Coach Specific Routes ---
		coachApiGroup := protected.Group("/coach")
		coachApiGroup.Use(RoleMiddleware(domain.RoleCoach))
		{
			coachApiGroup.POST("/patients", coachHandler.AddPatient)
			coachApiGroup.GET("/patients", coachHandler.GetPatients)
			coachApiGroup.POST("/patients/:id/assignments", coachHandler.AssignTemplate)
			coachApiGroup.GET("/patients/:id/assignments", coachHandler.GetPatientAssignments)
			coachApiGroup.GET("/patients/:id/activity", coachHandler.GetPatientActivity)
			coachApiGroup.GET("/patients/:id/logs", coachHandler.GetPatientLogs)
			coachApiGroup.GET("/patients/:id/logs/:date/video-url", coachHandler.GetPatientVideoURL)
		}
	}
}
