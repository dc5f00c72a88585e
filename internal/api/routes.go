package api

import (
	"alcyxob/hyrox-trainer/internal/service"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine with recovery, request logging and every
// route registered.
func NewRouter(logger *slog.Logger, jwtSecret string, programService service.ProgramService) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(logger))
	SetupRoutes(router, jwtSecret, programService)
	return router
}

func SetupRoutes(router *gin.Engine, jwtSecret string, programService service.ProgramService) {
	templateHandler := NewTemplateHandler(programService)
	programHandler := NewProgramHandler(programService)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	apiV1.Use(AuthMiddleware(jwtSecret))
	{
		apiV1.GET("/templates", templateHandler.ListTemplates)
		apiV1.GET("/templates/:templateId", templateHandler.GetTemplate)
		apiV1.POST("/personalization/validate", templateHandler.ValidatePersonalization)

		programGroup := apiV1.Group("/program")
		{
			programGroup.GET("", programHandler.GetCurrentProgram)
			programGroup.POST("", programHandler.StartProgram)
			programGroup.DELETE("", programHandler.QuitProgram)

			programGroup.GET("/today", programHandler.GetTodayWorkout)
			programGroup.PUT("/weeks/:week/days/:day/completion", programHandler.CompleteWorkout)
			programGroup.GET("/missed", programHandler.GetMissedWorkouts)
			programGroup.GET("/insights", programHandler.GetInsights)
			programGroup.POST("/export", programHandler.ExportProgram)
		}
	}
}
