package api

import (
	"alcyxob/fitgen/internal/service"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine with middleware and all routes.
func NewRouter(profileService service.ProfileService, allowedOrigins []string, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(logger), CORS(allowedOrigins))
	SetupRoutes(router, profileService)
	return router
}

func SetupRoutes(router *gin.Engine, profileService service.ProfileService) {
	sessionHandler := NewSessionHandler(profileService)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		sessions := apiV1.Group("/sessions")
		{
			sessions.POST("", sessionHandler.CreateSession)
			sessions.GET("/:sessionId", sessionHandler.GetSession)
			sessions.PUT("/:sessionId/steps/:step", sessionHandler.SubmitStep)
			sessions.POST("/:sessionId/programs", sessionHandler.GenerateProgram)
			sessions.GET("/:sessionId/programs", sessionHandler.ListPrograms)
			sessions.GET("/:sessionId/program", sessionHandler.GetLatestProgram)
			sessions.POST("/:sessionId/programs/:programId/export", sessionHandler.ExportProgram)
		}

		apiV1.GET("/owners/:ownerId/profile", sessionHandler.GetOwnerProfile)
	}
}
