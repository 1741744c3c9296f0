package api

import (
	"net/http"

	"github.com/mantism/hyperbolic/internal/service"

	"github.com/gin-gonic/gin"
)

// SetupRoutes wires all handlers into the Gin engine.
func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	trickService service.TrickService,
	videoService service.VideoService,
	sessionService service.SessionService,
) {
	authHandler := NewAuthHandler(authService)
	trickHandler := NewTrickHandler(trickService)
	videoHandler := NewVideoHandler(videoService)
	sessionHandler := NewSessionHandler(sessionService)

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
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr})
		})

		// --- Trick Catalog ---
		trickGroup := protected.Group("/tricks")
		{
			trickGroup.POST("", trickHandler.CreateTrick)
			trickGroup.GET("", trickHandler.ListTricks)
			trickGroup.GET("/:trickId", trickHandler.GetTrick)
		}

		// --- Video Upload Pipeline ---
		videoGroup := protected.Group("/videos")
		{
			videoGroup.POST("/upload-request", videoHandler.RequestUpload)
			videoGroup.POST("/complete", videoHandler.CompleteUpload)
			videoGroup.GET("", videoHandler.GetMyVideos)
		}

		// --- Training Sessions ---
		sessionGroup := protected.Group("/sessions")
		{
			sessionGroup.POST("", sessionHandler.StartSession)
			sessionGroup.GET("", sessionHandler.GetMySessions)
			sessionGroup.PUT("/:sessionId", sessionHandler.UpdateSession)
			sessionGroup.DELETE("/:sessionId", sessionHandler.DeleteSession)
		}
	}
}
