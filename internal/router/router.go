package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/tildelab/tildes-backend/internal/config"
	"github.com/tildelab/tildes-backend/internal/handler"
	"github.com/tildelab/tildes-backend/internal/middleware"
	"github.com/tildelab/tildes-backend/internal/response"
	"github.com/tildelab/tildes-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth     *handler.AuthHandler
	Class    *handler.ClassHandler
	Student  *handler.StudentHandler
	Errors   *handler.ErrorsHandler
	Training *handler.TrainingHandler
	Monitor  *handler.MonitorHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for the login route (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── Teacher authentication ────────────────────────────────────────
	router.POST("/teacher/authenticate", authLimiter.Middleware(), handlers.Auth.Authenticate)

	// ─── Class lifecycle ───────────────────────────────────────────────
	class := router.Group("/class")
	{
		class.GET("/:code/phase", handlers.Class.GetPhase)
		class.POST("/:code/join", handlers.Class.Join)

		// Phase writes and restart are teacher-only.
		class.PUT("/:code/setPhase", middleware.RequireTeacherJWT(authService), handlers.Class.SetPhase)
		class.PUT("/:code/restart", middleware.RequireTeacherJWT(authService), handlers.Class.Restart)
	}

	// ─── Students ──────────────────────────────────────────────────────
	router.GET("/students", handlers.Student.ListStudents)
	student := router.Group("/student")
	{
		student.PUT("/:id/updateScore", handlers.Student.UpdateScore)
		student.PUT("/:id/setProgress", handlers.Student.SetProgress)
	}

	// ─── Error tallies ─────────────────────────────────────────────────
	router.POST("/update-errors", handlers.Errors.UpdateErrors)
	router.GET("/common-errors", handlers.Errors.CommonErrors)

	// ─── Training & batches ────────────────────────────────────────────
	models := router.Group("/models")
	{
		models.POST("/:name/train", handlers.Training.Train)
		models.POST("/:name/matrix", handlers.Training.ConfusionMatrix)
		models.POST("/test", handlers.Training.TestModels)
	}
	router.POST("/batches/next", handlers.Training.NextBatch)

	// ─── Teacher monitor (WebSocket) ───────────────────────────────────
	ws := router.Group("/ws")
	ws.Use(middleware.RequireTeacherWSAuth(authService))
	{
		ws.GET("/class/:code/monitor", handlers.Monitor.ClassMonitorStream)
	}

	return router
}
