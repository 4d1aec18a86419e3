package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lingodesk/placement-backend/internal/config"
	"github.com/lingodesk/placement-backend/internal/handler"
	"github.com/lingodesk/placement-backend/internal/middleware"
	"github.com/lingodesk/placement-backend/internal/model"
	"github.com/lingodesk/placement-backend/internal/response"
	"github.com/lingodesk/placement-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth        *handler.AuthHandler
	Test        *handler.TestHandler
	Attempt     *handler.AttemptHandler
	Catalog     *handler.CatalogHandler
	LearnerMgmt *handler.LearnerManagementHandler
	WS          *handler.WSHandler
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

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/learner/login", handlers.Auth.LearnerLogin)
		auth.POST("/teacher/login", handlers.Auth.TeacherLogin)

		// Authenticated profile routes
		auth.POST("/learner/logout", middleware.RequireLearnerJWT(authService), handlers.Auth.LearnerLogout)
		auth.GET("/learner/me", middleware.RequireLearnerJWT(authService), handlers.Auth.GetLearnerProfile)
		auth.GET("/teacher/me", middleware.RequireTeacherJWT(authService), handlers.Auth.GetTeacherProfile)
	}

	// ─── 2. Learner Group (JWT + Single Device) ────────────────────────
	learnerAPI := router.Group("/api/v1/learner")
	learnerAPI.Use(
		middleware.RequireLearnerJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		learnerAPI.GET("/tests", handlers.Attempt.ListAvailableTests)
		learnerAPI.POST("/tests/:test_id/attempts", handlers.Attempt.StartAttempt)
		learnerAPI.GET("/tests/:test_id/results/:session_token", handlers.Attempt.GetResult)
		learnerAPI.GET("/results", handlers.Attempt.History)

		attempts := learnerAPI.Group("/attempts/:session_token")
		{
			attempts.POST("/answer", handlers.Attempt.SelectAnswer)
			attempts.POST("/next", handlers.Attempt.Next)
			attempts.POST("/previous", handlers.Attempt.Previous)
			attempts.POST("/skip", handlers.Attempt.Skip)
			attempts.POST("/submit", handlers.Attempt.Submit)
		}
	}

	// ─── 3. WebSocket Group (Teacher WS Auth) ──────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireTeacherWSAuth(authService))
	{
		ws.GET("/teacher/tests/:test_id/monitor",
			middleware.RequirePermission(string(model.PermissionMonitorStream)),
			handlers.WS.MonitorStream,
		)
	}

	// ─── 4. Teacher Group (JWT + RBAC) ─────────────────────────────────
	teacherAPI := router.Group("/api/v1/teacher")
	teacherAPI.Use(middleware.RequireTeacherJWT(authService))
	{
		// Test management
		teacherAPI.GET("/tests",
			middleware.RequirePermission(string(model.PermissionTestsRead)),
			handlers.Test.ListTests,
		)
		teacherAPI.POST("/tests",
			middleware.RequirePermission(string(model.PermissionTestsWrite)),
			handlers.Test.CreateTest,
		)
		teacherAPI.GET("/tests/:test_id",
			middleware.RequirePermission(string(model.PermissionTestsRead)),
			handlers.Test.GetTest,
		)
		teacherAPI.PUT("/tests/:test_id",
			middleware.RequirePermission(string(model.PermissionTestsWrite)),
			handlers.Test.UpdateTest,
		)
		teacherAPI.DELETE("/tests/:test_id",
			middleware.RequirePermission(string(model.PermissionTestsWrite)),
			handlers.Test.DeleteTest,
		)

		// Lifecycle transitions
		teacherAPI.POST("/tests/:test_id/publish",
			middleware.RequirePermission(string(model.PermissionTestsPublish)),
			handlers.Test.PublishTest,
		)
		teacherAPI.POST("/tests/:test_id/unpublish",
			middleware.RequirePermission(string(model.PermissionTestsPublish)),
			handlers.Test.UnpublishTest,
		)
		teacherAPI.POST("/tests/:test_id/archive",
			middleware.RequirePermission(string(model.PermissionTestsPublish)),
			handlers.Test.ArchiveTest,
		)
		teacherAPI.POST("/tests/:test_id/restore",
			middleware.RequirePermission(string(model.PermissionTestsPublish)),
			handlers.Test.RestoreTest,
		)
		teacherAPI.POST("/tests/:test_id/refresh-cache",
			middleware.RequirePermission(string(model.PermissionTestsPublish)),
			handlers.Test.RefreshTestCache,
		)

		// Question authoring
		teacherAPI.POST("/tests/:test_id/questions",
			middleware.RequirePermission(string(model.PermissionTestsWrite)),
			handlers.Test.AddQuestion,
		)
		teacherAPI.PUT("/tests/:test_id/questions/:question_id",
			middleware.RequirePermission(string(model.PermissionTestsWrite)),
			handlers.Test.UpdateQuestion,
		)
		teacherAPI.DELETE("/tests/:test_id/questions/:question_id",
			middleware.RequirePermission(string(model.PermissionTestsWrite)),
			handlers.Test.DeleteQuestion,
		)

		// Page authoring
		teacherAPI.POST("/tests/:test_id/pages/content",
			middleware.RequirePermission(string(model.PermissionTestsWrite)),
			handlers.Test.AddContentPage,
		)
		teacherAPI.POST("/tests/:test_id/pages/question",
			middleware.RequirePermission(string(model.PermissionTestsWrite)),
			handlers.Test.AddQuestionPage,
		)
		teacherAPI.POST("/tests/:test_id/pages/:page_id/move",
			middleware.RequirePermission(string(model.PermissionTestsWrite)),
			handlers.Test.MovePage,
		)
		teacherAPI.DELETE("/tests/:test_id/pages/:page_id",
			middleware.RequirePermission(string(model.PermissionTestsWrite)),
			handlers.Test.DeletePage,
		)

		// Module assignments
		teacherAPI.PUT("/tests/:test_id/assignments",
			middleware.RequirePermission(string(model.PermissionTestsWrite)),
			handlers.Test.ReplaceAssignments,
		)

		// Results
		teacherAPI.GET("/tests/:test_id/results",
			middleware.RequirePermission(string(model.PermissionResultsRead)),
			handlers.Test.ListResults,
		)

		// Module catalog
		modulesGroup := teacherAPI.Group("/modules")
		{
			modulesGroup.GET("", middleware.RequirePermission(string(model.PermissionModulesRead)), handlers.Catalog.ListModules)
			modulesGroup.GET("/:module_id", middleware.RequirePermission(string(model.PermissionModulesRead)), handlers.Catalog.GetModule)
			modulesGroup.POST("", middleware.RequirePermission(string(model.PermissionModulesWrite)), handlers.Catalog.CreateModule)
			modulesGroup.PUT("/:module_id", middleware.RequirePermission(string(model.PermissionModulesWrite)), handlers.Catalog.UpdateModule)
			modulesGroup.DELETE("/:module_id", middleware.RequirePermission(string(model.PermissionModulesWrite)), handlers.Catalog.DeleteModule)
		}

		// Learner management
		learnersGroup := teacherAPI.Group("/learners")
		{
			learnersGroup.GET("", middleware.RequirePermission(string(model.PermissionLearnersRead)), handlers.LearnerMgmt.ListLearners)
			learnersGroup.POST("", middleware.RequirePermission(string(model.PermissionLearnersWrite)), handlers.LearnerMgmt.CreateLearner)
			learnersGroup.PUT("/:learner_id", middleware.RequirePermission(string(model.PermissionLearnersWrite)), handlers.LearnerMgmt.UpdateLearner)
			learnersGroup.DELETE("/:learner_id", middleware.RequirePermission(string(model.PermissionLearnersWrite)), handlers.LearnerMgmt.DeleteLearner)
			learnersGroup.POST("/:learner_id/reset-session", middleware.RequirePermission(string(model.PermissionLearnersWrite)), handlers.LearnerMgmt.ResetLearnerSession)
		}
	}

	return router
}
