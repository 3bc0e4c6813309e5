package api

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Services is everything the HTTP layer calls into.
type Services struct {
	Auth        service.AuthService
	Profiles    service.ProfileService
	Admin       service.AdminService
	Roster      service.RosterService
	Routines    service.RoutineService
	Assignments service.AssignmentService
	Progress    service.ProgressService
	Comments    service.CommentService
}

// RouteOptions tunes the outer surface.
type RouteOptions struct {
	RateLimiter      RequestRateLimiter // nil disables limiting
	AuthPerMinute    int
	CalendarLocation *time.Location
}

func SetupRoutes(router *gin.Engine, svc Services, opts RouteOptions) {
	authHandler := NewAuthHandler(svc.Auth)
	profileHandler := NewProfileHandler(svc.Profiles, svc.Admin)
	trainerHandler := NewTrainerHandler(svc.Roster)
	routineHandler := NewRoutineHandler(svc.Routines, svc.Assignments, svc.Progress, opts.CalendarLocation)
	exerciseHandler := NewExerciseHandler(svc.Progress)
	studentHandler := NewStudentHandler(svc.Assignments, svc.Progress, svc.Comments)

	authMiddleware := AuthMiddleware(svc.Auth)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		authGroup.Use(RateLimit(opts.RateLimiter, "auth", opts.AuthPerMinute))
		{
			authGroup.POST("/signup", authHandler.SignUp)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.POST("/logout", authHandler.Logout)
			authGroup.POST("/password/reset-request", authHandler.RequestPasswordReset)
			authGroup.POST("/password/reset", authHandler.ResetPassword)
			authGroup.POST("/magic-link", authHandler.RequestMagicLink)
			authGroup.POST("/magic-link/verify", authHandler.VerifyMagicLink)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", authHandler.Me)
		protected.PUT("/me/password", authHandler.UpdatePassword)
		protected.POST("/me/onboarding", profileHandler.CompleteOnboarding)

		protected.GET("/profiles/:id", profileHandler.GetProfile)
		protected.PATCH("/profiles/:id", profileHandler.UpdateProfile)

		// --- Trainer roster ---
		trainerGroup := protected.Group("/trainer")
		trainerGroup.Use(RoleMiddleware(domain.RoleTrainer))
		{
			trainerGroup.GET("/students", trainerHandler.GetStudents)
			trainerGroup.POST("/students", trainerHandler.AddStudent)
			trainerGroup.DELETE("/students/:studentId", trainerHandler.RemoveStudent)
		}

		// --- Routines ---
		routineGroup := protected.Group("/routines")
		{
			routineGroup.GET("", routineHandler.ListRoutines)
			routineGroup.POST("", RoleMiddleware(domain.RoleTrainer), routineHandler.CreateRoutine)
			routineGroup.GET("/:id", routineHandler.GetRoutine)
			routineGroup.PUT("/:id", RoleMiddleware(domain.RoleTrainer, domain.RoleAdmin), routineHandler.UpdateRoutine)
			routineGroup.DELETE("/:id", RoleMiddleware(domain.RoleTrainer, domain.RoleAdmin), routineHandler.DeleteRoutine)
			routineGroup.GET("/:id/today", routineHandler.Today)
			routineGroup.GET("/:id/progress", routineHandler.Progress)
			routineGroup.POST("/:id/video-upload-url", RoleMiddleware(domain.RoleTrainer, domain.RoleAdmin), routineHandler.RequestVideoUploadURL)

			routineGroup.GET("/:id/assignments", routineHandler.ListAssignments)
			routineGroup.POST("/:id/assignments", routineHandler.AssignStudents)
			routineGroup.PUT("/:id/assignments", routineHandler.SetAssignments)
			routineGroup.DELETE("/:id/assignments/:studentId", routineHandler.Unassign)
		}
		protected.POST("/assignments/:id/visibility", routineHandler.ToggleVisibility)

		// --- Completion log ---
		protected.POST("/exercises/:id/completion", RoleMiddleware(domain.RoleStudent), exerciseHandler.MarkComplete)
		protected.DELETE("/exercises/:id/completion", RoleMiddleware(domain.RoleStudent), exerciseHandler.UnmarkComplete)
		protected.GET("/workout-days/:id/progress", exerciseHandler.DayProgress)

		// --- Student views ---
		protected.GET("/students/:id/assignments", studentHandler.GetAssignments)
		protected.GET("/students/:id/performance", studentHandler.GetPerformance)
		protected.GET("/students/:id/comments", studentHandler.GetComments)
		protected.POST("/comments", RoleMiddleware(domain.RoleStudent), studentHandler.AddComment)
		protected.DELETE("/comments/:id", studentHandler.DeleteComment)

		// --- Admin ---
		adminGroup := protected.Group("/admin")
		adminGroup.Use(RoleMiddleware(domain.RoleAdmin))
		{
			adminGroup.GET("/users", profileHandler.ListUsers)
			adminGroup.POST("/users", profileHandler.CreateUser)
			adminGroup.PUT("/users/:id/role", profileHandler.ChangeRole)
			adminGroup.GET("/reports", profileHandler.Report)
		}
	}
}
