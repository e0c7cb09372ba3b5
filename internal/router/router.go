package router

import (
	"time"

	"github.com/carenrueda/api-gestion/internal/handlers"
	"github.com/carenrueda/api-gestion/internal/metrics"
	"github.com/carenrueda/api-gestion/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers carries the stateful handler groups; package-level handler
// functions cover everything else.
type Handlers struct {
	AI      *handlers.AIHandler
	Uploads *handlers.UploadsHandler
	Email   *handlers.EmailHandler
}

func NewRouter(h Handlers) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(metrics.Middleware())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.Health)
		api.GET("/uploads/:name", h.Uploads.ServeFile)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register)
			auth.POST("/login", handlers.Login)
			auth.POST("/refresh", handlers.Refresh)
			auth.POST("/logout", middleware.AuthMiddleware(), handlers.Logout)
		}

		users := api.Group("/users", middleware.AuthMiddleware())
		{
			users.GET("", middleware.RequireAdmin(), handlers.ListUsers)
			users.GET("/profile", handlers.GetProfile)
			users.PUT("/profile", handlers.UpdateProfile)
			users.POST("/avatar", h.Uploads.UploadAvatar)
			users.DELETE("/avatar", h.Uploads.DeleteAvatar)
			users.DELETE("/:id", middleware.RequireAdmin(), handlers.DeleteUser)
			users.PUT("/:id/role", middleware.RequireAdmin(), handlers.ChangeRole)
		}

		roles := api.Group("/roles", middleware.AuthMiddleware())
		{
			roles.GET("", handlers.ListRoles)
			roles.POST("", middleware.RequireAdmin(), handlers.CreateRole)
			roles.PUT("/:id", middleware.RequireAdmin(), handlers.UpdateRole)
			roles.DELETE("/:id", middleware.RequireAdmin(), handlers.DeleteRole)
		}

		categories := api.Group("/categories", middleware.AuthMiddleware())
		{
			categories.GET("", handlers.ListCategories)
			categories.GET("/:id", handlers.GetCategory)
			categories.POST("", middleware.RequireAdmin(), handlers.CreateCategory)
			categories.PUT("/:id", middleware.RequireAdmin(), handlers.UpdateCategory)
			categories.DELETE("/:id", middleware.RequireAdmin(), handlers.DeleteCategory)
		}

		states := api.Group("/states", middleware.AuthMiddleware())
		{
			states.GET("", handlers.ListStates)
			states.GET("/projects", handlers.ListProjectStates)
			states.GET("/tasks", handlers.ListTaskStates)
			states.GET("/:id", handlers.GetState)
			states.POST("", middleware.RequireAdmin(), handlers.CreateState)
			states.PUT("/:id", middleware.RequireAdmin(), handlers.UpdateState)
			states.DELETE("/:id", middleware.RequireAdmin(), handlers.DeleteState)
		}

		projects := api.Group("/projects", middleware.AuthMiddleware())
		{
			projects.GET("", handlers.ListProjects)
			projects.POST("", handlers.CreateProject)
			projects.GET("/:id", handlers.GetProject)
			projects.PUT("/:id", handlers.UpdateProject)
			projects.DELETE("/:id", handlers.DeleteProject)
			projects.PATCH("/:id/status", handlers.ChangeProjectStatus)

			projects.POST("/:id/members", handlers.AddMember)
			projects.DELETE("/:id/members/:userId", handlers.RemoveMember)

			projects.GET("/:id/tasks", handlers.ListProjectTasks)
			projects.POST("/:id/tasks", handlers.CreateTask)

			projects.GET("/:id/comments", handlers.ListComments)
			projects.POST("/:id/comments", handlers.CreateComment)

			projects.POST("/:id/image", h.Uploads.UploadProjectImage)
			projects.DELETE("/:id/image", h.Uploads.DeleteProjectImage)

			projects.POST("/:id/ai/generate-tasks", h.AI.GenerateTasks)
			projects.GET("/:id/ai/analyze", h.AI.AnalyzeProject)
			projects.GET("/:id/ai/estimate", h.AI.EstimateTime)
			projects.GET("/:id/ai/summary", h.AI.GenerateSummary)
			projects.GET("/:id/ai/improvements", h.AI.SuggestImprovements)
		}

		tasks := api.Group("/tasks", middleware.AuthMiddleware())
		{
			tasks.GET("/my", handlers.MyTasks)
			tasks.GET("/:id", handlers.GetTask)
			tasks.PUT("/:id", handlers.UpdateTask)
			tasks.DELETE("/:id", handlers.DeleteTask)
			tasks.PATCH("/:id/status", handlers.ChangeTaskStatus)
			tasks.PATCH("/:id/assign", handlers.AssignTask)
			tasks.POST("/:id/documents", h.Uploads.UploadTaskDocuments)
		}

		comments := api.Group("/comments", middleware.AuthMiddleware())
		{
			comments.PUT("/:id", handlers.EditComment)
			comments.DELETE("/:id", handlers.DeleteComment)
		}

		email := api.Group("/email", middleware.AuthMiddleware(), middleware.RequireAdmin())
		{
			email.POST("/test", h.Email.SendTestEmail)
		}
	}

	return r
}
