package app

import (
	"coding_arena_backend/internal/config"
	"coding_arena_backend/internal/middleware"
	"coding_arena_backend/internal/model"
	"coding_arena_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
		public.GET("/tasks", c.task.GetTasks)
		public.GET("/tasks/:id", c.task.GetTask)
		public.GET("/leaderboard", c.progress.GetLeaderboard)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/profile", c.auth.GetProfile)
		authGroup.GET("/progress", c.progress.GetProgress)
		authGroup.POST("/submissions", c.submission.Submit)
		authGroup.GET("/submissions", c.submission.ListMySubmissions)
	}

	// 3. 管理员接口
	adminGroup := router.Group("/api/admin")
	adminGroup.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		adminGroup.POST("/tasks", c.task.CreateTask)
	}
}
