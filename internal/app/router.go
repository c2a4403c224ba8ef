package app

import (
	"learning_points_backend/internal/config"
	"learning_points_backend/internal/middleware"
	"learning_points_backend/internal/model"
	"learning_points_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", c.health.HealthCheck)

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要登录的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg.JWT))
	{
		a.registerUserRoutes(authGroup, c)
	}

	// 3. 管理员相关接口
	a.registerAdminRoutes(router, c, cfg)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)
		public.POST("/auth/logout", c.auth.Logout)

		public.GET("/progression/leaderboard", c.progression.GetLeaderboard)
		public.GET("/level-config/levels", c.levelConfig.ListLevels)
		public.GET("/level-config/points", c.levelConfig.GetPointsConfig)
	}
}

func (a *App) registerUserRoutes(group *gin.RouterGroup, c *controllers) {
	group.GET("/auth/profile", c.auth.GetProfile)
	group.GET("/auth/me", c.auth.GetProfile)
	group.POST("/auth/me", c.auth.UpdateProfile)
	group.POST("/auth/change-password", c.auth.ChangePassword)

	reading := group.Group("/reading-state")
	{
		reading.POST("/access/:moduleId", c.reading.RecordAccess)
		reading.GET("/last-accessed", c.reading.GetLastAccessed)
	}

	progression := group.Group("/progression")
	{
		progression.GET("/me", c.progression.GetMyProgression)
		progression.GET("/history", c.progression.GetHistory)
		progression.GET("/attempt-status", c.progression.GetAttemptStatus)
		progression.POST("/award-points/section", c.progression.AwardSection)
		progression.POST("/award-points/quiz", c.progression.AwardQuiz)
		progression.POST("/award-points/final-quiz", c.progression.AwardFinalQuiz)
	}
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	admin := router.Group("/api")
	admin.Use(middleware.AuthMiddleware(cfg.JWT), middleware.RoleMiddleware(model.Admin))
	{
		admin.POST("/progression/init-defaults", c.progression.InitDefaults)

		levelConfig := admin.Group("/level-config")
		{
			levelConfig.GET("/levels/all", c.levelConfig.ListAllLevels)
			levelConfig.POST("/levels", c.levelConfig.CreateLevel)
			levelConfig.PUT("/levels/:id", c.levelConfig.UpdateLevel)
			levelConfig.DELETE("/levels/:id", c.levelConfig.DeleteLevel)
			levelConfig.PUT("/points", c.levelConfig.UpdatePointsConfig)
			levelConfig.PUT("/points/:id", c.levelConfig.UpdatePointsConfig)
			levelConfig.POST("/init", c.progression.InitDefaults)
		}

		scores := admin.Group("/user-scores")
		{
			scores.GET("", c.userScore.List)
			scores.POST("/reset", c.userScore.ResetAll)
			scores.GET("/:userId", c.userScore.Get)
			scores.PUT("/:userId", c.userScore.Set)
			scores.POST("/:userId/add", c.userScore.Add)
			scores.DELETE("/:userId", c.userScore.Delete)
		}
	}
}
