package app

import (
	"quizgen_backend/docs"
	"quizgen_backend/internal/config"
	"quizgen_backend/internal/middleware"
	"quizgen_backend/internal/model"
	"quizgen_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	router.GET("/api/health", c.health.HealthCheck)

	// 客户端自带测验数据的评分，登录与否均可
	optional := router.Group("/api")
	optional.Use(middleware.TryAuthMiddleware(cfg.JWT.Secret))
	{
		optional.POST("/quizzes/ai-submit", c.quiz.SubmitAIQuiz)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	{
		registerQuizRoutes(authGroup, c)
		registerQuestionRoutes(authGroup, c)
		registerResultRoutes(authGroup, c)
	}

	// 3. 管理员相关接口
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg.JWT.Secret), middleware.RoleMiddleware(model.RoleAdmin))
	{
		admin.GET("/stats", c.stats.GetStats)
	}
}

func registerQuizRoutes(rg *gin.RouterGroup, c *controllers) {
	adminOnly := middleware.RoleMiddleware(model.RoleAdmin)

	quizzes := rg.Group("/quizzes")
	{
		quizzes.POST("/generate", c.quiz.GenerateQuiz)
		quizzes.GET("", c.quiz.ListQuizzes)
		quizzes.GET("/all-quizzes", c.quiz.ListQuizzes)
		quizzes.GET("/:id", c.quiz.GetQuiz)
		quizzes.POST("/:id/submit", c.quiz.SubmitQuiz)

		quizzes.GET("/ai-check", adminOnly, c.quiz.CheckAI)
		quizzes.POST("/:id/export", adminOnly, c.quiz.ExportQuiz)
		quizzes.DELETE("/:id", adminOnly, c.quiz.DeleteQuiz)
		quizzes.DELETE("/delete-quiz/:id", adminOnly, c.quiz.DeleteQuiz)
	}
}

func registerQuestionRoutes(rg *gin.RouterGroup, c *controllers) {
	adminOnly := middleware.RoleMiddleware(model.RoleAdmin)

	questions := rg.Group("/questions")
	{
		questions.GET("", c.question.ListQuestions)
		questions.GET("/tags", c.question.GetTags)
		questions.GET("/:id", c.question.GetQuestion)

		questions.POST("", adminOnly, c.question.CreateQuestion)
		questions.POST("/batch", adminOnly, c.question.CreateQuestions)
		questions.PUT("/:id", adminOnly, c.question.UpdateQuestion)
		questions.DELETE("/:id", adminOnly, c.question.DeleteQuestion)
	}
}

func registerResultRoutes(rg *gin.RouterGroup, c *controllers) {
	results := rg.Group("/results")
	{
		results.GET("/me", c.result.GetMyResults)
		results.GET("/:id", c.result.GetResult)
	}
}
