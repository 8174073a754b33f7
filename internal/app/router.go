package app

import (
	"skillnest_backend/docs"
	"skillnest_backend/internal/config"
	"skillnest_backend/internal/middleware"
	"skillnest_backend/internal/model"
	"skillnest_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	{
		a.registerUserRoutes(authGroup, c)
		a.registerStudentRoutes(authGroup, c)
		a.registerTeacherRoutes(authGroup, c)
		a.registerForumRoutes(authGroup, c)
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

		public.GET("/courses", c.course.ListCourses)
		public.GET("/courses/:id", c.course.GetCourse)
	}
}

// registerUserRoutes 任意已登录用户
func (a *App) registerUserRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/users/profile", c.user.GetProfile)
	rg.PUT("/users/profile", c.user.UpdateProfile)
	rg.PUT("/users/profile/change-password", c.user.ChangePassword)
	rg.POST("/users/profile/avatar", c.user.UploadAvatar)

	rg.GET("/courses/:id/lessons", c.course.ListLessons)

	rg.GET("/quizzes", c.quiz.ListQuizzes)
	rg.GET("/quizzes/:id", c.quiz.GetQuiz)
	rg.GET("/quizzes/course/:courseId", c.quiz.ListByCourse)
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	student := rg.Group("")
	student.Use(middleware.RoleMiddleware(model.Student))
	{
		student.POST("/courses/:id/enroll", c.course.Enroll)
		student.POST("/courses/:id/lessons/:lessonId/complete", c.progress.MarkComplete)
		student.GET("/courses/:id/progress", c.progress.GetProgress)

		student.GET("/users/enrollments", c.user.GetEnrollments)
		student.POST("/users/progress", c.progress.MarkCompleteLegacy)

		student.POST("/quizzes/:id/attempt", c.quiz.SubmitAttempt)
		student.GET("/quizzes/:id/attempts", c.quiz.ListAttempts)
	}
}

func (a *App) registerTeacherRoutes(rg *gin.RouterGroup, c *controllers) {
	teacher := rg.Group("")
	teacher.Use(middleware.RoleMiddleware(model.Teacher))
	{
		teacher.POST("/courses", c.course.CreateCourse)
		teacher.PUT("/courses/:id", c.course.UpdateCourse)
		teacher.DELETE("/courses/:id", c.course.DeleteCourse)
		teacher.POST("/courses/:id/lessons", c.course.AddLesson)

		teacher.POST("/quizzes", c.quiz.CreateQuiz)
		teacher.PUT("/quizzes/:id", c.quiz.UpdateQuiz)
		teacher.DELETE("/quizzes/:id", c.quiz.DeleteQuiz)
	}
}

// registerForumRoutes 发帖与回复经过敏感词过滤
func (a *App) registerForumRoutes(rg *gin.RouterGroup, c *controllers) {
	forum := rg.Group("/forum")
	{
		forum.POST("", a.contentFilter.Middleware(), c.forum.CreateThread)
		forum.POST("/:threadId/reply", a.contentFilter.Middleware(), c.forum.Reply)
		forum.GET("/course/:courseId", c.forum.ListByCourse)
	}
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg.JWT.Secret), middleware.RoleMiddleware(model.Admin))
	{
		admin.GET("/users", c.user.GetUsers)
		admin.DELETE("/users/:id", c.user.DeleteUser)
	}
}
