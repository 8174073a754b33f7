package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"skillnest_backend/internal/config"
	"skillnest_backend/internal/controller"
	"skillnest_backend/internal/middleware"
	"skillnest_backend/internal/repository"
	"skillnest_backend/internal/scoring"
	"skillnest_backend/internal/service"
	"skillnest_backend/pkg/configwatcher"
	"skillnest_backend/pkg/database"
	"skillnest_backend/pkg/logger"
	"skillnest_backend/pkg/monitoring"
	"skillnest_backend/pkg/security"
	"skillnest_backend/pkg/tracing"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const configDir = "configs"

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	policy          *scoring.PolicyHolder
	contentFilter   *middleware.ContentFilter
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user     *repository.UserRepository
	course   *repository.CourseRepository
	quiz     *repository.QuizRepository
	attempt  *repository.AttemptRepository
	progress *repository.ProgressRepository
	thread   *repository.ThreadRepository
}

type services struct {
	auth     *service.AuthService
	storage  *service.StorageService
	user     *service.UserService
	course   *service.CourseService
	quiz     *service.QuizService
	progress *service.ProgressService
	forum    *service.ForumService
}

type controllers struct {
	health   *controller.HealthController
	auth     *controller.AuthController
	user     *controller.UserController
	course   *controller.CourseController
	quiz     *controller.QuizController
	progress *controller.ProgressController
	forum    *controller.ForumController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	return &repositories{
		user:     repository.NewUserRepository(db),
		course:   repository.NewCourseRepository(db, rdb),
		quiz:     repository.NewQuizRepository(db),
		attempt:  repository.NewAttemptRepository(db),
		progress: repository.NewProgressRepository(db),
		thread:   repository.NewThreadRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	s.storage = service.NewStorageService(&cfg.Storage)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user, repos.course, s.storage)
	s.course = service.NewCourseService(repos.course)
	s.quiz = service.NewQuizService(repos.quiz, repos.attempt, repos.course, a.policy)
	s.progress = service.NewProgressService(repos.progress, repos.course)
	s.forum = service.NewForumService(repos.thread, repos.course)

	return s
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		health:   controller.NewHealthController(a.DB, a.Redis),
		auth:     controller.NewAuthController(s.auth),
		user:     controller.NewUserController(s.user),
		course:   controller.NewCourseController(s.course),
		quiz:     controller.NewQuizController(s.quiz),
		progress: controller.NewProgressController(s.progress),
		forum:    controller.NewForumController(s.forum),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// registerReloadable 评分策略与敏感词支持热更新，其余配置需重启生效
func (a *App) registerReloadable() {
	a.RegisterConfigCallback(func(cfg *config.Config) {
		a.policy.Set(scoring.PolicyFromConfig(cfg.Scoring))
		logger.Log.Info("Scoring policy updated",
			zap.Float64("penaltyPerWrong", cfg.Scoring.PenaltyPerWrong),
			zap.Int("passThreshold", cfg.Scoring.PassThreshold),
		)
	})
	a.RegisterConfigCallback(func(cfg *config.Config) {
		a.contentFilter.SetWords(cfg.Forum.BannedWords)
	})
}

func (a *App) startConfigWatcher(ctx context.Context) {
	go func() {
		err := configwatcher.WatchConfig(ctx, configDir, func(cfg *config.Config) {
			for _, cb := range a.configCallbacks {
				cb(cfg)
			}
		})
		if err != nil {
			logger.Log.Warn("Config hot reload disabled", zap.Error(err))
		}
	}()
}

func shouldMigrate(cfg *config.Config) bool {
	return cfg.ForceMigrate || cfg.Server.Mode != gin.ReleaseMode
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, shouldMigrate(cfg))
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	app := &App{
		Config:        cfg,
		DB:            db,
		policy:        scoring.NewPolicyHolder(scoring.PolicyFromConfig(cfg.Scoring)),
		contentFilter: middleware.NewContentFilter(cfg.Forum.BannedWords),
	}

	if cfg.MigrateOnly {
		return app
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// 缓存不是必需的，降级为直连数据库
		logger.Log.Warn("Redis unavailable, lesson counts will not be cached", zap.Error(err))
		rdb = nil
	}
	app.Redis = rdb

	repos := app.initRepositories(db, rdb)
	services := app.initServices(repos, cfg)
	controllers := app.initControllers(services)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("skillnest-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.registerReloadable()

	return app
}

func (a *App) Run() {
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	a.startConfigWatcher(ctx)

	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	if a.Redis != nil {
		a.Redis.Close()
	}

	log.Println("Server exiting")
}
