package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"quizgen_backend/internal/config"
	"quizgen_backend/internal/controller"
	"quizgen_backend/internal/repository"
	"quizgen_backend/internal/service"
	"quizgen_backend/pkg/configwatcher"
	"quizgen_backend/pkg/database"
	"quizgen_backend/pkg/logger"
	"quizgen_backend/pkg/monitoring"
	"quizgen_backend/pkg/security"
	"quizgen_backend/pkg/tracing"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	ConfigFile      string
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	tracer          *sdktrace.TracerProvider
	cancelWatch     context.CancelFunc
	cfgMu           sync.Mutex
	configCallbacks []func(*config.Config)
}

type repositories struct {
	question *repository.QuestionRepository
	quiz     *repository.QuizRepository
	result   *repository.QuizResultRepository
}

type services struct {
	ai        *service.AIService
	generator *service.QuizGenerator
	storage   *service.StorageService
	events    service.EventPublisher
	quiz      *service.QuizService
	question  *service.QuestionService
	result    *service.ResultService
	stats     *service.StatsService
}

type controllers struct {
	quiz     *controller.QuizController
	question *controller.QuestionController
	result   *controller.ResultController
	stats    *controller.StatsController
	health   *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.cfgMu.Lock()
	defer a.cfgMu.Unlock()
	a.configCallbacks = append(a.configCallbacks, callback)
}

// reloadConfig 只有回调中处理的配置项会在运行期间生效
func (a *App) reloadConfig(cfg *config.Config) {
	a.cfgMu.Lock()
	callbacks := append([]func(*config.Config){}, a.configCallbacks...)
	a.cfgMu.Unlock()

	for _, cb := range callbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		question: repository.NewQuestionRepository(db),
		quiz:     repository.NewQuizRepository(db),
		result:   repository.NewQuizResultRepository(db),
	}
}

func (a *App) initEvents(cfg *config.Config) service.EventPublisher {
	if !cfg.Events.Enabled {
		return service.NopEventPublisher{}
	}
	p, err := service.NewAMQPEventPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange)
	if err != nil {
		logger.Log.Error("Failed to connect to message broker, events disabled", zap.Error(err))
		return service.NopEventPublisher{}
	}
	logger.Log.Info("Event publisher connected", zap.String("exchange", cfg.Events.Exchange))
	return p
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.ai = service.NewAIService(cfg.AI)
	s.generator = service.NewQuizGenerator(s.ai, cfg.Quiz)
	s.storage = service.NewStorageService(cfg)
	s.events = a.initEvents(cfg)

	var cache service.QuizCache
	if rdb != nil {
		cache = service.NewRedisQuizCache(rdb, cfg.Redis.TTL)
	}

	s.quiz = service.NewQuizService(repos.quiz, repos.result, s.generator, s.storage, cache, s.events)
	s.question = service.NewQuestionService(repos.question, cache)
	s.result = service.NewResultService(repos.result)
	s.stats = service.NewStatsService(repos.question, repos.result)

	a.RegisterConfigCallback(func(newCfg *config.Config) {
		s.ai.UpdateConfig(newCfg.AI)
		logger.Log.Info("AI provider config updated", zap.String("model", newCfg.AI.Model))
	})

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		quiz:     controller.NewQuizController(s.quiz, s.ai),
		question: controller.NewQuestionController(s.question),
		result:   controller.NewResultController(s.result),
		stats:    controller.NewStatsController(s.stats),
		health:   controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.RequestID())
	router.Use(logger.GinLogger())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.ScannerBlocker())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute, "/api/health", "/metrics"))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) initRedis(cfg *config.Config) *redis.Client {
	if !cfg.Redis.Enabled {
		return nil
	}
	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Error("Failed to initialize redis, quiz cache disabled", zap.Error(err))
		return nil
	}
	return rdb
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if cfg.ForceMigrate || cfg.Server.Mode != "release" {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	app := &App{
		Config:     cfg,
		ConfigFile: filepath.Join("configs", "config.yaml"),
		DB:         db,
	}
	if cfg.MigrateOnly {
		return app
	}

	app.Redis = app.initRedis(cfg)

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, app.Redis)
	app.services = services
	controllers := app.initControllers(services, db, app.Redis)

	// 监控初始化
	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Error("Failed to initialize tracing", zap.Error(err))
		} else {
			app.tracer = tp
		}
	}

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/exports", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) startConfigWatcher() {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancelWatch = cancel
	go func() {
		if err := configwatcher.WatchConfig(ctx, a.ConfigFile, a.reloadConfig); err != nil {
			logger.Log.Warn("Config watcher stopped", zap.Error(err))
		}
	}()
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	a.startConfigWatcher()

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	a.Close(ctx)
	logger.Log.Info("Server exiting")
}

// Close 释放后台资源
func (a *App) Close(ctx context.Context) {
	if a.cancelWatch != nil {
		a.cancelWatch()
		a.cancelWatch = nil
	}
	if a.services != nil && a.services.events != nil {
		a.services.events.Close()
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
		a.tracer = nil
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
