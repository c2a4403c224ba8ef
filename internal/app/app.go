package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"learning_points_backend/internal/config"
	"learning_points_backend/internal/controller"
	"learning_points_backend/internal/repository"
	"learning_points_backend/internal/service"
	"learning_points_backend/pkg/configwatcher"
	"learning_points_backend/pkg/database"
	"learning_points_backend/pkg/logger"
	"learning_points_backend/pkg/monitoring"
	"learning_points_backend/pkg/security"
	"learning_points_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ConfigFile 热更新监听的配置文件
const ConfigFile = "configs/config.yaml"

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	services        *services
	tracer          *sdktrace.TracerProvider
	cancel          context.CancelFunc
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user        *repository.UserRepository
	userScore   *repository.UserScoreRepository
	ledger      *repository.AttemptLedgerRepository
	levelConfig *repository.LevelConfigRepository
	reading     *repository.ReadingStateRepository
}

type services struct {
	auth        *service.AuthService
	levelConfig *service.LevelConfigService
	score       *service.ScoreService
	streak      *service.StreakService
	leaderboard *service.LeaderboardService
	progression *service.ProgressionService
	reading     *service.ReadingStateService
}

type controllers struct {
	auth        *controller.AuthController
	progression *controller.ProgressionController
	levelConfig *controller.LevelConfigController
	userScore   *controller.UserScoreController
	health      *controller.HealthController
	reading     *controller.ReadingStateController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:        repository.NewUserRepository(db),
		userScore:   repository.NewUserScoreRepository(db),
		ledger:      repository.NewAttemptLedgerRepository(db),
		levelConfig: repository.NewLevelConfigRepository(db),
		reading:     repository.NewReadingStateRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB) *services {
	s := &services{}

	s.auth = service.NewAuthService(repos.user, cfg)
	s.levelConfig = service.NewLevelConfigService(repos.levelConfig)
	s.score = service.NewScoreService(repos.userScore)
	s.streak = service.NewStreakService(repos.user)
	s.leaderboard = service.NewLeaderboardService(
		repos.userScore,
		repos.user,
		cfg.Progression.LeaderboardDefaultLimit,
		cfg.Progression.LeaderboardMaxLimit,
	)
	s.progression = service.NewProgressionService(
		db,
		repos.user,
		repos.ledger,
		s.score,
		s.levelConfig,
		s.streak,
		s.leaderboard,
		service.ProgressionOptions{ApplyStreakBonus: cfg.Progression.ApplyStreakBonus},
	)

	s.reading = service.NewReadingStateService(db, repos.reading, repos.user)

	// 配置热更新只影响进程级开关
	a.RegisterConfigCallback(func(newCfg *config.Config) {
		s.progression.SetOptions(service.ProgressionOptions{
			ApplyStreakBonus: newCfg.Progression.ApplyStreakBonus,
		})
	})

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:        controller.NewAuthController(s.auth, a.Config.JWT),
		progression: controller.NewProgressionController(s.progression, s.levelConfig),
		levelConfig: controller.NewLevelConfigController(s.levelConfig),
		userScore:   controller.NewUserScoreController(s.score),
		health:      controller.NewHealthController(db),
		reading:     controller.NewReadingStateController(s.reading),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	if cfg.RateLimit.MaxRequests > 0 {
		window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
		if window <= 0 {
			window = time.Minute
		}
		router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, window))
	}

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks(ctx context.Context) {
	go func() {
		err := configwatcher.WatchConfig(ctx, ConfigFile, func(newCfg *config.Config) {
			for _, cb := range a.configCallbacks {
				cb(newCfg)
			}
		})
		if err != nil {
			logger.Log.Error("config watcher stopped", zap.Error(err))
		}
	}()
}

// Seed 写入默认等级与积分配置，已存在时只做旧格式迁移
func (a *App) Seed(ctx context.Context) error {
	res, err := a.services.levelConfig.InitializeDefaults(ctx)
	if err != nil {
		return err
	}
	logger.Log.Info("Seed completed",
		zap.Int("levelsCreated", res.LevelsCreated),
		zap.Bool("pointsConfigCreated", res.PointsConfigCreated),
		zap.Int("legacyMigrated", res.LegacyMigrated))
	return nil
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	gin.SetMode(cfg.Server.Mode)

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode == gin.DebugMode)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
	}

	repos := app.initRepositories(db)
	app.services = app.initServices(repos, cfg, db)
	if cfg.MigrateOnly {
		return app
	}

	if cfg.Progression.SeedDefaultsOnStart || cfg.SeedOnly {
		if err := app.Seed(context.Background()); err != nil {
			logger.Log.Fatal("Failed to seed defaults", zap.Error(err))
		}
	}
	if cfg.SeedOnly {
		return app
	}

	controllers := app.initControllers(app.services, db)

	// 监控初始化
	monitoring.Init()

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	app.Router = router

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("learning-points", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	app.cancel = cancel
	app.startBackgroundTasks(ctx)

	return app
}

func (a *App) Run() {
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

	if a.cancel != nil {
		a.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	log.Println("Server exiting")
}
