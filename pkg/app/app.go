// Package app 提供应用程序的初始化和配置功能.
package app

import (
	contextPkg "context"
	"fmt"
	"os"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/atichat/workfolio/pkg/api"
	appcache "github.com/atichat/workfolio/pkg/cache"
	"github.com/atichat/workfolio/pkg/configs"
	"github.com/atichat/workfolio/pkg/internal/jobs"
	"github.com/atichat/workfolio/pkg/internal/storage"
	"github.com/atichat/workfolio/pkg/log"
	"github.com/atichat/workfolio/pkg/metrics"
	"github.com/atichat/workfolio/pkg/middleware"
	"github.com/atichat/workfolio/pkg/scheduler"
	"github.com/atichat/workfolio/pkg/tracing"
)

type App struct {
	Engine    *gin.Engine
	config    *configs.AppConfig
	scheduler *scheduler.Scheduler
	manager   *storage.Manager
}

func NewApp(configPath string) *App {
	ctx := contextPkg.Background()
	engine := gin.New()

	// 初始化配置
	if err := configs.InitConfig(configPath); err != nil {
		fmt.Printf("Error initializing config: %v\n", err)
		os.Exit(1)
	}

	// 初始化追踪
	config := configs.GetConfig()
	if err := tracing.InitTracer(config.Tracing); err != nil {
		fmt.Printf("Error initializing tracing: %v\n", err)
		os.Exit(1)
	}

	// 初始化监控
	if err := metrics.InitMetrics(config.Metrics); err != nil {
		fmt.Printf("Error initializing metrics: %v\n", err)
		os.Exit(1)
	}

	manager, err := storage.Init(ctx)
	if err != nil {
		fmt.Printf("Error initializing storage: %v\n", err)
		os.Exit(1)
	}

	l := log.Logger()
	gin.DefaultWriter = log.NewGinWriter(l, zerolog.InfoLevel)
	gin.DefaultErrorWriter = log.NewGinWriter(l, zerolog.ErrorLevel)

	if !config.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine.Use(
		gin.Recovery(),
		middleware.CORSMiddleware(config.Server),
		gzip.Gzip(gzip.DefaultCompression),
		middleware.GinLoggerMiddleware(),
		middleware.TracingMiddleware(),
		middleware.PrometheusMiddleware(),
		middleware.StorageMiddleware(manager),
		middleware.AuthMiddleware(config.Auth),
	)

	if config.RateLimit.Enabled {
		engine.Use(middleware.RateLimitMiddleware(config.RateLimit))
	}

	if config.CircuitBreaker.Enabled {
		engine.Use(middleware.CircuitBreakerMiddleware(config.CircuitBreaker))
	}

	if config.Metrics.Enabled {
		_ = metrics.StartMetricsServer(config.Metrics, engine)
	}

	// 定时任务
	sched, err := scheduler.NewScheduler()
	if err != nil {
		fmt.Printf("Error initializing scheduler: %v\n", err)
		os.Exit(1)
	}

	if err := jobs.RegisterCronJobs(sched, manager); err != nil {
		l.Warn().Err(err).Msg("register cron jobs failed")
	}

	sched.Start()
	engine.Use(middleware.SchedulerMiddleware(sched))

	// 公共读路径的响应缓存依赖 KV，未配置时自动关闭
	var readCache *appcache.Cache
	if kvClient := manager.GetKVClient(); kvClient != nil {
		readCache = appcache.NewCache(kvClient.KVStore)
	}

	api.RegisterGroup(engine, readCache)

	return &App{
		Engine:    engine,
		config:    config,
		scheduler: sched,
		manager:   manager,
	}
}

func (a *App) Run() error {
	defer func() {
		if a.scheduler != nil {
			_ = a.scheduler.Stop()
		}
	}()

	return a.Engine.Run(fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port))
}
