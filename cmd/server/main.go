package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/MATADOR666-spec/line-bot-project/config"
	"github.com/MATADOR666-spec/line-bot-project/internal/api/handler"
	"github.com/MATADOR666-spec/line-bot-project/internal/api/router"
	"github.com/MATADOR666-spec/line-bot-project/internal/metrics"
	"github.com/MATADOR666-spec/line-bot-project/internal/repository"
	"github.com/MATADOR666-spec/line-bot-project/internal/scheduler"
	"github.com/MATADOR666-spec/line-bot-project/internal/service"
	"github.com/MATADOR666-spec/line-bot-project/internal/session"
	"github.com/MATADOR666-spec/line-bot-project/pkg/database"
	"github.com/MATADOR666-spec/line-bot-project/pkg/jwt"
	"github.com/MATADOR666-spec/line-bot-project/pkg/line"
	applogger "github.com/MATADOR666-spec/line-bot-project/pkg/logger"
	"github.com/MATADOR666-spec/line-bot-project/pkg/redis"
	"github.com/MATADOR666-spec/line-bot-project/pkg/storage"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认查找 ./config/config.yaml）")
	flag.Parse()

	// 0. 加载 .env（可选）
	envErr := godotenv.Load()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if envErr != nil {
		logger.Info("未加载 .env，仅使用配置文件与环境变量")
	}
	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("session_backend", cfg.Session.Backend),
		zap.String("storage_backend", cfg.Storage.Backend),
	)

	loc, err := cfg.Duty.Location()
	if err != nil {
		logger.Fatal("加载值班时区失败", zap.Error(err))
	}

	// 3. 连接数据库并迁移
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, cfg.Database.Driver, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选）
	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			if cfg.Session.Backend == "redis" {
				logger.Fatal("Redis 连接失败，无法使用 redis 会话后端", zap.Error(err))
			}
			logger.Warn("Redis 连接失败，事件去重与登录限流将不可用", zap.Error(err))
			rdb = nil
		}
	}

	// 5. 会话存储
	var sessions session.Store
	if cfg.Session.Backend == "redis" {
		sessions = session.NewRedisStore(rdb, cfg.Session.IdleTimeout)
	} else {
		sessions = session.NewMemoryStore(cfg.Session.IdleTimeout)
	}

	// 6. 外部协作方
	lineClient, err := line.NewClient(&cfg.Line, logger)
	if err != nil {
		logger.Fatal("初始化 LINE 客户端失败", zap.Error(err))
	}
	store, err := storage.New(&cfg.Storage, cfg.Server.BaseURL, logger)
	if err != nil {
		logger.Fatal("初始化图片存储失败", zap.Error(err))
	}
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 7. 依赖注入: Repository → Service → Handler
	deps := service.Deps{
		Repo:      repository.NewRepository(db),
		Sessions:  sessions,
		Messenger: lineClient,
		Storage:   store,
		Images:    storage.NewProcessor(cfg.Storage.MaxDimension, cfg.Storage.JPEGQuality, cfg.Storage.MaxPixels),
		Metrics:   metrics.New(nil),
		JWT:       jwtMgr,
	}
	opts := router.Options{}
	if rdb != nil {
		deps.Deduper = rdb
		opts.Limiter = rdb
	}
	if local, ok := store.(*storage.LocalStorage); ok {
		opts.UploadsDir = local.Dir()
	}

	svc, err := service.NewService(cfg, deps, logger)
	if err != nil {
		logger.Fatal("初始化业务服务失败", zap.Error(err))
	}
	h := handler.NewHandler(svc, cfg.Line.ChannelSecret, logger)

	// 8. 定时任务
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched, err = scheduler.New(&cfg.Scheduler, loc, svc.DutyJob, logger)
		if err != nil {
			logger.Fatal("初始化定时任务失败", zap.Error(err))
		}
		sched.Start()
	}

	// 9. 启动 HTTP 服务器（优雅关闭）
	engine := router.Setup(cfg, h, jwtMgr, opts, logger)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // 一次 Webhook 可能串行处理多张图片
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 10. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}
	if sched != nil {
		sched.Stop(ctx)
	}

	sqlDB.Close()
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
