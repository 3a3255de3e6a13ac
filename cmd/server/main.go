package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"news-cms/config"
	"news-cms/internal/handler"
	"news-cms/internal/model"
	"news-cms/internal/repository"
	"news-cms/internal/scheduler"
	"news-cms/internal/service"
	dbPkg "news-cms/pkg/db"
	"news-cms/pkg/jwt"
	"news-cms/pkg/logger"
	redisPkg "news-cms/pkg/redis"
	"news-cms/pkg/websocket"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	cfg := config.LoadConfig()

	// 2. 初始化日志系统
	logger.InitLogger(cfg.Log)
	defer func() { _ = logger.Sync() }()

	logger.Info("=== 新闻CMS启动 ===")
	logger.Info("服务器配置信息",
		zap.String("port", cfg.Server.Port),
		zap.String("database_driver", cfg.Database.Driver),
		zap.String("database_host", cfg.Database.Host),
		zap.String("database_name", cfg.Database.Database),
		zap.Duration("session_ttl", cfg.Session.TTL),
		zap.Duration("session_sweep_interval", cfg.Session.SweepInterval),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
		zap.String("log_level", cfg.Log.Level),
	)
	if cfg.JWT.Secret == config.DefaultConfig().JWT.Secret {
		logger.Warn("正在使用默认JWT密钥，请通过 JWT_SECRET 设置")
	}

	// 3. 初始化数据库连接并迁移表结构
	gdb, err := dbPkg.InitDB(cfg.Database)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	defer func() {
		if err := dbPkg.CloseDB(); err != nil {
			logger.Error("关闭数据库连接失败", zap.Error(err))
		}
	}()
	if err := dbPkg.AutoMigrate(gdb, model.All()...); err != nil {
		logger.Fatal("自动迁移失败", zap.Error(err))
	}
	logger.Info("数据库连接成功，表结构已迁移")

	// 4. Redis 为可选依赖：阅读去重与限流计数
	var rdb *redis.Client
	if cfg.Redis.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rdb, err = redisPkg.InitRedis(ctx, cfg.Redis)
		cancel()
		if err != nil {
			logger.Warn("Redis不可用，阅读去重与限流退回本地模式", zap.Error(err))
			rdb = nil
		} else {
			defer func() { _ = redisPkg.Close() }()
			logger.Info("Redis连接成功")
		}
	}

	// 5. 组装服务
	repos := repository.New(gdb)
	hub := websocket.NewHub()
	jwtSvc := jwt.NewJWTService(cfg.JWT)

	authSvc := service.NewAuthService(repos, jwtSvc, service.LogNotifier{}, hub, cfg.Session, cfg.Verification)
	newsSvc := service.NewNewsService(repos, redisPkg.NewReadTracker(rdb, cfg.Redis.ReadTTL))
	commentSvc := service.NewCommentService(repos, cfg.Comment)
	sharingSvc := service.NewSharingService(repos, hub)

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := &handler.Router{
		Config:        cfg,
		Auth:          jwt.NewAuthenticator(jwtSvc, authSvc, cfg.Session.CookieName),
		Hub:           hub,
		Redis:         rdb,
		AuthH:         handler.NewAuthHandler(authSvc, cfg.Session, cfg.Server),
		Users:         handler.NewUserHandler(service.NewUserService(repos, hub)),
		News:          handler.NewNewsHandler(newsSvc),
		Comments:      handler.NewCommentHandler(commentSvc),
		Categories:    handler.NewCategoryHandler(service.NewCategoryService(repos)),
		Sharing:       handler.NewSharingHandler(sharingSvc),
		Subscriptions: handler.NewSubscriptionHandler(service.NewSubscriptionService(repos)),
		Health:        handler.NewHealthHandler(gdb, rdb),
	}
	engine, err := router.Setup()
	if err != nil {
		logger.Fatal("路由初始化失败", zap.Error(err))
	}

	// 6. 定时清理过期会话
	sched := scheduler.New(authSvc, cfg.Session.SweepInterval)
	if err := sched.Start(); err != nil {
		logger.Fatal("定时任务启动失败", zap.Error(err))
	}
	defer sched.Stop()

	// 7. 启动HTTP服务器
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	go func() {
		logger.Info("HTTP服务器启动", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP服务器启动失败", zap.Error(err))
		}
	}()

	// 8. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("正在关闭服务器...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("HTTP服务器关闭失败", zap.Error(err))
	}
	logger.Info("服务器已安全关闭")
}
