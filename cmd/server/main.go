// Package main 是服务端的入口点
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"branch-chat-server/internal/cache"
	"branch-chat-server/internal/config"
	"branch-chat-server/internal/handler"
	"branch-chat-server/internal/middleware"
	"branch-chat-server/internal/model"
	"branch-chat-server/internal/repository"
	"branch-chat-server/internal/service"
)

func main() {
	// 加载配置
	cfg, err := config.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// 初始化日志
	setupLogger(cfg)

	// 初始化数据库
	db, err := initDatabase(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init database")
	}

	// 自动迁移数据库表
	if err := autoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	// 初始化 Redis
	redisCache, err := cache.NewRedisCache(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init redis")
	}

	// 初始化 Repository 层
	convRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	versionRepo := repository.NewMessageVersionRepository(db)

	// 初始化 Service 层
	// 助手回复使用确定性的回声实现，换成真实后端时只需替换这里
	convService := service.NewConversationService(convRepo, messageRepo, versionRepo, redisCache)
	messageService := service.NewMessageService(messageRepo, versionRepo, convRepo, redisCache, service.NewEchoReply())

	// 初始化 Handler 层
	convHandler := handler.NewConversationHandler(convService, messageService)
	messageHandler := handler.NewMessageHandler(messageService)

	// 设置 Gin 模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建 Gin 引擎
	router := gin.New()

	// 全局中间件
	router.Use(middleware.RecoveryMiddleware()) // 恢复 panic
	router.Use(middleware.LoggerMiddleware())   // 请求日志
	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.Server.CORS) > 0 {
		corsConfig.AllowOrigins = cfg.Server.CORS
	}
	router.Use(middleware.CORSMiddleware(corsConfig)) // CORS

	// 注册路由
	registerRoutes(router, convHandler, messageHandler)

	// 创建 HTTP 服务器
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	// 在 goroutine 中启动服务器
	go func() {
		log.Info().Str("addr", addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	if err := redisCache.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close redis")
	}

	log.Info().Msg("server exited")
}

// setupLogger 根据配置初始化 zerolog
func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// console 格式用于本地开发，默认输出 JSON
	if cfg.Log.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

// initDatabase 初始化数据库连接
func initDatabase(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
		cfg.MySQL.Username,
		cfg.MySQL.Password,
		cfg.MySQL.Host,
		cfg.MySQL.Port,
		cfg.MySQL.Database,
		cfg.MySQL.Charset,
	)

	// 配置 GORM logger
	gormLogger := gormlogger.Default.LogMode(gormlogger.Info)
	if cfg.Server.Mode == "release" {
		gormLogger = gormlogger.Default.LogMode(gormlogger.Warn)
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// 配置连接池
	sqlDB.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MySQL.MaxLifetime) * time.Second)

	log.Info().Msg("database connected")
	return db, nil
}

// autoMigrate 自动迁移数据库表
func autoMigrate(db *gorm.DB) error {
	log.Info().Msg("running database migrations...")

	if err := db.AutoMigrate(
		&model.Conversation{},
		&model.Message{},
		&model.MessageVersion{},
	); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}

	log.Info().Msg("database migrations completed")
	return nil
}

// registerRoutes 注册所有路由
func registerRoutes(
	router *gin.Engine,
	convHandler *handler.ConversationHandler,
	messageHandler *handler.MessageHandler,
) {
	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 路由组
	v1 := router.Group("/api/v1")

	// 对话相关
	conversations := v1.Group("/conversations")
	{
		conversations.POST("", convHandler.CreateConversation)
		conversations.GET("", convHandler.ListConversations)
		conversations.PUT("/:id", convHandler.RenameConversation)
		conversations.DELETE("/:id", convHandler.DeleteConversation)
		conversations.GET("/:id/branches", convHandler.ListBranches)
		conversations.GET("/:id/messages", messageHandler.GetMessages)
		conversations.POST("/:id/messages", messageHandler.SendMessage)
	}

	// 消息相关（编辑与历史版本）
	messages := v1.Group("/messages")
	{
		messages.PUT("/:id", messageHandler.EditMessage)
		messages.GET("/:id/versions", messageHandler.GetVersions)
	}
}
