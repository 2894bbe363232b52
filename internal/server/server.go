package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"massamba/internal/app"
	"massamba/internal/config"
	"massamba/internal/handler"
	adminHandler "massamba/internal/handler/admin"
	"massamba/internal/server/middleware"
)

const (
	defaultLoginRate  = 1.0
	defaultLoginBurst = 5

	// 关闭时等待后台生成结束的上限
	drainTimeout = 30 * time.Second
)

// Server HTTP 服务器
type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	app    *app.App
}

// New 创建服务器实例
func New(cfg *config.Config, a *app.App) *Server {
	// 设置 Gin 模式
	switch cfg.Server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &Server{
		cfg:    cfg,
		engine: gin.New(),
		app:    a,
	}

	// 设置路由
	srv.setupRoutes()

	return srv
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	// 全局中间件
	s.engine.Use(middleware.Recovery())
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.Logger())
	s.engine.Use(middleware.CORS())

	// 健康检查
	healthHandler := handler.NewHealthHandler(s.app.Storage)
	s.engine.GET("/health", healthHandler.Health)
	s.engine.GET("/ready", healthHandler.Ready)

	// Swagger 文档
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	chatHdl := handler.NewChatHandler(s.app.Chat)
	convHdl := handler.NewConversationHandler(s.app.Store)
	welcomeHdl := handler.NewWelcomeHandler(s.app.Welcome)
	adminHdl := adminHandler.NewHandler(s.app.Admin)

	loginRate := s.cfg.Admin.LoginRate
	if loginRate <= 0 {
		loginRate = defaultLoginRate
	}
	loginBurst := s.cfg.Admin.LoginBurst
	if loginBurst <= 0 {
		loginBurst = defaultLoginBurst
	}
	loginLimiter := middleware.NewIPRateLimiter(loginRate, loginBurst)

	// API v1
	v1 := s.engine.Group("/api/v1")
	{
		// 对话
		v1.POST("/chat/stream", chatHdl.ChatStream)
		v1.GET("/status", chatHdl.Status)

		v1.GET("/conversations", convHdl.List)
		v1.PUT("/conversations/active", convHdl.SetActive)
		v1.DELETE("/conversations/active", convHdl.NewChat)
		v1.GET("/conversations/:id", convHdl.Get)

		// 欢迎弹窗
		v1.GET("/welcome", welcomeHdl.Get)
		v1.POST("/welcome/dismiss", welcomeHdl.Dismiss)

		// 管理后台（公开）
		v1.POST("/admin/login", middleware.RateLimit(loginLimiter), adminHdl.Login)
		v1.GET("/admin/lock", adminHdl.LockStatus)

		// 管理后台（需要会话）
		admin := v1.Group("/admin")
		admin.Use(middleware.Auth(s.app.Admin))
		{
			admin.GET("/config", adminHdl.GetConfig)
			admin.PATCH("/config", adminHdl.UpdateConfig)
			admin.GET("/founder", adminHdl.GetFounder)
			admin.PATCH("/founder", adminHdl.UpdateFounder)
			admin.POST("/founder/avatar", adminHdl.UploadAvatar)
			admin.GET("/logs", adminHdl.Logs)
			admin.GET("/stats", adminHdl.Stats)
			admin.POST("/logout", adminHdl.Logout)
		}
	}
}

// Run 启动服务器
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	// 启动服务器
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 等待关闭信号或错误
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server...")

		err := srv.Shutdown(context.Background())
		s.drain()
		if closeErr := s.app.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("failed to close storage")
		}
		return err
	case err := <-errCh:
		return err
	}
}

// drain 等待后台生成写完最后一个快照，再关闭存储
func (s *Server) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := s.app.Chat.WaitIdle(ctx); err != nil {
		log.Warn().Err(err).Msg("generation still running at shutdown, closing storage anyway")
	}
}

// Engine 获取 Gin 引擎 (用于测试)
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
