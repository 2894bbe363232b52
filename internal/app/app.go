// Package app 组装存储、AI 客户端与业务服务，供 serve 与 chat 命令共用
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"massamba/internal/ai"
	"massamba/internal/config"
	"massamba/internal/model"
	"massamba/internal/pkg/jwt"
	"massamba/internal/pkg/password"
	"massamba/internal/pkg/storage"
	"massamba/internal/pkg/storagefactory"
	"massamba/internal/service"
	"massamba/internal/store"
)

// DefaultSecretCode 首次创建数据库时的管理码
const DefaultSecretCode = "222000"

// App 应用依赖
type App struct {
	Config  *config.Config
	Storage storage.Storage
	Store   *store.Store
	AI      *ai.Client

	Chat    *service.ChatService
	Admin   *service.AdminService
	Welcome *service.WelcomeService
}

// New 根据配置创建持久化存储与 AI 客户端并组装服务
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	kv, err := storagefactory.NewStorage(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage: %w", err)
	}

	client, err := ai.NewClient(ctx, &cfg.AI)
	if err != nil {
		_ = kv.Close()
		return nil, fmt.Errorf("failed to create AI client: %w", err)
	}

	a, err := Assemble(ctx, cfg, kv, client)
	if err != nil {
		_ = kv.Close()
		return nil, err
	}
	return a, nil
}

// Assemble 用给定的存储与 AI 客户端组装服务
func Assemble(ctx context.Context, cfg *config.Config, kv storage.Storage, client *ai.Client) (*App, error) {
	code := cfg.Admin.SecretCode
	if code == "" {
		code = DefaultSecretCode
	}
	hash, err := password.Hash(code)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin secret code: %w", err)
	}

	st, err := store.Open(ctx, kv, func() *model.Database {
		log.Info().Str("storage", kv.GetStorageType()).Msg("creating a fresh database")
		return model.NewDatabase(hash, time.Now())
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	jwtSecret := cfg.Admin.JWTSecret
	if jwtSecret == "" {
		jwtSecret = uuid.NewString()
		log.Warn().Msg("admin jwt secret not configured, using a random one (sessions end on restart)")
	}
	tokenExpiry := cfg.Admin.TokenExpiry
	if tokenExpiry <= 0 {
		tokenExpiry = 2 * time.Hour
	}

	guard := service.NewLockoutGuard(kv, st, cfg.Admin.MaxAttempts, cfg.Admin.LockoutDuration)

	return &App{
		Config:  cfg,
		Storage: kv,
		Store:   st,
		AI:      client,
		Chat:    service.NewChatService(st, client),
		Admin:   service.NewAdminService(st, guard, jwt.NewJWT(jwtSecret, tokenExpiry), cfg.Admin.AvatarMaxBytes),
		Welcome: service.NewWelcomeService(st, kv),
	}, nil
}

// Close 释放存储与 AI 客户端
func (a *App) Close() error {
	return errors.Join(a.AI.Close(), a.Storage.Close())
}
