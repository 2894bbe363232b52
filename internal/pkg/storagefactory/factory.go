package storagefactory

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"massamba/internal/config"
	"massamba/internal/pkg/cache"
	"massamba/internal/pkg/mongodb"
	"massamba/internal/pkg/storage"
	"massamba/internal/pkg/storage/local"
	"massamba/internal/pkg/storage/memory"
	"massamba/internal/repository"
)

// NewStorage 根据配置创建持久化存储实例
func NewStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	switch cfg.Storage.Type {
	case "memory", "":
		log.Warn().Msg("using in-memory storage, data will not survive a restart")
		return memory.NewMemoryStorage(), nil
	case "local":
		if cfg.Storage.Local == nil {
			return nil, fmt.Errorf("local storage config is required")
		}
		return local.NewLocalStorage(cfg.Storage.Local.Path, cfg.Storage.Local.Bucket)
	case "redis":
		if cfg.Redis.Addr == "" {
			return nil, fmt.Errorf("redis address is required")
		}
		return cache.NewRedisCache(&cfg.Redis)
	case "mongo":
		if cfg.Mongo.URI == "" {
			return nil, fmt.Errorf("mongo uri is required")
		}
		client, err := mongodb.New(ctx, &cfg.Mongo)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		repo := repository.NewKVRepo(client, cfg.Mongo.Collection)
		if err := repo.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to ensure indexes")
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Storage.Type)
	}
}
