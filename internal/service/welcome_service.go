package service

import (
	"context"
	"fmt"

	"massamba/internal/model"
	"massamba/internal/pkg/storage"
	"massamba/internal/store"
)

// WelcomeService 首次访问欢迎弹窗
type WelcomeService struct {
	store *store.Store
	kv    storage.Storage
}

// NewWelcomeService 创建欢迎弹窗服务
func NewWelcomeService(st *store.Store, kv storage.Storage) *WelcomeService {
	return &WelcomeService{store: st, kv: kv}
}

// Welcome 弹窗内容，未关闭过时 Show 为 true
func (s *WelcomeService) Welcome(ctx context.Context) (model.WelcomeResponse, error) {
	_, visited, err := s.kv.Get(ctx, storage.KeyVisited)
	if err != nil {
		return model.WelcomeResponse{}, fmt.Errorf("failed to read visited flag: %w", err)
	}

	db := s.store.Snapshot()
	return model.WelcomeResponse{
		Show:    !visited,
		Founder: db.FounderProfile,
		Message: db.AdminConfig.WelcomePopupMessage,
	}, nil
}

// Dismiss 关闭弹窗，之后不再展示
func (s *WelcomeService) Dismiss(ctx context.Context) error {
	if err := s.kv.Set(ctx, storage.KeyVisited, "true"); err != nil {
		return fmt.Errorf("failed to save visited flag: %w", err)
	}
	return nil
}
