package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"massamba/internal/model"
	"massamba/internal/pkg/dataurl"
	"massamba/internal/pkg/jwt"
	"massamba/internal/pkg/password"
	"massamba/internal/store"
)

var (
	ErrPanelDisabled = errors.New("admin panel is disabled")
	ErrInvalidPatch  = errors.New("invalid admin patch")
	ErrSessionEnded  = errors.New("admin session has ended")
)

// AdminService 管理后台服务
// 职责: 登录（经 LockoutGuard）、会话签发与吊销、人设配置与创始人资料维护、审计日志
type AdminService struct {
	store          *store.Store
	guard          *LockoutGuard
	jwt            *jwt.JWT
	avatarMaxBytes int64

	mu      sync.Mutex
	revoked map[string]time.Time // jti -> 过期时间
}

// NewAdminService 创建管理后台服务
func NewAdminService(st *store.Store, guard *LockoutGuard, jwtUtil *jwt.JWT, avatarMaxBytes int64) *AdminService {
	return &AdminService{
		store:          st,
		guard:          guard,
		jwt:            jwtUtil,
		avatarMaxBytes: avatarMaxBytes,
		revoked:        make(map[string]time.Time),
	}
}

// LoginResult 登录结果
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
}

// Login 校验管理码并签发会话
func (s *AdminService) Login(ctx context.Context, code string) (*LoginResult, error) {
	if !s.store.Config().PanelActive {
		return nil, ErrPanelDisabled
	}
	if err := s.guard.Submit(ctx, code); err != nil {
		return nil, err
	}

	token, expiresAt, err := s.jwt.GenerateToken("admin")
	if err != nil {
		log.Error().Err(err).Msg("failed to generate admin token")
		return nil, fmt.Errorf("failed to generate admin token: %w", err)
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt}, nil
}

// LockStatus 登录入口锁定状态
func (s *AdminService) LockStatus(ctx context.Context) (model.LockStatus, error) {
	st, err := s.guard.Status(ctx)
	if err != nil {
		return model.LockStatus{}, err
	}
	return model.LockStatus{
		Locked:           st.Locked,
		FailedAttempts:   st.Attempts,
		RemainingSeconds: int64(st.Remaining(s.guard.Now()).Seconds()),
	}, nil
}

// Authorize 校验会话 Token，返回会话 ID
func (s *AdminService) Authorize(token string) (string, error) {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.revoked[claims.ID]; ok {
		return "", ErrSessionEnded
	}
	return claims.ID, nil
}

// Logout 结束会话
func (s *AdminService) Logout(sessionID string) {
	s.mu.Lock()
	now := time.Now()
	s.revoked[sessionID] = now.Add(s.jwt.GetExpiration())
	// 顺带清理已过期的吊销记录
	for id, exp := range s.revoked {
		if exp.Before(now) {
			delete(s.revoked, id)
		}
	}
	s.mu.Unlock()

	s.store.AppendAuditLog("Déconnexion", "Session admin terminée", model.AdminLogSuccess)
}

// Config 当前配置（不含管理码哈希）
func (s *AdminService) Config() model.PublicAdminConfig {
	return s.store.Config().Public()
}

// UpdateConfig 浅合并配置补丁，每个变更的字段记录一条审计日志
func (s *AdminService) UpdateConfig(patch *model.AdminConfigPatch) (model.PublicAdminConfig, error) {
	// 先校验，再在存储锁内合并，避免并发修改互相覆盖
	var hash string
	if patch.SecretCode != nil {
		if len(*patch.SecretCode) < 4 {
			return model.PublicAdminConfig{}, fmt.Errorf("%w: secret_code must have at least 4 characters", ErrInvalidPatch)
		}
		h, err := password.Hash(*patch.SecretCode)
		if err != nil {
			return model.PublicAdminConfig{}, fmt.Errorf("failed to hash secret code: %w", err)
		}
		hash = h
	}
	if patch.DefaultTone != nil && !patch.DefaultTone.Valid() {
		return model.PublicAdminConfig{}, fmt.Errorf("%w: unknown tone %q", ErrInvalidPatch, *patch.DefaultTone)
	}
	if patch.ResponseLength != nil && !patch.ResponseLength.Valid() {
		return model.PublicAdminConfig{}, fmt.Errorf("%w: unknown response length %q", ErrInvalidPatch, *patch.ResponseLength)
	}
	if patch.ResponseStyle != nil && !patch.ResponseStyle.Valid() {
		return model.PublicAdminConfig{}, fmt.Errorf("%w: unknown response style %q", ErrInvalidPatch, *patch.ResponseStyle)
	}

	var changed []string
	mark := func(set bool, key string) {
		if set {
			changed = append(changed, key)
		}
	}
	mark(patch.SecretCode != nil, "secret_code")
	mark(patch.DefaultTone != nil, "default_tone")
	mark(patch.ResponseLength != nil, "response_length")
	mark(patch.ResponseStyle != nil, "response_style")
	mark(patch.Specializations != nil, "specializations")
	mark(patch.AIBehavior != nil, "ai_behavior")
	mark(patch.WelcomePopupMessage != nil, "welcome_popup_message")
	mark(patch.AdsEnabled != nil, "ads_enabled")
	mark(patch.PremiumEnabled != nil, "premium_enabled")
	mark(patch.PanelActive != nil, "panel_active")

	if len(changed) == 0 {
		return s.store.Config().Public(), nil
	}

	cfg := s.store.UpdateConfig(func(cfg model.AdminConfig) model.AdminConfig {
		if patch.SecretCode != nil {
			cfg.SecretCodeHash = hash
		}
		if patch.DefaultTone != nil {
			cfg.DefaultTone = *patch.DefaultTone
		}
		if patch.ResponseLength != nil {
			cfg.ResponseLength = *patch.ResponseLength
		}
		if patch.ResponseStyle != nil {
			cfg.ResponseStyle = *patch.ResponseStyle
		}
		if patch.Specializations != nil {
			cfg.Specializations = slices.Clone(patch.Specializations)
		}
		if patch.AIBehavior != nil {
			cfg.AIBehavior = *patch.AIBehavior
		}
		if patch.WelcomePopupMessage != nil {
			cfg.WelcomePopupMessage = *patch.WelcomePopupMessage
		}
		if patch.AdsEnabled != nil {
			cfg.AdsEnabled = *patch.AdsEnabled
		}
		if patch.PremiumEnabled != nil {
			cfg.PremiumEnabled = *patch.PremiumEnabled
		}
		if patch.PanelActive != nil {
			cfg.PanelActive = *patch.PanelActive
		}
		return cfg
	})
	for _, key := range changed {
		s.store.AppendAuditLog("Modification Config", "Mise à jour de la propriété: "+key, model.AdminLogSuccess)
	}
	return cfg.Public(), nil
}

// Founder 创始人资料
func (s *AdminService) Founder() model.FounderProfile {
	return s.store.Snapshot().FounderProfile
}

// UpdateFounder 合并创始人资料补丁
func (s *AdminService) UpdateFounder(patch *model.FounderPatch) model.FounderProfile {
	var changed []string
	if patch.Name != nil {
		changed = append(changed, "name")
	}
	if patch.Profession != nil {
		changed = append(changed, "profession")
	}
	if patch.ProfileMessage != nil {
		changed = append(changed, "profile_message")
	}
	if patch.AvatarURL != nil {
		changed = append(changed, "avatar_url")
	}

	if len(changed) == 0 {
		return s.store.Snapshot().FounderProfile
	}

	founder := s.store.UpdateFounder(func(founder model.FounderProfile) model.FounderProfile {
		if patch.Name != nil {
			founder.Name = *patch.Name
		}
		if patch.Profession != nil {
			founder.Profession = *patch.Profession
		}
		if patch.ProfileMessage != nil {
			founder.ProfileMessage = *patch.ProfileMessage
		}
		if patch.AvatarURL != nil {
			founder.AvatarURL = *patch.AvatarURL
		}
		return founder
	})
	for _, key := range changed {
		s.store.AppendAuditLog("Modification Profil", "Mise à jour du profil fondateur: "+key, model.AdminLogSuccess)
	}
	return founder
}

// UploadAvatar 把上传的图片转为 data URL 写入创始人头像
func (s *AdminService) UploadAvatar(r io.Reader) (model.FounderProfile, error) {
	url, err := dataurl.FromReader(r, s.avatarMaxBytes)
	if err != nil {
		return model.FounderProfile{}, err
	}

	founder := s.store.UpdateFounder(func(founder model.FounderProfile) model.FounderProfile {
		founder.AvatarURL = url
		return founder
	})
	s.store.AppendAuditLog("Import Image", "Nouvelle photo de profil importée", model.AdminLogSuccess)
	return founder, nil
}

// Logs 审计日志，最新在前
func (s *AdminService) Logs() []model.AdminLog {
	return s.store.Snapshot().SecurityLogs
}

// Stats 统计数据，叠加当前实例的对话数
func (s *AdminService) Stats() model.AppStats {
	db := s.store.Snapshot()
	stats := db.Stats
	stats.TotalConversations += len(db.Conversations)
	if len(db.Users) > stats.TotalUsers {
		stats.TotalUsers = len(db.Users)
	}
	stats.TopQuestions = slices.Clone(stats.TopQuestions)
	return stats
}
