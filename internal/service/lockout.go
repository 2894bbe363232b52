package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"massamba/internal/model"
	"massamba/internal/pkg/password"
	"massamba/internal/pkg/storage"
	"massamba/internal/store"
)

var (
	ErrLocked      = errors.New("admin access is locked")
	ErrInvalidCode = errors.New("invalid admin code")
)

const (
	DefaultMaxAttempts     = 3
	DefaultLockoutDuration = 15 * time.Minute
)

// LockState 锁定状态
type LockState struct {
	Locked      bool
	Attempts    int
	LockedUntil time.Time
}

// Remaining 剩余锁定时间
func (s LockState) Remaining(now time.Time) time.Duration {
	if !s.Locked {
		return 0
	}
	return max(s.LockedUntil.Sub(now), 0)
}

// LockoutGuard 管理员登录防暴力破解
// 失败次数与锁定截止时间持久化；锁定是否过期在每次检查时按当前时间判断
type LockoutGuard struct {
	mu          sync.Mutex
	kv          storage.Storage
	store       *store.Store
	maxAttempts int
	duration    time.Duration
	now         func() time.Time
}

// LockoutOption 选项
type LockoutOption func(*LockoutGuard)

// WithLockoutClock 注入时钟（测试用）
func WithLockoutClock(now func() time.Time) LockoutOption {
	return func(g *LockoutGuard) { g.now = now }
}

// NewLockoutGuard 创建登录守卫；maxAttempts/duration 为 0 时使用默认值
func NewLockoutGuard(kv storage.Storage, st *store.Store, maxAttempts int, duration time.Duration, opts ...LockoutOption) *LockoutGuard {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if duration <= 0 {
		duration = DefaultLockoutDuration
	}
	g := &LockoutGuard{
		kv:          kv,
		store:       st,
		maxAttempts: maxAttempts,
		duration:    duration,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// MaxAttempts 锁定前允许的失败次数
func (g *LockoutGuard) MaxAttempts() int {
	return g.maxAttempts
}

// Now 守卫使用的当前时间
func (g *LockoutGuard) Now() time.Time {
	return g.now()
}

// Status 当前锁定状态
func (g *LockoutGuard) Status(ctx context.Context) (LockState, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state(ctx)
}

// Submit 校验管理码
// 锁定中直接拒绝且不计数；正确则清零；错误则计数，达到上限后锁定
func (g *LockoutGuard) Submit(ctx context.Context, code string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	st, err := g.state(ctx)
	if err != nil {
		return err
	}
	if st.Locked {
		g.store.AppendAuditLog("Accès bloqué", "Tentative pendant le verrouillage", model.AdminLogBlocked)
		return ErrLocked
	}

	if code != "" && password.Verify(code, g.store.Config().SecretCodeHash) {
		if err := g.reset(ctx); err != nil {
			return err
		}
		g.store.AppendAuditLog("Connexion réussie", "Accès autorisé au Panel Admin", model.AdminLogSuccess)
		return nil
	}

	attempts := st.Attempts + 1
	if err := g.kv.Set(ctx, storage.KeyAdminAttempt, strconv.Itoa(attempts)); err != nil {
		return fmt.Errorf("failed to save admin attempts: %w", err)
	}
	g.store.AppendAuditLog("Tentative échouée",
		fmt.Sprintf("Tentative d'accès avec code erroné. Tentative %d/%d", attempts, g.maxAttempts),
		model.AdminLogFailure)

	if attempts >= g.maxAttempts {
		until := g.now().Add(g.duration)
		if err := g.kv.Set(ctx, storage.KeyAdminLocked, strconv.FormatInt(until.UnixMilli(), 10)); err != nil {
			return fmt.Errorf("failed to save admin lockout: %w", err)
		}
		g.store.AppendAuditLog("Verrouillage système",
			fmt.Sprintf("Accès bloqué pour %d minutes", int(g.duration.Minutes())),
			model.AdminLogFailure)
		log.Warn().Int("attempts", attempts).Time("locked_until", until).Msg("admin access locked")
	}
	return ErrInvalidCode
}

func (g *LockoutGuard) reset(ctx context.Context) error {
	if err := g.kv.Set(ctx, storage.KeyAdminAttempt, "0"); err != nil {
		return fmt.Errorf("failed to reset admin attempts: %w", err)
	}
	if err := g.kv.Remove(ctx, storage.KeyAdminLocked); err != nil {
		return fmt.Errorf("failed to clear admin lockout: %w", err)
	}
	return nil
}

func (g *LockoutGuard) state(ctx context.Context) (LockState, error) {
	var st LockState

	raw, ok, err := g.kv.Get(ctx, storage.KeyAdminAttempt)
	if err != nil {
		return st, fmt.Errorf("failed to read admin attempts: %w", err)
	}
	if ok {
		// 无法解析时按 0 处理
		st.Attempts, _ = strconv.Atoi(raw)
	}

	raw, ok, err = g.kv.Get(ctx, storage.KeyAdminLocked)
	if err != nil {
		return st, fmt.Errorf("failed to read admin lockout: %w", err)
	}
	if ok {
		if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
			st.LockedUntil = time.UnixMilli(ms)
			st.Locked = g.now().Before(st.LockedUntil)
		}
	}
	return st, nil
}
