package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"massamba/internal/model"
	"massamba/internal/pkg/id"
	"massamba/internal/pkg/storage"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrMessageNotFound      = errors.New("message not found")
	ErrNotAssistantMessage  = errors.New("message is not an assistant message")
)

// AuditLogLimit 审计日志保留条数
const AuditLogLimit = 100

// persistTimeout 单次持久化写入超时
const persistTimeout = 5 * time.Second

// Subscriber 每次变更后收到新快照
type Subscriber func(db *model.Database)

// Store 对话存储
// 持有当前数据库快照；所有变更通过纯 reducer 生成新快照后整体替换，
// 然后同步通知订阅者（持久化即其中之一）。
type Store struct {
	mu       sync.Mutex
	db       *model.Database
	activeID string
	subs     []Subscriber

	now   func() time.Time
	newID func() string
}

// Option 存储选项
type Option func(*Store)

// WithClock 注入时钟（测试用）
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator 注入 ID 生成器（测试用）
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// New 基于给定快照创建存储，不做持久化
func New(db *model.Database, opts ...Option) *Store {
	s := &Store{
		db:    db,
		now:   time.Now,
		newID: id.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open 从持久化存储加载数据库并订阅后续变更
// 数据不存在或无法解析时使用 fresh 创建的新库
func Open(ctx context.Context, kv storage.Storage, fresh func() *model.Database, opts ...Option) (*Store, error) {
	db, err := load(ctx, kv)
	if err != nil {
		return nil, err
	}
	created := db == nil
	if created {
		db = fresh()
	}

	s := New(resetStreaming(db), opts...)
	s.Subscribe(Persister(kv))

	if created {
		// 首次创建时立即落盘
		Persister(kv)(s.db)
	}
	return s, nil
}

func load(ctx context.Context, kv storage.Storage) (*model.Database, error) {
	raw, ok, err := kv.Get(ctx, storage.KeyDatabase)
	if err != nil {
		return nil, fmt.Errorf("failed to read database: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var db model.Database
	if err := json.Unmarshal([]byte(raw), &db); err != nil {
		log.Warn().Err(err).Msg("persisted database is malformed, starting from a fresh one")
		return nil, nil
	}
	return &db, nil
}

// Persister 返回把快照整体写入持久化存储的订阅者
// 写入失败只记录日志，不影响内存中的状态
func Persister(kv storage.Storage) Subscriber {
	return func(db *model.Database) {
		data, err := json.Marshal(db)
		if err != nil {
			log.Error().Err(err).Msg("failed to marshal database")
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()

		if err := kv.Set(ctx, storage.KeyDatabase, string(data)); err != nil {
			log.Error().Err(err).Str("storage", kv.GetStorageType()).Msg("failed to persist database")
		}
	}
}

// Subscribe 注册订阅者
func (s *Store) Subscribe(sub Subscriber) {
	s.mu.Lock()
	s.subs = append(s.subs, sub)
	s.mu.Unlock()
}

// commit 在持锁状态下替换快照并通知订阅者
func (s *Store) commit(next *model.Database) {
	s.db = next
	for _, sub := range s.subs {
		sub(next)
	}
}

// Snapshot 当前快照（只读）
func (s *Store) Snapshot() *model.Database {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db
}

// StartConversation 创建新对话并写入首条用户消息，设为当前对话
func (s *Store) StartConversation(firstUserText string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	conv := model.Conversation{
		ID:     s.newID(),
		UserID: model.GuestUserID,
		Title:  DeriveTitle(firstUserText),
		Messages: []model.Message{{
			ID:        s.newID(),
			Role:      model.RoleUser,
			Content:   firstUserText,
			CreatedAt: now,
		}},
		Tone:              s.db.AdminConfig.DefaultTone,
		LastUpdated:       now,
		PreferredLanguage: "fr",
	}

	s.commit(reduceStartConversation(s.db, conv))
	s.activeID = conv.ID
	return conv.ID
}

// AppendUserMessage 向已有对话追加用户消息
func (s *Store) AppendUserMessage(conversationID, text string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.db.Conversation(conversationID)
	if idx < 0 {
		return "", fmt.Errorf("append user message to %s: %w", conversationID, ErrConversationNotFound)
	}

	now := s.now()
	msg := model.Message{
		ID:        s.newID(),
		Role:      model.RoleUser,
		Content:   text,
		CreatedAt: now,
	}
	s.commit(reduceAppendMessage(s.db, idx, msg, now))
	return msg.ID, nil
}

// AppendAssistantPlaceholder 追加一条空的、正在生成的助手消息
func (s *Store) AppendAssistantPlaceholder(conversationID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.db.Conversation(conversationID)
	if idx < 0 {
		return "", fmt.Errorf("append placeholder to %s: %w", conversationID, ErrConversationNotFound)
	}

	now := s.now()
	msg := model.Message{
		ID:          s.newID(),
		Role:        model.RoleAssistant,
		CreatedAt:   now,
		IsStreaming: true,
	}
	// 占位消息不更新 last_updated
	s.commit(reduceAppendMessage(s.db, idx, msg, s.db.Conversations[idx].LastUpdated))
	return msg.ID, nil
}

// UpdateAssistantContent 替换助手消息内容，后写覆盖先写
func (s *Store) UpdateAssistantContent(conversationID, messageID, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, msgIdx, err := s.locate(conversationID, messageID)
	if err != nil {
		return err
	}
	s.commit(reduceUpdateContent(s.db, idx, msgIdx, content))
	return nil
}

// FinalizeAssistantMessage 结束生成并记录耗时
func (s *Store) FinalizeAssistantMessage(conversationID, messageID string, elapsedMs int64) error {
	return s.finalize(conversationID, messageID, elapsedMs, "")
}

// FailAssistantMessage 生成失败：保留已有内容，为空时写入 fallback，然后结束生成
func (s *Store) FailAssistantMessage(conversationID, messageID string, elapsedMs int64, fallback string) error {
	return s.finalize(conversationID, messageID, elapsedMs, fallback)
}

func (s *Store) finalize(conversationID, messageID string, elapsedMs int64, fallback string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, msgIdx, err := s.locate(conversationID, messageID)
	if err != nil {
		return err
	}
	s.commit(reduceFinalize(s.db, idx, msgIdx, elapsedMs, fallback))
	return nil
}

func (s *Store) locate(conversationID, messageID string) (int, int, error) {
	idx := s.db.Conversation(conversationID)
	if idx < 0 {
		return 0, 0, fmt.Errorf("conversation %s: %w", conversationID, ErrConversationNotFound)
	}
	msgIdx := s.db.Conversations[idx].FindMessage(messageID)
	if msgIdx < 0 {
		return 0, 0, fmt.Errorf("message %s: %w", messageID, ErrMessageNotFound)
	}
	if s.db.Conversations[idx].Messages[msgIdx].Role != model.RoleAssistant {
		return 0, 0, fmt.Errorf("message %s: %w", messageID, ErrNotAssistantMessage)
	}
	return idx, msgIdx, nil
}

// Active 当前对话 ID，没有时返回空串
func (s *Store) Active() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// SetActive 切换当前对话
func (s *Store) SetActive(conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db.Conversation(conversationID) < 0 {
		return fmt.Errorf("activate %s: %w", conversationID, ErrConversationNotFound)
	}
	s.activeID = conversationID
	return nil
}

// ClearActive 开始新对话（下一条消息会新建对话）
func (s *Store) ClearActive() {
	s.mu.Lock()
	s.activeID = ""
	s.mu.Unlock()
}

// Conversations 全部对话，最新创建的在前
func (s *Store) Conversations() []model.Conversation {
	return s.Snapshot().Conversations
}

// Conversation 按 ID 获取对话
func (s *Store) Conversation(conversationID string) (model.Conversation, error) {
	db := s.Snapshot()
	idx := db.Conversation(conversationID)
	if idx < 0 {
		return model.Conversation{}, fmt.Errorf("conversation %s: %w", conversationID, ErrConversationNotFound)
	}
	return db.Conversations[idx], nil
}

// Config 当前人设配置
func (s *Store) Config() model.AdminConfig {
	return s.Snapshot().AdminConfig
}

// UpdateConfig 在锁内基于当前配置计算新配置并替换，返回新配置
func (s *Store) UpdateConfig(apply func(model.AdminConfig) model.AdminConfig) model.AdminConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := apply(s.db.AdminConfig)
	s.commit(reduceConfig(s.db, cfg))
	return cfg
}

// UpdateFounder 在锁内基于当前资料计算新资料并替换，返回新资料
func (s *Store) UpdateFounder(apply func(model.FounderProfile) model.FounderProfile) model.FounderProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	founder := apply(s.db.FounderProfile)
	s.commit(reduceFounder(s.db, founder))
	return founder
}

// AppendAuditLog 追加审计日志
func (s *Store) AppendAuditLog(action, details string, status model.AdminLogStatus) model.AdminLog {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := model.AdminLog{
		ID:        s.newID(),
		Timestamp: s.now(),
		Action:    action,
		Details:   details,
		Status:    status,
	}
	s.commit(reduceAuditLog(s.db, entry, AuditLogLimit))
	return entry
}
