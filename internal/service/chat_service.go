package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"massamba/internal/ai"
	"massamba/internal/pkg/textclean"
	"massamba/internal/store"
)

var (
	ErrBusy         = errors.New("a response is already being generated")
	ErrEmptyMessage = errors.New("message is empty")
)

// FallbackMessage 生成失败且没有任何内容时展示的道歉文本
const FallbackMessage = "Désolé, j'ai rencontré un petit souci technique. Peux-tu reformuler ta demande ?"

// Update 一次流式更新
type Update struct {
	ConversationID   string
	MessageID        string
	Content          string
	Streaming        bool
	Thinking         bool
	GenerationTimeMs int64
}

// Observer 按到达顺序接收流式更新
type Observer func(Update)

// ChatStatus 当前生成状态
type ChatStatus struct {
	Loading  bool
	Thinking bool
}

// ChatService 对话服务 - 业务逻辑层
// 职责: 编排文本来源与对话存储，完成一次请求/响应
type ChatService struct {
	store  *store.Store
	source ai.TextSource
	now    func() time.Time

	loading  atomic.Bool
	thinking atomic.Bool
}

// NewChatService 创建对话服务
func NewChatService(st *store.Store, source ai.TextSource) *ChatService {
	return &ChatService{
		store:  st,
		source: source,
		now:    time.Now,
	}
}

// Status 当前是否有请求在生成、是否仍在等待首个片段
func (s *ChatService) Status() ChatStatus {
	return ChatStatus{
		Loading:  s.loading.Load(),
		Thinking: s.thinking.Load(),
	}
}

// idlePollInterval WaitIdle 的轮询间隔
const idlePollInterval = 20 * time.Millisecond

// WaitIdle 等待正在进行的生成结束，ctx 到期时返回其错误
func (s *ChatService) WaitIdle(ctx context.Context) error {
	ticker := time.NewTicker(idlePollInterval)
	defer ticker.Stop()
	for s.loading.Load() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// Send 发送一条用户消息并消费流式回复，直到结束或失败
// 同一时刻只允许一个请求；生成失败不返回错误，而是写入兜底文本
func (s *ChatService) Send(ctx context.Context, text string, observe Observer) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}
	if !s.loading.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer s.loading.Store(false)

	if observe == nil {
		observe = func(Update) {}
	}

	// 1. 确定目标对话，同时构建历史（不含本条消息）
	var history []ai.Turn
	convID := s.store.Active()
	if convID != "" {
		conv, err := s.store.Conversation(convID)
		if err != nil {
			return err
		}
		history = ai.HistoryFromMessages(conv.Messages)
		if _, err := s.store.AppendUserMessage(convID, text); err != nil {
			return err
		}
	} else {
		convID = s.store.StartConversation(text)
	}

	// 2. 占位消息
	msgID, err := s.store.AppendAssistantPlaceholder(convID)
	if err != nil {
		return err
	}

	logger := log.With().
		Str("conversation_id", convID).
		Str("message_id", msgID).
		Logger()

	s.thinking.Store(true)
	defer s.thinking.Store(false)
	observe(Update{ConversationID: convID, MessageID: msgID, Streaming: true, Thinking: true})

	// 3. 调用文本来源；调用方断开不影响生成
	req := &ai.StreamRequest{
		Prompt:  text,
		Persona: ai.PersonaFromConfig(s.store.Config()),
		History: history,
	}
	started := s.now()
	content, streamErr := s.consume(context.WithoutCancel(ctx), req, convID, msgID, observe)
	elapsed := s.now().Sub(started).Milliseconds()

	if streamErr != nil {
		logger.Error().Err(streamErr).Msg("chat stream failed")
		if err := s.store.FailAssistantMessage(convID, msgID, elapsed, FallbackMessage); err != nil {
			return err
		}
		if content == "" {
			content = FallbackMessage
		}
	} else {
		if err := s.store.FinalizeAssistantMessage(convID, msgID, elapsed); err != nil {
			return err
		}
	}

	observe(Update{
		ConversationID:   convID,
		MessageID:        msgID,
		Content:          content,
		GenerationTimeMs: elapsed,
	})

	logger.Info().Int64("generation_time_ms", elapsed).Bool("failed", streamErr != nil).Msg("chat completed")
	return nil
}

// consume 顺序读取累积快照并写入存储，返回最后一次写入的内容
func (s *ChatService) consume(ctx context.Context, req *ai.StreamRequest, convID, msgID string, observe Observer) (string, error) {
	stream, err := s.source.Stream(ctx, req)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	var content string
	for {
		snapshot, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return content, nil
		}
		if err != nil {
			return content, err
		}

		s.thinking.Store(false)
		content = textclean.Clean(snapshot)
		if err := s.store.UpdateAssistantContent(convID, msgID, content); err != nil {
			return content, fmt.Errorf("apply snapshot: %w", err)
		}
		observe(Update{
			ConversationID: convID,
			MessageID:      msgID,
			Content:        content,
			Streaming:      true,
		})
	}
}
