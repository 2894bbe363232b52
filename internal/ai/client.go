package ai

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/rs/zerolog/log"

	"massamba/internal/ai/component"
	"massamba/internal/config"
)

// Client AI 能力层客户端
// 职责: 根据配置选择文本来源（真实模型或模拟模式），对外提供统一的流式接口
type Client struct {
	cfg    *config.AIConfig
	source TextSource
	mock   bool
}

// NewClient 创建 AI 客户端
func NewClient(ctx context.Context, cfg *config.AIConfig) (*Client, error) {
	if cfg.APIKey == "" {
		log.Warn().Msg("AI API key not configured, using mock mode")
		return &Client{cfg: cfg, source: NewMockSource(), mock: true}, nil
	}

	chatModel, err := component.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	var opts []einomodel.Option
	if cfg.Options.Temperature > 0 {
		opts = append(opts, einomodel.WithTemperature(float32(cfg.Options.Temperature)))
	}

	log.Info().
		Str("provider", cfg.Provider).
		Str("model", cfg.Model).
		Msg("AI chat model initialized")

	return &Client{
		cfg:    cfg,
		source: NewChatChain(chatModel, opts...),
	}, nil
}

// NewClientWithSource 使用给定的文本来源创建客户端
func NewClientWithSource(cfg *config.AIConfig, source TextSource) *Client {
	return &Client{cfg: cfg, source: source}
}

// Mock 是否处于模拟模式
func (c *Client) Mock() bool {
	return c.mock
}

// Stream 流式对话
func (c *Client) Stream(ctx context.Context, req *StreamRequest) (SnapshotStream, error) {
	return c.source.Stream(ctx, req)
}

// Close 关闭客户端
func (c *Client) Close() error {
	return nil
}
