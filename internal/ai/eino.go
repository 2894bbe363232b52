package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ChatChain 对话链，基于 eino ChatModel 的流式输出
// 职责: 组装消息（系统提示词 + 历史 + 当前问题），把增量输出转换为累积文本
type ChatChain struct {
	chatModel einomodel.ChatModel
	opts      []einomodel.Option
}

// NewChatChain 创建对话链
func NewChatChain(chatModel einomodel.ChatModel, opts ...einomodel.Option) *ChatChain {
	return &ChatChain{chatModel: chatModel, opts: opts}
}

// BuildMessages 组装发送给模型的消息
func BuildMessages(req *StreamRequest) []*schema.Message {
	msgs := make([]*schema.Message, 0, len(req.History)+2)
	msgs = append(msgs, schema.SystemMessage(BuildSystemPrompt(req.Persona)))
	for _, turn := range req.History {
		if turn.Role == TurnModel {
			msgs = append(msgs, schema.AssistantMessage(turn.Text, nil))
		} else {
			msgs = append(msgs, schema.UserMessage(turn.Text))
		}
	}
	msgs = append(msgs, schema.UserMessage(req.Prompt))
	return msgs
}

// Stream 发起流式生成
func (c *ChatChain) Stream(ctx context.Context, req *StreamRequest) (SnapshotStream, error) {
	reader, err := c.chatModel.Stream(ctx, BuildMessages(req), c.opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to start chat stream: %w", err)
	}
	return &einoStream{reader: reader}, nil
}

// einoStream 把 eino 增量消息累积为完整文本
type einoStream struct {
	reader *schema.StreamReader[*schema.Message]
	buf    strings.Builder
}

func (s *einoStream) Recv() (string, error) {
	for {
		chunk, err := s.reader.Recv()
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		if err != nil {
			return "", fmt.Errorf("chat stream recv: %w", err)
		}
		// 空片段不产生新快照
		if chunk == nil || chunk.Content == "" {
			continue
		}
		s.buf.WriteString(chunk.Content)
		return s.buf.String(), nil
	}
}

func (s *einoStream) Close() {
	s.reader.Close()
}
