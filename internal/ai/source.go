package ai

import (
	"context"

	"massamba/internal/model"
)

// TurnRole 历史消息在模型侧的角色
type TurnRole string

const (
	TurnUser  TurnRole = "user"
	TurnModel TurnRole = "model"
)

// Turn 一轮历史消息
type Turn struct {
	Role TurnRole
	Text string
}

// Persona 生成系统提示词所需的人设参数
type Persona struct {
	Tone            model.Tone
	Behavior        string
	Specializations []string
	Length          model.ResponseLength
	Style           model.ResponseStyle
}

// StreamRequest 流式生成请求
type StreamRequest struct {
	Prompt  string
	Persona Persona
	History []Turn
}

// SnapshotStream 累积文本流
// Recv 每次返回截至目前的完整文本，结束时返回 io.EOF
type SnapshotStream interface {
	Recv() (string, error)
	Close()
}

// TextSource 流式文本来源
type TextSource interface {
	Stream(ctx context.Context, req *StreamRequest) (SnapshotStream, error)
}

// PersonaFromConfig 从管理配置提取人设
func PersonaFromConfig(cfg model.AdminConfig) Persona {
	return Persona{
		Tone:            cfg.DefaultTone,
		Behavior:        cfg.AIBehavior,
		Specializations: cfg.Specializations,
		Length:          cfg.ResponseLength,
		Style:           cfg.ResponseStyle,
	}
}

// HistoryFromMessages 把对话消息转换为模型历史，assistant 映射为 model
func HistoryFromMessages(msgs []model.Message) []Turn {
	turns := make([]Turn, 0, len(msgs))
	for _, m := range msgs {
		role := TurnUser
		if m.Role == model.RoleAssistant {
			role = TurnModel
		}
		turns = append(turns, Turn{Role: role, Text: m.Content})
	}
	return turns
}
