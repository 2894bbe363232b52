package model

import (
	"time"
)

// Role 消息角色
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Tone 人设语气
type Tone string

const (
	ToneProfessional Tone = "professionnel"
	ToneMotivating   Tone = "motivant"
	ToneSimple       Tone = "simple"
	ToneEducational  Tone = "éducatif"
)

// ResponseLength 回复长度
type ResponseLength string

const (
	ResponseLengthShort  ResponseLength = "courte"
	ResponseLengthMedium ResponseLength = "moyenne"
	ResponseLengthLong   ResponseLength = "longue"
)

// ResponseStyle 回复风格
type ResponseStyle string

const (
	ResponseStyleVulgarizer ResponseStyle = "vulgarisateur simple"
	ResponseStyleExpert     ResponseStyle = "expert technique"
	ResponseStyleCoach      ResponseStyle = "coach motivant"
)

// Valid 是否为已知语气
func (t Tone) Valid() bool {
	switch t {
	case ToneProfessional, ToneMotivating, ToneSimple, ToneEducational:
		return true
	}
	return false
}

// Valid 是否为已知长度
func (l ResponseLength) Valid() bool {
	switch l {
	case ResponseLengthShort, ResponseLengthMedium, ResponseLengthLong:
		return true
	}
	return false
}

// Valid 是否为已知风格
func (s ResponseStyle) Valid() bool {
	switch s {
	case ResponseStyleVulgarizer, ResponseStyleExpert, ResponseStyleCoach:
		return true
	}
	return false
}

// Conversation 对话实体
// messages 只追加，插入顺序即时间顺序
type Conversation struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	Title             string    `json:"title"`
	Messages          []Message `json:"messages"`
	Tone              Tone      `json:"tone"`
	LastUpdated       time.Time `json:"last_updated"`
	PreferredLanguage string    `json:"preferred_language,omitempty"`
}

// Message 消息
type Message struct {
	ID               string    `json:"id"`
	Role             Role      `json:"role"`
	Content          string    `json:"content"`
	CreatedAt        time.Time `json:"created_at"`
	IsStreaming      bool      `json:"is_streaming,omitempty"`
	GenerationTimeMs *int64    `json:"generation_time_ms,omitempty"`
}

// FindMessage 按 ID 查找消息下标，未找到返回 -1
func (c *Conversation) FindMessage(id string) int {
	for i := range c.Messages {
		if c.Messages[i].ID == id {
			return i
		}
	}
	return -1
}

// Streaming 当前是否有正在生成的消息
func (c *Conversation) Streaming() bool {
	for i := range c.Messages {
		if c.Messages[i].IsStreaming {
			return true
		}
	}
	return false
}
