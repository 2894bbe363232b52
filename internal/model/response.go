package model

// ChatChunk 流式对话片段（SSE message 事件）
type ChatChunk struct {
	ConversationID string `json:"conversation_id"`
	MessageID      string `json:"message_id"`
	Content        string `json:"content"`
}

// ChatDone 流式对话结束（SSE done 事件）
type ChatDone struct {
	ConversationID   string `json:"conversation_id"`
	MessageID        string `json:"message_id"`
	Content          string `json:"content"`
	GenerationTimeMs int64  `json:"generation_time_ms"`
}

// StatusResponse 会话加载状态
type StatusResponse struct {
	Loading  bool `json:"loading"`
	Thinking bool `json:"thinking"`
}

// ConversationSummary 对话列表项
type ConversationSummary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Tone         Tone   `json:"tone"`
	MessageCount int    `json:"message_count"`
	LastUpdated  int64  `json:"last_updated"`
	Active       bool   `json:"active"`
}

// WelcomeResponse 欢迎弹窗
type WelcomeResponse struct {
	Show    bool           `json:"show"`
	Founder FounderProfile `json:"founder"`
	Message string         `json:"message"`
}

// LockStatus 管理入口锁定状态
type LockStatus struct {
	Locked           bool  `json:"locked"`
	FailedAttempts   int   `json:"failed_attempts"`
	RemainingSeconds int64 `json:"remaining_seconds,omitempty"`
}

// AdminLoginResponse 管理员登录成功
type AdminLoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// PublicAdminConfig 对外暴露的配置（不含管理码哈希）
type PublicAdminConfig struct {
	DefaultTone         Tone           `json:"default_tone"`
	ResponseLength      ResponseLength `json:"response_length"`
	ResponseStyle       ResponseStyle  `json:"response_style"`
	Specializations     []string       `json:"specializations"`
	AIBehavior          string         `json:"ai_behavior"`
	WelcomePopupMessage string         `json:"welcome_popup_message"`
	AdsEnabled          bool           `json:"ads_enabled"`
	PremiumEnabled      bool           `json:"premium_enabled"`
	PanelActive         bool           `json:"panel_active"`
}

// Public 去掉敏感字段
func (c AdminConfig) Public() PublicAdminConfig {
	return PublicAdminConfig{
		DefaultTone:         c.DefaultTone,
		ResponseLength:      c.ResponseLength,
		ResponseStyle:       c.ResponseStyle,
		Specializations:     c.Specializations,
		AIBehavior:          c.AIBehavior,
		WelcomePopupMessage: c.WelcomePopupMessage,
		AdsEnabled:          c.AdsEnabled,
		PremiumEnabled:      c.PremiumEnabled,
		PanelActive:         c.PanelActive,
	}
}
