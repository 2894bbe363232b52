package model

// ChatRequest 对话请求
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// SetActiveRequest 切换当前对话
type SetActiveRequest struct {
	ID string `json:"id" binding:"required"`
}

// AdminLoginRequest 管理员登录请求
type AdminLoginRequest struct {
	Code string `json:"code" binding:"required"`
}

// AdminConfigPatch 配置浅合并补丁，nil 字段保持不变
type AdminConfigPatch struct {
	SecretCode          *string         `json:"secret_code,omitempty"`
	DefaultTone         *Tone           `json:"default_tone,omitempty"`
	ResponseLength      *ResponseLength `json:"response_length,omitempty"`
	ResponseStyle       *ResponseStyle  `json:"response_style,omitempty"`
	Specializations     []string        `json:"specializations,omitempty"`
	AIBehavior          *string         `json:"ai_behavior,omitempty"`
	WelcomePopupMessage *string         `json:"welcome_popup_message,omitempty"`
	AdsEnabled          *bool           `json:"ads_enabled,omitempty"`
	PremiumEnabled      *bool           `json:"premium_enabled,omitempty"`
	PanelActive         *bool           `json:"panel_active,omitempty"`
}

// FounderPatch 创始人资料补丁
type FounderPatch struct {
	Name           *string `json:"name,omitempty"`
	Profession     *string `json:"profession,omitempty"`
	ProfileMessage *string `json:"profile_message,omitempty"`
	AvatarURL      *string `json:"avatar_url,omitempty"`
}
