package model

import "time"

// UserProfile 用户资料
type UserProfile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	IsPremium bool      `json:"is_premium"`
	JoinedAt  time.Time `json:"joined_at"`
}

// FounderProfile 创始人资料（欢迎弹窗展示）
type FounderProfile struct {
	Name           string `json:"name"`
	Profession     string `json:"profession"`
	ProfileMessage string `json:"profile_message"`
	AvatarURL      string `json:"avatar_url,omitempty"`
}

// AdminConfig 管理员可调的人设与运营配置
type AdminConfig struct {
	SecretCodeHash      string         `json:"secret_code_hash"`
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

// AdminLogStatus 审计日志状态
type AdminLogStatus string

const (
	AdminLogSuccess AdminLogStatus = "success"
	AdminLogFailure AdminLogStatus = "failure"
	AdminLogBlocked AdminLogStatus = "blocked"
)

// AdminLog 审计日志
type AdminLog struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Action    string         `json:"action"`
	Details   string         `json:"details"`
	Status    AdminLogStatus `json:"status"`
}

// AppStats 仪表盘统计
type AppStats struct {
	TotalUsers         int      `json:"total_users"`
	TotalConversations int      `json:"total_conversations"`
	TopQuestions       []string `json:"top_questions"`
	AverageUsageTime   string   `json:"average_usage_time"`
	EstimatedRevenue   string   `json:"estimated_revenue"`
}

// Database 整体持久化的数据块
// 每次变更后整体序列化写入持久化存储，没有版本号
type Database struct {
	Users          []UserProfile  `json:"users"`
	Conversations  []Conversation `json:"conversations"`
	AdminConfig    AdminConfig    `json:"admin_config"`
	FounderProfile FounderProfile `json:"founder_profile"`
	SecurityLogs   []AdminLog     `json:"security_logs"`
	Stats          AppStats       `json:"stats"`
}

// Conversation 按 ID 查找对话下标，未找到返回 -1
func (db *Database) Conversation(id string) int {
	for i := range db.Conversations {
		if db.Conversations[i].ID == id {
			return i
		}
	}
	return -1
}
