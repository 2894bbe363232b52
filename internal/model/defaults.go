package model

import "time"

// GuestUserID 默认访客用户
const GuestUserID = "user-1"

// DefaultFounder 默认创始人资料
func DefaultFounder() FounderProfile {
	return FounderProfile{
		Name:           "Massamba Diop",
		Profession:     "Étudiant – Entrepreneur – Développeur",
		ProfileMessage: "Bienvenue sur MassambaGPT. Cette application a été créée pour vous aider à penser plus grand, apprendre plus vite et réussir plus loin.",
		AvatarURL:      "https://picsum.photos/seed/massamba/200/200",
	}
}

// DefaultAdminConfig 默认人设配置，secretCodeHash 由调用方填充
func DefaultAdminConfig(secretCodeHash string) AdminConfig {
	return AdminConfig{
		SecretCodeHash:      secretCodeHash,
		DefaultTone:         ToneMotivating,
		ResponseLength:      ResponseLengthMedium,
		ResponseStyle:       ResponseStyleCoach,
		Specializations:     []string{"Business", "Entrepreneuriat", "Dev Web", "IA", "Marketing"},
		AIBehavior:          "Tu es MassambaGPT, une intelligence artificielle de nouvelle génération créée par Massamba Diop. L’application est 100% gratuite et financée uniquement par la publicité. Tu dois répondre comme un humain réel.",
		WelcomePopupMessage: "Bienvenue sur MassambaGPT. Cette application a été créée pour vous aider à penser plus grand, apprendre plus vite et réussir plus loin.",
		AdsEnabled:          true,
		PremiumEnabled:      false,
		PanelActive:         true,
	}
}

// DefaultStats 初始统计数据
func DefaultStats() AppStats {
	return AppStats{
		TotalUsers:         1240,
		TotalConversations: 8500,
		TopQuestions:       []string{"Comment créer une startup ?", "Explique l'IA", "Idées de business en Afrique"},
		AverageUsageTime:   "12 min / jour",
		EstimatedRevenue:   "450 €",
	}
}

// NewDatabase 创建全新的数据库
func NewDatabase(secretCodeHash string, now time.Time) *Database {
	return &Database{
		Users: []UserProfile{{
			ID:        GuestUserID,
			Name:      "Utilisateur Invité",
			Email:     "guest@massambagpt.com",
			IsPremium: false,
			JoinedAt:  now,
		}},
		Conversations:  []Conversation{},
		AdminConfig:    DefaultAdminConfig(secretCodeHash),
		FounderProfile: DefaultFounder(),
		SecurityLogs:   []AdminLog{},
		Stats:          DefaultStats(),
	}
}
