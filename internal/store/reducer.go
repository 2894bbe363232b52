package store

import (
	"time"
	"unicode/utf8"

	"massamba/internal/model"
)

// titleLimit 标题截取的字符数（按 rune 计）
const titleLimit = 30

// DeriveTitle 由首条用户消息生成标题，超过 30 个字符时截断并追加 "..."
func DeriveTitle(text string) string {
	if utf8.RuneCountInString(text) <= titleLimit {
		return text
	}
	runes := []rune(text)
	return string(runes[:titleLimit]) + "..."
}

// 以下 reducer 均为纯函数：不修改入参，返回新的快照。
// 未被修改的对话与消息切片与旧快照共享，调用方不得原地修改任何快照。

func cloneDB(db *model.Database) *model.Database {
	next := *db
	next.Conversations = append([]model.Conversation(nil), db.Conversations...)
	return &next
}

func cloneConversation(c model.Conversation) model.Conversation {
	c.Messages = append([]model.Message(nil), c.Messages...)
	return c
}

// withConversation 复制 idx 处的对话并交给 fn 修改
func withConversation(db *model.Database, idx int, fn func(c *model.Conversation)) *model.Database {
	next := cloneDB(db)
	conv := cloneConversation(next.Conversations[idx])
	fn(&conv)
	next.Conversations[idx] = conv
	return next
}

// reduceStartConversation 新对话放在列表最前面
func reduceStartConversation(db *model.Database, conv model.Conversation) *model.Database {
	next := *db
	next.Conversations = make([]model.Conversation, 0, len(db.Conversations)+1)
	next.Conversations = append(next.Conversations, conv)
	next.Conversations = append(next.Conversations, db.Conversations...)
	return &next
}

func reduceAppendMessage(db *model.Database, idx int, msg model.Message, now time.Time) *model.Database {
	return withConversation(db, idx, func(c *model.Conversation) {
		c.Messages = append(c.Messages, msg)
		c.LastUpdated = now
	})
}

func reduceUpdateContent(db *model.Database, idx, msgIdx int, content string) *model.Database {
	return withConversation(db, idx, func(c *model.Conversation) {
		c.Messages[msgIdx].Content = content
	})
}

func reduceFinalize(db *model.Database, idx, msgIdx int, elapsedMs int64, fallback string) *model.Database {
	return withConversation(db, idx, func(c *model.Conversation) {
		msg := &c.Messages[msgIdx]
		if msg.Content == "" && fallback != "" {
			msg.Content = fallback
		}
		msg.IsStreaming = false
		if msg.GenerationTimeMs == nil {
			ms := elapsedMs
			msg.GenerationTimeMs = &ms
		}
	})
}

func reduceConfig(db *model.Database, cfg model.AdminConfig) *model.Database {
	next := *db
	next.AdminConfig = cfg
	return &next
}

func reduceFounder(db *model.Database, founder model.FounderProfile) *model.Database {
	next := *db
	next.FounderProfile = founder
	return &next
}

// reduceAuditLog 最新的日志在前，最多保留 limit 条
func reduceAuditLog(db *model.Database, entry model.AdminLog, limit int) *model.Database {
	next := *db
	logs := make([]model.AdminLog, 0, len(db.SecurityLogs)+1)
	logs = append(logs, entry)
	logs = append(logs, db.SecurityLogs...)
	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	next.SecurityLogs = logs
	return &next
}

// resetStreaming 重新加载时清除遗留的 is_streaming 标记
func resetStreaming(db *model.Database) *model.Database {
	next := cloneDB(db)
	for i := range next.Conversations {
		if !next.Conversations[i].Streaming() {
			continue
		}
		conv := cloneConversation(next.Conversations[i])
		for j := range conv.Messages {
			conv.Messages[j].IsStreaming = false
		}
		next.Conversations[i] = conv
	}
	return next
}
