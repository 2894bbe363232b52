package store

import (
	"strings"

	"golang.org/x/text/cases"

	"massamba/internal/model"
)

// Filter 返回标题或任一消息内容包含 term 的对话（不区分大小写），保持原顺序
// term 为空时原样返回全部对话
func Filter(conversations []model.Conversation, term string) []model.Conversation {
	if term == "" {
		return conversations
	}

	folder := cases.Fold()
	needle := folder.String(term)

	out := make([]model.Conversation, 0, len(conversations))
	for _, conv := range conversations {
		if matches(folder, conv, needle) {
			out = append(out, conv)
		}
	}
	return out
}

func matches(folder cases.Caser, conv model.Conversation, needle string) bool {
	if strings.Contains(folder.String(conv.Title), needle) {
		return true
	}
	for _, msg := range conv.Messages {
		if strings.Contains(folder.String(msg.Content), needle) {
			return true
		}
	}
	return false
}
