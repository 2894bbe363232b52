package handler

import (
	"massamba/internal/model"
	httputil "massamba/internal/pkg/http"
)

// ErrorResponse 复用通用错误响应
type ErrorResponse = httputil.ErrorResponse

// toSummary 对话列表项
func toSummary(conv *model.Conversation, activeID string) model.ConversationSummary {
	return model.ConversationSummary{
		ID:           conv.ID,
		Title:        conv.Title,
		Tone:         conv.Tone,
		MessageCount: len(conv.Messages),
		LastUpdated:  conv.LastUpdated.UnixMilli(),
		Active:       conv.ID == activeID,
	}
}
