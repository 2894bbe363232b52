package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"massamba/internal/model"
	httputil "massamba/internal/pkg/http"
	"massamba/internal/service"
)

// updateBuffer SSE 推送缓冲
const updateBuffer = 64

// ChatHandler 对话处理器
type ChatHandler struct {
	chat *service.ChatService
}

// NewChatHandler 创建对话处理器
func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// ChatStream 流式对话接口 (SSE)
// @Summary      发送消息（流式）
// @Description  发送一条消息，以 SSE 推送 start / thinking / message / done 事件。同一时刻只允许一个请求
// @Tags         对话
// @Accept       json
// @Produce      text/event-stream
// @Param        request  body      model.ChatRequest  true  "消息"
// @Success      200      {object}  model.ChatDone
// @Failure      400      {object}  ErrorResponse
// @Failure      409      {object}  ErrorResponse
// @Router       /api/v1/chat/stream [post]
func (h *ChatHandler) ChatStream(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    httputil.CodeBadRequest,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    httputil.CodeBadRequest,
			Message: service.ErrEmptyMessage.Error(),
		})
		return
	}

	ctx := c.Request.Context()
	updates := make(chan service.Update, updateBuffer)
	errCh := make(chan error, 1)

	// 生成在后台继续，客户端断开后更新直接丢弃
	go func() {
		errCh <- h.chat.Send(ctx, req.Message, func(u service.Update) {
			select {
			case updates <- u:
			case <-ctx.Done():
			}
		})
		close(updates)
	}()

	first, ok := <-updates
	if !ok {
		h.writeSendError(c, <-errCh)
		return
	}

	// 设置 SSE headers
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	writeEvent(c, first)
	c.Stream(func(w io.Writer) bool {
		u, ok := <-updates
		if !ok {
			return false
		}
		writeEvent(c, u)
		return true
	})
}

func writeEvent(c *gin.Context, u service.Update) {
	switch {
	case u.Thinking:
		c.SSEvent("start", model.ChatChunk{ConversationID: u.ConversationID, MessageID: u.MessageID})
		c.SSEvent("thinking", gin.H{"thinking": true})
	case u.Streaming:
		c.SSEvent("message", model.ChatChunk{
			ConversationID: u.ConversationID,
			MessageID:      u.MessageID,
			Content:        u.Content,
		})
	default:
		c.SSEvent("done", model.ChatDone{
			ConversationID:   u.ConversationID,
			MessageID:        u.MessageID,
			Content:          u.Content,
			GenerationTimeMs: u.GenerationTimeMs,
		})
	}
}

func (h *ChatHandler) writeSendError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrBusy):
		c.JSON(http.StatusConflict, ErrorResponse{Code: httputil.CodeBusy, Message: err.Error()})
	case errors.Is(err, service.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: httputil.CodeBadRequest, Message: err.Error()})
	default:
		msg := "Internal Server Error"
		if err != nil {
			msg = err.Error()
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: httputil.CodeInternal, Message: msg})
	}
}

// Status 生成状态
// @Summary      生成状态
// @Description  是否有请求在生成、是否仍在等待第一个片段
// @Tags         对话
// @Produce      json
// @Success      200  {object}  model.StatusResponse
// @Router       /api/v1/status [get]
func (h *ChatHandler) Status(c *gin.Context) {
	st := h.chat.Status()
	c.JSON(http.StatusOK, httputil.NewSuccessResponse("success", model.StatusResponse{
		Loading:  st.Loading,
		Thinking: st.Thinking,
	}))
}
