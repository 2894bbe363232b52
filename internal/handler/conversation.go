package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"massamba/internal/model"
	httputil "massamba/internal/pkg/http"
	"massamba/internal/store"
)

// ConversationHandler 对话管理处理器
type ConversationHandler struct {
	store *store.Store
}

// NewConversationHandler 创建对话管理处理器
func NewConversationHandler(st *store.Store) *ConversationHandler {
	return &ConversationHandler{store: st}
}

// ListConversationsRequest 对话列表请求
type ListConversationsRequest struct {
	Query string `form:"q"` // 搜索关键词（标题或消息内容，不区分大小写）
}

// GetConversationRequest 获取对话请求
type GetConversationRequest struct {
	ID string `uri:"id" binding:"required"`
}

// List 对话列表
// @Summary      对话列表
// @Description  按创建时间倒序返回对话，q 不为空时按标题或消息内容过滤
// @Tags         对话
// @Produce      json
// @Param        q    query     string  false  "搜索关键词"
// @Success      200  {object}  map[string]interface{}  "{\"code\": 0, \"message\": \"success\", \"data\": [...]}"
// @Router       /api/v1/conversations [get]
func (h *ConversationHandler) List(c *gin.Context) {
	var req ListConversationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    httputil.CodeBadRequest,
			Message: "Invalid query",
			Detail:  err.Error(),
		})
		return
	}

	activeID := h.store.Active()
	convs := store.Filter(h.store.Conversations(), req.Query)
	items := make([]model.ConversationSummary, 0, len(convs))
	for i := range convs {
		items = append(items, toSummary(&convs[i], activeID))
	}

	c.JSON(http.StatusOK, httputil.NewSuccessResponse("success", items))
}

// Get 获取对话详情
// @Summary      获取对话
// @Tags         对话
// @Produce      json
// @Param        id   path      string  true  "对话ID"
// @Success      200  {object}  map[string]interface{}  "{\"code\": 0, \"message\": \"success\", \"data\": {...}}"
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/conversations/{id} [get]
func (h *ConversationHandler) Get(c *gin.Context) {
	var req GetConversationRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    httputil.CodeBadRequest,
			Message: "Invalid conversation id",
			Detail:  err.Error(),
		})
		return
	}

	conv, err := h.store.Conversation(req.ID)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, httputil.NewSuccessResponse("success", conv))
}

// SetActive 切换当前对话
// @Summary      切换当前对话
// @Tags         对话
// @Accept       json
// @Produce      json
// @Param        request  body      model.SetActiveRequest  true  "对话ID"
// @Success      200      {object}  map[string]interface{}
// @Failure      404      {object}  ErrorResponse
// @Router       /api/v1/conversations/active [put]
func (h *ConversationHandler) SetActive(c *gin.Context) {
	var req model.SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    httputil.CodeBadRequest,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	if err := h.store.SetActive(req.ID); err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, httputil.NewSuccessResponse("success", gin.H{"id": req.ID}))
}

// NewChat 开始新对话（清除当前对话，下一条消息会新建对话）
// @Summary      开始新对话
// @Tags         对话
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/v1/conversations/active [delete]
func (h *ConversationHandler) NewChat(c *gin.Context) {
	h.store.ClearActive()
	c.JSON(http.StatusOK, httputil.NewSuccessResponse("success", nil))
}

func writeStoreError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrConversationNotFound) || errors.Is(err, store.ErrMessageNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Code: httputil.CodeNotFound, Message: err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, ErrorResponse{Code: httputil.CodeInternal, Message: err.Error()})
}
