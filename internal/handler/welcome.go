package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	httputil "massamba/internal/pkg/http"
	"massamba/internal/service"
)

// WelcomeHandler 欢迎弹窗处理器
type WelcomeHandler struct {
	welcome *service.WelcomeService
}

// NewWelcomeHandler 创建欢迎弹窗处理器
func NewWelcomeHandler(welcome *service.WelcomeService) *WelcomeHandler {
	return &WelcomeHandler{welcome: welcome}
}

// Get 欢迎弹窗内容
// @Summary      欢迎弹窗
// @Description  首次访问时 show 为 true，附带创始人资料与欢迎语
// @Tags         欢迎
// @Produce      json
// @Success      200  {object}  model.WelcomeResponse
// @Router       /api/v1/welcome [get]
func (h *WelcomeHandler) Get(c *gin.Context) {
	resp, err := h.welcome.Welcome(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to load welcome popup")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: httputil.CodeInternal, Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, httputil.NewSuccessResponse("success", resp))
}

// Dismiss 关闭欢迎弹窗
// @Summary      关闭欢迎弹窗
// @Tags         欢迎
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/v1/welcome/dismiss [post]
func (h *WelcomeHandler) Dismiss(c *gin.Context) {
	if err := h.welcome.Dismiss(c.Request.Context()); err != nil {
		log.Error().Err(err).Msg("failed to dismiss welcome popup")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: httputil.CodeInternal, Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, httputil.NewSuccessResponse("success", nil))
}
