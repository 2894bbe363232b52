package admin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"massamba/internal/pkg/dataurl"
	httputil "massamba/internal/pkg/http"
	"massamba/internal/service"
)

// ErrorResponse 复用通用错误响应
type ErrorResponse = httputil.ErrorResponse

// Handler 管理后台处理器
type Handler struct {
	adminService *service.AdminService
}

// NewHandler 创建管理后台处理器
func NewHandler(adminService *service.AdminService) *Handler {
	return &Handler{adminService: adminService}
}

// writeError 将服务层错误映射为 HTTP 响应
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := httputil.CodeInternal

	switch {
	case errors.Is(err, service.ErrInvalidCode):
		status, code = http.StatusUnauthorized, httputil.CodeUnauthorized
	case errors.Is(err, service.ErrLocked):
		status, code = http.StatusLocked, httputil.CodeLocked
	case errors.Is(err, service.ErrPanelDisabled):
		status, code = http.StatusNotFound, httputil.CodeNotFound
	case errors.Is(err, service.ErrInvalidPatch), errors.Is(err, dataurl.ErrNotImage), errors.Is(err, dataurl.ErrEmpty):
		status, code = http.StatusBadRequest, httputil.CodeBadRequest
	case errors.Is(err, dataurl.ErrTooLarge):
		status, code = http.StatusRequestEntityTooLarge, httputil.CodeTooLarge
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("admin request failed")
	}

	c.JSON(status, ErrorResponse{Code: code, Message: err.Error()})
}
