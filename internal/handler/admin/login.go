package admin

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"massamba/internal/model"
	"massamba/internal/pkg/ctxutil"
	httputil "massamba/internal/pkg/http"
)

// Login 管理员登录
// @Summary      管理员登录
// @Description  校验管理码，成功后返回管理会话 Token。连续 3 次错误后锁定 15 分钟
// @Tags         管理后台
// @Accept       json
// @Produce      json
// @Param        request  body      model.AdminLoginRequest  true  "管理码"
// @Success      200      {object}  model.AdminLoginResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      401      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse  "管理后台已关闭"
// @Failure      423      {object}  ErrorResponse  "已锁定"
// @Failure      429      {object}  ErrorResponse
// @Router       /api/v1/admin/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req model.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    httputil.CodeBadRequest,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	res, err := h.adminService.Login(c.Request.Context(), req.Code)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httputil.NewSuccessResponse("Connexion réussie", model.AdminLoginResponse{
		AccessToken: res.Token,
		ExpiresIn:   int(time.Until(res.ExpiresAt).Seconds()),
		TokenType:   "Bearer",
	}))
}

// LockStatus 登录锁定状态
// @Summary      登录锁定状态
// @Tags         管理后台
// @Produce      json
// @Success      200  {object}  model.LockStatus
// @Router       /api/v1/admin/lock [get]
func (h *Handler) LockStatus(c *gin.Context) {
	st, err := h.adminService.LockStatus(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httputil.NewSuccessResponse("success", st))
}

// Logout 退出登录
// @Summary      退出登录
// @Tags         管理后台
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /api/v1/admin/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	if sessionID, ok := ctxutil.GetSessionID(c.Request.Context()); ok {
		h.adminService.Logout(sessionID)
	}
	c.JSON(http.StatusOK, httputil.NewSuccessResponse("Déconnexion", nil))
}
