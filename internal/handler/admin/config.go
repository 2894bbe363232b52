package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"massamba/internal/model"
	httputil "massamba/internal/pkg/http"
)

// GetConfig 获取人设配置
// @Summary      获取人设配置
// @Tags         管理后台
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  model.PublicAdminConfig
// @Failure      401  {object}  ErrorResponse
// @Router       /api/v1/admin/config [get]
func (h *Handler) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, httputil.NewSuccessResponse("success", h.adminService.Config()))
}

// UpdateConfig 修改人设配置（浅合并）
// @Summary      修改人设配置
// @Description  只修改请求中出现的字段，每个字段记录一条审计日志
// @Tags         管理后台
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      model.AdminConfigPatch  true  "配置补丁"
// @Success      200      {object}  model.PublicAdminConfig
// @Failure      400      {object}  ErrorResponse
// @Failure      401      {object}  ErrorResponse
// @Router       /api/v1/admin/config [patch]
func (h *Handler) UpdateConfig(c *gin.Context) {
	var patch model.AdminConfigPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    httputil.CodeBadRequest,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	cfg, err := h.adminService.UpdateConfig(&patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httputil.NewSuccessResponse("success", cfg))
}

// Logs 审计日志
// @Summary      审计日志
// @Description  最新在前，最多 100 条
// @Tags         管理后台
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /api/v1/admin/logs [get]
func (h *Handler) Logs(c *gin.Context) {
	c.JSON(http.StatusOK, httputil.NewSuccessResponse("success", h.adminService.Logs()))
}

// Stats 统计数据
// @Summary      统计数据
// @Tags         管理后台
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  model.AppStats
// @Router       /api/v1/admin/stats [get]
func (h *Handler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, httputil.NewSuccessResponse("success", h.adminService.Stats()))
}
