package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"massamba/internal/model"
	httputil "massamba/internal/pkg/http"
)

// GetFounder 获取创始人资料
// @Summary      获取创始人资料
// @Tags         管理后台
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  model.FounderProfile
// @Router       /api/v1/admin/founder [get]
func (h *Handler) GetFounder(c *gin.Context) {
	c.JSON(http.StatusOK, httputil.NewSuccessResponse("success", h.adminService.Founder()))
}

// UpdateFounder 修改创始人资料
// @Summary      修改创始人资料
// @Tags         管理后台
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      model.FounderPatch  true  "资料补丁"
// @Success      200      {object}  model.FounderProfile
// @Failure      400      {object}  ErrorResponse
// @Router       /api/v1/admin/founder [patch]
func (h *Handler) UpdateFounder(c *gin.Context) {
	var patch model.FounderPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    httputil.CodeBadRequest,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, httputil.NewSuccessResponse("success", h.adminService.UpdateFounder(&patch)))
}

// UploadAvatar 上传创始人头像
// @Summary      上传创始人头像
// @Description  图片以 data URL 形式保存在创始人资料中
// @Tags         管理后台
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file  formData  file  true  "头像图片"
// @Success      200   {object}  model.FounderProfile
// @Failure      400   {object}  ErrorResponse
// @Failure      413   {object}  ErrorResponse
// @Router       /api/v1/admin/founder/avatar [post]
func (h *Handler) UploadAvatar(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    httputil.CodeBadRequest,
			Message: "Missing file",
			Detail:  err.Error(),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		writeError(c, err)
		return
	}
	defer file.Close()

	founder, err := h.adminService.UploadAvatar(file)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httputil.NewSuccessResponse("success", founder))
}
