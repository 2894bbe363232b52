package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"massamba/internal/pkg/storage"
)

// readyTimeout 就绪检查访问存储的超时
const readyTimeout = 2 * time.Second

// HealthHandler 健康检查处理器
type HealthHandler struct {
	kv storage.Storage
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(kv storage.Storage) *HealthHandler {
	return &HealthHandler{kv: kv}
}

// Health 健康检查
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready 就绪检查，持久化存储可读时返回 ready
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()

	if _, _, err := h.kv.Get(ctx, storage.KeyVisited); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unavailable",
			"storage": h.kv.GetStorageType(),
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ready",
		"storage": h.kv.GetStorageType(),
	})
}
