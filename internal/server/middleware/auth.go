package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"massamba/internal/pkg/ctxutil"
	httputil "massamba/internal/pkg/http"
	"massamba/internal/pkg/jwt"
)

// SessionAuthorizer 校验会话 Token，返回会话 ID
type SessionAuthorizer interface {
	Authorize(token string) (string, error)
}

// Auth 管理会话认证中间件
// 从 Authorization header 中提取 Bearer token，验证后注入会话 ID 到 context
func Auth(authorizer SessionAuthorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 从 Header 获取 Token
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httputil.Abort(c, http.StatusUnauthorized, httputil.CodeUnauthorized, "Unauthorized")
			return
		}

		// 提取 Token（Bearer {token}）
		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || scheme != "Bearer" || token == "" {
			httputil.Abort(c, http.StatusUnauthorized, httputil.CodeUnauthorized, "Invalid authorization header")
			return
		}

		sessionID, err := authorizer.Authorize(token)
		if err != nil {
			message := "Invalid session"
			if errors.Is(err, jwt.ErrExpiredToken) {
				message = "Session expired"
			}
			httputil.Abort(c, http.StatusUnauthorized, httputil.CodeTokenInvalid, message)
			return
		}

		// 将会话 ID 注入到 context
		ctx := ctxutil.WithSessionID(c.Request.Context(), sessionID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
