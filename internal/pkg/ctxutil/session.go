package ctxutil

import "context"

// sessionKeyType 使用私有类型避免与其他 context key 冲突
type sessionKeyType struct{}

var sessionKey = sessionKeyType{}

// WithSessionID 将管理会话 ID (jti) 注入到 context 中
// 在认证中间件解析 JWT 成功后调用：
//   ctx := ctxutil.WithSessionID(c.Request.Context(), claims.ID)
//   c.Request = c.Request.WithContext(ctx)
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, sessionKey, sessionID)
}

// GetSessionID 从 context 中解析管理会话 ID
func GetSessionID(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(sessionKey).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
