package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/MATADOR666-spec/line-bot-project/internal/api/middleware"
	"github.com/MATADOR666-spec/line-bot-project/pkg/response"
)

// MustGetOperator 从 Gin 上下文中安全提取操作者标识。
// 如果 JWT 中间件未正确注入，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetOperator(c *gin.Context) (string, bool) {
	v, exists := c.Get(middleware.ContextOperator)
	if !exists {
		response.Unauthorized(c, response.CodeUnauthorized, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, response.CodeUnauthorized, "未认证")
		return "", false
	}
	return s, true
}
