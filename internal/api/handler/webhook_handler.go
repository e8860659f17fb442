package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MATADOR666-spec/line-bot-project/internal/api/middleware"
	"github.com/MATADOR666-spec/line-bot-project/internal/service"
	"github.com/MATADOR666-spec/line-bot-project/pkg/line"
	"github.com/MATADOR666-spec/line-bot-project/pkg/response"
)

// WebhookHandler LINE Webhook 入口
type WebhookHandler struct {
	secret  string
	chatSvc service.ChatService
}

// NewWebhookHandler 创建 WebhookHandler
func NewWebhookHandler(secret string, chatSvc service.ChatService) *WebhookHandler {
	return &WebhookHandler{secret: secret, chatSvc: chatSvc}
}

// Callback 接收事件并逐个同步处理
// POST /callback
func (h *WebhookHandler) Callback(c *gin.Context) {
	events, err := line.ParseRequest(h.secret, c.Request)
	if err != nil {
		switch {
		case errors.Is(err, line.ErrInvalidSignature):
			response.BadRequest(c, response.CodeInvalidSignature, "签名无效")
		case middleware.IsBodyTooLarge(err):
			response.Error(c, http.StatusRequestEntityTooLarge, response.CodeBodyTooLarge, "请求体过大")
		default:
			response.BadRequest(c, response.CodeBadWebhook, "无法解析 Webhook 请求")
		}
		return
	}

	ctx := c.Request.Context()
	for _, ev := range events {
		h.chatSvc.Handle(ctx, ev)
	}
	response.OK(c, nil)
}
