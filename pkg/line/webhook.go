// Package line 封装 LINE Messaging API：webhook 解析与消息发送。
package line

import (
	"errors"
	"net/http"

	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
)

// ErrInvalidSignature X-Line-Signature 校验失败
var ErrInvalidSignature = errors.New("LINE 签名无效")

// EventKind 业务关心的事件类别
type EventKind string

const (
	KindText  EventKind = "text"
	KindImage EventKind = "image"
	KindOther EventKind = "other"
)

// Event 归一化后的聊天事件
type Event struct {
	ID         string // webhookEventId，用于去重
	UserID     string
	ReplyToken string
	Kind       EventKind
	Text       string
	MessageID  string
	Redelivery bool
}

// ParseRequest 校验签名并解析 webhook 请求体
// 非消息事件（follow、unfollow 等）与无 userId 的来源被丢弃
func ParseRequest(secret string, r *http.Request) ([]Event, error) {
	cb, err := webhook.ParseRequest(secret, r)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			return nil, ErrInvalidSignature
		}
		return nil, err
	}

	events := make([]Event, 0, len(cb.Events))
	for _, raw := range cb.Events {
		me, ok := raw.(webhook.MessageEvent)
		if !ok {
			continue
		}
		userID := sourceUserID(me.Source)
		if userID == "" {
			continue
		}

		ev := Event{
			ID:         me.WebhookEventId,
			UserID:     userID,
			ReplyToken: me.ReplyToken,
			Kind:       KindOther,
		}
		if me.DeliveryContext != nil {
			ev.Redelivery = me.DeliveryContext.IsRedelivery
		}

		switch m := me.Message.(type) {
		case webhook.TextMessageContent:
			ev.Kind = KindText
			ev.Text = m.Text
			ev.MessageID = m.Id
		case webhook.ImageMessageContent:
			ev.Kind = KindImage
			ev.MessageID = m.Id
		}
		events = append(events, ev)
	}
	return events, nil
}

func sourceUserID(src webhook.SourceInterface) string {
	switch s := src.(type) {
	case webhook.UserSource:
		return s.UserId
	case webhook.GroupSource:
		return s.UserId
	case webhook.RoomSource:
		return s.UserId
	}
	return ""
}
