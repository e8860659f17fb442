package line

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"go.uber.org/zap"

	"github.com/MATADOR666-spec/line-bot-project/config"
)

// 单次 reply/push 最多 5 条消息
const maxMessages = 5

var ErrContentTooLarge = errors.New("消息内容超过大小上限")

// Client LINE 消息客户端
type Client struct {
	api      *messaging_api.MessagingApiAPI
	blob     *messaging_api.MessagingApiBlobAPI
	maxBytes int64
	logger   *zap.Logger
}

// NewClient 创建 LINE 客户端
func NewClient(cfg *config.LineConfig, logger *zap.Logger) (*Client, error) {
	return newClient(cfg, logger, "", "")
}

// newClient endpoint 为空时使用 SDK 默认地址
func newClient(cfg *config.LineConfig, logger *zap.Logger, endpoint, blobEndpoint string) (*Client, error) {
	// reply/push 与附件下载共用同一个带超时的 http.Client
	httpClient := &http.Client{Timeout: cfg.Timeout}

	apiOpts := []messaging_api.MessagingApiAPIOption{messaging_api.WithHTTPClient(httpClient)}
	if endpoint != "" {
		apiOpts = append(apiOpts, messaging_api.WithEndpoint(endpoint))
	}
	blobOpts := []messaging_api.MessagingApiBlobAPIOption{messaging_api.WithBlobHTTPClient(httpClient)}
	if blobEndpoint != "" {
		blobOpts = append(blobOpts, messaging_api.WithBlobEndpoint(blobEndpoint))
	}

	api, err := messaging_api.NewMessagingApiAPI(cfg.ChannelToken, apiOpts...)
	if err != nil {
		return nil, fmt.Errorf("创建 LINE Messaging API 客户端失败: %w", err)
	}
	blob, err := messaging_api.NewMessagingApiBlobAPI(cfg.ChannelToken, blobOpts...)
	if err != nil {
		return nil, fmt.Errorf("创建 LINE Blob API 客户端失败: %w", err)
	}

	maxBytes := cfg.MaxImageBytes
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &Client{api: api, blob: blob, maxBytes: maxBytes, logger: logger}, nil
}

// Reply 使用 replyToken 回复文本
func (c *Client) Reply(ctx context.Context, replyToken string, texts ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msgs := textMessages(texts)
	if len(msgs) == 0 {
		return nil
	}
	_, err := c.api.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   msgs,
	})
	if err != nil {
		return fmt.Errorf("LINE reply 失败: %w", err)
	}
	return nil
}

// Push 主动推送文本
func (c *Client) Push(ctx context.Context, to string, texts ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msgs := textMessages(texts)
	if len(msgs) == 0 {
		return nil
	}
	_, err := c.api.PushMessage(&messaging_api.PushMessageRequest{
		To:       to,
		Messages: msgs,
	}, "")
	if err != nil {
		return fmt.Errorf("LINE push 失败: %w", err)
	}
	return nil
}

// GetContent 下载用户发送的图片等二进制内容
func (c *Client) GetContent(ctx context.Context, messageID string) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	resp, err := c.blob.GetMessageContent(messageID)
	if err != nil {
		return nil, "", fmt.Errorf("获取消息内容失败: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("读取消息内容失败: %w", err)
	}
	if int64(len(data)) > c.maxBytes {
		return nil, "", ErrContentTooLarge
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func textMessages(texts []string) []messaging_api.MessageInterface {
	msgs := make([]messaging_api.MessageInterface, 0, len(texts))
	for _, t := range texts {
		if t == "" {
			continue
		}
		msgs = append(msgs, messaging_api.TextMessage{Text: t})
		if len(msgs) == maxMessages {
			break
		}
	}
	return msgs
}
