// Package session 保存每个用户进行中的工作流状态。
package session

import (
	"context"
	"time"

	"github.com/MATADOR666-spec/line-bot-project/internal/workflow"
)

// Session 用户会话；不持久化语义，进程重启（内存后端）即丢失
type Session struct {
	UserID    string         `json:"user_id"`
	State     workflow.State `json:"state"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Store 会话存储
// Get 未命中时返回 (nil, nil)
type Store interface {
	Get(ctx context.Context, userID string) (*Session, error)
	Put(ctx context.Context, s *Session) error
	Delete(ctx context.Context, userID string) error
}
