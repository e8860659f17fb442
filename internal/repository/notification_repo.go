package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/MATADOR666-spec/line-bot-project/internal/model"
)

// NotificationRepository 推送流水数据访问接口
type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
}

type notificationRepo struct {
	db *gorm.DB
}

// NewNotificationRepo 创建 NotificationRepository 实例
func NewNotificationRepo(db *gorm.DB) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Create(ctx context.Context, n *model.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}
