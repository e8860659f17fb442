package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/MATADOR666-spec/line-bot-project/internal/metrics"
	"github.com/MATADOR666-spec/line-bot-project/internal/model"
	"github.com/MATADOR666-spec/line-bot-project/internal/repository"
)

// NotifyService 推送通知并记录流水
// 投递失败只记录，不重试
type NotifyService interface {
	Push(ctx context.Context, userID, typ, content string, room *string) error
	// NotifyRoomTeachers 推送给教室内所有教师，返回成功/失败数
	NotifyRoomTeachers(ctx context.Context, room, typ, content string) (sent, failed int, err error)
}

type notifyService struct {
	repo      *repository.Repository
	messenger Messenger
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewNotifyService 创建 NotifyService 实例
func NewNotifyService(repo *repository.Repository, messenger Messenger, m *metrics.Metrics, logger *zap.Logger) NotifyService {
	return &notifyService{repo: repo, messenger: messenger, metrics: m, logger: logger}
}

func (s *notifyService) Push(ctx context.Context, userID, typ, content string, room *string) error {
	pushErr := s.messenger.Push(ctx, userID, content)

	n := &model.Notification{
		UserID:  userID,
		Type:    typ,
		Content: content,
		Status:  model.NotifySent,
		Room:    room,
	}
	if pushErr != nil {
		msg := pushErr.Error()
		n.Status = model.NotifyFailed
		n.Error = &msg
		s.logger.Warn("推送通知失败",
			zap.String("user_id", userID),
			zap.String("type", typ),
			zap.Error(pushErr),
		)
	}
	s.metrics.Notification(typ, n.Status)

	if err := s.repo.Notification.Create(ctx, n); err != nil {
		s.logger.Error("记录通知流水失败", zap.String("user_id", userID), zap.Error(err))
	}
	return pushErr
}

func (s *notifyService) NotifyRoomTeachers(ctx context.Context, room, typ, content string) (int, int, error) {
	teachers, err := s.repo.Profile.ListByRoomAndRole(ctx, room, model.RoleTeacher)
	if err != nil {
		s.logger.Error("查询教室教师失败", zap.String("room", room), zap.Error(err))
		return 0, 0, err
	}
	if len(teachers) == 0 {
		s.logger.Info("教室没有登记教师，跳过通知", zap.String("room", room), zap.String("type", typ))
	}

	sent, failed := 0, 0
	for _, t := range teachers {
		if err := s.Push(ctx, t.UserID, typ, content, &room); err != nil {
			failed++
			continue
		}
		sent++
	}
	return sent, failed, nil
}
