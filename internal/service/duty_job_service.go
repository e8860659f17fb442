package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/MATADOR666-spec/line-bot-project/internal/dto"
	"github.com/MATADOR666-spec/line-bot-project/internal/metrics"
	"github.com/MATADOR666-spec/line-bot-project/internal/model"
	"github.com/MATADOR666-spec/line-bot-project/internal/repository"
	"github.com/MATADOR666-spec/line-bot-project/internal/workflow"
)

// ── 定时任务业务错误 ──

var (
	ErrInvalidJobDate = errors.New("日期格式应为 YYYY-MM-DD")
)

const (
	JobReminder   = "reminder"
	JobEscalation = "escalation"
)

// 跳过原因
const (
	SkipWeekend = "weekend"
	SkipHoliday = "holiday"
)

// DutyJobService 每日提醒与未提交升级
// 两个任务只读已提交数据并发送通知，不触碰会话
type DutyJobService interface {
	// RunReminder 向当天值班的用户推送提醒；day 为空表示今天
	RunReminder(ctx context.Context, day string) (*dto.JobResult, error)
	// RunEscalation 当天未提交的教室向其教师告警，每教室一次
	RunEscalation(ctx context.Context, day string) (*dto.JobResult, error)
}

type dutyJobService struct {
	repo    *repository.Repository
	notify  NotifyService
	window  workflow.Window
	now     func() time.Time
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewDutyJobService 创建 DutyJobService 实例
func NewDutyJobService(
	repo *repository.Repository,
	notify NotifyService,
	window workflow.Window,
	now func() time.Time,
	m *metrics.Metrics,
	logger *zap.Logger,
) DutyJobService {
	return &dutyJobService{
		repo:    repo,
		notify:  notify,
		window:  window,
		now:     now,
		metrics: m,
		logger:  logger,
	}
}

// ────────────────────── Reminder ──────────────────────

func (s *dutyJobService) RunReminder(ctx context.Context, day string) (*dto.JobResult, error) {
	result, today, dutyProfiles, err := s.prepare(ctx, JobReminder, day)
	if err != nil || result.Skipped {
		return result, err
	}

	msg := workflow.MsgReminder(s.window)
	for i := range dutyProfiles {
		p := &dutyProfiles[i]
		if err := s.notify.Push(ctx, p.UserID, model.NotifyDutyReminder, msg, &p.Room); err != nil {
			result.Failed++
			continue
		}
		result.Notified++
	}

	s.finish(result)
	s.logger.Info("值班提醒完成",
		zap.String("date", workflow.DateKey(today)),
		zap.Int("notified", result.Notified),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

// ────────────────────── Escalation ──────────────────────

func (s *dutyJobService) RunEscalation(ctx context.Context, day string) (*dto.JobResult, error) {
	result, today, dutyProfiles, err := s.prepare(ctx, JobEscalation, day)
	if err != nil || result.Skipped {
		return result, err
	}
	date := workflow.DateKey(today)

	// 同一教室多名值班者只告警一次
	seen := make(map[string]bool)
	for _, p := range dutyProfiles {
		if seen[p.Room] {
			continue
		}
		seen[p.Room] = true

		exists, err := s.repo.DutyLog.ExistsByRoomAndDate(ctx, p.Room, date)
		if err != nil {
			s.logger.Error("查询值班记录失败", zap.String("room", p.Room), zap.Error(err))
			result.Failed++
			continue
		}
		if exists {
			continue
		}

		sent, failed, err := s.notify.NotifyRoomTeachers(ctx, p.Room, model.NotifyDutyMissing, workflow.MsgMissingEvidence(p.Room, date))
		if err != nil {
			result.Failed++
			continue
		}
		result.Notified += sent
		result.Failed += failed
	}

	s.finish(result)
	s.logger.Info("未提交升级完成",
		zap.String("date", date),
		zap.Int("rooms", len(seen)),
		zap.Int("notified", result.Notified),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

// ────────────────────── 辅助 ──────────────────────

// prepare 解析日期并执行周末/节假日门，返回当天值班的资料
func (s *dutyJobService) prepare(ctx context.Context, job, day string) (*dto.JobResult, time.Time, []model.Profile, error) {
	today, err := s.resolveDay(day)
	if err != nil {
		return nil, time.Time{}, nil, err
	}
	date := workflow.DateKey(today)
	result := &dto.JobResult{Job: job, Date: date}

	if workflow.IsWeekend(today) {
		return s.skip(result, SkipWeekend), today, nil, nil
	}
	holiday, err := s.repo.Holiday.IsHoliday(ctx, date)
	if err != nil {
		s.logger.Error("查询节假日失败", zap.String("job", job), zap.Error(err))
		s.metrics.JobRun(job, "error")
		return nil, today, nil, err
	}
	if holiday {
		return s.skip(result, SkipHoliday), today, nil, nil
	}

	profiles, err := s.repo.Profile.ListActive(ctx)
	if err != nil {
		s.logger.Error("加载用户资料失败", zap.String("job", job), zap.Error(err))
		s.metrics.JobRun(job, "error")
		return nil, today, nil, err
	}

	var due []model.Profile
	for _, p := range profiles {
		if workflow.SameWeekday(p.DutyWeekday, today.Weekday()) {
			due = append(due, p)
		}
	}
	return result, today, due, nil
}

func (s *dutyJobService) resolveDay(day string) (time.Time, error) {
	now := s.now()
	if day == "" {
		return now, nil
	}
	t, err := time.ParseInLocation(model.DateLayout, day, now.Location())
	if err != nil {
		return time.Time{}, ErrInvalidJobDate
	}
	return t, nil
}

func (s *dutyJobService) skip(result *dto.JobResult, reason string) *dto.JobResult {
	result.Skipped = true
	result.Reason = reason
	s.metrics.JobRun(result.Job, "skipped")
	s.logger.Info("定时任务跳过", zap.String("job", result.Job), zap.String("date", result.Date), zap.String("reason", reason))
	return result
}

func (s *dutyJobService) finish(result *dto.JobResult) {
	status := "ok"
	if result.Failed > 0 {
		status = "partial"
	}
	s.metrics.JobRun(result.Job, status)
}
