package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/MATADOR666-spec/line-bot-project/config"
	"github.com/MATADOR666-spec/line-bot-project/internal/dto"
)

const defaultJobTimeout = 2 * time.Minute

// Runner 定时任务的业务实现，由 service.DutyJobService 满足
type Runner interface {
	RunReminder(ctx context.Context, day string) (*dto.JobResult, error)
	RunEscalation(ctx context.Context, day string) (*dto.JobResult, error)
}

// Scheduler 按值班时区触发提醒与升级任务
type Scheduler struct {
	cron    *cron.Cron
	runner  Runner
	timeout time.Duration
	logger  *zap.Logger
}

// New 注册所有 cron 表达式；任一表达式无效即返回错误
func New(cfg *config.SchedulerConfig, loc *time.Location, runner Runner, logger *zap.Logger) (*Scheduler, error) {
	cronLogger := cron.PrintfLogger(zap.NewStdLog(logger.Named("cron")))
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		runner:  runner,
		timeout: cfg.JobTimeout,
		logger:  logger,
	}
	if s.timeout <= 0 {
		s.timeout = defaultJobTimeout
	}

	for _, spec := range cfg.ReminderSpecs {
		if _, err := s.cron.AddFunc(spec, s.job("reminder", runner.RunReminder)); err != nil {
			return nil, fmt.Errorf("无效的提醒表达式 %q: %w", spec, err)
		}
	}
	for _, spec := range cfg.EscalationSpecs {
		if _, err := s.cron.AddFunc(spec, s.job("escalation", runner.RunEscalation)); err != nil {
			return nil, fmt.Errorf("无效的升级表达式 %q: %w", spec, err)
		}
	}
	return s, nil
}

// job 包装单次执行：独立超时，错误只记录
func (s *Scheduler) job(name string, run func(context.Context, string) (*dto.JobResult, error)) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		start := time.Now()
		res, err := run(ctx, "")
		if err != nil {
			s.logger.Error("定时任务失败", zap.String("job", name), zap.Error(err))
			return
		}
		s.logger.Info("定时任务完成",
			zap.String("job", name),
			zap.String("date", res.Date),
			zap.Bool("skipped", res.Skipped),
			zap.Int("notified", res.Notified),
			zap.Int("failed", res.Failed),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// Entries 已注册的任务数
func (s *Scheduler) Entries() int { return len(s.cron.Entries()) }

// Start 后台启动调度
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("定时任务已启动", zap.Int("entries", s.Entries()))
}

// Stop 停止调度并等待运行中的任务结束，或 ctx 到期
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("等待定时任务结束超时")
	}
}
