package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/MATADOR666-spec/line-bot-project/internal/dto"
	"github.com/MATADOR666-spec/line-bot-project/internal/model"
	"github.com/MATADOR666-spec/line-bot-project/internal/repository"
)

// ── 值班记录模块业务错误 ──

var (
	ErrInvalidDateRange = errors.New("开始日期不能晚于结束日期")
)

// DutyLogService 值班记录查询
type DutyLogService interface {
	List(ctx context.Context, req *dto.DutyLogListRequest) ([]dto.DutyLogResponse, int64, error)
}

type dutyLogService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewDutyLogService 创建 DutyLogService 实例
func NewDutyLogService(repo *repository.Repository, logger *zap.Logger) DutyLogService {
	return &dutyLogService{repo: repo, logger: logger}
}

func (s *dutyLogService) List(ctx context.Context, req *dto.DutyLogListRequest) ([]dto.DutyLogResponse, int64, error) {
	if req.From != "" && req.To != "" && req.From > req.To {
		return nil, 0, ErrInvalidDateRange
	}

	filter := repository.DutyLogFilter{Date: req.Date, From: req.From, To: req.To, Room: req.Room}
	logs, total, err := s.repo.DutyLog.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询值班记录失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.DutyLogResponse, 0, len(logs))
	for i := range logs {
		result = append(result, toDutyLogResponse(&logs[i]))
	}
	return result, total, nil
}

func toDutyLogResponse(l *model.DutyLog) dto.DutyLogResponse {
	return dto.DutyLogResponse{
		ID:          l.DutyLogID,
		UserID:      l.UserID,
		Room:        l.Room,
		DutyDate:    l.DutyDate,
		DutyWeekday: l.DutyWeekday,
		RollNumber:  l.RollNumber,
		Images:      l.ImageURLs(),
		SubmittedAt: l.SubmittedAt.Format(time.RFC3339),
		Status:      l.Status,
	}
}
