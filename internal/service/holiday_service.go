package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/MATADOR666-spec/line-bot-project/internal/dto"
	"github.com/MATADOR666-spec/line-bot-project/internal/model"
	"github.com/MATADOR666-spec/line-bot-project/internal/repository"
)

// ── 节假日模块业务错误 ──

var (
	ErrHolidayNotFound = errors.New("节假日不存在")
	ErrHolidayExists   = errors.New("该日期已登记为节假日")
)

// HolidayService 节假日维护
type HolidayService interface {
	Create(ctx context.Context, req *dto.CreateHolidayRequest) (*dto.HolidayResponse, error)
	List(ctx context.Context, req *dto.HolidayListRequest) ([]dto.HolidayResponse, error)
	Delete(ctx context.Context, date string) error
}

type holidayService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewHolidayService 创建 HolidayService 实例
func NewHolidayService(repo *repository.Repository, logger *zap.Logger) HolidayService {
	return &holidayService{repo: repo, logger: logger}
}

func (s *holidayService) Create(ctx context.Context, req *dto.CreateHolidayRequest) (*dto.HolidayResponse, error) {
	exists, err := s.repo.Holiday.IsHoliday(ctx, req.Date)
	if err != nil {
		s.logger.Error("查询节假日失败", zap.Error(err))
		return nil, err
	}
	if exists {
		return nil, ErrHolidayExists
	}

	h := &model.Holiday{HolidayDate: req.Date, Name: req.Name}
	if err := s.repo.Holiday.Create(ctx, h); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrHolidayExists
		}
		s.logger.Error("创建节假日失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("节假日已登记", zap.String("date", h.HolidayDate), zap.String("name", h.Name))
	return &dto.HolidayResponse{Date: h.HolidayDate, Name: h.Name}, nil
}

func (s *holidayService) List(ctx context.Context, req *dto.HolidayListRequest) ([]dto.HolidayResponse, error) {
	holidays, err := s.repo.Holiday.List(ctx, req.From, req.To)
	if err != nil {
		s.logger.Error("查询节假日列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.HolidayResponse, 0, len(holidays))
	for _, h := range holidays {
		result = append(result, dto.HolidayResponse{Date: h.HolidayDate, Name: h.Name})
	}
	return result, nil
}

func (s *holidayService) Delete(ctx context.Context, date string) error {
	if err := s.repo.Holiday.Delete(ctx, date); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrHolidayNotFound
		}
		s.logger.Error("删除节假日失败", zap.Error(err))
		return err
	}
	s.logger.Info("节假日已删除", zap.String("date", date))
	return nil
}
