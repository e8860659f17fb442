package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/MATADOR666-spec/line-bot-project/internal/model"
)

// HolidayRepository 节假日数据访问接口
type HolidayRepository interface {
	IsHoliday(ctx context.Context, date string) (bool, error)
	List(ctx context.Context, from, to string) ([]model.Holiday, error)
	Create(ctx context.Context, h *model.Holiday) error
	// Delete 日期不存在时返回 gorm.ErrRecordNotFound
	Delete(ctx context.Context, date string) error
}

type holidayRepo struct {
	db *gorm.DB
}

// NewHolidayRepo 创建 HolidayRepository 实例
func NewHolidayRepo(db *gorm.DB) HolidayRepository {
	return &holidayRepo{db: db}
}

func (r *holidayRepo) IsHoliday(ctx context.Context, date string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Holiday{}).
		Where("holiday_date = ?", date).
		Count(&count).Error
	return count > 0, err
}

func (r *holidayRepo) List(ctx context.Context, from, to string) ([]model.Holiday, error) {
	var holidays []model.Holiday
	db := r.db.WithContext(ctx)
	if from != "" {
		db = db.Where("holiday_date >= ?", from)
	}
	if to != "" {
		db = db.Where("holiday_date <= ?", to)
	}
	err := db.Order("holiday_date ASC").Find(&holidays).Error
	return holidays, err
}

func (r *holidayRepo) Create(ctx context.Context, h *model.Holiday) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *holidayRepo) Delete(ctx context.Context, date string) error {
	result := r.db.WithContext(ctx).
		Where("holiday_date = ?", date).
		Delete(&model.Holiday{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
