package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/MATADOR666-spec/line-bot-project/internal/model"
	pkgerrors "github.com/MATADOR666-spec/line-bot-project/pkg/errors"
)

// DutyLogFilter 值班记录查询条件；空字段不参与过滤
type DutyLogFilter struct {
	Date string
	From string // 闭区间
	To   string
	Room string
}

// DutyLogRepository 值班记录数据访问接口
type DutyLogRepository interface {
	// Create 同 (room, duty_date) 已存在时返回 pkgerrors.ErrDutyLogExists
	Create(ctx context.Context, log *model.DutyLog) error
	ExistsByRoomAndDate(ctx context.Context, room, date string) (bool, error)
	List(ctx context.Context, f DutyLogFilter, offset, limit int) ([]model.DutyLog, int64, error)
	ListAll(ctx context.Context, f DutyLogFilter) ([]model.DutyLog, error)
}

type dutyLogRepo struct {
	db *gorm.DB
}

// NewDutyLogRepo 创建 DutyLogRepository 实例
func NewDutyLogRepo(db *gorm.DB) DutyLogRepository {
	return &dutyLogRepo{db: db}
}

func (r *dutyLogRepo) Create(ctx context.Context, log *model.DutyLog) error {
	err := r.db.WithContext(ctx).Create(log).Error
	if err != nil && isDuplicateKey(err) {
		return pkgerrors.ErrDutyLogExists
	}
	return err
}

func (r *dutyLogRepo) ExistsByRoomAndDate(ctx context.Context, room, date string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.DutyLog{}).
		Where("room = ? AND duty_date = ?", room, date).
		Count(&count).Error
	return count > 0, err
}

func (r *dutyLogRepo) List(ctx context.Context, f DutyLogFilter, offset, limit int) ([]model.DutyLog, int64, error) {
	var logs []model.DutyLog
	var total int64

	db := r.applyFilter(r.db.WithContext(ctx).Model(&model.DutyLog{}), f)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("duty_date DESC, room ASC").
		Offset(offset).
		Limit(limit).
		Find(&logs).Error
	return logs, total, err
}

func (r *dutyLogRepo) ListAll(ctx context.Context, f DutyLogFilter) ([]model.DutyLog, error) {
	var logs []model.DutyLog
	err := r.applyFilter(r.db.WithContext(ctx), f).
		Order("duty_date ASC, room ASC").
		Find(&logs).Error
	return logs, err
}

func (r *dutyLogRepo) applyFilter(db *gorm.DB, f DutyLogFilter) *gorm.DB {
	if f.Date != "" {
		db = db.Where("duty_date = ?", f.Date)
	}
	if f.From != "" {
		db = db.Where("duty_date >= ?", f.From)
	}
	if f.To != "" {
		db = db.Where("duty_date <= ?", f.To)
	}
	if f.Room != "" {
		db = db.Where("room = ?", f.Room)
	}
	return db
}
