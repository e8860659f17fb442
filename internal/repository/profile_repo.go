package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/MATADOR666-spec/line-bot-project/internal/model"
	pkgerrors "github.com/MATADOR666-spec/line-bot-project/pkg/errors"
)

// ProfileRepository 用户资料数据访问接口
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*model.Profile, error)
	ListActive(ctx context.Context) ([]model.Profile, error)
	ListByRoomAndRole(ctx context.Context, room string, role model.Role) ([]model.Profile, error)
	// Upsert 整体替换资料，created_at 保持首次注册时的值
	Upsert(ctx context.Context, p *model.Profile) error
}

type profileRepo struct {
	db *gorm.DB
}

// NewProfileRepo 创建 ProfileRepository 实例
func NewProfileRepo(db *gorm.DB) ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) GetByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	var p model.Profile
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepo) ListActive(ctx context.Context) ([]model.Profile, error) {
	var profiles []model.Profile
	err := r.db.WithContext(ctx).
		Where("status = ?", model.ProfileActive).
		Order("room ASC, user_id ASC").
		Find(&profiles).Error
	return profiles, err
}

func (r *profileRepo) ListByRoomAndRole(ctx context.Context, room string, role model.Role) ([]model.Profile, error) {
	var profiles []model.Profile
	err := r.db.WithContext(ctx).
		Where("room = ? AND role = ? AND status = ?", room, role, model.ProfileActive).
		Order("user_id ASC").
		Find(&profiles).Error
	return profiles, err
}

func (r *profileRepo) Upsert(ctx context.Context, p *model.Profile) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"display_name", "role", "room", "roll_number", "duty_weekday",
				"registered_on", "status", "updated_at",
			}),
		}).
		Create(p).Error
}
