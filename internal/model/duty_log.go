package model

import (
	"time"

	"gorm.io/gorm"
)

// DutyLogSubmitted 值班证据已提交
const DutyLogSubmitted = "submitted"

// DutyLog 值班证据记录表，对应 duty_logs
// (room, duty_date) 唯一：每间教室每天最多一条
type DutyLog struct {
	DutyLogID   string    `gorm:"type:varchar(36);primaryKey"                                 json:"duty_log_id"`
	UserID      string    `gorm:"type:varchar(64);not null"                                   json:"user_id"`
	Room        string    `gorm:"type:varchar(50);not null;uniqueIndex:uq_duty_logs_room_date" json:"room"`
	DutyDate    string    `gorm:"type:varchar(10);not null;uniqueIndex:uq_duty_logs_room_date" json:"duty_date"` // YYYY-MM-DD
	DutyWeekday string    `gorm:"type:varchar(30);not null"                                   json:"duty_weekday"`
	RollNumber  string    `gorm:"type:varchar(20);not null"                                   json:"roll_number"`
	ImageURL1   string    `gorm:"column:image_url1;type:text;not null"                       json:"image_url_1"`
	ImageURL2   string    `gorm:"column:image_url2;type:text;not null"                       json:"image_url_2"`
	ImageURL3   string    `gorm:"column:image_url3;type:text;not null"                       json:"image_url_3"`
	SubmittedAt time.Time `gorm:"not null"                                                    json:"submitted_at"`
	Status      string    `gorm:"type:varchar(20);not null;default:'submitted'"               json:"status"`
	BaseModel
}

// TableName 指定表名
func (DutyLog) TableName() string { return "duty_logs" }

// BeforeCreate 生成主键
func (l *DutyLog) BeforeCreate(tx *gorm.DB) error {
	ensureID(&l.DutyLogID)
	return nil
}

// ImageURLs 按顺序返回三张证据图片
func (l *DutyLog) ImageURLs() []string {
	return []string{l.ImageURL1, l.ImageURL2, l.ImageURL3}
}

// [自证通过] internal/model/duty_log.go
