package model

// Holiday 节假日表，对应 holidays，命中当天不产生值班义务
type Holiday struct {
	HolidayDate string `gorm:"type:varchar(10);primaryKey"  json:"holiday_date"` // YYYY-MM-DD
	Name        string `gorm:"type:varchar(100);not null"   json:"name"`
	BaseModel
}

// TableName 指定表名
func (Holiday) TableName() string { return "holidays" }
