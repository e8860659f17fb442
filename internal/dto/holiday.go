package dto

// ── 节假日 DTO ──

// CreateHolidayRequest 新增节假日
type CreateHolidayRequest struct {
	Date string `json:"date" binding:"required,datetime=2006-01-02"`
	Name string `json:"name" binding:"omitempty,max=100"`
}

// HolidayListRequest 列表查询；from/to 均为可选闭区间
type HolidayListRequest struct {
	From string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To   string `form:"to"   binding:"omitempty,datetime=2006-01-02"`
}

// HolidayResponse 节假日
type HolidayResponse struct {
	Date string `json:"date"`
	Name string `json:"name,omitempty"`
}
