package dto

// ── 值班记录 DTO ──

// DutyLogListRequest 值班记录查询
type DutyLogListRequest struct {
	PaginationRequest
	Date string `form:"date" binding:"omitempty,datetime=2006-01-02"`
	From string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To   string `form:"to"   binding:"omitempty,datetime=2006-01-02"`
	Room string `form:"room" binding:"omitempty,max=64"`
}

// DutyLogExportRequest 导出区间（闭区间，必填）
type DutyLogExportRequest struct {
	From string `form:"from" binding:"required,datetime=2006-01-02"`
	To   string `form:"to"   binding:"required,datetime=2006-01-02"`
	Room string `form:"room" binding:"omitempty,max=64"`
}

// DutyLogResponse 值班记录
type DutyLogResponse struct {
	ID          string   `json:"id"`
	UserID      string   `json:"user_id"`
	Room        string   `json:"room"`
	DutyDate    string   `json:"duty_date"`
	DutyWeekday string   `json:"duty_weekday"`
	RollNumber  string   `json:"roll_number"`
	Images      []string `json:"images"`
	SubmittedAt string   `json:"submitted_at"`
	Status      string   `json:"status"`
}
