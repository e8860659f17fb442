package dto

// JobRequest 手动触发定时任务；date 为空表示今天
type JobRequest struct {
	Date string `json:"date" binding:"omitempty,datetime=2006-01-02"`
}

// JobResult 定时任务执行结果
type JobResult struct {
	Job      string `json:"job"`
	Date     string `json:"date"`
	Skipped  bool   `json:"skipped"`
	Reason   string `json:"reason,omitempty"`
	Notified int    `json:"notified"`
	Failed   int    `json:"failed"`
}
