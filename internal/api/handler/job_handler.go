package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MATADOR666-spec/line-bot-project/internal/dto"
	"github.com/MATADOR666-spec/line-bot-project/internal/service"
	"github.com/MATADOR666-spec/line-bot-project/pkg/response"
)

// JobHandler 手动触发定时任务
type JobHandler struct {
	jobSvc service.DutyJobService
	logger *zap.Logger
}

// NewJobHandler 创建 JobHandler
func NewJobHandler(jobSvc service.DutyJobService, logger *zap.Logger) *JobHandler {
	return &JobHandler{jobSvc: jobSvc, logger: logger}
}

// Reminder 触发值班提醒
// POST /api/v1/admin/jobs/reminder
func (h *JobHandler) Reminder(c *gin.Context) {
	h.run(c, service.JobReminder, h.jobSvc.RunReminder)
}

// Escalation 触发未提交升级
// POST /api/v1/admin/jobs/escalation
func (h *JobHandler) Escalation(c *gin.Context) {
	h.run(c, service.JobEscalation, h.jobSvc.RunEscalation)
}

func (h *JobHandler) run(c *gin.Context, job string, fn func(context.Context, string) (*dto.JobResult, error)) {
	operator, ok := MustGetOperator(c)
	if !ok {
		return
	}

	// 请求体可选
	var req dto.JobRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, response.CodeJobInvalidDate, "日期格式应为 YYYY-MM-DD")
			return
		}
	}

	result, err := fn(c.Request.Context(), req.Date)
	if err != nil {
		if errors.Is(err, service.ErrInvalidJobDate) {
			response.BadRequest(c, response.CodeJobInvalidDate, "日期格式应为 YYYY-MM-DD")
			return
		}
		response.InternalError(c)
		return
	}

	h.logger.Info("运营手动触发任务", zap.String("operator", operator), zap.String("job", job), zap.String("date", result.Date))
	response.OK(c, result)
}
