package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/MATADOR666-spec/line-bot-project/internal/dto"
	"github.com/MATADOR666-spec/line-bot-project/internal/service"
	"github.com/MATADOR666-spec/line-bot-project/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DutyLogHandler 值班记录查询与导出
type DutyLogHandler struct {
	dutyLogSvc service.DutyLogService
	exportSvc  service.ExportService
}

// NewDutyLogHandler 创建 DutyLogHandler
func NewDutyLogHandler(dutyLogSvc service.DutyLogService, exportSvc service.ExportService) *DutyLogHandler {
	return &DutyLogHandler{dutyLogSvc: dutyLogSvc, exportSvc: exportSvc}
}

// List 值班记录分页查询
// GET /api/v1/admin/duty-logs?date=&from=&to=&room=&page=&page_size=
func (h *DutyLogHandler) List(c *gin.Context) {
	var req dto.DutyLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "参数校验失败")
		return
	}

	list, total, err := h.dutyLogSvc.List(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDateRange) {
			response.BadRequest(c, response.CodeInvalidParams, "开始日期不能晚于结束日期")
			return
		}
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Export 导出 Excel
// GET /api/v1/admin/duty-logs/export?from=&to=&room=
func (h *DutyLogHandler) Export(c *gin.Context) {
	var req dto.DutyLogExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "from 与 to 必填，格式为 YYYY-MM-DD")
		return
	}

	buf, filename, err := h.exportSvc.ExportDutyLogs(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidDateRange):
			response.BadRequest(c, response.CodeInvalidParams, "开始日期不能晚于结束日期")
		case errors.Is(err, service.ErrExportEmpty):
			response.NotFound(c, response.CodeExportEmpty, "所选区间内没有值班记录")
		default:
			response.InternalError(c)
		}
		return
	}

	// 设置下载响应头
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
