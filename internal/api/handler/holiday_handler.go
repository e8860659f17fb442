package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MATADOR666-spec/line-bot-project/internal/dto"
	"github.com/MATADOR666-spec/line-bot-project/internal/model"
	"github.com/MATADOR666-spec/line-bot-project/internal/service"
	"github.com/MATADOR666-spec/line-bot-project/pkg/response"
)

// HolidayHandler 节假日维护 HTTP 处理器
type HolidayHandler struct {
	holidaySvc service.HolidayService
	logger     *zap.Logger
}

// NewHolidayHandler 创建 HolidayHandler
func NewHolidayHandler(holidaySvc service.HolidayService, logger *zap.Logger) *HolidayHandler {
	return &HolidayHandler{holidaySvc: holidaySvc, logger: logger}
}

// List 节假日列表
// GET /api/v1/admin/holidays?from=&to=
func (h *HolidayHandler) List(c *gin.Context) {
	var req dto.HolidayListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "参数校验失败")
		return
	}

	result, err := h.holidaySvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// Create 登记节假日
// POST /api/v1/admin/holidays
func (h *HolidayHandler) Create(c *gin.Context) {
	operator, ok := MustGetOperator(c)
	if !ok {
		return
	}

	var req dto.CreateHolidayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeHolidayInvalid, "日期格式应为 YYYY-MM-DD")
		return
	}

	result, err := h.holidaySvc.Create(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrHolidayExists) {
			response.Error(c, http.StatusConflict, response.CodeHolidayExists, "该日期已登记为节假日")
			return
		}
		response.InternalError(c)
		return
	}

	h.logger.Info("运营登记节假日", zap.String("operator", operator), zap.String("date", result.Date))
	response.Created(c, result)
}

// Delete 删除节假日
// DELETE /api/v1/admin/holidays/:date
func (h *HolidayHandler) Delete(c *gin.Context) {
	date := c.Param("date")
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		response.BadRequest(c, response.CodeHolidayInvalid, "日期格式应为 YYYY-MM-DD")
		return
	}

	if err := h.holidaySvc.Delete(c.Request.Context(), date); err != nil {
		if errors.Is(err, service.ErrHolidayNotFound) {
			response.NotFound(c, response.CodeHolidayNotFound, "节假日不存在")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, nil)
}
