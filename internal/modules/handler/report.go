package handler

import (
	"net/http"

	"github.com/daystreak/api/internal/modules/model"
	"github.com/daystreak/api/internal/modules/serializer"
	"github.com/daystreak/api/internal/modules/service"
	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	svc service.ReportService
}

func NewReportHandler(s service.ReportService) *ReportHandler {
	return &ReportHandler{svc: s}
}

type ChartRangeReq struct {
	StartDate string `form:"start_date" json:"start_date" binding:"required" example:"2024-01-01"`
	EndDate   string `form:"end_date" json:"end_date" binding:"required" example:"2024-01-31"`
	Status    string `form:"status" json:"status" example:"peak"`
}

// LineChart godoc
//
//	@Summary		Productivity line chart
//	@Description	One entry per calendar day in the inclusive range, with a null status_of_day where no Day exists
//	@Tags			report
//	@Accept			json
//	@Produce		json
//	@Param			X-User-ID	header	string	true	"User ID"
//	@Param			start_date	query	string	true	"First day"	example(2024-01-01)
//	@Param			end_date	query	string	true	"Last day"	example(2024-01-31)
//	@Success		200	{object}	serializer.Response{data=[]service.LineChartEntry}
//	@Router			/day/productivity/status/line-chart [get]
func (h *ReportHandler) LineChart(c *gin.Context) {
	req := ChartRangeReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	out, err := h.svc.LineChart(c.Request.Context(), userID(c), req.StartDate, req.EndDate)
	if err != nil {
		c.JSON(serializer.FromError(err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: out})
}

// PieChart godoc
//
//	@Summary		Productivity pie chart
//	@Description	Weekday distribution of Days with the given status in the inclusive range
//	@Tags			report
//	@Accept			json
//	@Produce		json
//	@Param			X-User-ID	header	string	true	"User ID"
//	@Param			start_date	query	string	true	"First day"	example(2024-01-01)
//	@Param			end_date	query	string	true	"Last day"	example(2024-01-31)
//	@Param			status		query	string	true	"Status to count, 0-4 or a tier name"	example(peak)
//	@Success		200	{object}	serializer.Response{data=service.PieChart}
//	@Router			/day/productivity/status/pie-chart [get]
func (h *ReportHandler) PieChart(c *gin.Context) {
	req := ChartRangeReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	var status *model.DayStatus
	if req.Status != "" {
		s, err := model.ParseDayStatus(req.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
			return
		}
		status = &s
	}

	out, err := h.svc.PieChart(c.Request.Context(), userID(c), req.StartDate, req.EndDate, status)
	if err != nil {
		c.JSON(serializer.FromError(err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: out})
}
