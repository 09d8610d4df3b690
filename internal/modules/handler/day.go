package handler

import (
	"net/http"

	"github.com/daystreak/api/internal/modules/model"
	"github.com/daystreak/api/internal/modules/serializer"
	"github.com/daystreak/api/internal/modules/service"
	"github.com/gin-gonic/gin"
)

type DayHandler struct {
	svc service.DayService
}

func NewDayHandler(s service.DayService) *DayHandler {
	return &DayHandler{svc: s}
}

type GetDayReq struct {
	Date string `form:"date" json:"date" binding:"required" example:"2024-01-02"`
}

// GetDay godoc
//
//	@Summary		Get day
//	@Description	Get the caller's Day for a date with its task list
//	@Tags			day
//	@Accept			json
//	@Produce		json
//	@Param			X-User-ID	header	string	true	"User ID"
//	@Param			date		query	string	true	"Calendar day"	example(2024-01-02)
//	@Success		200	{object}	serializer.Response{data=service.DayDetail}
//	@Router			/day [get]
func (h *DayHandler) GetDay(c *gin.Context) {
	req := GetDayReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	out, err := h.svc.Get(c.Request.Context(), userID(c), req.Date)
	if err != nil {
		c.JSON(serializer.FromError(err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: out})
}

type SetDayStatusReq struct {
	Date    string           `json:"date" binding:"required" example:"2024-01-02"`
	Status  *model.DayStatus `json:"status" swaggertype:"integer" example:"4"`
	Comment *string          `json:"comment" example:"Deep work all morning"`
}

// SetDayStatus godoc
//
//	@Summary		Set day status
//	@Description	Override the status of an existing Day. Accepts 0-4, a tier name, or the legacy productive/not productive values.
//	@Tags			day
//	@Accept			json
//	@Produce		json
//	@Param			X-User-ID	header	string					true	"User ID"
//	@Param			payload		body	handler.SetDayStatusReq	true	"SetDayStatus payload"
//	@Success		200	{object}	serializer.Response{data=model.Day}
//	@Router			/day [put]
func (h *DayHandler) SetDayStatus(c *gin.Context) {
	req := SetDayStatusReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	day, err := h.svc.SetStatus(c.Request.Context(), service.SetStatusInput{
		UserID:  userID(c),
		Date:    req.Date,
		Status:  req.Status,
		Comment: req.Comment,
	})
	if err != nil {
		c.JSON(serializer.FromError(err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: day})
}

type RecomputeDayReq struct {
	Date string `form:"date" json:"date" binding:"required" example:"2024-01-02"`
}

// RecomputeDay godoc
//
//	@Summary		Recompute day status
//	@Description	Derive the Day's status from its current tasks and store it with a refreshed streak
//	@Tags			day
//	@Accept			json
//	@Produce		json
//	@Param			X-User-ID	header	string					true	"User ID"
//	@Param			payload		body	handler.RecomputeDayReq	true	"RecomputeDay payload"
//	@Success		200	{object}	serializer.Response{data=model.Day}
//	@Router			/day/recompute [post]
func (h *DayHandler) RecomputeDay(c *gin.Context) {
	req := RecomputeDayReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	day, err := h.svc.Recompute(c.Request.Context(), userID(c), req.Date)
	if err != nil {
		c.JSON(serializer.FromError(err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: day})
}

type GetStreakReq struct {
	AsOf string `form:"as_of" json:"as_of" example:"2024-01-02"`
}

// GetStreak godoc
//
//	@Summary		Get current streak
//	@Description	Consecutive peak days ending at as_of (default today) or the day before it
//	@Tags			day
//	@Accept			json
//	@Produce		json
//	@Param			X-User-ID	header	string	true	"User ID"
//	@Param			as_of		query	string	false	"Reference day, defaults to today"
//	@Success		200	{object}	serializer.Response{data=service.StreakOutput}
//	@Router			/day/streak [get]
func (h *DayHandler) GetStreak(c *gin.Context) {
	req := GetStreakReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	out, err := h.svc.Streak(c.Request.Context(), userID(c), req.AsOf)
	if err != nil {
		c.JSON(serializer.FromError(err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: out})
}

// RecordDayStatus godoc
//
//	@Summary		Record day status
//	@Description	Set the status of a Day, creating it when absent, and return whether it counts as productive with the resulting streak
//	@Tags			day
//	@Accept			json
//	@Produce		json
//	@Param			X-User-ID	header	string					true	"User ID"
//	@Param			payload		body	handler.SetDayStatusReq	true	"RecordDayStatus payload"
//	@Success		200	{object}	serializer.Response{data=service.RecordStatusOutput}
//	@Router			/day/streak [put]
func (h *DayHandler) RecordDayStatus(c *gin.Context) {
	req := SetDayStatusReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	out, err := h.svc.RecordStatus(c.Request.Context(), service.SetStatusInput{
		UserID:  userID(c),
		Date:    req.Date,
		Status:  req.Status,
		Comment: req.Comment,
	})
	if err != nil {
		c.JSON(serializer.FromError(err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: out})
}
