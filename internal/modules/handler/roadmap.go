package handler

import (
	"net/http"

	"github.com/daystreak/api/internal/modules/serializer"
	"github.com/daystreak/api/internal/modules/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RoadmapHandler struct {
	svc service.RoadmapService
}

func NewRoadmapHandler(s service.RoadmapService) *RoadmapHandler {
	return &RoadmapHandler{svc: s}
}

type GenerateRoadmapReq struct {
	Title           string  `json:"title" binding:"required" example:"Learn Go"`
	SkillLevel      *int    `json:"skill_level" binding:"required" example:"1"`
	MonthsAllocated int     `json:"months_allocated" binding:"required" example:"3"`
	HoursPerDay     float64 `json:"hours_per_day" binding:"required" example:"2"`
	StartDate       string  `json:"start_date" binding:"required" example:"2024-01-01"`
}

// GenerateRoadmap godoc
//
//	@Summary		Generate roadmap
//	@Description	Ask the AI for a day-by-day plan. Nothing is stored except a short-lived draft.
//	@Tags			roadmap
//	@Accept			json
//	@Produce		json
//	@Param			X-User-ID	header	string						true	"User ID"
//	@Param			payload		body	handler.GenerateRoadmapReq	true	"GenerateRoadmap payload"
//	@Success		200	{object}	serializer.Response{data=service.RoadmapDraft}
//	@Failure		502	{object}	serializer.Response
//	@Router			/roadmaps/generate [post]
func (h *RoadmapHandler) GenerateRoadmap(c *gin.Context) {
	req := GenerateRoadmapReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	out, err := h.svc.Generate(c.Request.Context(), service.GenerateRoadmapInput{
		UserID:          userID(c),
		Title:           req.Title,
		MonthsAllocated: req.MonthsAllocated,
		HoursPerDay:     req.HoursPerDay,
		StartDate:       req.StartDate,
		SkillLevel:      req.SkillLevel,
	})
	if err != nil {
		c.JSON(serializer.FromError(err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: out})
}

type ConfirmRoadmapReq struct {
	DraftID         string   `json:"draft_id" example:"rd_3Jc9kq0WbHn2xYtLmPa7Qe"`
	Title           string   `json:"title" example:"Learn Go"`
	SkillLevel      *int     `json:"skill_level" example:"1"`
	MonthsAllocated *int     `json:"months_allocated" example:"3"`
	HoursPerDay     *float64 `json:"hours_per_day" example:"2"`
	AIResponse      any      `json:"ai_response" swaggertype:"object"`
}

// ConfirmRoadmap godoc
//
//	@Summary		Confirm roadmap
//	@Description	Store a roadmap and turn its plan into dated tasks. Fields left empty are taken from the draft when draft_id is given.
//	@Tags			roadmap
//	@Accept			json
//	@Produce		json
//	@Param			X-User-ID	header	string						true	"User ID"
//	@Param			payload		body	handler.ConfirmRoadmapReq	true	"ConfirmRoadmap payload"
//	@Success		201	{object}	serializer.Response{data=service.ConfirmRoadmapOutput}
//	@Failure		502	{object}	serializer.Response
//	@Router			/roadmaps [post]
func (h *RoadmapHandler) ConfirmRoadmap(c *gin.Context) {
	req := ConfirmRoadmapReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	out, err := h.svc.Confirm(c.Request.Context(), service.ConfirmRoadmapInput{
		UserID:          userID(c),
		DraftID:         req.DraftID,
		Title:           req.Title,
		SkillLevel:      req.SkillLevel,
		MonthsAllocated: req.MonthsAllocated,
		HoursPerDay:     req.HoursPerDay,
		AIResponse:      req.AIResponse,
	})
	if err != nil {
		c.JSON(serializer.FromError(err))
		return
	}

	c.JSON(http.StatusCreated, serializer.Response{Data: out})
}

type ListRoadmapsReq struct {
	Limit  int    `form:"limit,default=20" json:"limit" binding:"required,min=1,max=200" example:"20"`
	Cursor string `form:"cursor" json:"cursor" example:"MTcwNDA2NzIwMDAwMDAwMDAwMHwxMjNlNDU2Ny1lODliLTEyZDMtYTQ1Ni00MjY2MTQxNzQwMDA="`
}

// ListRoadmaps godoc
//
//	@Summary		List roadmaps
//	@Description	List the caller's roadmaps, newest first
//	@Tags			roadmap
//	@Accept			json
//	@Produce		json
//	@Param			X-User-ID	header	string	true	"User ID"
//	@Param			limit		query	integer	false	"Limit of roadmaps to return, default 20. Max 200."
//	@Param			cursor		query	string	false	"Cursor for pagination. Use the cursor from the previous response to get the next page."
//	@Success		200	{object}	serializer.Response{data=service.ListRoadmapsOutput}
//	@Router			/roadmaps [get]
func (h *RoadmapHandler) ListRoadmaps(c *gin.Context) {
	req := ListRoadmapsReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	out, err := h.svc.List(c.Request.Context(), service.ListRoadmapsInput{
		UserID: userID(c),
		Limit:  req.Limit,
		Cursor: req.Cursor,
	})
	if err != nil {
		c.JSON(serializer.FromError(err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: out})
}

// GetRoadmap godoc
//
//	@Summary		Get roadmap
//	@Description	Get a roadmap with the ids of the tasks it owns
//	@Tags			roadmap
//	@Accept			json
//	@Produce		json
//	@Param			X-User-ID	header	string	true	"User ID"
//	@Param			roadmap_id	path	string	true	"Roadmap ID"	Format(uuid)
//	@Success		200	{object}	serializer.Response{data=model.Roadmap}
//	@Router			/roadmaps/{roadmap_id} [get]
func (h *RoadmapHandler) GetRoadmap(c *gin.Context) {
	roadmapID, err := uuid.Parse(c.Param("roadmap_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	rm, err := h.svc.Get(c.Request.Context(), userID(c), roadmapID)
	if err != nil {
		c.JSON(serializer.FromError(err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: rm})
}

type UpdateRoadmapReq struct {
	Title           *string  `json:"title" example:"Learn Go in depth"`
	SkillLevel      *int     `json:"skill_level" example:"2"`
	MonthsAllocated *int     `json:"months_allocated" example:"4"`
	HoursPerDay     *float64 `json:"hours_per_day" example:"1.5"`
	AIResponse      any      `json:"ai_response" swaggertype:"object"`
}

// UpdateRoadmap godoc
//
//	@Summary		Update roadmap
//	@Description	Patch roadmap metadata. Stored tasks are not regenerated.
//	@Tags			roadmap
//	@Accept			json
//	@Produce		json
//	@Param			X-User-ID	header	string					true	"User ID"
//	@Param			roadmap_id	path	string					true	"Roadmap ID"	Format(uuid)
//	@Param			payload		body	handler.UpdateRoadmapReq	true	"UpdateRoadmap payload"
//	@Success		200	{object}	serializer.Response{data=model.Roadmap}
//	@Router			/roadmaps/{roadmap_id} [put]
func (h *RoadmapHandler) UpdateRoadmap(c *gin.Context) {
	roadmapID, err := uuid.Parse(c.Param("roadmap_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	req := UpdateRoadmapReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	rm, err := h.svc.Update(c.Request.Context(), service.UpdateRoadmapInput{
		UserID:          userID(c),
		RoadmapID:       roadmapID,
		Title:           req.Title,
		SkillLevel:      req.SkillLevel,
		MonthsAllocated: req.MonthsAllocated,
		HoursPerDay:     req.HoursPerDay,
		AIResponse:      req.AIResponse,
	})
	if err != nil {
		c.JSON(serializer.FromError(err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: rm})
}

type DeleteRoadmapResp struct {
	DeletedTasks int `json:"deleted_tasks"`
}

// DeleteRoadmap godoc
//
//	@Summary		Delete roadmap
//	@Description	Delete a roadmap and every task it owns
//	@Tags			roadmap
//	@Accept			json
//	@Produce		json
//	@Param			X-User-ID	header	string	true	"User ID"
//	@Param			roadmap_id	path	string	true	"Roadmap ID"	Format(uuid)
//	@Success		200	{object}	serializer.Response{data=handler.DeleteRoadmapResp}
//	@Router			/roadmaps/{roadmap_id} [delete]
func (h *RoadmapHandler) DeleteRoadmap(c *gin.Context) {
	roadmapID, err := uuid.Parse(c.Param("roadmap_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	n, err := h.svc.Delete(c.Request.Context(), userID(c), roadmapID)
	if err != nil {
		c.JSON(serializer.FromError(err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: DeleteRoadmapResp{DeletedTasks: n}})
}
