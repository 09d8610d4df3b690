package handler

import (
	"net/http"

	"github.com/daystreak/api/internal/modules/serializer"
	"github.com/daystreak/api/internal/modules/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TaskHandler struct {
	svc service.TaskService
}

func NewTaskHandler(s service.TaskService) *TaskHandler {
	return &TaskHandler{svc: s}
}

// userID returns the caller identity placed on the context by the identity middleware.
func userID(c *gin.Context) string {
	return c.GetString("user_id")
}

type ListTasksReq struct {
	Date string `form:"date" json:"date" binding:"required" example:"2024-01-02"`
}

// ListTasks godoc
//
//	@Summary		List tasks of a day
//	@Description	List the caller's tasks dated on the given day together with the status they derive to
//	@Tags			task
//	@Accept			json
//	@Produce		json
//	@Param			X-User-ID	header	string	true	"User ID"
//	@Param			date		query	string	true	"Calendar day, YYYY-MM-DD or RFC3339"	example(2024-01-02)
//	@Success		200	{object}	serializer.Response{data=service.DayTasks}
//	@Router			/tasks [get]
func (h *TaskHandler) ListTasks(c *gin.Context) {
	req := ListTasksReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	out, err := h.svc.ListByDate(c.Request.Context(), userID(c), req.Date)
	if err != nil {
		c.JSON(serializer.FromError(err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: out})
}

type CreateTaskReq struct {
	Title       string  `form:"title" json:"title" binding:"required" example:"Read chapter 3"`
	Description string  `form:"description" json:"description" example:"Focus on the exercises"`
	Status      string  `form:"status" json:"status" example:"pending"`
	Category    string  `form:"category" json:"category" example:"study"`
	SubCategory *string `form:"sub_category" json:"sub_category" example:"Learn Go"`
	TaskDate    string  `form:"task_date" json:"task_date" binding:"required" example:"2024-01-02"`
}

// CreateTask godoc
//
//	@Summary		Create task
//	@Description	Create a task and add it to the Day of its date, creating the Day when needed
//	@Tags			task
//	@Accept			json
//	@Produce		json
//	@Param			X-User-ID	header	string					true	"User ID"
//	@Param			payload		body	handler.CreateTaskReq	true	"CreateTask payload"
//	@Success		201	{object}	serializer.Response{data=service.TaskResult}
//	@Router			/tasks [post]
func (h *TaskHandler) CreateTask(c *gin.Context) {
	req := CreateTaskReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	out, err := h.svc.Create(c.Request.Context(), service.CreateTaskInput{
		UserID:      userID(c),
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Category:    req.Category,
		SubCategory: req.SubCategory,
		TaskDate:    req.TaskDate,
	})
	if err != nil {
		c.JSON(serializer.FromError(err))
		return
	}

	c.JSON(http.StatusCreated, serializer.Response{Data: out})
}

type UpdateTaskReq struct {
	Title       *string `form:"title" json:"title" example:"Read chapter 4"`
	Description *string `form:"description" json:"description"`
	Status      *string `form:"status" json:"status" example:"done"`
	Category    *string `form:"category" json:"category"`
	SubCategory *string `form:"sub_category" json:"sub_category"`
	TaskDate    *string `form:"task_date" json:"task_date" example:"2024-01-03"`
}

// UpdateTask godoc
//
//	@Summary		Update task
//	@Description	Patch a task. Changing task_date moves it to the Day of the new date.
//	@Tags			task
//	@Accept			json
//	@Produce		json
//	@Param			X-User-ID	header	string					true	"User ID"
//	@Param			task_id		path	string					true	"Task ID"	Format(uuid)
//	@Param			payload		body	handler.UpdateTaskReq	true	"UpdateTask payload"
//	@Success		200	{object}	serializer.Response{data=service.TaskResult}
//	@Router			/tasks/{task_id} [put]
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("task_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	req := UpdateTaskReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	out, err := h.svc.Update(c.Request.Context(), service.UpdateTaskInput{
		UserID:      userID(c),
		TaskID:      taskID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Category:    req.Category,
		SubCategory: req.SubCategory,
		TaskDate:    req.TaskDate,
	})
	if err != nil {
		c.JSON(serializer.FromError(err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: out})
}

// DeleteTask godoc
//
//	@Summary		Delete task
//	@Description	Delete a task and drop it from every Day that references it
//	@Tags			task
//	@Accept			json
//	@Produce		json
//	@Param			X-User-ID	header	string	true	"User ID"
//	@Param			task_id		path	string	true	"Task ID"	Format(uuid)
//	@Success		200	{object}	serializer.Response{}
//	@Router			/tasks/{task_id} [delete]
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("task_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	if err := h.svc.Delete(c.Request.Context(), userID(c), taskID); err != nil {
		c.JSON(serializer.FromError(err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{})
}
