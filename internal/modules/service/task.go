package service

import (
	"context"
	"strings"

	"github.com/daystreak/api/internal/modules/model"
	"github.com/daystreak/api/internal/modules/repo"
	"github.com/daystreak/api/internal/pkg/apperr"
	"github.com/daystreak/api/internal/pkg/datex"
	"github.com/google/uuid"
)

type TaskService interface {
	Create(ctx context.Context, in CreateTaskInput) (*TaskResult, error)
	Update(ctx context.Context, in UpdateTaskInput) (*TaskResult, error)
	Delete(ctx context.Context, userID string, taskID uuid.UUID) error
	ListByDate(ctx context.Context, userID string, date string) (*DayTasks, error)
}

type CreateTaskInput struct {
	UserID      string
	Title       string
	Description string
	Status      string
	Category    string
	SubCategory *string
	TaskDate    string
}

type UpdateTaskInput struct {
	UserID      string
	TaskID      uuid.UUID
	Title       *string
	Description *string
	Status      *string
	Category    *string
	SubCategory *string
	TaskDate    *string
}

type TaskResult struct {
	Task *model.Task `json:"task"`
	Day  *model.Day  `json:"day"`
}

// DayTasks lists a user's tasks on one date with the status they derive to.
type DayTasks struct {
	Date        datex.Date      `json:"date" swaggertype:"string" example:"2024-01-02"`
	Tasks       []model.Task    `json:"tasks"`
	StatusOfDay model.DayStatus `json:"status_of_day" swaggertype:"integer"`
}

type taskService struct{ r repo.TaskRepo }

func NewTaskService(r repo.TaskRepo) TaskService {
	return &taskService{r: r}
}

func (s *taskService) Create(ctx context.Context, in CreateTaskInput) (*TaskResult, error) {
	var missing []string
	if in.UserID == "" {
		missing = append(missing, "user_id")
	}
	if strings.TrimSpace(in.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(in.Description) == "" {
		missing = append(missing, "description")
	}
	if strings.TrimSpace(in.TaskDate) == "" {
		missing = append(missing, "task_date")
	}
	if len(missing) > 0 {
		return nil, apperr.Required(missing...)
	}

	status := model.TaskPending
	if in.Status != "" {
		status = model.TaskStatus(in.Status)
		if !status.Valid() {
			return nil, invalidTaskStatus()
		}
	}
	date, err := datex.Parse(in.TaskDate)
	if err != nil {
		return nil, err
	}

	t := &model.Task{
		UserID:      in.UserID,
		Title:       in.Title,
		Description: in.Description,
		Status:      status,
		Category:    in.Category,
		SubCategory: in.SubCategory,
		TaskDate:    date,
		CreatedBy:   in.UserID,
	}
	day, err := s.r.Create(ctx, t)
	if err != nil {
		return nil, err
	}
	return &TaskResult{Task: t, Day: day}, nil
}

func (s *taskService) Update(ctx context.Context, in UpdateTaskInput) (*TaskResult, error) {
	if in.UserID == "" {
		return nil, apperr.Required("user_id")
	}
	if in.TaskID == uuid.Nil {
		return nil, apperr.Required("task_id")
	}

	patch := repo.TaskPatch{
		Description: in.Description,
		Category:    in.Category,
		SubCategory: in.SubCategory,
	}
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, apperr.Validation("title", "must not be empty")
		}
		patch.Title = in.Title
	}
	if in.Status != nil {
		st := model.TaskStatus(*in.Status)
		if !st.Valid() {
			return nil, invalidTaskStatus()
		}
		patch.Status = &st
	}
	if in.TaskDate != nil {
		d, err := datex.Parse(*in.TaskDate)
		if err != nil {
			return nil, err
		}
		patch.TaskDate = &d
	}

	t, day, err := s.r.Update(ctx, in.UserID, in.TaskID, patch)
	if err != nil {
		return nil, err
	}
	return &TaskResult{Task: t, Day: day}, nil
}

// Delete leaves the Day status as stored; it is refreshed by an explicit recompute.
func (s *taskService) Delete(ctx context.Context, userID string, taskID uuid.UUID) error {
	if userID == "" {
		return apperr.Required("user_id")
	}
	if taskID == uuid.Nil {
		return apperr.Required("task_id")
	}
	return s.r.Delete(ctx, userID, taskID)
}

func (s *taskService) ListByDate(ctx context.Context, userID string, date string) (*DayTasks, error) {
	d, err := requireUserDate(userID, date)
	if err != nil {
		return nil, err
	}
	tasks, err := s.r.ListByUserDate(ctx, userID, d)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return &DayTasks{Date: d, Tasks: tasks, StatusOfDay: model.DeriveDayStatus(tasks)}, nil
}

func invalidTaskStatus() error {
	names := make([]string, 0, len(model.TaskStatuses))
	for _, s := range model.TaskStatuses {
		names = append(names, string(s))
	}
	return apperr.Validation("status", "must be one of %s", strings.Join(names, ", "))
}
