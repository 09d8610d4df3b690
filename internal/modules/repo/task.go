package repo

import (
	"context"

	"github.com/daystreak/api/internal/modules/model"
	"github.com/daystreak/api/internal/pkg/datex"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskPatch holds the task fields a caller may change; nil means unchanged.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *model.TaskStatus
	Category    *string
	SubCategory *string
	TaskDate    *datex.Date
}

func (p TaskPatch) apply(t *model.Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.SubCategory != nil {
		t.SubCategory = p.SubCategory
	}
	if p.TaskDate != nil {
		t.TaskDate = *p.TaskDate
	}
}

type TaskRepo interface {
	Create(ctx context.Context, t *model.Task) (*model.Day, error)
	Get(ctx context.Context, userID string, taskID uuid.UUID) (*model.Task, error)
	Update(ctx context.Context, userID string, taskID uuid.UUID, patch TaskPatch) (*model.Task, *model.Day, error)
	Delete(ctx context.Context, userID string, taskID uuid.UUID) error
	ListByUserDate(ctx context.Context, userID string, date datex.Date) ([]model.Task, error)
}

type taskRepo struct{ db *gorm.DB }

func NewTaskRepo(db *gorm.DB) TaskRepo {
	return &taskRepo{db: db}
}

// Create inserts the task and adds it to its Day in the same transaction.
func (r *taskRepo) Create(ctx context.Context, t *model.Task) (*model.Day, error) {
	var day *model.Day
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(t).Error; err != nil {
			return err
		}
		var err error
		day, err = upsertDayWithTasks(tx, t.UserID, t.TaskDate, []uuid.UUID{t.ID})
		return err
	})
	return day, err
}

func (r *taskRepo) Get(ctx context.Context, userID string, taskID uuid.UUID) (*model.Task, error) {
	return findTask(r.db.WithContext(ctx), userID, taskID)
}

// Update merges the patch. A date change moves the task between Day sets.
func (r *taskRepo) Update(ctx context.Context, userID string, taskID uuid.UUID, patch TaskPatch) (*model.Task, *model.Day, error) {
	var (
		task *model.Task
		day  *model.Day
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		task, err = findTask(tx, userID, taskID)
		if err != nil {
			return err
		}
		prevDate := task.TaskDate

		patch.apply(task)
		if err := tx.Save(task).Error; err != nil {
			return err
		}

		if !task.TaskDate.Equal(prevDate) {
			if err := pullTasksFromDays(tx, []uuid.UUID{task.ID}); err != nil {
				return err
			}
		}
		day, err = upsertDayWithTasks(tx, userID, task.TaskDate, []uuid.UUID{task.ID})
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return task, day, nil
}

// Delete removes the task with its Day membership and roadmap link; an emptied Day goes too.
func (r *taskRepo) Delete(ctx context.Context, userID string, taskID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err := findTask(tx, userID, taskID)
		if err != nil {
			return err
		}
		if err := pullTasksFromDays(tx, []uuid.UUID{task.ID}); err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", task.ID).Delete(&model.RoadmapTask{}).Error; err != nil {
			return err
		}
		return tx.Delete(task).Error
	})
}

func (r *taskRepo) ListByUserDate(ctx context.Context, userID string, date datex.Date) ([]model.Task, error) {
	var tasks []model.Task
	return tasks, r.db.WithContext(ctx).
		Where("user_id = ? AND task_date = ?", userID, date).
		Order("created_at ASC, id ASC").
		Find(&tasks).Error
}

func findTask(tx *gorm.DB, userID string, taskID uuid.UUID) (*model.Task, error) {
	var t model.Task
	if err := tx.Where("id = ? AND user_id = ?", taskID, userID).First(&t).Error; err != nil {
		return nil, notFoundAs(err, "task", taskID.String())
	}
	return &t, nil
}
