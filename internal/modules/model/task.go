package model

import (
	"errors"
	"strings"
	"time"

	"github.com/daystreak/api/internal/pkg/datex"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CategoryAI tags tasks materialized from a roadmap.
const CategoryAI = "Ai"

type Task struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID string    `gorm:"type:varchar(128);not null;index:ix_tasks_user_date,priority:1" json:"user_id"`

	Title       string     `gorm:"type:text;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Status      TaskStatus `gorm:"type:text;not null;default:'pending';check:status IN ('done','inProgress','toDo','notDone','pending')" json:"status"`
	Category    string     `gorm:"type:text" json:"category"`
	SubCategory *string    `gorm:"type:text" json:"sub_category"`
	TaskDate    datex.Date `gorm:"type:date;not null;index:ix_tasks_user_date,priority:2" swaggertype:"string" example:"2024-01-02" json:"task_date"`
	CreatedBy   string     `gorm:"type:varchar(128);not null" json:"created_by"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Task) TableName() string { return "tasks" }

// ErrEmptyTitle rejects a task whose title is blank after trimming.
var ErrEmptyTitle = errors.New("task title is empty")

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.Title == "" {
		return ErrEmptyTitle
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Status == "" {
		t.Status = TaskPending
	}
	if t.CreatedBy == "" {
		t.CreatedBy = t.UserID
	}
	return nil
}

func (t *Task) BeforeSave(tx *gorm.DB) error {
	t.Title = strings.TrimSpace(t.Title)
	t.Description = strings.TrimSpace(t.Description)
	t.Category = strings.TrimSpace(t.Category)
	if t.SubCategory != nil {
		s := strings.TrimSpace(*t.SubCategory)
		t.SubCategory = &s
	}
	return nil
}
