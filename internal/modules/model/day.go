package model

import (
	"strings"
	"time"

	"github.com/daystreak/api/internal/pkg/datex"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Day aggregates one user's calendar day. Exactly one row exists per (user_id, date).
type Day struct {
	ID     uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID string     `gorm:"type:varchar(128);not null;uniqueIndex:uq_days_user_date,priority:1" json:"user_id"`
	Date   datex.Date `gorm:"type:date;not null;uniqueIndex:uq_days_user_date,priority:2;index:ix_days_date" swaggertype:"string" example:"2024-01-02" json:"date"`

	Status  DayStatus `gorm:"column:status_of_day;type:smallint;not null;default:0;check:status_of_day BETWEEN 0 AND 4" swaggertype:"integer" json:"status_of_day"`
	Streak  int       `gorm:"not null;default:0;check:streak >= 0" json:"streak"`
	Comment *string   `gorm:"type:text" json:"comment,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Task membership, loaded from day_tasks.
	TaskIDs []uuid.UUID `gorm:"-" json:"tasks"`
}

func (Day) TableName() string { return "days" }

func (d *Day) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

func (d *Day) BeforeSave(tx *gorm.DB) error {
	if d.Comment != nil {
		c := strings.ToLower(strings.TrimSpace(*d.Comment))
		d.Comment = &c
	}
	return nil
}

// DayTask is a non-owning reference from a Day to a Task; the composite key gives set semantics.
type DayTask struct {
	DayID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"day_id"`
	TaskID uuid.UUID `gorm:"type:uuid;primaryKey;index:ix_day_tasks_task_id" json:"task_id"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Day  *Day  `gorm:"foreignKey:DayID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
	Task *Task `gorm:"foreignKey:TaskID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (DayTask) TableName() string { return "day_tasks" }
