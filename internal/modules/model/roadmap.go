package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SkillLevels maps the stored skill level ordinal onto the wording used in prompts.
var SkillLevels = []string{"beginner", "novice", "intermediate", "advanced", "expert"}

type Roadmap struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID string    `gorm:"type:varchar(128);not null;index:ix_roadmaps_user_created,priority:1" json:"user_id"`

	Title           string            `gorm:"type:text;not null" json:"title"`
	SkillLevel      int               `gorm:"type:smallint;not null;default:0;check:skill_level BETWEEN 0 AND 4" json:"skill_level"`
	MonthsAllocated int               `gorm:"not null" json:"months_allocated"`
	HoursPerDay     float64           `gorm:"not null" json:"hours_per_day"`
	AIResponse      datatypes.JSONMap `gorm:"type:jsonb;not null" swaggertype:"object" json:"ai_response"`

	CreatedBy string `gorm:"type:varchar(128);not null" json:"created_by"`
	UpdatedBy string `gorm:"type:varchar(128);not null" json:"updated_by"`

	CreatedAt time.Time `gorm:"autoCreateTime;index:ix_roadmaps_user_created,priority:2" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Owned tasks, loaded from roadmap_tasks.
	TaskIDs []uuid.UUID `gorm:"-" json:"task_ids"`
}

func (Roadmap) TableName() string { return "roadmaps" }

func (r *Roadmap) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedBy == "" {
		r.CreatedBy = r.UserID
	}
	if r.UpdatedBy == "" {
		r.UpdatedBy = r.CreatedBy
	}
	return nil
}

func (r *Roadmap) BeforeSave(tx *gorm.DB) error {
	r.Title = strings.TrimSpace(r.Title)
	return nil
}

// RoadmapTask records that a roadmap owns a task; deleting the roadmap deletes exactly these tasks.
type RoadmapTask struct {
	RoadmapID uuid.UUID `gorm:"type:uuid;primaryKey" json:"roadmap_id"`
	TaskID    uuid.UUID `gorm:"type:uuid;primaryKey;uniqueIndex:uq_roadmap_tasks_task_id" json:"task_id"`

	Roadmap *Roadmap `gorm:"foreignKey:RoadmapID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
	Task    *Task    `gorm:"foreignKey:TaskID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (RoadmapTask) TableName() string { return "roadmap_tasks" }

// All lists every persisted model, in migration order.
func All() []any {
	return []any{&Task{}, &Day{}, &DayTask{}, &Roadmap{}, &RoadmapTask{}}
}
