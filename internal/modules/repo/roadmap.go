package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/daystreak/api/internal/modules/model"
	"github.com/daystreak/api/internal/pkg/datex"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RoadmapPatch holds the roadmap metadata a caller may change; nil means unchanged.
type RoadmapPatch struct {
	Title           *string
	SkillLevel      *int
	MonthsAllocated *int
	HoursPerDay     *float64
	AIResponse      datatypes.JSONMap
	UpdatedBy       string
}

// TaskFailure is one task of a plan entry that could not be stored.
type TaskFailure struct {
	Title string
	Err   error
}

// IngestResult reports what one date of a plan produced.
type IngestResult struct {
	Date    datex.Date
	TaskIDs []uuid.UUID
	Failed  []TaskFailure
	Day     *model.Day
}

type RoadmapRepo interface {
	Create(ctx context.Context, rm *model.Roadmap) error
	IngestDate(ctx context.Context, rm *model.Roadmap, date datex.Date, topic string, titles []string) (*IngestResult, error)
	Get(ctx context.Context, userID string, roadmapID uuid.UUID) (*model.Roadmap, error)
	ListWithCursor(ctx context.Context, userID string, afterCreatedAt time.Time, afterID uuid.UUID, limit int) ([]*model.Roadmap, error)
	Update(ctx context.Context, userID string, roadmapID uuid.UUID, patch RoadmapPatch) (*model.Roadmap, error)
	Delete(ctx context.Context, userID string, roadmapID uuid.UUID) (int, error)
}

type roadmapRepo struct{ db *gorm.DB }

func NewRoadmapRepo(db *gorm.DB) RoadmapRepo {
	return &roadmapRepo{db: db}
}

func (r *roadmapRepo) Create(ctx context.Context, rm *model.Roadmap) error {
	return r.db.WithContext(ctx).Create(rm).Error
}

// IngestDate stores one plan date in a single transaction. Each task is inserted under
// its own savepoint so a failing task is reported and skipped; the Day then receives all
// stored ids in one upsert and the roadmap links them.
func (r *roadmapRepo) IngestDate(ctx context.Context, rm *model.Roadmap, date datex.Date, topic string, titles []string) (*IngestResult, error) {
	res := &IngestResult{Date: date}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, title := range titles {
			sub := rm.Title
			t := &model.Task{
				UserID:      rm.UserID,
				Title:       title,
				Description: topic,
				TaskDate:    date,
				Category:    model.CategoryAI,
				SubCategory: &sub,
				CreatedBy:   rm.UserID,
			}
			err := tx.Transaction(func(sp *gorm.DB) error {
				return sp.Create(t).Error
			})
			if err != nil {
				res.Failed = append(res.Failed, TaskFailure{Title: title, Err: err})
				continue
			}
			res.TaskIDs = append(res.TaskIDs, t.ID)
		}
		if len(res.TaskIDs) == 0 {
			return nil
		}

		day, err := upsertDayWithTasks(tx, rm.UserID, date, res.TaskIDs)
		if err != nil {
			return fmt.Errorf("upsert day: %w", err)
		}
		res.Day = day

		links := make([]model.RoadmapTask, 0, len(res.TaskIDs))
		for _, id := range res.TaskIDs {
			links = append(links, model.RoadmapTask{RoadmapID: rm.ID, TaskID: id})
		}
		if err := tx.Create(&links).Error; err != nil {
			return fmt.Errorf("link roadmap tasks: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *roadmapRepo) Get(ctx context.Context, userID string, roadmapID uuid.UUID) (*model.Roadmap, error) {
	return findRoadmap(r.db.WithContext(ctx), userID, roadmapID)
}

func (r *roadmapRepo) ListWithCursor(ctx context.Context, userID string, afterCreatedAt time.Time, afterID uuid.UUID, limit int) ([]*model.Roadmap, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)

	// newest first; the (created_at, id) cursor selects strictly older rows
	if !afterCreatedAt.IsZero() && afterID != uuid.Nil {
		q = q.Where("(created_at < ?) OR (created_at = ? AND id < ?)", afterCreatedAt, afterCreatedAt, afterID)
	}

	var items []*model.Roadmap
	return items, q.Order("created_at DESC, id DESC").Limit(limit).Find(&items).Error
}

// Update writes metadata; a new title is propagated to the sub_category of owned tasks.
func (r *roadmapRepo) Update(ctx context.Context, userID string, roadmapID uuid.UUID, patch RoadmapPatch) (*model.Roadmap, error) {
	var rm *model.Roadmap
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		rm, err = findRoadmap(tx, userID, roadmapID)
		if err != nil {
			return err
		}
		prevTitle := rm.Title

		if patch.Title != nil {
			rm.Title = *patch.Title
		}
		if patch.SkillLevel != nil {
			rm.SkillLevel = *patch.SkillLevel
		}
		if patch.MonthsAllocated != nil {
			rm.MonthsAllocated = *patch.MonthsAllocated
		}
		if patch.HoursPerDay != nil {
			rm.HoursPerDay = *patch.HoursPerDay
		}
		if patch.AIResponse != nil {
			rm.AIResponse = patch.AIResponse
		}
		if patch.UpdatedBy != "" {
			rm.UpdatedBy = patch.UpdatedBy
		}
		if err := tx.Save(rm).Error; err != nil {
			return err
		}

		if rm.Title != prevTitle {
			owned := tx.Model(&model.RoadmapTask{}).Select("task_id").Where("roadmap_id = ?", rm.ID)
			if err := tx.Model(&model.Task{}).
				Where("id IN (?)", owned).
				Updates(map[string]any{"sub_category": rm.Title, "updated_at": time.Now()}).Error; err != nil {
				return fmt.Errorf("retag tasks: %w", err)
			}
		}
		return nil
	})
	return rm, err
}

// Delete removes exactly the tasks the roadmap owns, their Day memberships and any Day
// left empty, then the roadmap. It returns the number of tasks deleted.
func (r *roadmapRepo) Delete(ctx context.Context, userID string, roadmapID uuid.UUID) (int, error) {
	var n int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rm, err := findRoadmap(tx, userID, roadmapID)
		if err != nil {
			return err
		}
		ids := rm.TaskIDs
		if err := pullTasksFromDays(tx, ids); err != nil {
			return err
		}
		if err := tx.Where("roadmap_id = ?", rm.ID).Delete(&model.RoadmapTask{}).Error; err != nil {
			return err
		}
		if len(ids) > 0 {
			res := tx.Where("id IN ?", ids).Delete(&model.Task{})
			if res.Error != nil {
				return res.Error
			}
			n = int(res.RowsAffected)
		}
		return tx.Delete(rm).Error
	})
	return n, err
}

func findRoadmap(tx *gorm.DB, userID string, roadmapID uuid.UUID) (*model.Roadmap, error) {
	var rm model.Roadmap
	if err := tx.Where("id = ? AND user_id = ?", roadmapID, userID).First(&rm).Error; err != nil {
		return nil, notFoundAs(err, "roadmap", roadmapID.String())
	}
	ids := []uuid.UUID{}
	if err := tx.Model(&model.RoadmapTask{}).
		Joins("JOIN tasks ON tasks.id = roadmap_tasks.task_id").
		Where("roadmap_tasks.roadmap_id = ?", rm.ID).
		Order("tasks.task_date ASC, tasks.created_at ASC").
		Pluck("roadmap_tasks.task_id", &ids).Error; err != nil {
		return nil, err
	}
	rm.TaskIDs = ids
	return &rm, nil
}
