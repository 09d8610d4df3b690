package repo

import (
	"context"
	"errors"
	"time"

	"github.com/daystreak/api/internal/modules/model"
	"github.com/daystreak/api/internal/pkg/apperr"
	"github.com/daystreak/api/internal/pkg/datex"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StatusUpdate is the set of Day columns written by a status change.
type StatusUpdate struct {
	Status  model.DayStatus
	Streak  int
	Comment *string
}

type DayRepo interface {
	UpsertForTasks(ctx context.Context, userID string, date datex.Date, taskIDs ...uuid.UUID) (*model.Day, error)
	Get(ctx context.Context, userID string, date datex.Date) (*model.Day, error)
	Tasks(ctx context.Context, dayID uuid.UUID) ([]model.Task, error)
	FindPrevious(ctx context.Context, userID string, date datex.Date) (*model.Day, error)
	Latest(ctx context.Context, userID string, asOf datex.Date) (*model.Day, error)
	SaveStatus(ctx context.Context, userID string, date datex.Date, upd StatusUpdate) (*model.Day, error)
	UpsertStatus(ctx context.Context, userID string, date datex.Date, upd StatusUpdate) (*model.Day, error)
	ListRange(ctx context.Context, userID string, start, end datex.Date) ([]model.Day, error)
	ListByDate(ctx context.Context, date datex.Date) ([]model.Day, error)
}

type dayRepo struct{ db *gorm.DB }

func NewDayRepo(db *gorm.DB) DayRepo {
	return &dayRepo{db: db}
}

func (r *dayRepo) UpsertForTasks(ctx context.Context, userID string, date datex.Date, taskIDs ...uuid.UUID) (*model.Day, error) {
	var day *model.Day
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		day, err = upsertDayWithTasks(tx, userID, date, taskIDs)
		return err
	})
	return day, err
}

func (r *dayRepo) Get(ctx context.Context, userID string, date datex.Date) (*model.Day, error) {
	return findDay(r.db.WithContext(ctx), userID, date)
}

func (r *dayRepo) Tasks(ctx context.Context, dayID uuid.UUID) ([]model.Task, error) {
	var tasks []model.Task
	return tasks, r.db.WithContext(ctx).
		Joins("JOIN day_tasks ON day_tasks.task_id = tasks.id").
		Where("day_tasks.day_id = ?", dayID).
		Order("tasks.created_at ASC, tasks.id ASC").
		Find(&tasks).Error
}

// FindPrevious returns the most recent Day strictly before date, or nil when there is none.
func (r *dayRepo) FindPrevious(ctx context.Context, userID string, date datex.Date) (*model.Day, error) {
	return latestWhere(r.db.WithContext(ctx).Where("user_id = ? AND date < ?", userID, date))
}

// Latest returns the most recent Day on or before asOf, or nil.
func (r *dayRepo) Latest(ctx context.Context, userID string, asOf datex.Date) (*model.Day, error) {
	return latestWhere(r.db.WithContext(ctx).Where("user_id = ? AND date <= ?", userID, asOf))
}

// SaveStatus updates an existing Day only.
func (r *dayRepo) SaveStatus(ctx context.Context, userID string, date datex.Date, upd StatusUpdate) (*model.Day, error) {
	var day *model.Day
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Day{}).
			Where("user_id = ? AND date = ?", userID, date).
			Updates(statusColumns(upd))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("day", date.String())
		}
		var err error
		day, err = findDay(tx, userID, date)
		return err
	})
	return day, err
}

// UpsertStatus creates the Day when missing, then writes the status.
func (r *dayRepo) UpsertStatus(ctx context.Context, userID string, date datex.Date, upd StatusUpdate) (*model.Day, error) {
	var day *model.Day
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		d, err := upsertDayWithTasks(tx, userID, date, nil)
		if err != nil {
			return err
		}
		if err := tx.Model(&model.Day{}).Where("id = ?", d.ID).Updates(statusColumns(upd)).Error; err != nil {
			return err
		}
		day, err = findDay(tx, userID, date)
		return err
	})
	return day, err
}

func (r *dayRepo) ListRange(ctx context.Context, userID string, start, end datex.Date) ([]model.Day, error) {
	var days []model.Day
	return days, r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, start, end).
		Order("date ASC").
		Find(&days).Error
}

func (r *dayRepo) ListByDate(ctx context.Context, date datex.Date) ([]model.Day, error) {
	var days []model.Day
	return days, r.db.WithContext(ctx).
		Where("date = ?", date).
		Order("user_id ASC").
		Find(&days).Error
}

func statusColumns(upd StatusUpdate) map[string]any {
	cols := map[string]any{
		"status_of_day": upd.Status,
		"streak":        upd.Streak,
		"updated_at":    time.Now(),
	}
	if upd.Comment != nil {
		cols["comment"] = *upd.Comment
	}
	return cols
}

// upsertDayWithTasks is the only way a Day row comes into existence: insert-or-ignore on
// (user_id, date), re-read, then add the ids to the membership set.
func upsertDayWithTasks(tx *gorm.DB, userID string, date datex.Date, taskIDs []uuid.UUID) (*model.Day, error) {
	candidate := &model.Day{UserID: userID, Date: date, Status: model.DayIdle}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoNothing: true,
	}).Create(candidate).Error
	if err != nil {
		return nil, err
	}

	// the candidate id is meaningless when the insert was ignored
	var day model.Day
	if err := tx.Where("user_id = ? AND date = ?", userID, date).First(&day).Error; err != nil {
		return nil, err
	}

	if len(taskIDs) > 0 {
		links := make([]model.DayTask, 0, len(taskIDs))
		for _, id := range taskIDs {
			links = append(links, model.DayTask{DayID: day.ID, TaskID: id})
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error; err != nil {
			return nil, err
		}
	}

	if err := loadDayTaskIDs(tx, &day); err != nil {
		return nil, err
	}
	return &day, nil
}

func findDay(tx *gorm.DB, userID string, date datex.Date) (*model.Day, error) {
	var day model.Day
	if err := tx.Where("user_id = ? AND date = ?", userID, date).First(&day).Error; err != nil {
		return nil, notFoundAs(err, "day", date.String())
	}
	if err := loadDayTaskIDs(tx, &day); err != nil {
		return nil, err
	}
	return &day, nil
}

func loadDayTaskIDs(tx *gorm.DB, day *model.Day) error {
	ids := []uuid.UUID{}
	if err := tx.Model(&model.DayTask{}).
		Where("day_id = ?", day.ID).
		Order("created_at ASC, task_id ASC").
		Pluck("task_id", &ids).Error; err != nil {
		return err
	}
	day.TaskIDs = ids
	return nil
}

func latestWhere(q *gorm.DB) (*model.Day, error) {
	var days []model.Day
	if err := q.Order("date DESC").Limit(1).Find(&days).Error; err != nil {
		return nil, err
	}
	if len(days) == 0 {
		return nil, nil
	}
	return &days[0], nil
}

// pullTasksFromDays removes the ids from every Day set and deletes Days left empty.
func pullTasksFromDays(tx *gorm.DB, taskIDs []uuid.UUID) error {
	if len(taskIDs) == 0 {
		return nil
	}
	var dayIDs []uuid.UUID
	if err := tx.Model(&model.DayTask{}).Where("task_id IN ?", taskIDs).Distinct().Pluck("day_id", &dayIDs).Error; err != nil {
		return err
	}
	if err := tx.Where("task_id IN ?", taskIDs).Delete(&model.DayTask{}).Error; err != nil {
		return err
	}
	return pruneEmptyDays(tx, dayIDs)
}

func pruneEmptyDays(tx *gorm.DB, dayIDs []uuid.UUID) error {
	if len(dayIDs) == 0 {
		return nil
	}
	return tx.Where("id IN ?", dayIDs).
		Where("NOT EXISTS (SELECT 1 FROM day_tasks WHERE day_tasks.day_id = days.id)").
		Delete(&model.Day{}).Error
}

func notFoundAs(err error, resource, key string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(resource, key)
	}
	return err
}
