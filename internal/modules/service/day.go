package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/daystreak/api/internal/modules/model"
	"github.com/daystreak/api/internal/modules/repo"
	"github.com/daystreak/api/internal/pkg/apperr"
	"github.com/daystreak/api/internal/pkg/datex"
	"go.uber.org/zap"
)

type DayService interface {
	Get(ctx context.Context, userID string, date string) (*DayDetail, error)
	SetStatus(ctx context.Context, in SetStatusInput) (*model.Day, error)
	RecordStatus(ctx context.Context, in SetStatusInput) (*RecordStatusOutput, error)
	Recompute(ctx context.Context, userID string, date string) (*model.Day, error)
	RecomputeDate(ctx context.Context, date datex.Date) (int, error)
	Streak(ctx context.Context, userID string, asOf string) (*StreakOutput, error)
}

type DayDetail struct {
	*model.Day
	TaskList []model.Task `json:"task_list"`
}

type SetStatusInput struct {
	UserID  string
	Date    string
	Status  *model.DayStatus
	Comment *string
}

type RecordStatusOutput struct {
	Productive bool       `json:"status"`
	Streak     int        `json:"streak"`
	Day        *model.Day `json:"day"`
}

type StreakOutput struct {
	AsOf   datex.Date `json:"as_of" swaggertype:"string" example:"2024-01-02"`
	Streak int        `json:"streak"`
}

type dayService struct {
	r       repo.DayRepo
	streaks StreakService
	log     *zap.Logger
	today   func() datex.Date
}

func NewDayService(r repo.DayRepo, streaks StreakService, log *zap.Logger, today func() datex.Date) DayService {
	return &dayService{r: r, streaks: streaks, log: log, today: today}
}

func (s *dayService) Get(ctx context.Context, userID string, date string) (*DayDetail, error) {
	d, err := requireUserDate(userID, date)
	if err != nil {
		return nil, err
	}
	day, err := s.r.Get(ctx, userID, d)
	if err != nil {
		return nil, err
	}
	tasks, err := s.r.Tasks(ctx, day.ID)
	if err != nil {
		return nil, fmt.Errorf("load day tasks: %w", err)
	}
	return &DayDetail{Day: day, TaskList: tasks}, nil
}

// SetStatus overrides the status of an existing Day and refreshes its streak.
func (s *dayService) SetStatus(ctx context.Context, in SetStatusInput) (*model.Day, error) {
	d, status, err := validateStatusInput(in)
	if err != nil {
		return nil, err
	}
	existing, err := s.r.Get(ctx, in.UserID, d)
	if err != nil {
		return nil, err
	}
	streak, err := s.streakFor(ctx, existing, in.UserID, d, status)
	if err != nil {
		return nil, err
	}
	return s.r.SaveStatus(ctx, in.UserID, d, repo.StatusUpdate{
		Status:  status,
		Streak:  streak,
		Comment: normalizeComment(in.Comment),
	})
}

// RecordStatus is SetStatus with Day creation on demand.
func (s *dayService) RecordStatus(ctx context.Context, in SetStatusInput) (*RecordStatusOutput, error) {
	d, status, err := validateStatusInput(in)
	if err != nil {
		return nil, err
	}
	existing, err := s.r.Get(ctx, in.UserID, d)
	if err != nil && !apperr.IsNotFound(err) {
		return nil, err
	}
	streak, err := s.streakFor(ctx, existing, in.UserID, d, status)
	if err != nil {
		return nil, err
	}
	day, err := s.r.UpsertStatus(ctx, in.UserID, d, repo.StatusUpdate{
		Status:  status,
		Streak:  streak,
		Comment: normalizeComment(in.Comment),
	})
	if err != nil {
		return nil, err
	}
	return &RecordStatusOutput{Productive: day.Status.IsProductive(), Streak: day.Streak, Day: day}, nil
}

// Recompute derives the status from the Day's current tasks and stores it.
func (s *dayService) Recompute(ctx context.Context, userID string, date string) (*model.Day, error) {
	d, err := requireUserDate(userID, date)
	if err != nil {
		return nil, err
	}
	day, err := s.r.Get(ctx, userID, d)
	if err != nil {
		return nil, err
	}
	return s.recompute(ctx, day)
}

// RecomputeDate refreshes every Day stored for date, across users.
func (s *dayService) RecomputeDate(ctx context.Context, date datex.Date) (int, error) {
	days, err := s.r.ListByDate(ctx, date)
	if err != nil {
		return 0, err
	}
	var (
		n    int
		errs []error
	)
	for i := range days {
		if _, err := s.recompute(ctx, &days[i]); err != nil {
			s.log.Sugar().Warnw("recompute day failed", "user_id", days[i].UserID, "date", date.String(), "err", err)
			errs = append(errs, err)
			continue
		}
		n++
	}
	return n, errors.Join(errs...)
}

func (s *dayService) Streak(ctx context.Context, userID string, asOf string) (*StreakOutput, error) {
	if userID == "" {
		return nil, apperr.Required("user_id")
	}
	d := s.today()
	if asOf != "" {
		var err error
		if d, err = datex.Parse(asOf); err != nil {
			return nil, err
		}
	}
	n, err := s.streaks.Current(ctx, userID, d)
	if err != nil {
		return nil, err
	}
	return &StreakOutput{AsOf: d, Streak: n}, nil
}

func (s *dayService) recompute(ctx context.Context, day *model.Day) (*model.Day, error) {
	tasks, err := s.r.Tasks(ctx, day.ID)
	if err != nil {
		return nil, fmt.Errorf("load day tasks: %w", err)
	}
	status := model.DeriveDayStatus(tasks)
	streak, err := s.streakFor(ctx, day, day.UserID, day.Date, status)
	if err != nil {
		return nil, err
	}
	return s.r.SaveStatus(ctx, day.UserID, day.Date, repo.StatusUpdate{Status: status, Streak: streak})
}

// streakFor keeps the stored streak of a Day that is already peak and stays peak.
func (s *dayService) streakFor(ctx context.Context, existing *model.Day, userID string, date datex.Date, status model.DayStatus) (int, error) {
	if existing != nil && existing.Status.IsProductive() && status.IsProductive() {
		return existing.Streak, nil
	}
	return s.streaks.Compute(ctx, userID, date, status.IsProductive())
}

func validateStatusInput(in SetStatusInput) (datex.Date, model.DayStatus, error) {
	var missing []string
	if in.UserID == "" {
		missing = append(missing, "user_id")
	}
	if strings.TrimSpace(in.Date) == "" {
		missing = append(missing, "date")
	}
	if in.Status == nil {
		missing = append(missing, "status_of_day")
	}
	if len(missing) > 0 {
		return datex.Date{}, 0, apperr.Required(missing...)
	}
	if !in.Status.Valid() {
		return datex.Date{}, 0, apperr.Validation("status_of_day", "must be between %d and %d", model.DayIdle, model.DayPeak)
	}
	d, err := datex.Parse(in.Date)
	if err != nil {
		return datex.Date{}, 0, err
	}
	return d, *in.Status, nil
}

func requireUserDate(userID, date string) (datex.Date, error) {
	var missing []string
	if userID == "" {
		missing = append(missing, "user_id")
	}
	if strings.TrimSpace(date) == "" {
		missing = append(missing, "date")
	}
	if len(missing) > 0 {
		return datex.Date{}, apperr.Required(missing...)
	}
	return datex.Parse(date)
}

func normalizeComment(c *string) *string {
	if c == nil {
		return nil
	}
	v := strings.ToLower(strings.TrimSpace(*c))
	return &v
}
