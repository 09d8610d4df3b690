package service

import (
	"context"

	"github.com/daystreak/api/internal/modules/model"
	"github.com/daystreak/api/internal/modules/repo"
	"github.com/daystreak/api/internal/pkg/datex"
)

// NextStreak returns the streak for a day given the closest earlier Day (nil if none).
// The run continues only when that Day was peak and sits exactly one calendar day before.
func NextStreak(prev *model.Day, date datex.Date, productive bool) int {
	if !productive {
		return 0
	}
	if prev != nil && prev.Status.IsProductive() && date.DaysSince(prev.Date) == 1 {
		return prev.Streak + 1
	}
	return 1
}

type StreakService interface {
	// Compute returns the streak a Day on date would carry with the given productivity.
	Compute(ctx context.Context, userID string, date datex.Date, productive bool) (int, error)
	// Current is the run still alive on asOf: the latest Day must be peak and be asOf or the day before.
	Current(ctx context.Context, userID string, asOf datex.Date) (int, error)
}

type streakService struct{ r repo.DayRepo }

func NewStreakService(r repo.DayRepo) StreakService {
	return &streakService{r: r}
}

func (s *streakService) Compute(ctx context.Context, userID string, date datex.Date, productive bool) (int, error) {
	if !productive {
		return 0, nil
	}
	prev, err := s.r.FindPrevious(ctx, userID, date)
	if err != nil {
		return 0, err
	}
	return NextStreak(prev, date, productive), nil
}

func (s *streakService) Current(ctx context.Context, userID string, asOf datex.Date) (int, error) {
	latest, err := s.r.Latest(ctx, userID, asOf)
	if err != nil {
		return 0, err
	}
	if latest == nil || !latest.Status.IsProductive() {
		return 0, nil
	}
	if asOf.DaysSince(latest.Date) > 1 {
		return 0, nil
	}
	return latest.Streak, nil
}
