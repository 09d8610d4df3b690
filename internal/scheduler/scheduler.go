// Package scheduler runs the nightly Day status refresh.
package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/daystreak/api/internal/pkg/datex"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Recomputer refreshes every stored Day on a date.
type Recomputer interface {
	RecomputeDate(ctx context.Context, date datex.Date) (int, error)
}

type Scheduler struct {
	cron *cron.Cron
	loc  *time.Location
	days Recomputer
	log  *zap.Logger
	now  func() time.Time
}

func New(loc *time.Location, days Recomputer, log *zap.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron: cron.New(cron.WithLocation(loc), cron.WithSeconds()),
		loc:  loc,
		days: days,
		log:  log,
		now:  time.Now,
	}
}

// ScheduleRecompute registers the daily refresh at the given HH:MM.
func (s *Scheduler) ScheduleRecompute(at string) (cron.EntryID, error) {
	spec, err := buildDailySpec(at)
	if err != nil {
		return 0, err
	}
	return s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		s.RunOnce(ctx)
	})
}

// RunOnce refreshes yesterday, which is now closed, and today.
func (s *Scheduler) RunOnce(ctx context.Context) {
	today := datex.FromTime(s.now().In(s.loc))
	for _, d := range []datex.Date{today.AddDays(-1), today} {
		n, err := s.days.RecomputeDate(ctx, d)
		if err != nil {
			s.log.Sugar().Warnw("nightly recompute incomplete", "date", d.String(), "refreshed", n, "err", err)
			continue
		}
		s.log.Sugar().Infow("nightly recompute done", "date", d.String(), "refreshed", n)
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func buildDailySpec(timeStr string) (string, error) {
	parts := strings.Split(timeStr, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time %q, expected HH:MM", timeStr)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour in %q", timeStr)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute in %q", timeStr)
	}
	// second minute hour dom month dow
	return fmt.Sprintf("0 %d %d * * *", minute, hour), nil
}
