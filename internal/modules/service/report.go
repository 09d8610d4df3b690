package service

import (
	"context"
	"strings"
	"time"

	"github.com/daystreak/api/internal/modules/model"
	"github.com/daystreak/api/internal/modules/repo"
	"github.com/daystreak/api/internal/pkg/apperr"
	"github.com/daystreak/api/internal/pkg/datex"
)

// MaxReportDays bounds the number of calendar days a single report may cover.
const MaxReportDays = 366

type ReportService interface {
	LineChart(ctx context.Context, userID, start, end string) ([]LineChartEntry, error)
	PieChart(ctx context.Context, userID, start, end string, status *model.DayStatus) (*PieChart, error)
}

type LineChartEntry struct {
	Date        datex.Date `json:"date" swaggertype:"string" example:"2024-01-02"`
	Day         string     `json:"day" example:"Tuesday"`
	Status      string     `json:"status" example:"Peak"`
	StatusOfDay *int       `json:"status_of_day"`
}

type WeekdayCount struct {
	Day   string `json:"day" example:"sun"`
	Count int    `json:"count"`
}

type PieChartEntry struct {
	Date  datex.Date `json:"date" swaggertype:"string" example:"2024-01-02"`
	Day   string     `json:"day" example:"tue"`
	Count int        `json:"count"`
}

type PieChart struct {
	Status      string          `json:"status" example:"Peak"`
	StatusOfDay int             `json:"status_of_day"`
	Weekdays    []WeekdayCount  `json:"weekdays"`
	Data        []PieChartEntry `json:"data"`
}

type reportService struct{ r repo.DayRepo }

func NewReportService(r repo.DayRepo) ReportService {
	return &reportService{r: r}
}

// LineChart emits one entry per calendar day in [start, end]; days without a record read "Unknown".
func (s *reportService) LineChart(ctx context.Context, userID, start, end string) ([]LineChartEntry, error) {
	from, to, err := reportRange(userID, start, end)
	if err != nil {
		return nil, err
	}
	byDate, err := s.daysByDate(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	out := make([]LineChartEntry, 0, to.DaysSince(from)+1)
	for _, d := range datex.Range(from, to) {
		e := LineChartEntry{Date: d, Day: d.Weekday().String(), Status: "Unknown"}
		if day, ok := byDate[d.String()]; ok {
			v := int(day.Status)
			e.Status = day.Status.Title()
			e.StatusOfDay = &v
		}
		out = append(out, e)
	}
	return out, nil
}

// PieChart counts Days at status per weekday; all seven buckets are always present.
func (s *reportService) PieChart(ctx context.Context, userID, start, end string, status *model.DayStatus) (*PieChart, error) {
	if status == nil {
		return nil, apperr.Required("status_of_day")
	}
	if !status.Valid() {
		return nil, apperr.Validation("status_of_day", "must be between %d and %d", model.DayIdle, model.DayPeak)
	}
	from, to, err := reportRange(userID, start, end)
	if err != nil {
		return nil, err
	}
	byDate, err := s.daysByDate(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	var counts [7]int
	data := make([]PieChartEntry, 0, to.DaysSince(from)+1)
	for _, d := range datex.Range(from, to) {
		e := PieChartEntry{Date: d, Day: shortWeekday(d)}
		if day, ok := byDate[d.String()]; ok && day.Status == *status {
			e.Count = 1
			counts[d.Weekday()]++
		}
		data = append(data, e)
	}

	weekdays := make([]WeekdayCount, 0, 7)
	for i, n := range counts {
		weekdays = append(weekdays, WeekdayCount{Day: strings.ToLower(time.Weekday(i).String()[:3]), Count: n})
	}
	return &PieChart{
		Status:      status.Title(),
		StatusOfDay: int(*status),
		Weekdays:    weekdays,
		Data:        data,
	}, nil
}

func (s *reportService) daysByDate(ctx context.Context, userID string, from, to datex.Date) (map[string]model.Day, error) {
	days, err := s.r.ListRange(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	out := make(map[string]model.Day, len(days))
	for _, d := range days {
		out[d.Date.String()] = d
	}
	return out, nil
}

func shortWeekday(d datex.Date) string {
	return strings.ToLower(d.Weekday().String()[:3])
}

func reportRange(userID, start, end string) (datex.Date, datex.Date, error) {
	var missing []string
	if userID == "" {
		missing = append(missing, "user_id")
	}
	if strings.TrimSpace(start) == "" {
		missing = append(missing, "start_date")
	}
	if strings.TrimSpace(end) == "" {
		missing = append(missing, "end_date")
	}
	if len(missing) > 0 {
		return datex.Date{}, datex.Date{}, apperr.Required(missing...)
	}
	from, err := datex.Parse(start)
	if err != nil {
		return datex.Date{}, datex.Date{}, err
	}
	to, err := datex.Parse(end)
	if err != nil {
		return datex.Date{}, datex.Date{}, err
	}
	if to.Before(from) {
		return datex.Date{}, datex.Date{}, apperr.Validation("end_date", "must not be before start_date")
	}
	if to.DaysSince(from)+1 > MaxReportDays {
		return datex.Date{}, datex.Date{}, apperr.Validation("end_date", "range must not exceed %d days", MaxReportDays)
	}
	return from, to, nil
}
