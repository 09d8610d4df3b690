package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/daystreak/api/internal/infra/httpclient"
	"github.com/daystreak/api/internal/modules/model"
	"github.com/daystreak/api/internal/modules/repo"
	"github.com/daystreak/api/internal/pkg/apperr"
	"github.com/daystreak/api/internal/pkg/datex"
	"github.com/daystreak/api/internal/pkg/paging"
	"github.com/daystreak/api/internal/pkg/planparse"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// EventRoadmapConfirmed is published after a roadmap has been ingested.
const EventRoadmapConfirmed = "roadmap.confirmed"

// RoadmapGenerator returns the raw model text for a roadmap prompt.
type RoadmapGenerator interface {
	GenerateRoadmap(ctx context.Context, p httpclient.RoadmapPrompt) (string, error)
}

// PlanArchiver keeps model output that could not be parsed.
type PlanArchiver interface {
	ArchiveRawPlan(ctx context.Context, userID, raw string) (string, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
}

type RoadmapService interface {
	Generate(ctx context.Context, in GenerateRoadmapInput) (*RoadmapDraft, error)
	Confirm(ctx context.Context, in ConfirmRoadmapInput) (*ConfirmRoadmapOutput, error)
	Get(ctx context.Context, userID string, roadmapID uuid.UUID) (*model.Roadmap, error)
	List(ctx context.Context, in ListRoadmapsInput) (*ListRoadmapsOutput, error)
	Update(ctx context.Context, in UpdateRoadmapInput) (*model.Roadmap, error)
	Delete(ctx context.Context, userID string, roadmapID uuid.UUID) (int, error)
}

// RoadmapDeps wires the roadmap service. Drafts, Archiver and Events are optional.
type RoadmapDeps struct {
	Repo      repo.RoadmapRepo
	Generator RoadmapGenerator
	Drafts    DraftStore
	Archiver  PlanArchiver
	Events    EventPublisher
	Log       *zap.Logger
}

type roadmapService struct {
	r      repo.RoadmapRepo
	gen    RoadmapGenerator
	drafts DraftStore
	arch   PlanArchiver
	events EventPublisher
	log    *zap.Logger
}

func NewRoadmapService(d RoadmapDeps) RoadmapService {
	return &roadmapService{
		r:      d.Repo,
		gen:    d.Generator,
		drafts: d.Drafts,
		arch:   d.Archiver,
		events: d.Events,
		log:    d.Log,
	}
}

type GenerateRoadmapInput struct {
	UserID          string
	Title           string
	MonthsAllocated int
	HoursPerDay     float64
	StartDate       string
	SkillLevel      *int
}

// RoadmapDraft is a generated plan awaiting confirmation.
type RoadmapDraft struct {
	DraftID         string         `json:"draft_id,omitempty"`
	Title           string         `json:"title"`
	SkillLevel      int            `json:"skill_level"`
	MonthsAllocated int            `json:"months_allocated"`
	HoursPerDay     float64        `json:"hours_per_day"`
	StartDate       datex.Date     `json:"start_date" swaggertype:"string" example:"2024-01-02"`
	IsFeasible      *bool          `json:"is_feasible,omitempty"`
	Reason          string         `json:"reason,omitempty"`
	AIResponse      map[string]any `json:"ai_response" swaggertype:"object"`
}

func (s *roadmapService) Generate(ctx context.Context, in GenerateRoadmapInput) (*RoadmapDraft, error) {
	var missing []string
	if in.UserID == "" {
		missing = append(missing, "user_id")
	}
	if strings.TrimSpace(in.Title) == "" {
		missing = append(missing, "title")
	}
	if in.MonthsAllocated == 0 {
		missing = append(missing, "months_allocated")
	}
	if in.HoursPerDay == 0 {
		missing = append(missing, "hours_per_day")
	}
	if strings.TrimSpace(in.StartDate) == "" {
		missing = append(missing, "start_date")
	}
	if in.SkillLevel == nil {
		missing = append(missing, "skill_level")
	}
	if len(missing) > 0 {
		return nil, apperr.Required(missing...)
	}
	if err := validateRoadmapNumbers(in.SkillLevel, &in.MonthsAllocated, &in.HoursPerDay); err != nil {
		return nil, err
	}
	start, err := datex.Parse(in.StartDate)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	raw, err := s.gen.GenerateRoadmap(ctx, httpclient.RoadmapPrompt{
		Skill:       title,
		SkillLevel:  model.SkillLevels[*in.SkillLevel],
		Months:      in.MonthsAllocated,
		HoursPerDay: in.HoursPerDay,
		StartDate:   start,
	})
	if err != nil {
		return nil, fmt.Errorf("generate roadmap: %w", err)
	}

	payload, err := planparse.Parse(raw)
	if err != nil {
		return nil, s.archiveMalformed(ctx, in.UserID, err)
	}
	// a plan that parses but cannot be walked is the model's fault, not the caller's
	if _, err := planparse.Entries(payload); err != nil {
		return nil, s.archiveMalformed(ctx, in.UserID, &apperr.MalformedPlanError{Raw: raw, Cause: err})
	}
	feasible, reason := planparse.Feasibility(payload)

	draft := &RoadmapDraft{
		Title:           title,
		SkillLevel:      *in.SkillLevel,
		MonthsAllocated: in.MonthsAllocated,
		HoursPerDay:     in.HoursPerDay,
		StartDate:       start,
		IsFeasible:      feasible,
		Reason:          reason,
		AIResponse:      payload,
	}
	if s.drafts != nil {
		id, err := s.drafts.Put(ctx, in.UserID, draft)
		if err != nil {
			return nil, err
		}
		draft.DraftID = id
	}
	return draft, nil
}

type ConfirmRoadmapInput struct {
	UserID          string
	DraftID         string
	Title           string
	SkillLevel      *int
	MonthsAllocated *int
	HoursPerDay     *float64
	AIResponse      any
}

type SkippedEntry struct {
	Index  int    `json:"index"`
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

type FailedTask struct {
	Date   string `json:"date"`
	Title  string `json:"title"`
	Reason string `json:"reason"`
}

// IngestSummary reports how a plan was materialized; partial failure is not an error.
type IngestSummary struct {
	Entries        int            `json:"entries"`
	DatesIngested  int            `json:"dates_ingested"`
	TasksCreated   int            `json:"tasks_created"`
	SkippedEntries []SkippedEntry `json:"skipped_entries"`
	FailedDates    []SkippedEntry `json:"failed_dates"`
	FailedTasks    []FailedTask   `json:"failed_tasks"`
}

type ConfirmRoadmapOutput struct {
	Roadmap *model.Roadmap `json:"roadmap"`
	Summary IngestSummary  `json:"summary"`
}

func (s *roadmapService) Confirm(ctx context.Context, in ConfirmRoadmapInput) (*ConfirmRoadmapOutput, error) {
	if in.UserID == "" {
		return nil, apperr.Required("user_id")
	}
	if in.DraftID != "" {
		if err := s.fillFromDraft(ctx, &in); err != nil {
			return nil, err
		}
	}

	var missing []string
	if strings.TrimSpace(in.Title) == "" {
		missing = append(missing, "title")
	}
	if in.SkillLevel == nil {
		missing = append(missing, "skill_level")
	}
	if in.MonthsAllocated == nil {
		missing = append(missing, "months_allocated")
	}
	if in.HoursPerDay == nil {
		missing = append(missing, "hours_per_day")
	}
	if in.AIResponse == nil {
		missing = append(missing, "ai_response")
	}
	if len(missing) > 0 {
		return nil, apperr.Required(missing...)
	}
	if err := validateRoadmapNumbers(in.SkillLevel, in.MonthsAllocated, in.HoursPerDay); err != nil {
		return nil, err
	}

	payload, err := planparse.FromPayload(in.AIResponse)
	if err != nil {
		return nil, s.archiveMalformed(ctx, in.UserID, err)
	}
	entries, err := planparse.Entries(payload)
	if err != nil {
		return nil, err
	}

	rm := &model.Roadmap{
		UserID:          in.UserID,
		Title:           in.Title,
		SkillLevel:      *in.SkillLevel,
		MonthsAllocated: *in.MonthsAllocated,
		HoursPerDay:     *in.HoursPerDay,
		AIResponse:      datatypes.JSONMap(payload),
		CreatedBy:       in.UserID,
		UpdatedBy:       in.UserID,
	}
	if err := s.r.Create(ctx, rm); err != nil {
		return nil, fmt.Errorf("create roadmap: %w", err)
	}

	sum := s.ingest(ctx, rm, entries)

	if in.DraftID != "" && s.drafts != nil {
		if err := s.drafts.Delete(ctx, in.UserID, in.DraftID); err != nil {
			s.log.Sugar().Warnw("delete roadmap draft failed", "draft_id", in.DraftID, "err", err)
		}
	}
	s.publishConfirmed(ctx, rm, sum)

	return &ConfirmRoadmapOutput{Roadmap: rm, Summary: sum}, nil
}

// ingest stores each plan date independently; a failing date is logged and the rest continue.
func (s *roadmapService) ingest(ctx context.Context, rm *model.Roadmap, entries []planparse.Entry) IngestSummary {
	sum := IngestSummary{
		Entries:        len(entries),
		SkippedEntries: []SkippedEntry{},
		FailedDates:    []SkippedEntry{},
		FailedTasks:    []FailedTask{},
	}
	rm.TaskIDs = []uuid.UUID{}

	for _, e := range entries {
		if e.Err != nil {
			s.log.Sugar().Warnw("skip roadmap entry", "roadmap_id", rm.ID, "index", e.Index, "date", e.RawDate, "err", e.Err)
			sum.SkippedEntries = append(sum.SkippedEntries, SkippedEntry{Index: e.Index, Date: e.RawDate, Reason: e.Err.Error()})
			continue
		}
		res, err := s.r.IngestDate(ctx, rm, e.Date, e.Topic, e.Titles)
		if err != nil {
			s.log.Sugar().Errorw("ingest roadmap date failed", "roadmap_id", rm.ID, "date", e.Date.String(), "err", err)
			sum.FailedDates = append(sum.FailedDates, SkippedEntry{Index: e.Index, Date: e.Date.String(), Reason: err.Error()})
			continue
		}
		for _, f := range res.Failed {
			s.log.Sugar().Warnw("skip roadmap task", "roadmap_id", rm.ID, "date", e.Date.String(), "title", f.Title, "err", f.Err)
			sum.FailedTasks = append(sum.FailedTasks, FailedTask{Date: e.Date.String(), Title: f.Title, Reason: f.Err.Error()})
		}
		rm.TaskIDs = append(rm.TaskIDs, res.TaskIDs...)
		sum.TasksCreated += len(res.TaskIDs)
		sum.DatesIngested++
	}
	return sum
}

func (s *roadmapService) fillFromDraft(ctx context.Context, in *ConfirmRoadmapInput) error {
	if s.drafts == nil {
		return apperr.Validation("draft_id", "draft storage is not configured")
	}
	d, err := s.drafts.Get(ctx, in.UserID, in.DraftID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(in.Title) == "" {
		in.Title = d.Title
	}
	if in.SkillLevel == nil {
		in.SkillLevel = &d.SkillLevel
	}
	if in.MonthsAllocated == nil {
		in.MonthsAllocated = &d.MonthsAllocated
	}
	if in.HoursPerDay == nil {
		in.HoursPerDay = &d.HoursPerDay
	}
	if in.AIResponse == nil {
		in.AIResponse = d.AIResponse
	}
	return nil
}

func (s *roadmapService) archiveMalformed(ctx context.Context, userID string, err error) error {
	var mp *apperr.MalformedPlanError
	if !errors.As(err, &mp) {
		return err
	}
	if s.arch != nil {
		key, aerr := s.arch.ArchiveRawPlan(ctx, userID, mp.Raw)
		if aerr != nil {
			s.log.Sugar().Warnw("archive malformed plan failed", "user_id", userID, "err", aerr)
		} else {
			mp.ArchiveKey = key
		}
	}
	fields := []any{"user_id", userID, "archive_key", mp.ArchiveKey, "err", mp.Cause}
	if mp.ArchiveKey == "" {
		fields = append(fields, "raw", truncateRaw(mp.Raw))
	}
	s.log.Sugar().Warnw("malformed roadmap plan", fields...)
	return mp
}

// maxLoggedRaw caps unarchived model output in log lines.
const maxLoggedRaw = 8 << 10

func truncateRaw(raw string) string {
	if len(raw) <= maxLoggedRaw {
		return raw
	}
	return raw[:maxLoggedRaw] + "...(truncated)"
}

func (s *roadmapService) publishConfirmed(ctx context.Context, rm *model.Roadmap, sum IngestSummary) {
	if s.events == nil {
		return
	}
	evt := map[string]any{
		"roadmap_id":    rm.ID.String(),
		"user_id":       rm.UserID,
		"title":         rm.Title,
		"tasks_created": sum.TasksCreated,
		"dates":         sum.DatesIngested,
		"confirmed_at":  time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.events.Publish(ctx, EventRoadmapConfirmed, evt); err != nil {
		s.log.Sugar().Warnw("publish roadmap event failed", "roadmap_id", rm.ID, "err", err)
	}
}

func (s *roadmapService) Get(ctx context.Context, userID string, roadmapID uuid.UUID) (*model.Roadmap, error) {
	if userID == "" {
		return nil, apperr.Required("user_id")
	}
	if roadmapID == uuid.Nil {
		return nil, apperr.Required("roadmap_id")
	}
	return s.r.Get(ctx, userID, roadmapID)
}

type ListRoadmapsInput struct {
	UserID string `json:"user_id"`
	Limit  int    `json:"limit"`
	Cursor string `json:"cursor"`
}

type ListRoadmapsOutput struct {
	Items      []*model.Roadmap `json:"items"`
	NextCursor string           `json:"next_cursor,omitempty"`
	HasMore    bool             `json:"has_more"`
}

func (s *roadmapService) List(ctx context.Context, in ListRoadmapsInput) (*ListRoadmapsOutput, error) {
	if in.UserID == "" {
		return nil, apperr.Required("user_id")
	}
	if in.Limit <= 0 {
		in.Limit = 20
	}

	// an empty cursor starts from the newest roadmap
	var afterT time.Time
	var afterID uuid.UUID
	if in.Cursor != "" {
		var err error
		afterT, afterID, err = paging.DecodeCursor(in.Cursor)
		if err != nil {
			return nil, apperr.Validation("cursor", "%v", err)
		}
	}

	// limit+1 tells whether another page exists
	items, err := s.r.ListWithCursor(ctx, in.UserID, afterT, afterID, in.Limit+1)
	if err != nil {
		return nil, err
	}

	out := &ListRoadmapsOutput{Items: items}
	if out.Items == nil {
		out.Items = []*model.Roadmap{}
	}
	if len(items) > in.Limit {
		out.HasMore = true
		out.Items = items[:in.Limit]
		last := out.Items[len(out.Items)-1]
		out.NextCursor = paging.EncodeCursor(last.CreatedAt, last.ID)
	}
	return out, nil
}

type UpdateRoadmapInput struct {
	UserID          string
	RoadmapID       uuid.UUID
	Title           *string
	SkillLevel      *int
	MonthsAllocated *int
	HoursPerDay     *float64
	AIResponse      any
}

func (s *roadmapService) Update(ctx context.Context, in UpdateRoadmapInput) (*model.Roadmap, error) {
	if in.UserID == "" {
		return nil, apperr.Required("user_id")
	}
	if in.RoadmapID == uuid.Nil {
		return nil, apperr.Required("roadmap_id")
	}
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return nil, apperr.Validation("title", "must not be empty")
	}
	if err := validateRoadmapNumbers(in.SkillLevel, in.MonthsAllocated, in.HoursPerDay); err != nil {
		return nil, err
	}

	patch := repo.RoadmapPatch{
		Title:           in.Title,
		SkillLevel:      in.SkillLevel,
		MonthsAllocated: in.MonthsAllocated,
		HoursPerDay:     in.HoursPerDay,
		UpdatedBy:       in.UserID,
	}
	if in.AIResponse != nil {
		payload, err := planparse.FromPayload(in.AIResponse)
		if err != nil {
			return nil, err
		}
		patch.AIResponse = datatypes.JSONMap(payload)
	}
	return s.r.Update(ctx, in.UserID, in.RoadmapID, patch)
}

// Delete removes the roadmap and the tasks it owns, returning how many tasks went with it.
func (s *roadmapService) Delete(ctx context.Context, userID string, roadmapID uuid.UUID) (int, error) {
	if userID == "" {
		return 0, apperr.Required("user_id")
	}
	if roadmapID == uuid.Nil {
		return 0, apperr.Required("roadmap_id")
	}
	return s.r.Delete(ctx, userID, roadmapID)
}

func validateRoadmapNumbers(skill, months *int, hours *float64) error {
	if skill != nil && (*skill < 0 || *skill >= len(model.SkillLevels)) {
		return apperr.Validation("skill_level", "must be between 0 and %d", len(model.SkillLevels)-1)
	}
	if months != nil && *months <= 0 {
		return apperr.Validation("months_allocated", "must be positive")
	}
	if hours != nil && (*hours <= 0 || *hours > 24) {
		return apperr.Validation("hours_per_day", "must be within (0, 24]")
	}
	return nil
}
