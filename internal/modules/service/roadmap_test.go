package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/daystreak/api/internal/infra/httpclient"
	"github.com/daystreak/api/internal/modules/model"
	"github.com/daystreak/api/internal/modules/repo"
	"github.com/daystreak/api/internal/pkg/apperr"
	"github.com/daystreak/api/internal/pkg/datex"
	"github.com/daystreak/api/internal/pkg/paging"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type roadmapMocks struct {
	repo   *MockRoadmapRepo
	gen    *MockGenerator
	drafts *MockDraftStore
	arch   *MockArchiver
	events *MockPublisher
}

func newRoadmapMocks() *roadmapMocks {
	return &roadmapMocks{
		repo:   &MockRoadmapRepo{},
		gen:    &MockGenerator{},
		drafts: &MockDraftStore{},
		arch:   &MockArchiver{},
		events: &MockPublisher{},
	}
}

func (m *roadmapMocks) service() RoadmapService {
	return NewRoadmapService(RoadmapDeps{
		Repo:      m.repo,
		Generator: m.gen,
		Drafts:    m.drafts,
		Archiver:  m.arch,
		Events:    m.events,
		Log:       zap.NewNop(),
	})
}

const fencedPlan = "Here is your plan:\n```json\n" + `{
  "isFeasible": true,
  "reason": "fine",
  "plan": [
    {"date": "2024-03-04", "topic": "basics", "tasks": ["tour", "slices",]},
  ]
}` + "\n```"

func TestRoadmapService_Generate(t *testing.T) {
	m := newRoadmapMocks()
	m.gen.On("GenerateRoadmap", mock.Anything, mock.MatchedBy(func(p httpclient.RoadmapPrompt) bool {
		return p.Skill == "Go" && p.SkillLevel == "novice" && p.StartDate.String() == "2024-03-04"
	})).Return(fencedPlan, nil)
	m.drafts.On("Put", mock.Anything, "u1", mock.AnythingOfType("*service.RoadmapDraft")).Return("rd_abc", nil)

	draft, err := m.service().Generate(context.Background(), GenerateRoadmapInput{
		UserID:          "u1",
		Title:           " Go ",
		MonthsAllocated: 2,
		HoursPerDay:     1.5,
		StartDate:       "2024-03-04",
		SkillLevel:      intPtr(1),
	})
	require.NoError(t, err)
	assert.Equal(t, "Go", draft.Title)
	assert.Equal(t, "rd_abc", draft.DraftID)
	require.NotNil(t, draft.IsFeasible)
	assert.True(t, *draft.IsFeasible)
	plan, ok := draft.AIResponse["plan"].([]any)
	require.True(t, ok)
	assert.Len(t, plan, 1)
	m.drafts.AssertExpectations(t)
}

func TestRoadmapService_Generate_MalformedIsArchived(t *testing.T) {
	m := newRoadmapMocks()
	m.gen.On("GenerateRoadmap", mock.Anything, mock.Anything).Return("sorry, I cannot do that", nil)
	m.arch.On("ArchiveRawPlan", mock.Anything, "u1", "sorry, I cannot do that").Return("malformed-plans/u1/x.txt", nil)

	_, err := m.service().Generate(context.Background(), GenerateRoadmapInput{
		UserID: "u1", Title: "Go", MonthsAllocated: 1, HoursPerDay: 1, StartDate: "2024-03-04", SkillLevel: intPtr(0),
	})
	var mp *apperr.MalformedPlanError
	require.ErrorAs(t, err, &mp)
	assert.Equal(t, "sorry, I cannot do that", mp.Raw)
	assert.Equal(t, "malformed-plans/u1/x.txt", mp.ArchiveKey)
	m.drafts.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
}

func TestRoadmapService_Generate_MalformedLoggedWithoutArchive(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	gen := &MockGenerator{}
	gen.On("GenerateRoadmap", mock.Anything, mock.Anything).Return("sorry, I cannot do that", nil)
	svc := NewRoadmapService(RoadmapDeps{Repo: &MockRoadmapRepo{}, Generator: gen, Log: zap.New(core)})

	_, err := svc.Generate(context.Background(), GenerateRoadmapInput{
		UserID: "u1", Title: "Go", MonthsAllocated: 1, HoursPerDay: 1, StartDate: "2024-03-04", SkillLevel: intPtr(0),
	})
	var mp *apperr.MalformedPlanError
	require.ErrorAs(t, err, &mp)

	entries := logs.FilterMessage("malformed roadmap plan").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "sorry, I cannot do that", entries[0].ContextMap()["raw"])
}

func TestRoadmapService_Generate_ArchivedRawNotLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	gen := &MockGenerator{}
	gen.On("GenerateRoadmap", mock.Anything, mock.Anything).Return("nope", nil)
	arch := &MockArchiver{}
	arch.On("ArchiveRawPlan", mock.Anything, "u1", "nope").Return("malformed-plans/u1/y.txt", nil)
	svc := NewRoadmapService(RoadmapDeps{Repo: &MockRoadmapRepo{}, Generator: gen, Archiver: arch, Log: zap.New(core)})

	_, err := svc.Generate(context.Background(), GenerateRoadmapInput{
		UserID: "u1", Title: "Go", MonthsAllocated: 1, HoursPerDay: 1, StartDate: "2024-03-04", SkillLevel: intPtr(0),
	})
	require.Error(t, err)

	entries := logs.FilterMessage("malformed roadmap plan").All()
	require.Len(t, entries, 1)
	_, hasRaw := entries[0].ContextMap()["raw"]
	assert.False(t, hasRaw)
	assert.Equal(t, "malformed-plans/u1/y.txt", entries[0].ContextMap()["archive_key"])
}

func TestTruncateRaw(t *testing.T) {
	assert.Equal(t, "short", truncateRaw("short"))
	long := strings.Repeat("x", maxLoggedRaw+10)
	got := truncateRaw(long)
	assert.True(t, strings.HasPrefix(got, strings.Repeat("x", maxLoggedRaw)))
	assert.True(t, strings.HasSuffix(got, "...(truncated)"))
}

func TestRoadmapService_Generate_PlanNotArrayIsMalformed(t *testing.T) {
	m := newRoadmapMocks()
	raw := `{"isFeasible": true, "plan": "study every day"}`
	m.gen.On("GenerateRoadmap", mock.Anything, mock.Anything).Return(raw, nil)
	m.arch.On("ArchiveRawPlan", mock.Anything, "u1", raw).Return("malformed-plans/u1/z.txt", nil)

	_, err := m.service().Generate(context.Background(), GenerateRoadmapInput{
		UserID: "u1", Title: "Go", MonthsAllocated: 1, HoursPerDay: 1, StartDate: "2024-03-04", SkillLevel: intPtr(0),
	})
	var mp *apperr.MalformedPlanError
	require.ErrorAs(t, err, &mp)
	assert.Equal(t, raw, mp.Raw)
	assert.Equal(t, "malformed-plans/u1/z.txt", mp.ArchiveKey)
	m.drafts.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
}

func TestRoadmapService_Generate_Validation(t *testing.T) {
	m := newRoadmapMocks()
	svc := m.service()

	_, err := svc.Generate(context.Background(), GenerateRoadmapInput{UserID: "u1", Title: "Go"})
	require.True(t, apperr.IsValidation(err))
	assert.Contains(t, err.Error(), "skill_level")

	_, err = svc.Generate(context.Background(), GenerateRoadmapInput{
		UserID: "u1", Title: "Go", MonthsAllocated: 1, HoursPerDay: 1, StartDate: "2024-03-04", SkillLevel: intPtr(5),
	})
	assert.True(t, apperr.IsValidation(err))

	m.gen.AssertNotCalled(t, "GenerateRoadmap", mock.Anything, mock.Anything)
}

func TestRoadmapService_Confirm_PartialIngestion(t *testing.T) {
	m := newRoadmapMocks()
	d1 := datex.MustParse("2024-03-04")
	d2 := datex.MustParse("2024-03-05")
	ok1 := uuid.New()

	m.repo.On("Create", mock.Anything, mock.MatchedBy(func(rm *model.Roadmap) bool {
		return rm.UserID == "u1" && rm.Title == "Go" && rm.AIResponse["plan"] != nil
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*model.Roadmap).ID = uuid.New()
	}).Return(nil)
	m.repo.On("IngestDate", mock.Anything, mock.Anything, d1, "basics", []string{"tour", "slices"}).
		Return(&repo.IngestResult{Date: d1, TaskIDs: []uuid.UUID{ok1}, Failed: []repo.TaskFailure{{Title: "slices", Err: errors.New("constraint")}}}, nil)
	m.repo.On("IngestDate", mock.Anything, mock.Anything, d2, "maps", []string{"maps"}).
		Return(nil, errors.New("deadlock"))
	m.events.On("Publish", mock.Anything, EventRoadmapConfirmed, mock.Anything).Return(nil)

	payload := map[string]any{
		"plan": []any{
			map[string]any{"date": "2024-03-04", "topic": "basics", "tasks": []any{"tour", "slices"}},
			map[string]any{"date": "not a date", "tasks": []any{"x"}},
			map[string]any{"date": "2024-03-05", "topic": "maps", "tasks": []any{"maps"}},
			map[string]any{"date": "2024-03-06", "tasks": "read everything"},
		},
	}

	out, err := m.service().Confirm(context.Background(), ConfirmRoadmapInput{
		UserID:          "u1",
		Title:           "Go",
		SkillLevel:      intPtr(1),
		MonthsAllocated: intPtr(2),
		HoursPerDay:     floatPtr(1),
		AIResponse:      payload,
	})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{ok1}, out.Roadmap.TaskIDs)
	assert.Equal(t, 4, out.Summary.Entries)
	assert.Equal(t, 1, out.Summary.DatesIngested)
	assert.Equal(t, 1, out.Summary.TasksCreated)
	assert.Len(t, out.Summary.SkippedEntries, 2)
	assert.Len(t, out.Summary.FailedDates, 1)
	assert.Len(t, out.Summary.FailedTasks, 1)
	m.repo.AssertExpectations(t)
	m.events.AssertExpectations(t)
}

func TestRoadmapService_Confirm_PlanMustBeArray(t *testing.T) {
	m := newRoadmapMocks()
	_, err := m.service().Confirm(context.Background(), ConfirmRoadmapInput{
		UserID:          "u1",
		Title:           "Go",
		SkillLevel:      intPtr(1),
		MonthsAllocated: intPtr(2),
		HoursPerDay:     floatPtr(1),
		AIResponse:      map[string]any{"plan": "tomorrow"},
	})
	require.True(t, apperr.IsValidation(err))
	assert.Contains(t, err.Error(), "ai_response.plan")
	m.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRoadmapService_Confirm_RawTextIsRepaired(t *testing.T) {
	m := newRoadmapMocks()
	d := datex.MustParse("2024-03-04")
	m.repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	m.repo.On("IngestDate", mock.Anything, mock.Anything, d, "basics", []string{"tour", "slices"}).
		Return(&repo.IngestResult{Date: d, TaskIDs: []uuid.UUID{uuid.New(), uuid.New()}}, nil)
	m.events.On("Publish", mock.Anything, EventRoadmapConfirmed, mock.Anything).Return(errors.New("broker down"))

	out, err := m.service().Confirm(context.Background(), ConfirmRoadmapInput{
		UserID:          "u1",
		Title:           "Go",
		SkillLevel:      intPtr(1),
		MonthsAllocated: intPtr(2),
		HoursPerDay:     floatPtr(1),
		AIResponse:      fencedPlan,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Summary.TasksCreated)
}

func TestRoadmapService_Confirm_FromDraft(t *testing.T) {
	m := newRoadmapMocks()
	d := datex.MustParse("2024-03-04")
	m.drafts.On("Get", mock.Anything, "u1", "rd_abc").Return(&RoadmapDraft{
		Title:           "Go",
		SkillLevel:      2,
		MonthsAllocated: 3,
		HoursPerDay:     2,
		AIResponse: map[string]any{"plan": []any{
			map[string]any{"date": "2024-03-04", "topic": "basics", "tasks": []any{"tour"}},
		}},
	}, nil)
	m.drafts.On("Delete", mock.Anything, "u1", "rd_abc").Return(nil)
	m.repo.On("Create", mock.Anything, mock.MatchedBy(func(rm *model.Roadmap) bool {
		return rm.SkillLevel == 2 && rm.MonthsAllocated == 3 && rm.Title == "Go"
	})).Return(nil)
	m.repo.On("IngestDate", mock.Anything, mock.Anything, d, "basics", []string{"tour"}).
		Return(&repo.IngestResult{Date: d, TaskIDs: []uuid.UUID{uuid.New()}}, nil)
	m.events.On("Publish", mock.Anything, EventRoadmapConfirmed, mock.Anything).Return(nil)

	out, err := m.service().Confirm(context.Background(), ConfirmRoadmapInput{UserID: "u1", DraftID: "rd_abc"})
	require.NoError(t, err)
	assert.Len(t, out.Roadmap.TaskIDs, 1)
	m.drafts.AssertExpectations(t)
}

func TestRoadmapService_Confirm_DraftWithoutStore(t *testing.T) {
	svc := NewRoadmapService(RoadmapDeps{Repo: &MockRoadmapRepo{}, Log: zap.NewNop()})
	_, err := svc.Confirm(context.Background(), ConfirmRoadmapInput{UserID: "u1", DraftID: "rd_abc"})
	assert.True(t, apperr.IsValidation(err))
}

func TestRoadmapService_List(t *testing.T) {
	m := newRoadmapMocks()
	now := time.Now().UTC()
	items := []*model.Roadmap{
		{ID: uuid.New(), CreatedAt: now},
		{ID: uuid.New(), CreatedAt: now.Add(-time.Minute)},
		{ID: uuid.New(), CreatedAt: now.Add(-2 * time.Minute)},
	}
	m.repo.On("ListWithCursor", mock.Anything, "u1", time.Time{}, uuid.Nil, 3).Return(items, nil)

	out, err := m.service().List(context.Background(), ListRoadmapsInput{UserID: "u1", Limit: 2})
	require.NoError(t, err)
	assert.True(t, out.HasMore)
	assert.Len(t, out.Items, 2)

	ts, id, err := paging.DecodeCursor(out.NextCursor)
	require.NoError(t, err)
	assert.Equal(t, items[1].ID, id)
	assert.True(t, ts.Equal(items[1].CreatedAt))

	_, err = m.service().List(context.Background(), ListRoadmapsInput{UserID: "u1", Cursor: "%%%"})
	assert.True(t, apperr.IsValidation(err))
}

func TestRoadmapService_UpdateAndDelete(t *testing.T) {
	m := newRoadmapMocks()
	id := uuid.New()
	m.repo.On("Update", mock.Anything, "u1", id, mock.MatchedBy(func(p repo.RoadmapPatch) bool {
		return p.Title != nil && *p.Title == "Golang" && p.UpdatedBy == "u1" && p.AIResponse == nil
	})).Return(&model.Roadmap{ID: id, Title: "Golang"}, nil)
	m.repo.On("Delete", mock.Anything, "u1", id).Return(4, nil)

	svc := m.service()
	rm, err := svc.Update(context.Background(), UpdateRoadmapInput{UserID: "u1", RoadmapID: id, Title: strPtr("Golang")})
	require.NoError(t, err)
	assert.Equal(t, "Golang", rm.Title)

	_, err = svc.Update(context.Background(), UpdateRoadmapInput{UserID: "u1", RoadmapID: id, HoursPerDay: floatPtr(30)})
	assert.True(t, apperr.IsValidation(err))

	n, err := svc.Delete(context.Background(), "u1", id)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	m.repo.AssertExpectations(t)
}
