package service

import (
	"context"
	"time"

	"github.com/daystreak/api/internal/infra/httpclient"
	"github.com/daystreak/api/internal/modules/model"
	"github.com/daystreak/api/internal/modules/repo"
	"github.com/daystreak/api/internal/pkg/datex"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockDayRepo is a mock implementation of repo.DayRepo
type MockDayRepo struct {
	mock.Mock
}

func (m *MockDayRepo) UpsertForTasks(ctx context.Context, userID string, date datex.Date, taskIDs ...uuid.UUID) (*model.Day, error) {
	args := m.Called(ctx, userID, date, taskIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Day), args.Error(1)
}

func (m *MockDayRepo) Get(ctx context.Context, userID string, date datex.Date) (*model.Day, error) {
	args := m.Called(ctx, userID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Day), args.Error(1)
}

func (m *MockDayRepo) Tasks(ctx context.Context, dayID uuid.UUID) ([]model.Task, error) {
	args := m.Called(ctx, dayID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockDayRepo) FindPrevious(ctx context.Context, userID string, date datex.Date) (*model.Day, error) {
	args := m.Called(ctx, userID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Day), args.Error(1)
}

func (m *MockDayRepo) Latest(ctx context.Context, userID string, asOf datex.Date) (*model.Day, error) {
	args := m.Called(ctx, userID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Day), args.Error(1)
}

func (m *MockDayRepo) SaveStatus(ctx context.Context, userID string, date datex.Date, upd repo.StatusUpdate) (*model.Day, error) {
	args := m.Called(ctx, userID, date, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Day), args.Error(1)
}

func (m *MockDayRepo) UpsertStatus(ctx context.Context, userID string, date datex.Date, upd repo.StatusUpdate) (*model.Day, error) {
	args := m.Called(ctx, userID, date, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Day), args.Error(1)
}

func (m *MockDayRepo) ListRange(ctx context.Context, userID string, start, end datex.Date) ([]model.Day, error) {
	args := m.Called(ctx, userID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Day), args.Error(1)
}

func (m *MockDayRepo) ListByDate(ctx context.Context, date datex.Date) ([]model.Day, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Day), args.Error(1)
}

// MockTaskRepo is a mock implementation of repo.TaskRepo
type MockTaskRepo struct {
	mock.Mock
}

func (m *MockTaskRepo) Create(ctx context.Context, t *model.Task) (*model.Day, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Day), args.Error(1)
}

func (m *MockTaskRepo) Get(ctx context.Context, userID string, taskID uuid.UUID) (*model.Task, error) {
	args := m.Called(ctx, userID, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockTaskRepo) Update(ctx context.Context, userID string, taskID uuid.UUID, patch repo.TaskPatch) (*model.Task, *model.Day, error) {
	args := m.Called(ctx, userID, taskID, patch)
	var t *model.Task
	var d *model.Day
	if v := args.Get(0); v != nil {
		t = v.(*model.Task)
	}
	if v := args.Get(1); v != nil {
		d = v.(*model.Day)
	}
	return t, d, args.Error(2)
}

func (m *MockTaskRepo) Delete(ctx context.Context, userID string, taskID uuid.UUID) error {
	args := m.Called(ctx, userID, taskID)
	return args.Error(0)
}

func (m *MockTaskRepo) ListByUserDate(ctx context.Context, userID string, date datex.Date) ([]model.Task, error) {
	args := m.Called(ctx, userID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Task), args.Error(1)
}

// MockRoadmapRepo is a mock implementation of repo.RoadmapRepo
type MockRoadmapRepo struct {
	mock.Mock
}

func (m *MockRoadmapRepo) Create(ctx context.Context, rm *model.Roadmap) error {
	args := m.Called(ctx, rm)
	return args.Error(0)
}

func (m *MockRoadmapRepo) IngestDate(ctx context.Context, rm *model.Roadmap, date datex.Date, topic string, titles []string) (*repo.IngestResult, error) {
	args := m.Called(ctx, rm, date, topic, titles)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repo.IngestResult), args.Error(1)
}

func (m *MockRoadmapRepo) Get(ctx context.Context, userID string, roadmapID uuid.UUID) (*model.Roadmap, error) {
	args := m.Called(ctx, userID, roadmapID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Roadmap), args.Error(1)
}

func (m *MockRoadmapRepo) ListWithCursor(ctx context.Context, userID string, afterCreatedAt time.Time, afterID uuid.UUID, limit int) ([]*model.Roadmap, error) {
	args := m.Called(ctx, userID, afterCreatedAt, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Roadmap), args.Error(1)
}

func (m *MockRoadmapRepo) Update(ctx context.Context, userID string, roadmapID uuid.UUID, patch repo.RoadmapPatch) (*model.Roadmap, error) {
	args := m.Called(ctx, userID, roadmapID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Roadmap), args.Error(1)
}

func (m *MockRoadmapRepo) Delete(ctx context.Context, userID string, roadmapID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID, roadmapID)
	return args.Int(0), args.Error(1)
}

// MockGenerator is a mock implementation of RoadmapGenerator
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) GenerateRoadmap(ctx context.Context, p httpclient.RoadmapPrompt) (string, error) {
	args := m.Called(ctx, p)
	return args.String(0), args.Error(1)
}

// MockDraftStore is a mock implementation of DraftStore
type MockDraftStore struct {
	mock.Mock
}

func (m *MockDraftStore) Put(ctx context.Context, userID string, d *RoadmapDraft) (string, error) {
	args := m.Called(ctx, userID, d)
	return args.String(0), args.Error(1)
}

func (m *MockDraftStore) Get(ctx context.Context, userID, draftID string) (*RoadmapDraft, error) {
	args := m.Called(ctx, userID, draftID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RoadmapDraft), args.Error(1)
}

func (m *MockDraftStore) Delete(ctx context.Context, userID, draftID string) error {
	args := m.Called(ctx, userID, draftID)
	return args.Error(0)
}

// MockArchiver is a mock implementation of PlanArchiver
type MockArchiver struct {
	mock.Mock
}

func (m *MockArchiver) ArchiveRawPlan(ctx context.Context, userID, raw string) (string, error) {
	args := m.Called(ctx, userID, raw)
	return args.String(0), args.Error(1)
}

// MockPublisher is a mock implementation of EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, eventType string, payload any) error {
	args := m.Called(ctx, eventType, payload)
	return args.Error(0)
}

func newDay(date string, status model.DayStatus, streak int) *model.Day {
	return &model.Day{ID: uuid.New(), UserID: "u1", Date: datex.MustParse(date), Status: status, Streak: streak}
}

func statusPtr(s model.DayStatus) *model.DayStatus { return &s }
func intPtr(i int) *int                            { return &i }
func floatPtr(f float64) *float64                  { return &f }
func strPtr(s string) *string                      { return &s }
