package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/daystreak/api/internal/modules/model"
	"github.com/daystreak/api/internal/modules/service"
	"github.com/daystreak/api/internal/pkg/datex"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

const testUserID = "user-1"

type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) Create(ctx context.Context, in service.CreateTaskInput) (*service.TaskResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TaskResult), args.Error(1)
}

func (m *MockTaskService) Update(ctx context.Context, in service.UpdateTaskInput) (*service.TaskResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TaskResult), args.Error(1)
}

func (m *MockTaskService) Delete(ctx context.Context, userID string, taskID uuid.UUID) error {
	args := m.Called(ctx, userID, taskID)
	return args.Error(0)
}

func (m *MockTaskService) ListByDate(ctx context.Context, userID string, date string) (*service.DayTasks, error) {
	args := m.Called(ctx, userID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DayTasks), args.Error(1)
}

type MockDayService struct {
	mock.Mock
}

func (m *MockDayService) Get(ctx context.Context, userID string, date string) (*service.DayDetail, error) {
	args := m.Called(ctx, userID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DayDetail), args.Error(1)
}

func (m *MockDayService) SetStatus(ctx context.Context, in service.SetStatusInput) (*model.Day, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Day), args.Error(1)
}

func (m *MockDayService) RecordStatus(ctx context.Context, in service.SetStatusInput) (*service.RecordStatusOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RecordStatusOutput), args.Error(1)
}

func (m *MockDayService) Recompute(ctx context.Context, userID string, date string) (*model.Day, error) {
	args := m.Called(ctx, userID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Day), args.Error(1)
}

func (m *MockDayService) RecomputeDate(ctx context.Context, date datex.Date) (int, error) {
	args := m.Called(ctx, date)
	return args.Int(0), args.Error(1)
}

func (m *MockDayService) Streak(ctx context.Context, userID string, asOf string) (*service.StreakOutput, error) {
	args := m.Called(ctx, userID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.StreakOutput), args.Error(1)
}

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) LineChart(ctx context.Context, userID, start, end string) ([]service.LineChartEntry, error) {
	args := m.Called(ctx, userID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.LineChartEntry), args.Error(1)
}

func (m *MockReportService) PieChart(ctx context.Context, userID, start, end string, status *model.DayStatus) (*service.PieChart, error) {
	args := m.Called(ctx, userID, start, end, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PieChart), args.Error(1)
}

type MockRoadmapService struct {
	mock.Mock
}

func (m *MockRoadmapService) Generate(ctx context.Context, in service.GenerateRoadmapInput) (*service.RoadmapDraft, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RoadmapDraft), args.Error(1)
}

func (m *MockRoadmapService) Confirm(ctx context.Context, in service.ConfirmRoadmapInput) (*service.ConfirmRoadmapOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ConfirmRoadmapOutput), args.Error(1)
}

func (m *MockRoadmapService) Get(ctx context.Context, userID string, roadmapID uuid.UUID) (*model.Roadmap, error) {
	args := m.Called(ctx, userID, roadmapID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Roadmap), args.Error(1)
}

func (m *MockRoadmapService) List(ctx context.Context, in service.ListRoadmapsInput) (*service.ListRoadmapsOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListRoadmapsOutput), args.Error(1)
}

func (m *MockRoadmapService) Update(ctx context.Context, in service.UpdateRoadmapInput) (*model.Roadmap, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Roadmap), args.Error(1)
}

func (m *MockRoadmapService) Delete(ctx context.Context, userID string, roadmapID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID, roadmapID)
	return args.Int(0), args.Error(1)
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// withUser mimics the identity middleware.
func withUser(h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", testUserID)
		h(c)
	}
}

func doRequest(r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(w *httptest.ResponseRecorder) (map[string]interface{}, error) {
	var response map[string]interface{}
	err := sonic.Unmarshal(w.Body.Bytes(), &response)
	return response, err
}
