package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func setupRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.GET("/api/v1/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(UserIDKey))
	})
	r.GET("/boom", func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})
	return r
}

func TestIdentity(t *testing.T) {
	tests := []struct {
		name           string
		target         string
		header         string
		expectedStatus int
		expectedUser   string
	}{
		{name: "header", target: "/api/v1/whoami", header: "u-1", expectedStatus: http.StatusOK, expectedUser: "u-1"},
		{name: "query fallback", target: "/api/v1/whoami?user_id=u-2", expectedStatus: http.StatusOK, expectedUser: "u-2"},
		{name: "header wins over query", target: "/api/v1/whoami?user_id=u-2", header: "u-1", expectedStatus: http.StatusOK, expectedUser: "u-1"},
		{name: "blank header", target: "/api/v1/whoami", header: "   ", expectedStatus: http.StatusBadRequest},
		{name: "missing", target: "/api/v1/whoami", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupRouter(Identity())

			req := httptest.NewRequest("GET", tt.target, nil)
			if tt.header != "" {
				req.Header.Set(UserIDHeader, tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, tt.expectedUser, w.Body.String())
			}
		})
	}
}

func TestZapLogger_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	router := setupRouter(ZapLogger(zap.New(core)), Identity())

	req := httptest.NewRequest("GET", "/api/v1/whoami", nil)
	req.Header.Set(UserIDHeader, "u-1")
	router.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.TakeAll()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
		assert.Equal(t, "u-1", entries[0].ContextMap()["user_id"])
	}

	req = httptest.NewRequest("GET", "/boom", nil)
	req.Header.Set(UserIDHeader, "u-1")
	router.ServeHTTP(httptest.NewRecorder(), req)
	entries = logs.TakeAll()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	}
}

func TestTraceID_NoSpan(t *testing.T) {
	router := setupRouter(TraceID())

	req := httptest.NewRequest("GET", "/api/v1/whoami", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("X-Trace-Id"))
}

func TestTraceID_WithSpan(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	var want string
	startSpan := func(c *gin.Context) {
		ctx, span := tp.Tracer("test").Start(c.Request.Context(), "request")
		defer span.End()
		want = span.SpanContext().TraceID().String()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
	router := setupRouter(startSpan, TraceID())

	req := httptest.NewRequest("GET", "/api/v1/whoami", nil)
	req.Header.Set(UserIDHeader, "u-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.NotEmpty(t, want)
	assert.Equal(t, want, w.Header().Get("X-Trace-Id"))
}

func TestOtelTracing_OnlyAPIRoutes(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})

	markTraced := func(c *gin.Context) {
		if trace.SpanFromContext(c.Request.Context()).SpanContext().IsValid() {
			c.Header("X-Traced", "1")
		}
		c.Next()
	}
	router := setupRouter(OtelTracing("daystreak-test"), markTraced)

	tests := []struct {
		target string
		traced bool
	}{
		{target: "/api/v1/whoami", traced: true},
		{target: "/boom", traced: false},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.target, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.traced, w.Header().Get("X-Traced") == "1")
		})
	}
}
