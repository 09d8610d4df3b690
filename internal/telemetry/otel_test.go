package telemetry

import (
	"testing"

	"github.com/daystreak/api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestCollectorEndpoint(t *testing.T) {
	assert.Equal(t, "otel:4317", collectorEndpoint("http://otel:4317"))
	assert.Equal(t, "otel:4317", collectorEndpoint("https://otel:4317"))
	assert.Equal(t, "otel:4317", collectorEndpoint("otel:4317"))
}

func TestSamplerFor(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), samplerFor(0).Description())
	assert.Equal(t, sdktrace.AlwaysSample().Description(), samplerFor(1.5).Description())
	assert.Equal(t, sdktrace.TraceIDRatioBased(0.25).Description(), samplerFor(0.25).Description())
}

func TestSetupTracing_Disabled(t *testing.T) {
	tp, err := SetupTracing(&config.Config{Telemetry: config.TelemetryCfg{Enabled: true}})
	require.NoError(t, err)
	assert.Nil(t, tp)
}
