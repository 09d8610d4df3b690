package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromYAML_DefaultsAndExpansion(t *testing.T) {
	t.Setenv("TEST_GEMINI_KEY", "secret-key")

	cfg, err := fromYAML(`
app:
  port: 9090
  timezone: Asia/Kolkata
ai:
  apiKey: "` + "${TEST_GEMINI_KEY}" + `"
scheduler:
  recomputeAt: "01:30"
`)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, "0.0.0.0", cfg.App.Host)
	// fromYAML receives already expanded text in Load; the literal stays here
	assert.Equal(t, "${TEST_GEMINI_KEY}", cfg.AI.APIKey)
	assert.Equal(t, "gemini-2.0-flash", cfg.AI.Model)
	assert.Equal(t, "01:30", cfg.Scheduler.RecomputeAt)
	assert.Equal(t, "roadmap_events", cfg.RabbitMQ.Queue)
	assert.Equal(t, time.Hour, cfg.DraftTTL())
	assert.Equal(t, "Asia/Kolkata", cfg.App.Timezone)
}

func TestFromYAML_EnvOverride(t *testing.T) {
	t.Setenv("APP_APP_PORT", "7070")

	cfg, err := fromYAML("app:\n  port: 9090\n")
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.App.Port)
}

func TestLocation_Fallback(t *testing.T) {
	cfg := &Config{App: AppCfg{Timezone: "Nowhere/Invalid"}}
	assert.Equal(t, time.UTC, cfg.Location())

	cfg.App.Timezone = ""
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestDraftTTL(t *testing.T) {
	cfg := &Config{Redis: RedisCfg{DraftTTLSec: 120}}
	assert.Equal(t, 2*time.Minute, cfg.DraftTTL())
}
