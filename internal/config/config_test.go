package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_Defaults(t *testing.T) {
	cfg := New()

	assert.Equal(t, "8088", cfg.Port)
	assert.Equal(t, 3000*time.Millisecond, cfg.DelayCfg.SoilAnalysis)
	assert.Equal(t, 3000*time.Millisecond, cfg.DelayCfg.CropAnalysis)
	assert.Equal(t, 1500*time.Millisecond, cfg.DelayCfg.ChatReply)
	assert.Equal(t, 2000*time.Millisecond, cfg.DelayCfg.ReportExtraction)
	assert.Equal(t, "memory", cfg.StoreCfg.Backend)
	assert.False(t, cfg.MinioCfg.Enabled)
	assert.Empty(t, cfg.GeminiAPICfg.APIKeys)
}

func TestNew_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("SOIL_ANALYSIS_DELAY_MS", "0")
	t.Setenv("CHAT_REPLY_DELAY_MS", "-20")
	t.Setenv("WORKER_COUNT", "not-a-number")
	t.Setenv("MINIO_ENABLED", "true")
	t.Setenv("GEMINI_KEYS", " key-a, ,key-b ")

	cfg := New()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, time.Duration(0), cfg.DelayCfg.SoilAnalysis)
	assert.Equal(t, time.Duration(0), cfg.DelayCfg.ChatReply, "negative delays clamp to zero")
	assert.Equal(t, 4, cfg.WorkerCfg.NumWorkers, "unparseable ints fall back to the default")
	assert.True(t, cfg.MinioCfg.Enabled)
	assert.Equal(t, []string{"key-a", "key-b"}, cfg.GeminiAPICfg.APIKeys)
}
