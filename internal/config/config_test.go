package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DIALECT", "")
	t.Setenv("DB_DSN", "")
	t.Setenv("SMTP_HOST", "")
	t.Setenv("EMAIL_TRANSPORT", "")
	t.Setenv("RESET_TOKEN_TTL", "")
	t.Setenv("CHAT_CONTEXT_WINDOW_SIZE", "")

	cfg := Load()

	assert.Equal(t, "mysql", cfg.DBDialect)
	assert.Contains(t, cfg.DBDSN, "tcp(127.0.0.1:3306)")
	assert.Equal(t, time.Hour, cfg.ResetTokenTTL)
	assert.Equal(t, 20, cfg.ChatContextWindowSize)
	assert.Equal(t, "log", cfg.EmailTransport)
	assert.Equal(t, 1024, cfg.AIMaxTokens)
	assert.InDelta(t, 0.7, cfg.AITemperature, 1e-9)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DIALECT", "SQLite")
	t.Setenv("DB_DSN", "")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("EMAIL_TRANSPORT", "")
	t.Setenv("RESET_TOKEN_TTL", "1800")
	t.Setenv("RESET_REQUEST_COOLDOWN", "5m")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("FRONTEND_BASE_URL", "https://luna.test/")

	cfg := Load()

	assert.Equal(t, "sqlite", cfg.DBDialect)
	assert.Equal(t, "luna.db", cfg.DBDSN)
	assert.Equal(t, "smtp", cfg.EmailTransport)
	assert.Equal(t, 30*time.Minute, cfg.ResetTokenTTL)
	assert.Equal(t, 5*time.Minute, cfg.ResetRequestCooldown)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, "https://luna.test", cfg.FrontendBaseURL)
}
