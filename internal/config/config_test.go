package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "rest", cfg.Source.Driver)
	assert.Equal(t, "submissions", cfg.Source.Table)
	assert.Equal(t, "completed", cfg.Source.CompletedStatus)
	assert.Equal(t, 30, cfg.Source.TimeoutSecs)
	assert.InDelta(t, 5.0, cfg.Source.WriteRateLimit, 0.001)
	assert.Equal(t, "optimistic", cfg.Dashboard.StatusPolicy)
	assert.Equal(t, 30, cfg.Dashboard.TrendDays)
	assert.Equal(t, "food-truck-survey-export", cfg.Export.Prefix)
	assert.Equal(t, 10, cfg.Monitoring.MinResponses)
	assert.Equal(t, 5, cfg.Monitoring.MaxOverdue)
	assert.InDelta(t, 3.0, cfg.Notion.RateLimit, 0.001)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
source:
  driver: sqlite
  database_url: survey.db
log:
  level: debug
  format: console
server:
  port: 9090
monitoring:
  min_score: 20
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Source.Driver)
	assert.Equal(t, "survey.db", cfg.Source.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 20, cfg.Monitoring.MinScore)
	// Defaults still apply for unset values
	assert.Equal(t, "submissions", cfg.Source.Table)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
source:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("NPS_SOURCE_DRIVER", "postgres")
	t.Setenv("NPS_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Source.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("NPS_SERVER_PORT", "3000")
	t.Setenv("NPS_SOURCE_TABLE", "survey_submissions")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "survey_submissions", cfg.Source.Table)
}

func TestLoadEnvOnlyCredentials(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("NPS_SOURCE_URL", "https://abc.supabase.co")
	t.Setenv("NPS_SOURCE_API_KEY", "anon-key")
	t.Setenv("NPS_SOURCE_DATABASE_URL", "postgres://localhost/nps")
	t.Setenv("NPS_MONITORING_WEBHOOK_URL", "https://hooks.example.com/nps")
	t.Setenv("NPS_NOTION_TOKEN", "secret_abc")
	t.Setenv("NPS_NOTION_FOLLOW_UP_DB", "db-123")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://abc.supabase.co", cfg.Source.URL)
	assert.Equal(t, "anon-key", cfg.Source.APIKey)
	assert.Equal(t, "postgres://localhost/nps", cfg.Source.DatabaseURL)
	assert.Equal(t, "https://hooks.example.com/nps", cfg.Monitoring.WebhookURL)
	assert.Equal(t, "secret_abc", cfg.Notion.Token)
	assert.Equal(t, "db-123", cfg.Notion.FollowUpDB)
	assert.NoError(t, cfg.Validate("escalate"))
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("source: [unclosed"), 0644))

	_, err := Load()
	assert.Error(t, err)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with a working REST source for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Source.Driver = "rest"
	cfg.Source.URL = "https://example.supabase.co"
	cfg.Source.APIKey = "anon-key"
	cfg.Dashboard.StatusPolicy = "optimistic"
	cfg.Server.Port = 8080
	return cfg
}

func TestValidateSource_REST(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("source"))

	cfg.Source.URL = ""
	cfg.Source.APIKey = ""
	err := cfg.Validate("source")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "source.url is required")
	assert.Contains(t, err.Error(), "source.api_key is required")
}

func TestValidateSource_Postgres(t *testing.T) {
	cfg := validDefaults()
	cfg.Source.Driver = "postgres"

	err := cfg.Validate("source")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "source.database_url is required")

	cfg.Source.DatabaseURL = "postgres://localhost/survey"
	assert.NoError(t, cfg.Validate("source"))
}

func TestValidateSource_UnknownDriver(t *testing.T) {
	cfg := validDefaults()
	cfg.Source.Driver = "mongo"

	err := cfg.Validate("source")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "source.driver must be")
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateAlert_MissingWebhook(t *testing.T) {
	cfg := validDefaults()

	err := cfg.Validate("alert")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "monitoring.webhook_url is required")

	cfg.Monitoring.WebhookURL = "https://hooks.example.com/nps"
	assert.NoError(t, cfg.Validate("alert"))
}

func TestValidateEscalate_MissingNotion(t *testing.T) {
	cfg := validDefaults()

	err := cfg.Validate("escalate")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "notion.token is required")
	assert.Contains(t, err.Error(), "notion.follow_up_db is required")

	cfg.Notion.Token = "ntn_token"
	cfg.Notion.FollowUpDB = "db-id"
	assert.NoError(t, cfg.Validate("escalate"))
}

func TestValidateStatusPolicy(t *testing.T) {
	cfg := validDefaults()
	cfg.Dashboard.StatusPolicy = "sometimes"

	err := cfg.Validate("source")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "dashboard.status_policy")
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
