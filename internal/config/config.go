package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Source     SourceConfig     `yaml:"source" mapstructure:"source"`
	Dashboard  DashboardConfig  `yaml:"dashboard" mapstructure:"dashboard"`
	Export     ExportConfig     `yaml:"export" mapstructure:"export"`
	Monitoring MonitoringConfig `yaml:"monitoring" mapstructure:"monitoring"`
	Notion     NotionConfig     `yaml:"notion" mapstructure:"notion"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// SourceConfig selects and configures the survey data backend.
// Driver is one of "rest" (Supabase PostgREST), "postgres" or "sqlite".
type SourceConfig struct {
	Driver          string  `yaml:"driver" mapstructure:"driver"`
	URL             string  `yaml:"url" mapstructure:"url"`
	APIKey          string  `yaml:"api_key" mapstructure:"api_key"`
	DatabaseURL     string  `yaml:"database_url" mapstructure:"database_url"`
	Table           string  `yaml:"table" mapstructure:"table"`
	CompletedStatus string  `yaml:"completed_status" mapstructure:"completed_status"`
	TimeoutSecs     int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	WriteRateLimit  float64 `yaml:"write_rate_limit" mapstructure:"write_rate_limit"`
}

// DashboardConfig configures in-memory dashboard behavior.
type DashboardConfig struct {
	// StatusPolicy is "optimistic" (keep local edits when the remote
	// write fails) or "strict" (revert them).
	StatusPolicy string `yaml:"status_policy" mapstructure:"status_policy"`
	TrendDays    int    `yaml:"trend_days" mapstructure:"trend_days"`
}

// ExportConfig configures file exports.
type ExportConfig struct {
	Dir    string `yaml:"dir" mapstructure:"dir"`
	Prefix string `yaml:"prefix" mapstructure:"prefix"`
}

// MonitoringConfig holds alert thresholds and delivery settings.
type MonitoringConfig struct {
	WebhookURL   string `yaml:"webhook_url" mapstructure:"webhook_url"`
	MinScore     int    `yaml:"min_score" mapstructure:"min_score"`
	MinResponses int    `yaml:"min_responses" mapstructure:"min_responses"`
	MaxCritical  int    `yaml:"max_critical" mapstructure:"max_critical"`
	MaxOverdue   int    `yaml:"max_overdue" mapstructure:"max_overdue"`

	// CheckIntervalSecs enables periodic checks while serving; 0 disables.
	CheckIntervalSecs int `yaml:"check_interval_secs" mapstructure:"check_interval_secs"`
}

// NotionConfig holds Notion API credentials for the follow-up board.
type NotionConfig struct {
	Token      string  `yaml:"token" mapstructure:"token"`
	FollowUpDB string  `yaml:"follow_up_db" mapstructure:"follow_up_db"`
	RateLimit  float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// ServerConfig configures the dashboard API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// envOnlyKeys are the settings with no default, usually credentials.
var envOnlyKeys = []string{
	"source.url",
	"source.api_key",
	"source.database_url",
	"monitoring.webhook_url",
	"notion.token",
	"notion.follow_up_db",
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("NPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Keys without defaults are invisible to Unmarshal unless bound.
	for _, key := range envOnlyKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, eris.Wrapf(err, "config: bind env %s", key)
		}
	}

	// Defaults
	v.SetDefault("source.driver", "rest")
	v.SetDefault("source.table", "submissions")
	v.SetDefault("source.completed_status", "completed")
	v.SetDefault("source.timeout_secs", 30)
	v.SetDefault("source.write_rate_limit", 5)
	v.SetDefault("dashboard.status_policy", "optimistic")
	v.SetDefault("dashboard.trend_days", 30)
	v.SetDefault("export.dir", ".")
	v.SetDefault("export.prefix", "food-truck-survey-export")
	v.SetDefault("monitoring.min_score", 0)
	v.SetDefault("monitoring.min_responses", 10)
	v.SetDefault("monitoring.max_critical", 0)
	v.SetDefault("monitoring.max_overdue", 5)
	v.SetDefault("monitoring.check_interval_secs", 0)
	v.SetDefault("notion.rate_limit", 3)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
