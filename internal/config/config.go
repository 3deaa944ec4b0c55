package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/fx"
)

var Module = fx.Module("config",
	fx.Provide(NewConfig),
)

// Config holds all application configuration
type Config struct {
	// Server settings
	ServerPort    int    `env:"SERVER_PORT" envDefault:"5310"`
	ServerAddress string `env:"SERVER_ADDRESS" envDefault:"0.0.0.0"`
	Environment   string `env:"ENVIRONMENT" envDefault:"local"`
	Debug         bool   `env:"DEBUG" envDefault:"false"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`

	// Database settings
	Database DatabaseConfig

	// LLM configuration (inference job)
	LLM LLMConfig

	// Background analysis job configuration
	Jobs JobsConfig

	// Sync coordinator configuration
	Sync SyncConfig

	// Canvas adapter configuration
	Canvas CanvasConfig

	// Server timeouts
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"120s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host         string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port         int           `env:"POSTGRES_PORT" envDefault:"5432"`
	User         string        `env:"POSTGRES_USER" envDefault:"ontoscope"`
	Password     string        `env:"POSTGRES_PASSWORD" envDefault:""`
	Database     string        `env:"POSTGRES_DB" envDefault:"ontoscope"`
	SSLMode      string        `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	MaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	MaxIdleTime  time.Duration `env:"DB_MAX_IDLE_TIME" envDefault:"5m"`
	QueryDebug   bool          `env:"DB_QUERY_DEBUG" envDefault:"false"`
}

// DSN returns the PostgreSQL connection string
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode,
	)
}

// LLMConfig holds LLM provider configuration for the inference job
type LLMConfig struct {
	// APIKey for the provider (model prefix selects OpenAI/Anthropic/Gemini)
	APIKey string `env:"LLM_API_KEY" envDefault:""`

	// Model name, e.g. "gpt-4.1-mini", "claude-sonnet-4-5", "gemini-2.5-flash"
	Model string `env:"LLM_MODEL" envDefault:"gpt-4.1-mini"`

	// BaseURL overrides the provider endpoint (for proxies)
	BaseURL string `env:"LLM_BASE_URL" envDefault:""`

	// MaxTokens for completions
	MaxTokens int `env:"LLM_MAX_TOKENS" envDefault:"8192"`

	// Temperature for completions (0.0-1.0)
	Temperature float64 `env:"LLM_TEMPERATURE" envDefault:"0"`

	// Timeout per completion request
	Timeout time.Duration `env:"LLM_TIMEOUT" envDefault:"120s"`
}

// IsEnabled returns true if the LLM provider is configured
func (l *LLMConfig) IsEnabled() bool {
	return l.APIKey != "" && l.Model != ""
}

// JobsConfig holds background analysis job settings
type JobsConfig struct {
	// Enabled controls whether the recurring timeline runs at all;
	// manual triggers work regardless.
	Enabled bool `env:"JOBS_ENABLED" envDefault:"true"`

	// Default schedules per job type (cron expressions or @every intervals)
	FullAnalysisSchedule string `env:"JOBS_FULL_SCHEDULE" envDefault:"@every 6h"`
	InferenceSchedule    string `env:"JOBS_INFERENCE_SCHEDULE" envDefault:"@every 24h"`
	DedupSchedule        string `env:"JOBS_DEDUP_SCHEDULE" envDefault:"@every 24h"`
	AutoApproveSchedule  string `env:"JOBS_AUTO_APPROVE_SCHEDULE" envDefault:"@every 1h"`
	GapDetectionSchedule string `env:"JOBS_GAPS_SCHEDULE" envDefault:"@every 12h"`

	// AutoApproveThreshold is the minimum confidence for automatic approval
	AutoApproveThreshold float64 `env:"JOBS_AUTO_APPROVE_THRESHOLD" envDefault:"0.9"`

	// ExecutionLogLimit is the default page size for execution log reads
	ExecutionLogLimit int `env:"JOBS_EXECUTION_LOG_LIMIT" envDefault:"50"`

	// ExecutionRetention is how many executions to keep per job type
	ExecutionRetention int `env:"JOBS_EXECUTION_RETENTION" envDefault:"200"`

	// ComplianceSampleSize bounds the instance scan per validation run
	// (0 = full scan)
	ComplianceSampleSize int `env:"JOBS_COMPLIANCE_SAMPLE_SIZE" envDefault:"0"`
}

// SyncConfig holds sync coordinator settings
type SyncConfig struct {
	// ListenEnabled starts the live-change subscription on boot
	ListenEnabled bool `env:"SYNC_LISTEN_ENABLED" envDefault:"true"`

	// ListenInterval is the poll interval for the change subscription
	ListenInterval time.Duration `env:"SYNC_LISTEN_INTERVAL" envDefault:"15s"`
}

// CanvasConfig holds canvas adapter settings
type CanvasConfig struct {
	// Renderer selects the scene payload variant: "cosmograph" or "forcegraph"
	Renderer string `env:"CANVAS_RENDERER" envDefault:"cosmograph"`

	// NodeLimit is the default cap on fetched nodes per canvas load
	NodeLimit int `env:"CANVAS_NODE_LIMIT" envDefault:"500"`
}

// NewConfig loads configuration from environment variables
func NewConfig(log *slog.Logger) (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	log.Info("configuration loaded",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.ServerPort),
		slog.String("db_host", cfg.Database.Host),
		slog.String("canvas_renderer", cfg.Canvas.Renderer),
	)

	return cfg, nil
}
