package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Gemini       GeminiConfig
	Forecast     ForecastConfig
	RateLimit    RateLimitConfig
	CORS         CORSConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Cron         CronConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env             string        `envconfig:"BIKURIM_APP_ENV" required:"true"`
	Port            string        `envconfig:"BIKURIM_APP_PORT" default:"5000"`
	LogLevel        string        `envconfig:"BIKURIM_LOG_LEVEL" default:"info"`
	LogFormat       string        `envconfig:"BIKURIM_LOG_FORMAT" default:"json"`
	LogWarnStack    bool          `envconfig:"BIKURIM_LOG_WARN_STACK" default:"false"`
	MaxBodyBytes    int64         `envconfig:"BIKURIM_MAX_BODY_BYTES" default:"6291456"`
	ShutdownTimeout time.Duration `envconfig:"BIKURIM_SHUTDOWN_TIMEOUT" default:"10s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

type ServiceConfig struct {
	Kind string `envconfig:"BIKURIM_SERVICE_KIND" default:"api"`
	// MetricsAddr is where the worker binaries serve /metrics. Empty
	// disables it; the API serves /metrics on its own port.
	MetricsAddr string `envconfig:"BIKURIM_METRICS_ADDR"`
}

type DBConfig struct {
	DSN string `envconfig:"BIKURIM_DB_DSN"`

	Host     string `envconfig:"BIKURIM_DB_HOST"`
	Port     int    `envconfig:"BIKURIM_DB_PORT" default:"5432"`
	User     string `envconfig:"BIKURIM_DB_USER"`
	Password string `envconfig:"BIKURIM_DB_PASSWORD"`
	Name     string `envconfig:"BIKURIM_DB_NAME"`
	SSLMode  string `envconfig:"BIKURIM_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BIKURIM_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BIKURIM_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BIKURIM_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BIKURIM_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	// SlowQuery is the duration above which a statement is logged at warn.
	SlowQuery time.Duration `envconfig:"BIKURIM_DB_SLOW_QUERY" default:"500ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BIKURIM_REDIS_URL"`
	Address      string        `envconfig:"BIKURIM_REDIS_ADDR"`
	Password     string        `envconfig:"BIKURIM_REDIS_PASSWORD"`
	DB           int           `envconfig:"BIKURIM_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BIKURIM_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BIKURIM_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BIKURIM_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BIKURIM_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"BIKURIM_REDIS_WRITE_TIMEOUT" default:"3s"`
}

// Enabled reports whether any redis endpoint is configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

// GeminiConfig holds the generative-AI credentials. The backup key is only
// used after the primary key is rate limited.
type GeminiConfig struct {
	APIKey        string        `envconfig:"BIKURIM_GOOGLE_API_KEY"`
	BackupAPIKey  string        `envconfig:"BIKURIM_GOOGLE_API_KEY_BACKUP"`
	BaseURL       string        `envconfig:"BIKURIM_GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com/v1beta"`
	TextModel     string        `envconfig:"BIKURIM_GEMINI_TEXT_MODEL" default:"gemini-2.0-flash"`
	VisionModel   string        `envconfig:"BIKURIM_GEMINI_VISION_MODEL" default:"gemini-1.5-flash"`
	Timeout       time.Duration `envconfig:"BIKURIM_GEMINI_TIMEOUT" default:"45s"`
	RetryDelay    time.Duration `envconfig:"BIKURIM_GEMINI_RETRY_DELAY" default:"2s"`
	CommentaryTTL time.Duration `envconfig:"BIKURIM_GEMINI_COMMENTARY_TTL" default:"6h"`
}

type ForecastConfig struct {
	DefaultDays       int     `envconfig:"BIKURIM_FORECAST_DEFAULT_DAYS" default:"30"`
	RiskThresholdDays float64 `envconfig:"BIKURIM_FORECAST_RISK_THRESHOLD_DAYS" default:"7"`
}

type RateLimitConfig struct {
	AIWindow time.Duration `envconfig:"BIKURIM_RATE_LIMIT_AI_WINDOW" default:"1m"`
	AILimit  int64         `envconfig:"BIKURIM_RATE_LIMIT_AI_LIMIT" default:"20"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"BIKURIM_CORS_ALLOWED_ORIGINS" default:"*"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"BIKURIM_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	DomainTopic string `envconfig:"BIKURIM_PUBSUB_DOMAIN_TOPIC" default:"bikurim-domain-events"`
	// Ordering publishes with the aggregate id as ordering key, so events of
	// one shopping list or product arrive in the order they were written.
	Ordering       bool          `envconfig:"BIKURIM_PUBSUB_ORDERING" default:"true"`
	VerifyTopic    bool          `envconfig:"BIKURIM_PUBSUB_VERIFY_TOPIC" default:"true"`
	PublishTimeout time.Duration `envconfig:"BIKURIM_PUBSUB_PUBLISH_TIMEOUT" default:"15s"`
}

type OutboxConfig struct {
	BatchSize      int           `envconfig:"BIKURIM_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int           `envconfig:"BIKURIM_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int           `envconfig:"BIKURIM_OUTBOX_MAX_ATTEMPTS" default:"10"`
	Retention      time.Duration `envconfig:"BIKURIM_OUTBOX_RETENTION" default:"720h"`
}

type CronConfig struct {
	Interval           time.Duration `envconfig:"BIKURIM_CRON_INTERVAL" default:"24h"`
	Tick               time.Duration `envconfig:"BIKURIM_CRON_TICK" default:"1m"`
	ReadAlertRetention time.Duration `envconfig:"BIKURIM_CRON_READ_ALERT_RETENTION" default:"2160h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"BIKURIM_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	parts := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, key := range dbPartEnvVars {
		if parts[key] == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}
	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}
	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
