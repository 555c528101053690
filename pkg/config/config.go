package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable the platform reads.
const EnvPrefix = "wholesail"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Fees         FeesConfig
	Alerts       AlertsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"WHOLESAIL_APP_ENV" default:"dev"`
	Port         string `envconfig:"WHOLESAIL_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"WHOLESAIL_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"WHOLESAIL_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN             string        `envconfig:"WHOLESAIL_DB_DSN" required:"true"`
	MaxOpenConns    int           `envconfig:"WHOLESAIL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"WHOLESAIL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"WHOLESAIL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"WHOLESAIL_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"WHOLESAIL_REDIS_URL"`
	Address      string        `envconfig:"WHOLESAIL_REDIS_ADDR"`
	Password     string        `envconfig:"WHOLESAIL_REDIS_PASSWORD"`
	DB           int           `envconfig:"WHOLESAIL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WHOLESAIL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WHOLESAIL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WHOLESAIL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WHOLESAIL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WHOLESAIL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// FeesConfig drives the platform fee quote applied to every order.
type FeesConfig struct {
	PercentBps int    `envconfig:"WHOLESAIL_FEE_PERCENT_BPS" default:"250"`
	Fixed      string `envconfig:"WHOLESAIL_FEE_FIXED" default:"0.30"`
}

// AlertsConfig holds wholesaler-independent alerting defaults.
type AlertsConfig struct {
	DefaultLowStockThreshold int `envconfig:"WHOLESAIL_ALERTS_DEFAULT_LOW_STOCK_THRESHOLD" default:"10"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"WHOLESAIL_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	NotificationsTopic        string `envconfig:"WHOLESAIL_PUBSUB_NOTIFICATIONS_TOPIC" default:"wholesail-notifications"`
	NotificationsSubscription string `envconfig:"WHOLESAIL_PUBSUB_NOTIFICATIONS_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int           `envconfig:"WHOLESAIL_OUTBOX_BATCH_SIZE" default:"50"`
	PollInterval   time.Duration `envconfig:"WHOLESAIL_OUTBOX_POLL_INTERVAL" default:"500ms"`
	PublishTimeout time.Duration `envconfig:"WHOLESAIL_OUTBOX_PUBLISH_TIMEOUT" default:"15s"`
	MaxAttempts    int           `envconfig:"WHOLESAIL_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"WHOLESAIL_FEATURE_AUTO_MIGRATE" default:"false"`
}
