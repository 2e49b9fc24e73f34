package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	StoreMemory = "memory"
	StoreMongo  = "mongo"
)

// Config aggregates application configuration values loaded from environment variables.
type Config struct {
	Env      string `envconfig:"APP_ENV" default:"dev"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	StoreMode string `envconfig:"STORE_MODE" default:"memory"`
	MongoURI  string `envconfig:"MONGO_URI"`
	MongoDB   string `envconfig:"MONGO_DB" default:"glampstay"`

	KafkaBrokers       []string        `envconfig:"KAFKA_BROKERS"`
	KafkaTopicPrefix   string          `envconfig:"KAFKA_TOPIC_PREFIX"`
	KafkaConsumerGroup string          `envconfig:"KAFKA_CONSUMER_GROUP" default:"glampstay-notifications"`
	OutboxPollInterval time.Duration   `envconfig:"OUTBOX_POLL_INTERVAL" default:"500ms"`
	RetryBackoff       []time.Duration `envconfig:"RETRY_BACKOFF" default:"1s,5s,30s"`

	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	RateLimitEnabled         bool          `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	RateLimitWindow          time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
	RateLimitBookingRequests int           `envconfig:"RATE_LIMIT_BOOKING_REQUESTS" default:"10"`
	RateLimitDefaultRequests int           `envconfig:"RATE_LIMIT_DEFAULT_REQUESTS" default:"120"`

	IdentityJWTSecret string `envconfig:"IDENTITY_JWT_SECRET"`
	IdentityIssuer    string `envconfig:"IDENTITY_ISSUER"`
	OpsKeyHash        string `envconfig:"OPS_KEY_HASH"`

	S3Endpoint       string `envconfig:"S3_ENDPOINT"`
	S3PublicEndpoint string `envconfig:"S3_PUBLIC_ENDPOINT"`
	S3AccessKey      string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey      string `envconfig:"S3_SECRET_KEY"`
	S3Bucket         string `envconfig:"S3_BUCKET" default:"glampstay-photos"`
	S3UseSSL         bool   `envconfig:"S3_USE_SSL" default:"false"`

	SMTPHost         string  `envconfig:"SMTP_HOST"`
	SMTPPort         int     `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername     string  `envconfig:"SMTP_USERNAME"`
	SMTPPassword     string  `envconfig:"SMTP_PASSWORD"`
	SMTPFrom         string  `envconfig:"SMTP_FROM" default:"stays@glampstay.local"`
	SMTPFromName     string  `envconfig:"SMTP_FROM_NAME" default:"Glampstay"`
	SMTPStartTLS     bool    `envconfig:"SMTP_STARTTLS" default:"true"`
	StaffEmail       string  `envconfig:"STAFF_EMAIL" default:"hello@glampstay.local"`
	NotifyRatePerSec float64 `envconfig:"NOTIFY_RATE_PER_SEC" default:"5"`

	FCMCredentialsFile string `envconfig:"FCM_CREDENTIALS_FILE"`
	StripeSecretKey    string `envconfig:"STRIPE_SECRET_KEY"`

	ReminderLead      time.Duration `envconfig:"REMINDER_LEAD" default:"48h"`
	ReminderSweepSpec string        `envconfig:"REMINDER_SWEEP_SPEC" default:"@every 1h"`

	OTLPEndpoint     string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	PropertyFixtures string `envconfig:"PROPERTY_FIXTURES" default:"data/properties.json"`
}

// Load reads .env when present, then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: read .env: %w", err)
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	c.StoreMode = strings.ToLower(c.StoreMode)
	switch c.StoreMode {
	case StoreMemory:
	case StoreMongo:
		if c.MongoURI == "" {
			return errors.New("config: MONGO_URI is required when STORE_MODE=mongo")
		}
	default:
		return fmt.Errorf("config: unknown STORE_MODE %q", c.StoreMode)
	}
	if c.OutboxPollInterval <= 0 {
		return errors.New("config: OUTBOX_POLL_INTERVAL must be positive")
	}
	if c.RateLimitEnabled && (c.RateLimitWindow <= 0 || c.RateLimitBookingRequests <= 0 || c.RateLimitDefaultRequests <= 0) {
		return errors.New("config: rate limit window and request budgets must be positive")
	}
	if c.ReminderLead <= 0 {
		return errors.New("config: REMINDER_LEAD must be positive")
	}
	if c.Env != "dev" && c.Env != "test" && c.IdentityJWTSecret == "" {
		return errors.New("config: IDENTITY_JWT_SECRET is required outside dev")
	}
	return nil
}

func (c Config) Mongo() bool {
	return strings.EqualFold(c.StoreMode, StoreMongo)
}

func (c Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func (c Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

func (c Config) S3Enabled() bool {
	return c.S3Endpoint != ""
}

func (c Config) PublicS3Endpoint() string {
	if c.S3PublicEndpoint != "" {
		return c.S3PublicEndpoint
	}
	return c.S3Endpoint
}
