package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/packfinderz-offers/pkg/enums"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	HTTP         HTTPConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Pricing      PricingConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Maintenance  MaintenanceConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DBDriverSQLite
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.Pricing.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"OFFERS_APP_ENV" required:"true"`
	Port         string `envconfig:"OFFERS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"OFFERS_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"OFFERS_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"OFFERS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"OFFERS_SERVICE_KIND" default:"api"`
}

type HTTPConfig struct {
	ReadTimeout     time.Duration `envconfig:"OFFERS_HTTP_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"OFFERS_HTTP_WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `envconfig:"OFFERS_HTTP_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"OFFERS_HTTP_SHUTDOWN_TIMEOUT" default:"20s"`
	CORSOrigins     []string      `envconfig:"OFFERS_HTTP_CORS_ORIGINS" default:"http://localhost:3000"`

	RateLimitWindow      time.Duration `envconfig:"OFFERS_RATE_LIMIT_WINDOW" default:"1m"`
	QuoteRateLimit       int           `envconfig:"OFFERS_RATE_LIMIT_QUOTES" default:"120"`
	ImportRateLimit      int           `envconfig:"OFFERS_RATE_LIMIT_IMPORTS" default:"10"`
	IdempotencyTTL       time.Duration `envconfig:"OFFERS_HTTP_IDEMPOTENCY_TTL" default:"24h"`
	CommitIdempotencyTTL time.Duration `envconfig:"OFFERS_HTTP_COMMIT_IDEMPOTENCY_TTL" default:"168h"`
}

type DBConfig struct {
	DSN    string `envconfig:"OFFERS_DB_DSN"`
	Driver string `envconfig:"OFFERS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"OFFERS_DB_HOST"`
	LegacyPort     int    `envconfig:"OFFERS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"OFFERS_DB_USER"`
	LegacyPassword string `envconfig:"OFFERS_DB_PASSWORD"`
	LegacyName     string `envconfig:"OFFERS_DB_NAME"`
	LegacySSLMode  string `envconfig:"OFFERS_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"OFFERS_SQLITE_PATH" default:"offers.db"`

	MaxOpenConns    int           `envconfig:"OFFERS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"OFFERS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"OFFERS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"OFFERS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"OFFERS_REDIS_URL"`
	Address      string        `envconfig:"OFFERS_REDIS_ADDR"`
	Password     string        `envconfig:"OFFERS_REDIS_PASSWORD"`
	DB           int           `envconfig:"OFFERS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"OFFERS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"OFFERS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"OFFERS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"OFFERS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"OFFERS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"OFFERS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"OFFERS_AUTO_MIGRATE" default:"false"`
}

// PricingConfig carries the knobs of the pricing engine. The markup itself
// lives in the settings table; DefaultMarkupPercent only replaces the fallback.
type PricingConfig struct {
	DefaultMarkupPercent  float64 `envconfig:"OFFERS_PRICING_DEFAULT_MARKUP_PERCENT" default:"10"`
	Currency              string  `envconfig:"OFFERS_PRICING_CURRENCY" default:"IDR"`
	DriftTolerancePercent float64 `envconfig:"OFFERS_PRICING_DRIFT_TOLERANCE_PERCENT" default:"0"`
	SharedStock           bool    `envconfig:"OFFERS_PRICING_SHARED_STOCK" default:"false"`
	MaxQuoteItems         int     `envconfig:"OFFERS_PRICING_MAX_QUOTE_ITEMS" default:"200"`
}

// DefaultMarkup returns the fallback markup as a decimal.
func (p PricingConfig) DefaultMarkup() decimal.Decimal {
	return decimal.NewFromFloat(p.DefaultMarkupPercent)
}

// DriftTolerance returns the commit drift tolerance as a decimal percentage.
func (p PricingConfig) DriftTolerance() decimal.Decimal {
	return decimal.NewFromFloat(p.DriftTolerancePercent)
}

func (p *PricingConfig) validate() error {
	if p.DefaultMarkupPercent <= 0 {
		return fmt.Errorf("%s must be positive", EnvPricingDefaultMarkup)
	}
	if p.DriftTolerancePercent < 0 {
		return fmt.Errorf("%s must not be negative", EnvPricingDriftTolerance)
	}
	currency, err := enums.ParseCurrency(p.Currency)
	if err != nil {
		return fmt.Errorf("%s: %w", EnvPricingCurrency, err)
	}
	p.Currency = currency.String()
	return nil
}

type GCPConfig struct {
	ProjectID              string `envconfig:"OFFERS_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"OFFERS_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"OFFERS_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic string `envconfig:"OFFERS_PUBSUB_ORDERS_TOPIC" default:"priced-orders"`
	OffersTopic string `envconfig:"OFFERS_PUBSUB_OFFERS_TOPIC" default:"supplier-offers"`
}

type OutboxConfig struct {
	BatchSize      int    `envconfig:"OFFERS_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int    `envconfig:"OFFERS_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int    `envconfig:"OFFERS_OUTBOX_MAX_ATTEMPTS" default:"10"`
	MetricsAddr    string `envconfig:"OFFERS_OUTBOX_METRICS_ADDR"`
}

// MaintenanceConfig drives the cron worker. A zero OfferMaxAge leaves stale
// offers untouched.
type MaintenanceConfig struct {
	Interval        time.Duration `envconfig:"OFFERS_MAINTENANCE_INTERVAL" default:"1h"`
	OutboxRetention time.Duration `envconfig:"OFFERS_MAINTENANCE_OUTBOX_RETENTION" default:"720h"`
	DLQRetention    time.Duration `envconfig:"OFFERS_MAINTENANCE_DLQ_RETENTION" default:"2160h"`
	OfferMaxAge     time.Duration `envconfig:"OFFERS_MAINTENANCE_OFFER_MAX_AGE" default:"0"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if useSQLite {
		if strings.TrimSpace(db.SQLitePath) == "" {
			return fmt.Errorf("%s is required when %s is set", EnvSQLitePath, EnvUseSQLite)
		}
		return nil
	}
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
