package config

const (
	EnvPrefix = "OFFERS"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	EnvAppEnv   = "OFFERS_APP_ENV"
	EnvPort     = "OFFERS_APP_PORT"
	EnvLogLevel = "OFFERS_LOG_LEVEL"

	EnvDBDSN  = "OFFERS_DB_DSN"
	EnvDBHost = "OFFERS_DB_HOST"
	EnvDBUser = "OFFERS_DB_USER"
	EnvDBName = "OFFERS_DB_NAME"

	EnvUseSQLite  = "OFFERS_USE_SQLITE"
	EnvSQLitePath = "OFFERS_SQLITE_PATH"

	EnvRedisURL = "OFFERS_REDIS_URL"

	EnvPricingDefaultMarkup  = "OFFERS_PRICING_DEFAULT_MARKUP_PERCENT"
	EnvPricingCurrency       = "OFFERS_PRICING_CURRENCY"
	EnvPricingDriftTolerance = "OFFERS_PRICING_DRIFT_TOLERANCE_PERCENT"
	EnvPricingSharedStock    = "OFFERS_PRICING_SHARED_STOCK"

	EnvGCPProjectID      = "OFFERS_GCP_PROJECT_ID"
	EnvPubSubOrdersTopic = "OFFERS_PUBSUB_ORDERS_TOPIC"
	EnvOutboxMaxAttempts = "OFFERS_OUTBOX_MAX_ATTEMPTS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
