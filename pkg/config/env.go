package config

// EnvPrefix is handed to envconfig; every field carries its full variable name.
const EnvPrefix = "COMMISSION"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv             = "COMMISSION_APP_ENV"
	EnvPort               = "COMMISSION_APP_PORT"
	EnvDBDSN              = "COMMISSION_DB_DSN"
	EnvDBHost             = "COMMISSION_DB_HOST"
	EnvDBUser             = "COMMISSION_DB_USER"
	EnvDBName             = "COMMISSION_DB_NAME"
	EnvRedisURL           = "COMMISSION_REDIS_URL"
	EnvJWTSecret          = "COMMISSION_JWT_SECRET"
	EnvJWTIssuer          = "COMMISSION_JWT_ISSUER"
	EnvCalcPolicy         = "COMMISSION_CALC_POLICY"
	EnvACHMinimumAmount   = "COMMISSION_ACH_MINIMUM_AMOUNT"
	EnvACHTestFailureRate = "COMMISSION_ACH_TEST_FAILURE_RATE"
	EnvACHDefaultProvider = "COMMISSION_ACH_DEFAULT_PROVIDER"
	EnvACHProviders       = "COMMISSION_ACH_PROVIDERS"
	EnvUseSQLite          = "COMMISSION_USE_SQLITE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
