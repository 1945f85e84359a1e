package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Commission   CommissionConfig
	ACH          ACHConfig
	Idempotency  IdempotencyConfig
	CORS         CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.ACH.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"COMMISSION_APP_ENV" required:"true"`
	Port         string `envconfig:"COMMISSION_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"COMMISSION_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"COMMISSION_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"COMMISSION_LOG_FORMAT" default:"json"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type DBConfig struct {
	DSN    string `envconfig:"COMMISSION_DB_DSN"`
	Driver string `envconfig:"COMMISSION_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"COMMISSION_DB_HOST"`
	LegacyPort     int    `envconfig:"COMMISSION_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"COMMISSION_DB_USER"`
	LegacyPassword string `envconfig:"COMMISSION_DB_PASSWORD"`
	LegacyName     string `envconfig:"COMMISSION_DB_NAME"`
	LegacySSLMode  string `envconfig:"COMMISSION_DB_SSLMODE" default:"require"`

	MaxOpenConns    int           `envconfig:"COMMISSION_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"COMMISSION_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"COMMISSION_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"COMMISSION_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"COMMISSION_DB_SLOW_QUERY" default:"250ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"COMMISSION_REDIS_URL"`
	Address      string        `envconfig:"COMMISSION_REDIS_ADDR"`
	Password     string        `envconfig:"COMMISSION_REDIS_PASSWORD"`
	DB           int           `envconfig:"COMMISSION_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"COMMISSION_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"COMMISSION_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"COMMISSION_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"COMMISSION_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"COMMISSION_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

// JWTConfig holds the Supabase project JWT settings used to verify bearer tokens.
type JWTConfig struct {
	Secret            string `envconfig:"COMMISSION_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"COMMISSION_JWT_ISSUER"`
	Audience          string `envconfig:"COMMISSION_JWT_AUDIENCE" default:"authenticated"`
	ExpirationMinutes int    `envconfig:"COMMISSION_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"COMMISSION_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"COMMISSION_AUTO_MIGRATE" default:"false"`
}

type CommissionConfig struct {
	Policy    string `envconfig:"COMMISSION_CALC_POLICY" default:"cap_aware"`
	PlansFile string `envconfig:"COMMISSION_PLANS_FILE"`
}

type ACHConfig struct {
	DefaultProvider string   `envconfig:"COMMISSION_ACH_DEFAULT_PROVIDER" default:"mock"`
	MinimumAmount   string   `envconfig:"COMMISSION_ACH_MINIMUM_AMOUNT" default:"1.00"`
	TestFailureRate float64  `envconfig:"COMMISSION_ACH_TEST_FAILURE_RATE" default:"0"`
	Providers       []string `envconfig:"COMMISSION_ACH_PROVIDERS" default:"mock,stripe,plaid,dwolla"`
}

// Minimum returns the parsed minimum ACH amount.
func (a ACHConfig) Minimum() decimal.Decimal {
	value, err := decimal.NewFromString(strings.TrimSpace(a.MinimumAmount))
	if err != nil {
		return decimal.NewFromInt(1)
	}
	return value
}

func (a ACHConfig) validate() error {
	if _, err := decimal.NewFromString(strings.TrimSpace(a.MinimumAmount)); err != nil {
		return fmt.Errorf("%s must be a decimal amount: %w", EnvACHMinimumAmount, err)
	}
	if a.TestFailureRate < 0 || a.TestFailureRate > 1 {
		return fmt.Errorf("%s must be between 0 and 1", EnvACHTestFailureRate)
	}
	if len(a.Providers) > 0 && !containsFold(a.Providers, a.DefaultProvider) {
		return fmt.Errorf("%s %q is not listed in %s", EnvACHDefaultProvider, a.DefaultProvider, EnvACHProviders)
	}
	return nil
}

type IdempotencyConfig struct {
	TTL time.Duration `envconfig:"COMMISSION_IDEMPOTENCY_TTL" default:"24h"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"COMMISSION_CORS_ALLOWED_ORIGINS" default:"*"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if useSQLite {
		db.Driver = "sqlite"
		if db.DSN == "" {
			db.DSN = "file:commission.db?cache=shared"
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

func containsFold(values []string, want string) bool {
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(want)) {
			return true
		}
	}
	return false
}
