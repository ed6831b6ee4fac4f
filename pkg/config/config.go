package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "ABASTECIO"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "ABASTECIO_DB_DSN"
	EnvDBHost = "ABASTECIO_DB_HOST"
	EnvDBUser = "ABASTECIO_DB_USER"
	EnvDBName = "ABASTECIO_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Idempotency  IdempotencyConfig
	RateLimit    RateLimitConfig
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
	Env          string `envconfig:"ABASTECIO_APP_ENV" required:"true"`
	Port         string `envconfig:"ABASTECIO_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"ABASTECIO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ABASTECIO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ABASTECIO_DB_DSN"`
	Driver string `envconfig:"ABASTECIO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ABASTECIO_DB_HOST"`
	LegacyPort     int    `envconfig:"ABASTECIO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ABASTECIO_DB_USER"`
	LegacyPassword string `envconfig:"ABASTECIO_DB_PASSWORD"`
	LegacyName     string `envconfig:"ABASTECIO_DB_NAME"`
	LegacySSLMode  string `envconfig:"ABASTECIO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ABASTECIO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ABASTECIO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ABASTECIO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ABASTECIO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ABASTECIO_REDIS_URL"`
	Address      string        `envconfig:"ABASTECIO_REDIS_ADDR"`
	Password     string        `envconfig:"ABASTECIO_REDIS_PASSWORD"`
	DB           int           `envconfig:"ABASTECIO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ABASTECIO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ABASTECIO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ABASTECIO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ABASTECIO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ABASTECIO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig holds verification-only settings. Tokens are issued by the
// external auth collaborator; this service only checks them.
type JWTConfig struct {
	Secret string `envconfig:"ABASTECIO_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"ABASTECIO_JWT_ISSUER" required:"true"`
}

type IdempotencyConfig struct {
	OrderTTL time.Duration `envconfig:"ABASTECIO_IDEMPOTENCY_ORDER_TTL" default:"168h"`
}

type RateLimitConfig struct {
	WriteWindow  time.Duration `envconfig:"ABASTECIO_RATE_LIMIT_WRITE_WINDOW" default:"1m"`
	WriteIPLimit int           `envconfig:"ABASTECIO_RATE_LIMIT_WRITE_IP_LIMIT" default:"120"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"ABASTECIO_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"ABASTECIO_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
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
