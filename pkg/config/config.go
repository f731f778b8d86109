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
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Cache        CacheConfig
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
	Env          string `envconfig:"CMDR_APP_ENV" required:"true"`
	Port         string `envconfig:"CMDR_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CMDR_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CMDR_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CMDR_DB_DSN"`
	Driver string `envconfig:"CMDR_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CMDR_DB_HOST"`
	LegacyPort     int    `envconfig:"CMDR_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CMDR_DB_USER"`
	LegacyPassword string `envconfig:"CMDR_DB_PASSWORD"`
	LegacyName     string `envconfig:"CMDR_DB_NAME"`
	LegacySSLMode  string `envconfig:"CMDR_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CMDR_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CMDR_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CMDR_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CMDR_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CMDR_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CMDR_REDIS_ADDR"`
	Password     string        `envconfig:"CMDR_REDIS_PASSWORD"`
	DB           int           `envconfig:"CMDR_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CMDR_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CMDR_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CMDR_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CMDR_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CMDR_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"CMDR_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CMDR_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"CMDR_JWT_EXPIRATION_MINUTES" default:"60"`
}

// CacheConfig controls the read-through aggregate cache in front of repositories.
type CacheConfig struct {
	AggregateTTL time.Duration `envconfig:"CMDR_CACHE_AGGREGATE_TTL" default:"5m"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CMDR_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CMDR_AUTO_MIGRATE" default:"false"`
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
