package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "packtally"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "PACKTALLY_APP_ENV"
	EnvPort     = "PACKTALLY_APP_PORT"
	EnvTimezone = "PACKTALLY_APP_TIMEZONE"
	EnvRedisURL = "PACKTALLY_REDIS_URL"

	EnvDBDSN  = "PACKTALLY_DB_DSN"
	EnvDBHost = "PACKTALLY_DB_HOST"
	EnvDBUser = "PACKTALLY_DB_USER"
	EnvDBName = "PACKTALLY_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Dashboard    DashboardConfig
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
	Env          string `envconfig:"PACKTALLY_APP_ENV" required:"true"`
	Port         string `envconfig:"PACKTALLY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PACKTALLY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PACKTALLY_LOG_WARN_STACK" default:"false"`
	Timezone     string `envconfig:"PACKTALLY_APP_TIMEZONE" default:"Asia/Shanghai"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"PACKTALLY_DB_DSN"`
	Driver string `envconfig:"PACKTALLY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PACKTALLY_DB_HOST"`
	LegacyPort     int    `envconfig:"PACKTALLY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PACKTALLY_DB_USER"`
	LegacyPassword string `envconfig:"PACKTALLY_DB_PASSWORD"`
	LegacyName     string `envconfig:"PACKTALLY_DB_NAME"`
	LegacySSLMode  string `envconfig:"PACKTALLY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PACKTALLY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PACKTALLY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PACKTALLY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PACKTALLY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PACKTALLY_REDIS_URL"`
	Address      string        `envconfig:"PACKTALLY_REDIS_ADDR"`
	Password     string        `envconfig:"PACKTALLY_REDIS_PASSWORD"`
	DB           int           `envconfig:"PACKTALLY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PACKTALLY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PACKTALLY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PACKTALLY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PACKTALLY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PACKTALLY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// DashboardConfig bounds aggregation reads and their cache lifetimes.
type DashboardConfig struct {
	RollupTTL        time.Duration `envconfig:"PACKTALLY_DASHBOARD_ROLLUP_TTL" default:"60s"`
	SummaryTTL       time.Duration `envconfig:"PACKTALLY_DASHBOARD_SUMMARY_TTL" default:"30s"`
	TrendDefaultDays int           `envconfig:"PACKTALLY_DASHBOARD_TREND_DEFAULT_DAYS" default:"7"`
	TrendMaxDays     int           `envconfig:"PACKTALLY_DASHBOARD_TREND_MAX_DAYS" default:"90"`
	TrendTopSeries   int           `envconfig:"PACKTALLY_DASHBOARD_TREND_TOP_SERIES" default:"10"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"PACKTALLY_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"PACKTALLY_AUTO_MIGRATE" default:"false"`
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
