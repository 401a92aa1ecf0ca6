package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	Cache         CacheConfig
	Session       SessionConfig
	Password      PasswordConfig
	Typesense     TypesenseConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string `envconfig:"NEARBUY_APP_ENV" required:"true"`
	Port         string `envconfig:"NEARBUY_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"NEARBUY_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"NEARBUY_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"NEARBUY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"NEARBUY_DB_DSN"`
	Driver string `envconfig:"NEARBUY_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"NEARBUY_DB_HOST"`
	Port     int    `envconfig:"NEARBUY_DB_PORT" default:"5432"`
	User     string `envconfig:"NEARBUY_DB_USER"`
	Password string `envconfig:"NEARBUY_DB_PASSWORD"`
	Name     string `envconfig:"NEARBUY_DB_NAME"`
	SSLMode  string `envconfig:"NEARBUY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"NEARBUY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"NEARBUY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"NEARBUY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"NEARBUY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// ensureDSN derives a Postgres DSN from the discrete fields when one was not
// provided directly. SQLite mode takes the DSN as a file path verbatim.
func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if strings.EqualFold(d.Driver, "sqlite") {
		d.DSN = "nearbuy.db"
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("database DSN or host/user/name are required")
	}
	d.DSN = fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(d.User),
		url.QueryEscape(d.Password),
		d.Host,
		d.Port,
		d.Name,
		d.SSLMode,
	)
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"NEARBUY_REDIS_URL"`
	Address      string        `envconfig:"NEARBUY_REDIS_ADDR"`
	Password     string        `envconfig:"NEARBUY_REDIS_PASSWORD"`
	DB           int           `envconfig:"NEARBUY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"NEARBUY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"NEARBUY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"NEARBUY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"NEARBUY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"NEARBUY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type CacheConfig struct {
	TTL time.Duration `envconfig:"NEARBUY_CACHE_TTL" default:"1h"`
}

type SessionConfig struct {
	CookieName   string        `envconfig:"NEARBUY_SESSION_COOKIE" default:"nearbuy_session"`
	TTL          time.Duration `envconfig:"NEARBUY_SESSION_TTL" default:"90h"`
	KeepLoginTTL time.Duration `envconfig:"NEARBUY_SESSION_KEEP_LOGIN_TTL" default:"720h"`
	CookieSecure bool          `envconfig:"NEARBUY_SESSION_COOKIE_SECURE" default:"false"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"NEARBUY_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"NEARBUY_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"NEARBUY_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"NEARBUY_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"NEARBUY_ARGON_KEY_LEN" default:"32"`
}

type TypesenseConfig struct {
	URL         string        `envconfig:"NEARBUY_TYPESENSE_URL" default:"http://localhost:8108"`
	APIKey      string        `envconfig:"NEARBUY_TYPESENSE_API_KEY"`
	ConnTimeout time.Duration `envconfig:"NEARBUY_TYPESENSE_CONN_TIMEOUT" default:"5s"`
}

type AuthRateLimitConfig struct {
	LoginWindow      time.Duration `envconfig:"NEARBUY_RL_LOGIN_WINDOW" default:"5m"`
	LoginIPLimit     int           `envconfig:"NEARBUY_RL_LOGIN_IP_LIMIT" default:"20"`
	LoginEmailLimit  int           `envconfig:"NEARBUY_RL_LOGIN_EMAIL_LIMIT" default:"10"`
	SignupWindow     time.Duration `envconfig:"NEARBUY_RL_SIGNUP_WINDOW" default:"10m"`
	SignupIPLimit    int           `envconfig:"NEARBUY_RL_SIGNUP_IP_LIMIT" default:"10"`
	SignupEmailLimit int           `envconfig:"NEARBUY_RL_SIGNUP_EMAIL_LIMIT" default:"5"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"NEARBUY_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"NEARBUY_AUTO_MIGRATE" default:"false"`
}
