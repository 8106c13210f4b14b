package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Verification  VerificationConfig
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
	Env          string `envconfig:"PERMITS_APP_ENV" required:"true"`
	Port         string `envconfig:"PERMITS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PERMITS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PERMITS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"PERMITS_DB_DSN"`
	Driver string `envconfig:"PERMITS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PERMITS_DB_HOST"`
	LegacyPort     int    `envconfig:"PERMITS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PERMITS_DB_USER"`
	LegacyPassword string `envconfig:"PERMITS_DB_PASSWORD"`
	LegacyName     string `envconfig:"PERMITS_DB_NAME"`
	LegacySSLMode  string `envconfig:"PERMITS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PERMITS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PERMITS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PERMITS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PERMITS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PERMITS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PERMITS_REDIS_ADDR"`
	Password     string        `envconfig:"PERMITS_REDIS_PASSWORD"`
	DB           int           `envconfig:"PERMITS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PERMITS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PERMITS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PERMITS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PERMITS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PERMITS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"PERMITS_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"PERMITS_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"PERMITS_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"PERMITS_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"PERMITS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"PERMITS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"PERMITS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"PERMITS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"PERMITS_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"PERMITS_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"PERMITS_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"PERMITS_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

// VerificationConfig drives how scannable verification payloads are built.
type VerificationConfig struct {
	// BaseURL is the public lookup page the payload points at, e.g.
	// https://permits.example.gob.ec/api/public/verify
	BaseURL string `envconfig:"PERMITS_VERIFY_BASE_URL" required:"true"`
}

type FeatureFlagsConfig struct {
	AutoMigrate   bool `envconfig:"PERMITS_AUTO_MIGRATE" default:"false"`
	StaffRegister bool `envconfig:"PERMITS_FEATURE_STAFF_REGISTER" default:"false"`
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
