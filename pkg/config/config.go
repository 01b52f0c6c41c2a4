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
	Pricing      PricingConfig
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
	if err := cfg.Pricing.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GREENMILE_APP_ENV" required:"true"`
	Port         string `envconfig:"GREENMILE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GREENMILE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GREENMILE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"GREENMILE_DB_DSN"`
	Driver string `envconfig:"GREENMILE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GREENMILE_DB_HOST"`
	LegacyPort     int    `envconfig:"GREENMILE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GREENMILE_DB_USER"`
	LegacyPassword string `envconfig:"GREENMILE_DB_PASSWORD"`
	LegacyName     string `envconfig:"GREENMILE_DB_NAME"`
	LegacySSLMode  string `envconfig:"GREENMILE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GREENMILE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GREENMILE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GREENMILE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GREENMILE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GREENMILE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"GREENMILE_REDIS_ADDR"`
	Password     string        `envconfig:"GREENMILE_REDIS_PASSWORD"`
	DB           int           `envconfig:"GREENMILE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GREENMILE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GREENMILE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GREENMILE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GREENMILE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GREENMILE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// PricingConfig carries the tax and fee tables the pricing engine applies.
// Rates and brackets are deliberately configuration, not code constants, so
// they can vary per deployment without a schema change.
type PricingConfig struct {
	TaxRates            TaxRates            `envconfig:"GREENMILE_PRICING_TAX_RATES" default:"state:10.5,municipal:1"`
	DeliveryFeeBrackets DeliveryFeeBrackets `envconfig:"GREENMILE_PRICING_DELIVERY_FEE_BRACKETS" default:"74:15.00,99:12.00,149:10.00,199:5.00"`
	MaxLineQuantity     int                 `envconfig:"GREENMILE_PRICING_MAX_LINE_QUANTITY" default:"10"`
	OrderLockTTL        time.Duration       `envconfig:"GREENMILE_PRICING_ORDER_LOCK_TTL" default:"15s"`
	OrderLockRetries    int                 `envconfig:"GREENMILE_PRICING_ORDER_LOCK_RETRIES" default:"20"`
	OrderLockRetryDelay time.Duration       `envconfig:"GREENMILE_PRICING_ORDER_LOCK_RETRY_DELAY" default:"50ms"`
}

// Validate rejects tables the pricing engine cannot apply safely.
func (p PricingConfig) Validate() error {
	if len(p.TaxRates) == 0 {
		return fmt.Errorf("at least one tax rate is required")
	}
	if p.MaxLineQuantity <= 0 {
		return fmt.Errorf("max line quantity must be positive")
	}
	return p.DeliveryFeeBrackets.validate()
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"GREENMILE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"GREENMILE_AUTO_MIGRATE" default:"false"`
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
