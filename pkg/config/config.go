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
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Checkout     CheckoutConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Checkout.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"REPARALO_APP_ENV" required:"true"`
	Port         string `envconfig:"REPARALO_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"REPARALO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"REPARALO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"REPARALO_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"REPARALO_DB_DSN"`
	Driver string `envconfig:"REPARALO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"REPARALO_DB_HOST"`
	LegacyPort     int    `envconfig:"REPARALO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"REPARALO_DB_USER"`
	LegacyPassword string `envconfig:"REPARALO_DB_PASSWORD"`
	LegacyName     string `envconfig:"REPARALO_DB_NAME"`
	LegacySSLMode  string `envconfig:"REPARALO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"REPARALO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"REPARALO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"REPARALO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"REPARALO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"REPARALO_REDIS_URL" required:"true"`
	Address      string        `envconfig:"REPARALO_REDIS_ADDR"`
	Password     string        `envconfig:"REPARALO_REDIS_PASSWORD"`
	DB           int           `envconfig:"REPARALO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"REPARALO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"REPARALO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"REPARALO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REPARALO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"REPARALO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// CheckoutConfig carries the operator-tunable settlement knobs.
type CheckoutConfig struct {
	// TaxRatePercent is a flat rate applied to the discounted subtotal.
	TaxRatePercent       float64       `envconfig:"REPARALO_CHECKOUT_TAX_RATE_PERCENT" default:"11.5"`
	QuickDiscountPresets []int         `envconfig:"REPARALO_CHECKOUT_QUICK_DISCOUNTS" default:"5,10,15,20"`
	EnableCash           bool          `envconfig:"REPARALO_CHECKOUT_ENABLE_CASH" default:"true"`
	EnableCard           bool          `envconfig:"REPARALO_CHECKOUT_ENABLE_CARD" default:"true"`
	EnableMobileWallet   bool          `envconfig:"REPARALO_CHECKOUT_ENABLE_MOBILE_WALLET" default:"true"`
	EnableBankTransfer   bool          `envconfig:"REPARALO_CHECKOUT_ENABLE_BANK_TRANSFER" default:"true"`
	EnableCheck          bool          `envconfig:"REPARALO_CHECKOUT_ENABLE_CHECK" default:"false"`
	SettleLockTTL        time.Duration `envconfig:"REPARALO_CHECKOUT_SETTLE_LOCK_TTL" default:"30s"`
}

// TaxRate returns the configured rate as a decimal fraction (11.5 -> 0.115).
func (c CheckoutConfig) TaxRate() decimal.Decimal {
	return decimal.NewFromFloat(c.TaxRatePercent).Div(decimal.NewFromInt(100))
}

func (c CheckoutConfig) validate() error {
	if c.TaxRatePercent < 0 || c.TaxRatePercent > 100 {
		return fmt.Errorf("tax rate percent %v out of range", c.TaxRatePercent)
	}
	for _, preset := range c.QuickDiscountPresets {
		if preset < 0 || preset > 100 {
			return fmt.Errorf("quick discount preset %d out of range", preset)
		}
	}
	return nil
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"REPARALO_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"REPARALO_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"REPARALO_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"REPARALO_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"REPARALO_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	CheckoutTopic        string `envconfig:"REPARALO_PUBSUB_CHECKOUT_TOPIC" default:"reparalo-checkout-events"`
	CheckoutSubscription string `envconfig:"REPARALO_PUBSUB_CHECKOUT_SUBSCRIPTION" required:"true"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"REPARALO_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"REPARALO_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"REPARALO_OUTBOX_MAX_ATTEMPTS" default:"10"`
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
