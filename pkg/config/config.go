package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Checkout  CheckoutConfig
	Gateway   GatewayConfig
	PubSub    PubSubConfig
	GCP       GCPConfig
	Notify    NotifyConfig
	Cron      CronConfig
	RateLimit RateLimitConfig
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
	Env          string `envconfig:"SELLERHUB_APP_ENV" required:"true"`
	Port         string `envconfig:"SELLERHUB_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"SELLERHUB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SELLERHUB_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"SELLERHUB_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SELLERHUB_DB_DSN"`
	Driver string `envconfig:"SELLERHUB_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"SELLERHUB_DB_HOST"`
	Port     int    `envconfig:"SELLERHUB_DB_PORT" default:"5432"`
	User     string `envconfig:"SELLERHUB_DB_USER"`
	Password string `envconfig:"SELLERHUB_DB_PASSWORD"`
	Name     string `envconfig:"SELLERHUB_DB_NAME"`
	SSLMode  string `envconfig:"SELLERHUB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SELLERHUB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SELLERHUB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SELLERHUB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SELLERHUB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SELLERHUB_REDIS_URL"`
	Address      string        `envconfig:"SELLERHUB_REDIS_ADDR"`
	Password     string        `envconfig:"SELLERHUB_REDIS_PASSWORD"`
	DB           int           `envconfig:"SELLERHUB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SELLERHUB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SELLERHUB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SELLERHUB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SELLERHUB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SELLERHUB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SELLERHUB_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SELLERHUB_JWT_ISSUER" default:"sellerhub"`
	ExpirationMinutes int    `envconfig:"SELLERHUB_JWT_EXPIRATION_MINUTES" default:"60"`
}

// CheckoutConfig carries the pricing constants applied per seller order.
type CheckoutConfig struct {
	FreeShippingThresholdCents int           `envconfig:"SELLERHUB_FREE_SHIPPING_THRESHOLD_CENTS" default:"100000"`
	FlatShippingFeeCents       int           `envconfig:"SELLERHUB_FLAT_SHIPPING_FEE_CENTS" default:"4900"`
	TaxRateBasisPoints         int           `envconfig:"SELLERHUB_TAX_RATE_BPS" default:"1800"`
	ReturnWindow               time.Duration `envconfig:"SELLERHUB_RETURN_WINDOW" default:"168h"`
	Currency                   string        `envconfig:"SELLERHUB_CURRENCY" default:"USD"`
}

type GatewayConfig struct {
	BaseURL   string        `envconfig:"SELLERHUB_GATEWAY_BASE_URL"`
	KeyID     string        `envconfig:"SELLERHUB_GATEWAY_KEY_ID"`
	KeySecret string        `envconfig:"SELLERHUB_GATEWAY_KEY_SECRET"`
	Timeout   time.Duration `envconfig:"SELLERHUB_GATEWAY_TIMEOUT" default:"10s"`
}

type PubSubConfig struct {
	OrderEventsTopic        string `envconfig:"SELLERHUB_PUBSUB_ORDER_EVENTS_TOPIC" default:"sh-order-events"`
	OrderEventsSubscription string `envconfig:"SELLERHUB_PUBSUB_ORDER_EVENTS_SUBSCRIPTION"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"SELLERHUB_GCP_PROJECT_ID"`
}

type NotifyConfig struct {
	EmailFrom string `envconfig:"SELLERHUB_NOTIFY_EMAIL_FROM" default:"orders@sellerhub.local"`
	SMSSender string `envconfig:"SELLERHUB_NOTIFY_SMS_SENDER" default:"SELLERHUB"`
}

// RateLimitConfig throttles mutating API traffic per authenticated user.
type RateLimitConfig struct {
	Window time.Duration `envconfig:"SELLERHUB_RATE_LIMIT_WINDOW" default:"1m"`
	Limit  int           `envconfig:"SELLERHUB_RATE_LIMIT_MAX" default:"120"`
}

type CronConfig struct {
	Interval        time.Duration `envconfig:"SELLERHUB_CRON_INTERVAL" default:"1h"`
	PendingOrderTTL time.Duration `envconfig:"SELLERHUB_PENDING_ORDER_TTL" default:"48h"`
	LockTTL         time.Duration `envconfig:"SELLERHUB_CRON_LOCK_TTL" default:"55m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	for env, value := range map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	} {
		if value == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	dsn := url.URL{
		Scheme:   "postgres",
		User:     userInfo,
		Host:     db.Host + ":" + strconv.Itoa(db.Port),
		Path:     "/" + db.Name,
		RawQuery: "sslmode=" + db.SSLMode,
	}
	db.DSN = dsn.String()
	return nil
}
