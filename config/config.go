package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`

	// Storage.
	StoreDriver  string `mapstructure:"STORE_DRIVER"` // "mongo" or "memory"
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// HTTP surface.
	FrontendURL    string `mapstructure:"FRONTEND_URL"`
	PublicBaseURL  string `mapstructure:"PUBLIC_BASE_URL"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"` // comma separated
	StaticDir      string `mapstructure:"STATIC_DIR"`

	// Booking policy.
	Timezone              string        `mapstructure:"TIMEZONE"`
	PendingBookingTimeout time.Duration `mapstructure:"PENDING_BOOKING_TIMEOUT"`
	CancellationCutoff    time.Duration `mapstructure:"CANCELLATION_CUTOFF"`
	GroundCacheTTL        time.Duration `mapstructure:"GROUND_CACHE_TTL"`

	// Integrations. Empty values disable the integration.
	StripeKey               string `mapstructure:"STRIPE_KEY"`
	PaymentCurrency         string `mapstructure:"PAYMENT_CURRENCY"`
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
	RabbitURL               string `mapstructure:"RABBIT_URL"`
	BookingExchange         string `mapstructure:"BOOKING_EXCHANGE"`
	CloudinaryURL           string `mapstructure:"CLOUDINARY_URL"`
}

var AppConfig Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "3001")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("STORE_DRIVER", "mongo")
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "boxcricket")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_CACHE_DB", 0)
	v.SetDefault("REDIS_QUEUE_DB", 1)
	v.SetDefault("FRONTEND_URL", "http://localhost:8080")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:3001")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:8080,http://localhost:3000")
	v.SetDefault("STATIC_DIR", "dist")
	v.SetDefault("TIMEZONE", "Asia/Kolkata")
	v.SetDefault("PENDING_BOOKING_TIMEOUT", "15m")
	v.SetDefault("CANCELLATION_CUTOFF", "2h")
	v.SetDefault("GROUND_CACHE_TTL", "5m")
	v.SetDefault("STRIPE_KEY", "")
	v.SetDefault("PAYMENT_CURRENCY", "inr")
	v.SetDefault("FIREBASE_CREDENTIALS_FILE", "")
	v.SetDefault("RABBIT_URL", "")
	v.SetDefault("BOOKING_EXCHANGE", "booking.exchange")
	v.SetDefault("CLOUDINARY_URL", "")
}

// LoadConfig reads config.yaml from the current or ./config directory and
// overlays environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	// Automatically use environment variables where available.
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	AppConfig = cfg
	return &cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case "mongo", "memory":
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.PendingBookingTimeout <= 0 {
		return fmt.Errorf("config: PENDING_BOOKING_TIMEOUT must be positive")
	}
	if c.CancellationCutoff < 0 {
		return fmt.Errorf("config: CANCELLATION_CUTOFF must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.JWTSecret == "" && c.Env != "test" {
		return fmt.Errorf("config: JWT_SECRET is required")
	}
	return nil
}

// Location is the time zone booking dates and slot times are expressed in.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Origins splits ALLOWED_ORIGINS.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if c.FrontendURL != "" {
		out = append(out, c.FrontendURL)
	}
	return out
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
