package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Email code binding modes.
const (
	EmailBindingCode  = "code"
	EmailBindingEmail = "email"
)

// Mail drivers.
const (
	MailDriverLog    = "log"
	MailDriverSMTP   = "smtp"
	MailDriverBridge = "bridge"
)

// Config holds application configuration.
type Config struct {
	// Server
	ServerAddr         string `env:"SERVER_ADDR" envDefault:"0.0.0.0"`
	ServerPort         int    `env:"SERVER_PORT" envDefault:"8080"`
	MaxRequestBodySize int64  `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
	CookieSecure       bool   `env:"COOKIE_SECURE" envDefault:"false"`

	// Database (defaults match podman setup: make postgres-start)
	DBHost         string `env:"DB_HOST" envDefault:"localhost"`
	DBPort         int    `env:"DB_PORT" envDefault:"25432"`
	DBUser         string `env:"DB_USER" envDefault:"postgres"`
	DBPassword     string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName         string `env:"DB_NAME" envDefault:"contextauth"`
	DBSSLMode      string `env:"DB_SSLMODE" envDefault:"disable"`
	DBMaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBAutoMigrate  bool   `env:"DB_AUTO_MIGRATE" envDefault:"false"`

	// Redis
	RedisAddr      string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword  string `env:"REDIS_PASSWORD"`
	RedisDB        int    `env:"REDIS_DB" envDefault:"0"`
	RedisKeyPrefix string `env:"REDIS_KEY_PREFIX" envDefault:"contextauth:"`

	// JWT
	JWTSecret      string        `env:"JWT_SECRET"`
	JWTIssuer      string        `env:"JWT_ISSUER" envDefault:"contextauth"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"1h"`

	// One-time codes
	LoginOTPTTL        time.Duration `env:"LOGIN_OTP_TTL" envDefault:"10m"`
	OTPRequestInterval time.Duration `env:"OTP_REQUEST_INTERVAL" envDefault:"1m"`
	OTPAssertionTTL    time.Duration `env:"OTP_ASSERTION_TTL" envDefault:"5m"`
	OTPTrustClientFlag bool          `env:"OTP_TRUST_CLIENT_FLAG" envDefault:"false"`
	EmailCodeBinding   string        `env:"EMAIL_CODE_BINDING" envDefault:"code"`

	// Login
	SuspensionDuration  time.Duration `env:"SUSPENSION_DURATION" envDefault:"24h"`
	LoginTimeout        time.Duration `env:"LOGIN_TIMEOUT" envDefault:"10s"`
	CollaboratorTimeout time.Duration `env:"COLLABORATOR_TIMEOUT" envDefault:"3s"`
	NotifyTimeout       time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"15s"`
	HistoryWindow       int           `env:"LOGIN_HISTORY_WINDOW" envDefault:"50"`
	JanitorInterval     time.Duration `env:"JANITOR_INTERVAL" envDefault:"10m"`

	Risk            RiskConfig            `envPrefix:"RISK_"`
	Mail            MailConfig            `envPrefix:"MAIL_"`
	RateLimit       RateLimitConfig       `envPrefix:"RATE_LIMIT_"`
	SecurityHeaders SecurityHeadersConfig `envPrefix:"SECURITY_HEADERS_"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`
}

// RiskConfig holds the risk weights and distances.
type RiskConfig struct {
	UnknownDeviceWeight   int     `env:"UNKNOWN_DEVICE_WEIGHT" envDefault:"2"`
	NearbyLocationWeight  int     `env:"NEARBY_LOCATION_WEIGHT" envDefault:"1"`
	UnknownLocationWeight int     `env:"UNKNOWN_LOCATION_WEIGHT" envDefault:"6"`
	SuspendThreshold      int     `env:"SUSPEND_THRESHOLD" envDefault:"8"`
	NearbyKm              float64 `env:"NEARBY_KM" envDefault:"2"`
	DefaultRadiusKm       float64 `env:"DEFAULT_RADIUS_KM" envDefault:"5"`
}

// MailConfig selects and configures the notification transport.
type MailConfig struct {
	Driver string `env:"DRIVER" envDefault:"log"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPMaxConns int    `env:"SMTP_MAX_CONNS" envDefault:"4"`

	From     string `env:"FROM" envDefault:"noreply@localhost"`
	FromName string `env:"FROM_NAME" envDefault:"Account Security"`

	BridgeURL     string        `env:"BRIDGE_URL"`
	BridgeToken   string        `env:"BRIDGE_TOKEN"`
	BridgeTimeout time.Duration `env:"BRIDGE_TIMEOUT" envDefault:"10s"`
}

// RateLimitConfig holds per-IP limits for the public auth endpoints.
type RateLimitConfig struct {
	Enabled bool `env:"ENABLED" envDefault:"true"`

	LoginRequestsPerMinute   int `env:"LOGIN_PER_MINUTE" envDefault:"10"`
	OTPRequestsPerMinute     int `env:"OTP_PER_MINUTE" envDefault:"5"`
	VerifyRequestsPerMinute  int `env:"VERIFY_PER_MINUTE" envDefault:"10"`
	ProfileRequestsPerMinute int `env:"PROFILE_PER_MINUTE" envDefault:"60"`
}

// SecurityHeadersConfig holds response security header values.
type SecurityHeadersConfig struct {
	Enabled            bool   `env:"ENABLED" envDefault:"true"`
	CSP                string `env:"CSP" envDefault:"default-src 'none'"`
	HSTSMaxAge         int    `env:"HSTS_MAX_AGE" envDefault:"31536000"`
	FrameOptions       string `env:"FRAME_OPTIONS" envDefault:"DENY"`
	ContentTypeOptions string `env:"CONTENT_TYPE_OPTIONS" envDefault:"nosniff"`
	XSSProtection      string `env:"XSS_PROTECTION" envDefault:"0"`
	ReferrerPolicy     string `env:"REFERRER_POLICY" envDefault:"no-referrer"`
	PermissionsPolicy  string `env:"PERMISSIONS_POLICY"`
	CacheControl       string `env:"CACHE_CONTROL" envDefault:"no-store"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("error getting env configs: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields and enumerated values.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters")
	}

	switch c.EmailCodeBinding {
	case EmailBindingCode, EmailBindingEmail:
	default:
		return fmt.Errorf("EMAIL_CODE_BINDING must be %q or %q", EmailBindingCode, EmailBindingEmail)
	}

	switch c.Mail.Driver {
	case MailDriverLog:
	case MailDriverSMTP:
		if c.Mail.SMTPHost == "" {
			return errors.New("MAIL_SMTP_HOST is required for the smtp mail driver")
		}
	case MailDriverBridge:
		if c.Mail.BridgeURL == "" {
			return errors.New("MAIL_BRIDGE_URL is required for the bridge mail driver")
		}
	default:
		return fmt.Errorf("unknown MAIL_DRIVER %q", c.Mail.Driver)
	}

	if c.Risk.SuspendThreshold <= 0 {
		return errors.New("RISK_SUSPEND_THRESHOLD must be positive")
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.ServerAddr, c.ServerPort)
}
