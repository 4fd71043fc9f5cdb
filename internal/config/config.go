package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultJWTSecret     = "change-me-jwt-secret"
	defaultAdminPassword = "change-me-admin-password"
)

type Config struct {
	AppEnv   string
	LogLevel string

	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Payment  PaymentConfig
	Mail     MailConfig
	NATS     NATSConfig
	Redis    RedisConfig
	Upload   UploadConfig
	Notify   NotifyConfig
	Admin    AdminConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string
}

type DatabaseConfig struct {
	URL string
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

type PaymentConfig struct {
	VerifyTimeout   time.Duration
	MaxAttempts     int
	BackoffBase     time.Duration
	BackoffMax      time.Duration
	BreakerFailures int
	BreakerCooldown time.Duration

	Khalti KhaltiConfig
	Esewa  EsewaConfig
	Stripe StripeConfig
}

type KhaltiConfig struct {
	BaseURL   string
	SecretKey string
}

type EsewaConfig struct {
	BaseURL     string
	ProductCode string
}

type StripeConfig struct {
	SecretKey string
	Currency  string
}

type MailConfig struct {
	// Provider is one of log, smtp, mailersend.
	Provider         string
	FromName         string
	FromEmail        string
	SMTPHost         string
	SMTPPort         int
	SMTPUser         string
	SMTPPass         string
	SMTPUseTLS       bool
	MailerSendAPIKey string
}

type NATSConfig struct {
	URL string
}

type RedisConfig struct {
	URL        string
	AuthLimit  int
	AuthWindow time.Duration
}

type UploadConfig struct {
	Dir      string
	MaxBytes int64
}

type NotifyConfig struct {
	QueueSize int
	Workers   int
}

type AdminConfig struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

// Load reads the configuration from the environment. Call godotenv first if a
// .env file should be honoured.
func Load() (*Config, error) {
	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")

	p := &parser{}

	cfg.Server = ServerConfig{
		Port:            getEnv("PORT", "5000"),
		ReadTimeout:     p.duration("HTTP_READ_TIMEOUT", "15s"),
		WriteTimeout:    p.duration("HTTP_WRITE_TIMEOUT", "30s"),
		ShutdownTimeout: p.duration("HTTP_SHUTDOWN_TIMEOUT", "10s"),
		CORSOrigins:     splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
	}
	cfg.Database = DatabaseConfig{URL: getEnv("DATABASE_URL", "file:nepalstay.db?_time_format=sqlite")}
	cfg.JWT = JWTConfig{
		Secret: strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret)),
		TTL:    p.duration("JWT_TTL", "720h"),
	}
	cfg.Payment = PaymentConfig{
		VerifyTimeout:   p.duration("PAYMENT_VERIFY_TIMEOUT", "10s"),
		MaxAttempts:     p.integer("PAYMENT_VERIFY_ATTEMPTS", "3"),
		BackoffBase:     p.duration("PAYMENT_BACKOFF_BASE", "200ms"),
		BackoffMax:      p.duration("PAYMENT_BACKOFF_MAX", "2s"),
		BreakerFailures: p.integer("PAYMENT_BREAKER_FAILURES", "5"),
		BreakerCooldown: p.duration("PAYMENT_BREAKER_COOLDOWN", "30s"),
		Khalti: KhaltiConfig{
			BaseURL:   strings.TrimRight(getEnv("KHALTI_BASE_URL", "https://khalti.com/api/v2"), "/"),
			SecretKey: os.Getenv("KHALTI_SECRET_KEY"),
		},
		Esewa: EsewaConfig{
			BaseURL:     strings.TrimRight(getEnv("ESEWA_BASE_URL", "https://rc.esewa.com.np"), "/"),
			ProductCode: getEnv("ESEWA_PRODUCT_CODE", "EPAYTEST"),
		},
		Stripe: StripeConfig{
			SecretKey: os.Getenv("STRIPE_SECRET_KEY"),
			Currency:  strings.ToLower(getEnv("STRIPE_CURRENCY", "npr")),
		},
	}
	cfg.Mail = MailConfig{
		Provider:         strings.ToLower(getEnv("MAIL_PROVIDER", "log")),
		FromName:         getEnv("MAIL_FROM_NAME", "NepalStay"),
		FromEmail:        getEnv("MAIL_FROM", "no-reply@nepalstay.local"),
		SMTPHost:         getEnv("SMTP_HOST", "localhost"),
		SMTPPort:         p.integer("SMTP_PORT", "1025"),
		SMTPUser:         os.Getenv("SMTP_USER"),
		SMTPPass:         os.Getenv("SMTP_PASS"),
		SMTPUseTLS:       parseBool(getEnv("SMTP_USE_TLS", "false")),
		MailerSendAPIKey: os.Getenv("MAILERSEND_API_KEY"),
	}
	cfg.NATS = NATSConfig{URL: os.Getenv("NATS_URL")}
	cfg.Redis = RedisConfig{
		URL:        os.Getenv("REDIS_URL"),
		AuthLimit:  p.integer("AUTH_RATE_LIMIT", "20"),
		AuthWindow: p.duration("AUTH_RATE_WINDOW", "15m"),
	}
	cfg.Upload = UploadConfig{
		Dir:      getEnv("UPLOAD_DIR", "uploads"),
		MaxBytes: int64(p.integer("UPLOAD_MAX_BYTES", "5242880")),
	}
	cfg.Notify = NotifyConfig{
		QueueSize: p.integer("NOTIFY_QUEUE_SIZE", "256"),
		Workers:   p.integer("NOTIFY_WORKERS", "2"),
	}
	cfg.Admin = AdminConfig{
		Name:     getEnv("ADMIN_NAME", "Company Admin"),
		Email:    strings.ToLower(getEnv("ADMIN_EMAIL", "admin@nepalstay.local")),
		Password: getEnv("ADMIN_PASSWORD", defaultAdminPassword),
		Phone:    getEnv("ADMIN_PHONE", "9800000000"),
	}

	if p.err != nil {
		return nil, p.err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if c.Payment.VerifyTimeout <= 0 {
		return fmt.Errorf("PAYMENT_VERIFY_TIMEOUT must be > 0")
	}
	if c.Payment.MaxAttempts < 1 {
		return fmt.Errorf("PAYMENT_VERIFY_ATTEMPTS must be >= 1")
	}
	if c.Notify.QueueSize < 1 || c.Notify.Workers < 1 {
		return fmt.Errorf("NOTIFY_QUEUE_SIZE and NOTIFY_WORKERS must be >= 1")
	}
	switch c.Mail.Provider {
	case "log", "smtp", "mailersend":
	default:
		return fmt.Errorf("MAIL_PROVIDER must be one of: log, smtp, mailersend")
	}

	if c.IsProd() {
		if isEmptyOrDefault(c.JWT.Secret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if isEmptyOrDefault(c.Admin.Password, defaultAdminPassword) {
			return fmt.Errorf("in prod/release ADMIN_PASSWORD must be set and not default")
		}
	}
	return nil
}

func (c *Config) IsProd() bool {
	env := strings.ToLower(strings.TrimSpace(c.AppEnv))
	return env == "prod" || env == "production" || env == "release"
}

// parser collects the first parse error so Load can report it once.
type parser struct {
	err error
}

func (p *parser) duration(name, fallback string) time.Duration {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d
}

func (p *parser) integer(name, fallback string) int {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseBool(value string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
