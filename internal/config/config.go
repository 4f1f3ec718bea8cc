package config

import (
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"membership-portal-backend/internal/domain"
)

// Config represents the application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	JWT        JWTConfig        `yaml:"jwt"`
	Razorpay   RazorpayConfig   `yaml:"razorpay"`
	SendGrid   SendGridConfig   `yaml:"sendgrid"`
	Redis      RedisConfig      `yaml:"redis"`
	Membership MembershipConfig `yaml:"membership"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Log        LogConfig        `yaml:"log"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Storage    StorageConfig    `yaml:"storage"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// Peers allowed to set X-Forwarded-For, as addresses or CIDR ranges
	TrustedProxies []string `yaml:"trusted_proxies"`
}

// TrustedProxyPrefixes parses TrustedProxies. A bare address becomes a
// single-host prefix.
func (s ServerConfig) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(s.TrustedProxies))
	for _, raw := range s.TrustedProxies {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.Contains(raw, "/") {
			p, err := netip.ParsePrefix(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q: %w", raw, err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", raw, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	User           string `yaml:"user"`
	Password       string `yaml:"password"`
	Database       string `yaml:"database"`
	SSLMode        string `yaml:"ssl_mode"`
	MaxConnections int    `yaml:"max_connections"`
	AutoMigrate    bool   `yaml:"auto_migrate"`
}

// JWTConfig contains identity token settings
type JWTConfig struct {
	Secret      string `yaml:"secret"`
	ExpiryHours int    `yaml:"expiry_hours"`
}

// RazorpayConfig contains payment gateway credentials
type RazorpayConfig struct {
	KeyID     string `yaml:"key_id"`
	KeySecret string `yaml:"key_secret"`
	Currency  string `yaml:"currency"`
}

// SendGridConfig contains transactional email settings
type SendGridConfig struct {
	APIKey    string `yaml:"api_key"`
	FromEmail string `yaml:"from_email"`
	FromName  string `yaml:"from_name"`
}

// RedisConfig backs request rate limiting. Empty address disables limiting.
type RedisConfig struct {
	Addr           string `yaml:"addr"`
	Password       string `yaml:"password"`
	DB             int    `yaml:"db"`
	LoginPerMinute int    `yaml:"login_per_minute"`
	IntakePerHour  int    `yaml:"intake_per_hour"`
}

// MembershipConfig holds the server-side price list and reporting windows
type MembershipConfig struct {
	AnnualFee          int64 `yaml:"annual_fee"`
	LifeFee            int64 `yaml:"life_fee"`
	ReminderWindowDays int   `yaml:"reminder_window_days"`
	StalePendingHours  int   `yaml:"stale_pending_hours"`
	TrendMonths        int   `yaml:"trend_months"`
}

// MetricsConfig controls the Prometheus side-channel listener
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	LapseNotices         string `yaml:"lapse_notices"`
	SendExpiryReminders  string `yaml:"send_expiry_reminders"`
	PendingPaymentDigest string `yaml:"pending_payment_digest"`
}

// StorageConfig controls where proof-of-payment uploads are kept
type StorageConfig struct {
	Dir           string `yaml:"dir"`
	MaxProofBytes int64  `yaml:"max_proof_bytes"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse builds a validated Config from YAML bytes plus environment overrides
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func envString(key string, dst *string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

func envInt(key string, dst *int) {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*dst = n
		}
	}
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	envString("DB_HOST", &c.Database.Host)
	envInt("DB_PORT", &c.Database.Port)
	envString("DB_USER", &c.Database.User)
	envString("DB_PASSWORD", &c.Database.Password)
	envString("DB_NAME", &c.Database.Database)
	envString("DB_SSL_MODE", &c.Database.SSLMode)

	// Secrets
	envString("JWT_SECRET", &c.JWT.Secret)
	envString("RAZORPAY_KEY_ID", &c.Razorpay.KeyID)
	envString("RAZORPAY_KEY_SECRET", &c.Razorpay.KeySecret)
	envString("SENDGRID_API_KEY", &c.SendGrid.APIKey)

	// Redis
	envString("REDIS_ADDR", &c.Redis.Addr)
	envString("REDIS_PASSWORD", &c.Redis.Password)

	// Server
	envString("SERVER_HOST", &c.Server.Host)
	envInt("SERVER_PORT", &c.Server.Port)
	if val := os.Getenv("TRUSTED_PROXIES"); val != "" {
		c.Server.TrustedProxies = strings.Split(val, ",")
	}

	// Storage
	envString("STORAGE_DIR", &c.Storage.Dir)

	// Log
	envString("LOG_LEVEL", &c.Log.Level)
	envString("LOG_FORMAT", &c.Log.Format)
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxConnections == 0 {
		c.Database.MaxConnections = 20
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.JWT.ExpiryHours == 0 {
		c.JWT.ExpiryHours = 7 * 24
	}
	if c.Razorpay.Currency == "" {
		c.Razorpay.Currency = "INR"
	}
	if c.SendGrid.FromName == "" {
		c.SendGrid.FromName = "Membership Portal"
	}
	if c.Redis.LoginPerMinute == 0 {
		c.Redis.LoginPerMinute = 10
	}
	if c.Redis.IntakePerHour == 0 {
		c.Redis.IntakePerHour = 20
	}
	if c.Membership.AnnualFee == 0 {
		c.Membership.AnnualFee = 500
	}
	if c.Membership.LifeFee == 0 {
		c.Membership.LifeFee = 5000
	}
	if c.Membership.ReminderWindowDays == 0 {
		c.Membership.ReminderWindowDays = 14
	}
	if c.Membership.StalePendingHours == 0 {
		c.Membership.StalePendingHours = 48
	}
	if c.Membership.TrendMonths == 0 {
		c.Membership.TrendMonths = 6
	}
	if c.Metrics.Port == 0 {
		c.Metrics.Port = 9090
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = "./uploads"
	}
	if c.Storage.MaxProofBytes == 0 {
		c.Storage.MaxProofBytes = 5 << 20
	}
	if c.Scheduler.LapseNotices == "" {
		c.Scheduler.LapseNotices = "0 0 1 * * *" // 1 AM UTC
	}
	if c.Scheduler.SendExpiryReminders == "" {
		c.Scheduler.SendExpiryReminders = "0 0 9 * * *" // 9 AM UTC
	}
	if c.Scheduler.PendingPaymentDigest == "" {
		c.Scheduler.PendingPaymentDigest = "0 30 9 * * *" // 9:30 AM UTC
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if _, err := c.Server.TrustedProxyPrefixes(); err != nil {
		return err
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}

	if c.Razorpay.KeyID == "" || c.Razorpay.KeySecret == "" {
		return fmt.Errorf("razorpay key id and secret are required")
	}

	if c.Membership.AnnualFee <= 0 || c.Membership.LifeFee <= 0 {
		return fmt.Errorf("membership fees must be positive")
	}
	if c.Membership.TrendMonths < 1 || c.Membership.TrendMonths > 24 {
		return fmt.Errorf("membership trend_months must be between 1 and 24, got %d", c.Membership.TrendMonths)
	}

	if c.Metrics.Enabled && (c.Metrics.Port <= 0 || c.Metrics.Port > 65535 || c.Metrics.Port == c.Server.Port) {
		return fmt.Errorf("invalid metrics port: %d", c.Metrics.Port)
	}

	return nil
}

// PlanPrices returns the server-side price list, the single source of truth for online orders
func (c *Config) PlanPrices() map[domain.MembershipType]int64 {
	return map[domain.MembershipType]int64{
		domain.MembershipTypeAnnual: c.Membership.AnnualFee,
		domain.MembershipTypeLife:   c.Membership.LifeFee,
	}
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetMetricsAddress returns the Prometheus listener address
func (c *Config) GetMetricsAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Metrics.Port)
}
