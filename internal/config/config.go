package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	SendGrid  SendGridConfig  `yaml:"sendgrid"`
	Firebase  FirebaseConfig  `yaml:"firebase"`
	JWT       JWTConfig       `yaml:"jwt"`
	Log       LogConfig       `yaml:"log"`
	Bundle    BundleConfig    `yaml:"bundle"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains gRPC and HTTP server settings
type ServerConfig struct {
	Host     string   `yaml:"host"`
	Port     int      `yaml:"port"`
	HTTPPort int      `yaml:"http_port"` // defaults to Port+1
	Origins  []string `yaml:"allowed_origins"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // "postgres" (lib/pq) or "pgx"
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// RedisConfig contains the rate limiter and job lock store. Empty Addr disables both.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// SendGridConfig contains email delivery settings. Empty APIKey disables email.
type SendGridConfig struct {
	APIKey    string `yaml:"api_key"`
	FromEmail string `yaml:"from_email"`
	FromName  string `yaml:"from_name"`
}

// FirebaseConfig contains push delivery settings. Empty CredentialsFile disables push.
type FirebaseConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	ProjectID       string `yaml:"project_id"`
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// BundleConfig contains bundle availability, pricing and approval settings
type BundleConfig struct {
	SuggestionHorizonDays   int     `yaml:"suggestion_horizon_days"`
	MaxSuggestions          int     `yaml:"max_suggestions"`
	ApprovalTimeoutHours    int     `yaml:"approval_timeout_hours"`
	DefaultLeadTimeDays     int     `yaml:"default_lead_time_days"`
	PlatformFeePercent      float64 `yaml:"platform_fee_percent"`
	WeeklyThresholdDays     int     `yaml:"weekly_threshold_days"`
	MonthlyThresholdDays    int     `yaml:"monthly_threshold_days"`
	MonthLengthDays         int     `yaml:"month_length_days"`
	AvailabilityConcurrency int     `yaml:"availability_concurrency"`
	MaxDecisionRetries      int     `yaml:"max_decision_retries"`
	MaxRequestsPerHour      int     `yaml:"max_requests_per_hour"`
}

// PlatformFee returns the fee percentage as a decimal
func (b BundleConfig) PlatformFee() decimal.Decimal {
	return decimal.NewFromFloat(b.PlatformFeePercent)
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	ExpireStaleApprovals string `yaml:"expire_stale_approvals"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	// Pick up a local .env if there is one
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse builds a configuration from YAML bytes, applying env overrides and defaults
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override with environment variables if present
	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_DRIVER"); val != "" {
		c.Database.Driver = val
	}
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Redis
	if val := os.Getenv("REDIS_ADDR"); val != "" {
		c.Redis.Addr = val
	}
	if val := os.Getenv("REDIS_USER"); val != "" {
		c.Redis.User = val
	}
	if val := os.Getenv("REDIS_PASSWORD"); val != "" {
		c.Redis.Password = val
	}

	// SendGrid
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.SendGrid.APIKey = val
	}
	if val := os.Getenv("SENDGRID_FROM_EMAIL"); val != "" {
		c.SendGrid.FromEmail = val
	}

	// Firebase
	if val := os.Getenv("FIREBASE_CREDENTIALS_FILE"); val != "" {
		c.Firebase.CredentialsFile = val
	}
	if val := os.Getenv("FIREBASE_PROJECT_ID"); val != "" {
		c.Firebase.ProjectID = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}
	if val := os.Getenv("SERVER_HTTP_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.HTTPPort)
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Bundle
	if val := os.Getenv("BUNDLE_APPROVAL_TIMEOUT_HOURS"); val != "" {
		fmt.Sscanf(val, "%d", &c.Bundle.ApprovalTimeoutHours)
	}
	if val := os.Getenv("BUNDLE_PLATFORM_FEE_PERCENT"); val != "" {
		fmt.Sscanf(val, "%g", &c.Bundle.PlatformFeePercent)
	}
	if val := os.Getenv("BUNDLE_DEFAULT_LEAD_TIME_DAYS"); val != "" {
		fmt.Sscanf(val, "%d", &c.Bundle.DefaultLeadTimeDays)
	}

	// Set defaults for log if not configured
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid and fills in defaults
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = c.Server.Port + 1
	}
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.Server.HTTPPort)
	}

	// Database validation
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.Database.Driver != "postgres" && c.Database.Driver != "pgx" {
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
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
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	// JWT validation
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}

	if c.SendGrid.APIKey != "" && c.SendGrid.FromEmail == "" {
		return fmt.Errorf("sendgrid from_email is required when api_key is set")
	}

	if err := c.Bundle.applyDefaults(); err != nil {
		return err
	}

	// Scheduler defaults
	if c.Scheduler.ExpireStaleApprovals == "" {
		c.Scheduler.ExpireStaleApprovals = "0 */15 * * * *" // every 15 minutes
	}

	return nil
}

func (b *BundleConfig) applyDefaults() error {
	if b.SuggestionHorizonDays == 0 {
		b.SuggestionHorizonDays = 14
	}
	if b.MaxSuggestions == 0 {
		b.MaxSuggestions = 3
	}
	if b.ApprovalTimeoutHours == 0 {
		b.ApprovalTimeoutHours = 48
	}
	if b.WeeklyThresholdDays == 0 {
		b.WeeklyThresholdDays = 7
	}
	if b.MonthlyThresholdDays == 0 {
		b.MonthlyThresholdDays = 30
	}
	if b.MonthLengthDays == 0 {
		b.MonthLengthDays = 30
	}
	if b.AvailabilityConcurrency == 0 {
		b.AvailabilityConcurrency = 8
	}
	if b.MaxDecisionRetries == 0 {
		b.MaxDecisionRetries = 3
	}
	if b.MaxRequestsPerHour == 0 {
		b.MaxRequestsPerHour = 10
	}

	if b.SuggestionHorizonDays < 0 || b.MaxSuggestions < 0 {
		return fmt.Errorf("suggestion horizon and count must not be negative")
	}
	if b.ApprovalTimeoutHours < 0 {
		return fmt.Errorf("invalid approval timeout: %dh", b.ApprovalTimeoutHours)
	}
	if b.DefaultLeadTimeDays < 0 {
		return fmt.Errorf("invalid default lead time: %d days", b.DefaultLeadTimeDays)
	}
	if b.PlatformFeePercent < 0 || b.PlatformFeePercent > 100 {
		return fmt.Errorf("platform fee percent must be within [0,100]: %g", b.PlatformFeePercent)
	}
	if b.WeeklyThresholdDays > b.MonthlyThresholdDays {
		return fmt.Errorf("weekly threshold (%d) must not exceed monthly threshold (%d)", b.WeeklyThresholdDays, b.MonthlyThresholdDays)
	}
	if b.AvailabilityConcurrency < 1 {
		return fmt.Errorf("availability concurrency must be at least 1")
	}
	return nil
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

// GetServerAddress returns the gRPC server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetHTTPAddress returns the HTTP server address
func (c *Config) GetHTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.HTTPPort)
}
