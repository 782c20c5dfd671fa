package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
server:
  port: 50051
database:
  host: localhost
  user: app
  database: tools
jwt:
  secret: 0123456789abcdef0123456789abcdef
`

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, 50052, cfg.Server.HTTPPort)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)

	assert.Equal(t, 14, cfg.Bundle.SuggestionHorizonDays)
	assert.Equal(t, 3, cfg.Bundle.MaxSuggestions)
	assert.Equal(t, 48, cfg.Bundle.ApprovalTimeoutHours)
	assert.Equal(t, 7, cfg.Bundle.WeeklyThresholdDays)
	assert.Equal(t, 30, cfg.Bundle.MonthlyThresholdDays)
	assert.Equal(t, 30, cfg.Bundle.MonthLengthDays)
	assert.Equal(t, 8, cfg.Bundle.AvailabilityConcurrency)
	assert.Equal(t, 3, cfg.Bundle.MaxDecisionRetries)
	assert.True(t, cfg.Bundle.PlatformFee().IsZero())
	assert.Equal(t, "0 */15 * * * *", cfg.Scheduler.ExpireStaleApprovals)
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_DRIVER", "pgx")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("BUNDLE_APPROVAL_TIMEOUT_HOURS", "24")
	t.Setenv("BUNDLE_PLATFORM_FEE_PERCENT", "2.5")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "pgx", cfg.Database.Driver)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, 24, cfg.Bundle.ApprovalTimeoutHours)
	assert.Equal(t, "2.5", cfg.Bundle.PlatformFee().String())
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "postgres://app:@db.internal:6543/tools?sslmode=disable", cfg.GetDatabaseConnectionString())
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		msg  string
	}{
		{"missing port", "database: {host: h, user: u, database: d}\njwt: {secret: 0123456789abcdef0123456789abcdef}", "invalid server port"},
		{"short secret", "server: {port: 1}\ndatabase: {host: h, user: u, database: d}\njwt: {secret: short}", "at least 32 characters"},
		{"bad driver", "server: {port: 1}\ndatabase: {driver: mysql, host: h, user: u, database: d}\njwt: {secret: 0123456789abcdef0123456789abcdef}", "unsupported database driver"},
		{"fee out of range", minimalYAML + "bundle: {platform_fee_percent: 120}", "platform fee percent"},
		{"thresholds inverted", minimalYAML + "bundle: {weekly_threshold_days: 40, monthly_threshold_days: 30}", "weekly threshold"},
		{"sendgrid without sender", minimalYAML + "sendgrid: {api_key: SG.x}", "from_email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalYAML), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":50051", cfg.GetServerAddress())
	assert.Equal(t, ":50052", cfg.GetHTTPAddress())

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestGetSecurityLevel(t *testing.T) {
	assert.Equal(t, SecurityPublic, GetSecurityLevel("/neighbortools.v1.BundleRentalService/CheckBundleAvailability"))
	assert.Equal(t, SecurityAccess, GetSecurityLevel("/neighbortools.v1.BundleRentalService/SubmitDecision"))
	assert.Equal(t, SecurityAccess, GetSecurityLevel("/unknown.Service/Method"))
}
