package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/guard-rota/pkg/core/applications"
	"github.com/jakechorley/guard-rota/pkg/core/conflicts"
)

func validTemplate() RecurringTemplate {
	return RecurringTemplate{
		Name:      "riverside-nights",
		RRule:     "FREQ=WEEKLY;BYDAY=FR,SA",
		StartTime: "22:00",
		EndTime:   "06:00",
		SiteID:    "site-1",
		SiteName:  "Riverside Depot",
		PayRate:   15.25,
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := &Config{
		DatabaseURL: "postgres://localhost:5432/guard_rota",
		Timezone:    "Europe/London",
		Rules: RulesConfig{
			MinRestHours:   12,
			MaxWeeklyHours: 50,
		},
		Notifications: NotificationsConfig{
			Enabled:     true,
			GmailUserID: "me",
			GmailSender: "rota@example.com",
		},
		Audit:              "all",
		MetricsTextfile:    "/var/lib/node_exporter/guard_rota.prom",
		RecurringTemplates: []RecurringTemplate{validTemplate()},
	}

	err := Validate(cfg)
	assert.NoError(t, err)
}

func TestValidate_MinimalConfig(t *testing.T) {
	cfg := &Config{DatabaseURL: "postgres://localhost:5432/guard_rota"}

	err := Validate(cfg)
	assert.NoError(t, err)
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(cfg *Config)
		expected string
	}{
		{
			name:     "missing database url",
			mutate:   func(cfg *Config) { cfg.DatabaseURL = "" },
			expected: "validation failed",
		},
		{
			name:     "unknown audit mode",
			mutate:   func(cfg *Config) { cfg.Audit = "everything" },
			expected: "validation failed",
		},
		{
			name:     "unknown timezone",
			mutate:   func(cfg *Config) { cfg.Timezone = "Mars/Olympus" },
			expected: "validation failed",
		},
		{
			name:     "negative rest hours",
			mutate:   func(cfg *Config) { cfg.Rules.MinRestHours = -1 },
			expected: "validation failed",
		},
		{
			name:     "notifications enabled without gmail user",
			mutate:   func(cfg *Config) { cfg.Notifications.Enabled = true },
			expected: "validation failed",
		},
		{
			name: "template with bad start time",
			mutate: func(cfg *Config) {
				tmpl := validTemplate()
				tmpl.StartTime = "10pm"
				cfg.RecurringTemplates = []RecurringTemplate{tmpl}
			},
			expected: "validation failed",
		},
		{
			name: "template with empty rrule",
			mutate: func(cfg *Config) {
				tmpl := validTemplate()
				tmpl.RRule = ""
				cfg.RecurringTemplates = []RecurringTemplate{tmpl}
			},
			expected: "validation failed",
		},
		{
			name: "template with invalid rrule",
			mutate: func(cfg *Config) {
				tmpl := validTemplate()
				tmpl.RRule = "INVALID_RRULE_SYNTAX"
				cfg.RecurringTemplates = []RecurringTemplate{validTemplate(), tmpl}
			},
			expected: "invalid rrule in recurringTemplates[1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{DatabaseURL: "postgres://localhost:5432/guard_rota"}
			tt.mutate(cfg)

			err := Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expected)
		})
	}
}

func TestLoadFromPath_ValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "guard_rota_config.yaml")

	validConfig := `
databaseURL: "postgres://localhost:5432/guard_rota"
timezone: "Europe/London"
rules:
  minRestHours: 12
  applicationExpiryHours: 48
advanced:
  disableQuality: true
  strictMode: true
notifications:
  enabled: true
  gmailUserID: "me"
audit: "db"
recurringTemplates:
  - name: "riverside-nights"
    rrule: "FREQ=WEEKLY;BYDAY=FR,SA"
    startTime: "22:00"
    endTime: "06:00"
    siteID: "site-1"
    siteName: "Riverside Depot"
    positions: 2
`

	err := os.WriteFile(configPath, []byte(validConfig), 0644)
	require.NoError(t, err)

	cfg, err := LoadFromPath(configPath)
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost:5432/guard_rota", cfg.DatabaseURL)
	assert.Equal(t, "db", cfg.Audit)
	assert.True(t, cfg.Notifications.Enabled)
	assert.Equal(t, 48*time.Hour, cfg.ApplicationExpiry())

	options := cfg.EngineOptions()
	assert.True(t, options.Fatigue)
	assert.False(t, options.Quality)
	assert.True(t, options.StrictMode)

	require.Len(t, cfg.RecurringTemplates, 1)
	tmpl, err := cfg.FindTemplate("riverside-nights")
	require.NoError(t, err)
	shift := tmpl.Shift()
	assert.Equal(t, "22:00", shift.StartTime)
	assert.Equal(t, 2, shift.PositionsOpen)
}

func TestLoadFromPath_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid_yaml.yaml")

	invalidYAML := `
databaseURL: "postgres://localhost"
  invalid indentation
audit: "all"
`

	err := os.WriteFile(configPath, []byte(invalidYAML), 0644)
	require.NoError(t, err)

	_, err = LoadFromPath(configPath)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadFromPath_FileNotFound(t *testing.T) {
	_, err := LoadFromPath("/nonexistent/path/config.yaml")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestConflictRules_Defaults(t *testing.T) {
	cfg := &Config{DatabaseURL: "postgres://localhost"}
	assert.Equal(t, conflicts.DefaultRules(), cfg.ConflictRules())
	assert.Equal(t, applications.DefaultExpiry, cfg.ApplicationExpiry())
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestConflictRules_Overrides(t *testing.T) {
	cfg := &Config{
		DatabaseURL: "postgres://localhost",
		Rules: RulesConfig{
			MinRestHours:           12,
			MaxDailyHours:          10,
			MaxWeeklyHours:         44,
			OvertimeThresholdHours: 37.5,
			LicenseGraceDays:       28,
			DefaultSiteCapacity:    4,
			MaxAnnualHours:         2000,
		},
	}

	rules := cfg.ConflictRules()
	assert.Equal(t, 12.0, rules.MinRestHours)
	assert.Equal(t, 10.0, rules.MaxDailyHours)
	assert.Equal(t, 44.0, rules.MaxWeeklyHours)
	assert.Equal(t, 37.5, rules.OvertimeThresholdHours)
	assert.Equal(t, 28, rules.LicenseGraceDays)
	assert.Equal(t, 4, rules.DefaultSiteCapacity)
	assert.Equal(t, 2000.0, rules.MaxAnnualHours)
	assert.Equal(t, conflicts.DefaultRules().ConsecutiveDaysBlocking, rules.ConsecutiveDaysBlocking)
}

func TestFindTemplate_Missing(t *testing.T) {
	cfg := &Config{DatabaseURL: "postgres://localhost"}
	_, err := cfg.FindTemplate("nope")
	assert.Error(t, err)
}

func TestLoadOAuthClientFromPath(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "oauthClient.json")

	content := `{
  "installed": {
    "client_id": "client",
    "project_id": "guard-rota",
    "auth_uri": "https://accounts.google.com/o/oauth2/auth",
    "token_uri": "https://oauth2.googleapis.com/token",
    "auth_provider_x509_cert_url": "https://www.googleapis.com/oauth2/v1/certs",
    "client_secret": "secret",
    "redirect_uris": ["http://localhost"]
  }
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadOAuthClientFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "client", cfg.Installed.ClientID)

	require.NoError(t, os.WriteFile(path, []byte(`{"installed": {"client_id": "client"}}`), 0644))
	_, err = LoadOAuthClientFromPath(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "oauth client validation failed")
}
