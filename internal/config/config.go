package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/jakechorley/guard-rota/pkg/core/applications"
	"github.com/jakechorley/guard-rota/pkg/core/conflicts"
	"github.com/jakechorley/guard-rota/pkg/core/eligibility"
	"github.com/jakechorley/guard-rota/pkg/core/model"
)

// RulesConfig overrides the working-time thresholds. Zero values keep the defaults.
type RulesConfig struct {
	MinRestHours           float64 `yaml:"minRestHours,omitempty" validate:"gte=0,lte=24"`
	MaxDailyHours          float64 `yaml:"maxDailyHours,omitempty" validate:"gte=0,lte=24"`
	MaxWeeklyHours         float64 `yaml:"maxWeeklyHours,omitempty" validate:"gte=0,lte=168"`
	OvertimeThresholdHours float64 `yaml:"overtimeThresholdHours,omitempty" validate:"gte=0,lte=168"`
	LicenseGraceDays       int     `yaml:"licenseGraceDays,omitempty" validate:"gte=0"`
	LicenseWarningDays     int     `yaml:"licenseWarningDays,omitempty" validate:"gte=0"`
	ApplicationExpiryHours int     `yaml:"applicationExpiryHours,omitempty" validate:"gte=0"`
	DefaultSiteCapacity    int     `yaml:"defaultSiteCapacity,omitempty" validate:"gte=0"`
	MaxAnnualHours         float64 `yaml:"maxAnnualHours,omitempty" validate:"gte=0"`
}

// AdvancedConfig selects which advanced rule groups run
type AdvancedConfig struct {
	DisableFatigue     bool `yaml:"disableFatigue,omitempty"`
	DisableClientRules bool `yaml:"disableClientRules,omitempty"`
	DisableRegulatory  bool `yaml:"disableRegulatory,omitempty"`
	DisableQuality     bool `yaml:"disableQuality,omitempty"`
	StrictMode         bool `yaml:"strictMode,omitempty"`
}

// NotificationsConfig configures application notification emails
type NotificationsConfig struct {
	Enabled     bool   `yaml:"enabled"`
	GmailUserID string `yaml:"gmailUserID" validate:"required_if=Enabled true"`
	GmailSender string `yaml:"gmailSender,omitempty" validate:"omitempty,email"`
}

// PublishingConfig configures publishing schedules to Google Sheets
type PublishingConfig struct {
	RotaSheetID string `yaml:"rotaSheetID,omitempty"`
}

// RecurringTemplate is a named shift template repeated by an RRULE
type RecurringTemplate struct {
	Name      string  `yaml:"name" validate:"required"`
	RRule     string  `yaml:"rrule" validate:"required"`
	StartTime string  `yaml:"startTime" validate:"required,datetime=15:04"`
	EndTime   string  `yaml:"endTime" validate:"required,datetime=15:04"`
	SiteID    string  `yaml:"siteID" validate:"required"`
	SiteName  string  `yaml:"siteName,omitempty"`
	ClientID  string  `yaml:"clientID,omitempty"`
	PayRate   float64 `yaml:"payRate,omitempty" validate:"gte=0"`
	Positions int     `yaml:"positions,omitempty" validate:"gte=0"`
}

// Config represents the application configuration
type Config struct {
	DatabaseURL        string              `yaml:"databaseURL" validate:"required"`
	Timezone           string              `yaml:"timezone,omitempty" validate:"omitempty,timezone"`
	Rules              RulesConfig         `yaml:"rules,omitempty"`
	Advanced           AdvancedConfig      `yaml:"advanced,omitempty"`
	Notifications      NotificationsConfig `yaml:"notifications,omitempty"`
	Publishing         PublishingConfig    `yaml:"publishing,omitempty"`
	Audit              string              `yaml:"audit,omitempty" validate:"omitempty,oneof=all db log off"`
	MetricsTextfile    string              `yaml:"metricsTextfile,omitempty"`
	RecurringTemplates []RecurringTemplate `yaml:"recurringTemplates,omitempty" validate:"dive"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// LoadWithEnv loads guard_rota_config.<env>.yaml, or guard_rota_config.yaml when env is empty
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(env)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct and checks rrule syntax
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	for i, tmpl := range cfg.RecurringTemplates {
		if _, err := rrule.StrToRRule(tmpl.RRule); err != nil {
			return fmt.Errorf("invalid rrule in recurringTemplates[%d]: %w", i, err)
		}
	}

	return nil
}

// ConflictRules returns the detector thresholds with config overrides applied
func (c *Config) ConflictRules() conflicts.Rules {
	rules := conflicts.DefaultRules()
	r := c.Rules

	if r.MinRestHours > 0 {
		rules.MinRestHours = r.MinRestHours
	}
	if r.MaxDailyHours > 0 {
		rules.MaxDailyHours = r.MaxDailyHours
	}
	if r.MaxWeeklyHours > 0 {
		rules.MaxWeeklyHours = r.MaxWeeklyHours
	}
	if r.OvertimeThresholdHours > 0 {
		rules.OvertimeThresholdHours = r.OvertimeThresholdHours
	}
	if r.LicenseGraceDays > 0 {
		rules.LicenseGraceDays = r.LicenseGraceDays
	}
	if r.DefaultSiteCapacity > 0 {
		rules.DefaultSiteCapacity = r.DefaultSiteCapacity
	}
	if r.MaxAnnualHours > 0 {
		rules.MaxAnnualHours = r.MaxAnnualHours
	}

	return rules
}

// EngineOptions returns the advanced rule groups to run
func (c *Config) EngineOptions() conflicts.Options {
	return conflicts.Options{
		Fatigue:     !c.Advanced.DisableFatigue,
		ClientRules: !c.Advanced.DisableClientRules,
		Regulatory:  !c.Advanced.DisableRegulatory,
		Quality:     !c.Advanced.DisableQuality,
		StrictMode:  c.Advanced.StrictMode,
	}
}

// ApplicationExpiry returns how long applications stay pending
func (c *Config) ApplicationExpiry() time.Duration {
	if c.Rules.ApplicationExpiryHours > 0 {
		return time.Duration(c.Rules.ApplicationExpiryHours) * time.Hour
	}
	return applications.DefaultExpiry
}

// Scorer returns an eligibility scorer using the configured licence warning window
func (c *Config) Scorer(now time.Time) *eligibility.Scorer {
	if c.Rules.LicenseWarningDays <= 0 {
		return eligibility.NewScorer(now)
	}

	criteria := eligibility.DefaultCriteria()
	criteria[0] = eligibility.NewLicenseCriterion(c.Rules.LicenseWarningDays)
	return eligibility.NewScorerWithCriteria(now, criteria...)
}

// Location returns the configured timezone used for display, UTC by default
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// FindTemplate returns the recurring template with the given name
func (c *Config) FindTemplate(name string) (*RecurringTemplate, error) {
	for i := range c.RecurringTemplates {
		if c.RecurringTemplates[i].Name == name {
			return &c.RecurringTemplates[i], nil
		}
	}
	return nil, fmt.Errorf("recurring template %q not found", name)
}

// Shift returns the template as a shift with no date or id
func (t RecurringTemplate) Shift() model.Shift {
	return model.Shift{
		StartTime:     t.StartTime,
		EndTime:       t.EndTime,
		SiteID:        t.SiteID,
		SiteName:      t.SiteName,
		ClientID:      t.ClientID,
		PayRate:       t.PayRate,
		PositionsOpen: t.Positions,
	}
}

// findConfigFile searches for the config file in current directory and home directory.
// If env is provided, it adds it as an extension (e.g., "guard_rota_config.test.yaml")
func findConfigFile(env string) (string, error) {
	configFileName := "guard_rota_config.yaml"
	if env != "" {
		configFileName = "guard_rota_config." + env + ".yaml"
	}

	// Check current directory
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file %s not found in current directory or home directory", configFileName)
}
