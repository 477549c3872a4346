package config

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"github.com/symexlab/statoor/pkg/render"
	"github.com/symexlab/statoor/pkg/stats"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultLogLevel is the default logging level.
	DefaultLogLevel = "info"

	// DefaultProfile is the default report column profile.
	DefaultProfile = "default"

	// DefaultFormat is the default report output format.
	DefaultFormat = "text"

	// DefaultListen is the default dashboard server address.
	DefaultListen = ":8790"
)

// Config is the root configuration for statoor.
type Config struct {
	Global GlobalConfig `yaml:"global" mapstructure:"global"`
	Report ReportConfig `yaml:"report" mapstructure:"report"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
}

// GlobalConfig contains global application settings.
type GlobalConfig struct {
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
}

// ReportConfig contains report generation defaults. CLI flags
// override these per invocation.
type ReportConfig struct {
	Profile string `yaml:"profile" mapstructure:"profile"`
	Format  string `yaml:"format" mapstructure:"format"`
}

// ServerConfig contains dashboard HTTP server settings.
type ServerConfig struct {
	Listen      string          `yaml:"listen" mapstructure:"listen"`
	CORSOrigins []string        `yaml:"cors_origins,omitempty" mapstructure:"cors_origins"`
	RateLimit   RateLimitConfig `yaml:"rate_limit,omitempty" mapstructure:"rate_limit"`
}

// RateLimitConfig configures per-IP rate limiting on query endpoints.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled" mapstructure:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
}

// envBindings maps config keys to their environment overrides.
var envBindings = map[string]string{
	"global.log_level":                      "STATOOR_LOG_LEVEL",
	"report.profile":                        "STATOOR_REPORT_PROFILE",
	"report.format":                         "STATOOR_REPORT_FORMAT",
	"server.listen":                         "STATOOR_SERVER_LISTEN",
	"server.rate_limit.enabled":             "STATOOR_RATE_LIMIT_ENABLED",
	"server.rate_limit.requests_per_minute": "STATOOR_RATE_LIMIT_RPM",
}

// Load reads a yaml configuration file, applies environment variable
// overrides, and fills in defaults. An empty path yields the default
// configuration (env overrides still apply).
func Load(path string) (*Config, error) {
	base := make(map[string]any)

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		if err := yaml.Unmarshal(data, &base); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	v := viper.New()

	if err := v.MergeConfigMap(base); err != nil {
		return nil, fmt.Errorf("merging config: %w", err)
	}

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	var cfg Config

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("building config decoder: %w", err)
	}

	if err := dec.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// applyDefaults sets default values for unspecified options.
func (c *Config) applyDefaults() {
	if c.Global.LogLevel == "" {
		c.Global.LogLevel = DefaultLogLevel
	}

	if c.Report.Profile == "" {
		c.Report.Profile = DefaultProfile
	}

	if c.Report.Format == "" {
		c.Report.Format = DefaultFormat
	}

	if c.Server.Listen == "" {
		c.Server.Listen = DefaultListen
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if !stats.ValidProfile(c.Report.Profile) {
		return fmt.Errorf("unknown report profile %q", c.Report.Profile)
	}

	if !render.ValidFormat(c.Report.Format) {
		return fmt.Errorf("unknown report format %q", c.Report.Format)
	}

	if c.Server.RateLimit.Enabled && c.Server.RateLimit.RequestsPerMinute < 1 {
		return fmt.Errorf("rate limit requires requests_per_minute >= 1")
	}

	return nil
}
