// Package config loads the smu tool settings and configuration records.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/OpenTraceLab/OpenTraceSMU/pkg/match"
	"github.com/OpenTraceLab/OpenTraceSMU/pkg/report"
	"github.com/OpenTraceLab/OpenTraceSMU/pkg/smu"
	"github.com/OpenTraceLab/OpenTraceSMU/pkg/transport"
)

// EnvPrefix prefixes environment overrides, e.g. SMU_TRANSPORT_KIND.
const EnvPrefix = "SMU"

// Config holds the tool settings.
type Config struct {
	Transport TransportConfig `mapstructure:"transport"`
	Report    ReportConfig    `mapstructure:"report"`
	Prompt    PromptConfig    `mapstructure:"prompt"`
	Log       LogConfig       `mapstructure:"log"`
}

// TransportConfig selects and addresses the instrument link.
type TransportConfig struct {
	Kind    string        `mapstructure:"kind"`
	Address string        `mapstructure:"address"`
	GPIB    int           `mapstructure:"gpib"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ReportConfig controls how run data is persisted.
type ReportConfig struct {
	Delimiter string `mapstructure:"delimiter"`
	Compress  bool   `mapstructure:"compress"`
	Digest    bool   `mapstructure:"digest"`
}

// PromptConfig controls how missing values are requested.
type PromptConfig struct {
	Interactive bool `mapstructure:"interactive"`
	MaxAttempts int  `mapstructure:"max_attempts"`
}

// LogConfig sets the log level.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() *Config {
	return &Config{
		Transport: TransportConfig{
			Kind:    string(transport.KindSim),
			GPIB:    24,
			Timeout: transport.DefaultTimeout,
		},
		Report: ReportConfig{
			Delimiter: "tab",
			Digest:    true,
		},
		Prompt: PromptConfig{
			Interactive: false,
			MaxAttempts: smu.DefaultMaxAttempts,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path (if not empty) over the defaults and applies SMU_*
// environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("transport.kind", defaults.Transport.Kind)
	v.SetDefault("transport.address", defaults.Transport.Address)
	v.SetDefault("transport.gpib", defaults.Transport.GPIB)
	v.SetDefault("transport.timeout", defaults.Transport.Timeout)
	v.SetDefault("report.delimiter", defaults.Report.Delimiter)
	v.SetDefault("report.compress", defaults.Report.Compress)
	v.SetDefault("report.digest", defaults.Report.Digest)
	v.SetDefault("prompt.interactive", defaults.Prompt.Interactive)
	v.SetDefault("prompt.max_attempts", defaults.Prompt.MaxAttempts)
	v.SetDefault("log.level", defaults.Log.Level)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings for consistency.
func (c *Config) Validate() error {
	switch transport.Kind(strings.ToLower(c.Transport.Kind)) {
	case transport.KindSim, transport.KindUSBTMC, transport.KindPrologix, transport.KindSocket:
	default:
		return fmt.Errorf("config: unknown transport kind %q", c.Transport.Kind)
	}
	if strings.EqualFold(c.Transport.Kind, string(transport.KindSocket)) && c.Transport.Address == "" {
		return errors.New("config: socket transport needs an address")
	}
	if c.Transport.GPIB < 0 || c.Transport.GPIB > 30 {
		return fmt.Errorf("config: GPIB address %d out of range 0-30", c.Transport.GPIB)
	}
	if c.Transport.Timeout < 0 {
		return errors.New("config: negative transport timeout")
	}
	if !match.Any(c.Report.Delimiter, "tab", "\t", "comma", "csv", ",") {
		return fmt.Errorf("config: unknown report delimiter %q", c.Report.Delimiter)
	}
	if c.Prompt.MaxAttempts < 0 {
		return errors.New("config: negative prompt.max_attempts")
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// TransportSpec converts the transport settings for transport.Open.
func (c *Config) TransportSpec() transport.Spec {
	return transport.Spec{
		Kind:    transport.Kind(strings.ToLower(c.Transport.Kind)),
		Address: c.Transport.Address,
		GPIB:    c.Transport.GPIB,
		Timeout: c.Transport.Timeout,
	}
}

// Delimiter returns the report field separator.
func (c *Config) Delimiter() string {
	return report.Delimiter(c.Report.Delimiter)
}

// LogLevel returns the configured level, or info if it does not parse.
func (c *Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// LoadRecord decodes a YAML configuration record.
func LoadRecord(path string) (*smu.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read record: %w", err)
	}
	return ParseRecord(data)
}

// ParseRecord decodes a YAML configuration record held in memory.
func ParseRecord(data []byte) (*smu.Record, error) {
	var rec smu.Record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("config: parse record: %w", err)
	}
	return &rec, nil
}
