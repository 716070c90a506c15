// Package config provides configuration management for the simulator.
package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Sweep     SweepConfig     `mapstructure:"sweep"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Log       LogConfig       `mapstructure:"log"`
}

// SweepConfig holds the default experiment-driver parameters.
type SweepConfig struct {
	DefaultTrials int    `mapstructure:"default_trials"`
	DefaultSeed   uint64 `mapstructure:"default_seed"`
	NumEvents     int    `mapstructure:"num_events"`
	Workers       int    `mapstructure:"workers"`
}

// SchedulerConfig holds the default simulator construction parameters.
type SchedulerConfig struct {
	Servers           int     `mapstructure:"servers"`
	PartialServers    bool    `mapstructure:"partial_servers"`
	FullReallocPeriod int     `mapstructure:"full_realloc_period"`
	JobSizeLambda     float64 `mapstructure:"job_size_lambda"`
	ArrivalLambda     float64 `mapstructure:"arrival_lambda"`
}

// TelemetryConfig holds tracing toggles, renamed from the teacher's APM
// section to match this repository's OpenTelemetry-only observability
// surface (see pkg/telemetry).
type TelemetryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Service string `mapstructure:"service"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"` // json or text
}

// Load reads configuration from the specified file path.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/rcgreedy-sim")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Println("Config file not found, using defaults")
		} else if os.IsNotExist(err) {
			fmt.Printf("Config file %s not found, using defaults\n", configPath)
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadFromReader loads configuration from an io.Reader (useful for testing).
func LoadFromReader(configType string, content []byte) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("sweep.default_trials", 10)
	v.SetDefault("sweep.default_seed", 1)
	v.SetDefault("sweep.num_events", 1000)
	v.SetDefault("sweep.workers", 0)

	v.SetDefault("scheduler.servers", 100)
	v.SetDefault("scheduler.partial_servers", false)
	v.SetDefault("scheduler.full_realloc_period", 10)
	v.SetDefault("scheduler.job_size_lambda", 1.0)
	v.SetDefault("scheduler.arrival_lambda", 1.0)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service", "rcgreedy-sim")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.output_path", "")
	v.SetDefault("log.format", "text")
}

// Validate validates the configuration, per spec.md §7's "invalid
// configuration" taxonomy: servers <= 1, trials < 1 and a full realloc
// period < 1 are rejected. Tree depth is not part of this config and is
// not checked here.
func (c *Config) Validate() error {
	if c.Scheduler.Servers <= 1 {
		return fmt.Errorf("scheduler.servers must be > 1")
	}
	if c.Sweep.DefaultTrials < 1 {
		return fmt.Errorf("sweep.default_trials must be >= 1")
	}
	if c.Scheduler.FullReallocPeriod < 1 {
		return fmt.Errorf("scheduler.full_realloc_period must be >= 1")
	}
	return nil
}
