package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
scheduler:
  servers: 50
`
	err := os.WriteFile(configFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := Load(configFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 10, cfg.Sweep.DefaultTrials)
	assert.Equal(t, 1000, cfg.Sweep.NumEvents)
	assert.Equal(t, 10, cfg.Scheduler.FullReallocPeriod)
	assert.Equal(t, "rcgreedy-sim", cfg.Telemetry.Service)
	assert.Equal(t, 50, cfg.Scheduler.Servers)
}

func TestLoad_CustomValues(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
sweep:
  default_trials: 25
  default_seed: 7
  num_events: 500
scheduler:
  servers: 200
  partial_servers: true
  full_realloc_period: 5
  job_size_lambda: 2.5
telemetry:
  enabled: true
  service: custom-sim
`
	err := os.WriteFile(configFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := Load(configFile)
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Sweep.DefaultTrials)
	assert.Equal(t, uint64(7), cfg.Sweep.DefaultSeed)
	assert.Equal(t, 200, cfg.Scheduler.Servers)
	assert.True(t, cfg.Scheduler.PartialServers)
	assert.Equal(t, 5, cfg.Scheduler.FullReallocPeriod)
	assert.Equal(t, 2.5, cfg.Scheduler.JobSizeLambda)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "custom-sim", cfg.Telemetry.Service)
}

func TestLoad_InvalidServerCount(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
scheduler:
  servers: 1
`
	err := os.WriteFile(configFile, []byte(content), 0644)
	require.NoError(t, err)

	_, err = Load(configFile)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "servers must be > 1")
}

func TestValidate_InvalidTrials(t *testing.T) {
	cfg := &Config{
		Scheduler: SchedulerConfig{Servers: 10, FullReallocPeriod: 5},
		Sweep:     SweepConfig{DefaultTrials: 0},
	}
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "trials must be >= 1")
}

func TestValidate_InvalidReallocPeriod(t *testing.T) {
	cfg := &Config{
		Scheduler: SchedulerConfig{Servers: 10, FullReallocPeriod: 0},
		Sweep:     SweepConfig{DefaultTrials: 1},
	}
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "full_realloc_period must be >= 1")
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
}

func TestLoadFromReader(t *testing.T) {
	content := []byte(`
scheduler:
  servers: 75
  job_size_lambda: 3
`)
	cfg, err := LoadFromReader("yaml", content)
	require.NoError(t, err)
	assert.Equal(t, 75, cfg.Scheduler.Servers)
	assert.Equal(t, 3.0, cfg.Scheduler.JobSizeLambda)
}
