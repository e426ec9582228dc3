package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
	assert.Equal(t, 30, cfg.Sampling.CurrentSamples)
	assert.Equal(t, 5, cfg.Sampling.VoltageSamples)
	assert.Equal(t, time.Millisecond, cfg.Sampling.SettleDelay)
	assert.Equal(t, 250*time.Millisecond, cfg.Display.Hold)
	assert.Equal(t, time.Millisecond, cfg.Display.CharDelay)
	assert.Equal(t, 3, cfg.Mock.BusyPolls)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(tmpfile.Name()) })

	_, err = tmpfile.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())
	return tmpfile.Name()
}

func TestLoad_ValidYAML(t *testing.T) {
	name := writeTemp(t, `
serial:
  port: "/dev/ttyUSB1"
  baud_rate: 57600
  read_timeout: 10ms

sampling:
  current_samples: 16
  voltage_samples: 8
  settle_delay: 2ms
  max_polls: 500

display:
  hold: 500ms
  char_delay: 0s

mock:
  voltage: 24.5
  current: 3.2
  noise_level: 0
  busy_polls: 1
`)

	cfg, err := Load(name)
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyUSB1", cfg.Serial.Port)
	assert.Equal(t, 57600, cfg.Serial.BaudRate)
	assert.Equal(t, 10*time.Millisecond, cfg.Serial.ReadTimeout)
	assert.Equal(t, 16, cfg.Sampling.CurrentSamples)
	assert.Equal(t, 8, cfg.Sampling.VoltageSamples)
	assert.Equal(t, 2*time.Millisecond, cfg.Sampling.SettleDelay)
	assert.Equal(t, 500, cfg.Sampling.MaxPolls)
	assert.Equal(t, 500*time.Millisecond, cfg.Display.Hold)
	assert.Equal(t, 24.5, cfg.Mock.Voltage)
	assert.Equal(t, 3.2, cfg.Mock.Current)
	assert.Equal(t, 1, cfg.Mock.BusyPolls)
}

func TestLoad_InvalidYAML(t *testing.T) {
	name := writeTemp(t, "invalid: yaml: content: [")

	cfg, err := Load(name)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_PartialYAML(t *testing.T) {
	name := writeTemp(t, `
sampling:
  current_samples: 10
`)

	cfg, err := Load(name)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Sampling.CurrentSamples)
	assert.Equal(t, 5, cfg.Sampling.VoltageSamples)             // default
	assert.Equal(t, 250*time.Millisecond, cfg.Display.Hold)     // default
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)            // default
	assert.Equal(t, time.Millisecond, cfg.Sampling.SettleDelay) // default
}

func TestLoad_RejectsOversizedWindow(t *testing.T) {
	name := writeTemp(t, `
sampling:
  current_samples: 64
`)

	cfg, err := Load(name)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "window at limit", mutate: func(c *Config) { c.Sampling.VoltageSamples = MaxSamples }},
		{name: "voltage window too large", mutate: func(c *Config) { c.Sampling.VoltageSamples = MaxSamples + 1 }, wantErr: true},
		{name: "negative polls", mutate: func(c *Config) { c.Sampling.MaxPolls = -1 }, wantErr: true},
		{name: "negative mock current", mutate: func(c *Config) { c.Mock.Current = -0.5 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSave(t *testing.T) {
	cfg := Default()
	cfg.Serial.Port = "/dev/ttyUSB0"
	cfg.Sampling.CurrentSamples = 20

	tmpfile, err := os.CreateTemp("", "test_save_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	err = cfg.Save(tmpfile.Name())
	require.NoError(t, err)

	loaded, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", loaded.Serial.Port)
	assert.Equal(t, 20, loaded.Sampling.CurrentSamples)
	assert.Equal(t, cfg.Display, loaded.Display)
}
