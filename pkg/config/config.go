package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
// Calibration constants are compiled in (see package convert) and are not part of it.
type Config struct {
	Serial   SerialConfig   `yaml:"serial"`
	Sampling SamplingConfig `yaml:"sampling"`
	Display  DisplayConfig  `yaml:"display"`
	Mock     MockConfig     `yaml:"mock"`
}

// SerialConfig contains serial port configuration for the ADC bridge.
type SerialConfig struct {
	Port        string        `yaml:"port"`
	BaudRate    int           `yaml:"baud_rate"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

// SamplingConfig contains ADC averaging parameters.
type SamplingConfig struct {
	CurrentSamples int           `yaml:"current_samples"` // Conversions averaged for the current channel
	VoltageSamples int           `yaml:"voltage_samples"` // Conversions averaged for the voltage channel
	SettleDelay    time.Duration `yaml:"settle_delay"`    // Delay between conversions
	MaxPolls       int           `yaml:"max_polls"`       // Busy polls per conversion before timing out (0 = wait forever)
}

// DisplayConfig contains display pacing parameters.
type DisplayConfig struct {
	Hold      time.Duration `yaml:"hold"`       // Hold after each full render
	CharDelay time.Duration `yaml:"char_delay"` // Delay between buffer characters
}

// MockConfig contains simulated supply configuration.
type MockConfig struct {
	Voltage    float64       `yaml:"voltage"`     // Simulated supply voltage (V)
	Current    float64       `yaml:"current"`     // Simulated load current (A)
	NoiseLevel float64       `yaml:"noise_level"` // Noise amplitude in raw ADC counts
	Ripple     time.Duration `yaml:"ripple"`      // Period of the slow load ripple (0 = none)
	BusyPolls  int           `yaml:"busy_polls"`  // Polls a conversion stays busy
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:        "/dev/ttyACM0",
			BaudRate:    115200,
			ReadTimeout: 5 * time.Millisecond,
		},
		Sampling: SamplingConfig{
			CurrentSamples: 30,
			VoltageSamples: 5,
			SettleDelay:    time.Millisecond,
			MaxPolls:       10000,
		},
		Display: DisplayConfig{
			Hold:      250 * time.Millisecond,
			CharDelay: time.Millisecond,
		},
		Mock: MockConfig{
			Voltage:    12.0,
			Current:    1.5,
			NoiseLevel: 2.0,
			Ripple:     10 * time.Second,
			BusyPolls:  3,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MaxSamples is the largest averaging window the 32-bit accumulator is rated for.
const MaxSamples = 32

// Validate checks value ranges that defaults cannot repair.
func (c *Config) Validate() error {
	if c.Sampling.CurrentSamples > MaxSamples {
		return fmt.Errorf("invalid config: current_samples %d exceeds %d", c.Sampling.CurrentSamples, MaxSamples)
	}
	if c.Sampling.VoltageSamples > MaxSamples {
		return fmt.Errorf("invalid config: voltage_samples %d exceeds %d", c.Sampling.VoltageSamples, MaxSamples)
	}
	if c.Sampling.MaxPolls < 0 {
		return fmt.Errorf("invalid config: max_polls must not be negative")
	}
	if c.Mock.Voltage < 0 || c.Mock.Current < 0 {
		return fmt.Errorf("invalid config: mock voltage and current must not be negative")
	}
	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}
	if c.Serial.ReadTimeout == 0 {
		c.Serial.ReadTimeout = def.Serial.ReadTimeout
	}

	if c.Sampling.CurrentSamples <= 0 {
		c.Sampling.CurrentSamples = def.Sampling.CurrentSamples
	}
	if c.Sampling.VoltageSamples <= 0 {
		c.Sampling.VoltageSamples = def.Sampling.VoltageSamples
	}
	if c.Sampling.SettleDelay == 0 {
		c.Sampling.SettleDelay = def.Sampling.SettleDelay
	}

	if c.Display.Hold == 0 {
		c.Display.Hold = def.Display.Hold
	}
	if c.Display.CharDelay == 0 {
		c.Display.CharDelay = def.Display.CharDelay
	}

	if c.Mock.BusyPolls == 0 {
		c.Mock.BusyPolls = def.Mock.BusyPolls
	}
}
