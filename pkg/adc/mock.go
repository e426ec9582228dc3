package adc

import (
	"math"
	"sync"
	"time"

	"github.com/itohio/gowattmeter/pkg/config"
	"github.com/itohio/gowattmeter/pkg/convert"
)

// Mock simulates the analog front end of a supply under load.
type Mock struct {
	cfg *config.MockConfig
	cal convert.Calibration
	now func() time.Time

	mu        sync.Mutex
	voltage   float64
	current   float64
	stuck     bool
	startTime time.Time
	step      uint64

	// Conversion state
	remaining int
	value     uint16
}

// NewMock creates a new simulated source. A nil cfg uses config.Default().Mock.
func NewMock(cfg *config.MockConfig, cal convert.Calibration) *Mock {
	if cfg == nil {
		def := config.Default().Mock
		cfg = &def
	}

	return &Mock{
		cfg:       cfg,
		cal:       cal,
		now:       time.Now,
		voltage:   cfg.Voltage,
		current:   cfg.Current,
		startTime: time.Now(),
	}
}

// SetLoad changes the simulated supply voltage and load current.
func (m *Mock) SetLoad(voltage, current float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.voltage = math.Max(voltage, 0)
	m.current = math.Max(current, 0)
}

// Load returns the simulated supply voltage and load current.
func (m *Mock) Load() (voltage, current float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.voltage, m.current
}

// SetStuck makes every following conversion stay busy forever.
func (m *Mock) SetStuck(stuck bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stuck = stuck
}

// StartConversion latches a new simulated reading for ch.
func (m *Mock) StartConversion(ch Channel) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.remaining = m.cfg.BusyPolls
	m.value = m.generateSample(ch)
	m.step++
}

// IsBusy reports whether the current conversion is still running.
func (m *Mock) IsBusy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stuck {
		return true
	}
	if m.remaining > 0 {
		m.remaining--
		return true
	}
	return false
}

// ReadRawValue returns the latched reading.
func (m *Mock) ReadRawValue() uint16 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value
}

// generateSample produces a raw reading for ch. Caller holds m.mu.
func (m *Mock) generateSample(ch Channel) uint16 {
	current := m.current
	if m.cfg.Ripple > 0 {
		// Slow load swing of +-20% so the power display walks through its ranges.
		phase := 2 * math.Pi * m.now().Sub(m.startTime).Seconds() / m.cfg.Ripple.Seconds()
		current *= 1 + 0.2*math.Sin(phase)
	}

	var raw float64
	switch ch {
	case ChannelVoltage:
		raw = float64(m.cal.RawForVoltage(float32(m.voltage)))
	case ChannelCurrent:
		raw = float64(m.cal.RawForCurrent(float32(current)))
	}

	// Deterministic noise: two incommensurate tones
	s := float64(m.step)
	noise := (math.Sin(s*0.7) + math.Cos(s*1.3)) * m.cfg.NoiseLevel * 0.5
	raw += noise

	if raw < 0 {
		raw = 0
	} else if raw > FullScale {
		raw = FullScale
	}

	return uint16(raw + 0.5)
}
