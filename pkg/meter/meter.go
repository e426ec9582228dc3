package meter

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/itohio/gowattmeter/pkg/adc"
	"github.com/itohio/gowattmeter/pkg/config"
	"github.com/itohio/gowattmeter/pkg/convert"
	"github.com/itohio/gowattmeter/pkg/digits"
)

// Acquirer produces averaged raw readings (see adc.Sampler).
type Acquirer interface {
	AcquireAveraged(ctx context.Context, ch adc.Channel, sampleCount int) (float32, error)
}

// Presenter shows formatted readings (see display.Presenter).
type Presenter interface {
	Show(voltage, current, power []byte) error
	ShowFault(code string) error
}

var (
	_ Acquirer   = (*adc.Sampler)(nil)
	_ PowerMeter = (*Signal)(nil)
)

// Reading is a snapshot of one completed measurement cycle.
type Reading struct {
	Time    time.Time
	Voltage float32 // V
	Current float32 // A
	Power   float32 // W

	VoltageDigits [4]byte
	CurrentDigits [5]byte
	PowerDigits   [5]byte

	// Set when the value did not fit its display layout.
	VoltageOverflow bool
	CurrentOverflow bool
	PowerOverflow   bool
}

// PowerMeter runs the measurement loop and reports completed cycles.
type PowerMeter interface {
	Step(ctx context.Context) error
	Run(ctx context.Context) error
	Reading() Reading
	OnUpdate(func(Reading))
}

// Signal owns the readings and display buffers of one measured source.
// Only the loop goroutine mutates it; observers get copies.
type Signal struct {
	cal       convert.Calibration
	sampler   Acquirer
	presenter Presenter
	now       func() time.Time

	currentSamples int
	voltageSamples int

	voltage float32
	current float32
	power   float32

	voltageBuf [4]byte
	currentBuf [5]byte
	powerBuf   [5]byte

	voltageOverflow bool
	currentOverflow bool
	powerOverflow   bool

	// Last completed cycle, published for readers
	mu   sync.RWMutex
	last Reading

	callbacks []func(Reading)
	cbMu      sync.RWMutex
}

// New creates a Signal. Sample counts come from cfg.Sampling.
func New(cfg *config.Config, cal convert.Calibration, sampler Acquirer, presenter Presenter) *Signal {
	return &Signal{
		cal:            cal,
		sampler:        sampler,
		presenter:      presenter,
		now:            time.Now,
		currentSamples: cfg.Sampling.CurrentSamples,
		voltageSamples: cfg.Sampling.VoltageSamples,
	}
}

// Voltage returns the latest voltage in volts.
func (s *Signal) Voltage() float32 { return s.voltage }

// Current returns the latest current in amperes.
func (s *Signal) Current() float32 { return s.current }

// Power returns the latest power in watts.
func (s *Signal) Power() float32 { return s.power }

// DetermineCurrent samples and converts the current channel.
func (s *Signal) DetermineCurrent(ctx context.Context) error {
	raw, err := s.sampler.AcquireAveraged(ctx, adc.ChannelCurrent, s.currentSamples)
	if err != nil {
		return err
	}
	s.current = s.cal.ToCurrent(raw)
	return nil
}

// DetermineVoltage samples and converts the voltage channel.
func (s *Signal) DetermineVoltage(ctx context.Context) error {
	raw, err := s.sampler.AcquireAveraged(ctx, adc.ChannelVoltage, s.voltageSamples)
	if err != nil {
		return err
	}
	s.voltage = s.cal.ToVoltage(raw)
	return nil
}

// DeterminePower recomputes power from the latest voltage and current.
func (s *Signal) DeterminePower() {
	s.power = convert.Power(s.voltage, s.current)
}

// DetermineDigits formats all three readings. Values outside their layout
// get the overflow glyph and are flagged.
func (s *Signal) DetermineDigits() {
	s.voltageOverflow = formatInto(s.voltageBuf[:], s.voltage, digits.VoltageLayout)
	s.currentOverflow = formatInto(s.currentBuf[:], s.current, digits.CurrentLayout)
	s.powerOverflow = formatInto(s.powerBuf[:], s.power, digits.PowerLayout)
}

// Present shows the formatted buffers.
func (s *Signal) Present() error {
	return s.presenter.Show(s.voltageBuf[:], s.currentBuf[:], s.powerBuf[:])
}

// Step runs one cycle: sample, convert, estimate, format, present.
func (s *Signal) Step(ctx context.Context) error {
	if err := s.DetermineCurrent(ctx); err != nil {
		return err
	}
	if err := s.DetermineVoltage(ctx); err != nil {
		return err
	}
	s.DeterminePower()
	s.DetermineDigits()
	if err := s.Present(); err != nil {
		return err
	}

	s.publish()
	return nil
}

// Run repeats Step until ctx is done or a cycle fails. A failed cycle puts
// the fault screen up and its error is returned.
func (s *Signal) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		err := s.Step(ctx)
		if err == nil {
			continue
		}
		if ctx.Err() != nil {
			return nil
		}
		if ferr := s.presenter.ShowFault(FaultCode(err)); ferr != nil {
			return errors.Join(err, ferr)
		}
		return err
	}
}

// FaultCode is the short text shown on the fault screen for err.
func FaultCode(err error) string {
	switch {
	case errors.Is(err, adc.ErrConversionTimeout):
		return "ADC TIMEOUT"
	case errors.Is(err, adc.ErrInvalidSampleCount):
		return "BAD CONFIG"
	}
	return "ERROR"
}

// Reading returns the last completed cycle.
func (s *Signal) Reading() Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// OnUpdate registers a callback that is invoked after every completed cycle.
// The callback runs on the loop goroutine and should return quickly.
func (s *Signal) OnUpdate(callback func(Reading)) {
	s.cbMu.Lock()
	defer s.cbMu.Unlock()
	s.callbacks = append(s.callbacks, callback)
}

// publish snapshots the cycle and notifies callbacks without holding locks.
func (s *Signal) publish() {
	r := Reading{
		Time:            s.now(),
		Voltage:         s.voltage,
		Current:         s.current,
		Power:           s.power,
		VoltageDigits:   s.voltageBuf,
		CurrentDigits:   s.currentBuf,
		PowerDigits:     s.powerBuf,
		VoltageOverflow: s.voltageOverflow,
		CurrentOverflow: s.currentOverflow,
		PowerOverflow:   s.powerOverflow,
	}

	s.mu.Lock()
	s.last = r
	s.mu.Unlock()

	s.cbMu.RLock()
	callbacks := make([]func(Reading), len(s.callbacks))
	copy(callbacks, s.callbacks)
	s.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(r)
		}
	}
}

// formatInto reports whether the value overflowed its layout.
func formatInto(dst []byte, v float32, l digits.Layout) bool {
	return errors.Is(digits.Format(dst, v, l), digits.ErrRangeExceeded)
}
