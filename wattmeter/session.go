package main

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/itohio/gowattmeter/pkg/adc"
	"github.com/itohio/gowattmeter/pkg/config"
	"github.com/itohio/gowattmeter/pkg/convert"
	"github.com/itohio/gowattmeter/pkg/display"
	"github.com/itohio/gowattmeter/pkg/meter"
)

// session is one measurement chain: source, sampler, presenter and loop.
type session struct {
	source string
	mock   *adc.Mock // nil for the serial source
	closer io.Closer
	lcd    *display.TextLCD
	signal *meter.Signal

	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

// newSession builds the chain for cfg without starting it.
func newSession(cfg *config.Config, useMock bool, sleeper adc.Sleeper) (*session, error) {
	cal := convert.Default()
	s := &session{
		lcd:  display.NewTextLCD(),
		done: make(chan struct{}),
	}

	var source adc.ConversionSource
	if useMock {
		// The mock keeps its own copy; the settings dialog edits cfg.
		mockCfg := cfg.Mock
		s.mock = adc.NewMock(&mockCfg, cal)
		s.source = "mock"
		source = s.mock
	} else {
		serial, err := adc.OpenSerial(cfg.Serial.Port, cfg.Serial.BaudRate, cfg.Serial.ReadTimeout)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Serial.Port, err)
		}
		s.closer = serial
		s.source = cfg.Serial.Port
		source = serial
	}

	sampler := adc.NewSampler(source, sleeper, cfg.Sampling.SettleDelay, cfg.Sampling.MaxPolls)
	presenter := display.NewPresenter(s.lcd, sleeper, cfg.Display.CharDelay, cfg.Display.Hold)
	s.signal = meter.New(cfg, cal, sampler, presenter)
	return s, nil
}

// Start runs the loop on its own goroutine.
func (s *session) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	go func() {
		defer close(s.done)
		err := s.signal.Run(ctx)

		s.mu.Lock()
		s.err = err
		s.mu.Unlock()

		if err != nil {
			log.Error().Err(err).Str("source", s.source).Msg("measurement stopped")
		}
	}()
}

// Done is closed when the loop has exited.
func (s *session) Done() <-chan struct{} {
	return s.done
}

// Err returns the fault that stopped the loop, if any.
func (s *session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close stops the loop, waits for it and releases the source.
func (s *session) Close() error {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
