package meter

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/itohio/gowattmeter/pkg/adc"
	"github.com/itohio/gowattmeter/pkg/config"
	"github.com/itohio/gowattmeter/pkg/convert"
	"github.com/itohio/gowattmeter/pkg/display"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cancellingAcquirer cancels the loop context on its n-th acquisition.
type cancellingAcquirer struct {
	scriptedAcquirer
	cancel   context.CancelFunc
	cancelAt int
}

func (a *cancellingAcquirer) AcquireAveraged(ctx context.Context, ch adc.Channel, n int) (float32, error) {
	v, err := a.scriptedAcquirer.AcquireAveraged(ctx, ch, n)
	if len(a.calls) == a.cancelAt {
		a.cancel()
		return 0, ctx.Err()
	}
	return v, err
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Two acquisitions per cycle; cancel in the middle of the fourth cycle.
	acq := &cancellingAcquirer{cancel: cancel, cancelAt: 7}
	p := &fakePresenter{}
	s := newSignal(acq, p)

	var updates int
	s.OnUpdate(func(Reading) { updates++ })

	assert.NoError(t, s.Run(ctx))
	assert.Equal(t, 3, updates)
	assert.Len(t, p.screens, 3)
	assert.Empty(t, p.faults, "cancellation is not a fault")
}

func TestRun_AlreadyCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	acq := &scriptedAcquirer{}
	s := newSignal(acq, &fakePresenter{})

	assert.NoError(t, s.Run(ctx))
	assert.Empty(t, acq.calls)
}

func TestRun_FaultScreen(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{name: "timeout", err: &adc.TimeoutError{Channel: adc.ChannelCurrent, Polls: 3}, wantCode: "ADC TIMEOUT"},
		{name: "bad sample count", err: adc.ErrInvalidSampleCount, wantCode: "BAD CONFIG"},
		{name: "other", err: errors.New("boom"), wantCode: "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acq := &scriptedAcquirer{failAt: 5, err: tt.err}
			p := &fakePresenter{}
			s := newSignal(acq, p)

			err := s.Run(context.Background())
			assert.ErrorIs(t, err, tt.err)
			assert.Len(t, p.screens, 2)
			assert.Equal(t, []string{tt.wantCode}, p.faults)
		})
	}
}

func TestRun_FaultScreenError(t *testing.T) {
	boom := errors.New("boom")
	spi := errors.New("spi write failed")

	acq := &scriptedAcquirer{failAt: 1, err: boom}
	s := newSignal(acq, &fakePresenter{err: spi})

	err := s.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, spi)
}

// A stuck converter ends the loop with a timeout and leaves the fault screen up.
func TestRun_StuckConverter(t *testing.T) {
	cfg := config.Default()
	cfg.Sampling.MaxPolls = 20
	cal := convert.Default()

	var noSleep adc.SleepFunc = func(time.Duration) {}
	source := adc.NewMock(&cfg.Mock, cal)
	source.SetStuck(true)
	lcd := display.NewTextLCD()

	s := New(cfg,
		cal,
		adc.NewSampler(source, noSleep, 0, cfg.Sampling.MaxPolls),
		display.NewPresenter(lcd, noSleep, 0, 0),
	)

	err := s.Run(context.Background())
	var timeout *adc.TimeoutError
	require.ErrorAs(t, err, &timeout)
	assert.Equal(t, adc.ChannelCurrent, timeout.Channel)
	assert.Equal(t, 20, timeout.Polls)

	frame := lcd.Frame()
	assert.Equal(t, "FAULT", frame.Line(0))
	assert.Equal(t, "ADC TIMEOUT", frame.Line(2))
}

// No callbacks are delivered once Run has returned.
func TestRun_NoCallbacksAfterReturn(t *testing.T) {
	cfg := config.Default()
	cal := convert.Default()

	var noSleep adc.SleepFunc = func(time.Duration) {}
	s := New(cfg,
		cal,
		adc.NewSampler(adc.NewMock(&cfg.Mock, cal), noSleep, 0, cfg.Sampling.MaxPolls),
		display.NewPresenter(display.NewTextLCD(), noSleep, 0, 0),
	)

	var mu sync.Mutex
	var count int
	received := make(chan struct{}, 1)
	s.OnUpdate(func(Reading) {
		mu.Lock()
		count++
		mu.Unlock()
		select {
		case received <- struct{}{}:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("no reading within timeout")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return within timeout")
	}

	mu.Lock()
	final := count
	mu.Unlock()
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, final, count, "no callbacks after Run returned")
	assert.Positive(t, final)
}
