package adc

import (
	"context"
	"testing"
	"time"

	"github.com/itohio/gowattmeter/pkg/config"
	"github.com/itohio/gowattmeter/pkg/convert"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietMock(voltage, current float64, busyPolls int) *Mock {
	cfg := &config.MockConfig{
		Voltage:   voltage,
		Current:   current,
		BusyPolls: busyPolls,
	}
	return NewMock(cfg, convert.Default())
}

func TestNewMock_Defaults(t *testing.T) {
	m := NewMock(nil, convert.Default())
	require.NotNil(t, m)

	v, c := m.Load()
	assert.Equal(t, config.Default().Mock.Voltage, v)
	assert.Equal(t, config.Default().Mock.Current, c)
}

func TestMock_BusyPolls(t *testing.T) {
	m := quietMock(12, 1, 3)

	m.StartConversion(ChannelVoltage)
	assert.True(t, m.IsBusy())
	assert.True(t, m.IsBusy())
	assert.True(t, m.IsBusy())
	assert.False(t, m.IsBusy())
	assert.False(t, m.IsBusy())
}

func TestMock_RoundTrip(t *testing.T) {
	cal := convert.Default()

	tests := []struct {
		name    string
		voltage float64
		current float64
	}{
		{name: "bench supply", voltage: 12.0, current: 1.5},
		{name: "usb", voltage: 5.0, current: 0.5},
		{name: "high", voltage: 30.0, current: 4.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := quietMock(tt.voltage, tt.current, 0)
			s := NewSampler(m, SleepFunc(func(time.Duration) {}), 0, 10)

			rawV, err := s.AcquireAveraged(context.Background(), ChannelVoltage, 5)
			require.NoError(t, err)
			rawI, err := s.AcquireAveraged(context.Background(), ChannelCurrent, 30)
			require.NoError(t, err)

			// One count of quantisation on either channel.
			assert.InDelta(t, tt.voltage, cal.ToVoltage(rawV), 0.04)
			assert.InDelta(t, tt.current, cal.ToCurrent(rawI), 0.005)
		})
	}
}

func TestMock_Saturates(t *testing.T) {
	m := quietMock(500, 100, 0)

	m.StartConversion(ChannelVoltage)
	assert.Equal(t, uint16(FullScale), m.ReadRawValue())
	m.StartConversion(ChannelCurrent)
	assert.Equal(t, uint16(FullScale), m.ReadRawValue())
}

func TestMock_SetLoad(t *testing.T) {
	m := quietMock(12, 1, 0)

	m.SetLoad(0, -3)
	v, c := m.Load()
	assert.Equal(t, 0.0, v)
	assert.Equal(t, 0.0, c)

	m.StartConversion(ChannelVoltage)
	assert.Equal(t, uint16(0), m.ReadRawValue())
}

func TestMock_Stuck(t *testing.T) {
	m := quietMock(12, 1, 0)
	m.SetStuck(true)

	s := NewSampler(m, SleepFunc(func(time.Duration) {}), 0, 50)
	_, err := s.AcquireAveraged(context.Background(), ChannelCurrent, 30)
	assert.ErrorIs(t, err, ErrConversionTimeout)

	m.SetStuck(false)
	_, err = s.AcquireAveraged(context.Background(), ChannelCurrent, 30)
	assert.NoError(t, err)
}

func TestMock_NoiseStaysBounded(t *testing.T) {
	cfg := &config.MockConfig{Voltage: 12, Current: 1.5, NoiseLevel: 4}
	m := NewMock(cfg, convert.Default())
	center := convert.Default().RawForVoltage(12)

	for i := 0; i < 200; i++ {
		m.StartConversion(ChannelVoltage)
		assert.InDelta(t, center, float32(m.ReadRawValue()), 5)
	}
}

func TestMock_Ripple(t *testing.T) {
	cfg := &config.MockConfig{Voltage: 12, Current: 2, Ripple: 4 * time.Second}
	m := NewMock(cfg, convert.Default())
	start := m.startTime

	// Quarter period: peak of the swing.
	m.now = func() time.Time { return start.Add(time.Second) }
	m.StartConversion(ChannelCurrent)
	peak := m.ReadRawValue()

	// Three quarters: trough.
	m.now = func() time.Time { return start.Add(3 * time.Second) }
	m.StartConversion(ChannelCurrent)
	trough := m.ReadRawValue()

	cal := convert.Default()
	assert.InDelta(t, 2.4, cal.CurrentProbe(float32(peak)), 0.01)
	assert.InDelta(t, 1.6, cal.CurrentProbe(float32(trough)), 0.01)
}
