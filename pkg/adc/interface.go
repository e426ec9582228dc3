package adc

import "time"

// Channel identifies a logical analog input.
type Channel uint8

const (
	// ChannelCurrent is the shunt amplifier output.
	ChannelCurrent Channel = iota
	// ChannelVoltage is the voltage divider tap.
	ChannelVoltage
)

func (c Channel) String() string {
	switch c {
	case ChannelCurrent:
		return "current"
	case ChannelVoltage:
		return "voltage"
	}
	return "unknown"
}

const (
	// FullScale is the largest 10-bit reading.
	FullScale = 1023
	// RawMask keeps the 10 significant bits of a reading.
	RawMask = 0x3FF
)

// ConversionSource is the hardware sampling backend (real, serial-bridged or mocked).
type ConversionSource interface {
	StartConversion(ch Channel)
	IsBusy() bool
	ReadRawValue() uint16
}

// Sleeper is the millisecond delay service.
type Sleeper interface {
	Sleep(d time.Duration)
}

// SleepFunc adapts a function to Sleeper.
type SleepFunc func(d time.Duration)

// Sleep calls f(d).
func (f SleepFunc) Sleep(d time.Duration) { f(d) }

// RealTime sleeps on the wall clock.
var RealTime Sleeper = SleepFunc(time.Sleep)

// Ensure Serial implements ConversionSource.
var _ ConversionSource = (*Serial)(nil)

// Ensure Mock implements ConversionSource.
var _ ConversionSource = (*Mock)(nil)
