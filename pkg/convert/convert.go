// Package convert maps averaged ADC readings to physical units.
//
// All arithmetic is single precision, matching the float type of the
// instrument's MCU, so the display digits come out the same on host and target.
package convert

import "github.com/chewxy/math32"

// FullScale is the largest reading of the 10-bit converter.
const FullScale float32 = 1023.0

// Calibration holds the device specific constants of both analog front ends.
type Calibration struct {
	// Voltage channel
	VoltageRef       float32 // ADC reference seen by the voltage pin (V)
	LowResistance    float32 // Divider leg to ground (ohm)
	HighResistance   float32 // Divider leg to the probe (ohm)
	VoltageThreshold float32 // Readings below this are clamped to zero (V)

	// Current channel
	CurrentRef       float32 // ADC reference seen by the current pin (V)
	Gain             float32 // Shunt amplifier gain
	Shunt            float32 // Shunt resistance (ohm)
	CurrentThreshold float32 // Readings below this are clamped to zero (A)
}

// Default returns the calibration of the reference hardware.
func Default() Calibration {
	return Calibration{
		VoltageRef:       3.3,
		LowResistance:    9800.0,
		HighResistance:   98000.0,
		VoltageThreshold: 1.0,

		CurrentRef:       3.28,
		Gain:             6.45,
		Shunt:            0.1,
		CurrentThreshold: 0.1,
	}
}

// DividerRatio is the fraction of the probe voltage that reaches the pin.
func (c Calibration) DividerRatio() float32 {
	return c.LowResistance / (c.LowResistance + c.HighResistance)
}

// VoltageProbe converts an averaged reading to probe volts without clamping.
func (c Calibration) VoltageProbe(raw float32) float32 {
	pin := (raw * c.VoltageRef) / FullScale
	return pin / c.DividerRatio()
}

// ToVoltage converts an averaged reading to volts, clamping the noise floor to zero.
func (c Calibration) ToVoltage(raw float32) float32 {
	return clamp(c.VoltageProbe(raw), c.VoltageThreshold)
}

// CurrentProbe converts an averaged reading to amperes without clamping.
func (c Calibration) CurrentProbe(raw float32) float32 {
	amplified := raw * (c.CurrentRef / FullScale)
	return (amplified / c.Gain) / c.Shunt
}

// ToCurrent converts an averaged reading to amperes, clamping the noise floor to zero.
func (c Calibration) ToCurrent(raw float32) float32 {
	return clamp(c.CurrentProbe(raw), c.CurrentThreshold)
}

// RawForVoltage is the inverse of VoltageProbe, limited to the converter range.
func (c Calibration) RawForVoltage(volts float32) float32 {
	return limit(volts * c.DividerRatio() * FullScale / c.VoltageRef)
}

// RawForCurrent is the inverse of CurrentProbe, limited to the converter range.
func (c Calibration) RawForCurrent(amps float32) float32 {
	return limit(amps * c.Shunt * c.Gain * FullScale / c.CurrentRef)
}

// Power returns the instantaneous power. It is not clamped; a zero input gives zero.
func Power(voltage, current float32) float32 {
	return voltage * current
}

func clamp(v, threshold float32) float32 {
	if v < threshold {
		return 0.0
	}
	return v
}

func limit(raw float32) float32 {
	return math32.Max(0, math32.Min(raw, FullScale))
}
