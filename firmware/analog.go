//go:build tinygo

package main

import (
	"machine"

	"github.com/itohio/gowattmeter/pkg/adc"
)

// analogSource samples the on-chip ADC. Get blocks until the conversion is
// done, so the source is never busy when polled.
type analogSource struct {
	pins  [2]machine.ADC
	value uint16
}

func newAnalogSource() *analogSource {
	a := &analogSource{}
	for i, pin := range [...]machine.Pin{adc.ChannelCurrent: PIN_CURRENT_ADC, adc.ChannelVoltage: PIN_VOLTAGE_ADC} {
		pin.Configure(machine.PinConfig{Mode: machine.PinInput})
		a.pins[i] = machine.ADC{Pin: pin}
		a.pins[i].Configure(machine.ADCConfig{Resolution: 10})
	}
	return a
}

func (a *analogSource) StartConversion(ch adc.Channel) {
	if int(ch) >= len(a.pins) {
		a.value = 0
		return
	}
	// Get is left aligned to 16 bits whatever the resolution
	a.value = a.pins[ch].Get() >> 6
}

func (a *analogSource) IsBusy() bool { return false }

func (a *analogSource) ReadRawValue() uint16 { return a.value }
