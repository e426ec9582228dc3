//go:build tinygo

//go:generate tinygo flash -target=xiao

// Bridge answers conversion requests from the host over USB serial.
// Request "<channel>\n", response "<raw>\n" with a 10-bit reading.
package main

import (
	"machine"
	"time"
)

const (
	PIN_CURRENT_ADC = machine.A1
	PIN_VOLTAGE_ADC = machine.A2

	maxRequestLength = 3
)

var (
	serial = machine.Serial
	pins   [2]machine.ADC

	// Serial buffer for reading lines
	lineBuffer [maxRequestLength]byte
	linePos    int
	overflow   bool
)

func main() {
	for i, pin := range [...]machine.Pin{PIN_CURRENT_ADC, PIN_VOLTAGE_ADC} {
		pin.Configure(machine.PinConfig{Mode: machine.PinInput})
		pins[i] = machine.ADC{Pin: pin}
		pins[i].Configure(machine.ADCConfig{Resolution: 10})
	}

	for {
		processSerial()
		time.Sleep(100 * time.Microsecond)
	}
}

func processSerial() {
	for serial.Buffered() > 0 {
		data, err := serial.ReadByte()
		if err != nil {
			break
		}

		if data == '\n' || data == '\r' {
			if linePos > 0 {
				respond()
			}
			linePos = 0
			overflow = false
			continue
		}

		// Ignore whitespace
		if data == ' ' || data == '\t' {
			continue
		}

		if linePos < maxRequestLength {
			lineBuffer[linePos] = data
			linePos++
		} else {
			overflow = true
		}
	}
}

// respond converts the requested channel. Unknown requests read as zero so
// the host stays in step.
func respond() {
	var value uint16
	if ch, ok := parseChannel(); ok {
		value = pins[ch].Get() >> 6
	}
	println(value)
}

func parseChannel() (int, bool) {
	if overflow {
		return 0, false
	}
	ch := 0
	for _, c := range lineBuffer[:linePos] {
		if c < '0' || c > '9' {
			return 0, false
		}
		ch = ch*10 + int(c-'0')
	}
	if ch >= len(pins) {
		return 0, false
	}
	return ch, true
}
