package adc

import (
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"go.bug.st/serial"
)

const (
	// DefaultBaudRate is the standard baud rate of the bridge firmware.
	DefaultBaudRate = 115200
	// DefaultReadTimeout bounds a single read while polling for the response.
	DefaultReadTimeout = 5 * time.Millisecond

	maxLineLength = 8
)

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial is a ConversionSource backed by an MCU running the bridge firmware.
//
// Protocol: the host sends "<channel>\n", the MCU answers "<raw>\n" with a
// decimal 10-bit reading.
type Serial struct {
	conn io.ReadWriteCloser

	busy  bool
	value uint16
	line  []byte
	chunk [16]byte
}

// OpenSerial opens the named port and wraps it as a ConversionSource.
func OpenSerial(name string, baudRate int, readTimeout time.Duration) (*Serial, error) {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if readTimeout == 0 {
		readTimeout = DefaultReadTimeout
	}

	port, err := serial.Open(name, &serial.Mode{
		BaudRate: baudRate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", name, err)
	}

	// A short timeout keeps IsBusy a poll instead of a blocking read.
	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to set read timeout on %s: %w", name, err)
	}

	return NewSerial(port), nil
}

// NewSerial wraps an already opened connection.
func NewSerial(conn io.ReadWriteCloser) *Serial {
	return &Serial{
		conn: conn,
		line: make([]byte, 0, maxLineLength),
	}
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{
			Name:        name,
			Description: name,
		})
	}

	return result, nil
}

// StartConversion sends a conversion request for ch.
func (s *Serial) StartConversion(ch Channel) {
	s.line = s.line[:0]
	s.value = 0
	s.busy = true

	if _, err := fmt.Fprintf(s.conn, "%d\n", ch); err != nil {
		// Leave the conversion busy; the sampler's poll limit reports it.
		log.Printf("Failed to send conversion request: %v", err)
	}
}

// IsBusy reads whatever the bridge has sent so far and reports whether the
// response line is still incomplete.
func (s *Serial) IsBusy() bool {
	if !s.busy {
		return false
	}

	n, err := s.conn.Read(s.chunk[:])
	for _, b := range s.chunk[:n] {
		if b == '\n' || b == '\r' {
			if len(s.line) == 0 {
				continue
			}
			s.complete()
			return false
		}
		if len(s.line) >= maxLineLength {
			log.Printf("Response too long, discarding")
			s.line = s.line[:0]
			continue
		}
		s.line = append(s.line, b)
	}

	if err != nil && err != io.EOF {
		log.Printf("Error reading from serial port: %v", err)
	}

	return true
}

// ReadRawValue returns the last completed reading.
func (s *Serial) ReadRawValue() uint16 {
	return s.value
}

// Close closes the underlying port.
func (s *Serial) Close() error {
	return s.conn.Close()
}

func (s *Serial) complete() {
	s.busy = false

	value, err := parseLine(string(s.line))
	if err != nil {
		log.Printf("Failed to parse line '%s': %v", s.line, err)
		return
	}
	s.value = value
}

// parseLine parses a response line from the bridge.
// Format: raw
// Example: 512
func parseLine(line string) (uint16, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(line), 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid reading: %w", err)
	}
	if value > FullScale {
		return 0, fmt.Errorf("reading out of range: %d (max %d)", value, FullScale)
	}
	return uint16(value), nil
}
