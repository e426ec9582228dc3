// Package digits renders readings into fixed-width decimal buffers for a
// character display, without a general purpose formatter.
//
// A Layout is a table of magnitude brackets. The first bracket whose MaxInt
// is not below the truncated integer part of the value is used. Digits are
// extracted by truncation toward zero in single precision, never rounded, so
// the displayed value is the largest representable value not above the input.
package digits

import (
	"errors"

	"github.com/chewxy/math32"
)

// ErrRangeExceeded is returned when no bracket can hold the value. The
// buffer then holds the overflow glyph.
var ErrRangeExceeded = errors.New("digits: value out of display range")

// Overflow is the glyph written for out of range values, left aligned.
const Overflow = "OL"

// Bracket is the digit layout of one magnitude range.
type Bracket struct {
	MaxInt     int // Largest integer part accepted
	IntDigits  int
	FracDigits int
	Pad        int // Trailing spaces
}

// Width is the number of characters the bracket produces.
func (b Bracket) Width() int {
	return b.IntDigits + 1 + b.FracDigits + b.Pad
}

// Layout is a fixed-width format made of brackets in ascending order.
type Layout struct {
	Width    int
	Brackets []Bracket
}

var (
	// VoltageLayout renders D.D_ and DD.D
	VoltageLayout = Layout{
		Width: 4,
		Brackets: []Bracket{
			{MaxInt: 9, IntDigits: 1, FracDigits: 1, Pad: 1},
			{MaxInt: 99, IntDigits: 2, FracDigits: 1},
		},
	}

	// CurrentLayout renders D.DDD
	CurrentLayout = Layout{
		Width: 5,
		Brackets: []Bracket{
			{MaxInt: 9, IntDigits: 1, FracDigits: 3},
		},
	}

	// PowerLayout renders D.DDD, DD.DD and DDD.D
	PowerLayout = Layout{
		Width: 5,
		Brackets: []Bracket{
			{MaxInt: 9, IntDigits: 1, FracDigits: 3},
			{MaxInt: 99, IntDigits: 2, FracDigits: 2},
			{MaxInt: 999, IntDigits: 3, FracDigits: 1},
		},
	}
)

var pow10 = [...]float32{1, 10, 100, 1000, 10000}

// Select returns the bracket for value, or false if none holds it.
func (l Layout) Select(value float32) (Bracket, bool) {
	if math32.IsNaN(value) || math32.IsInf(value, 0) || value < 0 {
		return Bracket{}, false
	}
	whole := math32.Trunc(value)
	for _, b := range l.Brackets {
		if whole <= float32(b.MaxInt) {
			return b, true
		}
	}
	return Bracket{}, false
}

// Format writes value into dst[:l.Width]. dst must be at least l.Width long.
// Every byte of dst[:l.Width] is overwritten, including on error.
func Format(dst []byte, value float32, l Layout) error {
	dst = dst[:l.Width]

	b, ok := l.Select(value)
	if !ok || b.Width() != l.Width || b.FracDigits >= len(pow10) {
		overflow(dst)
		return ErrRangeExceeded
	}

	whole := int(value)
	scaled := int(float32(value * pow10[b.FracDigits]))
	frac := scaled % int(pow10[b.FracDigits])

	i := putDigits(dst, 0, whole, b.IntDigits)
	dst[i] = '.'
	i = putDigits(dst, i+1, frac, b.FracDigits)
	for ; i < len(dst); i++ {
		dst[i] = ' '
	}
	return nil
}

// putDigits writes the n least significant decimal digits of v at dst[i:]
// and returns the index after them.
func putDigits(dst []byte, i, v, n int) int {
	for k := i + n - 1; k >= i; k-- {
		dst[k] = byte('0' + v%10)
		v /= 10
	}
	return i + n
}

func overflow(dst []byte) {
	n := copy(dst, Overflow)
	for i := n; i < len(dst); i++ {
		dst[i] = ' '
	}
}

// Voltage formats volts as "D.D " or "DD.D".
func Voltage(v float32) ([4]byte, error) {
	var buf [4]byte
	err := Format(buf[:], v, VoltageLayout)
	return buf, err
}

// Current formats amperes as "D.DDD".
func Current(c float32) ([5]byte, error) {
	var buf [5]byte
	err := Format(buf[:], c, CurrentLayout)
	return buf, err
}

// Power formats watts as "D.DDD", "DD.DD" or "DDD.D".
func Power(p float32) ([5]byte, error) {
	var buf [5]byte
	err := Format(buf[:], p, PowerLayout)
	return buf, err
}
