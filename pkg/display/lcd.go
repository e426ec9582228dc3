package display

import (
	"strings"
	"sync"
)

// Geometry of an 84x48 PCD8544 panel with a 6x8 font.
const (
	CharWidth = 6
	Columns   = 84 / CharWidth
	Rows      = 48 / 8
)

// Frame is a snapshot of the character grid.
type Frame [Rows][Columns]byte

// String renders the frame one line per row.
func (f Frame) String() string {
	var sb strings.Builder
	for i, row := range f {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.Write(row[:])
	}
	return sb.String()
}

// Line returns row y without trailing spaces.
func (f Frame) Line(y int) string {
	return strings.TrimRight(string(f[y][:]), " ")
}

// TextLCD is an in-memory character display. Writes go to a back buffer
// that only the writer touches; Flush publishes it as the visible frame.
type TextLCD struct {
	back     Frame
	col, row int

	mu      sync.RWMutex
	front   Frame
	flushes int
	onFlush []func(Frame)
}

var (
	_ Display = (*TextLCD)(nil)
	_ Flusher = (*TextLCD)(nil)
)

// NewTextLCD creates a blank display.
func NewTextLCD() *TextLCD {
	l := &TextLCD{}
	l.Clear()
	l.front = l.back
	return l
}

// Clear blanks the back buffer and homes the cursor.
func (l *TextLCD) Clear() {
	for r := range l.back {
		for c := range l.back[r] {
			l.back[r][c] = ' '
		}
	}
	l.col, l.row = 0, 0
}

// SetCursor moves the cursor to pixel column x of bank y.
func (l *TextLCD) SetCursor(x, y int16) {
	l.col = int(x) / CharWidth
	l.row = int(y)
}

// WriteText writes s at the cursor.
func (l *TextLCD) WriteText(s string) {
	for i := 0; i < len(s); i++ {
		l.WriteChar(s[i])
	}
}

// WriteChar writes c at the cursor and advances it. Characters that fall
// off the panel are dropped.
func (l *TextLCD) WriteChar(c byte) {
	if l.row >= 0 && l.row < Rows && l.col >= 0 && l.col < Columns {
		l.back[l.row][l.col] = c
	}
	l.col++
}

// Flush publishes the back buffer and notifies observers.
func (l *TextLCD) Flush() error {
	l.mu.Lock()
	l.front = l.back
	l.flushes++
	frame := l.front
	callbacks := make([]func(Frame), len(l.onFlush))
	copy(callbacks, l.onFlush)
	l.mu.Unlock()

	for _, cb := range callbacks {
		cb(frame)
	}
	return nil
}

// Frame returns the last published frame.
func (l *TextLCD) Frame() Frame {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.front
}

// Flushes returns how many frames have been published.
func (l *TextLCD) Flushes() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.flushes
}

// OnFlush registers a callback invoked with every published frame.
// The callback runs on the writer's goroutine and should return quickly.
func (l *TextLCD) OnFlush(cb func(Frame)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onFlush = append(l.onFlush, cb)
}
