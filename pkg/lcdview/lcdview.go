// Package lcdview shows a display.TextLCD frame in a fyne window.
package lcdview

import (
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/gowattmeter/pkg/display"
)

// LCDWidget is a custom Fyne widget that mirrors the character grid of a
// PCD8544-sized panel.
type LCDWidget struct {
	widget.BaseWidget

	// Data (protected by mu)
	mu      sync.RWMutex
	frame   display.Frame
	frames  int
	textPix float32
}

// New creates a blank LCDWidget.
func New() *LCDWidget {
	w := &LCDWidget{textPix: 16}
	for r := range w.frame {
		for c := range w.frame[r] {
			w.frame[r][c] = ' '
		}
	}
	w.ExtendBaseWidget(w)
	return w
}

// SetTextSize sets the glyph height in device independent pixels.
func (w *LCDWidget) SetTextSize(size float32) {
	w.mu.Lock()
	w.textPix = size
	w.mu.Unlock()
	w.Refresh()
}

// SetFrame replaces the shown frame. Must be called on the fyne goroutine.
func (w *LCDWidget) SetFrame(f display.Frame) {
	w.mu.Lock()
	w.frame = f
	w.frames++
	w.mu.Unlock()

	// Refresh outside the lock, the renderer reads the frame back.
	w.Refresh()
}

// Frame returns the frame currently shown.
func (w *LCDWidget) Frame() display.Frame {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.frame
}

// Frames returns how many frames were set.
func (w *LCDWidget) Frames() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.frames
}

// Attach mirrors every frame lcd publishes. The flush callback runs on the
// measurement goroutine, so the update is handed to fyne.Do.
func (w *LCDWidget) Attach(lcd *display.TextLCD) {
	w.SetFrame(lcd.Frame())
	lcd.OnFlush(func(f display.Frame) {
		fyne.Do(func() {
			w.SetFrame(f)
		})
	})
}

// CreateRenderer creates the widget renderer.
func (w *LCDWidget) CreateRenderer() fyne.WidgetRenderer {
	return newRenderer(w)
}
