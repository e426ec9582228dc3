package lcdview

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"github.com/itohio/gowattmeter/pkg/display"
)

var (
	backlight = color.RGBA{R: 156, G: 186, B: 120, A: 255}
	pixelOn   = color.RGBA{R: 24, G: 36, B: 20, A: 255}
)

// Padding around the character grid, in glyph heights.
const border = 0.5

// lcdRenderer renders the LCD widget.
type lcdRenderer struct {
	lcd *LCDWidget

	// Background
	panel *canvas.Rectangle

	// One text line per display bank
	rows [display.Rows]*canvas.Text

	// Objects list for Fyne
	objects []fyne.CanvasObject
}

func newRenderer(w *LCDWidget) *lcdRenderer {
	r := &lcdRenderer{
		lcd:   w,
		panel: canvas.NewRectangle(backlight),
	}
	r.objects = append(r.objects, r.panel)
	for i := range r.rows {
		t := canvas.NewText("", pixelOn)
		t.TextStyle = fyne.TextStyle{Monospace: true}
		r.rows[i] = t
		r.objects = append(r.objects, t)
	}
	r.Refresh()
	return r
}

// MinSize fits the full character grid at the current text size.
func (r *lcdRenderer) MinSize() fyne.Size {
	r.lcd.mu.RLock()
	size := r.lcd.textPix
	r.lcd.mu.RUnlock()

	cell := fyne.MeasureText("M", size, fyne.TextStyle{Monospace: true})
	return fyne.NewSize(
		cell.Width*display.Columns+2*border*size,
		cell.Height*display.Rows+2*border*size,
	)
}

// Layout centers the grid on the panel.
func (r *lcdRenderer) Layout(size fyne.Size) {
	r.panel.Resize(size)

	grid := r.MinSize()
	x := (size.Width - grid.Width) / 2
	y := (size.Height - grid.Height) / 2
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}

	pad := border * r.rows[0].TextSize
	lineHeight := (grid.Height - 2*pad) / display.Rows
	for i, t := range r.rows {
		t.Move(fyne.NewPos(x+pad, y+pad+float32(i)*lineHeight))
		t.Resize(fyne.NewSize(grid.Width-2*pad, lineHeight))
	}
}

// Refresh copies the current frame into the text lines.
func (r *lcdRenderer) Refresh() {
	r.lcd.mu.RLock()
	frame := r.lcd.frame
	size := r.lcd.textPix
	r.lcd.mu.RUnlock()

	for i, t := range r.rows {
		t.Text = string(frame[i][:])
		t.TextSize = size
		t.Refresh()
	}
	r.panel.Refresh()
}

func (r *lcdRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

func (r *lcdRenderer) Destroy() {}
