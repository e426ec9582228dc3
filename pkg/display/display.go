// Package display places formatted readings on a small character display.
package display

import "time"

// Display is the character display driver.
// x is in pixels, y in 8-pixel banks (rows), as on PCD8544 controllers.
type Display interface {
	Clear()
	SetCursor(x, y int16)
	WriteText(s string)
	WriteChar(c byte)
}

// Flusher is implemented by displays that buffer writes until Flush.
type Flusher interface {
	Flush() error
}

// Sleeper is the millisecond delay service.
type Sleeper interface {
	Sleep(d time.Duration)
}

// Screen coordinates of the three reading rows.
const (
	LabelX int16 = 0
	ValueX int16 = 25
	UnitX  int16 = 60
)

// Row is one labelled reading on the screen.
type Row struct {
	Y     int16
	Label string
	Unit  string
}

var (
	VoltageRow = Row{Y: 0, Label: "U : ", Unit: " V"}
	CurrentRow = Row{Y: 2, Label: "I : ", Unit: " A"}
	PowerRow   = Row{Y: 4, Label: "P : ", Unit: " W"}
)

// Presenter renders readings and fault screens.
type Presenter struct {
	display   Display
	sleeper   Sleeper
	charDelay time.Duration
	hold      time.Duration
}

// NewPresenter creates a presenter. charDelay paces single characters as
// the display driver requires, hold is waited after every full screen.
func NewPresenter(d Display, sleeper Sleeper, charDelay, hold time.Duration) *Presenter {
	return &Presenter{
		display:   d,
		sleeper:   sleeper,
		charDelay: charDelay,
		hold:      hold,
	}
}

// Show draws all three rows, flushes the display and holds the screen.
func (p *Presenter) Show(voltage, current, power []byte) error {
	p.display.Clear()
	p.row(VoltageRow, voltage)
	p.row(CurrentRow, current)
	p.row(PowerRow, power)
	return p.finish()
}

// ShowFault replaces the readings with a fault screen.
func (p *Presenter) ShowFault(code string) error {
	p.display.Clear()
	p.display.SetCursor(LabelX, VoltageRow.Y)
	p.display.WriteText("FAULT")
	p.display.SetCursor(LabelX, CurrentRow.Y)
	p.display.WriteText(code)
	return p.finish()
}

func (p *Presenter) row(r Row, value []byte) {
	p.display.SetCursor(LabelX, r.Y)
	p.display.WriteText(r.Label)

	p.display.SetCursor(ValueX, r.Y)
	for _, c := range value {
		p.display.WriteChar(c)
		p.sleeper.Sleep(p.charDelay)
	}

	p.display.SetCursor(UnitX, r.Y)
	p.display.WriteText(r.Unit)
}

func (p *Presenter) finish() error {
	if f, ok := p.display.(Flusher); ok {
		if err := f.Flush(); err != nil {
			return err
		}
	}
	p.sleeper.Sleep(p.hold)
	return nil
}
