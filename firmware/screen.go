//go:build tinygo

package main

import (
	"image/color"
	"machine"

	"github.com/itohio/gowattmeter/pkg/display"
	"tinygo.org/x/drivers/pcd8544"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

var (
	black = color.RGBA{A: 255}
	font  = &proggy.TinySZ8pt7b
)

// screen draws text on a PCD8544 frame buffer. Cursor y is a bank number.
type screen struct {
	dev  *pcd8544.Device
	x, y int16
}

var (
	_ display.Display = (*screen)(nil)
	_ display.Flusher = (*screen)(nil)
)

func newScreen() *screen {
	machine.SPI0.Configure(machine.SPIConfig{
		Frequency: LCD_SPI_FREQUENCY,
	})
	PIN_LCD_DC.Configure(machine.PinConfig{Mode: machine.PinOutput})
	PIN_LCD_RST.Configure(machine.PinConfig{Mode: machine.PinOutput})
	PIN_LCD_SCE.Configure(machine.PinConfig{Mode: machine.PinOutput})

	dev := pcd8544.New(machine.SPI0, PIN_LCD_DC, PIN_LCD_RST, PIN_LCD_SCE)
	dev.Configure(pcd8544.Config{Width: LCD_WIDTH, Height: LCD_HEIGHT})
	dev.ClearDisplay()
	return &screen{dev: dev}
}

func (s *screen) Clear() {
	s.dev.ClearBuffer()
	s.x, s.y = 0, 0
}

func (s *screen) SetCursor(x, y int16) {
	s.x, s.y = x, y
}

func (s *screen) WriteText(text string) {
	// tinyfont y is the baseline
	tinyfont.WriteLine(s.dev, font, s.x, s.y*8+7, text, black)
	_, w := tinyfont.LineWidth(font, text)
	s.x += int16(w)
}

func (s *screen) WriteChar(c byte) {
	s.WriteText(string(rune(c)))
}

func (s *screen) Flush() error {
	return s.dev.Display()
}
