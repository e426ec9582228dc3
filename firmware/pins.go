//go:build tinygo

package main

import "machine"

const (
	// ADC pins, indexed by adc.Channel
	PIN_CURRENT_ADC = machine.A1
	PIN_VOLTAGE_ADC = machine.A2

	// PCD8544 control pins, data and clock are on SPI0
	PIN_LCD_DC  = machine.D3
	PIN_LCD_RST = machine.D2
	PIN_LCD_SCE = machine.D1

	LCD_WIDTH  = 84
	LCD_HEIGHT = 48

	// 4 MHz is the PCD8544 maximum
	LCD_SPI_FREQUENCY = 4000000
)
