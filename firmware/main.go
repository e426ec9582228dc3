//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"context"
	"time"

	"github.com/itohio/gowattmeter/pkg/adc"
	"github.com/itohio/gowattmeter/pkg/config"
	"github.com/itohio/gowattmeter/pkg/convert"
	"github.com/itohio/gowattmeter/pkg/display"
	"github.com/itohio/gowattmeter/pkg/meter"
)

func main() {
	cfg := config.Default()
	cal := convert.Default()
	sleeper := adc.SleepFunc(time.Sleep)

	sampler := adc.NewSampler(newAnalogSource(), sleeper, cfg.Sampling.SettleDelay, cfg.Sampling.MaxPolls)
	presenter := display.NewPresenter(newScreen(), sleeper, cfg.Display.CharDelay, cfg.Display.Hold)
	m := meter.New(cfg, cal, sampler, presenter)

	err := m.Run(context.Background())

	// Fault screen stays up until reset
	println("wattmeter halted:", err.Error())
	for {
		time.Sleep(time.Second)
	}
}
