package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/itohio/gowattmeter/pkg/adc"
	"github.com/itohio/gowattmeter/pkg/config"
	"github.com/itohio/gowattmeter/pkg/meter"
)

func main() {
	var (
		portFlag     = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag   = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag     = flag.Bool("mock", false, "Use simulated converter instead of serial port")
		headlessFlag = flag.Bool("headless", false, "Run without a window and log readings")
		listFlag     = flag.Bool("list", false, "List serial ports and exit")
		debugFlag    = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	initLogger(*debugFlag)

	if *listFlag {
		if err := listPorts(); err != nil {
			log.Fatal().Err(err).Msg("failed to list serial ports")
		}
		return
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Override serial port if provided via command line
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}

	state := &appState{
		cfg:        cfg,
		configPath: *configFlag,
		useMock:    *mockFlag,
	}

	if *headlessFlag {
		if err := runHeadless(state); err != nil {
			log.Fatal().Err(err).Msg("measurement failed")
		}
		return
	}
	runWindow(state)
}

func listPorts() error {
	ports, err := adc.Ports()
	if err != nil {
		return err
	}
	for _, p := range ports {
		if p.Description != "" && p.Description != p.Name {
			fmt.Printf("%s\t%s\n", p.Name, p.Description)
			continue
		}
		fmt.Println(p.Name)
	}
	return nil
}

// runHeadless measures until interrupted or a fault stops the loop.
func runHeadless(state *appState) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := newSession(state.cfg, state.useMock, adc.RealTime)
	if err != nil {
		return err
	}
	s.signal.OnUpdate(logReading)

	log.Info().Str("source", s.source).Msg("measuring")
	s.Start(ctx)

	select {
	case <-ctx.Done():
	case <-s.Done():
	}
	if err := s.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close source")
	}
	if err := s.Err(); err != nil {
		fmt.Fprintln(os.Stderr, s.lcd.Frame().String())
		return err
	}
	return nil
}

func logReading(r meter.Reading) {
	ev := log.Info()
	if r.VoltageOverflow || r.CurrentOverflow || r.PowerOverflow {
		ev = log.Warn().
			Bool("voltage_overflow", r.VoltageOverflow).
			Bool("current_overflow", r.CurrentOverflow).
			Bool("power_overflow", r.PowerOverflow)
	}
	ev.Str("U", string(r.VoltageDigits[:])).
		Str("I", string(r.CurrentDigits[:])).
		Str("P", string(r.PowerDigits[:])).
		Float32("voltage", r.Voltage).
		Float32("current", r.Current).
		Float32("power", r.Power).
		Msg("reading")
}
