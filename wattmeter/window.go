package main

import (
	"context"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/gowattmeter/pkg/adc"
	"github.com/itohio/gowattmeter/pkg/config"
	"github.com/itohio/gowattmeter/pkg/lcdview"
	"github.com/itohio/gowattmeter/pkg/meter"
)

// appState holds the application state.
type appState struct {
	cfg        *config.Config
	configPath string
	useMock    bool

	window     fyne.Window
	lcd        *lcdview.LCDWidget
	status     *widget.Label
	connectBtn *widget.Button
	session    *session // nil if not connected
}

func runWindow(state *appState) {
	application := app.NewWithID("com.itohio.gowattmeter")

	window := application.NewWindow("Wattmeter")
	window.Resize(fyne.NewSize(640, 420))
	window.CenterOnScreen()
	state.window = window

	state.lcd = lcdview.New()
	state.lcd.SetTextSize(28)
	state.status = widget.NewLabel("Disconnected")

	content := container.NewBorder(
		createToolbar(state),
		state.status,
		nil,
		nil,
		state.lcd,
	)

	window.SetContent(content)
	window.SetOnClosed(func() {
		disconnect(state)
	})
	window.ShowAndRun()
}

// createToolbar creates the Connect and Settings buttons.
func createToolbar(state *appState) fyne.CanvasObject {
	connectBtn := widget.NewButtonWithIcon("Connect", theme.LoginIcon(), func() {
		handleConnect(state)
	})
	state.connectBtn = connectBtn

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	return container.NewHBox(connectBtn, settingsBtn)
}

// handleConnect toggles the measurement session.
func handleConnect(state *appState) {
	if state.session != nil {
		disconnect(state)
		return
	}

	s, err := newSession(state.cfg, state.useMock, adc.RealTime)
	if err != nil {
		dialog.ShowError(err, state.window)
		return
	}

	state.lcd.Attach(s.lcd)
	s.signal.OnUpdate(func(r meter.Reading) {
		log.Debug().
			Str("U", string(r.VoltageDigits[:])).
			Str("I", string(r.CurrentDigits[:])).
			Str("P", string(r.PowerDigits[:])).
			Msg("reading")
	})

	s.Start(context.Background())
	state.session = s
	state.connectBtn.SetText("Disconnect")
	state.status.SetText(fmt.Sprintf("Measuring (%s)", s.source))
	log.Info().Str("source", s.source).Msg("connected")

	go watchSession(state, s)
}

// watchSession reports a fault once the loop of s stops by itself.
func watchSession(state *appState, s *session) {
	<-s.Done()
	err := s.Err()
	if err == nil {
		return
	}

	fyne.Do(func() {
		if state.session != s {
			return
		}
		state.status.SetText(fmt.Sprintf("Fault: %s", meter.FaultCode(err)))
		dialog.ShowError(err, state.window)
	})
}

func disconnect(state *appState) {
	s := state.session
	if s == nil {
		return
	}
	state.session = nil

	if err := s.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close source")
	}
	log.Info().Str("source", s.source).Msg("disconnected")

	if state.connectBtn != nil {
		state.connectBtn.SetText("Connect")
	}
	if state.status != nil {
		state.status.SetText("Disconnected")
	}
}
