package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/gowattmeter/pkg/adc"
)

// showSettingsDialog displays a settings dialog with tabs for all configuration options.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createSerialTab(state),
		createSamplingTab(state),
		createDisplayTab(state),
		createMockTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(520, 420))
	d.Show()
}

// saveConfig validates and persists the configuration.
func saveConfig(state *appState) bool {
	if err := state.cfg.Validate(); err != nil {
		dialog.ShowError(err, state.window)
		return false
	}
	if err := state.cfg.Save(state.configPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
		return false
	}
	return true
}

// restart rebuilds a running session so new settings take effect.
func restart(state *appState) {
	if state.session == nil {
		return
	}
	disconnect(state)
	handleConnect(state)
}

// createSerialTab creates the Serial configuration tab.
func createSerialTab(state *appState) *container.TabItem {
	ports, err := adc.Ports()
	portOptions := []string{}
	portMap := make(map[string]string) // display name to port name

	if err == nil {
		for _, port := range ports {
			displayName := port.Name
			if port.Description != "" && port.Description != port.Name {
				displayName = fmt.Sprintf("%s (%s)", port.Name, port.Description)
			}
			portOptions = append(portOptions, displayName)
			portMap[displayName] = port.Name
		}
	} else {
		log.Warn().Err(err).Msg("failed to list serial ports")
	}

	// Add current port if not in list
	currentPort := state.cfg.Serial.Port
	currentDisplay := currentPort
	found := false
	for _, opt := range portOptions {
		if portMap[opt] == currentPort {
			currentDisplay = opt
			found = true
			break
		}
	}
	if !found && currentPort != "" {
		portOptions = append(portOptions, currentPort)
		portMap[currentPort] = currentPort
	}

	portSelect := widget.NewSelect(portOptions, nil)
	if currentDisplay != "" {
		portSelect.SetSelected(currentDisplay)
	}

	baudEntry := widget.NewEntry()
	baudEntry.SetText(strconv.Itoa(state.cfg.Serial.BaudRate))

	timeoutEntry := widget.NewEntry()
	timeoutEntry.SetText(state.cfg.Serial.ReadTimeout.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: portSelect},
			{Text: "Baud Rate", Widget: baudEntry},
			{Text: "Read Timeout", Widget: timeoutEntry},
		},
		OnSubmit: func() {
			if portSelect.Selected != "" {
				selectedPort := portMap[portSelect.Selected]
				if selectedPort == "" {
					selectedPort = portSelect.Selected
				}
				state.cfg.Serial.Port = selectedPort
			}
			if baud, err := strconv.Atoi(baudEntry.Text); err == nil {
				state.cfg.Serial.BaudRate = baud
			}
			if rt, err := time.ParseDuration(timeoutEntry.Text); err == nil {
				state.cfg.Serial.ReadTimeout = rt
			}
			if saveConfig(state) && !state.useMock {
				restart(state)
			}
		},
	}

	return container.NewTabItem("Serial", form)
}

// createSamplingTab creates the Sampling configuration tab.
func createSamplingTab(state *appState) *container.TabItem {
	currentEntry := widget.NewEntry()
	currentEntry.SetText(strconv.Itoa(state.cfg.Sampling.CurrentSamples))

	voltageEntry := widget.NewEntry()
	voltageEntry.SetText(strconv.Itoa(state.cfg.Sampling.VoltageSamples))

	settleEntry := widget.NewEntry()
	settleEntry.SetText(state.cfg.Sampling.SettleDelay.String())

	pollsEntry := widget.NewEntry()
	pollsEntry.SetText(strconv.Itoa(state.cfg.Sampling.MaxPolls))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Current Samples", Widget: currentEntry},
			{Text: "Voltage Samples", Widget: voltageEntry},
			{Text: "Settle Delay", Widget: settleEntry},
			{Text: "Max Polls (0=unbounded)", Widget: pollsEntry},
		},
		OnSubmit: func() {
			if n, err := strconv.Atoi(currentEntry.Text); err == nil {
				state.cfg.Sampling.CurrentSamples = n
			}
			if n, err := strconv.Atoi(voltageEntry.Text); err == nil {
				state.cfg.Sampling.VoltageSamples = n
			}
			if d, err := time.ParseDuration(settleEntry.Text); err == nil {
				state.cfg.Sampling.SettleDelay = d
			}
			if n, err := strconv.Atoi(pollsEntry.Text); err == nil {
				state.cfg.Sampling.MaxPolls = n
			}
			if saveConfig(state) {
				restart(state)
			}
		},
	}

	return container.NewTabItem("Sampling", form)
}

// createDisplayTab creates the Display configuration tab.
func createDisplayTab(state *appState) *container.TabItem {
	holdEntry := widget.NewEntry()
	holdEntry.SetText(state.cfg.Display.Hold.String())

	charDelayEntry := widget.NewEntry()
	charDelayEntry.SetText(state.cfg.Display.CharDelay.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Hold", Widget: holdEntry},
			{Text: "Character Delay", Widget: charDelayEntry},
		},
		OnSubmit: func() {
			if d, err := time.ParseDuration(holdEntry.Text); err == nil {
				state.cfg.Display.Hold = d
			}
			if d, err := time.ParseDuration(charDelayEntry.Text); err == nil {
				state.cfg.Display.CharDelay = d
			}
			if saveConfig(state) {
				restart(state)
			}
		},
	}

	return container.NewTabItem("Display", form)
}

// createMockTab creates the simulated supply tab. Load changes apply to a
// running mock session immediately.
func createMockTab(state *appState) *container.TabItem {
	voltageEntry := widget.NewEntry()
	voltageEntry.SetText(fmt.Sprintf("%.2f", state.cfg.Mock.Voltage))

	currentEntry := widget.NewEntry()
	currentEntry.SetText(fmt.Sprintf("%.3f", state.cfg.Mock.Current))

	noiseEntry := widget.NewEntry()
	noiseEntry.SetText(fmt.Sprintf("%.2f", state.cfg.Mock.NoiseLevel))

	rippleEntry := widget.NewEntry()
	rippleEntry.SetText(state.cfg.Mock.Ripple.String())

	stuckCheck := widget.NewCheck("Stuck converter", func(stuck bool) {
		if s := state.session; s != nil && s.mock != nil {
			s.mock.SetStuck(stuck)
		}
	})

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Voltage (V)", Widget: voltageEntry},
			{Text: "Current (A)", Widget: currentEntry},
			{Text: "Noise (LSB)", Widget: noiseEntry},
			{Text: "Ripple Period (0=off)", Widget: rippleEntry},
			{Text: "", Widget: stuckCheck},
		},
		OnSubmit: func() {
			if v, err := strconv.ParseFloat(voltageEntry.Text, 64); err == nil {
				state.cfg.Mock.Voltage = v
			}
			if c, err := strconv.ParseFloat(currentEntry.Text, 64); err == nil {
				state.cfg.Mock.Current = c
			}
			if n, err := strconv.ParseFloat(noiseEntry.Text, 64); err == nil {
				state.cfg.Mock.NoiseLevel = n
			}
			if r, err := time.ParseDuration(rippleEntry.Text); err == nil {
				state.cfg.Mock.Ripple = r
			}
			if !saveConfig(state) {
				return
			}
			if s := state.session; s != nil && s.mock != nil {
				s.mock.SetLoad(state.cfg.Mock.Voltage, state.cfg.Mock.Current)
			}
		},
	}

	return container.NewTabItem("Mock", form)
}
