package ui

import (
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/yt-queue/internal/config"
	"github.com/ytget/yt-queue/internal/model"
)

// showSettingsDialog opens the settings form. Changes apply on Save and are
// persisted with the next session snapshot.
func (ui *RootUI) showSettingsDialog() {
	ui.settingsMu.Lock()
	current := ui.settings
	ui.settingsMu.Unlock()

	downloadDirEntry := widget.NewEntry()
	downloadDirEntry.SetText(current.DownloadDir)
	browseBtn := widget.NewButton("Browse", func() {
		dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
			if err != nil || uri == nil {
				return
			}
			downloadDirEntry.SetText(uri.Path())
		}, ui.window)
	})
	downloadDirRow := container.NewBorder(nil, nil, nil, browseBtn, downloadDirEntry)

	maxParallelSel := widget.NewSelect(parallelOptions(), nil)
	maxParallelSel.SetSelected(strconv.Itoa(current.MaxParallel))

	logLevelSel := widget.NewSelect(config.LogLevelOptions(), nil)
	logLevelSel.SetSelected(current.LogLevel)

	ceilingSel := widget.NewSelect(qualityLabels(), nil)
	ceilingSel.SetSelected(string(current.SabrCeiling))

	consoleCheck := widget.NewCheck("Show log console", nil)
	consoleCheck.SetChecked(current.ConsoleVisible)

	form := container.NewVBox(
		widget.NewLabel("Download Directory:"),
		downloadDirRow,
		widget.NewLabel("Max Parallel Downloads:"),
		maxParallelSel,
		widget.NewLabel("Restricted Quality Ceiling:"),
		ceilingSel,
		widget.NewSeparator(),
		widget.NewLabel("Console Log Level:"),
		logLevelSel,
		consoleCheck,
	)

	d := dialog.NewCustomConfirm("Settings", "Save", "Cancel", form, func(confirmed bool) {
		if !confirmed {
			return
		}
		ui.updateSettings(func(s *config.Settings) {
			if downloadDirEntry.Text != "" {
				s.DownloadDir = downloadDirEntry.Text
			}
			if n, err := strconv.Atoi(maxParallelSel.Selected); err == nil {
				s.MaxParallel = n
			}
			if logLevelSel.Selected != "" {
				s.LogLevel = logLevelSel.Selected
			}
			if ceilingSel.Selected != "" {
				s.SabrCeiling = model.Quality(ceilingSel.Selected)
			}
			s.ConsoleVisible = consoleCheck.Checked
		})
		ui.applySettings()
	}, ui.window)

	d.Resize(fyne.NewSize(480, 420))
	d.Show()
}

// applySettings pushes saved settings onto the live components
func (ui *RootUI) applySettings() {
	ui.settingsMu.Lock()
	s := ui.settings
	ui.settingsMu.Unlock()

	ui.engine.SetDownloadDir(s.DownloadDir)
	ui.engine.SetMaxParallel(s.MaxParallel)
	ui.engine.SetSabrCeiling(s.SabrCeiling)

	if s.ConsoleVisible {
		ui.console.Show()
	} else {
		ui.console.Hide()
	}
}

func parallelOptions() []string {
	options := make([]string, 0, config.MaxParallel)
	for i := config.MinParallel; i <= config.MaxParallel; i++ {
		options = append(options, strconv.Itoa(i))
	}
	return options
}
