package ui

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/yt-queue/internal/config"
	"github.com/ytget/yt-queue/internal/download"
	"github.com/ytget/yt-queue/internal/model"
	"github.com/ytget/yt-queue/internal/platform"
	"github.com/ytget/yt-queue/internal/queue"
	"github.com/ytget/yt-queue/internal/session"
)

// UI constants
const (
	RootUIUpdateDebounce = 100 * time.Millisecond
	RootMaxConsoleLines  = 500
)

// rowProgress is the live progress shown for the downloading item
type rowProgress struct {
	percent  int
	speedBps float64
	etaSec   int
}

// RootUI is the main window shell: URL input with format selection, the
// ordered queue list, transport controls, and the log console.
type RootUI struct {
	window  fyne.Window
	store   *queue.Store
	engine  *download.Engine
	adapter *session.Adapter

	settingsMu sync.Mutex
	settings   config.Settings

	urlEntry     *widget.Entry
	addBtn       *widget.Button
	audioCheck   *widget.Check
	qualitySel   *widget.Select
	audioSel     *widget.Select
	forceSabrChk *widget.Check

	queueList  *widget.List
	items      []model.QueueItem
	itemsMu    sync.Mutex
	selectedID string

	startBtn  *widget.Button
	stopBtn   *widget.Button
	countsLbl *widget.Label

	console      *widget.List
	logMu        sync.Mutex
	logLines     []string
	progressMu   sync.Mutex
	progress     map[string]rowProgress
	refreshMu    sync.Mutex
	refreshTimer *time.Timer
}

// NewRootUI creates and wires the main UI
func NewRootUI(window fyne.Window, store *queue.Store, engine *download.Engine, adapter *session.Adapter, settings config.Settings) *RootUI {
	ui := &RootUI{
		window:   window,
		store:    store,
		engine:   engine,
		adapter:  adapter,
		settings: settings,
		progress: make(map[string]rowProgress),
	}

	ui.setupUI()
	ui.store.SetChangeCallback(ui.scheduleRefresh)
	go ui.eventLoop()

	window.SetCloseIntercept(func() {
		ui.engine.Stop()
		ui.rememberWindowSize()
		ui.saveSession()
		window.Close()
	})

	ui.refreshQueue()
	return ui
}

// setupUI creates and arranges all components
func (ui *RootUI) setupUI() {
	ui.urlEntry = widget.NewEntry()
	ui.urlEntry.SetPlaceHolder("Paste a video or playlist URL")
	ui.urlEntry.Validator = validateURL
	ui.urlEntry.OnSubmitted = func(string) { ui.onAdd() }

	ui.addBtn = widget.NewButton("Add", ui.onAdd)

	ui.qualitySel = widget.NewSelect(qualityLabels(), func(sel string) {
		ui.updateSettings(func(s *config.Settings) { s.Quality = model.Quality(sel) })
	})
	ui.audioSel = widget.NewSelect(audioLabels(), func(sel string) {
		ui.updateSettings(func(s *config.Settings) { s.AudioFormat = model.AudioFormat(sel) })
	})
	ui.audioCheck = widget.NewCheck("Audio only", func(on bool) {
		ui.updateSettings(func(s *config.Settings) { s.AudioOnly = on })
		ui.syncFormatSelectors()
	})
	ui.forceSabrChk = widget.NewCheck("Force quality on restricted videos", func(on bool) {
		ui.updateSettings(func(s *config.Settings) { s.ForceSabr = on })
		ui.engine.SetForceSabr(on)
	})

	ui.settingsMu.Lock()
	current := ui.settings
	ui.settingsMu.Unlock()

	// Setting initial values fires the widget callbacks, so the lock must
	// not be held here
	ui.qualitySel.SetSelected(string(current.Quality))
	ui.audioSel.SetSelected(string(current.AudioFormat))
	ui.audioCheck.SetChecked(current.AudioOnly)
	ui.forceSabrChk.SetChecked(current.ForceSabr)
	consoleVisible := current.ConsoleVisible
	ui.syncFormatSelectors()

	settingsBtn := widget.NewButton("⚙", ui.showSettingsDialog)
	settingsBtn.Importance = widget.LowImportance

	topPanel := container.NewBorder(nil, nil, settingsBtn, ui.addBtn, ui.urlEntry)
	formatPanel := container.NewHBox(ui.audioCheck, ui.qualitySel, ui.audioSel, ui.forceSabrChk)

	ui.queueList = widget.NewList(ui.queueLength, ui.createQueueRow, ui.updateQueueRow)
	ui.queueList.OnSelected = func(id widget.ListItemID) {
		ui.itemsMu.Lock()
		if id >= 0 && id < len(ui.items) {
			ui.selectedID = ui.items[id].ID
		}
		ui.itemsMu.Unlock()
	}
	ui.queueList.OnUnselected = func(widget.ListItemID) {
		ui.itemsMu.Lock()
		ui.selectedID = ""
		ui.itemsMu.Unlock()
	}

	ui.startBtn = widget.NewButton("Start", ui.onStart)
	ui.startBtn.Importance = widget.HighImportance
	ui.stopBtn = widget.NewButton("Stop", ui.onStop)

	controls := container.NewHBox(
		ui.startBtn,
		ui.stopBtn,
		widget.NewSeparator(),
		widget.NewButton("↑", func() { ui.onSelected(ui.store.MoveUp) }),
		widget.NewButton("↓", func() { ui.onSelected(ui.store.MoveDown) }),
		widget.NewButton("⇈", func() { ui.onSelected(ui.store.MoveToTop) }),
		widget.NewButton("⇊", func() { ui.onSelected(ui.store.MoveToBottom) }),
		widget.NewSeparator(),
		widget.NewButton("Reveal", ui.onRevealFile),
		widget.NewButton("Remove", ui.onRemove),
		widget.NewButton("Reset item", ui.onResetSelected),
		widget.NewButton("Reset failed", ui.onResetFailed),
		widget.NewButton("Clear", ui.onClear),
	)

	ui.countsLbl = widget.NewLabel("")

	ui.console = widget.NewList(
		func() int {
			ui.logMu.Lock()
			defer ui.logMu.Unlock()
			return len(ui.logLines)
		},
		func() fyne.CanvasObject {
			line := widget.NewLabel("")
			line.TextStyle.Monospace = true
			return line
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			ui.logMu.Lock()
			defer ui.logMu.Unlock()
			if id >= 0 && id < len(ui.logLines) {
				obj.(*widget.Label).SetText(ui.logLines[id])
			}
		},
	)
	if !consoleVisible {
		ui.console.Hide()
	}

	bottom := container.NewVBox(controls, ui.countsLbl)
	center := container.NewVSplit(ui.queueList, ui.console)
	center.SetOffset(0.75)

	content := container.NewBorder(
		container.NewVBox(topPanel, formatPanel),
		bottom,
		nil, nil,
		center,
	)
	ui.window.SetContent(content)
}

func (ui *RootUI) queueLength() int {
	ui.itemsMu.Lock()
	defer ui.itemsMu.Unlock()
	return len(ui.items)
}

func (ui *RootUI) createQueueRow() fyne.CanvasObject {
	title := widget.NewLabel("")
	title.Truncation = fyne.TextTruncateEllipsis
	format := widget.NewLabel("")
	duration := widget.NewLabel("")
	status := widget.NewLabel("")
	status.Alignment = fyne.TextAlignTrailing
	progress := widget.NewLabel("")
	progress.Alignment = fyne.TextAlignTrailing
	return container.NewBorder(nil, nil, nil,
		container.NewHBox(format, duration, progress, status), title)
}

func (ui *RootUI) updateQueueRow(id widget.ListItemID, obj fyne.CanvasObject) {
	ui.itemsMu.Lock()
	if id < 0 || id >= len(ui.items) {
		ui.itemsMu.Unlock()
		return
	}
	item := ui.items[id]
	ui.itemsMu.Unlock()

	row := obj.(*fyne.Container)
	title := row.Objects[0].(*widget.Label)
	right := row.Objects[1].(*fyne.Container)
	format := right.Objects[0].(*widget.Label)
	duration := right.Objects[1].(*widget.Label)
	progress := right.Objects[2].(*widget.Label)
	status := right.Objects[3].(*widget.Label)

	title.SetText(fmt.Sprintf("%d. %s", item.OrderIndex+1, item.GetDisplayTitle()))
	format.SetText(formatColumn(item))
	duration.SetText(item.GetDurationString())
	progress.SetText(ui.progressColumn(item))
	status.Importance = StatusImportance(item.Status)
	status.SetText(StatusText(item.Status))
	status.Refresh()
}

// formatColumn shows the requested format, plus the effective one when the
// engine had to adjust it
func formatColumn(item model.QueueItem) string {
	if !item.EffectiveFormat.IsZero() && item.EffectiveFormat != item.RequestedFormat {
		return fmt.Sprintf("%s→%s", item.RequestedFormat, item.EffectiveFormat)
	}
	return item.RequestedFormat.String()
}

func (ui *RootUI) progressColumn(item model.QueueItem) string {
	if item.Status != model.StatusDownloading {
		return ""
	}
	ui.progressMu.Lock()
	p, ok := ui.progress[item.ID]
	ui.progressMu.Unlock()
	if !ok {
		return ""
	}
	parts := []string{fmt.Sprintf("%d%%", p.percent)}
	if speed := FormatSpeed(p.speedBps); speed != "" {
		parts = append(parts, speed)
	}
	if eta := FormatETA(p.etaSec); eta != "" {
		parts = append(parts, "ETA "+eta)
	}
	return strings.Join(parts, " ")
}

// eventLoop relays engine events onto the UI thread
func (ui *RootUI) eventLoop() {
	for event := range ui.engine.Events() {
		switch event.Type {
		case download.EventProgress:
			ui.progressMu.Lock()
			ui.progress[event.ItemID] = rowProgress{
				percent:  event.Percent,
				speedBps: event.SpeedBps,
				etaSec:   event.ETASec,
			}
			ui.progressMu.Unlock()
			ui.scheduleRefresh()
		case download.EventItemStateChanged:
			if event.NewStatus.IsTerminal() {
				ui.progressMu.Lock()
				delete(ui.progress, event.ItemID)
				ui.progressMu.Unlock()
			}
			ui.scheduleRefresh()
		case download.EventLogMessage:
			ui.appendLog(event.Level, event.Message)
		case download.EventItemAdded, download.EventSnapshotSaved:
			ui.scheduleRefresh()
		}
	}
}

// scheduleRefresh coalesces bursts of change notifications into one redraw
func (ui *RootUI) scheduleRefresh() {
	ui.refreshMu.Lock()
	defer ui.refreshMu.Unlock()
	if ui.refreshTimer != nil {
		return
	}
	ui.refreshTimer = time.AfterFunc(RootUIUpdateDebounce, func() {
		ui.refreshMu.Lock()
		ui.refreshTimer = nil
		ui.refreshMu.Unlock()
		fyne.Do(ui.refreshQueue)
	})
}

func (ui *RootUI) refreshQueue() {
	snapshot := ui.store.Items()
	ui.itemsMu.Lock()
	ui.items = snapshot
	ui.itemsMu.Unlock()

	ui.queueList.Refresh()
	ui.countsLbl.SetText(countsLine(ui.store.Counts(), len(snapshot)))
}

// countsLine summarizes the queue for the footer
func countsLine(counts map[model.ItemStatus]int, total int) string {
	parts := []string{fmt.Sprintf("%d items", total)}
	for _, status := range []model.ItemStatus{
		model.StatusPending, model.StatusDownloading, model.StatusDone,
		model.StatusFailed, model.StatusSkipped,
		model.StatusQualityBlocked, model.StatusAgeRestricted,
	} {
		if n := counts[status]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, status))
		}
	}
	return strings.Join(parts, " · ")
}

// appendLog adds a console line when it passes the configured level
func (ui *RootUI) appendLog(level, message string) {
	ui.settingsMu.Lock()
	threshold := ui.settings.LogLevel
	ui.settingsMu.Unlock()
	if !LevelVisible(level, threshold) {
		return
	}

	line := fmt.Sprintf("%s [%s] %s", time.Now().Format("15:04:05"), level, message)
	ui.logMu.Lock()
	ui.logLines = append(ui.logLines, line)
	if len(ui.logLines) > RootMaxConsoleLines {
		ui.logLines = ui.logLines[len(ui.logLines)-RootMaxConsoleLines:]
	}
	count := len(ui.logLines)
	ui.logMu.Unlock()

	fyne.Do(func() {
		ui.console.Refresh()
		ui.console.ScrollTo(count - 1)
	})
}

// onAdd queues the entered URL with the currently selected format
func (ui *RootUI) onAdd() {
	raw := strings.TrimSpace(ui.urlEntry.Text)
	if raw == "" {
		return
	}
	if err := validateURL(raw); err != nil {
		dialog.ShowError(err, ui.window)
		return
	}

	ui.settingsMu.Lock()
	requested := ui.settings.RequestedFormat()
	ui.settingsMu.Unlock()

	ui.store.Add(raw, requested)
	ui.urlEntry.SetText("")
	ui.saveSession()
}

func (ui *RootUI) onStart() {
	ui.settingsMu.Lock()
	s := ui.settings
	ui.settingsMu.Unlock()

	if err := platform.CreateDirectoryIfNotExists(s.DownloadDir); err != nil {
		dialog.ShowError(fmt.Errorf("cannot create download directory: %w", err), ui.window)
		return
	}
	ui.engine.SetDownloadDir(s.DownloadDir)
	ui.engine.SetMaxParallel(s.MaxParallel)
	ui.engine.SetForceSabr(s.ForceSabr)
	ui.engine.Start()
}

func (ui *RootUI) onStop() {
	ui.engine.Stop()
}

// onSelected applies a bulk store operation to the selected item
func (ui *RootUI) onSelected(op func(ids []string)) {
	ui.itemsMu.Lock()
	id := ui.selectedID
	ui.itemsMu.Unlock()
	if id == "" {
		return
	}
	op([]string{id})
	ui.saveSession()
}

func (ui *RootUI) onRemove() {
	ui.onSelected(ui.store.Remove)
}

// onRevealFile opens the selected item's downloaded file in the system file
// manager
func (ui *RootUI) onRevealFile() {
	ui.itemsMu.Lock()
	id := ui.selectedID
	ui.itemsMu.Unlock()
	item, ok := ui.store.Get(id)
	if !ok || item.OutputPath == "" {
		return
	}
	if err := platform.OpenFileInManager(item.OutputPath); err != nil {
		ui.appendLog(download.LevelWarning, fmt.Sprintf("Could not reveal file: %v", err))
	}
}

// onResetSelected returns the selected terminal item to Pending, clears its
// archive entry, and removes the downloaded file so the rerun starts clean
func (ui *RootUI) onResetSelected() {
	ui.itemsMu.Lock()
	id := ui.selectedID
	ui.itemsMu.Unlock()
	if id == "" {
		return
	}
	item, ok := ui.store.Get(id)
	if !ok {
		return
	}
	if ui.store.ResetItems([]string{id}) > 0 {
		if item.VideoID != "" {
			if err := ui.engine.Archive().Remove(item.VideoID); err != nil {
				ui.appendLog(download.LevelWarning, fmt.Sprintf("Could not update download archive: %v", err))
			}
		}
		if item.OutputPath != "" {
			if err := os.Remove(item.OutputPath); err != nil && !os.IsNotExist(err) {
				ui.appendLog(download.LevelWarning, fmt.Sprintf("Could not remove %s: %v", item.OutputPath, err))
			}
		}
	}
	ui.saveSession()
}

func (ui *RootUI) onResetFailed() {
	if n := ui.store.ResetFailed(); n > 0 {
		ui.appendLog(download.LevelInfo, fmt.Sprintf("Reset %d failed items", n))
		ui.saveSession()
	}
}

func (ui *RootUI) onClear() {
	dialog.ShowConfirm("Clear queue", "Remove all items from the queue?", func(ok bool) {
		if !ok {
			return
		}
		ui.store.Clear()
		ui.saveSession()
	}, ui.window)
}

// updateSettings mutates the settings under lock and persists them
func (ui *RootUI) updateSettings(mutate func(*config.Settings)) {
	ui.settingsMu.Lock()
	mutate(&ui.settings)
	ui.settings.Normalize()
	ui.settingsMu.Unlock()
	ui.saveSession()
}

// syncFormatSelectors enables the selector matching the audio-only toggle
func (ui *RootUI) syncFormatSelectors() {
	ui.settingsMu.Lock()
	audioOnly := ui.settings.AudioOnly
	ui.settingsMu.Unlock()
	if audioOnly {
		ui.qualitySel.Disable()
		ui.audioSel.Enable()
	} else {
		ui.qualitySel.Enable()
		ui.audioSel.Disable()
	}
}

func (ui *RootUI) rememberWindowSize() {
	size := ui.window.Canvas().Size()
	ui.settingsMu.Lock()
	ui.settings.WindowWidth = int(size.Width)
	ui.settings.WindowHeight = int(size.Height)
	ui.settingsMu.Unlock()
}

// saveSession snapshots settings and queue to disk
func (ui *RootUI) saveSession() {
	ui.settingsMu.Lock()
	s := ui.settings
	ui.settingsMu.Unlock()

	doc := session.Document{Settings: s, Queue: ui.store.Snapshot()}
	if err := ui.adapter.Save(doc); err != nil {
		log.Printf("session save failed: %v", err)
		ui.appendLog(download.LevelError, fmt.Sprintf("Could not save session: %v", err))
	}
}

// SaveSession persists the current state; main calls this on shutdown paths
// that bypass the close intercept
func (ui *RootUI) SaveSession() {
	ui.saveSession()
}

// validateURL accepts http(s) URLs only
func validateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("not a valid URL")
	}
	return nil
}

func qualityLabels() []string {
	options := config.QualityOptions()
	labels := make([]string, len(options))
	for i, q := range options {
		labels[i] = string(q)
	}
	return labels
}

func audioLabels() []string {
	options := config.AudioOptions()
	labels := make([]string, len(options))
	for i, a := range options {
		labels[i] = string(a)
	}
	return labels
}
