package ui

// Package ui contains the Fyne GUI shell: URL input with format selection,
// the ordered queue list with per-item status and progress, transport
// controls, the settings dialog, and the filtered log console fed by engine
// events.
