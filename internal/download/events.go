package download

import "github.com/ytget/yt-queue/internal/model"

// EventType identifies an engine notification
type EventType string

const (
	// EventItemAdded fires when the engine adds items (playlist expansion)
	EventItemAdded EventType = "item_added"

	// EventItemStateChanged fires on every item status transition
	EventItemStateChanged EventType = "item_state_changed"

	// EventProgress relays download progress for the in-flight item
	EventProgress EventType = "progress"

	// EventLogMessage carries a console line with its level
	EventLogMessage EventType = "log_message"

	// EventSnapshotSaved fires after the queue snapshot was persisted
	EventSnapshotSaved EventType = "snapshot_saved"
)

// Log event levels, ordered by severity
const (
	LevelDebug   = "DEBUG"
	LevelInfo    = "INFO"
	LevelWarning = "WARNING"
	LevelError   = "ERROR"
)

// Event is a notification from the engine to the GUI shell. The engine never
// blocks on a slow consumer; the channel drops its oldest entries instead.
type Event struct {
	Type EventType

	// Item events
	ItemID    string
	OldStatus model.ItemStatus
	NewStatus model.ItemStatus

	// Progress events
	Percent  int
	SpeedBps float64
	ETASec   int

	// Log events
	Level   string
	Message string
}
