package model

// ItemStatus represents the lifecycle state of a queue item
type ItemStatus string

const (
	// StatusPending means the item is queued but not started
	StatusPending ItemStatus = "Pending"

	// StatusResolving means metadata and format resolution is in progress
	StatusResolving ItemStatus = "Resolving"

	// StatusDownloading means the download is in progress
	StatusDownloading ItemStatus = "Downloading"

	// StatusDone means the item downloaded and validated successfully
	StatusDone ItemStatus = "Done"

	// StatusFailed means the download or validation failed
	StatusFailed ItemStatus = "Failed"

	// StatusSkipped means the file for this video was already downloaded
	StatusSkipped ItemStatus = "Skipped"

	// StatusQualityBlocked means no compatible format was available
	StatusQualityBlocked ItemStatus = "QualityBlocked"

	// StatusAgeRestricted means the content is age-gated with no accessible stream
	StatusAgeRestricted ItemStatus = "AgeRestricted"
)

// String returns the string representation of ItemStatus
func (s ItemStatus) String() string {
	return string(s)
}

// IsActive returns true if the item is currently being worked on by the engine
func (s ItemStatus) IsActive() bool {
	return s == StatusResolving || s == StatusDownloading
}

// IsTerminal returns true if the item reached a final state. Terminal items
// are never picked up again until an explicit Reset.
func (s ItemStatus) IsTerminal() bool {
	switch s {
	case StatusDone, StatusFailed, StatusSkipped, StatusQualityBlocked, StatusAgeRestricted:
		return true
	}
	return false
}

// IsResettable returns true if a Reset may return the item to Pending.
// Done and Skipped items keep their result; only failure-class states reset.
func (s ItemStatus) IsResettable() bool {
	switch s {
	case StatusFailed, StatusQualityBlocked, StatusAgeRestricted:
		return true
	}
	return false
}

// validTransitions lists the allowed engine-driven status transitions.
// Reverting an in-flight item to Pending covers Stop; a terminal state is
// never overwritten here (Reset goes through QueueItem.Reset).
var validTransitions = map[ItemStatus][]ItemStatus{
	StatusPending:     {StatusResolving},
	StatusResolving:   {StatusDownloading, StatusSkipped, StatusQualityBlocked, StatusAgeRestricted, StatusFailed, StatusPending},
	StatusDownloading: {StatusDone, StatusSkipped, StatusFailed, StatusQualityBlocked, StatusAgeRestricted, StatusPending},
}

// CanTransition reports whether moving from s to next is a legal lifecycle step
func (s ItemStatus) CanTransition(next ItemStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
