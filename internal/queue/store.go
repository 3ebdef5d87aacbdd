package queue

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ytget/yt-queue/internal/model"
)

// Store is the mutex-guarded ordered collection of queue items. It owns all
// QueueItem instances; callers only ever see copies. OrderIndex stays a
// contiguous 0-based ranking across every mutation.
type Store struct {
	mu       sync.Mutex
	items    []*model.QueueItem
	onChange func() // invoked after every mutating operation
}

// NewStore creates an empty queue store
func NewStore() *Store {
	return &Store{}
}

// SetChangeCallback sets the callback invoked after each mutation
func (s *Store) SetChangeCallback(callback func()) {
	s.mu.Lock()
	s.onChange = callback
	s.mu.Unlock()
}

// Add appends a new Pending item for the URL with the next order index.
// Duplicate URLs are allowed; duplicate files are caught at download time.
func (s *Store) Add(url string, requested model.FormatSpec) model.QueueItem {
	s.mu.Lock()
	item := &model.QueueItem{
		ID:              generateItemID(),
		SourceURL:       url,
		RequestedFormat: requested,
		Status:          model.StatusPending,
		OrderIndex:      len(s.items),
		AddedAt:         time.Now(),
	}
	s.items = append(s.items, item)
	copied := *item
	s.mu.Unlock()

	s.notifyChange()
	return copied
}

// Get returns a copy of the item with the given ID
func (s *Store) Get(id string) (model.QueueItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.items {
		if item.ID == id {
			return *item, true
		}
	}
	return model.QueueItem{}, false
}

// Items returns copies of all items in queue order
func (s *Store) Items() []model.QueueItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.QueueItem, len(s.items))
	for i, item := range s.items {
		out[i] = *item
	}
	return out
}

// Len returns the number of items
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Counts returns the number of items per status
func (s *Store) Counts() map[model.ItemStatus]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[model.ItemStatus]int)
	for _, item := range s.items {
		counts[item.Status]++
	}
	return counts
}

// Remove deletes the items with the given IDs and re-compacts order indices
func (s *Store) Remove(ids []string) {
	selected := idSet(ids)

	s.mu.Lock()
	kept := s.items[:0]
	for _, item := range s.items {
		if !selected[item.ID] {
			kept = append(kept, item)
		}
	}
	s.items = kept
	s.reindex()
	s.mu.Unlock()

	s.notifyChange()
}

// Clear empties the store
func (s *Store) Clear() {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()

	s.notifyChange()
}

// MoveUp shifts each selected item one position toward the front. The first
// item stays put; relative order within and outside the selection holds.
func (s *Store) MoveUp(ids []string) {
	selected := idSet(ids)

	s.mu.Lock()
	for i := 1; i < len(s.items); i++ {
		if selected[s.items[i].ID] && !selected[s.items[i-1].ID] {
			s.items[i-1], s.items[i] = s.items[i], s.items[i-1]
		}
	}
	s.reindex()
	s.mu.Unlock()

	s.notifyChange()
}

// MoveDown shifts each selected item one position toward the back
func (s *Store) MoveDown(ids []string) {
	selected := idSet(ids)

	s.mu.Lock()
	for i := len(s.items) - 2; i >= 0; i-- {
		if selected[s.items[i].ID] && !selected[s.items[i+1].ID] {
			s.items[i], s.items[i+1] = s.items[i+1], s.items[i]
		}
	}
	s.reindex()
	s.mu.Unlock()

	s.notifyChange()
}

// MoveToTop moves the selected items to the front, preserving their relative order
func (s *Store) MoveToTop(ids []string) {
	selected := idSet(ids)

	s.mu.Lock()
	var front, rest []*model.QueueItem
	for _, item := range s.items {
		if selected[item.ID] {
			front = append(front, item)
		} else {
			rest = append(rest, item)
		}
	}
	s.items = append(front, rest...)
	s.reindex()
	s.mu.Unlock()

	s.notifyChange()
}

// MoveToBottom moves the selected items to the back, preserving their relative order
func (s *Store) MoveToBottom(ids []string) {
	selected := idSet(ids)

	s.mu.Lock()
	var back, rest []*model.QueueItem
	for _, item := range s.items {
		if selected[item.ID] {
			back = append(back, item)
		} else {
			rest = append(rest, item)
		}
	}
	s.items = append(rest, back...)
	s.reindex()
	s.mu.Unlock()

	s.notifyChange()
}

// ResetFailed returns every Failed, QualityBlocked and AgeRestricted item to
// Pending. Done and Skipped items are untouched.
func (s *Store) ResetFailed() int {
	s.mu.Lock()
	reset := 0
	for _, item := range s.items {
		if item.Status.IsResettable() {
			item.Reset()
			reset++
		}
	}
	s.mu.Unlock()

	if reset > 0 {
		s.notifyChange()
	}
	return reset
}

// ResetItems returns the selected terminal items to Pending. Unlike the bulk
// ResetFailed, an explicit per-item reset may also redo Done and Skipped
// items, matching a deliberate user action.
func (s *Store) ResetItems(ids []string) int {
	selected := idSet(ids)

	s.mu.Lock()
	reset := 0
	for _, item := range s.items {
		if selected[item.ID] && item.Status.IsTerminal() {
			item.Reset()
			reset++
		}
	}
	s.mu.Unlock()

	if reset > 0 {
		s.notifyChange()
	}
	return reset
}

// ClaimNext atomically transitions the first Pending item (by order) to
// Resolving and returns a copy. The claiming worker owns the item until it
// reaches a terminal state or reverts to Pending.
func (s *Store) ClaimNext() (model.QueueItem, bool) {
	return s.ClaimNextExcept(nil)
}

// ClaimNextExcept claims the first Pending item whose ID is not in skip.
// The engine uses the skip set to pass over items whose metadata lookup
// already failed this run; those stay Pending for the next start.
func (s *Store) ClaimNextExcept(skip map[string]bool) (model.QueueItem, bool) {
	s.mu.Lock()
	for _, item := range s.items {
		if item.Status == model.StatusPending && !skip[item.ID] {
			item.Status = model.StatusResolving
			copied := *item
			s.mu.Unlock()
			s.notifyChange()
			return copied, true
		}
	}
	s.mu.Unlock()
	return model.QueueItem{}, false
}

// SetStatus applies a lifecycle transition, rejecting illegal ones. Terminal
// states are never overwritten here; that path goes through Reset.
func (s *Store) SetStatus(id string, status model.ItemStatus, errDetail string) error {
	s.mu.Lock()
	item := s.find(id)
	if item == nil {
		s.mu.Unlock()
		return fmt.Errorf("item not found: %s", id)
	}
	if !item.Status.CanTransition(status) {
		s.mu.Unlock()
		return fmt.Errorf("illegal transition %s -> %s for item %s", item.Status, status, id)
	}
	item.Status = status
	item.ErrorDetail = errDetail
	if status.IsTerminal() {
		item.FinishedAt = time.Now()
	}
	s.mu.Unlock()

	s.notifyChange()
	return nil
}

// RevertToPending returns an in-flight item to Pending, clearing the
// per-attempt fields. Terminal items are left alone.
func (s *Store) RevertToPending(id string) {
	s.mu.Lock()
	item := s.find(id)
	if item == nil || !item.Status.IsActive() {
		s.mu.Unlock()
		return
	}
	item.Reset()
	s.mu.Unlock()

	s.notifyChange()
}

// UpdateResolved records probe results on the item
func (s *Store) UpdateResolved(id, videoID, title string, durationSec int) {
	s.mu.Lock()
	if item := s.find(id); item != nil {
		item.VideoID = videoID
		item.Title = title
		item.DurationSec = durationSec
	}
	s.mu.Unlock()

	s.notifyChange()
}

// SetEffectiveFormat records the format chosen by the resolver
func (s *Store) SetEffectiveFormat(id string, spec model.FormatSpec) {
	s.mu.Lock()
	if item := s.find(id); item != nil {
		item.EffectiveFormat = spec
	}
	s.mu.Unlock()

	s.notifyChange()
}

// SetOutputPath records where the downloaded file landed
func (s *Store) SetOutputPath(id, path string) {
	s.mu.Lock()
	if item := s.find(id); item != nil {
		item.OutputPath = path
	}
	s.mu.Unlock()
}

// Snapshot returns a copy of the queue suitable for persistence
func (s *Store) Snapshot() []model.QueueItem {
	return s.Items()
}

// Restore replaces the store contents from a persisted snapshot. In-flight
// statuses from a crashed session come back as Pending; order indices are
// re-compacted.
func (s *Store) Restore(items []model.QueueItem) {
	s.mu.Lock()
	s.items = make([]*model.QueueItem, 0, len(items))
	for i := range items {
		item := items[i]
		if item.Status.IsActive() {
			item.Reset()
		}
		if item.Status == "" {
			item.Status = model.StatusPending
		}
		if item.ID == "" {
			item.ID = generateItemID()
		}
		s.items = append(s.items, &item)
	}
	s.reindex()
	s.mu.Unlock()

	s.notifyChange()
}

// find returns the item with the given ID; caller holds the lock
func (s *Store) find(id string) *model.QueueItem {
	for _, item := range s.items {
		if item.ID == id {
			return item
		}
	}
	return nil
}

// reindex re-compacts order indices; caller holds the lock
func (s *Store) reindex() {
	for i, item := range s.items {
		item.OrderIndex = i
	}
}

func (s *Store) notifyChange() {
	s.mu.Lock()
	callback := s.onChange
	s.mu.Unlock()

	if callback != nil {
		callback()
	}
}

func idSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// generateItemID generates a unique queue item ID
func generateItemID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
