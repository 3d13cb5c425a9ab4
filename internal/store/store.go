// Package store holds the live notification list shared by the request
// sources, the display controller and the janitor.
package store

import (
	"cmp"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/jmylchreest/lmk/internal/layout"
	"github.com/jmylchreest/lmk/internal/model"
)

// ChangeType indicates the type of store change.
type ChangeType int

const (
	// ChangeTypeAdd indicates a notification was added.
	ChangeTypeAdd ChangeType = iota
	// ChangeTypeDismiss indicates notifications were dismissed.
	ChangeTypeDismiss
	// ChangeTypePrune indicates dismissed notifications were removed.
	ChangeTypePrune
)

func (c ChangeType) String() string {
	switch c {
	case ChangeTypeAdd:
		return "add"
	case ChangeTypeDismiss:
		return "dismiss"
	case ChangeTypePrune:
		return "prune"
	default:
		return "unknown"
	}
}

// ChangeEvent signals store content changes.
type ChangeEvent struct {
	Type  ChangeType
	Count int
	// IDs lists the affected notifications.
	IDs []uint32
}

// Sizer computes the box of a notification. *layout.Engine implements it.
type Sizer interface {
	ComputeBox(title, body string, widthEnvelope int) layout.Box
}

// Option configures a Store.
type Option func(*Store)

// WithArchive hands every pruned notification to a.
func WithArchive(a Archive) Option {
	return func(s *Store) { s.archive = a }
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Store is the ordered notification list. A single lock guards the whole
// collection; contention is human-rate so a consistent snapshot is worth
// more than finer locking.
type Store struct {
	mu            sync.RWMutex
	notifications []model.Notification
	lastID        uint32

	sizer   Sizer
	archive Archive
	now     func() time.Time
	logger  *slog.Logger

	subscribers []chan ChangeEvent
	closed      bool
}

// NewStore creates a Store sizing new entries with sizer.
func NewStore(sizer Sizer, opts ...Option) *Store {
	s := &Store{
		notifications: make([]model.Notification, 0),
		sizer:         sizer,
		now:           time.Now,
		logger:        slog.Default(),
		subscribers:   make([]chan ChangeEvent, 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add normalizes req, sizes it and appends it at the tail. Input is never
// rejected; the only error is a closed store.
func (s *Store) Add(req model.Request) (model.Notification, error) {
	req = req.Normalize()

	// Sizing walks glyph metrics; keep it out of the critical section.
	box := s.sizer.ComputeBox(req.Title, req.Body, layout.MaxWidth)

	n := model.Notification{
		Title:      req.Title,
		Body:       req.Body,
		Icon:       req.Icon,
		Urgency:    req.Urgency,
		DurationMs: req.DurationMs,
		Width:      box.Width,
		Height:     box.Height,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return model.Notification{}, ErrStoreClosed
	}

	n.CreatedAt = s.now()
	ref, err := model.NewRef(n.CreatedAt)
	if err != nil {
		s.logger.Warn("failed to generate notification ref", "error", err)
	}
	n.Ref = ref

	s.lastID++
	n.ID = s.lastID
	s.notifications = append(s.notifications, n)

	s.notifyChange(ChangeEvent{Type: ChangeTypeAdd, Count: 1, IDs: []uint32{n.ID}})

	return n, nil
}

// Get returns the notification with the given id, dismissed or not.
func (s *Store) Get(id uint32) (model.Notification, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if idx := s.indexOf(id); idx >= 0 {
		return s.notifications[idx], true
	}
	return model.Notification{}, false
}

// Dismiss marks a notification as dismissed. Unknown or already dismissed
// ids are ignored and report false.
func (s *Store) Dismiss(id uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 || !s.notifications[idx].MarkDismissed(s.now()) {
		return false
	}

	s.notifyChange(ChangeEvent{Type: ChangeTypeDismiss, Count: 1, IDs: []uint32{id}})
	return true
}

// DismissAtOffset hit-tests y against the stacked undismissed entries and
// dismisses the one containing it. Entries are laid out top to bottom in
// arrival order, the first starting at spacing and each following one
// spacing below the previous. It returns the dismissed id, if any.
func (s *Store) DismissAtOffset(y, spacing int) (uint32, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	top := spacing
	for i := range s.notifications {
		n := &s.notifications[i]
		if n.Dismissed {
			continue
		}

		if y >= top && y < top+n.Height {
			n.MarkDismissed(s.now())
			s.notifyChange(ChangeEvent{Type: ChangeTypeDismiss, Count: 1, IDs: []uint32{n.ID}})
			return n.ID, true
		}
		top += n.Height + spacing
	}

	return 0, false
}

// DismissAll dismisses every undismissed notification and returns how many
// changed.
func (s *Store) DismissAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var ids []uint32
	for i := range s.notifications {
		if s.notifications[i].MarkDismissed(now) {
			ids = append(ids, s.notifications[i].ID)
		}
	}

	if len(ids) > 0 {
		s.notifyChange(ChangeEvent{Type: ChangeTypeDismiss, Count: len(ids), IDs: ids})
	}
	return len(ids)
}

// Prune removes every notification that is dismissed and older than
// retention at now. Survivors keep their order. The removed entries are
// returned and, when an archive is configured, appended to it.
func (s *Store) Prune(now time.Time, retention time.Duration) []model.Notification {
	s.mu.Lock()

	var removed []model.Notification
	kept := s.notifications[:0]
	for _, n := range s.notifications {
		if n.Dismissed && now.Sub(n.CreatedAt) > retention {
			removed = append(removed, n)
			continue
		}
		kept = append(kept, n)
	}
	// Drop stale references in the tail of the backing array.
	clear(s.notifications[len(kept):])
	s.notifications = kept

	if len(removed) > 0 {
		ids := make([]uint32, len(removed))
		for i, n := range removed {
			ids[i] = n.ID
		}
		s.notifyChange(ChangeEvent{Type: ChangeTypePrune, Count: len(removed), IDs: ids})
	}
	archive := s.archive
	s.mu.Unlock()

	if archive != nil && len(removed) > 0 {
		if err := archive.AppendBatch(removed); err != nil {
			s.logger.Warn("failed to archive pruned notifications", "count", len(removed), "error", err)
		}
	}

	return removed
}

// Snapshot returns copies of the undismissed notifications in arrival order.
func (s *Store) Snapshot() []model.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.Dismissed {
			result = append(result, n)
		}
	}
	return result
}

// All returns copies of every held notification, dismissed ones included.
func (s *Store) All() []model.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.Notification, len(s.notifications))
	copy(result, s.notifications)
	return result
}

// Count returns the number of held notifications, dismissed ones included.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notifications)
}

// Pending returns the number of undismissed notifications.
func (s *Store) Pending() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.notifications {
		if !n.Dismissed {
			count++
		}
	}
	return count
}

// Subscribe returns a channel that receives change events.
func (s *Store) Subscribe() <-chan ChangeEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan ChangeEvent, 10)
	if s.closed {
		close(ch)
		return ch
	}
	s.subscribers = append(s.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscription.
func (s *Store) Unsubscribe(ch <-chan ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.subscribers {
		if sub == ch {
			s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
			close(sub)
			return
		}
	}
}

// Close closes all subscriber channels and the archive. Further adds fail.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	for _, ch := range s.subscribers {
		close(ch)
	}
	s.subscribers = nil

	if s.archive != nil {
		return s.archive.Close()
	}
	return nil
}

// indexOf returns the slice index of id or -1. IDs are assigned in
// increasing order, so the slice is sorted by ID. Caller holds the lock.
func (s *Store) indexOf(id uint32) int {
	idx, found := slices.BinarySearchFunc(s.notifications, id, func(n model.Notification, id uint32) int {
		return cmp.Compare(n.ID, id)
	})
	if !found {
		return -1
	}
	return idx
}

// notifyChange sends a change event to all subscribers (non-blocking).
// Caller holds the lock.
func (s *Store) notifyChange(event ChangeEvent) {
	for _, ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// Channel full, skip
		}
	}
}

// Errors
var (
	ErrStoreClosed = storeError("store is closed")
)

type storeError string

func (e storeError) Error() string {
	return string(e)
}
