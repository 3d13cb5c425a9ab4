package dbus

import (
	"context"
	"fmt"

	"github.com/jmylchreest/lmk/internal/store"
)

// emitNotificationClosed emits the NotificationClosed signal.
func (s *NotificationServer) emitNotificationClosed(id uint32, reason CloseReason) error {
	s.mu.RLock()
	conn := s.conn
	s.mu.RUnlock()
	if conn == nil {
		return fmt.Errorf("not connected to D-Bus")
	}

	err := conn.Emit(DBusPath, DBusInterface+".NotificationClosed", id, uint32(reason))
	if err != nil {
		return fmt.Errorf("failed to emit NotificationClosed signal: %w", err)
	}

	s.logger.Debug("emitted NotificationClosed signal", "id", id, "reason", reason.String())
	return nil
}

// CloseWithReason forgets an active notification and emits the signal.
// IDs that were never handed out over D-Bus, or were already closed, are
// ignored.
func (s *NotificationServer) CloseWithReason(id uint32, reason CloseReason) error {
	if !s.take(id) {
		return nil
	}
	return s.emit(id, reason)
}

// WatchStore emits NotificationClosed for D-Bus notifications dismissed or
// pruned in the store. It returns when ctx ends or events is closed.
func (s *NotificationServer) WatchStore(ctx context.Context, events <-chan store.ChangeEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			reason := CloseReasonDismissed
			switch event.Type {
			case store.ChangeTypeDismiss:
			case store.ChangeTypePrune:
				reason = CloseReasonUndefined
			default:
				continue
			}
			for _, id := range event.IDs {
				if err := s.CloseWithReason(id, reason); err != nil {
					s.logger.Warn("failed to emit NotificationClosed signal", "id", id, "error", err)
				}
			}
		}
	}
}
