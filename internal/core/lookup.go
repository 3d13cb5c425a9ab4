package core

import (
	"strconv"
	"strings"

	"github.com/jmylchreest/lmk/internal/model"
)

// LookupByID finds a notification by its store ID.
// Returns nil if not found.
func LookupByID(notifications []model.Notification, id uint32) *model.Notification {
	for i := range notifications {
		if notifications[i].ID == id {
			return &notifications[i]
		}
	}
	return nil
}

// LookupByRef finds a notification by its ULID reference. Case is ignored.
func LookupByRef(notifications []model.Notification, ref string) *model.Notification {
	for i := range notifications {
		if strings.EqualFold(notifications[i].Ref, ref) {
			return &notifications[i]
		}
	}
	return nil
}

// LookupByIndex finds a notification by its index (1-based for user-friendliness).
// Returns nil if index is out of bounds.
func LookupByIndex(notifications []model.Notification, index int) *model.Notification {
	idx := index - 1
	if idx < 0 || idx >= len(notifications) {
		return nil
	}
	return &notifications[idx]
}

// Search finds notifications whose title or body contains term.
// Case-insensitive substring match.
func Search(notifications []model.Notification, term string) []model.Notification {
	if term == "" {
		return notifications
	}

	term = strings.ToLower(term)
	var result []model.Notification

	for _, n := range notifications {
		if strings.Contains(strings.ToLower(n.Title), term) ||
			strings.Contains(strings.ToLower(n.Body), term) {
			result = append(result, n)
		}
	}

	return result
}

// ParseSelection extracts a notification ID from a bare number or a dmenu
// line such as "3 | 5m | Title: body".
func ParseSelection(selection string) (uint32, bool) {
	head, _, _ := strings.Cut(strings.TrimSpace(selection), "|")
	id, err := strconv.ParseUint(strings.TrimSpace(head), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint32(id), true
}
