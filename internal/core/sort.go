package core

import (
	"slices"
	"strings"

	"github.com/jmylchreest/lmk/internal/model"
)

// SortField represents a field to sort by.
type SortField string

const (
	SortByTime    SortField = "time"
	SortByID      SortField = "id"
	SortByUrgency SortField = "urgency"
	SortByTitle   SortField = "title"
)

// SortOrder represents ascending or descending order.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortOptions specifies sorting criteria.
type SortOptions struct {
	Field SortField
	Order SortOrder
}

// DefaultSortOptions returns default sort options (newest first).
func DefaultSortOptions() SortOptions {
	return SortOptions{
		Field: SortByTime,
		Order: SortDesc,
	}
}

// Sort sorts notifications in place. Ties keep their creation order.
func Sort(notifications []model.Notification, opts SortOptions) {
	slices.SortStableFunc(notifications, func(a, b model.Notification) int {
		var c int
		switch opts.Field {
		case SortByID:
			c = cmpUint32(a.ID, b.ID)
		case SortByUrgency:
			c = UrgencyRank(a.Urgency) - UrgencyRank(b.Urgency)
		case SortByTitle:
			c = strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		default:
			c = a.CreatedAt.Compare(b.CreatedAt)
		}

		if opts.Order == SortDesc {
			return -c
		}
		return c
	})
}

func cmpUint32(a, b uint32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// ParseSortField parses a sort field string. Unknown values sort by time.
func ParseSortField(s string) SortField {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "id", "i":
		return SortByID
	case "urgency", "u":
		return SortByUrgency
	case "title", "summary":
		return SortByTitle
	default:
		return SortByTime
	}
}

// ParseSortOrder parses a sort order string. Unknown values are descending.
func ParseSortOrder(s string) SortOrder {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending", "a":
		return SortAsc
	default:
		return SortDesc
	}
}
