// Package core provides filtering, sorting, and lookup logic.
package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jmylchreest/lmk/internal/model"
)

// FilterOp represents a comparison operator.
type FilterOp string

const (
	FilterOpEqual     FilterOp = "="  // Exact match
	FilterOpNotEqual  FilterOp = "!=" // Not equal
	FilterOpContains  FilterOp = "~"  // Contains substring
	FilterOpRegex     FilterOp = "~=" // Regex match
	FilterOpGreater   FilterOp = ">"  // Greater than
	FilterOpLess      FilterOp = "<"  // Less than
	FilterOpGreaterEq FilterOp = ">=" // Greater than or equal
	FilterOpLessEq    FilterOp = "<=" // Less than or equal
)

// FilterCondition represents a single filter condition.
type FilterCondition struct {
	Field    string   // title, body, icon, urgency, dismissed, created
	Operator FilterOp // Comparison operator
	Value    string   // Value to compare against

	regex      *regexp.Regexp
	urgencyVal int
	createdOp  time.Time
	boolVal    bool
}

// FilterExpr represents a compound filter expression.
// Multiple conditions are ANDed together.
type FilterExpr struct {
	Conditions []FilterCondition
}

// FilterOptions specifies criteria for filtering notifications.
type FilterOptions struct {
	Since            time.Duration // Only notifications newer than now-since (0=all)
	Urgency          string        // Exact urgency match (empty=any)
	IncludeDismissed bool
	Limit            int // Maximum results (0=unlimited)
}

// Filter filters notifications based on the provided options.
func Filter(notifications []model.Notification, opts FilterOptions, now time.Time) []model.Notification {
	result := make([]model.Notification, 0, len(notifications))
	cutoff := now.Add(-opts.Since)

	for _, n := range notifications {
		if opts.Since > 0 && n.CreatedAt.Before(cutoff) {
			continue
		}
		if opts.Urgency != "" && n.Urgency != opts.Urgency {
			continue
		}
		if n.Dismissed && !opts.IncludeDismissed {
			continue
		}
		result = append(result, n)
	}

	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}

	return result
}

// ParseDuration parses a duration string with extended formats.
// Supports: 48h, 7d, 1w, 0 (all time)
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	if s == "0" || s == "" {
		return 0, nil
	}

	if daysStr, found := strings.CutSuffix(s, "d"); found {
		days, err := strconv.Atoi(daysStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}

	if weeksStr, found := strings.CutSuffix(s, "w"); found {
		weeks, err := strconv.Atoi(weeksStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		return time.Duration(weeks) * 7 * 24 * time.Hour, nil
	}

	return time.ParseDuration(s)
}

// ParseUrgency parses an urgency name or its freedesktop number.
// Accepts: low, normal, critical, 0, 1, 2
func ParseUrgency(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "0":
		return model.UrgencyLow, nil
	case "normal", "1":
		return model.UrgencyNormal, nil
	case "critical", "2":
		return model.UrgencyCritical, nil
	default:
		return "", fmt.Errorf("invalid urgency: %s (use low, normal, or critical)", s)
	}
}

// UrgencyRank orders urgencies low < normal < critical. Unknown urgencies
// rank as normal, matching how they are drawn.
func UrgencyRank(urgency string) int {
	switch urgency {
	case model.UrgencyLow:
		return 0
	case model.UrgencyCritical:
		return 2
	default:
		return 1
	}
}

// ParseFilter parses a filter expression string into a FilterExpr.
// Format: "field=value,field2~value2,field3>value3"
//
// Supported fields: title, body, icon, urgency, dismissed, created
// Supported operators: = (equal), != (not equal), ~ (contains), ~= (regex), >, <, >=, <=
//
// Examples:
//   - "title~backup" - title contains "backup"
//   - "urgency>=normal" - normal or critical
//   - "dismissed=false,created>1h" - pending notifications from the last hour
//   - "body~=(?i)disk" - body matches regex
func ParseFilter(expr string, now time.Time) (*FilterExpr, error) {
	filter := &FilterExpr{
		Conditions: make([]FilterCondition, 0),
	}

	for part := range strings.SplitSeq(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		cond, err := parseCondition(part, now)
		if err != nil {
			return nil, err
		}
		filter.Conditions = append(filter.Conditions, cond)
	}

	return filter, nil
}

// parseCondition parses a single condition like "title=backup"
func parseCondition(s string, now time.Time) (FilterCondition, error) {
	// Longest operators first so "!=" is not read as "="
	operators := []FilterOp{
		FilterOpNotEqual,
		FilterOpGreaterEq,
		FilterOpLessEq,
		FilterOpRegex,
		FilterOpEqual,
		FilterOpContains,
		FilterOpGreater,
		FilterOpLess,
	}

	for _, op := range operators {
		idx := strings.Index(s, string(op))
		if idx > 0 {
			cond := FilterCondition{
				Field:    strings.ToLower(strings.TrimSpace(s[:idx])),
				Operator: op,
				Value:    strings.TrimSpace(s[idx+len(op):]),
			}
			if err := cond.init(now); err != nil {
				return FilterCondition{}, err
			}
			return cond, nil
		}
	}

	return FilterCondition{}, fmt.Errorf("invalid filter condition: %s (missing operator)", s)
}

// init pre-parses and validates the condition value.
func (c *FilterCondition) init(now time.Time) error {
	switch c.Field {
	case "title", "summary":
		c.Field = "title"
	case "body", "message":
		c.Field = "body"
	case "icon":
	case "urgency", "priority":
		c.Field = "urgency"
		u, err := ParseUrgency(c.Value)
		if err != nil {
			return err
		}
		c.urgencyVal = UrgencyRank(u)
	case "dismissed", "dismiss":
		c.Field = "dismissed"
		c.boolVal = parseBool(c.Value)
	case "created", "time", "age":
		c.Field = "created"
		dur, err := ParseDuration(c.Value)
		if err != nil {
			return fmt.Errorf("invalid created value: %w", err)
		}
		c.createdOp = now.Add(-dur)
	default:
		return fmt.Errorf("unknown filter field: %s", c.Field)
	}

	if c.Operator == FilterOpRegex {
		re, err := regexp.Compile(c.Value)
		if err != nil {
			return fmt.Errorf("invalid regex: %w", err)
		}
		c.regex = re
	}

	return nil
}

// parseBool parses various boolean representations.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1", "y", "t":
		return true
	default:
		return false
	}
}

// Match tests if a notification matches the filter expression.
// All conditions must match (AND logic).
func (f *FilterExpr) Match(n model.Notification) bool {
	for _, cond := range f.Conditions {
		if !cond.Match(n) {
			return false
		}
	}
	return true
}

// Match tests if a notification matches this single condition.
func (c *FilterCondition) Match(n model.Notification) bool {
	switch c.Field {
	case "title":
		return c.matchString(n.Title)
	case "body":
		return c.matchString(n.Body)
	case "icon":
		return c.matchString(n.Icon)
	case "urgency":
		return c.matchInt(UrgencyRank(n.Urgency), c.urgencyVal)
	case "dismissed":
		return c.matchBool(n.Dismissed)
	case "created":
		return c.matchTime(n.CreatedAt)
	default:
		return false
	}
}

func (c *FilterCondition) matchString(fieldValue string) bool {
	switch c.Operator {
	case FilterOpEqual:
		return fieldValue == c.Value
	case FilterOpNotEqual:
		return fieldValue != c.Value
	case FilterOpContains:
		return strings.Contains(strings.ToLower(fieldValue), strings.ToLower(c.Value))
	case FilterOpRegex:
		return c.regex != nil && c.regex.MatchString(fieldValue)
	default:
		return false
	}
}

func (c *FilterCondition) matchInt(fieldValue, condValue int) bool {
	switch c.Operator {
	case FilterOpEqual:
		return fieldValue == condValue
	case FilterOpNotEqual:
		return fieldValue != condValue
	case FilterOpGreater:
		return fieldValue > condValue
	case FilterOpLess:
		return fieldValue < condValue
	case FilterOpGreaterEq:
		return fieldValue >= condValue
	case FilterOpLessEq:
		return fieldValue <= condValue
	default:
		return false
	}
}

func (c *FilterCondition) matchBool(fieldValue bool) bool {
	switch c.Operator {
	case FilterOpEqual:
		return fieldValue == c.boolVal
	case FilterOpNotEqual:
		return fieldValue != c.boolVal
	default:
		return false
	}
}

// matchTime compares creation time against now minus the parsed duration,
// so "created>1h" means newer than an hour.
func (c *FilterCondition) matchTime(fieldValue time.Time) bool {
	switch c.Operator {
	case FilterOpGreater:
		return fieldValue.After(c.createdOp)
	case FilterOpLess:
		return fieldValue.Before(c.createdOp)
	case FilterOpGreaterEq:
		return !fieldValue.Before(c.createdOp)
	case FilterOpLessEq:
		return !fieldValue.After(c.createdOp)
	default:
		return false
	}
}

// FilterWithExpr filters notifications using a filter expression.
func FilterWithExpr(notifications []model.Notification, expr *FilterExpr) []model.Notification {
	if expr == nil || len(expr.Conditions) == 0 {
		return notifications
	}

	result := make([]model.Notification, 0, len(notifications))
	for _, n := range notifications {
		if expr.Match(n) {
			result = append(result, n)
		}
	}
	return result
}
