package models

import (
	"time"

	"github.com/volunteer-bridge/backend/internal/apperr"
)

// ValidateWindow checks that both ends are set and start precedes end.
func ValidateWindow(startField string, start time.Time, endField string, end time.Time) error {
	if start.IsZero() {
		return apperr.Validation("%s is required", startField)
	}
	if end.IsZero() {
		return apperr.Validation("%s is required", endField)
	}
	if !start.Before(end) {
		return apperr.Validation("%s must be after %s", endField, startField)
	}
	return nil
}

// NormalizeTags trims empties and duplicates while preserving order. Case is kept.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
