package services

import (
	"context"
	"strings"
	"time"

	"wetmill-backend/internal/apperr"
	"wetmill-backend/internal/timeutil"
)

func invalidateReports(ctx context.Context, c ReportCache) {
	if c != nil {
		c.InvalidateReports(ctx)
	}
}

// parseDate reads a client date; an empty value means today.
func parseDate(field, value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return timeutil.Now(), nil
	}
	t, err := timeutil.ParseDate(value)
	if err != nil {
		return time.Time{}, apperr.Validation("invalid %s: %q", field, value)
	}
	return t, nil
}

func requireDate(field, value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, apperr.Validation("%s is required", field)
	}
	return parseDate(field, value)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
