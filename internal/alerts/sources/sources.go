// Package sources holds the four alert source adapters. Each adapter is a
// pure read: it queries its slice of store state and derives a normalized
// alert list, with severity and days-until computed from the rows alone.
package sources

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"machsafe/internal/alerts/models"
)

const (
	// expiryWindow bounds how far ahead report and training expiry is surfaced.
	expiryWindow = 90 * 24 * time.Hour
	// maxPerSource caps each adapter's contribution to the feed.
	maxPerSource = 10
	// maxTextLen bounds free-text fields copied into titles and descriptions.
	maxTextLen = 45
	// namePlaceholder substitutes missing related-entity names.
	namePlaceholder = "N/A"
)

// Source computes the alert list for one domain area.
type Source interface {
	Name() string
	Fetch(ctx context.Context, tenantID uuid.UUID, now time.Time) ([]models.Alert, error)
}

// truncate bounds free text and marks the cut with an ellipsis.
func truncate(s string, max int) string {
	if s == "" {
		return namePlaceholder
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

// daysUntil returns the whole days from now until due, rounding partial days
// up so "expires tomorrow morning" still reads as one day out.
func daysUntil(now, due time.Time) int {
	return int(math.Ceil(due.Sub(now).Hours() / 24))
}

// expirySeverity applies the shared report/training thresholds.
func expirySeverity(days int) models.Severity {
	switch {
	case days <= 30:
		return models.SeverityCritical
	case days <= 60:
		return models.SeverityHigh
	default:
		return models.SeverityMedium
	}
}
