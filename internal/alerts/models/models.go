package models

import "time"

// Type discriminates which source produced an alert.
type Type string

const (
	TypeReportExpiring   Type = "REPORT_EXPIRING"
	TypeActionDue        Type = "ACTION_DUE"
	TypeTrainingExpiring Type = "TRAINING_EXPIRING"
	TypeRiskCritical     Type = "RISK_CRITICAL"
)

// Severity is the ranked urgency level used to order the feed.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// Rank maps severities to their sort position, most urgent first.
// Unknown severities sort last.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	}
	return 4
}

// NoDueDate is the DaysUntil sentinel for undated alerts. It exists purely
// for sort placement: undated alerts fall behind every dated alert of the
// same severity but ahead of any lower severity.
const NoDueDate = 999

// Alert is a transient, computed view over one source record. It is derived
// deterministically at read time and never persisted; two reads against
// unchanged source data yield the same alert.
type Alert struct {
	ID          string     `json:"id"`
	Type        Type       `json:"type"`
	Severity    Severity   `json:"severity"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	EntityID    string     `json:"entityId"`
	EntityType  string     `json:"entityType"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	DaysUntil   int        `json:"daysUntil"`
}

// Feed is the aggregated, globally ranked alert list. Failed names the
// sources whose queries failed; their alerts are simply absent rather than
// aborting the whole feed.
type Feed struct {
	Alerts    []Alert   `json:"alerts"`
	Failed    []string  `json:"failedSources,omitempty"`
	FetchedAt time.Time `json:"fetchedAt"`
}
