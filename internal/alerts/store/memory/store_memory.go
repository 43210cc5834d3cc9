// Package memory is a fixture-backed implementation of the alert source
// ports. It applies the same filter and ordering semantics as the postgres
// store so adapter and aggregator tests run against realistic reads.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"machsafe/internal/alerts/ports"
)

// Report statuses mirrored from the reporting module. Only signed reports
// feed the expiry alerts.
const (
	ReportStatusSigned = "SIGNED"
	ActionStatusOpen   = "OPEN"
	ActionStatusInProg = "IN_PROGRESS"
)

// ReportEntry pairs a report row with its workflow status.
type ReportEntry struct {
	ports.ReportRow
	Status string
}

// ActionEntry pairs an action row with its workflow status.
type ActionEntry struct {
	ports.ActionRow
	Status string
}

type Store struct {
	mu        sync.RWMutex
	reports   map[uuid.UUID][]ReportEntry
	actions   map[uuid.UUID][]ActionEntry
	trainings map[uuid.UUID][]ports.TrainingRow
	risks     map[uuid.UUID][]ports.RiskRow
}

func New() *Store {
	return &Store{
		reports:   make(map[uuid.UUID][]ReportEntry),
		actions:   make(map[uuid.UUID][]ActionEntry),
		trainings: make(map[uuid.UUID][]ports.TrainingRow),
		risks:     make(map[uuid.UUID][]ports.RiskRow),
	}
}

func (s *Store) SeedReport(tenantID uuid.UUID, entry ReportEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[tenantID] = append(s.reports[tenantID], entry)
}

func (s *Store) SeedAction(tenantID uuid.UUID, entry ActionEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions[tenantID] = append(s.actions[tenantID], entry)
}

func (s *Store) SeedTraining(tenantID uuid.UUID, row ports.TrainingRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trainings[tenantID] = append(s.trainings[tenantID], row)
}

func (s *Store) SeedRisk(tenantID uuid.UUID, row ports.RiskRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.risks[tenantID] = append(s.risks[tenantID], row)
}

func (s *Store) ListExpiringReports(_ context.Context, tenantID uuid.UUID, now time.Time, window time.Duration, limit int) ([]ports.ReportRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := now.Add(window)
	var rows []ports.ReportRow
	for _, entry := range s.reports[tenantID] {
		if entry.Status != ReportStatusSigned {
			continue
		}
		if entry.ValidUntil.Before(now) || entry.ValidUntil.After(cutoff) {
			continue
		}
		rows = append(rows, entry.ReportRow)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ValidUntil.Before(rows[j].ValidUntil) })
	return clip(rows, limit), nil
}

func (s *Store) ListPendingActions(_ context.Context, tenantID uuid.UUID, limit int) ([]ports.ActionRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []ports.ActionRow
	for _, entry := range s.actions[tenantID] {
		if entry.Status != ActionStatusOpen && entry.Status != ActionStatusInProg {
			continue
		}
		rows = append(rows, entry.ActionRow)
	}
	// Soonest due first, undated actions last.
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i].DueDate, rows[j].DueDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
	return clip(rows, limit), nil
}

func (s *Store) ListExpiringTrainings(_ context.Context, tenantID uuid.UUID, now time.Time, window time.Duration, limit int) ([]ports.TrainingRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := now.Add(window)
	var rows []ports.TrainingRow
	for _, row := range s.trainings[tenantID] {
		if row.ValidUntil.Before(now) || row.ValidUntil.After(cutoff) {
			continue
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ValidUntil.Before(rows[j].ValidUntil) })
	return clip(rows, limit), nil
}

func (s *Store) ListCriticalRisks(_ context.Context, tenantID uuid.UUID, limit int) ([]ports.RiskRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []ports.RiskRow
	for _, row := range s.risks[tenantID] {
		if row.RiskLevel != "INACEITAVEL" && row.RiskLevel != "CRITICO" {
			continue
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].RiskNumber > rows[j].RiskNumber })
	return clip(rows, limit), nil
}

func clip[T any](rows []T, limit int) []T {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}
