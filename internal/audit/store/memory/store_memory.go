package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"machsafe/internal/audit/models"
)

// InMemoryStore keeps audit events per tenant. It applies the same filter
// semantics as the postgres store so service tests exercise real behavior.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[uuid.UUID][]models.Event
}

func New() *InMemoryStore {
	return &InMemoryStore{events: make(map[uuid.UUID][]models.Event)}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[uuid.UUID][]models.Event)
}

func (s *InMemoryStore) Append(_ context.Context, event models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.TenantID] = append(s.events[event.TenantID], event)
	return nil
}

func (s *InMemoryStore) List(_ context.Context, tenantID uuid.UUID, filter models.Filter) ([]models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Event
	for _, event := range s.events[tenantID] {
		if matches(event, filter) {
			out = append(out, event)
		}
	}
	sortNewestFirst(out)

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := filter.Offset
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemoryStore) ListByEntity(_ context.Context, tenantID uuid.UUID, entityType, entityID string) ([]models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Event
	for _, event := range s.events[tenantID] {
		if event.EntityType == entityType && event.EntityID == entityID {
			out = append(out, event)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *InMemoryStore) ListByActor(_ context.Context, tenantID uuid.UUID, actorUserID uuid.UUID, limit int) ([]models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Event
	for _, event := range s.events[tenantID] {
		if event.ActorUserID != nil && *event.ActorUserID == actorUserID {
			out = append(out, event)
		}
	}
	sortNewestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemoryStore) ListAll(_ context.Context, tenantID uuid.UUID) ([]models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := append([]models.Event{}, s.events[tenantID]...)
	sortNewestFirst(out)
	return out, nil
}

func sortNewestFirst(events []models.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})
}

func matches(event models.Event, filter models.Filter) bool {
	if filter.EntityType != "" && event.EntityType != filter.EntityType {
		return false
	}
	if filter.Action != "" && event.Action != filter.Action {
		return false
	}
	if filter.ActorUserID != (uuid.UUID{}) {
		if event.ActorUserID == nil || *event.ActorUserID != filter.ActorUserID {
			return false
		}
	}
	if filter.StartDate != nil && event.CreatedAt.Before(*filter.StartDate) {
		return false
	}
	if filter.EndDate != nil && event.CreatedAt.After(*filter.EndDate) {
		return false
	}
	if filter.SearchTerm != "" {
		term := strings.ToLower(filter.SearchTerm)
		if !strings.Contains(strings.ToLower(event.EntityName), term) &&
			!strings.Contains(strings.ToLower(event.ActorEmail), term) &&
			!strings.Contains(strings.ToLower(event.ChangesSummary), term) {
			return false
		}
	}
	return true
}
