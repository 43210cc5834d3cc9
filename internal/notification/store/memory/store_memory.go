package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"machsafe/internal/notification/models"
	"machsafe/pkg/platform/sentinel"
	"machsafe/pkg/requestcontext"
)

type key struct {
	tenantID uuid.UUID
	userID   uuid.UUID
}

// Store is an in-memory notification store used by tests and local runs.
type Store struct {
	mu    sync.RWMutex
	inbox map[key][]models.Notification
}

func New() *Store {
	return &Store{inbox: make(map[key][]models.Notification)}
}

func (s *Store) Insert(_ context.Context, n models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key{tenantID: n.TenantID, userID: n.UserID}
	s.inbox[k] = append(s.inbox[k], n)
	return nil
}

func (s *Store) List(_ context.Context, tenantID, userID uuid.UUID, limit int) ([]models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := s.sorted(tenantID, userID)
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (s *Store) ListUnread(_ context.Context, tenantID, userID uuid.UUID) ([]models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var unread []models.Notification
	for _, n := range s.sorted(tenantID, userID) {
		if !n.IsRead {
			unread = append(unread, n)
		}
	}
	return unread, nil
}

func (s *Store) CountUnread(_ context.Context, tenantID, userID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, n := range s.inbox[key{tenantID: tenantID, userID: userID}] {
		if !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *Store) Get(_ context.Context, tenantID, userID, id uuid.UUID) (models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, n := range s.inbox[key{tenantID: tenantID, userID: userID}] {
		if n.ID == id {
			return n, nil
		}
	}
	return models.Notification{}, sentinel.ErrNotFound
}

func (s *Store) MarkRead(ctx context.Context, tenantID, userID, id uuid.UUID) (models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key{tenantID: tenantID, userID: userID}
	for i, n := range s.inbox[k] {
		if n.ID != id {
			continue
		}
		if !n.IsRead {
			now := requestcontext.Now(ctx)
			n.IsRead = true
			n.ReadAt = &now
			s.inbox[k][i] = n
		}
		return s.inbox[k][i], nil
	}
	return models.Notification{}, sentinel.ErrNotFound
}

func (s *Store) MarkAllRead(ctx context.Context, tenantID, userID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key{tenantID: tenantID, userID: userID}
	now := requestcontext.Now(ctx)
	marked := 0
	for i, n := range s.inbox[k] {
		if n.IsRead {
			continue
		}
		n.IsRead = true
		n.ReadAt = &now
		s.inbox[k][i] = n
		marked++
	}
	return marked, nil
}

func (s *Store) Delete(_ context.Context, tenantID, userID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key{tenantID: tenantID, userID: userID}
	for i, n := range s.inbox[k] {
		if n.ID == id {
			s.inbox[k] = append(s.inbox[k][:i], s.inbox[k][i+1:]...)
			return nil
		}
	}
	return sentinel.ErrNotFound
}

func (s *Store) DeleteAllRead(_ context.Context, tenantID, userID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key{tenantID: tenantID, userID: userID}
	kept := s.inbox[k][:0]
	deleted := 0
	for _, n := range s.inbox[k] {
		if n.IsRead {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	s.inbox[k] = kept
	return deleted, nil
}

func (s *Store) Stats(_ context.Context, tenantID, userID uuid.UUID) (models.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := models.Stats{ByPriority: make(map[models.Priority]int)}
	for _, n := range s.inbox[key{tenantID: tenantID, userID: userID}] {
		stats.Total++
		if !n.IsRead {
			stats.Unread++
			stats.ByPriority[n.Priority]++
		}
	}
	return stats, nil
}

func (s *Store) sorted(tenantID, userID uuid.UUID) []models.Notification {
	rows := s.inbox[key{tenantID: tenantID, userID: userID}]
	out := make([]models.Notification, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
