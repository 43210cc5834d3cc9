package models

import (
	"time"

	"github.com/google/uuid"
)

// Priority orders notifications for display; it does not affect delivery.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// Notification is an in-app message addressed to a single user within a tenant.
type Notification struct {
	ID         uuid.UUID  `json:"id"`
	TenantID   uuid.UUID  `json:"-"`
	UserID     uuid.UUID  `json:"-"`
	Type       string     `json:"type"`
	Title      string     `json:"title"`
	Message    string     `json:"message"`
	Priority   Priority   `json:"priority"`
	EntityType string     `json:"entityType,omitempty"`
	EntityID   string     `json:"entityId,omitempty"`
	LinkURL    string     `json:"linkUrl,omitempty"`
	IsRead     bool       `json:"isRead"`
	ReadAt     *time.Time `json:"readAt,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Stats summarizes a user's inbox. ByPriority counts unread only.
type Stats struct {
	Total      int              `json:"total"`
	Unread     int              `json:"unread"`
	ByPriority map[Priority]int `json:"byPriority"`
}
