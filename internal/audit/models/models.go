package models

import (
	"time"

	"github.com/google/uuid"
)

// Action classifies what a user did. The set is closed; handlers and services
// pick from these constants rather than passing free text.
type Action string

const (
	ActionCreate       Action = "CREATE"
	ActionUpdate       Action = "UPDATE"
	ActionDelete       Action = "DELETE"
	ActionStatusChange Action = "STATUS_CHANGE"
	ActionExport       Action = "EXPORT"
	ActionSign         Action = "SIGN"
	ActionLogin        Action = "LOGIN"
	ActionLogout       Action = "LOGOUT"
	ActionView         Action = "VIEW"
	ActionDownload     Action = "DOWNLOAD"
	ActionUpload       Action = "UPLOAD"
)

var actions = map[Action]struct{}{
	ActionCreate: {}, ActionUpdate: {}, ActionDelete: {}, ActionStatusChange: {},
	ActionExport: {}, ActionSign: {}, ActionLogin: {}, ActionLogout: {},
	ActionView: {}, ActionDownload: {}, ActionUpload: {},
}

// ParseAction validates a caller-supplied action string against the closed set.
func ParseAction(s string) (Action, bool) {
	a := Action(s)
	_, ok := actions[a]
	return a, ok
}

// Event is one immutable audit record. Once appended it is never updated or
// deleted by application flow; no mutation operation exists on the store.
// Actor fields are stamped by the recorder from the identity port at write
// time, never taken from caller input.
type Event struct {
	ID             uuid.UUID      `json:"id"`
	TenantID       uuid.UUID      `json:"tenantId"`
	ActorUserID    *uuid.UUID     `json:"actorUserId,omitempty"`
	ActorEmail     string         `json:"actorEmail,omitempty"`
	Action         Action         `json:"action"`
	EntityType     string         `json:"entityType"`
	EntityID       string         `json:"entityId,omitempty"`
	EntityName     string         `json:"entityName,omitempty"`
	Before         map[string]any `json:"beforeSnapshot,omitempty"`
	After          map[string]any `json:"afterSnapshot,omitempty"`
	ChangesSummary string         `json:"changesSummary,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// Filter narrows an audit listing. Zero values mean "no constraint"; the
// populated fields combine with AND, except SearchTerm which matches
// case-insensitively against entity name OR actor email OR changes summary.
type Filter struct {
	EntityType  string
	Action      Action
	ActorUserID uuid.UUID
	StartDate   *time.Time
	EndDate     *time.Time
	SearchTerm  string
	Limit       int
	Offset      int
}

// Stats summarizes activity over cumulative, overlapping calendar windows:
// every today event is also a week and a month event.
type Stats struct {
	TotalToday   int            `json:"totalToday"`
	TotalWeek    int            `json:"totalWeek"`
	TotalMonth   int            `json:"totalMonth"`
	ByAction     map[Action]int `json:"byAction"`
	ByEntityType map[string]int `json:"byEntityType"`
}
