package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// SessionRowID is the primary key of the single OperatingSession row.
const SessionRowID = 1

// OperatingSession is the singleton session record. Version guards every
// write with a compare-and-swap so concurrent lifecycle operations cannot
// silently clobber each other.
type OperatingSession struct {
	ID                   uint      `gorm:"primaryKey" json:"-"`
	CurrentSessionNumber int       `gorm:"not null" json:"currentSessionNumber"`
	SessionDate          time.Time `json:"sessionDate"`
	Description          string    `gorm:"type:text" json:"description"`
	PreviousSnapshot     *string   `gorm:"type:json" json:"-"`
	Version              int       `gorm:"default:1" json:"-"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// SessionSnapshot is the deep copy of mutable state taken immediately before
// a session advance. At most one generation is retained.
type SessionSnapshot struct {
	SessionNumber int        `json:"sessionNumber"`
	Cars          []Car      `json:"cars"`
	Trains        []Train    `json:"trains"`
	CarOrders     []CarOrder `json:"carOrders"`
}

// Snapshot parses the stored previous-session snapshot, or returns nil if
// none is retained.
func (s *OperatingSession) Snapshot() (*SessionSnapshot, error) {
	if s.PreviousSnapshot == nil || *s.PreviousSnapshot == "" {
		return nil, nil
	}
	var snap SessionSnapshot
	if err := json.Unmarshal([]byte(*s.PreviousSnapshot), &snap); err != nil {
		return nil, fmt.Errorf("models: parse session snapshot: %w", err)
	}
	return &snap, nil
}

// Marshal renders the snapshot as a JSON column value.
func (s *SessionSnapshot) Marshal() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("models: marshal session snapshot: %w", err)
	}
	return string(data), nil
}

// Valid reports whether the snapshot is structurally usable for a rollback.
func (s *SessionSnapshot) Valid() bool {
	return s != nil && s.SessionNumber >= 1
}
