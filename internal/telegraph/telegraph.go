// Package telegraph announces operating-session events to chat platforms
// (Slack, Discord). Delivery is one-way and best-effort: a down adapter never
// blocks a lifecycle operation.
package telegraph

import (
	"context"
	"log"
)

// Severity levels for announced events.
const (
	SeverityInfo    = "info"
	SeveritySuccess = "success"
	SeverityWarning = "warning"
)

// Event is a lifecycle announcement formatted for display in chat.
type Event struct {
	Title    string  // headline, e.g. "Train Local 123 completed"
	Body     string  // detail text
	Severity string  // info, success, warning
	Fields   []Field // key-value metadata pairs
}

// Field is a key-value pair displayed with an event.
type Field struct {
	Name  string
	Value string
}

// SeverityColor returns the sidebar color hint for a severity.
func SeverityColor(severity string) string {
	switch severity {
	case SeveritySuccess:
		return "#36a64f"
	case SeverityWarning:
		return "#daa038"
	default:
		return "#439fe0"
	}
}

// Announcer delivers events to one chat platform.
type Announcer interface {
	Announce(ctx context.Context, ev Event) error
	Close() error
}

// Multi fans an event out to several announcers.
type Multi []Announcer

// Announce delivers to every adapter, logging failures and continuing.
// It never returns an error.
func (m Multi) Announce(ctx context.Context, ev Event) error {
	for _, a := range m {
		if err := a.Announce(ctx, ev); err != nil {
			log.Printf("telegraph: announce %q: %v", ev.Title, err)
		}
	}
	return nil
}

// Close closes every adapter.
func (m Multi) Close() error {
	for _, a := range m {
		if err := a.Close(); err != nil {
			log.Printf("telegraph: close: %v", err)
		}
	}
	return nil
}
