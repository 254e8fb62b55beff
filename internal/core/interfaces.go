package core

import (
	"time"

	"github.com/sorsu/tiktalk/internal/domain"
)

// SessionID is the opaque per-connection identity. It is never reused
// and is the only authorization key in the engine.
type SessionID string

// Event is one outbound envelope. The transport marshals it as
// {"type": ..., "data": ...}.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// EventConn abstracts the system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type EventConn interface {
	// TrySend queues an event without blocking. A full or closed
	// connection drops the event; delivery is fire-and-forget.
	TrySend(Event) error
	Close()
}

// Session is one live connection after a successful join. Fields are
// immutable after registration, so snapshots may share pointers.
type Session struct {
	SID      SessionID
	Nickname string
	Campus   domain.Campus
	IP       string
	JoinedAt time.Time
	Conn     EventConn
}
