package moderation

import (
	"time"

	"github.com/sorsu/tiktalk/internal/storage"
)

// Action is one audit-log entry for an admin operation.
type Action struct {
	Admin     string    `json:"admin"`
	Action    string    `json:"action"`
	ReportID  string    `json:"reportId,omitempty"`
	TargetIP  string    `json:"targetIP,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Duration  string    `json:"duration,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ActionLog struct {
	store *storage.Store
}

func NewActionLog(store *storage.Store) *ActionLog {
	return &ActionLog{store: store}
}

func (l *ActionLog) Append(a Action) error {
	var actions []Action
	if err := l.store.Read(storage.CollectionActions, &actions); err != nil {
		return err
	}
	a.Timestamp = time.Now()
	actions = append(actions, a)
	return l.store.Write(storage.CollectionActions, actions)
}

// Recent returns up to limit entries, newest first.
func (l *ActionLog) Recent(limit int) ([]Action, error) {
	var actions []Action
	if err := l.store.Read(storage.CollectionActions, &actions); err != nil {
		return nil, err
	}
	out := make([]Action, 0, limit)
	for i := len(actions) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, actions[i])
	}
	return out, nil
}
