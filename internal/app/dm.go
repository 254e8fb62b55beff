package app

import (
	"sync"

	"github.com/sorsu/tiktalk/internal/core"
)

// DMCounters tracks unread direct-message counts per connection. The
// server holds nothing else about a DM after delivery.
type DMCounters struct {
	mu     sync.Mutex
	unread map[core.SessionID]int
}

func NewDMCounters() *DMCounters {
	return &DMCounters{unread: make(map[core.SessionID]int)}
}

func (d *DMCounters) Increment(sid core.SessionID) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.unread[sid]++
	return d.unread[sid]
}

// Decrement floors at zero.
func (d *DMCounters) Decrement(sid core.SessionID) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.unread[sid] > 0 {
		d.unread[sid]--
	}
	return d.unread[sid]
}

func (d *DMCounters) Count(sid core.SessionID) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.unread[sid]
}

func (d *DMCounters) Forget(sid core.SessionID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.unread, sid)
}
