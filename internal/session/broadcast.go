// internal/session/broadcast.go
//
// In-process pub/sub for session changes.
//
// Context
// -------
// Every Store write publishes an Event here so observers outside the write
// path (audit logging, metrics) see logins, refreshes, and logouts without
// reading cookies themselves.  Delivery is best-effort: a slow subscriber
// drops events rather than blocking a login response.

package session

import "sync"

// Op labels what happened to a session.
type Op int

const (
	OpSave Op = iota
	OpClear
)

func (o Op) String() string {
	if o == OpClear {
		return "clear"
	}
	return "save"
}

// Event describes one Store write.
type Event struct {
	Kind   Kind
	Op     Op
	Record Record // zero for OpClear
}

// Broadcaster fans session events out to subscribers.  The zero value is
// unusable; a nil *Broadcaster is a valid no-op sink.
type Broadcaster struct {
	mu   sync.RWMutex
	subs []chan Event
}

// NewBroadcaster returns an empty Broadcaster.
func NewBroadcaster() *Broadcaster { return &Broadcaster{} }

// Subscribe registers a buffered channel that receives future events.
func (b *Broadcaster) Subscribe() <-chan Event {
	ch := make(chan Event, 16)
	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()
	return ch
}

// publish delivers ev to every subscriber, dropping on full buffers.
func (b *Broadcaster) publish(ev Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default: // subscriber lagging; drop rather than block the write path
		}
	}
}
