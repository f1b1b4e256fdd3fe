package auth

import (
	"sync"
)

// Callback receives session changes. session is nil after sign-out.
type Callback func(event Event, session *Session)

// Subscription detaches a callback registered with OnAuthStateChange.
type Subscription struct {
	once   sync.Once
	detach func()
}

// Unsubscribe stops further deliveries. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(s.detach)
}

type listener struct {
	cb     Callback
	active bool
	// delivered is set once any event has been handed to cb.
	delivered bool
}

// broadcaster fans session changes out to the listeners of one Auth.
type broadcaster struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]*listener
}

func newBroadcaster() *broadcaster {
	return &broadcaster{listeners: make(map[int]*listener)}
}

func (b *broadcaster) subscribe(cb Callback) (*listener, *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	l := &listener{cb: cb, active: true}
	b.listeners[id] = l

	sub := &Subscription{detach: func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		l.active = false
		delete(b.listeners, id)
	}}
	return l, sub
}

// claimInitial reports whether the subscribe-time event may still be
// delivered to l. It is false once l is detached or a dispatch reached it,
// and true at most once.
func (b *broadcaster) claimInitial(l *listener) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !l.active || l.delivered {
		return false
	}
	l.delivered = true
	return true
}

func (b *broadcaster) snapshot() []Callback {
	b.mu.Lock()
	defer b.mu.Unlock()
	cbs := make([]Callback, 0, len(b.listeners))
	for _, l := range b.listeners {
		l.delivered = true
		cbs = append(cbs, l.cb)
	}
	return cbs
}

// dispatch delivers event to every current listener on the caller's
// goroutine. Delivery order is unspecified.
func (b *broadcaster) dispatch(event Event, session *Session) {
	for _, cb := range b.snapshot() {
		cb(event, session)
	}
}
