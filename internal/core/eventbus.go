package core

import "sync"

// busCapacity is the minimum bounded capacity per subscriber slot required
// by SPEC_FULL.md §5 ("at least 1,024 slots").
const busCapacity = 1024

// EventBus is a multi-producer broadcast of Events. Each subscriber gets
// its own buffered channel; when a slow subscriber's channel is full the
// event is dropped for it and the subscription is marked lagged (reported
// by Subscription.Drain), rather than blocking emitters — emitters must
// never wait on a reader.
type EventBus struct {
	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

// Subscription is a single receiver's view of the bus.
type Subscription struct {
	bus    *EventBus
	ch     chan Event
	mu     sync.Mutex
	lagged bool
}

// NewEventBus creates an empty bus ready to accept subscribers.
func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[*Subscription]struct{})}
}

// Subscribe registers a new receiver. Callers must call Unsubscribe when
// done (typically on connection close) to release the slot.
func (b *EventBus) Subscribe() *Subscription {
	sub := &Subscription{
		bus: b,
		ch:  make(chan Event, busCapacity),
	}
	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()
	return sub
}

// Unsubscribe removes a receiver from the bus. Safe to call more than once.
func (b *EventBus) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	delete(b.subs, sub)
	b.mu.Unlock()
}

// Emit broadcasts an event to every current subscriber. Non-blocking: a
// subscriber whose buffer is full is marked lagged instead of stalling the
// emitter (SPEC_FULL.md §5, "Lagged receivers lose messages").
func (b *EventBus) Emit(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subs {
		select {
		case sub.ch <- e:
		default:
			sub.mu.Lock()
			sub.lagged = true
			sub.mu.Unlock()
		}
	}
}

// Drain returns every event received since the last Drain call, plus
// whether the subscriber lagged (missed events) in that window. When
// lagged is true, the caller must treat the miss as "something in every
// subsystem may have changed" per the safe-over-report rule.
func (s *Subscription) Drain() (events []Event, lagged bool) {
	for {
		select {
		case e := <-s.ch:
			events = append(events, e)
		default:
			s.mu.Lock()
			lagged = s.lagged
			s.lagged = false
			s.mu.Unlock()
			return events, lagged
		}
	}
}

// Wait blocks until an event arrives or cancel fires, returning the event
// (ok=true) or zero value with ok=false on cancellation.
func (s *Subscription) Wait(cancel <-chan struct{}) (Event, bool) {
	select {
	case e := <-s.ch:
		return e, true
	case <-cancel:
		return Event{}, false
	}
}

// Close releases the subscription from its bus.
func (s *Subscription) Close() {
	s.bus.Unsubscribe(s)
}
