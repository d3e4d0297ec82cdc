// Package broker implements the client-to-client messaging system behind
// subscribe/unsubscribe/channels/sendmessage/readmessages, adapted from
// rmpd-protocol/src/commands/messaging.rs. Each channel holds a queue of
// pending messages; readmessages drains the messages addressed to the
// calling connection's subscriptions and leaves other clients' copies
// untouched, since every subscriber gets its own delivery queue.
package broker

import "sync"

// Message is a single delivered message.
type Message struct {
	Channel string
	Text    string
}

// Broker is the process-wide message broker. One Broker instance is shared
// by every connection.
type Broker struct {
	mu    sync.Mutex
	boxes map[string]map[*Mailbox][]string // channel -> mailbox -> pending texts
}

// Mailbox is a single connection's delivery slot. A connection creates one
// Mailbox per lifetime and uses it to Subscribe/Unsubscribe/Read.
type Mailbox struct {
	b       *Broker
	subs    map[string]bool
}

// New returns an empty broker.
func New() *Broker {
	return &Broker{boxes: make(map[string]map[*Mailbox][]string)}
}

// NewMailbox creates a fresh mailbox bound to this broker.
func (b *Broker) NewMailbox() *Mailbox {
	return &Mailbox{b: b, subs: make(map[string]bool)}
}

// Subscribe adds channel to the mailbox's subscription set and ensures the
// broker tracks this mailbox as a listener so Channels reports it even
// before any message has been sent.
func (m *Mailbox) Subscribe(channel string) {
	m.b.mu.Lock()
	defer m.b.mu.Unlock()
	m.subs[channel] = true
	if m.b.boxes[channel] == nil {
		m.b.boxes[channel] = make(map[*Mailbox][]string)
	}
	if _, ok := m.b.boxes[channel][m]; !ok {
		m.b.boxes[channel][m] = nil
	}
}

// Unsubscribe removes channel from the mailbox's subscription set and
// drops any undelivered messages waiting there for it. It reports whether
// the mailbox was actually subscribed to channel.
func (m *Mailbox) Unsubscribe(channel string) bool {
	m.b.mu.Lock()
	defer m.b.mu.Unlock()
	if _, ok := m.subs[channel]; !ok {
		return false
	}
	delete(m.subs, channel)
	if listeners, ok := m.b.boxes[channel]; ok {
		delete(listeners, m)
		if len(listeners) == 0 {
			delete(m.b.boxes, channel)
		}
	}
	return true
}

// Close removes the mailbox from every channel it was subscribed to,
// called when a connection disconnects.
func (m *Mailbox) Close() {
	m.b.mu.Lock()
	defer m.b.mu.Unlock()
	for channel := range m.subs {
		if listeners, ok := m.b.boxes[channel]; ok {
			delete(listeners, m)
			if len(listeners) == 0 {
				delete(m.b.boxes, channel)
			}
		}
	}
	m.subs = nil
}

// Subscriptions returns the channels this mailbox currently subscribes to.
func (m *Mailbox) Subscriptions() []string {
	m.b.mu.Lock()
	defer m.b.mu.Unlock()
	out := make([]string, 0, len(m.subs))
	for c := range m.subs {
		out = append(out, c)
	}
	return out
}

// Send broadcasts text to every mailbox currently subscribed to channel.
func (b *Broker) Send(channel, text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	listeners := b.boxes[channel]
	for mbox := range listeners {
		listeners[mbox] = append(listeners[mbox], text)
	}
}

// Read drains and returns every pending message for this mailbox across
// all of its subscribed channels.
func (m *Mailbox) Read() []Message {
	m.b.mu.Lock()
	defer m.b.mu.Unlock()
	var out []Message
	for channel := range m.subs {
		listeners := m.b.boxes[channel]
		pending := listeners[m]
		for _, text := range pending {
			out = append(out, Message{Channel: channel, Text: text})
		}
		listeners[m] = nil
	}
	return out
}

// Channels lists every channel with at least one subscriber.
func (b *Broker) Channels() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.boxes))
	for channel, listeners := range b.boxes {
		if len(listeners) > 0 {
			out = append(out, channel)
		}
	}
	return out
}
