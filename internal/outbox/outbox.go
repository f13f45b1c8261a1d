// Package outbox implements the per-player notification queue that lets
// polling clients observe state changes exactly once and in order.
package outbox

import (
	"sync"
	"time"
)

// Message is one queued notification.
type Message struct {
	Seq     uint64    `json:"seq"`
	Kind    string    `json:"type"`
	Payload any       `json:"payload,omitempty"`
	At      time.Time `json:"at"`
}

// Outbox is an ordered, drain-on-read queue of messages for one player.
// Sequence numbers keep increasing across drains so a client can detect gaps.
type Outbox struct {
	mu      sync.Mutex
	pending []Message
	nextSeq uint64
}

// New returns an empty outbox.
func New() *Outbox {
	return &Outbox{}
}

// Push appends a message and returns its sequence number.
func (o *Outbox) Push(kind string, payload any, at time.Time) uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.nextSeq++
	o.pending = append(o.pending, Message{
		Seq:     o.nextSeq,
		Kind:    kind,
		Payload: payload,
		At:      at,
	})
	return o.nextSeq
}

// Drain atomically removes and returns every pending message in insertion
// order. Returned messages are never delivered again. The result is never nil.
func (o *Outbox) Drain() []Message {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := o.pending
	o.pending = nil
	if out == nil {
		out = []Message{}
	}
	return out
}

// Len reports the number of pending messages.
func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.pending)
}
