// Package render fans immutable content snapshots out to the rendering
// surface. Delivery is drop-stale: a subscriber that cannot keep up only
// ever sees the newest snapshot, matching the platform's update-rate
// ceiling.
package render

import (
	"sync"

	"github.com/steppet/steppet-engine/internal/model"
)

type Bus struct {
	mu   sync.Mutex
	subs map[int]chan model.Snapshot
	next int
	last *model.Snapshot
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan model.Snapshot)}
}

// Subscribe registers a receiver. The returned cancel func must be called
// when the receiver goes away.
func (b *Bus) Subscribe() (<-chan model.Snapshot, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan model.Snapshot, 1)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// Publish delivers a snapshot to every subscriber, displacing an unread
// older snapshot rather than blocking.
func (b *Bus) Publish(s model.Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.last = &s
	for _, ch := range b.subs {
		select {
		case ch <- s:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- s:
			default:
			}
		}
	}
}

// Last returns the most recently published snapshot, if any.
func (b *Bus) Last() (model.Snapshot, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.last == nil {
		return model.Snapshot{}, false
	}
	return *b.last, true
}
