// Copyright (c) 2025 PlayerAuth
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Bus delivers events to subscribers in publish order from a single dispatcher
// goroutine. Publish never waits for subscribers.
type Bus struct {
	log zerolog.Logger

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []queued
	subs   []*Subscription
	seq    uint64
	closed bool
	done   chan struct{}
}

type queued struct {
	ev    Event
	flush chan struct{}
}

// Subscription is a registered handler.
type Subscription struct {
	ID uuid.UUID

	bus     *Bus
	handler Handler
	// deliver is held for the duration of a handler call.
	deliver sync.Mutex
	active  atomic.Bool
}

// NewBus starts a dispatcher.
func NewBus(log zerolog.Logger) *Bus {
	b := &Bus{log: log, done: make(chan struct{})}
	b.cond = sync.NewCond(&b.mu)
	go b.run()
	return b
}

// Subscribe registers h for every event published after this call.
func (b *Bus) Subscribe(h Handler) *Subscription {
	s := &Subscription{ID: uuid.New(), bus: b, handler: h}
	s.active.Store(true)

	b.mu.Lock()
	subs := make([]*Subscription, len(b.subs), len(b.subs)+1)
	copy(subs, b.subs)
	b.subs = append(subs, s)
	b.mu.Unlock()
	return s
}

// Unsubscribe stops delivery to s. No handler call starts after it returns.
// It may be called from inside the handler itself.
func (s *Subscription) Unsubscribe() {
	if s.deliver.TryLock() {
		s.active.Store(false)
		s.deliver.Unlock()
	} else {
		// A call is in progress, possibly our own caller; the next one sees the flag.
		s.active.Store(false)
	}

	b := s.bus
	b.mu.Lock()
	subs := make([]*Subscription, 0, len(b.subs))
	for _, other := range b.subs {
		if other != s {
			subs = append(subs, other)
		}
	}
	b.subs = subs
	b.mu.Unlock()
}

// Publish stamps ev with the next sequence number and queues it. Events
// published after Close are dropped.
func (b *Bus) Publish(ev Event) Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		b.log.Debug().Str("event", string(ev.Type)).Msg("bus closed; event dropped")
		return ev
	}
	b.seq++
	ev.Seq = b.seq
	b.queue = append(b.queue, queued{ev: ev})
	b.cond.Signal()
	return ev
}

// Flush blocks until every event published before the call has been delivered.
func (b *Bus) Flush() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		<-b.done
		return
	}
	marker := make(chan struct{})
	b.queue = append(b.queue, queued{flush: marker})
	b.cond.Signal()
	b.mu.Unlock()
	<-marker
}

// Close delivers what is queued and stops the dispatcher.
func (b *Bus) Close() {
	b.mu.Lock()
	if !b.closed {
		b.closed = true
		b.cond.Broadcast()
	}
	b.mu.Unlock()
	<-b.done
}

func (b *Bus) run() {
	defer close(b.done)
	for {
		b.mu.Lock()
		for len(b.queue) == 0 && !b.closed {
			b.cond.Wait()
		}
		if len(b.queue) == 0 {
			b.mu.Unlock()
			return
		}
		item := b.queue[0]
		b.queue[0] = queued{}
		b.queue = b.queue[1:]
		subs := b.subs
		b.mu.Unlock()

		if item.flush != nil {
			close(item.flush)
			continue
		}
		for _, s := range subs {
			b.deliver(s, item.ev)
		}
	}
}

func (b *Bus) deliver(s *Subscription, ev Event) {
	s.deliver.Lock()
	defer s.deliver.Unlock()
	if !s.active.Load() {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().Interface("panic", r).Str("subscriber", s.ID.String()).
				Str("event", string(ev.Type)).Msg("event handler panicked")
		}
	}()
	s.handler(ev)
}
