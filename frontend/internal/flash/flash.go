// Package flash keeps transient per-session notices. The container exists
// exactly while at least one message is displayed.
package flash

import (
	"sync"
	"time"
)

type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
	Info    Kind = "info"
)

const DefaultTTL = 5 * time.Second

type Message struct {
	Id        uint64
	Kind      Kind
	Text      string
	CreatedAt time.Time
}

// Timer is the part of *time.Timer the messenger needs.
type Timer interface {
	Stop() bool
}

// Scheduler runs f after d. time.AfterFunc in production.
type Scheduler func(d time.Duration, f func()) Timer

func afterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type entry struct {
	msg   Message
	timer Timer
}

type container struct {
	entries []*entry
}

type Messenger struct {
	mu        sync.Mutex
	ttl       time.Duration
	schedule  Scheduler
	now       func() time.Time
	container *container
	nextId    uint64
	closed    bool
}

type Option func(*Messenger)

func WithScheduler(s Scheduler) Option {
	return func(m *Messenger) { m.schedule = s }
}

func WithClock(now func() time.Time) Option {
	return func(m *Messenger) { m.now = now }
}

func New(ttl time.Duration, opts ...Option) *Messenger {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &Messenger{
		ttl:      ttl,
		schedule: afterFunc,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Show appends a message, creating the container on first use, and schedules
// its removal after the TTL.
func (m *Messenger) Show(kind Kind, text string) Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextId++
	e := &entry{msg: Message{Id: m.nextId, Kind: kind, Text: text, CreatedAt: m.now()}}
	if m.closed {
		return e.msg
	}
	if m.container == nil {
		m.container = &container{}
	}
	m.container.entries = append(m.container.entries, e)

	id := e.msg.Id
	e.timer = m.schedule(m.ttl, func() { m.Remove(id) })
	return e.msg
}

// Remove drops one message. Removing the last one removes the container.
func (m *Messenger) Remove(id uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.container == nil {
		return false
	}
	for i, e := range m.container.entries {
		if e.msg.Id != id {
			continue
		}
		if e.timer != nil {
			e.timer.Stop()
		}
		m.container.entries = append(m.container.entries[:i], m.container.entries[i+1:]...)
		if len(m.container.entries) == 0 {
			m.container = nil
		}
		return true
	}
	return false
}

// Messages returns the displayed messages in insertion order.
func (m *Messenger) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.container == nil {
		return nil
	}
	out := make([]Message, len(m.container.entries))
	for i, e := range m.container.entries {
		out[i] = e.msg
	}
	return out
}

func (m *Messenger) HasContainer() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.container != nil
}

// Close stops pending timers and drops everything. Later Show calls are
// no-ops.
func (m *Messenger) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.container != nil {
		for _, e := range m.container.entries {
			if e.timer != nil {
				e.timer.Stop()
			}
		}
	}
	m.container = nil
	m.closed = true
}
