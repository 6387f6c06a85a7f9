package fakes

import (
	"context"
	"errors"
	"sync"

	platformEvents "github.com/dhima/client-service/platform/events"
)

// ErrPublishFailed is returned by FakePublisher when FailNext is set and no
// FailError is given.
var ErrPublishFailed = errors.New("publish failed")

// FakePublisher records client events. Setting FailNext makes the next
// Publish fail without recording.
type FakePublisher struct {
	mu        sync.Mutex
	events    []platformEvents.ClientEvent
	FailNext  bool
	FailError error
	closed    bool
}

func (p *FakePublisher) Publish(_ context.Context, e platformEvents.ClientEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailNext {
		p.FailNext = false
		if p.FailError != nil {
			return p.FailError
		}
		return ErrPublishFailed
	}
	p.events = append(p.events, e)
	return nil
}

func (p *FakePublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// Closed reports whether Close was called.
func (p *FakePublisher) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Published returns a copy of the recorded events.
func (p *FakePublisher) Published() []platformEvents.ClientEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]platformEvents.ClientEvent(nil), p.events...)
}
