package events

import (
	"context"
	"sync"
)

// CapturePublisher records published events in memory. Tests use it to assert
// on fan-out without a broker; FailWith simulates an unreachable channel.
type CapturePublisher struct {
	mu     sync.Mutex
	events []Event
	err    error
}

// NewCapturePublisher constructs an empty capture publisher.
func NewCapturePublisher() *CapturePublisher {
	return &CapturePublisher{}
}

// FailWith makes every subsequent Publish return err. Pass nil to recover.
func (p *CapturePublisher) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

func (p *CapturePublisher) Publish(_ context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

// Events returns a copy of everything published so far.
func (p *CapturePublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event{}, p.events...)
}
