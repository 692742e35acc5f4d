package llmstream

import (
	"context"
	"sync"
)

// PauseController is a single cooperative suspend/resume switch shared by
// every active stream. Streams check it at their suspension points (before
// fetching the next upstream event) and wait for resume without closing the
// underlying vendor connection; while the translator stops reading, the
// producer simply backs up on its channel.
//
// Safe for concurrent use. Inject one controller into every stream call
// rather than hiding it in package state.
type PauseController struct {
	mu      sync.Mutex
	paused  bool
	resumed chan struct{}
}

// NewPauseController creates a controller in the running state.
func NewPauseController() *PauseController {
	return &PauseController{}
}

// Pause engages the switch. Idempotent.
func (p *PauseController) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.paused {
		return
	}
	p.paused = true
	p.resumed = make(chan struct{})
}

// Resume clears the switch and releases every waiter. Idempotent.
func (p *PauseController) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.paused {
		return
	}
	p.paused = false
	close(p.resumed)
}

// Paused reports the current state.
func (p *PauseController) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Wait blocks while the switch is engaged. It returns nil once running (or
// immediately if not paused) and ctx.Err() if the context is cancelled while
// waiting, so a cancelled stream is never stuck on pause.
//
// A nil controller never pauses; Wait on nil returns nil so callers can treat
// the controller as optional.
func (p *PauseController) Wait(ctx context.Context) error {
	if p == nil {
		return nil
	}
	for {
		p.mu.Lock()
		if !p.paused {
			p.mu.Unlock()
			return nil
		}
		ch := p.resumed
		p.mu.Unlock()

		select {
		case <-ch:
			// Re-check: the switch may have been engaged again.
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
