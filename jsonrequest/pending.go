package jsonrequest

import (
	"sync"
	"time"
)

type requestState int

const (
	statePending requestState = iota
	stateSettled
)

// pendingRequest is the per-call state shared by the transport callback, the
// read timer and the caller's context. Whichever of them reaches settle first
// decides the result; the others become no-ops.
type pendingRequest struct {
	opts  Options
	parse Parser

	mu       sync.Mutex
	state    requestState
	timedOut bool
	timer    *time.Timer
	handle   Handle
	// abortOnAttach is set when the timer or context won before the
	// transport handed back its handle.
	abortOnAttach bool

	done  chan struct{}
	value any
	err   error
}

func newPendingRequest(opts Options, parse Parser) *pendingRequest {
	return &pendingRequest{
		opts:  opts,
		parse: parse,
		done:  make(chan struct{}),
	}
}

// armTimer starts the read timer when ReadTimeout is positive.
func (p *pendingRequest) armTimer() {
	if p.opts.ReadTimeout <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.timer = time.AfterFunc(p.opts.ReadTimeout, p.onTimeout)
}

// attach records the transport handle, aborting it at once if the timer or
// the context already settled the request.
func (p *pendingRequest) attach(h Handle) {
	if h == nil {
		return
	}
	p.mu.Lock()
	p.handle = h
	abort := p.abortOnAttach
	p.abortOnAttach = false
	p.mu.Unlock()

	if abort {
		h.Abort()
	}
}

// claim moves the request to settled. It returns false if another path got
// there first. The timer is stopped so it can no longer fire.
func (p *pendingRequest) claim() bool {
	if p.state == stateSettled {
		return false
	}
	p.state = stateSettled
	if p.timer != nil {
		p.timer.Stop()
	}
	return true
}

// onComplete is the transport callback.
func (p *pendingRequest) onComplete(out Outcome) {
	p.mu.Lock()
	if !p.claim() {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	// Winning the claim means the timer has not fired.
	p.finish(classify(false, p.opts, out, p.parse))
}

// onTimeout is the read timer callback.
func (p *pendingRequest) onTimeout() {
	p.mu.Lock()
	if !p.claim() {
		p.mu.Unlock()
		return
	}
	p.timedOut = true
	h := p.takeHandle()
	p.mu.Unlock()

	p.finish(classify(true, p.opts, Outcome{}, p.parse))
	if h != nil {
		h.Abort()
	}
}

// cancel settles the request with cause and aborts the transport, the same
// way an expired read timer does.
func (p *pendingRequest) cancel(cause error) {
	p.mu.Lock()
	if !p.claim() {
		p.mu.Unlock()
		return
	}
	h := p.takeHandle()
	p.mu.Unlock()

	p.finish(nil, cause)
	if h != nil {
		h.Abort()
	}
}

// takeHandle returns the handle to abort, or marks the abort as owed to a
// handle that has not been attached yet. p.mu must be held.
func (p *pendingRequest) takeHandle() Handle {
	if p.handle == nil {
		p.abortOnAttach = true
	}
	return p.handle
}

func (p *pendingRequest) finish(value any, err error) {
	p.mu.Lock()
	p.value, p.err = value, err
	p.mu.Unlock()
	close(p.done)
}

// settled reports whether the request has a result.
func (p *pendingRequest) settled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state == stateSettled
}

// result blocks until the request settles.
func (p *pendingRequest) result() (any, error) {
	<-p.done
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value, p.err
}
