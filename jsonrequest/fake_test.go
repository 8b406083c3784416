package jsonrequest

import (
	"sync"
	"sync/atomic"
	"time"
)

// fakeTransport completes every request with a fixed outcome after delay. It
// ignores Abort on purpose, so a late completion always arrives.
type fakeTransport struct {
	outcome Outcome
	delay   time.Duration
	// inline delivers the outcome before Perform returns.
	inline bool
	// nilHandle makes Perform return no handle.
	nilHandle bool

	aborts    atomic.Int32
	delivered chan struct{}

	mu   sync.Mutex
	seen []Options
}

func newFakeTransport(outcome Outcome, delay time.Duration) *fakeTransport {
	return &fakeTransport{
		outcome:   outcome,
		delay:     delay,
		delivered: make(chan struct{}, 16),
	}
}

func (f *fakeTransport) Perform(opts Options, done func(Outcome)) Handle {
	f.mu.Lock()
	f.seen = append(f.seen, opts)
	f.mu.Unlock()

	deliver := func() {
		done(f.outcome)
		f.delivered <- struct{}{}
	}
	if f.inline {
		deliver()
	} else {
		go func() {
			time.Sleep(f.delay)
			deliver()
		}()
	}

	if f.nilHandle {
		return nil
	}
	return AbortFunc(func() { f.aborts.Add(1) })
}

func (f *fakeTransport) lastOptions() Options {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen[len(f.seen)-1]
}

// waitDelivered blocks until the transport called done once more.
func (f *fakeTransport) waitDelivered(timeout time.Duration) bool {
	select {
	case <-f.delivered:
		return true
	case <-time.After(timeout):
		return false
	}
}

func ok(body string) Outcome {
	return Outcome{StatusCode: 200, Body: []byte(body)}
}
