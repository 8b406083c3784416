package jsonrequest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func startPending(opts Options, ft *fakeTransport) *pendingRequest {
	opts = Normalize(opts, "")
	p := newPendingRequest(opts, DefaultParser)
	p.armTimer()
	p.attach(ft.Perform(opts, p.onComplete))
	return p
}

func TestPendingRequest_TimerWins(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ft := newFakeTransport(ok(`{"late":true}`), 150*time.Millisecond)
	start := time.Now()
	p := startPending(Options{ReadTimeout: 30 * time.Millisecond}, ft)

	value, err := p.result()
	elapsed := time.Since(start)

	assert.Nil(t, value)
	assert.Equal(t, CodeReadTimeout, CodeOf(err))
	assert.Less(t, elapsed, 120*time.Millisecond)
	assert.Equal(t, int32(1), ft.aborts.Load())

	// The late completion must not change the outcome.
	require.True(t, ft.waitDelivered(time.Second))
	value, err = p.result()
	assert.Nil(t, value)
	assert.Equal(t, CodeReadTimeout, CodeOf(err))
}

func TestPendingRequest_CompletionWins(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ft := newFakeTransport(ok(`{"data":"hello world"}`), 0)
	p := startPending(Options{ReadTimeout: 50 * time.Millisecond}, ft)

	value, err := p.result()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"data": "hello world"}, value)
	require.True(t, ft.waitDelivered(time.Second))

	// Wait past the timeout window: no late rejection, no abort.
	time.Sleep(100 * time.Millisecond)
	value, err = p.result()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"data": "hello world"}, value)
	assert.Zero(t, ft.aborts.Load())
	assert.False(t, p.timer.Stop(), "timer already stopped")
}

func TestPendingRequest_InlineCompletion(t *testing.T) {
	ft := newFakeTransport(ok(`[1]`), 0)
	ft.inline = true
	p := startPending(Options{ReadTimeout: time.Second}, ft)

	value, err := p.result()
	require.NoError(t, err)
	assert.Equal(t, []any{1.0}, value)
	assert.Zero(t, ft.aborts.Load())
}

func TestPendingRequest_NoTimeout(t *testing.T) {
	ft := newFakeTransport(ok(`{}`), 20*time.Millisecond)
	p := startPending(Options{}, ft)

	_, err := p.result()
	require.NoError(t, err)
	assert.Nil(t, p.timer)
}

func TestPendingRequest_AbortOwedToLateHandle(t *testing.T) {
	p := newPendingRequest(Normalize(Options{}, ""), DefaultParser)
	p.cancel(context.Canceled)

	aborted := 0
	p.attach(AbortFunc(func() { aborted++ }))

	_, err := p.result()
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, aborted)
}

func TestPendingRequest_SettlesOnce(t *testing.T) {
	p := newPendingRequest(Normalize(Options{}, ""), DefaultParser)

	p.onComplete(ok(`"first"`))
	p.onTimeout()
	p.cancel(context.Canceled)
	p.onComplete(Outcome{StatusCode: 500})

	value, err := p.result()
	require.NoError(t, err)
	assert.Equal(t, "first", value)
	assert.False(t, p.timedOut)
}

func TestPendingRequest_ConcurrentNotifications(t *testing.T) {
	for i := 0; i < 200; i++ {
		p := newPendingRequest(Normalize(Options{}, ""), DefaultParser)
		start := make(chan struct{})
		finished := make(chan struct{}, 3)

		go func() { <-start; p.onComplete(ok(`1`)); finished <- struct{}{} }()
		go func() { <-start; p.onTimeout(); finished <- struct{}{} }()
		go func() { <-start; p.cancel(context.Canceled); finished <- struct{}{} }()
		close(start)
		for j := 0; j < 3; j++ {
			<-finished
		}

		value, err := p.result()
		if err == nil {
			assert.Equal(t, 1.0, value)
		} else {
			assert.Nil(t, value)
			assert.True(t, CodeOf(err) == CodeReadTimeout || errors.Is(err, context.Canceled), err)
		}
	}
}
