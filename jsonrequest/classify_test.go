package jsonrequest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_Precedence(t *testing.T) {
	transportErr := errors.New("connect: connection refused")
	get := Options{Method: "GET"}

	tests := []struct {
		name     string
		timedOut bool
		opts     Options
		outcome  Outcome
		value    any
		code     string
		err      error
	}{
		{
			name:     "timeout beats transport error",
			timedOut: true,
			opts:     get,
			outcome:  Outcome{Err: transportErr},
			code:     CodeReadTimeout,
		},
		{
			name:     "timeout beats success",
			timedOut: true,
			opts:     get,
			outcome:  ok(`{"a":1}`),
			code:     CodeReadTimeout,
		},
		{
			name:    "transport error passes through",
			opts:    get,
			outcome: Outcome{Err: transportErr, StatusCode: 500},
			err:     transportErr,
		},
		{
			name:    "status error",
			opts:    get,
			outcome: Outcome{StatusCode: 404, Body: []byte("nope")},
			code:    "NOT_FOUND",
		},
		{
			name:    "status error on head",
			opts:    Options{Method: "HEAD"},
			outcome: Outcome{StatusCode: 500},
			code:    "INTERNAL_SERVER_ERROR",
		},
		{
			name:    "head success is nil",
			opts:    Options{Method: "HEAD"},
			outcome: ok("not json"),
			value:   nil,
		},
		{
			name:    "redirect status is parsed",
			opts:    get,
			outcome: Outcome{StatusCode: 304, Body: []byte(`true`)},
			value:   true,
		},
		{
			name:    "parse success",
			opts:    get,
			outcome: ok(`{"data":"hello world"}`),
			value:   map[string]any{"data": "hello world"},
		},
		{
			name:    "parse failure",
			opts:    get,
			outcome: ok(`{data":hello world"}`),
			code:    CodeJSONParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, err := classify(tt.timedOut, tt.opts, tt.outcome, DefaultParser)

			switch {
			case tt.err != nil:
				assert.Same(t, tt.err, err)
			case tt.code != "":
				require.Error(t, err)
				assert.Equal(t, tt.code, CodeOf(err))
			default:
				require.NoError(t, err)
			}
			assert.Equal(t, tt.value, value)
		})
	}
}

func TestClassify_ParserSelection(t *testing.T) {
	clientParser := func([]byte) (any, error) { return "client", nil }
	optsParser := func([]byte) (any, error) { return "options", nil }

	value, err := classify(false, Options{Method: "GET"}, ok("x"), clientParser)
	require.NoError(t, err)
	assert.Equal(t, "client", value)

	value, err = classify(false, Options{Method: "GET", Parser: optsParser}, ok("x"), clientParser)
	require.NoError(t, err)
	assert.Equal(t, "options", value)

	value, err = classify(false, Options{Method: "GET"}, ok("[1,2]"), nil)
	require.NoError(t, err)
	assert.Equal(t, []any{1.0, 2.0}, value)
}

func TestClassify_ParseErrorKeepsRawBody(t *testing.T) {
	calls := 0
	failing := func([]byte) (any, error) {
		calls++
		return nil, errors.New("boom")
	}

	_, err := classify(false, Options{Method: "GET", Parser: failing}, ok(`{"valid":true}`), nil)

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, KindJSONParse, e.Kind())
	assert.Equal(t, `{"valid":true}`, string(e.Body()))
	assert.Equal(t, 1, calls, "no fallback parse")
}

func TestClassify_PanickingParser(t *testing.T) {
	panicking := func([]byte) (any, error) { panic("boom") }

	var value any
	var err error
	require.NotPanics(t, func() {
		value, err = classify(false, Options{Method: "GET", Parser: panicking}, ok(`{"a":1}`), nil)
	})

	assert.Nil(t, value)
	assert.Equal(t, CodeJSONParse, CodeOf(err))
}
