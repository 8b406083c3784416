package jsonrequest

import (
	"bytes"
	"compress/flate"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPTransport_Perform(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "PUT", r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		body, _ := io.ReadAll(r.Body)
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write(body)
	}))
	defer server.Close()

	outcomes := make(chan Outcome, 1)
	opts := Normalize(Options{URL: server.URL, Body: []byte(`{"x":1}`)}, "PUT")
	h := NewHTTPTransport(nil).Perform(opts, func(out Outcome) { outcomes <- out })
	require.NotNil(t, h)

	out := <-outcomes
	require.NoError(t, out.Err)
	assert.Equal(t, http.StatusAccepted, out.StatusCode)
	assert.Equal(t, `{"x":1}`, string(out.Body))
}

func TestHTTPTransport_Abort(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	outcomes := make(chan Outcome, 1)
	h := NewHTTPTransport(nil).Perform(Normalize(URL(server.URL), ""), func(out Outcome) { outcomes <- out })
	h.Abort()

	select {
	case out := <-outcomes:
		assert.True(t, errors.Is(out.Err, context.Canceled), out.Err)
	case <-time.After(2 * time.Second):
		t.Fatal("aborted request never completed")
	}
}

func TestHTTPTransport_InvalidURLCompletesAsynchronously(t *testing.T) {
	outcomes := make(chan Outcome, 1)
	h := NewHTTPTransport(nil).Perform(Options{Method: "GET", URL: "://nope"}, func(out Outcome) { outcomes <- out })

	assert.NotNil(t, h)
	out := <-outcomes
	assert.Error(t, out.Err)
}

func TestReadBody_Deflate(t *testing.T) {
	var buf bytes.Buffer
	fw, err := flate.NewWriter(&buf, flate.DefaultCompression)
	require.NoError(t, err)
	_, _ = fw.Write([]byte(`[true]`))
	require.NoError(t, fw.Close())

	resp := &http.Response{
		Header: http.Header{"Content-Encoding": []string{"deflate"}},
		Body:   io.NopCloser(&buf),
	}
	data, err := readBody(resp)

	require.NoError(t, err)
	assert.Equal(t, `[true]`, string(data))
}

func TestReadBody_NilBody(t *testing.T) {
	data, err := readBody(&http.Response{})
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestTransportFunc(t *testing.T) {
	aborted := false
	var tr Transport = TransportFunc(func(opts Options, done func(Outcome)) Handle {
		done(ok(opts.URL))
		return AbortFunc(func() { aborted = true })
	})

	var got Outcome
	tr.Perform(URL("u"), func(out Outcome) { got = out }).Abort()

	assert.Equal(t, "u", string(got.Body))
	assert.True(t, aborted)
}
