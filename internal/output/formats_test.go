package output

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/jsonreq/internal/bench"
	"github.com/wesleyorama2/jsonreq/jsonrequest"
)

func testOptions() jsonrequest.Options {
	return jsonrequest.Normalize(jsonrequest.Options{
		URL:     "https://api.example.com/users",
		Headers: map[string]string{"Authorization": "Bearer token123"},
		Body:    []byte(`{"name":"Jane"}`),
	}, "POST")
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{in: "", want: FormatText},
		{in: "text", want: FormatText},
		{in: "JSON", want: FormatJSON},
		{in: " yaml ", want: FormatYAML},
		{in: "junit", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetFormatter(t *testing.T) {
	assert.IsType(t, &JSONFormatter{}, GetFormatter(FormatJSON, false, true))
	assert.IsType(t, &YAMLFormatter{}, GetFormatter(FormatYAML, false, true))
	assert.IsType(t, &Formatter{}, GetFormatter(FormatText, false, true))
	assert.IsType(t, &Formatter{}, GetFormatter("", false, true))
}

func TestJSONFormatter_FormatRequest(t *testing.T) {
	f := &JSONFormatter{}
	var data RequestData
	require.NoError(t, json.Unmarshal([]byte(f.FormatRequest(testOptions())), &data))

	assert.Equal(t, "POST", data.Method)
	assert.Equal(t, "https://api.example.com/users", data.URL)
	assert.Equal(t, "application/json", data.Headers["Accept"])
	assert.Equal(t, `{"name":"Jane"}`, data.Body)
}

func TestJSONFormatter_FormatResult(t *testing.T) {
	f := &JSONFormatter{Pretty: true}

	t.Run("success", func(t *testing.T) {
		out := f.FormatResult(Result{
			Options: testOptions(),
			Value:   map[string]any{"id": 1.0},
			Elapsed: 42 * time.Millisecond,
		})

		var data ResultData
		require.NoError(t, json.Unmarshal([]byte(out), &data))
		assert.True(t, data.OK)
		assert.Nil(t, data.Error)
		assert.Equal(t, int64(42), data.ElapsedMs)
		assert.Equal(t, map[string]any{"id": 1.0}, data.Value)
	})

	t.Run("http status error", func(t *testing.T) {
		out := f.FormatResult(Result{
			Options: testOptions(),
			Err:     jsonrequest.NewHTTPStatusError(404, []byte(`{"error":"missing"}`)),
		})

		var data ResultData
		require.NoError(t, json.Unmarshal([]byte(out), &data))
		assert.False(t, data.OK)
		require.NotNil(t, data.Error)
		assert.Equal(t, "http_status", data.Error.Kind)
		assert.Equal(t, "NOT_FOUND", data.Error.Code)
		assert.Equal(t, "Not Found", data.Error.Message)
		assert.Equal(t, 404, data.Error.StatusCode)
		assert.Equal(t, `{"error":"missing"}`, data.Error.Body)
	})

	t.Run("transport error", func(t *testing.T) {
		out := f.FormatResult(Result{Options: testOptions(), Err: errors.New("connection refused")})

		var data ResultData
		require.NoError(t, json.Unmarshal([]byte(out), &data))
		require.NotNil(t, data.Error)
		assert.Equal(t, "transport", data.Error.Kind)
		assert.Empty(t, data.Error.Code)
		assert.Equal(t, "connection refused", data.Error.Message)
	})
}

func TestYAMLFormatter(t *testing.T) {
	f := &YAMLFormatter{}

	var data ResultData
	out := f.FormatResult(Result{Options: testOptions(), Err: jsonrequest.NewReadTimeoutError()})
	require.NoError(t, yaml.Unmarshal([]byte(out), &data))
	require.NotNil(t, data.Error)
	assert.Equal(t, "ERR_READ_TIMEOUT", data.Error.Code)
	assert.Equal(t, "Request timed out", data.Error.Message)

	var summary SummaryData
	out = f.FormatSummary(bench.Summary{
		Total:     3,
		Succeeded: 2,
		Failed:    1,
		Codes:     map[string]int{"INTERNAL_SERVER_ERROR": 1},
		P50:       1500 * time.Microsecond,
	})
	require.NoError(t, yaml.Unmarshal([]byte(out), &summary))
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 1, summary.Codes["INTERNAL_SERVER_ERROR"])
	assert.InDelta(t, 1.5, summary.P50Ms, 1e-9)
}
