package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondEnvelopes(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondData(rec, map[string]int{"waiting": 2})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"data":{"waiting":2}}`, rec.Body.String())

	rec = httptest.NewRecorder()
	RespondError(rec, http.StatusUnauthorized, "nope")

	var body Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, Envelope{Success: false, Error: "nope"}, body)
}

func TestSendSSEEvent(t *testing.T) {
	rec := httptest.NewRecorder()
	SetupSSEHeaders(rec)

	require.NoError(t, SendSSEEvent(rec, rec, "stats", map[string]int{"waiting": 1}))

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "event: stats\ndata: {\"waiting\":1}\n\n", rec.Body.String())
	assert.True(t, rec.Flushed)
}
