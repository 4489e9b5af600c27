package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHealthLiteralResponse pins §8 end-to-end scenario 1: GET / returns
// exactly {"ok":true,"service":"btca-server","version":"0.0.1"}.
func TestHealthLiteralResponse(t *testing.T) {
	h := &Handler{}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		OK      bool   `json:"ok"`
		Service string `json:"service"`
		Version string `json:"version"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.True(t, body.OK)
	assert.Equal(t, "btca-server", body.Service)
	assert.Equal(t, "0.0.1", body.Version)
}
