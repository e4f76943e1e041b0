package client

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFile(t *testing.T) {
	data, err := GetFile(ScriptName)
	require.NoError(t, err)
	assert.Contains(t, string(data), "live.json")
	assert.Contains(t, string(data), "phx_join")

	_, err = GetFile("missing.js")
	assert.Error(t, err)
}

func TestHandler(t *testing.T) {
	h := http.StripPrefix("/_live/", Handler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/_live/live.js", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Header().Get("Content-Type"), "javascript"))
	assert.Contains(t, rec.Body.String(), "data-live-view")
}
