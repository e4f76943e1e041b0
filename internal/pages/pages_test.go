package pages

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkmeta/metasite/pkg/router"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	r := router.New()
	Register(r, Deps{BaseURL: "https://example.test"})

	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		srv.Close()
		_ = r.Shutdown(context.Background())
	})
	return srv
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()

	res, err := http.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, string(body)
}

func TestRegister(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		path string
		want string
	}{
		{"/", `data-live-view="home"`},
		{"/meta?url=example.com", `value="example.com"`},
		{"/pricing?plan=pro-5k-v3", `<span data-slot="price">$120</span>`},
		{"/colors", "Other colors"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			code, body := get(t, srv.URL+tt.path)
			assert.Equal(t, http.StatusOK, code)
			assert.Contains(t, body, "<!DOCTYPE html>")
			assert.Contains(t, body, tt.want)
			assert.Contains(t, body, `href="https://example.test`)
		})
	}
}

func TestRegisterNotFound(t *testing.T) {
	srv := newTestServer(t)

	code, _ := get(t, srv.URL+"/nope")
	assert.Equal(t, http.StatusNotFound, code)
}
