package network

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultHttp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.Write([]byte(`{"ok":true}`))
		case "/post":
			body := make(map[string]string)
			require.Nil(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "application/json", r.Header.Get("Content-Type"))
			w.Write([]byte(body["name"]))
		default:
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte("rate limit"))
		}
	}))
	defer srv.Close()

	h := NewHttp()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/ok", nil)
	require.Nil(t, err)
	bz, err := h.Get(req)
	require.Nil(t, err)
	require.Equal(t, `{"ok":true}`, string(bz))

	bz, err = h.PostJson(srv.URL+"/post", map[string]string{"name": "sentinel"})
	require.Nil(t, err)
	require.Equal(t, "sentinel", string(bz))

	req, err = http.NewRequest(http.MethodGet, srv.URL+"/busy", nil)
	require.Nil(t, err)
	_, err = h.Get(req)
	require.NotNil(t, err)
	statusErr, ok := err.(*StatusErr)
	require.True(t, ok)
	require.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
}
