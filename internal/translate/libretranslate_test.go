package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClient_Translate(t *testing.T) {
	var got request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"translatedText":"Hola equipo"}`))
	}))
	defer srv.Close()

	out, err := New(srv.URL, "", time.Second).Translate(context.Background(), "Hello team", "es")
	require.NoError(t, err)
	require.Equal(t, "Hola equipo", out)
	require.Equal(t, request{Q: "Hello team", Source: "auto", Target: "es", Format: "text"}, got)
}

func TestClient_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"xx is not supported"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "k", time.Second).Translate(context.Background(), "Hello", "xx")
	require.ErrorContains(t, err, "translate http 400: xx is not supported")
}
