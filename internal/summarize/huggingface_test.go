package summarize

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHuggingFace_SendsParamsAndDecodes(t *testing.T) {
	var got hfRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer hf_x", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`[{"summary_text":"The team approved the budget."}]`))
	}))
	defer srv.Close()

	s := NewHuggingFace(srv.URL, "hf_x", time.Minute)
	out, err := s.Summarize(context.Background(), "long text", DefaultParams)
	require.NoError(t, err)
	require.Equal(t, "The team approved the budget.", out)
	require.Equal(t, "long text", got.Inputs)
	require.Equal(t, Params{MinLength: 30, MaxLength: 150, DoSample: false}, got.Parameters)
}

func TestHuggingFace_ErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"Model facebook/bart-large-cnn is currently loading"}`))
	}))
	defer srv.Close()

	_, err := NewHuggingFace(srv.URL, "", time.Minute).Summarize(context.Background(), "x", DefaultParams)
	require.ErrorContains(t, err, "summarizer http 503: Model facebook/bart-large-cnn is currently loading")
}

func TestHuggingFace_EmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := NewHuggingFace(srv.URL, "", time.Minute).Summarize(context.Background(), "x", DefaultParams)
	require.ErrorContains(t, err, "no candidates")
}
