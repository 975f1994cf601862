package transcribe

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/and161185/minuteminds/internal/config"
	"github.com/stretchr/testify/require"
)

func writeAudio(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "meeting.wav")
	require.NoError(t, os.WriteFile(p, []byte("RIFF....WAVE"), 0o600))
	return p
}

func TestOpenAI_VerboseJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "verbose_json", r.FormValue("response_format"))
		require.Equal(t, "whisper-1", r.FormValue("model"))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		require.Equal(t, "meeting.wav", hdr.Filename)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"text":     " Hello team. Budget is approved. ",
			"language": "english",
			"segments": []map[string]any{
				{"start": 0.0, "end": 1.5, "text": " Hello team."},
				{"start": 1.5, "end": 3.25, "text": " Budget is approved."},
			},
		})
	}))
	defer srv.Close()

	b := NewOpenAIBackend(srv.URL, "sk-test", "", time.Minute)
	res, err := b.Transcribe(context.Background(), writeAudio(t))
	require.NoError(t, err)
	require.Equal(t, "Hello team. Budget is approved.", res.Text)
	require.Equal(t, "english", res.Language)
	require.Len(t, res.Segments, 2)
	require.Equal(t, 3.25, res.Segments[1].End)
	require.Equal(t, "Budget is approved.", res.Segments[1].Text)
}

func TestOpenAI_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewOpenAIBackend(srv.URL, "k", "", time.Minute).Transcribe(context.Background(), writeAudio(t))
	require.ErrorContains(t, err, "openai http 429")
	require.ErrorContains(t, err, "quota exceeded")
}

func TestCloudflare_ResultWithoutSegments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/accounts/acc/ai/run/@cf/openai/whisper", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.Equal(t, "RIFF....WAVE", string(body))
		_, _ = w.Write([]byte(`{"success":true,"errors":[],"result":{"text":"hi all","word_count":2}}`))
	}))
	defer srv.Close()

	res, err := NewCloudflareBackend(srv.URL, "acc", "tok", "", time.Minute).Transcribe(context.Background(), writeAudio(t))
	require.NoError(t, err)
	require.Equal(t, "hi all", res.Text)
	require.NotNil(t, res.Segments)
	require.Empty(t, res.Segments)
}

func TestCloudflare_NotSuccessful(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"errors":[{"message":"bad audio"}],"result":null}`))
	}))
	defer srv.Close()

	_, err := NewCloudflareBackend(srv.URL, "acc", "tok", "", time.Minute).Transcribe(context.Background(), writeAudio(t))
	require.ErrorContains(t, err, "not successful")
}

func TestCommand_ParsesHelperOutput(t *testing.T) {
	script := `printf '{"text":"","segments":[{"start":0,"end":2,"text":" one "},{"start":2,"end":4,"text":"two"}]}'`
	b := NewCommandBackend([]string{"/bin/sh", "-c", script, "sh"})
	res, err := b.Transcribe(context.Background(), writeAudio(t))
	require.NoError(t, err)
	require.Equal(t, "one two", res.Text)
	require.Len(t, res.Segments, 2)
}

func TestCommand_FailureCarriesStderr(t *testing.T) {
	b := NewCommandBackend([]string{"/bin/sh", "-c", "echo model missing >&2; exit 3", "sh"})
	_, err := b.Transcribe(context.Background(), writeAudio(t))
	require.ErrorContains(t, err, "model missing")
}

func TestNewFromConfig(t *testing.T) {
	_, err := NewFromConfig(config.TranscriberConfig{Backend: "openai"})
	require.ErrorContains(t, err, "OPENAI_API_KEY")

	_, err = NewFromConfig(config.TranscriberConfig{Backend: "cloudflare", CFAccountID: "a"})
	require.Error(t, err)

	_, err = NewFromConfig(config.TranscriberConfig{Backend: "command"})
	require.Error(t, err)

	_, err = NewFromConfig(config.TranscriberConfig{Backend: "vosk"})
	require.ErrorContains(t, err, "unknown transcriber backend")

	b, err := NewFromConfig(config.TranscriberConfig{Backend: "openai", OpenAIKey: "k"})
	require.NoError(t, err)
	require.NotNil(t, b)
}
