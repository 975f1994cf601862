package transcribe

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

const defaultOpenAIBaseURL = "https://api.openai.com"

// OpenAI speech-to-text via audio.transcriptions with verbose_json so segment timings come back.
type openAIBackend struct {
	baseURL string
	apiKey  string
	model   string
	hc      *http.Client
}

// NewOpenAIBackend returns a Backend for the OpenAI-compatible transcription API.
func NewOpenAIBackend(baseURL, apiKey, model string, timeout time.Duration) Backend {
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	if model == "" {
		model = "whisper-1"
	}
	return &openAIBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		hc:      &http.Client{Timeout: timeout},
	}
}

type openAIResp struct {
	Text     string       `json:"text"`
	Language string       `json:"language"`
	Segments []rawSegment `json:"segments"`
}

func (o *openAIBackend) Transcribe(ctx context.Context, audioPath string) (Result, error) {
	body, contentType, err := fileForm(audioPath, map[string]string{
		"model":           o.model,
		"response_format": "verbose_json",
	})
	if err != nil {
		return Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/v1/audio/transcriptions", body)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := o.hc.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return Result{}, httpError("openai", resp)
	}
	var or openAIResp
	if err := json.NewDecoder(resp.Body).Decode(&or); err != nil {
		return Result{}, err
	}
	return toResult(or.Text, or.Language, or.Segments), nil
}
