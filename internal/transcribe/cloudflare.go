package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	defaultCloudflareBaseURL = "https://api.cloudflare.com/client/v4"
	defaultCloudflareModel   = "@cf/openai/whisper"
)

// Cloudflare Workers AI backend.
// POST {base}/accounts/{account_id}/ai/run/{model} with the raw audio as body and a bearer API token.
type cloudflareBackend struct {
	baseURL   string
	accountID string
	apiToken  string
	model     string
	hc        *http.Client
}

// NewCloudflareBackend returns a Backend for Workers AI whisper models.
func NewCloudflareBackend(baseURL, accountID, apiToken, model string, timeout time.Duration) Backend {
	if baseURL == "" {
		baseURL = defaultCloudflareBaseURL
	}
	if model == "" || model == "whisper-1" {
		model = defaultCloudflareModel
	}
	return &cloudflareBackend{
		baseURL:   strings.TrimRight(baseURL, "/"),
		accountID: accountID,
		apiToken:  apiToken,
		model:     model,
		hc:        &http.Client{Timeout: timeout},
	}
}

type cfResp struct {
	Success bool            `json:"success"`
	Errors  []any           `json:"errors"`
	Result  json.RawMessage `json:"result"`
}

type cfWhisperResult struct {
	Text     string       `json:"text"`
	Segments []rawSegment `json:"segments"`
	Info     cfInfo       `json:"transcription_info"`
}

type cfInfo struct {
	Language string `json:"language"`
}

func (c *cloudflareBackend) Transcribe(ctx context.Context, audioPath string) (Result, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()

	url := fmt.Sprintf("%s/accounts/%s/ai/run/%s", c.baseURL, c.accountID, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, f)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.hc.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return Result{}, httpError("cloudflare", resp)
	}
	var cr cfResp
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return Result{}, err
	}
	if !cr.Success {
		return Result{}, fmt.Errorf("cloudflare response not successful: %v", cr.Errors)
	}
	var wr cfWhisperResult
	if err := json.Unmarshal(cr.Result, &wr); err != nil {
		return Result{}, fmt.Errorf("cloudflare unexpected result: %w", err)
	}
	return toResult(wr.Text, wr.Info.Language, wr.Segments), nil
}
