// Package summarize calls a hosted abstractive summarization model.
package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Summarizer condenses text.
type Summarizer interface {
	Summarize(ctx context.Context, text string, p Params) (string, error)
}

// Params are the generation bounds passed to the model.
type Params struct {
	MinLength int  `json:"min_length"`
	MaxLength int  `json:"max_length"`
	DoSample  bool `json:"do_sample"`
}

// DefaultParams are the bounds used for meeting summaries.
var DefaultParams = Params{MinLength: 30, MaxLength: 150, DoSample: false}

// HuggingFace talks to the Inference API of a summarization model such as facebook/bart-large-cnn.
type HuggingFace struct {
	url   string
	token string
	hc    *http.Client
}

// NewHuggingFace returns a client for the model endpoint url.
func NewHuggingFace(url, token string, timeout time.Duration) *HuggingFace {
	return &HuggingFace{url: url, token: token, hc: &http.Client{Timeout: timeout}}
}

type hfRequest struct {
	Inputs     string `json:"inputs"`
	Parameters Params `json:"parameters"`
}

type hfSummary struct {
	SummaryText string `json:"summary_text"`
}

type hfError struct {
	Error string `json:"error"`
}

// Summarize returns the model's summary_text for text.
func (h *HuggingFace) Summarize(ctx context.Context, text string, p Params) (string, error) {
	payload, err := json.Marshal(hfRequest{Inputs: text, Parameters: p})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.hc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 300 {
		var he hfError
		if json.Unmarshal(body, &he) == nil && he.Error != "" {
			return "", fmt.Errorf("summarizer http %d: %s", resp.StatusCode, he.Error)
		}
		return "", fmt.Errorf("summarizer http %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	var out []hfSummary
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode summary: %w", err)
	}
	if len(out) == 0 {
		return "", errors.New("summarizer returned no candidates")
	}
	return out[0].SummaryText, nil
}
