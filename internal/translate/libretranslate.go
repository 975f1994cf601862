// Package translate is a client for LibreTranslate-compatible translation services.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Translator translates text into a target language.
type Translator interface {
	Translate(ctx context.Context, text, target string) (string, error)
}

// Client posts {q, source, target, format} to a /translate endpoint.
type Client struct {
	url    string
	apiKey string
	hc     *http.Client
}

// New returns a Client for the endpoint url.
func New(url, apiKey string, timeout time.Duration) *Client {
	return &Client{url: url, apiKey: apiKey, hc: &http.Client{Timeout: timeout}}
}

type request struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type response struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error"`
}

// Translate auto-detects the source language and returns the translated text.
func (c *Client) Translate(ctx context.Context, text, target string) (string, error) {
	payload, err := json.Marshal(request{Q: text, Source: "auto", Target: target, Format: "text", APIKey: c.apiKey})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	var out response
	_ = json.Unmarshal(body, &out)
	if resp.StatusCode >= 300 {
		if out.Error != "" {
			return "", fmt.Errorf("translate http %d: %s", resp.StatusCode, out.Error)
		}
		return "", fmt.Errorf("translate http %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	if out.Error != "" {
		return "", fmt.Errorf("translate: %s", out.Error)
	}
	return out.TranslatedText, nil
}
