// Package transcribe provides speech-to-text backends.
package transcribe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/and161185/minuteminds/internal/config"
	"github.com/and161185/minuteminds/internal/model"
)

// Result is the text of a recording plus its ordered segments.
type Result struct {
	Text     string
	Language string
	Segments []model.Segment
}

// Backend is a pluggable transcription backend.
type Backend interface {
	Transcribe(ctx context.Context, audioPath string) (Result, error)
}

// NewFromConfig creates a Backend based on cfg.Backend.
func NewFromConfig(cfg config.TranscriberConfig) (Backend, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	switch cfg.Backend {
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("openai backend requires OPENAI_API_KEY")
		}
		return NewOpenAIBackend(cfg.OpenAIBaseURL, cfg.OpenAIKey, cfg.Model, timeout), nil
	case "cloudflare":
		if cfg.CFAccountID == "" || cfg.CFAPIToken == "" {
			return nil, fmt.Errorf("cloudflare backend requires CF_ACCOUNT_ID and CF_API_TOKEN")
		}
		return NewCloudflareBackend(cfg.CFBaseURL, cfg.CFAccountID, cfg.CFAPIToken, cfg.Model, timeout), nil
	case "command":
		if len(cfg.Command) == 0 {
			return nil, fmt.Errorf("command backend requires transcriber.command")
		}
		return NewCommandBackend(cfg.Command), nil
	default:
		return nil, fmt.Errorf("unknown transcriber backend: %s", cfg.Backend)
	}
}

type rawSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// toResult trims segment text and keeps the backend order. The full text falls
// back to the joined segments when the backend sent none.
func toResult(text, lang string, segs []rawSegment) Result {
	out := Result{Text: strings.TrimSpace(text), Language: lang, Segments: make([]model.Segment, 0, len(segs))}
	parts := make([]string, 0, len(segs))
	for _, s := range segs {
		t := strings.TrimSpace(s.Text)
		out.Segments = append(out.Segments, model.Segment{Start: s.Start, End: s.End, Text: t})
		parts = append(parts, t)
	}
	if out.Text == "" {
		out.Text = strings.Join(parts, " ")
	}
	return out
}
