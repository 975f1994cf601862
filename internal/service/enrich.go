package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/minuteminds/internal/capability"
	"github.com/and161185/minuteminds/internal/errs"
	"github.com/and161185/minuteminds/internal/model"
	"github.com/and161185/minuteminds/internal/nlp"
	"github.com/and161185/minuteminds/internal/repository"
	"github.com/and161185/minuteminds/internal/summarize"
)

// ShortTextMessage accompanies a transcript returned verbatim instead of summarized.
const ShortTextMessage = "Text too short to summarize"

// minSummaryUnits is the number of ". "-separated units a text needs to be summarized.
const minSummaryUnits = 3

// SummaryResult is the outcome of Summarize. Message is set when the text was too short.
type SummaryResult struct {
	Summary      string
	BulletPoints []string
	Message      string
}

// EnrichService derives summaries and key items from stored transcriptions.
type EnrichService interface {
	// Summarize stores and returns a summary with bullet points.
	Summarize(ctx context.Context, owner, id uuid.UUID) (SummaryResult, error)
	// ExtractKeyItems detects action items and decisions and replaces the stored list.
	ExtractKeyItems(ctx context.Context, owner, id uuid.UUID) ([]model.KeyItem, error)
	// ReplaceKeyItems stores a client-edited key item list.
	ReplaceKeyItems(ctx context.Context, owner, id uuid.UUID, items []model.KeyItem) error
}

type EnrichServiceImpl struct {
	repo       repository.TranscriptionRepository
	summarizer *capability.Lazy[summarize.Summarizer]
	analyzer   *capability.Lazy[nlp.Analyzer]
	rec        *Recorder
	log        *zap.Logger
}

// NewEnrichService wires the enrichment capabilities.
func NewEnrichService(
	repo repository.TranscriptionRepository,
	summarizer *capability.Lazy[summarize.Summarizer],
	analyzer *capability.Lazy[nlp.Analyzer],
	rec *Recorder,
	log *zap.Logger,
) *EnrichServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &EnrichServiceImpl{repo: repo, summarizer: summarizer, analyzer: analyzer, rec: rec, log: log}
}

// Summarize checks ownership, then the capability, then the short-text rule.
func (s *EnrichServiceImpl) Summarize(ctx context.Context, owner, id uuid.UUID) (SummaryResult, error) {
	t, err := s.repo.Get(ctx, owner, id)
	if err != nil {
		return SummaryResult{}, err
	}
	sum, err := s.summarizer.Get(ctx)
	if err != nil {
		return SummaryResult{}, err
	}
	if len(strings.Split(t.Text, ". ")) < minSummaryUnits {
		return SummaryResult{Summary: t.Text, Message: ShortTextMessage}, nil
	}

	summary, err := sum.Summarize(ctx, t.Text, summarize.DefaultParams)
	if err != nil {
		return SummaryResult{}, fmt.Errorf("summarization failed: %w", err)
	}
	bullets := BulletPoints(summary)
	if err := s.repo.SetSummary(ctx, owner, id, summary, bullets); err != nil {
		return SummaryResult{}, err
	}
	s.rec.Log(ctx, ActionSummarization, &owner, map[string]any{"transcription_id": id.String()})
	s.rec.Metric(ctx, "summarization_count", 1, &owner)
	return SummaryResult{Summary: summary, BulletPoints: bullets}, nil
}

// BulletPoints splits a summary on "." into trimmed, non-empty, re-terminated sentences.
func BulletPoints(summary string) []string {
	out := []string{}
	for _, part := range strings.Split(summary, ".") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p+".")
		}
	}
	return out
}

// ExtractKeyItems runs sentence analysis over the transcript. Without the NLP
// capability the stored list becomes empty.
func (s *EnrichServiceImpl) ExtractKeyItems(ctx context.Context, owner, id uuid.UUID) ([]model.KeyItem, error) {
	t, err := s.repo.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	items := []model.KeyItem{}
	analyzer, err := s.analyzer.Get(ctx)
	switch {
	case err == nil:
		sentences, err := analyzer.Analyze(ctx, t.Text)
		if err != nil {
			return nil, fmt.Errorf("key item extraction failed: %w", err)
		}
		items = nlp.KeyItems(sentences)
	case errors.Is(err, capability.ErrUnavailable):
		s.log.Warn("nlp unavailable, storing empty key items", zap.Error(err))
	default:
		return nil, err
	}

	if err := s.repo.SetKeyItems(ctx, owner, id, items); err != nil {
		return nil, err
	}
	s.rec.Log(ctx, ActionExtractKeyItems, &owner, map[string]any{"transcription_id": id.String(), "count": len(items)})
	s.rec.Metric(ctx, "key_items_extracted", float64(len(items)), &owner)
	return items, nil
}

// ReplaceKeyItems bulk replaces the list. A nil list is a validation error; an
// empty list clears the items.
func (s *EnrichServiceImpl) ReplaceKeyItems(ctx context.Context, owner, id uuid.UUID, items []model.KeyItem) error {
	if items == nil {
		return fmt.Errorf("%w: key_items must be a list", errs.ErrValidation)
	}
	clean := make([]model.KeyItem, len(items))
	for i, it := range items {
		if it.Status == "" {
			it.Status = model.KeyItemStatusOpen
		}
		clean[i] = it
	}
	if err := s.repo.SetKeyItems(ctx, owner, id, clean); err != nil {
		return err
	}
	s.rec.Log(ctx, ActionUpdateKeyItems, &owner, map[string]any{"transcription_id": id.String(), "count": len(clean)})
	return nil
}
