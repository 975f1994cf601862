package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/minuteminds/internal/errs"
	"github.com/and161185/minuteminds/internal/export"
	"github.com/and161185/minuteminds/internal/model"
	"github.com/and161185/minuteminds/internal/repository"
)

// ExportFile is a rendered document ready to be sent as an attachment.
type ExportFile struct {
	Name        string
	ContentType string
	Body        []byte
}

// TranscriptService reads a user's transcriptions.
type TranscriptService interface {
	// List returns the caller's transcriptions, newest first.
	List(ctx context.Context, owner uuid.UUID) ([]model.Transcription, error)
	// Search runs a full-text query and marks matching segments.
	Search(ctx context.Context, owner uuid.UUID, query string) ([]model.SearchResult, error)
	// Export renders a transcription as pdf or docx.
	Export(ctx context.Context, owner, id uuid.UUID, format string) (ExportFile, error)
}

type TranscriptServiceImpl struct {
	repo repository.TranscriptionRepository
	rec  *Recorder
	now  func() time.Time
}

// NewTranscriptService constructs TranscriptService.
func NewTranscriptService(repo repository.TranscriptionRepository, rec *Recorder) *TranscriptServiceImpl {
	return &TranscriptServiceImpl{repo: repo, rec: rec, now: time.Now}
}

// List delegates to the owner-scoped repository listing.
func (s *TranscriptServiceImpl) List(ctx context.Context, owner uuid.UUID) ([]model.Transcription, error) {
	return s.repo.ListByUser(ctx, owner)
}

// Search runs two independent passes: the store's full-text match selects
// transcriptions, then each result's segments are kept when they contain the
// query as a case-insensitive substring.
func (s *TranscriptServiceImpl) Search(ctx context.Context, owner uuid.UUID, query string) ([]model.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query is required", errs.ErrValidation)
	}
	hits, err := s.repo.Search(ctx, owner, query)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(query)
	out := make([]model.SearchResult, 0, len(hits))
	for _, t := range hits {
		matching := []model.Segment{}
		for _, seg := range t.Segments {
			if strings.Contains(strings.ToLower(seg.Text), needle) {
				matching = append(matching, seg)
			}
		}
		out = append(out, model.SearchResult{Transcription: t, MatchingSegments: matching})
	}
	s.rec.Log(ctx, ActionSearch, &owner, map[string]any{"query": query, "results": len(out)})
	s.rec.Metric(ctx, "search_count", 1, &owner)
	return out, nil
}

// Export validates the format before looking up the transcription.
func (s *TranscriptServiceImpl) Export(ctx context.Context, owner, id uuid.UUID, format string) (ExportFile, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return ExportFile{}, err
	}
	t, err := s.repo.Get(ctx, owner, id)
	if err != nil {
		return ExportFile{}, err
	}
	body, err := export.Render(f, t)
	if err != nil {
		return ExportFile{}, fmt.Errorf("render %s: %w", f, err)
	}
	s.rec.Log(ctx, ActionExport, &owner, map[string]any{"transcription_id": id.String(), "format": string(f)})
	s.rec.Metric(ctx, "export_count", 1, &owner)
	return ExportFile{Name: f.Filename(s.now()), ContentType: f.ContentType(), Body: body}, nil
}
