package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/minuteminds/internal/errs"
	"github.com/and161185/minuteminds/internal/translate"
)

// DefaultTargetLanguage is used when a request names none.
const DefaultTargetLanguage = "en"

// TranslateService translates free text for authenticated users.
type TranslateService interface {
	Translate(ctx context.Context, owner uuid.UUID, text, target string) (string, error)
}

type TranslateServiceImpl struct {
	tr  translate.Translator
	rec *Recorder
}

// NewTranslateService constructs TranslateService.
func NewTranslateService(tr translate.Translator, rec *Recorder) *TranslateServiceImpl {
	return &TranslateServiceImpl{tr: tr, rec: rec}
}

// Translate validates input and calls the translation endpoint.
func (s *TranslateServiceImpl) Translate(ctx context.Context, owner uuid.UUID, text, target string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: no text provided", errs.ErrValidation)
	}
	target = strings.TrimSpace(target)
	if target == "" {
		target = DefaultTargetLanguage
	}
	out, err := s.tr.Translate(ctx, text, target)
	if err != nil {
		return "", fmt.Errorf("translation failed: %w", err)
	}
	s.rec.Log(ctx, ActionTranslation, &owner, map[string]any{"target": target, "chars": len(text)})
	s.rec.Metric(ctx, "translation_count", 1, &owner)
	return out, nil
}
