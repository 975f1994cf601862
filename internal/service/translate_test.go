package service

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"

	"github.com/and161185/minuteminds/internal/errs"
)

type fakeTranslator struct {
	target string
	err    error
}

func (f *fakeTranslator) Translate(_ context.Context, text, target string) (string, error) {
	f.target = target
	if f.err != nil {
		return "", f.err
	}
	return "[" + target + "] " + text, nil
}

func TestTranslate(t *testing.T) {
	t.Parallel()
	st := newStore()
	tr := &fakeTranslator{}
	s := NewTranslateService(tr, newRecorder(t, st))
	ctx := context.Background()
	owner := uuid.Must(uuid.NewV4())

	_, err := s.Translate(ctx, owner, "  ", "de")
	require.ErrorIs(t, err, errs.ErrValidation)

	out, err := s.Translate(ctx, owner, "Hallo", "")
	require.NoError(t, err)
	require.Equal(t, DefaultTargetLanguage, tr.target)
	require.Equal(t, "[en] Hallo", out)
	require.Contains(t, actions(t, st), ActionTranslation)

	tr.err = errors.New("429 too many requests")
	_, err = s.Translate(ctx, owner, "Hallo", "fr")
	require.EqualError(t, err, "translation failed: 429 too many requests")
}
