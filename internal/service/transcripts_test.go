package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"

	"github.com/and161185/minuteminds/internal/errs"
	"github.com/and161185/minuteminds/internal/model"
)

func TestTranscripts_ListIsOwnerScoped(t *testing.T) {
	t.Parallel()
	st := newStore()
	s := NewTranscriptService(st.Transcriptions, newRecorder(t, st))
	ctx := context.Background()
	ann, bob := uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4())
	seedTranscription(t, st, ann, "first")
	seedTranscription(t, st, bob, "other")

	list, err := s.List(ctx, ann)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "first", list[0].Text)

	empty, err := s.List(ctx, uuid.Must(uuid.NewV4()))
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestTranscripts_SearchMarksSegments(t *testing.T) {
	t.Parallel()
	st := newStore()
	s := NewTranscriptService(st.Transcriptions, newRecorder(t, st))
	ctx := context.Background()
	owner := uuid.Must(uuid.NewV4())
	seedTranscription(t, st, owner, "The Budget review went well. Hiring is paused.",
		model.Segment{Start: 0, End: 2, Text: "The Budget review went well."},
		model.Segment{Start: 2, End: 4, Text: "Hiring is paused."},
	)
	seedTranscription(t, st, owner, "Nothing relevant.")
	seedTranscription(t, st, uuid.Must(uuid.NewV4()), "budget of someone else")

	res, err := s.Search(ctx, owner, "budget")
	require.NoError(t, err)
	require.Len(t, res, 1)
	require.Equal(t, []model.Segment{{Start: 0, End: 2, Text: "The Budget review went well."}}, res[0].MatchingSegments)
	require.Contains(t, actions(t, st), ActionSearch)

	_, err = s.Search(ctx, owner, "   ")
	require.ErrorIs(t, err, errs.ErrValidation)
}

func TestTranscripts_SearchHitWithoutSegmentMatch(t *testing.T) {
	t.Parallel()
	st := newStore()
	s := NewTranscriptService(st.Transcriptions, nil)
	owner := uuid.Must(uuid.NewV4())
	// text matches, but the stored segments do not carry the word
	seedTranscription(t, st, owner, "quarterly budget", model.Segment{Start: 0, End: 1, Text: "quarterly"})

	res, err := s.Search(context.Background(), owner, "budget")
	require.NoError(t, err)
	require.Len(t, res, 1)
	require.NotNil(t, res[0].MatchingSegments)
	require.Empty(t, res[0].MatchingSegments)
}

func TestTranscripts_Export(t *testing.T) {
	t.Parallel()
	st := newStore()
	s := NewTranscriptService(st.Transcriptions, newRecorder(t, st))
	s.now = func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }
	ctx := context.Background()
	owner := uuid.Must(uuid.NewV4())
	tr := seedTranscription(t, st, owner, "Hello team.", model.Segment{Start: 0, End: 1, Text: "Hello team."})

	pdf, err := s.Export(ctx, owner, tr.ID, "PDF")
	require.NoError(t, err)
	require.Equal(t, "minutes_20260304_050607.pdf", pdf.Name)
	require.Equal(t, "application/pdf", pdf.ContentType)
	require.True(t, bytes.HasPrefix(pdf.Body, []byte("%PDF")))

	docx, err := s.Export(ctx, owner, tr.ID, "docx")
	require.NoError(t, err)
	require.Equal(t, "minutes_20260304_050607.docx", docx.Name)
	require.True(t, bytes.HasPrefix(docx.Body, []byte("PK")))
}

func TestTranscripts_ExportValidatesFormatFirst(t *testing.T) {
	t.Parallel()
	st := newStore()
	s := NewTranscriptService(st.Transcriptions, nil)
	ctx := context.Background()

	_, err := s.Export(ctx, uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4()), "xml")
	require.ErrorIs(t, err, errs.ErrValidation)

	_, err = s.Export(ctx, uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4()), "pdf")
	require.ErrorIs(t, err, errs.ErrNotFound)
}
