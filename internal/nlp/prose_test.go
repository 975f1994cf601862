package nlp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProse_SplitsSentencesAndTags(t *testing.T) {
	p, err := NewProse()
	require.NoError(t, err)

	sents, err := p.Analyze(context.Background(), "We will ship on Friday. The demo went well.")
	require.NoError(t, err)
	require.Len(t, sents, 2)
	require.Equal(t, "We will ship on Friday.", sents[0].Text)
	require.NotEmpty(t, sents[0].Tokens)
	require.Equal(t, "We", sents[0].Tokens[0].Text)
}

func TestProse_CanceledContext(t *testing.T) {
	p, err := NewProse()
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = p.Analyze(ctx, "One. Two.")
	require.ErrorIs(t, err, context.Canceled)
}
