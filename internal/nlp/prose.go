// Package nlp splits transcripts into tagged sentences and finds action items in them.
package nlp

import (
	"context"
	"fmt"

	"github.com/jdkato/prose/v2"
)

// Token is a word with its Penn Treebank part-of-speech tag.
type Token struct {
	Text string
	Tag  string
}

// Entity is a named entity such as PERSON or GPE.
type Entity struct {
	Text  string
	Label string
}

// Sentence is one sentence with its tokens and entities.
type Sentence struct {
	Text     string
	Tokens   []Token
	Entities []Entity
}

// Analyzer segments and tags text.
type Analyzer interface {
	Analyze(ctx context.Context, text string) ([]Sentence, error)
}

// Prose is an Analyzer backed by github.com/jdkato/prose/v2.
type Prose struct{}

// NewProse loads the prose models. The first document forces model initialization
// so a broken install fails here and not on the first request.
func NewProse() (*Prose, error) {
	if _, err := prose.NewDocument("Ann will call Bob."); err != nil {
		return nil, fmt.Errorf("load prose models: %w", err)
	}
	return &Prose{}, nil
}

// Analyze returns the sentences of text in order.
func (p *Prose) Analyze(ctx context.Context, text string) ([]Sentence, error) {
	doc, err := prose.NewDocument(text, prose.WithTagging(false), prose.WithExtraction(false))
	if err != nil {
		return nil, err
	}
	out := make([]Sentence, 0, len(doc.Sentences()))
	for _, s := range doc.Sentences() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sd, err := prose.NewDocument(s.Text, prose.WithSegmentation(false))
		if err != nil {
			return nil, err
		}
		sent := Sentence{Text: s.Text}
		for _, tok := range sd.Tokens() {
			sent.Tokens = append(sent.Tokens, Token{Text: tok.Text, Tag: tok.Tag})
		}
		for _, ent := range sd.Entities() {
			sent.Entities = append(sent.Entities, Entity{Text: ent.Text, Label: ent.Label})
		}
		out = append(out, sent)
	}
	return out, nil
}
