package nlp

import (
	"strings"

	"github.com/and161185/minuteminds/internal/model"
)

var itemKeywords = []string{"action:", "action item", "todo", "to do", "will", "should", "agree", "decide", "decision"}

// forms of the modal "will" as tokenized from will, 'll and won't
var willForms = map[string]bool{"will": true, "'ll": true, "wo": true}

// KeyItems picks sentences that read as decisions or action items.
//
// A sentence containing one of the item keywords (case-insensitive substring) is an
// item assigned to its first PERSON or ORG entity. Otherwise a sentence in which a
// form of "will" follows a pronoun or noun is an item assigned to its first PERSON.
func KeyItems(sentences []Sentence) []model.KeyItem {
	items := []model.KeyItem{}
	for _, s := range sentences {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		lower := strings.ToLower(text)
		switch {
		case containsAny(lower, itemKeywords):
			items = append(items, newItem(text, firstEntity(s.Entities, "PERSON", "ORG")))
		case hasSubjectWill(s.Tokens):
			items = append(items, newItem(text, firstEntity(s.Entities, "PERSON")))
		}
	}
	return items
}

func newItem(text string, assignee *string) model.KeyItem {
	return model.KeyItem{Text: text, Assignee: assignee, Status: model.KeyItemStatusOpen}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func firstEntity(ents []Entity, labels ...string) *string {
	for _, e := range ents {
		for _, l := range labels {
			if e.Label == l {
				name := e.Text
				return &name
			}
		}
	}
	return nil
}

func hasSubjectWill(tokens []Token) bool {
	for i := 1; i < len(tokens); i++ {
		if !willForms[strings.ToLower(tokens[i].Text)] || tokens[i].Tag != "MD" {
			continue
		}
		if isSubject(tokens[i-1].Tag) {
			return true
		}
	}
	return false
}

func isSubject(tag string) bool {
	switch tag {
	case "PRP", "NN", "NNS", "NNP", "NNPS":
		return true
	}
	return false
}
