package services

import (
	"fmt"
	"strings"
	"unicode"

	"model-serving-service/internal/core/domain"
)

// TextNormalizer cleans raw text before tokenization.
// It is immutable after construction and safe for concurrent use.
type TextNormalizer struct {
	language  string
	stopWords map[string]struct{}
}

// NewTextNormalizer loads the stop-word set for language.
func NewTextNormalizer(language string) (*TextNormalizer, error) {
	language = strings.ToLower(strings.TrimSpace(language))
	words, ok := stopWordCorpora[language]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrStopWordsUnavailable, language)
	}

	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return &TextNormalizer{language: language, stopWords: set}, nil
}

// Language returns the configured stop-word language
func (n *TextNormalizer) Language() string {
	return n.language
}

// Normalize keeps ASCII letters and whitespace, lowercases, drops stop words
// and joins the remaining tokens with single spaces. The information
// separators U+001C..U+001F count as whitespace.
func (n *TextNormalizer) Normalize(text string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
			return unicode.ToLower(r)
		case unicode.IsSpace(r), r >= 0x1c && r <= 0x1f:
			return ' '
		default:
			return -1
		}
	}, text)

	fields := strings.Fields(cleaned)
	kept := fields[:0]
	for _, f := range fields {
		if _, stop := n.stopWords[f]; !stop {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, " ")
}
