package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"model-serving-service/internal/core/domain"
)

// Encoding is a fixed-length token representation
type Encoding struct {
	InputIDs      []int
	AttentionMask []int
}

// Tokenizer maps normalized text to vocabulary ids padded or truncated to maxLength.
type Tokenizer struct {
	vocab     map[string]int
	padID     int
	unkID     int
	maxLength int
}

// NewTokenizer builds a tokenizer over a loaded vocabulary
func NewTokenizer(vocab *domain.Vocabulary, maxLength int) (*Tokenizer, error) {
	if vocab == nil {
		return nil, fmt.Errorf("%w: vocabulary is required", domain.ErrInvalidOptions)
	}
	if maxLength <= 0 {
		return nil, fmt.Errorf("%w: max length must be positive, got %d", domain.ErrInvalidOptions, maxLength)
	}
	padID, ok := vocab.Tokens[vocab.PadToken]
	if !ok {
		return nil, fmt.Errorf("%w: pad token %q not in vocabulary", domain.ErrArtifactCorrupt, vocab.PadToken)
	}
	unkID, ok := vocab.Tokens[vocab.UnkToken]
	if !ok {
		return nil, fmt.Errorf("%w: unk token %q not in vocabulary", domain.ErrArtifactCorrupt, vocab.UnkToken)
	}

	return &Tokenizer{
		vocab:     vocab.Tokens,
		padID:     padID,
		unkID:     unkID,
		maxLength: maxLength,
	}, nil
}

// MaxLength returns the fixed sequence length
func (t *Tokenizer) MaxLength() int {
	return t.maxLength
}

// Encode splits text on whitespace and looks every token up, unknown tokens map to unk.
func (t *Tokenizer) Encode(text string) (Encoding, error) {
	if !utf8.ValidString(text) {
		return Encoding{}, fmt.Errorf("%w: input is not valid UTF-8", domain.ErrTokenization)
	}

	enc := Encoding{
		InputIDs:      make([]int, t.maxLength),
		AttentionMask: make([]int, t.maxLength),
	}
	for i := range enc.InputIDs {
		enc.InputIDs[i] = t.padID
	}

	for i, tok := range strings.Fields(text) {
		if i >= t.maxLength {
			break
		}
		id, ok := t.vocab[tok]
		if !ok {
			id = t.unkID
		}
		enc.InputIDs[i] = id
		enc.AttentionMask[i] = 1
	}
	return enc, nil
}
