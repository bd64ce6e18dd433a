package services

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"model-serving-service/internal/core/domain"
)

// ============================================================================
// Construction Tests
// ============================================================================

func TestNewTextNormalizer(t *testing.T) {
	n, err := NewTextNormalizer(" English ")
	require.NoError(t, err)
	assert.Equal(t, "english", n.Language())
}

func TestNewTextNormalizer_UnknownLanguage(t *testing.T) {
	_, err := NewTextNormalizer("klingon")
	assert.ErrorIs(t, err, domain.ErrStopWordsUnavailable)
}

// ============================================================================
// Normalize Tests
// ============================================================================

func TestNormalize(t *testing.T) {
	n, err := NewTextNormalizer("english")
	require.NoError(t, err)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "question", input: "What is the status of my order?", expected: "status order"},
		{name: "punctuation and digits", input: "Hello, World! 123", expected: "hello world"},
		{name: "uppercase", input: "CANCEL ORDER", expected: "cancel order"},
		{name: "tabs and newlines", input: "change\tshipping\naddress", expected: "change shipping address"},
		{name: "information separators", input: "order\x1cstatus\x1fcancel", expected: "order status cancel"},
		{name: "only stop words", input: "The and of", expected: ""},
		{name: "empty", input: "", expected: ""},
		{name: "non ascii letters dropped", input: "Café résumé", expected: "caf rsum"},
		{name: "contraction", input: "I don't know", expected: "dont know"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, n.Normalize(tt.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	n, err := NewTextNormalizer("english")
	require.NoError(t, err)

	inputs := []string{
		"What is the status of my order?",
		"Can I change my shipping address?",
		"  multiple   spaces\there ",
		"!!!",
	}
	for _, in := range inputs {
		once := n.Normalize(in)
		assert.Equal(t, once, n.Normalize(once), in)
	}
}

func TestNormalize_OnlyLowercaseWords(t *testing.T) {
	n, err := NewTextNormalizer("english")
	require.NoError(t, err)
	shape := regexp.MustCompile(`^([a-z]+( [a-z]+)*)?$`)

	inputs := []string{
		"Order #12345 hasn't arrived!!",
		"Price: $9.99 (USD) -- 50% off",
		"\t\nNew\r\nLines\t\tand TABS\n",
		"e-mail me @ 10:30 a.m.",
		"The, the; THE.",
	}
	for _, in := range inputs {
		out := n.Normalize(in)
		assert.Regexp(t, shape, out, in)
		for _, w := range strings.Fields(out) {
			_, stop := n.stopWords[w]
			assert.False(t, stop, "%q kept stop word %q", in, w)
		}
	}
}
