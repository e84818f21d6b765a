package automaton

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Tokenizer splits input into alphabet symbols by greedy longest match.
//
// Candidates are tried longest first, measured in runes; among symbols of
// equal length the one that came first in the caller's alphabet wins.
// Matching compares bytes, so invalid UTF-8 only matches itself. Positions in
// errors are rune offsets into the input, not byte offsets.
type Tokenizer struct {
	symbols []string
}

// SortAlphabet returns a copy of alphabet ordered by descending rune length.
// The sort is stable: equal-length symbols keep their relative order.
func SortAlphabet(alphabet []string) []string {
	sorted := make([]string, len(alphabet))
	copy(sorted, alphabet)
	sort.SliceStable(sorted, func(i, j int) bool {
		return utf8.RuneCountInString(sorted[i]) > utf8.RuneCountInString(sorted[j])
	})
	return sorted
}

// NewTokenizer creates a Tokenizer over the given alphabet.
func NewTokenizer(alphabet []string) *Tokenizer {
	return &Tokenizer{symbols: SortAlphabet(alphabet)}
}

// Symbols returns the candidate order used for matching.
func (t *Tokenizer) Symbols() []string {
	out := make([]string, len(t.symbols))
	copy(out, t.symbols)
	return out
}

// Tokenize splits input into symbols covering it exactly. Empty input yields
// an empty, non-nil slice. If no symbol matches at some position a
// *TokenizeError is returned.
func (t *Tokenizer) Tokenize(input string) ([]string, error) {
	tokens := make([]string, 0, utf8.RuneCountInString(input))
	for off := 0; off < len(input); {
		sym, ok := t.matchAt(input[off:])
		if !ok {
			return nil, &TokenizeError{
				Position:  utf8.RuneCountInString(input[:off]),
				Remainder: input[off:],
			}
		}
		tokens = append(tokens, sym)
		off += len(sym)
	}
	return tokens, nil
}

// matchAt returns the first candidate that is a prefix of rest.
func (t *Tokenizer) matchAt(rest string) (string, bool) {
	for _, sym := range t.symbols {
		// Empty symbols would never advance.
		if sym != "" && strings.HasPrefix(rest, sym) {
			return sym, true
		}
	}
	return "", false
}
