package services

import "strings"

// Matcher decides typed-answer correctness. Both strings are trimmed and
// case-folded, then compared for exact equality. No stemming, punctuation
// stripping, or partial credit: correctness is binary, and the comparison is
// total (it never fails for any pair of strings).
type Matcher struct{}

func NewMatcher() *Matcher {
	return &Matcher{}
}

// Matches reports whether candidate is an acceptable rendition of reference.
func (m *Matcher) Matches(candidate, reference string) bool {
	return normalize(candidate) == normalize(reference)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
