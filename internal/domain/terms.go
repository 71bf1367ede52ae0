package domain

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultTerms is the word list offered when the caller gives none
const DefaultTerms = "um, uh, like"

// Term is one requested parasite word or phrase
type Term struct {
	Display string // trimmed, original casing; used when printing
	Key     string // trimmed and case-folded; used for matching and lookup
}

// TermSpec is the ordered list of requested terms. Duplicates are kept so that
// each gets its own report line.
type TermSpec struct {
	terms []Term
}

// FoldTerm trims and lowercases a term the same way the counter folds transcripts
func FoldTerm(s string) string {
	return fold(strings.TrimSpace(s))
}

// fold lowercases s. A Caser is stateful, so one is built per call.
func fold(s string) string {
	return cases.Lower(language.Und).String(s)
}

// ParseTerms splits a comma separated list, dropping empty entries
func ParseTerms(raw string) (*TermSpec, error) {
	return NewTermSpec(strings.Split(raw, ","))
}

// NewTermSpec builds a TermSpec from already separated entries.
// Empty and whitespace-only entries are excluded; if nothing remains the
// result is ErrNoValidTerms.
func NewTermSpec(items []string) (*TermSpec, error) {
	spec := &TermSpec{}
	for _, item := range items {
		display := strings.TrimSpace(item)
		if display == "" {
			continue
		}
		spec.terms = append(spec.terms, Term{Display: display, Key: fold(display)})
	}

	if len(spec.terms) == 0 {
		return nil, fmt.Errorf("%w: provide at least one word, comma separated", ErrNoValidTerms)
	}
	return spec, nil
}

// Terms returns the terms in input order, duplicates included
func (s *TermSpec) Terms() []Term {
	out := make([]Term, len(s.terms))
	copy(out, s.terms)
	return out
}

// Len returns the number of terms including duplicates
func (s *TermSpec) Len() int {
	return len(s.terms)
}

// Keys returns the distinct folded keys in order of first appearance
func (s *TermSpec) Keys() []string {
	seen := make(map[string]bool, len(s.terms))
	var keys []string
	for _, t := range s.terms {
		if !seen[t.Key] {
			seen[t.Key] = true
			keys = append(keys, t.Key)
		}
	}
	return keys
}

// String joins the display forms back into the comma separated input shape
func (s *TermSpec) String() string {
	parts := make([]string, len(s.terms))
	for i, t := range s.terms {
		parts[i] = t.Display
	}
	return strings.Join(parts, ", ")
}
