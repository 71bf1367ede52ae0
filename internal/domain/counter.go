package domain

import (
	"regexp"
	"unicode"
	"unicode/utf8"
)

// Count returns how often each term of spec occurs in transcript.
//
// Matching is case-insensitive and literal: pattern metacharacters in a term
// have no special meaning. A match must sit on a word boundary at both outer
// edges, so "um" does not match inside "umbrella"; phrases use the same rule
// and only their outer edges are checked. Matches of one term never overlap.
func Count(transcript string, spec *TermSpec) *CountReport {
	text := fold(transcript)

	counts := make(map[string]int)
	for _, key := range spec.Keys() {
		counts[key] = countTerm(text, key)
	}
	return newCountReport(counts)
}

// CountTerm counts a single term in transcript using the same rules as Count.
// A term that is empty after trimming never matches.
func CountTerm(transcript, term string) int {
	key := FoldTerm(term)
	if key == "" {
		return 0
	}
	return countTerm(fold(transcript), key)
}

func countTerm(text, key string) int {
	re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(key))

	count := 0
	pos := 0
	for pos <= len(text) {
		loc := re.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]

		if atBoundary(text, start) && atBoundary(text, end) {
			count++
			pos = end
			continue
		}

		// Retry one rune further on, like a regex engine would
		_, size := utf8.DecodeRuneInString(text[start:])
		if size == 0 {
			break
		}
		pos = start + size
	}
	return count
}

// atBoundary reports whether byte offset i of text lies between a word
// character and a non-word character (the text edges count as non-word).
func atBoundary(text string, i int) bool {
	before, after := false, false
	if i > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:i])
		before = isWordRune(r)
	}
	if i < len(text) {
		r, _ := utf8.DecodeRuneInString(text[i:])
		after = isWordRune(r)
	}
	return before != after
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
