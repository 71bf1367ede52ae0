package domain

import (
	"fmt"
	"strings"
)

// CountReport maps folded terms to their occurrence counts
type CountReport struct {
	counts map[string]int
	total  int
}

func newCountReport(counts map[string]int) *CountReport {
	total := 0
	for _, n := range counts {
		total += n
	}
	return &CountReport{counts: counts, total: total}
}

// Get returns the count for a term, folding it first
func (r *CountReport) Get(term string) int {
	return r.counts[FoldTerm(term)]
}

// Total is the sum of the counts of all distinct terms
func (r *CountReport) Total() int {
	return r.total
}

// Counts returns a copy of the folded term -> count mapping
func (r *CountReport) Counts() map[string]int {
	out := make(map[string]int, len(r.counts))
	for k, v := range r.counts {
		out[k] = v
	}
	return out
}

// ReportHeader returns the first line of a formatted report
func ReportHeader(model string) string {
	return fmt.Sprintf("Parasite word counts (model: %s):", model)
}

// Format renders the report as plain text: a header, one "<term>: <count>"
// line per requested term in input order, a blank line, then the total.
func (r *CountReport) Format(spec *TermSpec, model string) string {
	lines := make([]string, 0, spec.Len()+3)
	lines = append(lines, ReportHeader(model))
	for _, t := range spec.Terms() {
		lines = append(lines, fmt.Sprintf("%s: %d", t.Display, r.counts[t.Key]))
	}
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("Total parasite words: %d", r.total))
	return strings.Join(lines, "\n")
}
