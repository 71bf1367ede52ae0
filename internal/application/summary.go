package application

// TermCount is one report line in machine-readable form
type TermCount struct {
	Term  string `json:"term"`
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Summary is the JSON shape of a Result
type Summary struct {
	RequestID    string           `json:"request_id"`
	Model        string           `json:"model"`
	Source       string           `json:"source"`
	Terms        []TermCount      `json:"terms"`
	Total        int              `json:"total"`
	Transcript   string           `json:"transcript"`
	Language     string           `json:"language,omitempty"`
	AudioSeconds float64          `json:"audio_seconds,omitempty"`
	TimingsMS    map[string]int64 `json:"timings_ms,omitempty"`
}

// Summary converts the result for JSON output. Terms keep input order and
// duplicates.
func (r *Result) Summary() Summary {
	terms := r.Terms.Terms()
	lines := make([]TermCount, len(terms))
	for i, t := range terms {
		lines[i] = TermCount{Term: t.Display, Key: t.Key, Count: r.Report.Get(t.Key)}
	}

	s := Summary{
		RequestID: r.RequestID,
		Model:     r.Model,
		Source:    r.Source.String(),
		Terms:     lines,
		Total:     r.Report.Total(),
	}
	if r.Transcript != nil {
		s.Transcript = r.Transcript.ToText()
		s.Language = r.Transcript.Language
	}
	if r.Audio != nil {
		s.AudioSeconds = r.Audio.Duration.Seconds()
	}
	if len(r.Timings) > 0 {
		s.TimingsMS = make(map[string]int64, len(r.Timings))
		for _, t := range r.Timings {
			s.TimingsMS[string(t.Stage)] = t.Elapsed.Milliseconds()
		}
	}
	return s
}
