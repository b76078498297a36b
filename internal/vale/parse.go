package vale

import (
	"bytes"
	"encoding/json"
)

// Severity tiers as vale emits them.
const (
	SeveritySuggestion = "suggestion"
	SeverityWarning    = "warning"
	SeverityError      = "error"
)

// Finding is one issue reported by vale for one file. Line is 1-based and
// Span is a 1-based, inclusive-exclusive [start, end) column range. Findings
// are immutable once parsed.
type Finding struct {
	Check       string `json:"Check"`
	Context     string `json:"Context"`
	Description string `json:"Description"`
	Line        int    `json:"Line"`
	Link        string `json:"Link"`
	Message     string `json:"Message"`
	Span        [2]int `json:"Span"`
	Severity    string `json:"Severity"`
}

// Result maps a file path to the findings vale emitted for it, in emission
// order. Clean files have no entry.
type Result map[string][]Finding

// Parse decodes vale's JSON output. Empty output counts as a clean run;
// anything else that is not a well-formed mapping fails with *ParseError.
func Parse(stdout []byte) (Result, error) {
	trimmed := bytes.TrimSpace(stdout)
	if len(trimmed) == 0 {
		return Result{}, nil
	}
	var res Result
	if err := json.Unmarshal(trimmed, &res); err != nil {
		return nil, &ParseError{Err: err}
	}
	if res == nil {
		res = Result{}
	}
	return res, nil
}
