package diag

// SourceName tags every diagnostic with the producing linter, so editors can
// offer per-source filtering.
const SourceName = "vale"

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevInfo is for informational diagnostics (vale "suggestion").
	SevInfo Severity = iota
	// SevWarning is for warning diagnostics.
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// Position is a 0-based line/column pair.
type Position struct {
	Line uint32
	Col  uint32
}

// Range is a half-open [Start, End) span within one file.
type Range struct {
	Start Position
	End   Position
}

// Diagnostic is the editor-displayable form of exactly one vale finding.
type Diagnostic struct {
	Range    Range
	Severity Severity
	// Code is the vale check identifier, stable so users can suppress or
	// filter individual rules downstream.
	Code    string
	Source  string
	Message string
}
