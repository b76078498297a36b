package diag

import (
	"fmt"

	"fortio.org/safecast"

	"valed/internal/vale"
)

// FromFinding derives the displayable diagnostic from one finding. Vale
// reports 1-based lines and a 1-based [start, end) column span; the end
// column is already exclusive and is not shifted. Coordinates that go
// negative after translation mean malformed tool output.
func FromFinding(f vale.Finding) (Diagnostic, error) {
	line, err := safecast.Conv[uint32](f.Line - 1)
	if err != nil {
		return Diagnostic{}, fmt.Errorf("finding %s: line %d: %w", f.Check, f.Line, err)
	}
	startCol, err := safecast.Conv[uint32](f.Span[0] - 1)
	if err != nil {
		return Diagnostic{}, fmt.Errorf("finding %s: span start %d: %w", f.Check, f.Span[0], err)
	}
	endCol, err := safecast.Conv[uint32](f.Span[1])
	if err != nil {
		return Diagnostic{}, fmt.Errorf("finding %s: span end %d: %w", f.Check, f.Span[1], err)
	}
	return Diagnostic{
		Range: Range{
			Start: Position{Line: line, Col: startCol},
			End:   Position{Line: line, Col: endCol},
		},
		Severity: severityFor(f.Severity),
		Code:     f.Check,
		Source:   SourceName,
		Message:  formatMessage(f),
	}, nil
}

// FromFindings converts every finding for one file, preserving vale's
// emission order.
func FromFindings(findings []vale.Finding) ([]Diagnostic, error) {
	if len(findings) == 0 {
		return nil, nil
	}
	out := make([]Diagnostic, 0, len(findings))
	for _, f := range findings {
		d, err := FromFinding(f)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func severityFor(severity string) Severity {
	switch severity {
	case vale.SeverityError:
		return SevError
	case vale.SeverityWarning:
		return SevWarning
	default:
		// "suggestion", and anything a future vale might add.
		return SevInfo
	}
}

func formatMessage(f vale.Finding) string {
	if f.Link != "" {
		return fmt.Sprintf("%s (%s, see %s)", f.Message, f.Check, f.Link)
	}
	return fmt.Sprintf("%s (%s)", f.Message, f.Check)
}
