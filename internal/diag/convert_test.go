package diag

import (
	"testing"

	"valed/internal/vale"
)

func TestFromFindingRange(t *testing.T) {
	d, err := FromFinding(vale.Finding{
		Check:    "vale.Editorializing",
		Message:  "Consider removing 'Pretty'",
		Line:     4,
		Span:     [2]int{2, 8},
		Severity: vale.SeverityWarning,
	})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	want := Range{
		Start: Position{Line: 3, Col: 1},
		End:   Position{Line: 3, Col: 8},
	}
	if d.Range != want {
		t.Errorf("range = %+v, want %+v", d.Range, want)
	}
	if d.Code != "vale.Editorializing" {
		t.Errorf("code = %q", d.Code)
	}
	if d.Source != SourceName {
		t.Errorf("source = %q", d.Source)
	}
}

func TestSeverityMapping(t *testing.T) {
	cases := []struct {
		in   string
		want Severity
	}{
		{vale.SeveritySuggestion, SevInfo},
		{vale.SeverityWarning, SevWarning},
		{vale.SeverityError, SevError},
		// The mapping is total: anything unrecognized lands on the
		// informational tier rather than being dropped.
		{"nonsense", SevInfo},
	}
	for _, tc := range cases {
		d, err := FromFinding(vale.Finding{Line: 1, Span: [2]int{1, 2}, Severity: tc.in})
		if err != nil {
			t.Fatalf("convert %q: %v", tc.in, err)
		}
		if d.Severity != tc.want {
			t.Errorf("severity %q = %v, want %v", tc.in, d.Severity, tc.want)
		}
	}
}

func TestMessageFormatting(t *testing.T) {
	base := vale.Finding{Check: "X", Message: "Y", Line: 1, Span: [2]int{1, 2}}

	d, err := FromFinding(base)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if d.Message != "Y (X)" {
		t.Errorf("message = %q, want %q", d.Message, "Y (X)")
	}

	base.Link = "http://z"
	d, err = FromFinding(base)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if d.Message != "Y (X, see http://z)" {
		t.Errorf("message = %q, want %q", d.Message, "Y (X, see http://z)")
	}
}

func TestFromFindingRejectsNegativeCoordinates(t *testing.T) {
	if _, err := FromFinding(vale.Finding{Line: 0, Span: [2]int{1, 2}}); err == nil {
		t.Error("line 0 should be rejected")
	}
	if _, err := FromFinding(vale.Finding{Line: 1, Span: [2]int{0, 2}}); err == nil {
		t.Error("span start 0 should be rejected")
	}
}

func TestFromFindingsPreservesOrder(t *testing.T) {
	diags, err := FromFindings([]vale.Finding{
		{Check: "A", Line: 5, Span: [2]int{1, 2}},
		{Check: "B", Line: 1, Span: [2]int{1, 2}},
	})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if len(diags) != 2 || diags[0].Code != "A" || diags[1].Code != "B" {
		t.Fatalf("order not preserved: %+v", diags)
	}
}
