package vale

import (
	"errors"
	"testing"
)

const sampleOutput = `{
  "README.md": [
    {
      "Check": "vale.Editorializing",
      "Context": "Pretty easy, right?",
      "Description": "",
      "Line": 4,
      "Link": "",
      "Message": "Consider removing 'Pretty'",
      "Span": [2, 8],
      "Severity": "warning"
    },
    {
      "Check": "vale.Annotations",
      "Context": "TODO: fix this",
      "Description": "",
      "Line": 9,
      "Link": "https://example.com/style",
      "Message": "'TODO' left in text",
      "Span": [1, 5],
      "Severity": "error"
    }
  ],
  "docs/guide.md": [
    {
      "Check": "vale.Hedging",
      "Context": "It seems that",
      "Description": "",
      "Line": 1,
      "Link": "",
      "Message": "Consider removing 'seems'",
      "Span": [4, 9],
      "Severity": "suggestion"
    }
  ]
}`

func TestParse(t *testing.T) {
	res, err := Parse([]byte(sampleOutput))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(res) != 2 {
		t.Fatalf("expected 2 files, got %d", len(res))
	}
	findings := res["README.md"]
	if len(findings) != 2 {
		t.Fatalf("expected 2 findings for README.md, got %d", len(findings))
	}
	first := findings[0]
	if first.Check != "vale.Editorializing" {
		t.Errorf("check = %q", first.Check)
	}
	if first.Line != 4 {
		t.Errorf("line = %d", first.Line)
	}
	if first.Span != [2]int{2, 8} {
		t.Errorf("span = %v", first.Span)
	}
	if first.Severity != SeverityWarning {
		t.Errorf("severity = %q", first.Severity)
	}
	if findings[1].Link != "https://example.com/style" {
		t.Errorf("link = %q", findings[1].Link)
	}
}

func TestParsePreservesOrder(t *testing.T) {
	res, err := Parse([]byte(sampleOutput))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	findings := res["README.md"]
	if findings[0].Line != 4 || findings[1].Line != 9 {
		t.Fatalf("emission order not preserved: lines %d, %d", findings[0].Line, findings[1].Line)
	}
}

func TestParseCleanRun(t *testing.T) {
	for _, input := range []string{"{}", "", "  \n"} {
		res, err := Parse([]byte(input))
		if err != nil {
			t.Fatalf("parse %q: %v", input, err)
		}
		if len(res) != 0 {
			t.Fatalf("parse %q: expected empty result, got %d entries", input, len(res))
		}
	}
}

func TestParseMalformed(t *testing.T) {
	for _, input := range []string{"E100 something went wrong", "[1,2,3]", "{\"a\":"} {
		_, err := Parse([]byte(input))
		if err == nil {
			t.Fatalf("parse %q: expected error", input)
		}
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Fatalf("parse %q: expected *ParseError, got %T", input, err)
		}
	}
}
