package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"valed/internal/diag"
	"valed/internal/lint"
)

func sampleSummary() *lint.Summary {
	return &lint.Summary{
		Roots:        1,
		Files:        3,
		FilesFlagged: 1,
		Errors:       1,
		Warnings:     1,
		Elapsed:      25 * time.Millisecond,
		Entries: map[string][]diag.Diagnostic{
			"/work/docs/guide.md": {
				{
					Range:    diag.Range{Start: diag.Position{Line: 2, Col: 4}, End: diag.Position{Line: 2, Col: 9}},
					Severity: diag.SevError,
					Code:     "Vale.Spelling",
					Source:   diag.SourceName,
					Message:  "Did you really mean 'teh'?",
				},
				{
					Range:    diag.Range{Start: diag.Position{Line: 5, Col: 0}, End: diag.Position{Line: 5, Col: 7}},
					Severity: diag.SevWarning,
					Code:     "Vale.Repetition",
					Source:   diag.SourceName,
					Message:  "'very' is repeated",
				},
			},
		},
	}
}

func TestRenderReportJSON(t *testing.T) {
	var out bytes.Buffer
	if err := renderReportJSON(&out, sampleSummary()); err != nil {
		t.Fatalf("render: %v", err)
	}
	var payload reportPayload
	if err := json.Unmarshal(out.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Errors != 1 || payload.Warnings != 1 || payload.FilesFlagged != 1 {
		t.Fatalf("unexpected tallies: %+v", payload)
	}
	if len(payload.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(payload.Results))
	}
	res := payload.Results[0]
	if res.File != "/work/docs/guide.md" {
		t.Fatalf("unexpected file: %q", res.File)
	}
	if len(res.Findings) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(res.Findings))
	}
	first := res.Findings[0]
	if first.Line != 3 || first.Col != 5 {
		t.Fatalf("expected 1-based 3:5, got %d:%d", first.Line, first.Col)
	}
	if first.Severity != "error" || first.Check != "Vale.Spelling" {
		t.Fatalf("unexpected finding: %+v", first)
	}
}

func TestRenderReportPretty(t *testing.T) {
	var out bytes.Buffer
	renderReport(&out, sampleSummary(), false)
	text := out.String()
	for _, want := range []string{
		"guide.md",
		"3:5",
		"Did you really mean 'teh'?",
		"1 errors in 1 of 3 files",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("report missing %q:\n%s", want, text)
		}
	}
}

func TestReadUIMode(t *testing.T) {
	if _, err := readUIMode("sometimes"); err == nil {
		t.Fatal("expected error for bad mode")
	}
	mode, err := readUIMode(" ON ")
	if err != nil || mode != uiModeOn {
		t.Fatalf("expected on, got %v (%v)", mode, err)
	}
}
