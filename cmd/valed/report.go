package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"

	"valed/internal/diag"
	"valed/internal/lint"
)

var (
	reportPathColor       = color.New(color.FgCyan, color.Bold)
	reportErrorColor      = color.New(color.FgRed, color.Bold)
	reportWarningColor    = color.New(color.FgYellow)
	reportSuggestionColor = color.New(color.FgBlue)
	reportCheckColor      = color.New(color.Faint)
)

func applyColorMode(value string) error {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		// fatih/color already follows NO_COLOR and terminal detection
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
	return nil
}

func renderReport(out io.Writer, summary *lint.Summary, quiet bool) {
	files := make([]string, 0, len(summary.Entries))
	for file := range summary.Entries {
		files = append(files, file)
	}
	sort.Strings(files)

	for _, file := range files {
		fmt.Fprintln(out, reportPathColor.Sprint(displayPath(file)))
		for _, d := range summary.Entries[file] {
			fmt.Fprintf(out, "  %4d:%-4d %s  %s %s\n",
				d.Range.Start.Line+1,
				d.Range.Start.Col+1,
				severityColor(d.Severity).Sprintf("%-10s", strings.ToLower(d.Severity.String())),
				d.Message,
				reportCheckColor.Sprint(d.Code),
			)
		}
		fmt.Fprintln(out)
	}

	if quiet {
		return
	}
	fmt.Fprintf(out, "%d suggestions, %d warnings, %d errors in %d of %d files (%.1f ms)\n",
		summary.Suggestions,
		summary.Warnings,
		summary.Errors,
		summary.FilesFlagged,
		summary.Files,
		float64(summary.Elapsed.Microseconds())/1000.0,
	)
}

func severityColor(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return reportErrorColor
	case diag.SevWarning:
		return reportWarningColor
	default:
		return reportSuggestionColor
	}
}

// displayPath prefers a path relative to the working directory when that is
// shorter than the absolute form.
func displayPath(path string) string {
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(cwd, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

type reportFinding struct {
	Line     uint32 `json:"line"`
	Col      uint32 `json:"col"`
	EndLine  uint32 `json:"end_line"`
	EndCol   uint32 `json:"end_col"`
	Severity string `json:"severity"`
	Check    string `json:"check"`
	Message  string `json:"message"`
}

type reportFile struct {
	File     string          `json:"file"`
	Findings []reportFinding `json:"findings"`
}

type reportPayload struct {
	Roots        int          `json:"roots"`
	Files        int          `json:"files"`
	FilesFlagged int          `json:"files_flagged"`
	Errors       int          `json:"errors"`
	Warnings     int          `json:"warnings"`
	Suggestions  int          `json:"suggestions"`
	ElapsedMS    float64      `json:"elapsed_ms"`
	Results      []reportFile `json:"results"`
}

func renderReportJSON(out io.Writer, summary *lint.Summary) error {
	payload := reportPayload{
		Roots:        summary.Roots,
		Files:        summary.Files,
		FilesFlagged: summary.FilesFlagged,
		Errors:       summary.Errors,
		Warnings:     summary.Warnings,
		Suggestions:  summary.Suggestions,
		ElapsedMS:    float64(summary.Elapsed.Microseconds()) / 1000.0,
		Results:      make([]reportFile, 0, len(summary.Entries)),
	}
	files := make([]string, 0, len(summary.Entries))
	for file := range summary.Entries {
		files = append(files, file)
	}
	sort.Strings(files)
	for _, file := range files {
		entry := reportFile{File: file}
		for _, d := range summary.Entries[file] {
			entry.Findings = append(entry.Findings, reportFinding{
				Line:     d.Range.Start.Line + 1,
				Col:      d.Range.Start.Col + 1,
				EndLine:  d.Range.End.Line + 1,
				EndCol:   d.Range.End.Col,
				Severity: strings.ToLower(d.Severity.String()),
				Check:    d.Code,
				Message:  d.Message,
			})
		}
		payload.Results = append(payload.Results, entry)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
