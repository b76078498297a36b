package lint

import (
	"path/filepath"
	"slices"
	"strings"
)

// Document is the host editor's view of an open file. The linter only
// observes it; the editor owns the lifecycle.
type Document struct {
	URI        string
	Path       string
	LanguageID string
	// Dirty is true while the buffer holds unsaved changes. Vale reads files
	// from disk, so a dirty buffer would be linted against stale content.
	Dirty bool
	// Root is the owning project root; empty for files outside any root.
	Root string
}

// proseLanguageIDs are the editor language identifiers accepted regardless of
// file extension.
var proseLanguageIDs = map[string]struct{}{
	"markdown":         {},
	"restructuredtext": {},
	"latex":            {},
	"plaintext":        {},
	"asciidoc":         {},
}

// Eligible reports whether doc should be linted now: saved to disk and in a
// recognized prose format. It runs on every lifecycle event, so it stays a
// plain predicate with no caching.
func Eligible(doc Document, extensions []string) bool {
	if doc.Dirty {
		return false
	}
	if _, ok := proseLanguageIDs[doc.LanguageID]; ok {
		return true
	}
	ext := strings.ToLower(filepath.Ext(doc.Path))
	return ext != "" && slices.Contains(extensions, ext)
}
