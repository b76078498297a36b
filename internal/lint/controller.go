package lint

import (
	"context"
	"errors"
	"fmt"

	"valed/internal/diag"
	"valed/internal/vale"
)

// LintFunc invokes vale for one working directory and set of paths, returning
// the parsed result.
type LintFunc func(ctx context.Context, dir string, paths ...string) (vale.Result, error)

// CheckFunc runs the version gate for one project root.
type CheckFunc func(ctx context.Context, root string) error

// Notifier delivers user-visible error messages: the editor's notification
// channel, or stderr for the CLI.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to a Notifier.
type NotifierFunc func(string)

func (f NotifierFunc) Notify(message string) { f(message) }

// Controller drives the per-document lint flow: eligibility, version gate,
// a single-file vale run, and delete-before-write into the store. Each call
// is one implicit Idle -> Linting -> (Success | Failed) -> Idle pass; nothing
// is persisted between calls except the store contents and the gate cache.
type Controller struct {
	Lint       LintFunc
	Check      CheckFunc
	Store      diag.Store
	Notify     Notifier
	Extensions []string
	Logf       func(format string, args ...any)
}

// LintDocument runs one lint pass for doc. Eligibility is validated here
// rather than at the triggering event: the document may have been dirtied
// between the event firing and this call, in which case the pass is a no-op.
// Failures never propagate; they are surfaced to the user once and the
// document's entry is dropped so nothing stale stays visible.
func (c *Controller) LintDocument(ctx context.Context, doc Document) {
	if !Eligible(doc, c.Extensions) {
		return
	}
	if err := c.Check(ctx, doc.Root); err != nil {
		c.fail(doc, err)
		return
	}
	res, err := c.Lint(ctx, doc.Root, doc.Path)
	if err != nil {
		c.fail(doc, err)
		return
	}
	findings, ok := res[doc.Path]
	if !ok && len(res) == 1 {
		// Vale keys results by the path exactly as passed; when linting a
		// single document any lone entry is ours.
		for _, f := range res {
			findings = f
		}
	}
	diags, err := diag.FromFindings(findings)
	if err != nil {
		c.fail(doc, &vale.ParseError{Err: err})
		return
	}
	// Delete before write: vale's output has no entry for a clean file, so
	// skipping the delete would leave previously published diagnostics
	// behind.
	c.Store.Delete(doc.URI)
	if len(diags) > 0 {
		c.Store.Set(doc.URI, diags)
	}
}

// CloseDocument drops the published diagnostics of a closed document.
func (c *Controller) CloseDocument(doc Document) {
	c.Store.Delete(doc.URI)
}

func (c *Controller) fail(doc Document, err error) {
	c.logf("lint %s: %v", doc.Path, err)
	if c.Notify != nil {
		c.Notify.Notify(UserMessage(err))
	}
	// Fail safe: show nothing stale rather than something wrong.
	c.Store.Delete(doc.URI)
}

func (c *Controller) logf(format string, args ...any) {
	if c.Logf != nil {
		c.Logf(format, args...)
	}
}

// UserMessage renders err for a notification popup: short, actionable, no
// Go error chains.
func UserMessage(err error) string {
	var (
		incompatible *vale.IncompatibleVersionError
		noVersion    *vale.VersionParseError
		process      *vale.ProcessError
		parse        *vale.ParseError
	)
	switch {
	case errors.As(err, &incompatible):
		return fmt.Sprintf("vale %s is too old: valed needs %s or newer", incompatible.Found, incompatible.Minimum)
	case errors.As(err, &noVersion):
		return "could not determine the vale version; check your vale installation"
	case errors.As(err, &process):
		return fmt.Sprintf("failed to run vale: %v", process.Err)
	case errors.As(err, &parse):
		return fmt.Sprintf("vale produced unreadable output: %v", parse.Err)
	}
	return err.Error()
}
