package vale

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// DefaultBin is the well-known name of the vale executable, resolved via PATH
// when no explicit path is configured.
const DefaultBin = "vale"

// DefaultMaxOutput caps captured stdout. Large multi-file runs produce big
// JSON payloads; the ceiling exists so a runaway process cannot exhaust
// memory, not to trim legitimate output.
const DefaultMaxOutput int64 = 32 << 20

var errOutputLimit = errors.New("output exceeds buffer ceiling")

// Runner invokes the vale subprocess.
type Runner struct {
	// Bin is the vale executable. Empty means DefaultBin.
	Bin string
	// MaxOutput overrides the stdout ceiling. Zero means DefaultMaxOutput.
	MaxOutput int64
	// Logf receives diagnostic log lines. Nil disables logging.
	Logf func(format string, args ...any)
}

// Run executes vale with args inside dir (the owning project root; empty
// means the current process directory) and returns captured stdout.
//
// A non-zero exit status is not an error: vale is always driven with
// --no-exit, and failures are communicated through its output. Only an
// inability to start or drive the process surfaces, as *ProcessError.
func (r *Runner) Run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	bin := r.Bin
	if bin == "" {
		bin = DefaultBin
	}
	limit := r.MaxOutput
	if limit <= 0 {
		limit = DefaultMaxOutput
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	stdout := &capWriter{limit: limit}
	var stderr bytes.Buffer
	cmd.Stdout = stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		perr := &ProcessError{
			Cmd: append([]string{bin}, args...),
			Dir: dir,
			Err: err,
		}
		r.logf("%v", perr)
		return nil, perr
	}
	return stdout.buf.Bytes(), nil
}

// Lint runs vale over paths in cross-file mode and parses the result.
// The working directory must be the project root owning every path.
func (r *Runner) Lint(ctx context.Context, dir string, paths ...string) (Result, error) {
	args := append([]string{"--no-exit", "--output", "JSON"}, paths...)
	out, err := r.Run(ctx, dir, args...)
	if err != nil {
		return nil, err
	}
	return Parse(out)
}

func (r *Runner) logf(format string, args ...any) {
	if r.Logf != nil {
		r.Logf(format, args...)
	}
}

// capWriter buffers writes up to a hard limit. Exceeding the limit fails the
// write, which in turn fails the process run.
type capWriter struct {
	buf   bytes.Buffer
	limit int64
}

func (w *capWriter) Write(p []byte) (int, error) {
	if int64(w.buf.Len())+int64(len(p)) > w.limit {
		return 0, errOutputLimit
	}
	return w.buf.Write(p)
}
