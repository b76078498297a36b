package vale

import (
	"fmt"
	"strings"
)

// ProcessError reports a failure to launch or drive the vale subprocess.
// Lint findings never surface here: vale is invoked with --no-exit, so a
// non-zero exit status from the tool is not a failure.
type ProcessError struct {
	Cmd []string
	Dir string
	Err error
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("vale process failed: %v (command: %s, dir: %s)", e.Err, strings.Join(e.Cmd, " "), e.Dir)
}

func (e *ProcessError) Unwrap() error { return e.Err }

// ParseError reports vale output that is not well-formed JSON.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse vale output: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// VersionParseError reports `vale --version` output with no recognizable
// version line.
type VersionParseError struct {
	Output string
}

func (e *VersionParseError) Error() string {
	return fmt.Sprintf("could not find a version line in vale --version output: %q", e.Output)
}

// IncompatibleVersionError reports a vale binary older than the minimum
// supported release.
type IncompatibleVersionError struct {
	Found   string
	Minimum string
}

func (e *IncompatibleVersionError) Error() string {
	return fmt.Sprintf("vale %s is older than the minimum supported version %s", e.Found, e.Minimum)
}
