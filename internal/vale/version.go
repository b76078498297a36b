package vale

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/mod/semver"
)

// MinVersion is the oldest vale release whose multi-argument invocations
// behave correctly. Earlier releases mishandle argument lists, which the
// workspace batch run depends on.
const MinVersion = "0.7.2"

// devVersion is the sentinel vale reports when built from source.
const devVersion = "master"

var versionLine = regexp.MustCompile(`^vale version (.+)$`)

// ParseVersion extracts the version token from `vale --version` output.
// Output with no matching line fails with *VersionParseError.
func ParseVersion(output string) (string, error) {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if m := versionLine.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[1]), nil
		}
	}
	return "", &VersionParseError{Output: output}
}

// CheckVersion validates a version token against the minimum supported
// release. The "master" sentinel is always accepted.
func CheckVersion(token, minimum string) error {
	if token == devVersion {
		return nil
	}
	if minimum == "" {
		minimum = MinVersion
	}
	if semver.Compare(canonical(token), canonical(minimum)) < 0 {
		return &IncompatibleVersionError{Found: token, Minimum: minimum}
	}
	return nil
}

func canonical(v string) string {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

// RunFunc abstracts the subprocess call so the gate can be exercised without
// a real vale binary.
type RunFunc func(ctx context.Context, dir string, args ...string) ([]byte, error)

// Gate is the one-shot compatibility check run before any linting. A passing
// result is cached per project root for the lifetime of the process and never
// invalidated. Failures are not cached, so fixing the vale installation and
// retrying recovers without a restart.
type Gate struct {
	run     RunFunc
	minimum string

	mu     sync.Mutex
	passed map[string]struct{}
}

// NewGate builds a gate over run with the given minimum version. An empty
// minimum means MinVersion.
func NewGate(run RunFunc, minimum string) *Gate {
	if minimum == "" {
		minimum = MinVersion
	}
	return &Gate{
		run:     run,
		minimum: minimum,
		passed:  make(map[string]struct{}),
	}
}

// Check verifies that the vale binary serving root is recent enough.
func (g *Gate) Check(ctx context.Context, root string) error {
	g.mu.Lock()
	_, ok := g.passed[root]
	g.mu.Unlock()
	if ok {
		return nil
	}

	out, err := g.run(ctx, root, "--version")
	if err != nil {
		return err
	}
	token, err := ParseVersion(string(out))
	if err != nil {
		return err
	}
	if err := CheckVersion(token, g.minimum); err != nil {
		return err
	}

	g.mu.Lock()
	g.passed[root] = struct{}{}
	g.mu.Unlock()
	return nil
}
