package vale

import (
	"context"
	"errors"
	"testing"
)

func TestParseVersion(t *testing.T) {
	cases := []struct {
		output string
		want   string
		ok     bool
	}{
		{"vale version 0.7.2", "0.7.2", true},
		{"vale version master", "master", true},
		{"some banner\nvale version 1.4.0\nmore text", "1.4.0", true},
		{"vale version 0.7.2\r", "0.7.2", true},
		{"vale v0.7.2", "", false},
		{"", "", false},
		{"version 0.7.2", "", false},
	}
	for _, tc := range cases {
		got, err := ParseVersion(tc.output)
		if tc.ok {
			if err != nil {
				t.Errorf("ParseVersion(%q): %v", tc.output, err)
				continue
			}
			if got != tc.want {
				t.Errorf("ParseVersion(%q) = %q, want %q", tc.output, got, tc.want)
			}
			continue
		}
		var vpe *VersionParseError
		if !errors.As(err, &vpe) {
			t.Errorf("ParseVersion(%q): expected *VersionParseError, got %v", tc.output, err)
		}
	}
}

func TestCheckVersion(t *testing.T) {
	if err := CheckVersion("0.7.2", MinVersion); err != nil {
		t.Errorf("0.7.2 should satisfy %s: %v", MinVersion, err)
	}
	if err := CheckVersion("1.4.0", MinVersion); err != nil {
		t.Errorf("1.4.0 should satisfy %s: %v", MinVersion, err)
	}
	if err := CheckVersion("master", MinVersion); err != nil {
		t.Errorf("master sentinel should always pass: %v", err)
	}
	err := CheckVersion("0.7.1", MinVersion)
	var ive *IncompatibleVersionError
	if !errors.As(err, &ive) {
		t.Fatalf("0.7.1: expected *IncompatibleVersionError, got %v", err)
	}
	if ive.Found != "0.7.1" || ive.Minimum != MinVersion {
		t.Errorf("unexpected error fields: %+v", ive)
	}
}

func TestGateCachesPassingRoots(t *testing.T) {
	calls := 0
	gate := NewGate(func(ctx context.Context, dir string, args ...string) ([]byte, error) {
		calls++
		return []byte("vale version 1.0.0\n"), nil
	}, "")

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := gate.Check(ctx, "/project"); err != nil {
			t.Fatalf("check %d: %v", i, err)
		}
	}
	if calls != 1 {
		t.Errorf("expected 1 probe for a cached root, got %d", calls)
	}
	if err := gate.Check(ctx, "/other"); err != nil {
		t.Fatalf("second root: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected a fresh probe per root, got %d calls", calls)
	}
}

func TestGateDoesNotCacheFailures(t *testing.T) {
	outputs := []string{"vale version 0.7.1", "vale version 0.7.2"}
	calls := 0
	gate := NewGate(func(ctx context.Context, dir string, args ...string) ([]byte, error) {
		out := outputs[calls]
		calls++
		return []byte(out), nil
	}, "")

	ctx := context.Background()
	err := gate.Check(ctx, "/project")
	var ive *IncompatibleVersionError
	if !errors.As(err, &ive) {
		t.Fatalf("expected incompatible version, got %v", err)
	}
	// The upgraded binary must be picked up without a process restart.
	if err := gate.Check(ctx, "/project"); err != nil {
		t.Fatalf("after upgrade: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 probes, got %d", calls)
	}
}
