package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the per-workspace configuration file, found by upward search
// from the workspace root.
const FileName = "valed.toml"

// DefaultExtensions covers the prose formats vale understands out of the box.
var DefaultExtensions = []string{".md", ".markdown", ".rst", ".tex", ".txt", ".adoc", ".asciidoc"}

// Config holds every setting valed consumes. The zero value works; Load and
// the LSP settings overlay fill it in.
type Config struct {
	// ValePath overrides the vale binary. A relative path resolves against
	// the owning project root; empty falls back to `vale` on PATH.
	ValePath string `toml:"vale_path"`
	// Extensions recognized as prose documents. Empty means DefaultExtensions.
	Extensions []string `toml:"extensions"`
	// Exclude lists doublestar glob patterns (relative to each root) skipped
	// during workspace discovery, e.g. "**/node_modules/**" or "build/**".
	Exclude []string `toml:"exclude"`
	// MinValeVersion overrides the minimum supported vale release.
	MinValeVersion string `toml:"min_vale_version"`
}

// ExtensionList returns the configured extensions, normalized to lower case
// with a leading dot, falling back to the defaults.
func (c Config) ExtensionList() []string {
	if len(c.Extensions) == 0 {
		return DefaultExtensions
	}
	out := make([]string, 0, len(c.Extensions))
	for _, ext := range c.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	if len(out) == 0 {
		return DefaultExtensions
	}
	return out
}

// ResolveValePath returns the binary to invoke for root. Relative overrides
// resolve against root so a workspace can pin its own vale build.
func (c Config) ResolveValePath(root string) string {
	if c.ValePath == "" {
		return ""
	}
	if filepath.IsAbs(c.ValePath) || root == "" {
		return c.ValePath
	}
	return filepath.Join(root, c.ValePath)
}

// Find walks upward from startDir looking for valed.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load reads and decodes one configuration file.
func Load(path string) (Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	return cfg, nil
}

// LoadDir finds and loads the configuration governing startDir. A missing
// file yields the zero Config, not an error.
func LoadDir(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return Config{}, err
	}
	return Load(path)
}
