package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExtensionListDefaults(t *testing.T) {
	var cfg Config
	got := cfg.ExtensionList()
	if len(got) != len(DefaultExtensions) {
		t.Fatalf("expected defaults, got %v", got)
	}
}

func TestExtensionListNormalization(t *testing.T) {
	cfg := Config{Extensions: []string{"md", ".RST", " txt ", ""}}
	got := cfg.ExtensionList()
	want := []string{".md", ".rst", ".txt"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestResolveValePath(t *testing.T) {
	var cfg Config
	if got := cfg.ResolveValePath("/project"); got != "" {
		t.Errorf("empty override should stay empty, got %q", got)
	}
	cfg.ValePath = "/usr/local/bin/vale"
	if got := cfg.ResolveValePath("/project"); got != "/usr/local/bin/vale" {
		t.Errorf("absolute override: got %q", got)
	}
	cfg.ValePath = filepath.Join("bin", "vale")
	want := filepath.Join("/project", "bin", "vale")
	if got := cfg.ResolveValePath("/project"); got != want {
		t.Errorf("relative override: got %q, want %q", got, want)
	}
}

func TestFindWalksUpward(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "docs", "guide")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	cfgPath := filepath.Join(root, FileName)
	if err := os.WriteFile(cfgPath, []byte("vale_path = \"bin/vale\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	found, ok, err := Find(nested)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !ok {
		t.Fatal("expected to find a config above the nested dir")
	}
	if found != cfgPath {
		t.Errorf("found %q, want %q", found, cfgPath)
	}
}

func TestLoadDir(t *testing.T) {
	root := t.TempDir()
	body := `
vale_path = "tools/vale"
extensions = ["md", "adoc"]
exclude = ["**/node_modules/**"]
min_vale_version = "2.0.0"
`
	if err := os.WriteFile(filepath.Join(root, FileName), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadDir(root)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ValePath != "tools/vale" {
		t.Errorf("vale_path = %q", cfg.ValePath)
	}
	if cfg.MinValeVersion != "2.0.0" {
		t.Errorf("min_vale_version = %q", cfg.MinValeVersion)
	}
	if len(cfg.Exclude) != 1 {
		t.Errorf("exclude = %v", cfg.Exclude)
	}

	// A directory with no config anywhere above it loads the zero value.
	empty, err := LoadDir(t.TempDir())
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if empty.ValePath != "" {
		t.Errorf("expected zero config, got %+v", empty)
	}
}
