package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigValues(t *testing.T) {
	cfg := DefaultConfig()
	if cfg == nil {
		t.Fatalf("DefaultConfig() returned nil")
	}

	if !cfg.IsRecognizedTag("OpenAPI") {
		t.Errorf("DefaultConfig() should recognize @OpenAPI")
	}
	if !cfg.IsRecognizedTag("package") {
		t.Errorf("DefaultConfig() should recognize @package")
	}
	if cfg.Analysis.LoopMergeIterations != 3 {
		t.Errorf("Analysis.LoopMergeIterations = %d, want 3", cfg.Analysis.LoopMergeIterations)
	}
	if cfg.Analysis.Pass3Reruns != 1 {
		t.Errorf("Analysis.Pass3Reruns = %d, want 1", cfg.Analysis.Pass3Reruns)
	}
}

func TestLoadMissingFileReturnsDefaultConfig(t *testing.T) {
	tempDir := t.TempDir()
	missing := filepath.Join(tempDir, "no-such-config.yaml")

	cfg, err := Load(missing)
	if err != nil {
		t.Fatalf("Load(%q) returned error: %v", missing, err)
	}
	if cfg == nil {
		t.Fatalf("Load(%q) returned nil config", missing)
	}
	if !cfg.IsRecognizedTag("log") {
		t.Errorf("Load(missing) should fall back to default recognized tags")
	}
}

func TestLoadParsesYAMLAndValidates(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "config.yaml")

	yamlContent := []byte(`
phpdoc:
  recognized_tags: ["OpenAPI", "internal-only"]
analysis:
  loop_merge_iterations: 5
  pass3_reruns: 2
`)
	if err := os.WriteFile(path, yamlContent, 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(%q) returned error: %v", path, err)
	}

	if !cfg.IsRecognizedTag("internal-only") {
		t.Errorf("Load should pick up custom recognized tag")
	}
	if cfg.IsRecognizedTag("package") {
		t.Errorf("Load should replace, not merge, the default recognized-tag list")
	}
	if cfg.Analysis.LoopMergeIterations != 5 {
		t.Errorf("Analysis.LoopMergeIterations = %d, want 5", cfg.Analysis.LoopMergeIterations)
	}
	if cfg.Analysis.Pass3Reruns != 2 {
		t.Errorf("Analysis.Pass3Reruns = %d, want 2", cfg.Analysis.Pass3Reruns)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := DefaultConfig()

	t.Setenv("PHPANALYZE_RECOGNIZED_TAGS", "Foo, Bar")
	t.Setenv("PHPANALYZE_LOOP_MERGE_ITERATIONS", "7")
	t.Setenv("PHPANALYZE_PASS3_RERUNS", "0")

	applyEnvOverrides(cfg)

	if len(cfg.PHPDoc.RecognizedTags) != 2 || cfg.PHPDoc.RecognizedTags[0] != "Foo" || cfg.PHPDoc.RecognizedTags[1] != "Bar" {
		t.Errorf("RecognizedTags = %#v, want [Foo Bar]", cfg.PHPDoc.RecognizedTags)
	}
	if cfg.Analysis.LoopMergeIterations != 7 {
		t.Errorf("Analysis.LoopMergeIterations = %d, want 7", cfg.Analysis.LoopMergeIterations)
	}
	if cfg.Analysis.Pass3Reruns != 0 {
		t.Errorf("Analysis.Pass3Reruns = %d, want 0", cfg.Analysis.Pass3Reruns)
	}
}

func TestValidateRejectsNegativeBounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Analysis.LoopMergeIterations = 0
	if err := validate(cfg); err == nil {
		t.Fatalf("validate(cfg with 0 loop iterations) = nil error, want non-nil")
	}

	cfg = DefaultConfig()
	cfg.Analysis.Pass3Reruns = -1
	if err := validate(cfg); err == nil {
		t.Fatalf("validate(cfg with negative pass3 reruns) = nil error, want non-nil")
	}
}
