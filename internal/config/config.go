// Package config implements the run-wide configuration of spec §6: the
// set of recognized PHPDoc tags (so an unusual project convention like
// "@OpenAPI" doesn't get flattened into a bare General/Anything entry)
// plus the handful of bounded analysis flags spec §4.5/§5 call out
// (the loop-merge fixed-point bound, the pass-3 rerun count). Config is
// immutable once loaded, matching spec §6's "Configuration is
// immutable per run".
//
// Grounded on internal/config/config.go's struct-of-structs-with-yaml-tags
// shape, trimmed to the fields this analyzer's config actually needs
// instead of the teacher's LLM/vector-DB/workspace surface.
package config

// PHPAnalyzeConfig is the top-level configuration for one analysis
// run.
type PHPAnalyzeConfig struct {
	// PHPDoc holds the set of recognized tags beyond the always-built-in
	// @var/@param/@return/@template (spec §4.7/§6).
	PHPDoc PHPDocConfig `yaml:"phpdoc"`

	// Analysis holds the bounded-iteration knobs of spec §4.5/§5.
	Analysis AnalysisConfig `yaml:"analysis"`
}

// PHPDocConfig lists which non-standard @tags this run should treat as
// recognized (spec §6: "the set of recognized phpdoc tags (default
// list includes OpenAPI, NoOpenAPI, package, subpackage, log, plus
// those enumerated in §4.7)"). An unrecognized tag is not an error: it
// still parses as phpdoc.EntryGeneral/EntryGeneralWithParam, this list
// only affects whether PHPDocTypeError-style strictness applies to it.
type PHPDocConfig struct {
	RecognizedTags []string `yaml:"recognized_tags"`
}

// AnalysisConfig holds the fixed iteration bounds spec §4.5's "Loops...
// merged back until a fixed point (bounded to at most three
// iterations)" and §5's "Pass 3 may be re-run up to a bounded number of
// iterations... the default is 1" name explicitly.
type AnalysisConfig struct {
	// LoopMergeIterations bounds how many times a loop body is
	// re-analyzed to reach a scope-merge fixed point before remaining
	// variables are widened unconditionally (spec §4.5).
	LoopMergeIterations int `yaml:"loop_merge_iterations"`

	// Pass3Reruns bounds how many additional times pass 3 runs over
	// every file to let cross-file return-type inference reach a
	// fixed point (spec §5: "the default is 1").
	Pass3Reruns int `yaml:"pass3_reruns"`
}

// IsRecognizedTag reports whether tag (without its leading '@') is in
// the configured recognized-tag list.
func (c PHPAnalyzeConfig) IsRecognizedTag(tag string) bool {
	for _, t := range c.PHPDoc.RecognizedTags {
		if t == tag {
			return true
		}
	}
	return false
}
