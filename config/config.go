// Package config holds the plain option structs the optimizer pipeline, the
// inliner and the driver share. Kept dependency-free on purpose so both
// opt and driver can import it without a cycle.
package config

// InlineConfig tunes the inliner's eligibility and budget decisions
// (spec.md §4.3).
type InlineConfig struct {
	// Enabled turns inlining on or off entirely; the driver's -O0 maps to
	// false.
	Enabled bool
	// MaxCalleeInstrs bounds a callee's instruction count for it to be
	// considered for inlining at all (eligibility rule: size).
	MaxCalleeInstrs int
	// MaxInlinesPerFunction bounds how many call sites may be inlined into
	// a single caller, preventing unbounded code growth (eligibility rule d).
	MaxInlinesPerFunction int
	// MaxRecursiveDepth bounds how many times a function may be inlined
	// into itself transitively through a chain of call sites.
	MaxRecursiveDepth int
}

// DefaultInlineConfig matches the conservative defaults used when a driver
// invocation requests optimization without further tuning.
func DefaultInlineConfig() InlineConfig {
	return InlineConfig{
		Enabled:               true,
		MaxCalleeInstrs:        80,
		MaxInlinesPerFunction:  32,
		MaxRecursiveDepth:      4,
	}
}

// PipelineConfig selects which passes run and how many fixed-point rounds
// the pipeline may take before giving up (spec.md §4's pipeline entry
// point, apply(module, function, pass_config, pipeline_config)).
type PipelineConfig struct {
	MaxRounds int
	Inline    InlineConfig

	EnableDCE              bool
	EnableSimplifyPhi      bool
	EnableSimplifyCFG      bool
	EnableConstantFold     bool
	EnableMemToReg         bool
	EnableBranchThreading  bool
	EnableCompareFold      bool
	EnableTailCallMarking  bool
}

func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		MaxRounds:             16,
		Inline:                DefaultInlineConfig(),
		EnableDCE:             true,
		EnableSimplifyPhi:     true,
		EnableSimplifyCFG:     true,
		EnableConstantFold:    true,
		EnableMemToReg:        true,
		EnableBranchThreading: true,
		EnableCompareFold:     true,
		EnableTailCallMarking: true,
	}
}

// OptLevel mirrors the driver's -O flag.
type OptLevel int

const (
	O0 OptLevel = iota
	O1
	O2
)

// PipelineConfigForLevel derives a PipelineConfig from a driver -O level.
func PipelineConfigForLevel(level OptLevel) PipelineConfig {
	cfg := DefaultPipelineConfig()
	if level == O0 {
		cfg.Inline.Enabled = false
		cfg.EnableBranchThreading = false
		cfg.EnableCompareFold = false
	}
	return cfg
}
