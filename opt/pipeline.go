// Package opt implements C3: the transformation-pass pipeline over an
// oir.Func, with function inlining as the representative pass. Grounded on
// y1yang0-falcon's compile/ssa/optimize.go Ideal() fixed-point loop, generalized
// from a fixed three-pass sequence to a configurable pipeline (spec.md §4's
// apply(module, function, pass_config, pipeline_config) entry point).
package opt

import (
	"occ/config"
	"occ/ir"
	"occ/oir"
)

// Pass is one transformation step. It reports whether it changed the
// function so the pipeline can keep iterating to a fixed point.
type Pass struct {
	Name string
	Run  func(mod *ir.IrModule, fn *oir.Func, cfg config.PipelineConfig) (bool, error)
}

// Apply runs the configured passes to a fixed point, capped at
// cfg.MaxRounds rounds (spec.md §4's pipeline entry point). It returns the
// number of rounds in which some pass changed the function (cfg.MaxRounds
// when the cap is reached); the final round that changed nothing is not
// counted.
func Apply(mod *ir.IrModule, fn *oir.Func, cfg config.PipelineConfig) (int, error) {
	passes := buildPipeline(cfg)
	round := 0
	for ; round < cfg.MaxRounds; round++ {
		changed := false
		for _, p := range passes {
			ok, err := p.Run(mod, fn, cfg)
			if err != nil {
				return round, err
			}
			changed = changed || ok
		}
		if !changed {
			break
		}
	}
	return round, nil
}

func buildPipeline(cfg config.PipelineConfig) []Pass {
	var passes []Pass
	if cfg.EnableMemToReg {
		passes = append(passes, Pass{Name: "mem2reg", Run: runMemToReg})
	}
	if cfg.Inline.Enabled {
		passes = append(passes, Pass{Name: "inline", Run: runInlinePass})
	}
	if cfg.EnableConstantFold {
		passes = append(passes, Pass{Name: "constfold", Run: runConstantFold})
	}
	if cfg.EnableCompareFold {
		passes = append(passes, Pass{Name: "combine-compare-branch", Run: runCombineCompareBranch})
	}
	if cfg.EnableSimplifyPhi {
		passes = append(passes, Pass{Name: "simplify-phi", Run: runSimplifyPhi})
	}
	if cfg.EnableBranchThreading {
		passes = append(passes, Pass{Name: "branch-threading", Run: runBranchThreading})
	}
	if cfg.EnableSimplifyCFG {
		passes = append(passes, Pass{Name: "simplify-cfg", Run: runSimplifyCFG})
	}
	if cfg.EnableDCE {
		passes = append(passes, Pass{Name: "dce", Run: runDCE})
	}
	if cfg.EnableTailCallMarking {
		passes = append(passes, Pass{Name: "tailcall", Run: runTailCallMarking})
	}
	return passes
}
