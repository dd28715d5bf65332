package config

import "testing"

func TestPipelineConfigForLevelO0DisablesInlining(t *testing.T) {
	cfg := PipelineConfigForLevel(O0)
	if cfg.Inline.Enabled {
		t.Fatalf("O0 pipeline config has inlining enabled")
	}
	if cfg.EnableBranchThreading || cfg.EnableCompareFold {
		t.Fatalf("O0 pipeline config still enables threading/compare-fold passes: %+v", cfg)
	}
	if cfg.MaxRounds == 0 {
		t.Fatalf("O0 pipeline config has a zero round budget")
	}
}

func TestPipelineConfigForLevelO1MatchesDefaults(t *testing.T) {
	cfg := PipelineConfigForLevel(O1)
	def := DefaultPipelineConfig()
	if cfg != def {
		t.Fatalf("PipelineConfigForLevel(O1) = %+v, want the default config %+v", cfg, def)
	}
}

func TestDefaultInlineConfigIsEnabledWithPositiveBudgets(t *testing.T) {
	c := DefaultInlineConfig()
	if !c.Enabled {
		t.Fatalf("DefaultInlineConfig is disabled")
	}
	if c.MaxCalleeInstrs <= 0 || c.MaxInlinesPerFunction <= 0 || c.MaxRecursiveDepth <= 0 {
		t.Fatalf("DefaultInlineConfig has a non-positive budget: %+v", c)
	}
}
