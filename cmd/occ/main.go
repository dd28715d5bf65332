// Command occ is the driver entry point: parses the command line, builds a
// module from its sources, and runs every declared function through the
// pipeline spec.md §2 lays out — C1/C2 translation, C3 optimization, C4
// lowering, C5 asmcmp emission, C6 register allocation, C7 devirtualization,
// C8 DWARF generation and C9 textual assembly — before writing the result.
//
// Grounded on y1yang0-falcon's main.go (a single-file driver invoking
// compile.CompileTheWorld), generalized from one hardcoded source argument
// to the cobra-based flag surface driver.NewRootCommand builds, and from a
// direct single-function call into the explicit per-function pipeline loop
// spec.md §2's flow describes.
package main

import (
	"fmt"
	"os"

	"github.com/samber/lo"

	"occ/abi"
	"occ/asmcmp"
	"occ/asmsink"
	"occ/config"
	"occ/devirt"
	"occ/diag"
	"occ/driver"
	"occ/dwarfgen"
	"occ/internal/testfixture"
	"occ/ir"
	"occ/lower"
	"occ/oir"
	"occ/opt"
	"occ/regalloc"
	"occ/session"
)

func main() {
	os.Exit(driver.Execute(run))
}

func run(opts driver.Options) error {
	sess, err := session.New("")
	if err != nil {
		return err
	}
	defer sess.Close()

	if opts.Verbose {
		fmt.Fprintf(os.Stderr, "occ: session dir %s, target %s\n", sess.Dir(), opts.Target)
	}

	conv := abi.SystemV
	syntax := asmsink.SyntaxATT

	var out *os.File
	if opts.Output == "" || opts.Output == "-" {
		out = os.Stdout
	} else {
		f, err := os.Create(opts.Output)
		if err != nil {
			return diag.Wrap(diag.OsError, err, "failed to create output file %s", opts.Output).WithComponent("driver")
		}
		defer f.Close()
		out = f
	}

	for _, src := range opts.Sources {
		text, err := os.ReadFile(src)
		if err != nil {
			return diag.Wrap(diag.OsError, err, "failed to read source file %s", src).WithComponent("driver")
		}
		if err := compileOne(string(text), conv, syntax, out); err != nil {
			return err
		}
	}
	return nil
}

// compileOne translates every function a fixture source declares and emits
// its compiled assembly plus one shared module-level DWARF unit.
func compileOne(source string, conv abi.Convention, syntax asmsink.Syntax, out *os.File) error {
	fx, err := testfixture.Build(source)
	if err != nil {
		return err
	}

	sink := asmsink.New(syntax)
	bounds := map[ir.DebugEntryId]funcBound{}
	tree := fx.Module.DebugEntries()

	for _, decl := range fx.Decls {
		_, body, err := fx.Module.GetFunction(decl.Name)
		if err != nil {
			return err
		}
		if body == nil {
			continue // a declared-only (variadic) signature never reaches code generation
		}

		fn := oir.Translate(fx.Module, decl, body)
		cfg := config.PipelineConfigForLevel(config.O1)
		if _, err := opt.Apply(fx.Module, fn, cfg); err != nil {
			return err
		}

		lw := lower.New(fx.Module, fn, conv)
		prog := lw.Lower()

		intervals := regalloc.BuildIntervals(prog)
		allocator := regalloc.NewAllocator(conv)
		allocated, err := allocator.Allocate(intervals)
		if err != nil {
			return err
		}
		if err := regalloc.CheckPressure(allocated, conv); err != nil {
			return err
		}

		dv := devirt.New(prog, conv, allocated, regalloc.ScratchGP, regalloc.ScratchFP)
		if err := dv.Run(); err != nil {
			return err
		}

		calleeSaved := usedCalleeSaves(allocated, conv)
		frameSize := frameSizeFor(allocator.SpillSlots())
		sink.EmitFunction(decl.Name, true, frameSize, prog, calleeSaved)

		entry := tree.NewChild(tree.Root(), ir.TagSubprogram)
		tree.AddAttr(entry, ir.Attr{Name: "name", Kind: ir.AttrString, Str: decl.Name})
		bounds[entry] = funcBound{low: decl.Name, high: decl.Name}
	}

	unit := dwarfgen.NewUnit(tree, funcLabels(bounds))
	abbrev, info := unit.Emit()
	sink.EmitDebugSection(".debug_abbrev", abbrev)
	sink.EmitDebugSection(".debug_info", info)

	rendered, err := sink.Bytes()
	if err != nil {
		return err
	}
	_, err = out.Write(rendered)
	return err
}

type funcBound struct{ low, high string }

// funcLabels adapts a plain map into dwarfgen.CodeLabels. Per-instruction
// resolution (LabelFor) is not wired yet — the lowering/devirtualization
// passes above don't currently surface an InstrRef→label table across their
// boundary — so lexical-block-level code ranges inside a function fall back
// to "unresolved" rather than a wrong guess; only whole-function low_pc/
// high_pc is populated.
type funcLabels map[ir.DebugEntryId]funcBound

func (f funcLabels) LabelFor(int) (string, bool) { return "", false }

func (f funcLabels) FunctionBounds(id ir.DebugEntryId) (string, string, bool) {
	b, ok := f[id]
	return b.low, b.high, ok
}

// usedCalleeSaves reports which callee-save registers the allocator actually
// handed out, in the canonical save order, so the prologue/epilogue only
// preserves what this function clobbers.
func usedCalleeSaves(intervals []*regalloc.Interval, conv abi.Convention) []abi.PhysReg {
	used := lo.Uniq(lo.FilterMap(intervals, func(iv *regalloc.Interval, _ int) (abi.PhysReg, bool) {
		if iv.IsSpill {
			return abi.PhysReg{}, false
		}
		return iv.AssignedReg, true
	}))
	return lo.Filter(abi.CalleeSaveGP(conv), func(r abi.PhysReg, _ int) bool {
		return lo.Contains(used, r)
	})
}

// frameSizeFor returns a 16-byte-aligned spill-area size in bytes for n
// qword spill slots.
func frameSizeFor(slots int) int {
	size := slots * 8
	if size%16 != 0 {
		size += 16 - size%16
	}
	return size
}
