// CLI surface: the cobra command spec.md §6 describes only by its flag
// list. Grounded on the rest of the pack's cobra-fronted CLIs (goat's own
// flag-heavy translate/compile subcommands), generalized to the specific
// flag set spec.md §6 names.
package driver

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sys/cpu"
)

// Options collects every flag value the command line accepts, independent
// of cobra so the rest of the driver (and tests) can build one directly
// without going through flag parsing.
type Options struct {
	CompileOnly bool   // --compile / -c
	Output      string // -o
	AssembleOnly bool  // -S
	PreprocessOnly bool // -E
	Target      string // --target
	Includes    []string // -I
	SysIncludes []string // -isystem
	QuoteIncludes []string // -iquote
	Defines     []string // -D
	Undefines   []string // -U
	ForceIncludes []string // -include
	PreprocessorTimestamp int64 // --preprocessor-timestamp
	Verbose     bool // --verbose
	Assembler   string
	Linker      string
	Libc        Libc
	Sources     []string
}

// NewRootCommand builds the cobra command tree for the occ driver. run is
// invoked once flags are parsed and positional source arguments collected;
// it is passed as a parameter rather than hard-wired so tests can exercise
// flag parsing without running an actual compilation.
func NewRootCommand(run func(Options) error) *cobra.Command {
	var opts Options
	var libcName string

	cmd := &cobra.Command{
		Use:     "occ [flags] <source...>",
		Short:   "an optimizing C compiler front-to-back pipeline driver",
		Version: "0.1.0",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Sources = args
			opts.Libc = parseLibc(libcName)
			if opts.Target == "" {
				opts.Target = detectHostTarget()
			}
			return run(opts)
		},
		SilenceUsage: true,
	}

	flags := cmd.Flags()
	flags.BoolVarP(&opts.CompileOnly, "compile", "c", false, "stop after producing an object file")
	flags.StringVarP(&opts.Output, "output", "o", "", "output file path")
	flags.BoolVarP(&opts.AssembleOnly, "assemble-only", "S", false, "stop after producing assembly")
	flags.BoolVarP(&opts.PreprocessOnly, "preprocess-only", "E", false, "preprocess only")
	flags.StringVar(&opts.Target, "target", "", "target triple selecting ABI variant and toolchain configuration")
	flags.StringArrayVarP(&opts.Includes, "include-dir", "I", nil, "add a directory to the include search path")
	flags.StringArrayVar(&opts.SysIncludes, "isystem", nil, "add a system include search path")
	flags.StringArrayVar(&opts.QuoteIncludes, "iquote", nil, "add a quote-form include search path")
	flags.StringArrayVarP(&opts.Defines, "define", "D", nil, "define a preprocessor macro")
	flags.StringArrayVarP(&opts.Undefines, "undefine", "U", nil, "undefine a preprocessor macro")
	flags.StringArrayVar(&opts.ForceIncludes, "include", nil, "force-include a header before the source file")
	flags.Int64Var(&opts.PreprocessorTimestamp, "preprocessor-timestamp", 0, "deterministic __TIMESTAMP__ value, as epoch seconds")
	flags.BoolVar(&opts.Verbose, "verbose", false, "echo every sub-tool invocation")
	flags.StringVar(&opts.Assembler, "as", "", "assembler executable override (else KEFIR_AS, else \"as\")")
	flags.StringVar(&opts.Linker, "ld", "", "linker executable override (else KEFIR_LD, else \"ld\")")
	flags.StringVar(&libcName, "libc", "gnu", "target libc family: gnu, musl, freebsd, openbsd, netbsd")

	return cmd
}

// Execute runs the driver's command tree and maps any returned error to the
// exit-code convention spec.md §6 defines: 0 on success, 1 otherwise.
func Execute(run func(Options) error) int {
	cmd := NewRootCommand(run)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func parseLibc(name string) Libc {
	switch name {
	case "musl":
		return LibcMusl
	case "freebsd":
		return LibcFreeBSD
	case "openbsd":
		return LibcOpenBSD
	case "netbsd":
		return LibcNetBSD
	default:
		return LibcGNU
	}
}

// detectHostTarget picks a default --target when the caller didn't specify
// one, distinguishing the baseline x86-64 ABI from the v2/v3 microarch
// levels by probing the running CPU's feature bits — the same probing
// ajroetker-goat performs (golang.org/x/sys/cpu) to decide which
// architecture-specific code path to generate for.
func detectHostTarget() string {
	switch {
	case cpu.X86.HasAVX512F:
		return "x86_64-v4-linux-gnu"
	case cpu.X86.HasAVX2:
		return "x86_64-v3-linux-gnu"
	case cpu.X86.HasSSE42:
		return "x86_64-v2-linux-gnu"
	default:
		return "x86_64-linux-gnu"
	}
}
