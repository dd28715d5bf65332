package driver

import (
	"errors"
	"testing"
)

func TestNewRootCommandParsesFlags(t *testing.T) {
	var got Options
	cmd := NewRootCommand(func(o Options) error {
		got = o
		return nil
	})
	cmd.SetArgs([]string{"-c", "-o", "out.o", "-I", "inc", "-D", "FOO=1", "--libc", "musl", "a.c", "b.c"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !got.CompileOnly {
		t.Fatalf("CompileOnly = false, want true")
	}
	if got.Output != "out.o" {
		t.Fatalf("Output = %q, want out.o", got.Output)
	}
	if len(got.Includes) != 1 || got.Includes[0] != "inc" {
		t.Fatalf("Includes = %v, want [inc]", got.Includes)
	}
	if len(got.Defines) != 1 || got.Defines[0] != "FOO=1" {
		t.Fatalf("Defines = %v, want [FOO=1]", got.Defines)
	}
	if got.Libc != LibcMusl {
		t.Fatalf("Libc = %v, want LibcMusl", got.Libc)
	}
	if len(got.Sources) != 2 || got.Sources[0] != "a.c" || got.Sources[1] != "b.c" {
		t.Fatalf("Sources = %v, want [a.c b.c]", got.Sources)
	}
}

func TestNewRootCommandDefaultsLibcToGNU(t *testing.T) {
	var got Options
	cmd := NewRootCommand(func(o Options) error {
		got = o
		return nil
	})
	cmd.SetArgs([]string{"a.c"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got.Libc != LibcGNU {
		t.Fatalf("Libc = %v, want LibcGNU by default", got.Libc)
	}
	if got.Target == "" {
		t.Fatalf("Target was not auto-detected when --target was omitted")
	}
}

func TestMinimumArgsRejectsZeroSources(t *testing.T) {
	cmd := NewRootCommand(func(Options) error { return nil })
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected Execute to reject a call with no source files")
	}
}

func TestRunErrorPropagatesThroughRunE(t *testing.T) {
	sentinel := errors.New("compile failed")
	cmd := NewRootCommand(func(Options) error { return sentinel })
	cmd.SetArgs([]string{"a.c"})
	if err := cmd.Execute(); !errors.Is(err, sentinel) {
		t.Fatalf("Execute() error = %v, want the run callback's error", err)
	}
}
