package main

import (
	"os"
	"strings"
	"testing"

	"occ/abi"
	"occ/asmsink"
	"occ/regalloc"
)

func TestFrameSizeForAlignsTo16Bytes(t *testing.T) {
	cases := map[int]int{0: 0, 1: 16, 2: 16, 3: 32}
	for slots, want := range cases {
		if got := frameSizeFor(slots); got != want {
			t.Fatalf("frameSizeFor(%d) = %d, want %d", slots, got, want)
		}
	}
}

func TestUsedCalleeSavesFiltersToAssignedNonSpilled(t *testing.T) {
	intervals := []*regalloc.Interval{
		{AssignedReg: abi.RBX},
		{AssignedReg: abi.RBX}, // duplicate should collapse via lo.Uniq
		{IsSpill: true, AssignedReg: abi.RBX},
		{AssignedReg: abi.RAX}, // caller-save, not in CalleeSaveGP
	}
	got := usedCalleeSaves(intervals, abi.SystemV)
	if len(got) != 1 || got[0] != abi.RBX {
		t.Fatalf("usedCalleeSaves = %v, want [RBX]", got)
	}
}

// TestCompileOneEndToEnd exercises spec.md §8 scenario 1 through the whole
// driver pipeline, from C source text to rendered assembly bytes.
func TestCompileOneEndToEnd(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out-*.s")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	defer f.Close()

	if err := compileOne("int f(void) { return 42; }", abi.SystemV, asmsink.SyntaxIntel, f); err != nil {
		t.Fatalf("compileOne: %v", err)
	}

	if _, err := f.Seek(0, 0); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	out, err := os.ReadFile(f.Name())
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	text := string(out)
	if !strings.Contains(text, "f:") {
		t.Fatalf("compiled output missing the function label:\n%s", text)
	}
	if !strings.Contains(text, "ret") {
		t.Fatalf("compiled output missing a ret instruction:\n%s", text)
	}
}
