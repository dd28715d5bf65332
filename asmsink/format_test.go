package asmsink

import (
	"testing"

	"occ/abi"
)

func TestQuoteLeavesPlainIdentifiersBare(t *testing.T) {
	if got := Quote("main"); got != "main" {
		t.Fatalf("Quote(main) = %q, want main unquoted", got)
	}
	if got := Quote("_start.foo$1"); got != "_start.foo$1" {
		t.Fatalf("Quote(%q) = %q, want it unquoted (every char is in the safe set)", "_start.foo$1", got)
	}
}

func TestQuoteEscapesUnsafeIdentifiers(t *testing.T) {
	got := Quote("has space")
	if got != `"has space"` {
		t.Fatalf("Quote(%q) = %q, want a quoted form", "has space", got)
	}
}

func TestRegATTPrefixesPercent(t *testing.T) {
	s := New(SyntaxATT)
	if got := s.reg(abi.RAX, 8); got != "%rax" {
		t.Fatalf("reg(RAX,8) in ATT syntax = %q, want %%rax", got)
	}
	if got := s.reg(abi.RAX, 4); got != "%eax" {
		t.Fatalf("reg(RAX,4) in ATT syntax = %q, want %%eax", got)
	}
}

func TestRegIntelOmitsPercent(t *testing.T) {
	s := New(SyntaxIntel)
	if got := s.reg(abi.RAX, 8); got != "rax" {
		t.Fatalf("reg(RAX,8) in Intel syntax = %q, want rax", got)
	}
}

func TestImmSyntaxDollarSign(t *testing.T) {
	att := New(SyntaxATT)
	if got := att.imm(5); got != "$5" {
		t.Fatalf("ATT imm(5) = %q, want $5", got)
	}
	intel := New(SyntaxIntel)
	if got := intel.imm(5); got != "5" {
		t.Fatalf("Intel imm(5) = %q, want 5", got)
	}
}

func TestMemAddressingBothSyntaxes(t *testing.T) {
	att := New(SyntaxATT)
	if got := att.mem(abi.RBP, -8); got != "-8(%rbp)" {
		t.Fatalf("ATT mem(RBP,-8) = %q, want -8(%%rbp)", got)
	}
	if got := att.mem(abi.RBP, 0); got != "(%rbp)" {
		t.Fatalf("ATT mem(RBP,0) = %q, want (%%rbp) with no zero displacement printed", got)
	}
	intel := New(SyntaxIntel)
	if got := intel.mem(abi.RBP, -8); got != "[rbp-8]" {
		t.Fatalf("Intel mem(RBP,-8) = %q, want [rbp-8]", got)
	}
}

func TestWidthSuffixATTOnly(t *testing.T) {
	att := New(SyntaxATT)
	cases := map[int]string{1: "b", 2: "w", 4: "l", 8: "q"}
	for width, want := range cases {
		if got := att.widthSuffix(width); got != want {
			t.Fatalf("ATT widthSuffix(%d) = %q, want %q", width, got, want)
		}
	}
	intel := New(SyntaxIntel)
	if got := intel.widthSuffix(4); got != "" {
		t.Fatalf("Intel widthSuffix(4) = %q, want empty", got)
	}
}

func TestOrderSwapsOperandsPerSyntax(t *testing.T) {
	att := New(SyntaxATT)
	first, second := att.order("dst", "src")
	if first != "src" || second != "dst" {
		t.Fatalf("ATT order(dst,src) = (%q,%q), want (src, dst)", first, second)
	}
	intel := New(SyntaxIntel)
	first, second = intel.order("dst", "src")
	if first != "dst" || second != "src" {
		t.Fatalf("Intel order(dst,src) = (%q,%q), want (dst, src)", first, second)
	}
}
