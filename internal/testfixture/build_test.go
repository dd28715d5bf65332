package testfixture

import "testing"

// TestBuildTrivialReturn exercises spec.md §8 scenario 1's fixture: a
// single function returning a constant.
func TestBuildTrivialReturn(t *testing.T) {
	fx, err := Build("int f(void) { return 42; }")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(fx.Decls) != 1 || fx.Decls[0].Name != "f" {
		t.Fatalf("Decls = %+v, want a single declaration named f", fx.Decls)
	}
	_, body, err := fx.Module.GetFunction("f")
	if err != nil {
		t.Fatalf("GetFunction(f): %v", err)
	}
	if body == nil {
		t.Fatalf("GetFunction(f) returned no body for a defined function")
	}
}

func TestBuildArithmeticAndCall(t *testing.T) {
	fx, err := Build(`
int square(int x) { return x * x; }
int g(int a) { return square(a) + 1; }
`)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(fx.Decls) != 2 {
		t.Fatalf("Decls = %+v, want two function declarations", fx.Decls)
	}
}

// TestBuildVariadicDeclaresWithoutBody exercises spec.md §8 scenario 4's
// fixture: a variadic function is modeled as a declaration only.
func TestBuildVariadicDeclaresWithoutBody(t *testing.T) {
	fx, err := Build("int sum(int first, ...) { return first; }")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(fx.Decls) != 1 || !fx.Decls[0].Vararg {
		t.Fatalf("Decls = %+v, want a single variadic declaration", fx.Decls)
	}
	_, body, err := fx.Module.GetFunction("sum")
	if err != nil {
		t.Fatalf("GetFunction(sum): %v", err)
	}
	if body != nil {
		t.Fatalf("variadic fixture function unexpectedly has a modeled body")
	}
}

func TestBuildRejectsSourceWithNoFunctionDefinition(t *testing.T) {
	if _, err := Build("int x;"); err == nil {
		t.Fatalf("expected Build to reject a fixture with no function definition")
	}
}

func TestBuildRejectsMissingReturnStatement(t *testing.T) {
	if _, err := Build("int f(void) { int x = 1; }"); err == nil {
		t.Fatalf("expected Build to reject a function body with no return statement")
	}
}
