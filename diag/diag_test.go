package diag

import (
	"errors"
	"testing"
)

func TestErrorMessageIncludesComponentWhenSet(t *testing.T) {
	err := New(InvalidRequest, "cannot drop %s", "x").WithComponent("oir")
	if got, want := err.Error(), "oir: InvalidRequest: cannot drop x"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestErrorMessageOmitsComponentWhenUnset(t *testing.T) {
	err := New(NotFound, "no such symbol")
	if got, want := err.Error(), "NotFound: no such symbol"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestWrapPreservesCauseForUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(InternalError, cause, "lowering failed")
	if !errors.Is(err, cause) {
		t.Fatalf("errors.Is(err, cause) = false, want true (Unwrap must expose the cause)")
	}
}

func TestIsMatchesOnlyTheRecordedKind(t *testing.T) {
	err := New(OutOfBounds, "index 9 past pool size 3")
	if !Is(err, OutOfBounds) {
		t.Fatalf("Is(err, OutOfBounds) = false, want true")
	}
	if Is(err, NotFound) {
		t.Fatalf("Is(err, NotFound) = true, want false")
	}
	if Is(errors.New("plain"), InvalidState) {
		t.Fatalf("Is on a non-diag error returned true")
	}
}

func TestKindStringCoversAllConstants(t *testing.T) {
	kinds := []Kind{InvalidParameter, InvalidRequest, InvalidState, NotFound, NotSupported,
		OutOfBounds, InternalError, MemAllocFailure, ObjAllocFailure, OsError, Interrupt, NotConstant, Yield}
	for _, k := range kinds {
		if k.String() == "<unknown-kind>" {
			t.Fatalf("Kind %d has no String() case", k)
		}
	}
}
