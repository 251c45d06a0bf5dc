package u2f

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOfUnwrapsWrappedError(t *testing.T) {
	base := wrapErr(ErrInvalidSignature, "bad signature", errors.New("boom"))
	wrapped := fmt.Errorf("outer: %w", base)

	kind, ok := KindOf(wrapped)
	if !ok {
		t.Fatal("KindOf did not find an *Error through fmt.Errorf wrapping")
	}
	if kind != ErrInvalidSignature {
		t.Errorf("kind = %v, want ErrInvalidSignature", kind)
	}
}

func TestKindOfNonTaxonomyError(t *testing.T) {
	if _, ok := KindOf(errors.New("plain")); ok {
		t.Error("KindOf reported success for a plain error")
	}
}

func TestErrorUnwrapReturnsCause(t *testing.T) {
	cause := errors.New("underlying")
	err := wrapErr(ErrMalformedMessage, "bad input", cause)
	if !errors.Is(err, err) {
		t.Fatal("error does not equal itself under errors.Is")
	}
	if errors.Unwrap(err) != cause {
		t.Error("Unwrap did not return the wrapped cause")
	}
}
