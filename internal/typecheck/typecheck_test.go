package typecheck_test

import (
	"testing"

	"github.com/ambulancja/falopa/internal/diagnostics"
	"github.com/ambulancja/falopa/internal/parser"
	"github.com/ambulancja/falopa/internal/typecheck"
)

// TestConstructorType is §8 property 4: a constructor applied to arguments of
// the types its declaration demands type-checks.
func TestConstructorType(t *testing.T) {
	src := `
data Pair a b where {
  pair : a → b → Pair a b
}
main = pair 1 2
`
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := typecheck.Check(prog); err != nil {
		t.Fatalf("expected pair 1 2 to type-check, got %v", err)
	}
}

func TestConstructorArgumentMismatchRejected(t *testing.T) {
	src := `
data Pair a b where {
  pair : a → b → Pair a b
}
wrap : Int → Pair Int Int
wrap x = pair x x
main = wrap pair
`
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := typecheck.Check(prog); err == nil {
		t.Fatalf("expected applying wrap to a constructor function, instead of an Int, to be rejected")
	}
}

// TestIdentityGeneralization is §8 property 5: a let-bound identity function
// is generalised so that it can be used at two unrelated types in the same
// body, rather than pinned to whichever type its first use happens to need.
func TestIdentityGeneralization(t *testing.T) {
	src := `
data Pair a b where {
  pair : a → b → Pair a b
}
id x = x
main = pair (id 1) (id pair)
`
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := typecheck.Check(prog); err != nil {
		t.Fatalf("expected id to be usable at both Int and the pair constructor's type, got %v", err)
	}
}

// TestOccursCheckRejected is §8 property 6: a self-application that would
// require an infinite type is rejected instead of looping or succeeding.
func TestOccursCheckRejected(t *testing.T) {
	src := `
omega x = x x
main = 1
`
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, err = typecheck.Check(prog)
	if err == nil {
		t.Fatalf("expected omega x = x x to be rejected by the occurs check")
	}
	diagErr, ok := err.(*diagnostics.Error)
	if !ok {
		t.Fatalf("expected a *diagnostics.Error, got %T: %v", err, err)
	}
	if diagErr.Code != "occurs-check" {
		t.Errorf("expected code occurs-check, got %q (%v)", diagErr.Code, diagErr)
	}
}

// TestEquationsArityMismatchRejected checks that a group of equations that
// disagree on arity is rejected with a clean diagnostic rather than a panic,
// regardless of which equation's arity disagrees with the others.
func TestEquationsArityMismatchRejected(t *testing.T) {
	sources := []string{
		"f = 0\nf x = x\nmain = f 1",
		"f x = x\nf = 0\nmain = f 1",
	}

	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			prog, err := parser.Parse(src)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			_, err = typecheck.Check(prog)
			if err == nil {
				t.Fatalf("expected mismatched equation arities to be rejected")
			}
			diagErr, ok := err.(*diagnostics.Error)
			if !ok {
				t.Fatalf("expected a *diagnostics.Error, got %T: %v", err, err)
			}
			if diagErr.Code != "equations-arity-mismatch" {
				t.Errorf("expected code equations-arity-mismatch, got %q (%v)", diagErr.Code, diagErr)
			}
		})
	}
}

// TestDeclaredTypeTooGeneralRejected checks that a declared signature more
// general than what was actually inferred is rejected rather than silently
// widening the name's type: reconciliation must skolemize the declared side
// instead of instantiating both sides with metavariables.
func TestDeclaredTypeTooGeneralRejected(t *testing.T) {
	src := `
id : a → b
id x = x
main = id 1
`
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, err = typecheck.Check(prog)
	if err == nil {
		t.Fatalf("expected id : a → b to be rejected for an inferred ∀a. a → a")
	}
	diagErr, ok := err.(*diagnostics.Error)
	if !ok {
		t.Fatalf("expected a *diagnostics.Error, got %T: %v", err, err)
	}
	if diagErr.Code != "declared-type-mismatch" {
		t.Errorf("expected code declared-type-mismatch, got %q (%v)", diagErr.Code, diagErr)
	}
}

// TestDeclaredTypeMatchingInferredAccepted is the companion positive case: a
// declared signature that is exactly as general as the inferred type must
// still be accepted, so the skolemization fix does not overshoot into
// rejecting correct polymorphic signatures.
func TestDeclaredTypeMatchingInferredAccepted(t *testing.T) {
	src := `
id : a → a
id x = x
main = id 1
`
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := typecheck.Check(prog); err != nil {
		t.Fatalf("expected id : a → a to match the inferred ∀a. a → a, got %v", err)
	}
}

func TestUndefinedVariableRejected(t *testing.T) {
	prog, err := parser.Parse("main = doesNotExist")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, err = typecheck.Check(prog)
	if err == nil {
		t.Fatalf("expected an undefined-variable error")
	}
	diagErr, ok := err.(*diagnostics.Error)
	if !ok {
		t.Fatalf("expected a *diagnostics.Error, got %T: %v", err, err)
	}
	if diagErr.Code != "undefined-variable" {
		t.Errorf("expected code undefined-variable, got %q (%v)", diagErr.Code, diagErr)
	}
}
