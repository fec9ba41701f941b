package evaluator_test

import (
	"testing"

	"github.com/ambulancja/falopa/internal/evaluator"
	"github.com/ambulancja/falopa/internal/parser"
	"github.com/ambulancja/falopa/internal/typecheck"
	"github.com/ambulancja/falopa/internal/value"
)

// solutions runs src through the full parse/check/evaluate pipeline and
// collects the Show of every solution the given strategy yields for the
// program's body, in order.
func solutions(t *testing.T, src string, strategy evaluator.Strategy) []string {
	t.Helper()

	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	prog, err = typecheck.Check(prog)
	if err != nil {
		t.Fatalf("check %q: %v", src, err)
	}

	var got []string
	ev := evaluator.New(prog)
	_, err = ev.Eval(prog, strategy, func(v value.Value) (bool, error) {
		got = append(got, value.Show(v))
		return true, nil
	})
	if err != nil {
		t.Fatalf("eval %q: %v", src, err)
	}
	return got
}

// TestSequence is §8 property 7: `a >> b` discards a's value and yields b's.
func TestSequence(t *testing.T) {
	got := solutions(t, "main = 1 >> 2", evaluator.Strong)
	want := []string{"2"}
	if !equalSlices(got, want) {
		t.Errorf("solutions = %v, want %v", got, want)
	}
}

// TestAlternative is §8 property 8: `a <> b` yields every solution of a
// followed by every solution of b.
func TestAlternative(t *testing.T) {
	got := solutions(t, "main = 1 <> 2", evaluator.Strong)
	want := []string{"1", "2"}
	if !equalSlices(got, want) {
		t.Errorf("solutions = %v, want %v", got, want)
	}
}

// TestUnifyThenUse is §8 property 9: unifying a fresh variable with a value
// and then using that variable observes the binding.
func TestUnifyThenUse(t *testing.T) {
	got := solutions(t, "main = fresh x . x == 1 >> x", evaluator.Strong)
	want := []string{"1"}
	if !equalSlices(got, want) {
		t.Errorf("solutions = %v, want %v", got, want)
	}
}

// TestUnifyAlternatives is §8 properties 10 and 12: each alternative branch
// unifies the same fresh variable with a different value and then uses it.
// Getting both solutions back, rather than just the first, demonstrates that
// the variable's binding from the first branch is undone (§8 property 12)
// before the second branch runs.
func TestUnifyAlternatives(t *testing.T) {
	got := solutions(t, "main = fresh x . (x == 1 <> x == 2) >> x", evaluator.Strong)
	want := []string{"1", "2"}
	if !equalSlices(got, want) {
		t.Errorf("solutions = %v, want %v", got, want)
	}
}

// TestConstructorUnification is §8 property 11: unifying two applications of
// the same constructor decomposes them argument-wise.
func TestConstructorUnification(t *testing.T) {
	src := `
data Pair a b where {
  pair : a → b → Pair a b
}
main = fresh x . fresh y . pair x y == pair 1 2 >> pair x y
`
	got := solutions(t, src, evaluator.Strong)
	want := []string{"pair 1 2"}
	if !equalSlices(got, want) {
		t.Errorf("solutions = %v, want %v", got, want)
	}
}

// TestFailedUnifyYieldsNoSolution checks that a structural mismatch simply
// contributes no solution to the surrounding search, rather than raising an
// error: here it silences the first alternative entirely and only the
// second is ever observed.
func TestFailedUnifyYieldsNoSolution(t *testing.T) {
	got := solutions(t, "main = fresh x . (x == 1 >> x == 2 >> 99) <> 100", evaluator.Strong)
	want := []string{"100"}
	if !equalSlices(got, want) {
		t.Errorf("solutions = %v, want %v", got, want)
	}
}

func equalSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
