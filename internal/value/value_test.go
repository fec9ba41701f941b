package value_test

import (
	"testing"

	"github.com/ambulancja/falopa/internal/value"
)

// TestMetavarInstantiateUninstantiate is §8 property 13: a metavariable's
// binding is fully reversible, the operation backtracking search depends on.
func TestMetavarInstantiateUninstantiate(t *testing.T) {
	m := value.Fresh("t")
	if m.IsInstantiated() {
		t.Fatalf("a freshly allocated metavar should be uninstantiated")
	}

	ten := &value.IntegerConstant{Value: 10}
	m.Instantiate(ten)
	if !m.IsInstantiated() {
		t.Fatalf("expected IsInstantiated() after Instantiate")
	}
	if got := value.Representative(m); got != value.Value(ten) {
		t.Fatalf("Representative(m) = %#v, want %#v", got, ten)
	}

	m.Uninstantiate()
	if m.IsInstantiated() {
		t.Fatalf("expected !IsInstantiated() after Uninstantiate")
	}
	if got := value.Representative(m); got != value.Value(m) {
		t.Fatalf("an unbound metavar should be its own representative, got %#v", got)
	}
}

func TestMetavarDoubleInstantiatePanics(t *testing.T) {
	m := value.Fresh("t")
	m.Instantiate(&value.IntegerConstant{Value: 1})

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected a panic on double Instantiate")
		}
	}()
	m.Instantiate(&value.IntegerConstant{Value: 2})
}

// TestRepresentativeIdempotentAndCompresses is §8 property 14: following a
// chain of instantiated metavariables reaches the same final value however
// many times it is called, and the chain is flattened along the way.
func TestRepresentativeIdempotentAndCompresses(t *testing.T) {
	a := value.Fresh("a")
	b := value.Fresh("b")
	c := value.Fresh("c")
	final := &value.IntegerConstant{Value: 42}

	a.Instantiate(b)
	b.Instantiate(c)
	c.Instantiate(final)

	if got := value.Representative(a); got != value.Value(final) {
		t.Fatalf("Representative(a) = %#v, want %#v", got, final)
	}
	if got := value.Representative(a); got != value.Value(final) {
		t.Fatalf("Representative(a) on second call = %#v, want %#v", got, final)
	}

	// After compression a points straight at final, so unbinding the
	// intermediate cells no longer affects a's representative.
	b.Uninstantiate()
	c.Uninstantiate()
	if got := value.Representative(a); got != value.Value(final) {
		t.Fatalf("Representative(a) after unbinding b and c = %#v, want %#v (path not compressed)", got, final)
	}
}

func TestDecidedAndStronglyDecided(t *testing.T) {
	if value.Decided(&value.Thunk{}) {
		t.Fatalf("a thunk is never decided")
	}

	unbound := value.Fresh("x")
	if !value.Decided(&value.FlexStructure{Symbol: unbound}) {
		t.Fatalf("a flex structure over an unbound symbol is decided")
	}

	bound := value.Fresh("y")
	bound.Instantiate(&value.IntegerConstant{Value: 1})
	if value.Decided(&value.FlexStructure{Symbol: bound}) {
		t.Fatalf("a flex structure over an instantiated symbol is not decided")
	}

	rigid := &value.RigidStructure{Constructor: "cons", Args: []value.Value{
		&value.IntegerConstant{Value: 1},
		&value.RigidStructure{Constructor: "nil"},
	}}
	if !value.StronglyDecided(rigid) {
		t.Fatalf("a rigid structure over strongly decided args should be strongly decided")
	}

	withThunk := &value.RigidStructure{Constructor: "cons", Args: []value.Value{&value.Thunk{}}}
	if value.StronglyDecided(withThunk) {
		t.Fatalf("a rigid structure holding a thunk argument is not strongly decided")
	}
}

func TestShow(t *testing.T) {
	tests := []struct {
		name string
		v    value.Value
		want string
	}{
		{"integer", &value.IntegerConstant{Value: 7}, "7"},
		{"nullary constructor", &value.RigidStructure{Constructor: "nil"}, "nil"},
		{
			"applied constructor",
			&value.RigidStructure{Constructor: "cons", Args: []value.Value{
				&value.IntegerConstant{Value: 1},
				&value.RigidStructure{Constructor: "nil"},
			}},
			"cons 1 nil",
		},
		{"unit", value.Unit(), "unit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := value.Show(tt.v); got != tt.want {
				t.Errorf("Show() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEnvironmentSetRebindsAlongChain(t *testing.T) {
	root := value.NewEnvironment()
	root.Define("x", &value.IntegerConstant{Value: 1})

	child := root.Extended()
	child.Set("x", &value.IntegerConstant{Value: 2})

	v, ok := root.Value("x")
	if !ok {
		t.Fatalf("expected x to still be defined in root")
	}
	if got := value.Show(v); got != "2" {
		t.Errorf("Set through a child scope should rebind in the defining scope; got %s, want 2", got)
	}

	if _, ok := child.Value("y"); ok {
		t.Fatalf("y should not be defined anywhere yet")
	}
	child.Set("y", &value.IntegerConstant{Value: 3})
	if _, ok := root.Value("y"); ok {
		t.Fatalf("Set on an undefined name should define it locally, not leak into the parent scope")
	}
}
