// Package value implements the runtime term representation of §3.4: the
// handful of value shapes the evaluator produces and consumes, plus the
// value-level Metavar (§3.7) whose instantiation is reversible, unlike the
// type- and kind-level metavariables which never need to back out of a
// binding.
//
// Dispatch is always a Go type switch over the concrete structs below,
// never an is_*-style predicate method.
package value

import (
	"fmt"
	"strings"

	"github.com/ambulancja/falopa/internal/ast"
	"github.com/ambulancja/falopa/internal/config"
)

// Value is any runtime term: an integer, a (partially applied) constructor
// or primitive, a closure, a suspended thunk, a logic variable applied to
// arguments, or a logic variable itself.
type Value interface {
	valueNode()
}

// IntegerConstant is a literal integer result.
type IntegerConstant struct {
	Value int64
}

func (*IntegerConstant) valueNode() {}

// RigidStructure is a (possibly partially applied) data constructor.
type RigidStructure struct {
	Constructor string
	Args        []Value
}

func (*RigidStructure) valueNode() {}

// Unit is the nullary RigidStructure built-in constructors reduce to when
// they carry no information of their own (§6).
func Unit() *RigidStructure {
	return &RigidStructure{Constructor: config.ValueUnit}
}

// Closure pairs a lambda's variable and body with the environment captured
// at the point the Lambda was evaluated.
type Closure struct {
	Var  string
	Body ast.Expr
	Env  *Environment
}

func (*Closure) valueNode() {}

// Primitive is a partially applied primitive combinator; it saturates (and
// dispatches) once len(Args) reaches the primitive's arity (§4.3.2).
type Primitive struct {
	Name string
	Args []Value
}

func (*Primitive) valueNode() {}

// Thunk is a suspended computation: an expression paired with the
// environment it should be evaluated in, forced at most once per
// call-by-need binding site.
type Thunk struct {
	Expr ast.Expr
	Env  *Environment
}

func (*Thunk) valueNode() {}

// FlexStructure is a logic variable (Symbol) applied to a (possibly empty)
// argument list. It is decided exactly when Symbol is not yet instantiated
// (§3.4): once Symbol is bound, the structure must be forced by applying
// Symbol's representative to Args.
type FlexStructure struct {
	Symbol *Metavar
	Args   []Value
}

func (*FlexStructure) valueNode() {}

// Metavar is a value-level logic variable: a mutable union-find cell whose
// instantiation is reversible, so the evaluator can undo a binding on
// backtracking (§3.7, §8 properties 12-13).
type Metavar struct {
	Prefix      string
	Index       int
	indirection Value
}

func (*Metavar) valueNode() {}

var nextIndex int

// Fresh allocates a new, uninstantiated metavariable.
func Fresh(prefix string) *Metavar {
	nextIndex++
	return &Metavar{Prefix: prefix, Index: nextIndex}
}

// Representative follows v's indirection chain (if v is a *Metavar) to its
// current value, compressing the path as it goes (§8 property 14). Any
// other Value is its own representative.
func Representative(v Value) Value {
	m, ok := v.(*Metavar)
	if !ok || m.indirection == nil {
		return v
	}
	m.indirection = Representative(m.indirection)
	return m.indirection
}

// IsInstantiated reports whether m currently has a binding.
func (m *Metavar) IsInstantiated() bool {
	return m.indirection != nil
}

// Instantiate binds m to val. Panics if m is already instantiated: callers
// (unification) always pair this with Uninstantiate on backtracking and
// never double-bind.
func (m *Metavar) Instantiate(val Value) {
	if m.indirection != nil {
		panic("value: metavar already instantiated")
	}
	m.indirection = val
}

// Uninstantiate undoes the most recent Instantiate, restoring m to its
// unbound state. Required for backtracking correctness (§3.7, §8 property
// 13): every Instantiate reached during search has a paired Uninstantiate
// on both the normal and the abandonment exit path.
func (m *Metavar) Uninstantiate() {
	m.indirection = nil
}

// Decided reports whether v needs no further forcing to inspect its
// outermost shape (§3.4): a thunk is never decided, and a flex structure is
// decided only while its symbol remains unbound.
func Decided(v Value) bool {
	switch n := v.(type) {
	case *Thunk:
		return false
	case *FlexStructure:
		return !n.Symbol.IsInstantiated()
	default:
		return true
	}
}

// StronglyDecided reports whether v and, recursively, every argument of a
// rigid/flex/primitive value is decided. Closures and integers are
// terminal; used when presenting final results (§4.3.5).
func StronglyDecided(v Value) bool {
	if !Decided(v) {
		return false
	}
	switch n := v.(type) {
	case *RigidStructure:
		return allStronglyDecided(n.Args)
	case *FlexStructure:
		return allStronglyDecided(n.Args)
	case *Primitive:
		return allStronglyDecided(n.Args)
	default:
		return true
	}
}

func allStronglyDecided(args []Value) bool {
	for _, a := range args {
		if !StronglyDecided(a) {
			return false
		}
	}
	return true
}

// Show renders v for diagnostics and the CLI's result stream (§6). It
// assumes v is strongly decided; callers that might hold a thunk or an
// uninstantiated flex structure should strong_eval first.
func Show(v Value) string {
	switch n := v.(type) {
	case *IntegerConstant:
		return fmt.Sprintf("%d", n.Value)
	case *RigidStructure:
		return showApplied(n.Constructor, n.Args)
	case *FlexStructure:
		return showApplied(Show(n.Symbol), n.Args)
	case *Closure:
		return "<closure>"
	case *Primitive:
		return showApplied(n.Name, n.Args)
	case *Metavar:
		if n.indirection != nil {
			return Show(Representative(n))
		}
		return fmt.Sprintf("?%s%d", n.Prefix, n.Index)
	case *Thunk:
		return "<thunk>"
	default:
		return fmt.Sprintf("<%T>", v)
	}
}

func showApplied(head string, args []Value) string {
	if len(args) == 0 {
		return head
	}
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, head)
	for _, a := range args {
		parts = append(parts, Show(a))
	}
	return strings.Join(parts, " ")
}
