// Package kinds implements the tiny unifier over kinds described in §3.3 and
// §4.2.1: the kind algebra is just "*", "k -> k" and unification metavariables,
// mirroring the value-level Metavar of package value but kept separate since
// kinds and values are never compared against each other.
package kinds

import "fmt"

// Kind is the "type of a type": Star classifies proper types, Arrow
// classifies type constructors, Metavar is an as-yet-unsolved kind.
type Kind interface {
	fmt.Stringer
	representative() Kind
}

type Star struct{}

func (Star) String() string        { return "*" }
func (k Star) representative() Kind { return k }

type Arrow struct {
	Domain   Kind
	Codomain Kind
}

func (k Arrow) String() string {
	return fmt.Sprintf("(%s -> %s)", k.Domain, k.Codomain)
}
func (k Arrow) representative() Kind { return k }

// Metavar is a mutable union-find cell: once instantiated, Representative
// walks and compresses the indirection chain, same discipline as
// value.Metavar.
type Metavar struct {
	Prefix      string
	Index       int
	indirection Kind
}

var nextIndex int

func Fresh(prefix string) *Metavar {
	nextIndex++
	return &Metavar{Prefix: prefix, Index: nextIndex}
}

func (k *Metavar) String() string {
	if k.indirection == nil {
		return fmt.Sprintf("?%s%d", k.Prefix, k.Index)
	}
	return k.representative().String()
}

func (k *Metavar) representative() Kind {
	if k.indirection == nil {
		return k
	}
	k.indirection = Representative(k.indirection)
	return k.indirection
}

func (k *Metavar) instantiate(value Kind) {
	if k.indirection != nil {
		panic("kinds: metavar already instantiated")
	}
	k.indirection = value
}

// Representative follows a kind's indirection chain to its current
// canonical form, compressing the path as it goes (§8 property 14).
func Representative(k Kind) Kind {
	return k.representative()
}

// FreshArrow builds the kind  ?k1 -> ... -> ?kn -> *  used to seed a data
// declaration's own kind before its constructors are checked (§4.2.1).
func FreshArrow(arity int) Kind {
	k := Kind(Star{})
	for i := 0; i < arity; i++ {
		k = Arrow{Domain: Fresh("k"), Codomain: k}
	}
	return k
}

// FailureReason names why Unify failed, so callers can translate it into
// the typechecker's diagnostic codes ("kinds-do-not-unify" vs occurs-check
// style failures collapse to the same code at the kind level, per §4.2.1).
type FailureReason string

const (
	ReasonMismatch FailureReason = "kinds-do-not-unify"
	ReasonOccurs   FailureReason = "kind-occurs-check"
)

type UnificationFailure struct {
	Reason FailureReason
	Left   Kind
	Right  Kind
}

func (e *UnificationFailure) Error() string {
	return fmt.Sprintf("%s: %s vs %s", e.Reason, e.Left, e.Right)
}

// Unify destructively unifies two kinds, instantiating metavariables as it
// goes. On failure no partial instantiation from this call is undone: kind
// checking never backtracks, unlike value-level unification.
func Unify(k1, k2 Kind) error {
	k1 = Representative(k1)
	k2 = Representative(k2)

	if m1, ok := k1.(*Metavar); ok {
		if m2, ok := k2.(*Metavar); ok && m1 == m2 {
			return nil
		}
		if occursIn(m1, k2) {
			return &UnificationFailure{Reason: ReasonOccurs, Left: k1, Right: k2}
		}
		m1.instantiate(k2)
		return nil
	}
	if m2, ok := k2.(*Metavar); ok {
		return Unify(m2, k1)
	}

	switch l := k1.(type) {
	case Star:
		if _, ok := k2.(Star); ok {
			return nil
		}
	case Arrow:
		if r, ok := k2.(Arrow); ok {
			if err := Unify(l.Domain, r.Domain); err != nil {
				return err
			}
			return Unify(l.Codomain, r.Codomain)
		}
	}
	return &UnificationFailure{Reason: ReasonMismatch, Left: k1, Right: k2}
}

func occursIn(m *Metavar, k Kind) bool {
	k = Representative(k)
	switch t := k.(type) {
	case *Metavar:
		return t == m
	case Arrow:
		return occursIn(m, t.Domain) || occursIn(m, t.Codomain)
	default:
		return false
	}
}
