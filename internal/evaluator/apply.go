package evaluator

import (
	"github.com/ambulancja/falopa/internal/config"
	"github.com/ambulancja/falopa/internal/diagnostics"
	"github.com/ambulancja/falopa/internal/token"
	"github.com/ambulancja/falopa/internal/value"
)

// apply is `apply(value, arg_thunk)` (§4.3.2): applying a value to one
// more argument, dispatching on the callee's shape.
func (ev *Evaluator) apply(fn, arg value.Value, sink Sink) (bool, error) {
	switch n := fn.(type) {
	case *value.Thunk:
		return ev.evalValue(fn, func(forced value.Value) (bool, error) {
			return ev.apply(forced, arg, sink)
		})
	case *value.RigidStructure:
		return sink(&value.RigidStructure{Constructor: n.Constructor, Args: appendValue(n.Args, arg)})
	case *value.FlexStructure:
		return sink(&value.FlexStructure{Symbol: n.Symbol, Args: appendValue(n.Args, arg)})
	case *value.Closure:
		extended := n.Env.Extended()
		extended.Define(n.Var, arg)
		return ev.evalExpression(n.Body, extended, sink)
	case *value.Primitive:
		newArgs := appendValue(n.Args, arg)
		if len(newArgs) < primitiveArity(n.Name) {
			return sink(&value.Primitive{Name: n.Name, Args: newArgs})
		}
		return ev.dispatchPrimitive(n.Name, newArgs, sink)
	default:
		return false, diagnostics.Fail(diagnostics.Evaluator, "not-applicable", token.Position{}, diagnostics.D("value", value.Show(fn)))
	}
}

// applyMany applies fn to each of args in turn, left to right.
func (ev *Evaluator) applyMany(fn value.Value, args []value.Value, sink Sink) (bool, error) {
	if len(args) == 0 {
		return sink(fn)
	}
	return ev.apply(fn, args[0], func(v value.Value) (bool, error) {
		return ev.applyMany(v, args[1:], sink)
	})
}

func appendValue(xs []value.Value, x value.Value) []value.Value {
	out := make([]value.Value, len(xs), len(xs)+1)
	copy(out, xs)
	return append(out, x)
}

// dispatchPrimitive saturates one of the three primitive combinators of
// §4.2.5 / §4.3.3.
func (ev *Evaluator) dispatchPrimitive(name string, args []value.Value, sink Sink) (bool, error) {
	switch name {
	case config.OpSequence:
		return ev.evalSeq(args[0], args[1], sink)
	case config.OpAlternative:
		return ev.evalAlt(args[0], args[1], sink)
	case config.OpUnify:
		return ev.evalUnify(args[0], args[1], sink)
	default:
		return false, diagnostics.Fail(diagnostics.Evaluator, "unimplemented-primitive", token.Position{}, diagnostics.D("name", name))
	}
}

// evalSeq: for each solution of v1, yield every solution of v2, discarding
// v1's value but keeping its effect on the metavariable store (§4.3.3).
func (ev *Evaluator) evalSeq(v1, v2 value.Value, sink Sink) (bool, error) {
	return ev.evalValue(v1, func(value.Value) (bool, error) {
		return ev.evalValue(v2, sink)
	})
}

// evalAlt: yield every solution of v1, then every solution of v2 (§4.3.3,
// §5 ordering guarantee).
func (ev *Evaluator) evalAlt(v1, v2 value.Value, sink Sink) (bool, error) {
	cont, err := ev.evalValue(v1, sink)
	if err != nil || !cont {
		return cont, err
	}
	return ev.evalValue(v2, sink)
}

// evalUnify starts first-order unification (§4.3.4) with a single goal.
func (ev *Evaluator) evalUnify(v1, v2 value.Value, sink Sink) (bool, error) {
	return ev.unifyGoals([]goal{{v1, v2}}, sink)
}
