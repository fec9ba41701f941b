// Package evaluator implements the lazy, backtracking evaluator of §4.3:
// it produces a possibly infinite sequence of values by depth-first search
// over a union-find store of value-level metavariables.
//
// Go has no generator/yield statement, so every producer here is written
// in continuation-passing style: a Sink is called once per solution and
// returns whether the search should keep looking for more. This is a
// direct translation of the reference evaluator's Python generators
// (`for value in self.eval_expression(...): yield ...` becomes
// `ev.evalExpression(..., func(v value.Value) (bool, error) { ... })`),
// not a stylistic choice — nothing in the corpus models backtracking
// search this way, because nothing else in the corpus needs to.
package evaluator

import (
	"fmt"

	"github.com/ambulancja/falopa/internal/ast"
	"github.com/ambulancja/falopa/internal/config"
	"github.com/ambulancja/falopa/internal/diagnostics"
	"github.com/ambulancja/falopa/internal/token"
	"github.com/ambulancja/falopa/internal/value"
)

// Sink receives one solution at a time. Returning false tells the producer
// to stop looking for further solutions (the search unwinds, undoing any
// metavariable bindings and environment rebindings performed since); true
// requests the next solution, if any.
type Sink func(value.Value) (bool, error)

// Strategy selects how a program's result stream is presented (§4.3.5).
type Strategy string

const (
	Weak   Strategy = "weak"
	Strong Strategy = "strong"
)

// Evaluator holds the constructor registry derived from a program's data
// declarations; everything else about evaluation is stateless and carried
// through the environment and the union-find store on value.Metavar cells.
type Evaluator struct {
	constructors map[string]bool
}

// New builds an Evaluator whose constructor registry includes every
// constructor declared in prog plus the built-in nullary `unit` (§6).
func New(prog *ast.Program) *Evaluator {
	ev := &Evaluator{constructors: map[string]bool{config.ValueUnit: true}}
	for _, decl := range prog.DataDeclarations {
		for _, ctor := range decl.Constructors {
			ev.constructors[ctor.Name] = true
		}
	}
	return ev
}

// Eval runs prog's body to completion under strategy, calling sink once
// per solution (§4.3.1, §4.3.5).
func (ev *Evaluator) Eval(prog *ast.Program, strategy Strategy, sink Sink) (bool, error) {
	env := value.NewEnvironment()
	if strategy == Strong {
		return ev.strongEvalExpression(prog.Body, env, sink)
	}
	return ev.evalExpression(prog.Body, env, sink)
}

func isPrimitiveName(name string) bool {
	return name == config.OpUnify || name == config.OpAlternative || name == config.OpSequence
}

func primitiveArity(name string) int {
	return 2
}

// evalExpression is `eval_expression` (§4.3.1): the weak evaluation step
// that reduces an expression to its outermost value, recursing into
// sub-evaluations (and, for Application/primitives, unification) only as
// far as needed to produce one more solution.
func (ev *Evaluator) evalExpression(e ast.Expr, env *value.Environment, sink Sink) (bool, error) {
	switch n := e.(type) {
	case *ast.IntegerConstant:
		return sink(&value.IntegerConstant{Value: n.Value})
	case *ast.Wildcard:
		return sink(&value.FlexStructure{Symbol: value.Fresh("w")})
	case *ast.Variable:
		return ev.evalVariableOrConstructor(n, env, sink)
	case *ast.Lambda:
		return sink(&value.Closure{Var: n.Var, Body: n.Body, Env: env})
	case *ast.Application:
		return ev.evalApplication(n, env, sink)
	case *ast.Let:
		return ev.evalLet(n, env, sink)
	case *ast.Fresh:
		return ev.evalFresh(n, env, sink)
	default:
		return false, diagnostics.Fail(diagnostics.Evaluator, "evaluation-not-implemented", e.Position(), diagnostics.D("got", ast.Show(e)))
	}
}

// evalVariableOrConstructor looks x up in env, weak-evaluating the bound
// value and memoising each produced solution in place for the duration of
// the yield (call-by-need: a thunk is forced at most once per solution,
// and the original binding is restored on backtracking so the environment
// appears immutable across branches; §4.3.1, §5).
func (ev *Evaluator) evalVariableOrConstructor(n *ast.Variable, env *value.Environment, sink Sink) (bool, error) {
	if v0, ok := env.Value(n.Name); ok {
		return ev.evalValue(v0, func(v value.Value) (bool, error) {
			env.Set(n.Name, v)
			cont, err := sink(v)
			env.Set(n.Name, v0)
			return cont, err
		})
	}
	if ev.constructors[n.Name] {
		return sink(&value.RigidStructure{Constructor: n.Name})
	}
	if isPrimitiveName(n.Name) {
		return sink(&value.Primitive{Name: n.Name})
	}
	return false, diagnostics.Fail(diagnostics.Evaluator, "unknown-name", n.Position(), diagnostics.D("name", n.Name))
}

func (ev *Evaluator) evalApplication(n *ast.Application, env *value.Environment, sink Sink) (bool, error) {
	return ev.evalExpression(n.Fun, env, func(vf value.Value) (bool, error) {
		arg := &value.Thunk{Expr: n.Arg, Env: env}
		return ev.apply(vf, arg, sink)
	})
}

// evalLet extends env with one Thunk per definition, closed over the
// extended environment itself so mutually recursive definitions can see
// each other (the type checker's letrec-style placeholder metavariables,
// §4.2.2 step 1, assume exactly this).
func (ev *Evaluator) evalLet(n *ast.Let, env *value.Environment, sink Sink) (bool, error) {
	extended := env.Extended()
	for _, d := range n.Declarations {
		def, ok := d.(*ast.Definition)
		if !ok {
			continue
		}
		head, ok := def.LHS.(*ast.Variable)
		if !ok {
			continue
		}
		extended.Define(head.Name, &value.Thunk{Expr: def.RHS, Env: extended})
	}
	return ev.evalExpression(n.Body, extended, sink)
}

func (ev *Evaluator) evalFresh(n *ast.Fresh, env *value.Environment, sink Sink) (bool, error) {
	extended := env.Extended()
	extended.Define(n.Var, &value.FlexStructure{Symbol: value.Fresh(n.Var)})
	return ev.evalExpression(n.Body, extended, sink)
}

// evalValue forces v one step (§4.3.1's `eval_value`): a decided value
// yields itself, a thunk evaluates its captured expression, and a flex
// structure whose symbol has since been instantiated applies the symbol's
// representative to the stored arguments.
func (ev *Evaluator) evalValue(v value.Value, sink Sink) (bool, error) {
	if value.Decided(v) {
		return sink(v)
	}
	switch n := v.(type) {
	case *value.Thunk:
		return ev.evalExpression(n.Expr, n.Env, sink)
	case *value.FlexStructure:
		return ev.applyMany(value.Representative(n.Symbol), n.Args, sink)
	default:
		return false, diagnostics.Fail(diagnostics.Evaluator, "unimplemented-value-class", token.Position{}, diagnostics.D("value", fmt.Sprintf("%T", v)))
	}
}

// evalOnce runs e to its first solution only, for contexts (the
// higher-order unification fallback) that need a single deterministic
// value rather than a search.
func (ev *Evaluator) evalOnce(e ast.Expr, env *value.Environment) (value.Value, error) {
	var result value.Value
	_, err := ev.evalExpression(e, env, func(v value.Value) (bool, error) {
		result = v
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
