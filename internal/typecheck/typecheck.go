// Package typecheck implements the kind-and-type checker / elaborator of
// §4.2: it kind-checks data declarations, elaborates value declarations
// (desugaring multi-equation pattern matching into fresh-variables plus
// unification plus alternation) and performs let-generalisation, producing
// a fully type-annotated core AST from the parser's surface AST.
package typecheck

import (
	"fmt"

	"github.com/ambulancja/falopa/internal/ast"
	"github.com/ambulancja/falopa/internal/config"
	"github.com/ambulancja/falopa/internal/diagnostics"
	"github.com/ambulancja/falopa/internal/kinds"
	"github.com/ambulancja/falopa/internal/token"
)

// Checker owns the two environments of §4.2.2: typeEnv maps type names to
// kinds, valEnv maps value names to (possibly polymorphic) types.
type Checker struct {
	typeEnv *scope[kinds.Kind]
	valEnv  *scope[ast.Expr]
}

// New seeds both environments with the primitive names of §4.2.5.
func New() *Checker {
	c := &Checker{typeEnv: newScope[kinds.Kind](), valEnv: newScope[ast.Expr]()}

	c.typeEnv.Define(config.OpArrow, kinds.Arrow{Domain: kinds.Star{}, Codomain: kinds.Arrow{Domain: kinds.Star{}, Codomain: kinds.Star{}}})
	c.typeEnv.Define(config.TypeInt, kinds.Star{})
	c.typeEnv.Define(config.TypeUnit, kinds.Star{})

	var zero token.Position
	a := ast.NewVariable(zero, "a")
	b := ast.NewVariable(zero, "b")
	unitType := ast.NewVariable(zero, config.TypeUnit)

	c.valEnv.Define(config.OpAlternative,
		ast.NewForall(zero, "a", ast.FunctionType(zero, a, ast.FunctionType(zero, a, a))))
	c.valEnv.Define(config.OpSequence,
		ast.NewForall(zero, "a", ast.NewForall(zero, "b", ast.FunctionType(zero, a, ast.FunctionType(zero, b, b)))))
	c.valEnv.Define(config.OpUnify,
		ast.NewForall(zero, "a", ast.FunctionType(zero, a, ast.FunctionType(zero, a, unitType))))

	return c
}

// Check runs the full pipeline on a parsed program.
func Check(prog *ast.Program) (*ast.Program, error) {
	return New().CheckProgram(prog)
}

var (
	nextParamIndex   int
	nextTypeVarIndex int
)

func freshParamName() string {
	nextParamIndex++
	return fmt.Sprintf("p%d", nextParamIndex)
}

func freshTypeVarName(prefix string) string {
	nextTypeVarIndex++
	return fmt.Sprintf("%s%d", prefix, nextTypeVarIndex)
}

// CheckProgram kind-checks every data declaration (all LHSs before any RHS,
// so constructors may reference types declared later in the file) and then
// type-checks the program body (§4.2.1).
func (c *Checker) CheckProgram(prog *ast.Program) (*ast.Program, error) {
	for _, decl := range prog.DataDeclarations {
		if err := c.checkDataDeclarationLHS(decl); err != nil {
			return nil, err
		}
	}
	for _, decl := range prog.DataDeclarations {
		if err := c.checkDataDeclarationRHS(decl); err != nil {
			return nil, err
		}
	}

	_, body, err := c.checkExpr(prog.Body)
	if err != nil {
		return nil, err
	}
	return ast.NewProgram(prog.DataDeclarations, body), nil
}

func (c *Checker) checkDataDeclarationLHS(decl *ast.DataDeclaration) error {
	lhs := decl.LHS
	arity := 0
	for {
		app, ok := lhs.(*ast.Application)
		if !ok {
			break
		}
		if _, ok := app.Arg.(*ast.Variable); !ok {
			return diagnostics.Fail(diagnostics.TypeChecker, "data-lhs-arg-variable", app.Arg.Position(), nil)
		}
		lhs = app.Fun
		arity++
	}
	head, ok := lhs.(*ast.Variable)
	if !ok {
		return diagnostics.Fail(diagnostics.TypeChecker, "data-lhs-type-variable", lhs.Position(), nil)
	}
	if c.typeEnv.IsLocallyDefined(head.Name) {
		return diagnostics.Fail(diagnostics.TypeChecker, "data-lhs-type-already-defined", head.Position(), diagnostics.D("name", head.Name))
	}
	c.typeEnv.Define(head.Name, kinds.FreshArrow(arity))
	return nil
}

func (c *Checker) checkDataDeclarationRHS(decl *ast.DataDeclaration) error {
	head, _ := ast.ApplicationHead(decl.LHS).(*ast.Variable)
	for _, ctor := range decl.Constructors {
		if err := c.checkConstructorDeclaration(head.Name, ctor); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) checkConstructorDeclaration(typeName string, decl *ast.TypeDeclaration) error {
	if c.valEnv.IsLocallyDefined(decl.Name) {
		return diagnostics.Fail(diagnostics.TypeChecker, "constructor-already-defined", decl.Position(), diagnostics.D("name", decl.Name))
	}
	closedType := c.closeType(decl.Type)

	c.typeEnv.OpenScope()
	err := c.checkTypeHasAtomicKind(closedType)
	c.typeEnv.CloseScope()
	if err != nil {
		return err
	}

	if !constructorReturnsInstance(typeName, decl.Type) {
		return diagnostics.Fail(diagnostics.TypeChecker, "constructor-must-return-instance", decl.Type.Position(),
			diagnostics.D("type_name", typeName, "constructor_name", decl.Name))
	}
	c.valEnv.Define(decl.Name, closedType)
	return nil
}

// closeType universally quantifies every free type variable of typ that is
// not itself the name of a declared type (§4.2.1).
func (c *Checker) closeType(typ ast.Expr) ast.Expr {
	free := map[string]bool{}
	freeTypeVariables(typ, free)
	var names []string
	for v := range free {
		if !c.typeEnv.IsDefined(v) {
			names = append(names, v)
		}
	}
	sortStrings(names)
	return ast.ForallMany(typ.Position(), names, typ)
}

func (c *Checker) checkTypeHasAtomicKind(typ ast.Expr) error {
	kind, err := c.checkTypeKind(typ)
	if err != nil {
		return err
	}
	if err := kinds.Unify(kind, kinds.Star{}); err != nil {
		return diagnostics.Fail(diagnostics.TypeChecker, "expected-atomic-kind", typ.Position(),
			diagnostics.D("type", ast.Show(typ), "kind", kind.String()))
	}
	return nil
}

func (c *Checker) checkTypeKind(e ast.Expr) (kinds.Kind, error) {
	switch n := e.(type) {
	case *ast.Variable:
		k, ok := c.typeEnv.Value(n.Name)
		if !ok {
			return nil, diagnostics.Fail(diagnostics.TypeChecker, "undefined-type", n.Position(), diagnostics.D("name", n.Name))
		}
		return k, nil
	case *ast.Application:
		kfun, err := c.checkTypeKind(n.Fun)
		if err != nil {
			return nil, err
		}
		karg, err := c.checkTypeKind(n.Arg)
		if err != nil {
			return nil, err
		}
		kres := kinds.Fresh("t")
		if err := kinds.Unify(kfun, kinds.Arrow{Domain: karg, Codomain: kres}); err != nil {
			return nil, diagnostics.Fail(diagnostics.TypeChecker, "kinds-do-not-unify", n.Position(), nil)
		}
		return kres, nil
	case *ast.Forall:
		c.typeEnv.Define(n.Var, kinds.Fresh("t"))
		return c.checkTypeKind(n.Body)
	default:
		return nil, diagnostics.Fail(diagnostics.TypeChecker, "expected-a-type", e.Position(), diagnostics.D("got", ast.Show(e)))
	}
}

func constructorReturnsInstance(typeName string, e ast.Expr) bool {
	switch n := e.(type) {
	case *ast.Variable:
		return n.Name == typeName
	case *ast.Application:
		if ast.IsArrowType(n) {
			return constructorReturnsInstance(typeName, n.Arg)
		}
		return constructorReturnsInstance(typeName, n.Fun)
	case *ast.Forall:
		return constructorReturnsInstance(typeName, n.Body)
	default:
		return false
	}
}

// checkExpr type-checks e, returning its inferred type alongside an
// elaborated expression (identical to e for every node kind except Let,
// which desugars pattern-matching equations into lambdas guarded by
// unification goals; §4.2.3).
func (c *Checker) checkExpr(e ast.Expr) (ast.Expr, ast.Expr, error) {
	switch n := e.(type) {
	case *ast.IntegerConstant:
		return c.checkIntegerConstant(n)
	case *ast.Wildcard:
		// A nested wildcard (e.g. inside `cons _ xs`) needs no binding, only
		// a fresh type of its own.
		return ast.FreshMetavar("w", n.Position()), n, nil
	case *ast.Variable:
		return c.checkVariable(n)
	case *ast.Application:
		return c.checkApplication(n)
	case *ast.Lambda:
		return c.checkLambda(n)
	case *ast.Fresh:
		return c.checkFresh(n)
	case *ast.Let:
		return c.checkLet(n)
	default:
		return nil, nil, diagnostics.Fail(diagnostics.TypeChecker, "expression-not-implemented", e.Position(), diagnostics.D("got", ast.Show(e)))
	}
}

func (c *Checker) checkIntegerConstant(n *ast.IntegerConstant) (ast.Expr, ast.Expr, error) {
	return ast.NewVariable(n.Position(), config.TypeInt), n, nil
}

func (c *Checker) checkVariable(n *ast.Variable) (ast.Expr, ast.Expr, error) {
	typ, ok := c.valEnv.Value(n.Name)
	if !ok {
		return nil, nil, diagnostics.Fail(diagnostics.TypeChecker, "undefined-variable", n.Position(), diagnostics.D("name", n.Name))
	}
	return instantiateAllForalls(typ), n, nil
}

func (c *Checker) checkApplication(n *ast.Application) (ast.Expr, ast.Expr, error) {
	funType, efun, err := c.checkExpr(n.Fun)
	if err != nil {
		return nil, nil, err
	}
	argType, earg, err := c.checkExpr(n.Arg)
	if err != nil {
		return nil, nil, err
	}
	resultType := ast.FreshMetavar("r", n.Position())
	if err := unifyTypes(funType, ast.FunctionType(n.Position(), argType, resultType)); err != nil {
		return nil, nil, err
	}
	return resultType, ast.Apply(n.Position(), efun, earg), nil
}

// checkLambda binds v to a fresh type metavariable in a new scope and
// checks the body against it; the arrow from that metavariable to the
// body's type is the lambda's own type (§4.2.4, used by every desugared
// equation's curried parameter list).
func (c *Checker) checkLambda(n *ast.Lambda) (ast.Expr, ast.Expr, error) {
	c.valEnv.OpenScope()
	paramType := ast.FreshMetavar("t", n.Position())
	c.valEnv.Define(n.Var, paramType)
	bodyType, body, err := c.checkExpr(n.Body)
	c.valEnv.CloseScope()
	if err != nil {
		return nil, nil, err
	}
	return ast.FunctionType(n.Position(), paramType, bodyType), ast.NewLambda(n.Position(), n.Var, body), nil
}

func (c *Checker) checkFresh(n *ast.Fresh) (ast.Expr, ast.Expr, error) {
	c.valEnv.OpenScope()
	mv := ast.FreshMetavar("t", n.Position())
	c.valEnv.Define(n.Var, mv)
	typ, body, err := c.checkExpr(n.Body)
	c.valEnv.CloseScope()
	if err != nil {
		return nil, nil, err
	}
	return typ, ast.NewFresh(n.Position(), n.Var, body), nil
}

func sortStrings(ss []string) {
	for i := 1; i < len(ss); i++ {
		for j := i; j > 0 && ss[j-1] > ss[j]; j-- {
			ss[j-1], ss[j] = ss[j], ss[j-1]
		}
	}
}
