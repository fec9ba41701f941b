package typecheck

import (
	"github.com/ambulancja/falopa/internal/ast"
	"github.com/ambulancja/falopa/internal/diagnostics"
	"github.com/ambulancja/falopa/internal/token"
)

// checkLet is the core of elaboration (§4.2.2, §4.2.3): it splits a Let's
// declarations into type signatures and equation groups, desugars each
// group of equations into a single lambda guarded by unification goals,
// infers and generalises a type for every bound name, reconciles that
// inferred type against any explicit signature, then checks the body.
func (c *Checker) checkLet(n *ast.Let) (ast.Expr, ast.Expr, error) {
	c.valEnv.OpenScope()

	declaredTypes := map[string]*ast.TypeDeclaration{}
	definitions := map[string][]*ast.Definition{}
	var definitionOrder []string

	for _, d := range n.Declarations {
		switch decl := d.(type) {
		case *ast.TypeDeclaration:
			if _, ok := declaredTypes[decl.Name]; ok {
				c.valEnv.CloseScope()
				return nil, nil, diagnostics.Fail(diagnostics.TypeChecker, "type-already-declared", decl.Position(), diagnostics.D("name", decl.Name))
			}
			declaredTypes[decl.Name] = decl
		case *ast.Definition:
			head, ok := ast.ApplicationHead(decl.LHS).(*ast.Variable)
			if !ok {
				c.valEnv.CloseScope()
				return nil, nil, diagnostics.Fail(diagnostics.TypeChecker, "definition-lhs-must-have-variable-head", decl.Position(), nil)
			}
			if _, seen := definitions[head.Name]; !seen {
				definitionOrder = append(definitionOrder, head.Name)
			}
			definitions[head.Name] = append(definitions[head.Name], decl)
		default:
			c.valEnv.CloseScope()
			return nil, nil, diagnostics.Fail(diagnostics.TypeChecker, "unexpected-declaration", d.Position(), nil)
		}
	}

	for name, decl := range declaredTypes {
		if _, ok := definitions[name]; !ok {
			c.valEnv.CloseScope()
			return nil, nil, diagnostics.Fail(diagnostics.TypeChecker, "declared-without-definition", decl.Position(), diagnostics.D("name", name))
		}
	}

	// Bind every name to a fresh placeholder type up front so mutually
	// recursive equations can reference each other (§4.2.2 step 1).
	placeholders := map[string]*ast.Metavar{}
	for _, name := range definitionOrder {
		mv := ast.FreshMetavar("t", n.Position())
		placeholders[name] = mv
		c.valEnv.Define(name, mv)
	}

	elaboratedDefs := map[string]ast.Expr{}
	for _, name := range definitionOrder {
		desugared, err := c.desugarDefinition(name, definitions[name])
		if err != nil {
			c.valEnv.CloseScope()
			return nil, nil, err
		}
		typ, elaborated, err := c.checkExpr(desugared)
		if err != nil {
			c.valEnv.CloseScope()
			return nil, nil, err
		}
		if err := unifyTypes(placeholders[name], typ); err != nil {
			c.valEnv.CloseScope()
			return nil, nil, err
		}
		elaboratedDefs[name] = elaborated
	}

	c.generalizeTypesInCurrentScope()

	if err := c.checkDeclaredInstantiateReal(declaredTypes); err != nil {
		c.valEnv.CloseScope()
		return nil, nil, err
	}

	bodyType, elaboratedBody, err := c.checkExpr(n.Body)
	if err != nil {
		c.valEnv.CloseScope()
		return nil, nil, err
	}

	desugaredDecls := make([]ast.Decl, 0, 2*len(definitionOrder))
	for _, name := range definitionOrder {
		typ, _ := c.valEnv.Value(name)
		desugaredDecls = append(desugaredDecls,
			ast.NewTypeDeclaration(n.Position(), name, typ),
			ast.NewDefinition(n.Position(), ast.NewVariable(n.Position(), name), elaboratedDefs[name], nil))
	}

	c.valEnv.CloseScope()
	return bodyType, ast.NewLet(n.Position(), desugaredDecls, elaboratedBody), nil
}

// generalizeTypesInCurrentScope closes every name bound in the innermost
// valEnv rib over its free metavariables, except those also reachable from
// an enclosing scope: those remain open because an outer unification may
// still constrain them (§4.2.2 step 4).
func (c *Checker) generalizeTypesInCurrentScope() {
	forbidden := map[*ast.Metavar]bool{}
	for _, outerType := range c.valEnv.AllValuesInParentScopes() {
		collectFreeMetavars(outerType, forbidden)
	}

	for _, name := range c.valEnv.CurrentScopeNames() {
		typ, _ := c.valEnv.Value(name)
		free := map[*ast.Metavar]bool{}
		collectFreeMetavars(typ, free)

		generalized := typ
		var quantified []string
		for m := range free {
			if forbidden[m] {
				continue
			}
			varName := freshTypeVarName("g")
			generalized = substituteMetavar(generalized, m, ast.NewVariable(typ.Position(), varName))
			quantified = append(quantified, varName)
		}
		sortStrings(quantified)
		c.valEnv.Define(name, ast.ForallMany(typ.Position(), quantified, generalized))
	}
}

// checkDeclaredInstantiateReal reconciles each explicitly declared type
// against the type actually inferred and generalised for that name. The
// declared (user-authored) type is skolemized: its quantifiers are eliminated
// with rigid, fresh named variables rather than metavariables, so they
// cannot be narrowed to something more specific during unification. Only the
// inferred type is instantiated with metavariables. This makes the check
// asymmetric, as it must be: the inferred type has to be at least as general
// as the declared one, not merely unifiable with it, or else a declared
// signature that is too general (e.g. `id : a → b` for an inferred `∀a. a →
// a`) would be wrongly accepted. The declared type is then kept as the
// name's final type so its variable names survive into diagnostics and the
// elaborated tree (§4.2.2 step 5).
func (c *Checker) checkDeclaredInstantiateReal(declared map[string]*ast.TypeDeclaration) error {
	for name, decl := range declared {
		inferred, _ := c.valEnv.Value(name)
		declaredClosed := c.closeType(decl.Type)

		c.typeEnv.OpenScope()
		err := c.checkTypeHasAtomicKind(declaredClosed)
		c.typeEnv.CloseScope()
		if err != nil {
			return err
		}

		if err := unifyTypes(skolemizeAllForalls(declaredClosed), instantiateAllForalls(inferred)); err != nil {
			return diagnostics.Fail(diagnostics.TypeChecker, "declared-type-mismatch", decl.Position(),
				diagnostics.D("name", name, "declared", ast.Show(declaredClosed), "inferred", ast.Show(inferred)))
		}
		c.valEnv.Define(name, declaredClosed)
	}
	return nil
}

// instantiateAllForalls eliminates every outer Forall layer of typ,
// replacing each bound variable with a fresh metavariable, so the
// remaining body can be unified against a use site (§4.2.4).
func instantiateAllForalls(typ ast.Expr) ast.Expr {
	for {
		f, ok := typ.(*ast.Forall)
		if !ok {
			return typ
		}
		typ = instantiateForall(f, ast.FreshMetavar(f.Var, f.Position()))
	}
}

// skolemizeAllForalls eliminates every outer Forall layer of typ, replacing
// each bound variable with a fresh rigid named variable instead of a
// metavariable, so a reconciling unification cannot bind it to anything more
// specific (§4.2.2 step 5; mirrors original_source/src/typechecker.py's use
// of syntax.fresh_variable for this same reconciliation).
func skolemizeAllForalls(typ ast.Expr) ast.Expr {
	for {
		f, ok := typ.(*ast.Forall)
		if !ok {
			return typ
		}
		typ = instantiateForall(f, ast.NewVariable(f.Position(), freshTypeVarName("s")))
	}
}

// desugarDefinition turns a group of equations for one name into a single
// lambda: fresh parameters stand in for the equations' shared arity, and
// the equations' patterns become unification goals sequenced before each
// alternative's body, the whole group combined with the alternation
// combinator so every matching equation contributes its solutions, in
// equation order (§4.2.3). Every equation in
// the group must agree on arity, since they all desugar against the same
// fixed parameter list; a mismatch is equations-arity-mismatch (§4.2.3, §7).
func (c *Checker) desugarDefinition(name string, equations []*ast.Definition) (ast.Expr, error) {
	at := equations[0].Position()
	arity := len(ast.ApplicationArgs(equations[0].LHS))

	params := make([]string, arity)
	for i := range params {
		params[i] = freshParamName()
	}

	alternatives := make([]ast.Expr, len(equations))
	for i, eqn := range equations {
		patterns := ast.ApplicationArgs(eqn.LHS)
		if len(patterns) != arity {
			return nil, diagnostics.Fail(diagnostics.TypeChecker, "equations-arity-mismatch", eqn.Position(),
				diagnostics.D("name", name, "expected", arity, "got", len(patterns)))
		}
		alternatives[i] = c.desugarEquation(params, patterns, eqn.RHS, eqn.Where, eqn.Position())
	}

	return ast.LambdaMany(at, params, ast.AlternativeMany(at, alternatives)), nil
}

// desugarEquation builds one equation's contribution to the alternation:
// a unify goal per non-wildcard pattern (a top-level wildcard needs no
// goal at all, since it matches anything and binds nothing), sequenced
// before the equation's (possibly where-qualified) body, and the whole
// thing closed with `Fresh` over every pattern variable not already bound
// elsewhere (§4.2.3: "the equation becomes `Fresh fvs . sequence_many1(goals, b)`").
// A pattern's constructor names are themselves ordinary Variables in this
// AST and would otherwise be misidentified as free pattern variables;
// filtering by what the value environment already defines excludes them.
func (c *Checker) desugarEquation(params []string, patterns []ast.Expr, rhs ast.Expr, where []ast.Decl, at token.Position) ast.Expr {
	var goals []ast.Expr
	for i, pattern := range patterns {
		if _, isWildcard := pattern.(*ast.Wildcard); isWildcard {
			continue
		}
		goals = append(goals, ast.Unify(pattern.Position(), ast.NewVariable(pattern.Position(), params[i]), pattern))
	}

	body := rhs
	if len(where) > 0 {
		body = ast.NewLet(at, where, body)
	}

	free := ast.FreeVariablesList(patterns)
	var fvs []string
	for v := range free {
		if !c.valEnv.IsDefined(v) {
			fvs = append(fvs, v)
		}
	}
	sortStrings(fvs)

	return ast.FreshMany(at, fvs, ast.SequenceMany1(at, goals, body))
}
