package parser_test

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/ambulancja/falopa/internal/ast"
	"github.com/ambulancja/falopa/internal/parser"
)

func firstDecl(t *testing.T, src string) ast.Decl {
	t.Helper()
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	let, ok := prog.Body.(*ast.Let)
	if !ok {
		t.Fatalf("expected the program body to be a Let, got %T", prog.Body)
	}
	if len(let.Declarations) == 0 {
		t.Fatalf("expected at least one declaration")
	}
	return let.Declarations[0]
}

// TestPrecedence checks that `>>` (declared at a tighter precedence) binds
// more closely than `<>`, so `a >> b <> c` parses as `(a >> b) <> c`.
func TestPrecedence(t *testing.T) {
	decl := firstDecl(t, "expr = a >> b <> c")
	def, ok := decl.(*ast.Definition)
	if !ok {
		t.Fatalf("expected a Definition, got %T", decl)
	}

	head, ok := ast.ApplicationHead(def.RHS).(*ast.Variable)
	if !ok || head.Name != "_<>_" {
		t.Fatalf("expected the outermost operator to be _<>_ (loosest-binding), got %s", ast.Show(def.RHS))
	}
	args := ast.ApplicationArgs(def.RHS)
	if len(args) != 2 {
		t.Fatalf("expected 2 arguments to <>, got %d", len(args))
	}
	left, ok := ast.ApplicationHead(args[0]).(*ast.Variable)
	if !ok || left.Name != "_>>_" {
		t.Fatalf("expected the left operand of <> to be a >> application (tighter-binding), got %s", ast.Show(args[0]))
	}
}

// TestRightAssociation checks that `_→_` (declared infixr) associates to the
// right, so `Int → Int → Int` parses as `Int → (Int → Int)`.
func TestRightAssociation(t *testing.T) {
	decl := firstDecl(t, "t : Int → Int → Int")
	typeDecl, ok := decl.(*ast.TypeDeclaration)
	if !ok {
		t.Fatalf("expected a TypeDeclaration, got %T", decl)
	}
	typ := typeDecl.Type

	if !ast.IsArrowType(typ) {
		t.Fatalf("expected an arrow type, got %s", ast.Show(typ))
	}
	outer := typ.(*ast.Application)
	inner := outer.Fun.(*ast.Application)

	domain, ok := inner.Arg.(*ast.Variable)
	if !ok || domain.Name != "Int" {
		t.Fatalf("expected the outermost domain to be Int, got %s", ast.Show(inner.Arg))
	}
	if !ast.IsArrowType(outer.Arg) {
		t.Fatalf("expected the codomain to itself be an arrow type (right-associative), got %s", ast.Show(outer.Arg))
	}
}

// TestFreshExpression checks that nested `fresh` binders parse, each one
// binding as loosely as possible so it wraps everything to its right.
func TestFreshExpression(t *testing.T) {
	decl := firstDecl(t, "main = fresh x . fresh y . x")
	def, ok := decl.(*ast.Definition)
	if !ok {
		t.Fatalf("expected a Definition, got %T", decl)
	}
	outer, ok := def.RHS.(*ast.Fresh)
	if !ok {
		t.Fatalf("expected a Fresh expression, got %T", def.RHS)
	}
	if outer.Var != "x" {
		t.Fatalf("expected the outer fresh to bind x, got %s", outer.Var)
	}
	inner, ok := outer.Body.(*ast.Fresh)
	if !ok {
		t.Fatalf("expected the outer fresh's body to itself be a Fresh, got %T", outer.Body)
	}
	if inner.Var != "y" {
		t.Fatalf("expected the inner fresh to bind y, got %s", inner.Var)
	}
}

// TestSingleConstructorDataDeclaration is a regression test for a grammar
// gap where a where-block with exactly one declaration (no leading
// separator before it) failed to parse.
func TestSingleConstructorDataDeclaration(t *testing.T) {
	src := `
data Pair a b where {
  pair : a → b → Pair a b
}
main = pair 1 2
`
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("expected a single-constructor data declaration to parse, got %v", err)
	}
	if len(prog.DataDeclarations) != 1 {
		t.Fatalf("expected 1 data declaration, got %d", len(prog.DataDeclarations))
	}
	if len(prog.DataDeclarations[0].Constructors) != 1 {
		t.Fatalf("expected 1 constructor, got %d", len(prog.DataDeclarations[0].Constructors))
	}
}

// TestRoundTrip is §8 property 3: showing a parsed declaration, reparsing
// that text, and showing it again reaches a fixed point.
func TestRoundTrip(t *testing.T) {
	sources := []string{
		"expr = a >> b <> c",
		"t : Int → Int → Int",
		"expr = f a b",
		"expr = cons 1 (cons 2 nil)",
		"main = fresh x . x == 1 >> x",
	}

	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			prog, err := parser.Parse(src)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			first := ast.ShowDecl(prog.Body.(*ast.Let).Declarations[0])

			reparsed, err := parser.Parse(first)
			if err != nil {
				t.Fatalf("reparse of %q: %v", first, err)
			}
			second := ast.ShowDecl(reparsed.Body.(*ast.Let).Declarations[0])

			if first != second {
				t.Errorf("round trip did not reach a fixed point:\nfirst:  %s\nsecond: %s", first, second)
			}
		})
	}
}

// TestShowSnapshot pins the canonical pretty-printed form of a representative
// spread of declarations against a golden snapshot, so a change to showMixfix
// or its callers that silently alters the surface syntax's canonical
// rendering is caught even though it wouldn't break TestRoundTrip's
// fixed-point check (a consistently-wrong rendering is still a fixed point).
func TestShowSnapshot(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"arrow-chain", "t : Int → Int → Int"},
		{"data-declaration", "data Pair a b where { pair : a → b → Pair a b }"},
		{"fresh-unify", "main = fresh x . x == 1 >> x"},
	}

	for _, c := range cases {
		prog, err := parser.Parse(c.src)
		if err != nil {
			t.Fatalf("parse %q: %v", c.src, err)
		}
		var rendered string
		if len(prog.DataDeclarations) > 0 {
			rendered = ast.ShowDecl(prog.DataDeclarations[0])
		} else {
			rendered = ast.ShowDecl(prog.Body.(*ast.Let).Declarations[0])
		}
		snaps.MatchSnapshot(t, c.name, rendered)
	}
}

func TestFixityDeclarationChangesGrouping(t *testing.T) {
	// Declare `%` infixl at a precedence looser than every seeded operator
	// and check that a chain of it groups to the left.
	decl := firstDecl(t, "infixl 10 _%_ ; expr = a % b % c")
	def, ok := decl.(*ast.Definition)
	if !ok {
		t.Fatalf("expected a Definition, got %T", decl)
	}
	head, ok := ast.ApplicationHead(def.RHS).(*ast.Variable)
	if !ok || head.Name != "_%_" {
		t.Fatalf("expected the outermost operator to be _%%_, got %s", ast.Show(def.RHS))
	}
	args := ast.ApplicationArgs(def.RHS)
	if len(args) != 2 {
		t.Fatalf("expected 2 arguments, got %d", len(args))
	}
	// infixl: (a % b) % c, so the left argument is itself a % application.
	leftHead, ok := ast.ApplicationHead(args[0]).(*ast.Variable)
	if !ok || leftHead.Name != "_%_" {
		t.Fatalf("expected infixl grouping (a %% b) %% c, got left=%s", ast.Show(args[0]))
	}
}
