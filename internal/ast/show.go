package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ambulancja/falopa/internal/mixfix"
)

// Show renders e back into surface syntax. It round-trips: Show(Parse(Show(e)))
// == Show(e) for any e a full parse can produce (§8 property 3), because it
// reverses exactly the mixfix folding the parser performs.
func Show(e Expr) string {
	switch n := e.(type) {
	case *IntegerConstant:
		return strconv.FormatInt(n.Value, 10)
	case *Wildcard:
		return "_"
	case *Variable:
		return n.Name
	case *Metavar:
		if n.indirection != nil {
			return Show(Representative(n))
		}
		return fmt.Sprintf("?%s%d", n.Prefix, n.Index)
	case *Forall:
		return fmt.Sprintf("forall %s. %s", n.Var, Show(n.Body))
	case *Lambda:
		return fmt.Sprintf("\\%s -> %s", n.Var, Show(n.Body))
	case *Fresh:
		return fmt.Sprintf("fresh %s . %s", n.Var, Show(n.Body))
	case *Let:
		var b strings.Builder
		b.WriteString("let ")
		for i, d := range n.Declarations {
			if i > 0 {
				b.WriteString("; ")
			}
			b.WriteString(ShowDecl(d))
		}
		b.WriteString(" in ")
		b.WriteString(Show(n.Body))
		return b.String()
	case *Application:
		return showApplication(n)
	default:
		return fmt.Sprintf("<%T>", e)
	}
}

// ShowAtomic wraps e in parentheses unless it is already lexically atomic,
// matching the surface grammar's atom production.
func ShowAtomic(e Expr) string {
	if isAtom(e) {
		return Show(e)
	}
	return "(" + Show(e) + ")"
}

func isAtom(e Expr) bool {
	switch n := e.(type) {
	case *IntegerConstant, *Wildcard, *Variable:
		return true
	case *Application:
		if IsArrowType(n) {
			return false
		}
		head := ApplicationHead(n)
		args := ApplicationArgs(n)
		if v, ok := head.(*Variable); ok && mixfix.IsOperator(v.Name) {
			return mixfix.Arity(v.Name) == 0 && len(args) == 0
		}
		return false
	default:
		return false
	}
}

func showApplication(n *Application) string {
	if IsArrowType(n) {
		return showArrowType(n)
	}
	head := ApplicationHead(n)
	args := ApplicationArgs(n)

	if v, ok := head.(*Variable); ok && mixfix.IsOperator(v.Name) {
		arity := mixfix.Arity(v.Name)
		if len(args) >= arity {
			mixed := showMixfix(v.Name, args[:arity])
			rest := args[arity:]
			return joinHeadAndArgs(mixed, rest, len(args) == arity)
		}
	}

	headStr := Show(head)
	return joinHeadAndArgs(headStr, args, false)
}

func joinHeadAndArgs(head string, args []Expr, headIsBare bool) string {
	if len(args) == 0 {
		return head
	}
	parts := make([]string, 0, len(args)+1)
	if headIsBare {
		parts = append(parts, head)
	} else {
		parts = append(parts, "("+head+")")
	}
	for _, a := range args {
		parts = append(parts, ShowAtomic(a))
	}
	return strings.Join(parts, " ")
}

func showMixfix(name string, args []Expr) string {
	var out []string
	i := 0
	for _, part := range mixfix.Parts(name) {
		if part == "" {
			out = append(out, ShowAtomic(args[i]))
			i++
		} else {
			out = append(out, part)
		}
	}
	return strings.Join(out, " ")
}

func showArrowType(e Expr) string {
	var parts []string
	cur := e
	for IsArrowType(cur) {
		app := cur.(*Application)
		inner := app.Fun.(*Application)
		parts = append(parts, ShowAtomic(inner.Arg))
		cur = app.Arg
	}
	parts = append(parts, Show(cur))
	return strings.Join(parts, " → ")
}

// ShowDecl renders a single declaration.
func ShowDecl(d Decl) string {
	switch n := d.(type) {
	case *DataDeclaration:
		var ctors []string
		for _, c := range n.Constructors {
			ctors = append(ctors, ShowDecl(c))
		}
		return fmt.Sprintf("data %s where { %s }", Show(n.LHS), strings.Join(ctors, "; "))
	case *TypeDeclaration:
		return fmt.Sprintf("%s : %s", n.Name, Show(n.Type))
	case *Definition:
		s := fmt.Sprintf("%s = %s", Show(n.LHS), Show(n.RHS))
		if len(n.Where) > 0 {
			var where []string
			for _, w := range n.Where {
				where = append(where, ShowDecl(w))
			}
			s += " where { " + strings.Join(where, "; ") + " }"
		}
		return s
	default:
		return fmt.Sprintf("<%T>", d)
	}
}
