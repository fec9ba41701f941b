// Package config is the single source of truth for the names, precedences
// and kinds/types the language seeds into every fresh parser and checker:
// the four primitive mixfix operators, the two primitive type constants,
// and the three primitive combinators of the evaluator. Everything else in
// the pipeline (the precedence table, the type environment, the evaluator's
// primitive dispatch table) is derived from these tables rather than
// hard-coding the names inline.
package config

// Fixity mirrors token.INFIX / token.INFIXL / token.INFIXR without importing
// the token package, so this file stays a leaf dependency.
type Fixity string

const (
	Infix  Fixity = "infix"
	Infixl Fixity = "infixl"
	Infixr Fixity = "infixr"
)

// OperatorSeed is one of the mixfix operators pre-declared before parsing
// begins, per §4.1.
type OperatorSeed struct {
	Name       string
	Fixity     Fixity
	Precedence int
}

var PrimitiveOperators = []OperatorSeed{
	{Name: "_→_", Fixity: Infixr, Precedence: 50},
	{Name: "_<>_", Fixity: Infixr, Precedence: 100},
	{Name: "_>>_", Fixity: Infixr, Precedence: 150},
	{Name: "_==_", Fixity: Infix, Precedence: DefaultOperatorPrecedence},
}

// DefaultOperatorPrecedence is the implicit precedence given to an
// undeclared operator name the first time it appears in a type declaration
// (§4.1).
const DefaultOperatorPrecedence = 200

// Names of the three primitive value combinators (§4.2.5), the evaluator's
// three dispatchable primitives (§4.3.3), and the two primitive type
// constants.
const (
	OpArrow       = "_→_"
	OpAlternative = "_<>_"
	OpSequence    = "_>>_"
	OpUnify       = "_==_"

	TypeInt  = "Int"
	TypeUnit = "Unit"

	ValueUnit = "unit"

	EntryPoint = "main"
)
