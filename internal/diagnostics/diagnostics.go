// Package diagnostics implements the single stage-tagged error taxonomy
// shared by the parser, the type checker and the evaluator: every failure
// is a (stage, code, position, details) tuple, never a bare error string.
package diagnostics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ambulancja/falopa/internal/token"
)

type Stage string

const (
	Parser      Stage = "parser"
	TypeChecker Stage = "typechecker"
	Evaluator   Stage = "evaluator"
)

// Code is one of the kebab-case error identifiers named in the language's
// error taxonomy, e.g. "token-mismatch" or "occurs-check".
type Code string

// Error is the single taxonomy member: every abortable failure in any stage
// is carried as one of these, never a bare fmt.Errorf string.
type Error struct {
	Stage    Stage
	Code     Code
	Position token.Position
	Details  map[string]any
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:%s", e.Stage, e.Code)
	if e.Position != (token.Position{}) {
		fmt.Fprintf(&b, " at %s", e.Position)
	}
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(":")
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, e.Details[k])
		}
	}
	return b.String()
}

// Fail constructs and returns an *Error. Stages call this rather than
// building the struct literal directly so the detail map is always
// allocated lazily and consistently.
func Fail(stage Stage, code Code, position token.Position, details map[string]any) *Error {
	return &Error{Stage: stage, Code: code, Position: position, Details: details}
}

// D is a convenience constructor for a details map, so call sites read as
// diagnostics.Fail(diagnostics.Parser, "token-mismatch", pos, diagnostics.D("expected", tok.EQ, "got", got))
func D(kv ...any) map[string]any {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		m[key] = kv[i+1]
	}
	return m
}
