// Package mixfix implements the name algebra of §3.1: how an operator name
// such as "_+_" or "if_then_else_" decomposes into argument holes and fixed
// parts, shared by the precedence table, the parser and AST pretty-printing.
package mixfix

import "strings"

// IsOperator reports whether name contains at least one underscore hole.
func IsOperator(name string) bool {
	return strings.Contains(name, "_")
}

// Parts splits an operator name into its maximal non-underscore substrings,
// keeping the empty strings that mark argument holes: Parts("_+_") is
// ["", "+", ""].
func Parts(name string) []string {
	return strings.Split(name, "_")
}

// FromParts is the inverse of Parts.
func FromParts(parts []string) string {
	return strings.Join(parts, "_")
}

// Arity is the number of argument holes in name, i.e. its underscore count.
func Arity(name string) int {
	return strings.Count(name, "_")
}

// IsBinary reports whether name has exactly the shape ["", p, ""] for some
// non-empty p (§3.1).
func IsBinary(name string) bool {
	parts := Parts(name)
	return len(parts) == 3 && parts[0] == "" && parts[1] != "" && parts[2] == ""
}

// IsPrefix reports whether candidate is a prefix of full, part for part.
func IsPrefix(candidate, full []string) bool {
	if len(candidate) > len(full) {
		return false
	}
	for i := range candidate {
		if candidate[i] != full[i] {
			return false
		}
	}
	return true
}
