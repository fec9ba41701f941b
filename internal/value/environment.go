package value

// Environment is the PersistentEnvironment of §3.5: a tree of scopes where
// inner lookups fall through to outer ones, but definitions in a scope are
// invisible to its parent. Set is the exception: it rebinds a name in
// whichever scope defines it, so a rebinding made through a child scope is
// visible to the defining ancestor. Dropping a child scope therefore does not
// undo such rebindings; the evaluator restores the previous value itself with
// a second Set when it backtracks (§3.7, §5).
type Environment struct {
	store map[string]Value
	outer *Environment
}

// NewEnvironment creates a root scope with no outer environment.
func NewEnvironment() *Environment {
	return &Environment{store: make(map[string]Value)}
}

// Extended returns a child scope that inherits lookups from e but isolates
// its own definitions (§3.5).
func (e *Environment) Extended() *Environment {
	return &Environment{store: make(map[string]Value), outer: e}
}

// Define binds name in this scope, shadowing any outer binding.
func (e *Environment) Define(name string, v Value) {
	e.store[name] = v
}

// IsDefined reports whether name is bound in this scope or any ancestor.
func (e *Environment) IsDefined(name string) bool {
	if _, ok := e.store[name]; ok {
		return true
	}
	if e.outer != nil {
		return e.outer.IsDefined(name)
	}
	return false
}

// Value looks up name, searching outward through enclosing scopes.
func (e *Environment) Value(name string) (Value, bool) {
	if v, ok := e.store[name]; ok {
		return v, true
	}
	if e.outer != nil {
		return e.outer.Value(name)
	}
	return nil, false
}

// Set rebinds name to v in whichever scope along the chain currently
// defines it (call-by-need memoisation rebinds in place rather than
// shadowing, so that later lookups through the same scope chain observe the
// memoised value). If name is undefined anywhere, Set defines it locally.
func (e *Environment) Set(name string, v Value) {
	for scope := e; scope != nil; scope = scope.outer {
		if _, ok := scope.store[name]; ok {
			scope.store[name] = v
			return
		}
	}
	e.Define(name, v)
}
