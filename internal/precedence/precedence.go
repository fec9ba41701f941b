// Package precedence implements the precedence table of §3.6: a sorted
// collection of levels keyed by (precedence, fixity), each owning a set of
// declared operator names, with the lookup primitives the mixfix parser
// needs to decide how to consume the next token.
package precedence

import (
	"sort"

	"github.com/ambulancja/falopa/internal/config"
	"github.com/ambulancja/falopa/internal/mixfix"
)

type Fixity = config.Fixity

const (
	Infix  = config.Infix
	Infixl = config.Infixl
	Infixr = config.Infixr
)

// Key identifies a precedence level. Lower Precedence binds looser (§3.6).
type Key struct {
	Precedence int
	Fixity     Fixity
}

type level struct {
	key       Key
	operators map[string]bool
}

// Table is the mutable precedence table owned by a single parser instance.
type Table struct {
	levels  map[Key]*level
	keys    []Key // kept sorted by (Precedence, Fixity)
	names   map[string]bool
	parts   map[string]bool
}

func New() *Table {
	return &Table{
		levels: make(map[Key]*level),
		names:  make(map[string]bool),
		parts:  make(map[string]bool),
	}
}

// Declare registers a new operator at the given precedence level. Returns
// false if name is not a valid operator name or is already declared; callers
// translate that into the parser's "not-an-operator" / "operator-already-
// exists" diagnostics.
func (t *Table) Declare(fixity Fixity, prec int, name string) bool {
	if !mixfix.IsOperator(name) {
		return false
	}
	if t.names[name] {
		return false
	}
	for _, p := range mixfix.Parts(name) {
		if p != "" {
			t.parts[p] = true
		}
	}
	t.names[name] = true

	key := Key{Precedence: prec, Fixity: fixity}
	lv, ok := t.levels[key]
	if !ok {
		lv = &level{key: key, operators: make(map[string]bool)}
		t.levels[key] = lv
		t.keys = append(t.keys, key)
		sort.Slice(t.keys, func(i, j int) bool {
			a, b := t.keys[i], t.keys[j]
			if a.Precedence != b.Precedence {
				return a.Precedence < b.Precedence
			}
			return a.Fixity < b.Fixity
		})
	}
	lv.operators[name] = true
	return true
}

func (t *Table) Fixity(key Key) Fixity {
	return t.levels[key].key.Fixity
}

func (t *Table) IsDeclaredOperator(name string) bool {
	return t.names[name]
}

func (t *Table) IsDeclaredPart(part string) bool {
	return t.parts[part]
}

// FirstLevel returns the loosest-binding level, or the zero Key with ok=false
// if no operators have been declared at all.
func (t *Table) FirstLevel() (Key, bool) {
	if len(t.keys) == 0 {
		return Key{}, false
	}
	return t.keys[0], true
}

// NextLevel returns the level immediately tighter-binding than key, or
// ok=false if key is the tightest level (application parsing follows).
func (t *Table) NextLevel(key Key) (Key, bool) {
	i := sort.Search(len(t.keys), func(i int) bool {
		k := t.keys[i]
		if k.Precedence != key.Precedence {
			return k.Precedence >= key.Precedence
		}
		return k.Fixity >= key.Fixity
	})
	if i < len(t.keys)-1 {
		return t.keys[i+1], true
	}
	return Key{}, false
}

// IsStatusInLevel reports whether status exactly matches the part-sequence
// of some operator declared at key.
func (t *Table) IsStatusInLevel(key Key, status []string) bool {
	for name := range t.levels[key].operators {
		if partsEqual(mixfix.Parts(name), status) {
			return true
		}
	}
	return false
}

// IsStatusPrefixInLevel reports whether status is a (possibly empty, or the
// trivial single-slot) prefix of some operator's parts at key.
func (t *Table) IsStatusPrefixInLevel(key Key, status []string) bool {
	if len(status) == 0 || (len(status) == 1 && status[0] == "") {
		return true
	}
	for name := range t.levels[key].operators {
		if mixfix.IsPrefix(status, mixfix.Parts(name)) {
			return true
		}
	}
	return false
}

// IsBinopInLevel reports whether token is the infix part of some binary
// operator declared at key.
func (t *Table) IsBinopInLevel(key Key, tok string) bool {
	for name := range t.levels[key].operators {
		parts := mixfix.Parts(name)
		if len(parts) == 3 && parts[0] == "" && parts[1] == tok && parts[2] == "" {
			return true
		}
	}
	return false
}

func partsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
