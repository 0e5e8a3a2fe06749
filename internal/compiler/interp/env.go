// Package interp implements the tree-walking evaluator over the core AST
// and the runtime value model (spec §5 "Interpreter"). Env is the
// hierarchical scope chain carrying variable bindings at runtime,
// grounded on the pack's scope.Scope (Variables map + Parent chain,
// generalized with a Mutable flag per binding instead of separate
// Consts/LetVars/LetTypes maps).
package interp

import "github.com/ruchy-lang/ruchy/internal/compiler/value"

type binding struct {
	val     value.Value
	mutable bool
}

// Env is a lexical scope: a map of bindings plus a pointer to its
// enclosing scope, forming the chain that closures capture.
type Env struct {
	vars   map[string]*binding
	parent *Env
}

func NewEnv(parent *Env) *Env {
	return &Env{vars: map[string]*binding{}, parent: parent}
}

// Lookup searches this scope and every enclosing scope, innermost first.
func (e *Env) Lookup(name string) (value.Value, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if b, ok := cur.vars[name]; ok {
			return b.val, true
		}
	}
	return nil, false
}

// Define introduces a new binding in THIS scope (used by `let`, function
// parameters, and pattern-match arm bindings).
func (e *Env) Define(name string, v value.Value, mutable bool) {
	e.vars[name] = &binding{val: v, mutable: mutable}
}

// Assign mutates an existing binding found anywhere in the scope chain;
// returns false if the name is unbound or bound immutable.
func (e *Env) Assign(name string, v value.Value) bool {
	for cur := e; cur != nil; cur = cur.parent {
		if b, ok := cur.vars[name]; ok {
			if !b.mutable {
				return false
			}
			b.val = v
			return true
		}
	}
	return false
}
