// Copyright © 2024 The ELPS authors

package eval

import (
	"sort"
)

// Spellings of words the evaluator generates itself.
const (
	SymEllipsis     = "..."
	SymAsterisk     = "*"
	SymPlus         = "+"
	SymOptimizedOut = "--optimized-out--"
	SymSlash        = "/"
)

// Context binds word spellings to values.  Lookups that miss fall through to
// the parent context.
type Context struct {
	Parent *Context
	vars   map[string]Value
}

// NewContext returns an empty context inheriting from parent, which may be
// nil.
func NewContext(parent *Context) *Context {
	return &Context{
		Parent: parent,
		vars:   make(map[string]Value),
	}
}

// Get returns the value bound to spelling in ctx or its ancestors.
func (ctx *Context) Get(spelling string) (Value, bool) {
	for c := ctx; c != nil; c = c.Parent {
		v, ok := c.vars[spelling]
		if ok {
			return v, true
		}
	}
	return End(), false
}

// Put binds spelling in ctx itself, shadowing any ancestor binding.
func (ctx *Context) Put(spelling string, v Value) {
	v.stale = false
	ctx.vars[spelling] = v
}

// Set updates the nearest existing binding of spelling.  If no binding
// exists one is created in ctx.
func (ctx *Context) Set(spelling string, v Value) {
	v.stale = false
	for c := ctx; c != nil; c = c.Parent {
		if _, ok := c.vars[spelling]; ok {
			c.vars[spelling] = v
			return
		}
	}
	ctx.vars[spelling] = v
}

// Action returns the action bound to spelling, or nil.
func (ctx *Context) Action(spelling string) *Action {
	v, ok := ctx.Get(spelling)
	if !ok || v.Kind != KindAction {
		return nil
	}
	return v.Action
}

// Words returns the sorted spellings bound in ctx and its ancestors.
func (ctx *Context) Words() []string {
	seen := make(map[string]bool)
	var words []string
	for c := ctx; c != nil; c = c.Parent {
		for k := range c.vars {
			if !seen[k] {
				seen[k] = true
				words = append(words, k)
			}
		}
	}
	sort.Strings(words)
	return words
}
