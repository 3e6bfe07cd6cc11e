// Package typecheck walks the parsed AST with the scope-frame discipline
// of spec §3, resolving types, validating mutability, and tracking heap
// ownership (needs_free/was_freed) per spec §4.3. Grounded on the
// teacher's TypeEnv (internal/types/env.go): a bindings map plus a parent
// link, generalized here to also carry the per-frame LIFO owner list
// spec §3's Scope stack requires.
package typecheck

import "github.com/shkschneider/czar/internal/ast"

// Binding records everything the checker and lowering stage need about
// one declared name.
type Binding struct {
	Type      ast.Type
	Mutable   bool
	NeedsFree bool
	WasFreed  bool
}

// Scope is one frame of the compile-time scope stack: pushed on block
// entry (function, if-branch, while-body, nested block) and popped on
// exit, per spec §3.
type Scope struct {
	vars   map[string]*Binding
	owners []string // names with NeedsFree=true, in declaration order
	parent *Scope
}

func newScope(parent *Scope) *Scope {
	return &Scope{vars: make(map[string]*Binding), parent: parent}
}

// declare records a new binding in this frame, shadowing any outer
// binding of the same name (spec §3: "shadowing an outer name is
// permitted and hides the outer binding").
func (s *Scope) declare(name string, b *Binding) {
	s.vars[name] = b
	if b.NeedsFree {
		s.owners = append(s.owners, name)
	}
}

// lookup walks inner-to-outer, returning the binding and the frame that
// owns it (needed so Free can mark WasFreed in the right frame).
func (s *Scope) lookup(name string) (*Binding, *Scope) {
	for f := s; f != nil; f = f.parent {
		if b, ok := f.vars[name]; ok {
			return b, f
		}
	}
	return nil, nil
}

// pendingCleanup returns this frame's needs-free-and-not-yet-freed owners
// in LIFO (reverse declaration) order, per spec §3's invariant.
func (s *Scope) pendingCleanup() []string {
	var out []string
	for i := len(s.owners) - 1; i >= 0; i-- {
		name := s.owners[i]
		if b := s.vars[name]; b.NeedsFree && !b.WasFreed {
			out = append(out, name)
		}
	}
	return out
}

// framesInnerToOuter walks from s to the outermost ancestor, used when a
// `return` must emit cleanup for every active frame (spec §4.3).
func framesInnerToOuter(s *Scope) []*Scope {
	var out []*Scope
	for f := s; f != nil; f = f.parent {
		out = append(out, f)
	}
	return out
}
