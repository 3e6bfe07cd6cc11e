package lower

import "github.com/shkschneider/czar/internal/ast"

// ownerFrame re-derives the scope-owner bookkeeping of spec §3 during
// lowering: it does not diagnose (the checker already has — see
// internal/typecheck), it only needs the exit-action list (frees and
// #defer replays interleaved in true declaration order) the emitter
// consumes for cleanup synthesis.
type ownerFrame struct {
	actions  []ExitAction
	freed    map[string]bool
	structOf map[string]string // var name -> struct type name, for method resolution
	parent   *ownerFrame
}

func newOwnerFrame(parent *ownerFrame) *ownerFrame {
	return &ownerFrame{freed: make(map[string]bool), structOf: make(map[string]string), parent: parent}
}

// declareOwner records a heap-owning binding and the struct type it holds
// (for destructor emission at exit time).
func (f *ownerFrame) declareOwner(name, structName string) {
	f.actions = append(f.actions, ExitAction{FreeName: name, Struct: structName})
}

func (f *ownerFrame) recordDefer(stmt ast.Stmt) {
	f.actions = append(f.actions, ExitAction{Stmt: stmt})
}

// declareStruct records that name is bound to a value of struct type
// typeName, so a later `name:method(...)` call site can be resolved
// against the function table without re-running full type inference.
func (f *ownerFrame) declareStruct(name, typeName string) {
	if typeName != "" {
		f.structOf[name] = typeName
	}
}

// lookupStruct walks inner-to-outer for the struct type name bound to
// name, if any.
func (f *ownerFrame) lookupStruct(name string) string {
	for frame := f; frame != nil; frame = frame.parent {
		if t, ok := frame.structOf[name]; ok {
			return t
		}
	}
	return ""
}

func (f *ownerFrame) markFreed(name string) {
	for frame := f; frame != nil; frame = frame.parent {
		for _, a := range frame.actions {
			if a.FreeName == name {
				frame.freed[name] = true
				return
			}
		}
	}
}

// pendingActions returns this frame's exit actions in reverse
// declaration order, skipping any owner free already handled by an
// explicit `free name;` statement.
func (f *ownerFrame) pendingActions() []ExitAction {
	var out []ExitAction
	for i := len(f.actions) - 1; i >= 0; i-- {
		a := f.actions[i]
		if a.FreeName != "" && f.freed[a.FreeName] {
			continue
		}
		out = append(out, a)
	}
	return out
}

// chainInnerToOuter returns every frame from f to the outermost ancestor.
func chainInnerToOuter(f *ownerFrame) []*ownerFrame {
	var out []*ownerFrame
	for frame := f; frame != nil; frame = frame.parent {
		out = append(out, frame)
	}
	return out
}
