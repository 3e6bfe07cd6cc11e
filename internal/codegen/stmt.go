package codegen

import (
	"github.com/shkschneider/czar/internal/ast"
	"github.com/shkschneider/czar/internal/lower"
)

// emitCleanup writes b's exit actions — owner frees and #defer replays
// interleaved — in the LIFO order the lowering stage already produced.
func (g *Generator) emitCleanup(b *ast.Block, depth int) {
	g.emitActions(g.lowered.Cleanup[b], depth)
}

// emitActions writes one action per entry: the destructor (if the freed
// binding's struct declares one) followed by the deallocation for a
// FreeName entry, or the replayed statement for a Stmt entry.
func (g *Generator) emitActions(actions []lower.ExitAction, depth int) {
	for _, a := range actions {
		if a.FreeName != "" {
			g.emitDestroy(a.FreeName, a.Struct, depth)
			continue
		}
		g.emitStmt(a.Stmt, depth)
	}
}

// emitDestroy deallocates the binding name of struct type structName:
// the declared destructor runs first, then the free (spec §4.5's "a
// destructor call immediately before its deallocation").
func (g *Generator) emitDestroy(name, structName string, depth int) {
	if fn, ok := g.methodFor(structName, "free"); ok {
		g.writeIndent(depth)
		g.sb.WriteString(structName + "_destructor(" + g.lifecycleArg(fn, name) + ");\n")
	}
	g.writeIndent(depth)
	g.sb.WriteString(g.freeName() + "(" + name + ");\n")
}

// methodFor looks up a declared method on structName, skipping extension
// methods for the lifecycle pair (a free function named `new` or `free`
// is not a constructor).
func (g *Generator) methodFor(structName, method string) (*ast.FnDecl, bool) {
	if structName == "" {
		return nil, false
	}
	fn, ok := g.lowered.Funcs.Lookup(structName, method)
	if !ok || fn.ReceiverType == "" {
		return nil, false
	}
	return fn, ok
}

// lifecycleArg renders the receiver argument for an inserted
// constructor/destructor call: the binding is a pointer under the
// implicit-pointer model, so a pointer-taking receiver gets it as-is and
// a by-value receiver gets the pointee.
func (g *Generator) lifecycleArg(fn *ast.FnDecl, name string) string {
	if len(fn.Params) == 1 && !paramIsPointer(fn, fn.Params[0]) {
		return "*" + name
	}
	return name
}

func (g *Generator) emitStmt(s ast.Stmt, depth int) {
	// #defer statements are not emitted at their lexical position — the
	// lowering stage recorded them into the owning frame's exit actions,
	// replayed at every scope exit by emitCleanup/emitReturn.
	if _, ok := s.(*ast.Defer); ok {
		return
	}
	g.writeIndent(depth)
	switch st := s.(type) {
	case *ast.VarDecl:
		g.emitVarDecl(st, depth)
	case *ast.Return:
		g.emitReturn(st, depth)
	case *ast.ExprStmt:
		g.sb.WriteString(g.expr(st.X) + ";\n")
	case *ast.Discard:
		g.sb.WriteString("(void)(" + g.expr(st.X) + ");\n")
	case *ast.If:
		g.emitIf(st, depth)
	case *ast.While:
		g.sb.WriteString("while (" + g.expr(st.Cond) + ") {\n")
		for _, inner := range st.Body.Statements {
			g.emitStmt(inner, depth+1)
		}
		if !endsInReturn(st.Body) {
			g.emitCleanup(st.Body, depth+1)
		}
		g.writeIndent(depth)
		g.sb.WriteString("}\n")
	case *ast.Free:
		g.emitFreeStmt(st, depth)
	case *ast.Block:
		g.sb.WriteString("{\n")
		for _, inner := range st.Statements {
			g.emitStmt(inner, depth+1)
		}
		if !endsInReturn(st) {
			g.emitCleanup(st, depth+1)
		}
		g.writeIndent(depth)
		g.sb.WriteString("}\n")
	}
}

// emitFreeStmt handles an explicit `free name;`: destructor first, then
// deallocation. The indent for the first line was already written by
// emitStmt.
func (g *Generator) emitFreeStmt(st *ast.Free, depth int) {
	structName := g.lowered.FreeStructs[st]
	if fn, ok := g.methodFor(structName, "free"); ok {
		g.sb.WriteString(structName + "_destructor(" + g.lifecycleArg(fn, st.Name) + ");\n")
		g.writeIndent(depth)
	}
	g.sb.WriteString(g.freeName() + "(" + st.Name + ");\n")
}

func (g *Generator) emitVarDecl(v *ast.VarDecl, depth int) {
	ty := v.Type
	if ty == nil {
		ty = inferredTypeForCodegen(v)
	}
	switch {
	case v.Init == nil:
		g.sb.WriteString(g.cDeclarator(ty, v.Name) + ";\n")
	case ty == nil:
		// No declared type and no structural hint from the initializer:
		// let the C compiler carry the type.
		g.sb.WriteString("__typeof__(" + g.expr(v.Init) + ") " + v.Name + " = " + g.expr(v.Init) + ";\n")
	default:
		g.sb.WriteString(g.cDeclarator(ty, v.Name) + " = " + g.expr(v.Init) + ";\n")
	}
	g.emitConstructorCall(v, depth)
}

// emitConstructorCall inserts the declared constructor immediately after
// a struct variable's declaration (spec §4.5), for bindings that create a
// fresh object (struct literal or heap allocation); a binding borrowed
// from an existing pointer is already constructed.
func (g *Generator) emitConstructorCall(v *ast.VarDecl, depth int) {
	var structName string
	switch init := v.Init.(type) {
	case *ast.StructLiteral:
		structName = init.TypeName
	case *ast.NewHeap:
		structName = init.TypeName
	default:
		return
	}
	fn, ok := g.methodFor(structName, "new")
	if !ok {
		return
	}
	g.writeIndent(depth)
	g.sb.WriteString(structName + "_constructor(" + g.lifecycleArg(fn, v.Name) + ");\n")
}

// inferredTypeForCodegen covers `let name = new T{...}` / `let name =
// T{...}` forms where no explicit Type was written; both lower to a
// pointer-to-T binding under the implicit-pointer model. A nil return
// means no structural hint exists and the caller falls back to
// __typeof__.
func inferredTypeForCodegen(v *ast.VarDecl) ast.Type {
	switch init := v.Init.(type) {
	case *ast.NewHeap:
		return &ast.Pointer{To: &ast.Named{Name: init.TypeName}}
	case *ast.StructLiteral:
		return &ast.Pointer{To: &ast.Named{Name: init.TypeName}}
	case *ast.Clone:
		if init.TargetType != nil {
			if _, ok := init.TargetType.(*ast.Pointer); ok {
				return init.TargetType
			}
			return &ast.Pointer{To: init.TargetType}
		}
		return nil
	default:
		return nil
	}
}

// emitReturn wraps the return expression in the statement-expression
// cleanup block of spec §4.5 whenever cleanup is outstanding in any
// active frame, capturing the return value before any free() runs
// (spec §8's "Return-value preservation" property). With no pending
// cleanup it emits a plain `return E;`.
func (g *Generator) emitReturn(r *ast.Return, depth int) {
	frames := g.lowered.ReturnCleanup[r]
	var actions []lower.ExitAction
	for _, frame := range frames {
		actions = append(actions, frame...)
	}
	if r.Value == nil {
		if len(actions) == 0 {
			g.sb.WriteString("return;\n")
			return
		}
		g.sb.WriteString("{\n")
		g.emitActions(actions, depth+1)
		g.writeIndent(depth + 1)
		g.sb.WriteString("return;\n")
		g.writeIndent(depth)
		g.sb.WriteString("}\n")
		return
	}
	if len(actions) == 0 {
		g.sb.WriteString("return " + g.expr(r.Value) + ";\n")
		return
	}
	tmp := g.fresh("r")
	g.sb.WriteString("return ({\n")
	g.writeIndent(depth + 1)
	g.sb.WriteString("__typeof__(" + g.expr(r.Value) + ") " + tmp + " = " + g.expr(r.Value) + ";\n")
	g.emitActions(actions, depth+1)
	g.writeIndent(depth + 1)
	g.sb.WriteString(tmp + ";\n")
	g.writeIndent(depth)
	g.sb.WriteString("});\n")
}

func (g *Generator) emitIf(st *ast.If, depth int) {
	g.sb.WriteString("if (" + g.expr(st.Cond) + ") {\n")
	for _, inner := range st.Then.Statements {
		g.emitStmt(inner, depth+1)
	}
	if !endsInReturn(st.Then) {
		g.emitCleanup(st.Then, depth+1)
	}
	g.writeIndent(depth)
	g.sb.WriteString("}")
	switch e := st.Else.(type) {
	case nil:
		g.sb.WriteString("\n")
	case *ast.If:
		g.sb.WriteString(" else ")
		g.emitIf(e, depth)
	case *ast.Block:
		g.sb.WriteString(" else {\n")
		for _, inner := range e.Statements {
			g.emitStmt(inner, depth+1)
		}
		if !endsInReturn(e) {
			g.emitCleanup(e, depth+1)
		}
		g.writeIndent(depth)
		g.sb.WriteString("}\n")
	}
}
