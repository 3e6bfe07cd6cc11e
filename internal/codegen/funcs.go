package codegen

import (
	"strconv"
	"strings"

	"github.com/shkschneider/czar/internal/ast"
)

// emitFnDecl writes one C function definition. A declared `new`/`free`
// method becomes `T_constructor`/`T_destructor` (spec §4.5's
// constructor/destructor lowering); any other method becomes
// `T_methodName`; a free function keeps its own name, except `main`
// which is renamed to `main_main` so the emitter's own trampoline can own
// the process entry point.
func (g *Generator) emitFnDecl(fn *ast.FnDecl) {
	g.curFn = fn
	name := g.cFuncName(fn)
	g.sb.WriteString(g.cReturnType(fn.ReturnType) + " " + name + "(")

	parts := make([]string, 0, len(fn.Params))
	for _, p := range fn.Params {
		parts = append(parts, g.cParamDeclaratorFor(fn, p))
	}
	if len(parts) == 0 {
		g.sb.WriteString("void")
	} else {
		g.sb.WriteString(strings.Join(parts, ", "))
	}
	g.sb.WriteString(") {\n")
	g.emitBlockBody(fn.Body, fn)
	g.sb.WriteString("}\n\n")
	g.curFn = nil
}

// paramOf returns fn's parameter named name, or nil.
func paramOf(fn *ast.FnDecl, name string) *ast.Param {
	if fn == nil {
		return nil
	}
	for i := range fn.Params {
		if fn.Params[i].Name == name {
			return &fn.Params[i]
		}
	}
	return nil
}

func (g *Generator) cFuncName(fn *ast.FnDecl) string {
	switch {
	case fn.ReceiverType != "":
		switch fn.Name {
		case "new":
			return fn.ReceiverType + "_constructor"
		case "free":
			return fn.ReceiverType + "_destructor"
		default:
			return fn.ReceiverType + "_" + fn.Name
		}
	case fn.Name == "main":
		return "main_main"
	default:
		return fn.Name
	}
}

// cParamDeclaratorFor handles the bare-`self` parameter (spec §3: a
// receiver written without an explicit type takes it from the enclosing
// method's ReceiverType) before falling back to cParamType's general
// rule, and renders a fixed-size array parameter with C's trailing-
// bracket declarator syntax like cDeclarator does for locals/fields.
func (g *Generator) cParamDeclaratorFor(fn *ast.FnDecl, p ast.Param) string {
	if p.Name == "self" && p.Type == nil && fn.ReceiverType != "" {
		if p.Mut {
			return fn.ReceiverType + "* " + p.Name
		}
		return fn.ReceiverType + " " + p.Name
	}
	if arr, ok := p.Type.(*ast.Array); ok {
		return g.cType(arr.Element) + " " + p.Name + "[" + strconv.Itoa(arr.Size) + "]"
	}
	return g.cParamType(p) + " " + p.Name
}

// emitBlockBody writes b's statements followed by the implicit cleanup
// of any owning bindings still pending when control falls off the end of
// the block without an explicit return (spec §4.5 step 4).
func (g *Generator) emitBlockBody(b *ast.Block, fn *ast.FnDecl) {
	for _, s := range b.Statements {
		g.emitStmt(s, 1)
	}
	if !endsInReturn(b) {
		g.emitCleanup(b, 1)
	}
}

func endsInReturn(b *ast.Block) bool {
	if len(b.Statements) == 0 {
		return false
	}
	_, ok := b.Statements[len(b.Statements)-1].(*ast.Return)
	return ok
}

func (g *Generator) writeIndent(depth int) {
	g.sb.WriteString(strings.Repeat("    ", depth))
}
