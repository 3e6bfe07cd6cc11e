package codegen

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shkschneider/czar/internal/ast"
)

// expr renders x as a C expression string. This governs the highlights
// of spec §4.5's "Expression lowering" section.
func (g *Generator) expr(x ast.Expr) string {
	switch e := x.(type) {
	case nil:
		return ""
	case *ast.Int:
		return strconv.FormatInt(e.Value, 10)
	case *ast.Bool:
		if e.Value {
			return "true"
		}
		return "false"
	case *ast.String:
		return fmt.Sprintf("%q", e.Value)
	case *ast.Null:
		return "NULL"
	case *ast.Ident:
		return g.ident(e)
	case *ast.Binary:
		return g.binary(e)
	case *ast.Unary:
		return "(" + e.Op + g.expr(e.Operand) + ")"
	case *ast.Assign:
		return g.expr(e.Target) + " = " + g.expr(e.Value)
	case *ast.CompoundAssign:
		return g.expr(e.Target) + " " + e.Op + "= " + g.expr(e.Value)
	case *ast.Call:
		return g.call(e)
	case *ast.Field:
		return g.field(e)
	case *ast.Index:
		return g.expr(e.Object) + "[" + g.expr(e.Idx) + "]"
	case *ast.StructLiteral:
		return g.structLiteral(e)
	case *ast.NewHeap:
		return g.newHeap(e)
	case *ast.Clone:
		return g.clone(e)
	case *ast.Cast:
		return g.cast(e)
	case *ast.MethodRef:
		// MethodRef only appears as a Call callee; the lowering stage
		// has already resolved the enclosing Call.
		return g.expr(e.Object)
	case *ast.StaticMethodCall:
		return g.staticMethodCall(e)
	case *ast.NullCheck:
		return g.nullCheck(e)
	case *ast.MutArg:
		return "&" + g.expr(e.X)
	case *ast.NamedArg:
		return g.expr(e.Value)
	case *ast.IsCheck:
		// The checker already decided the comparison; lower to its result.
		if e.Static {
			return "true"
		}
		return "false"
	case *ast.TypeOf:
		return fmt.Sprintf("%q", typeOfName(e.X))
	default:
		panic(fmt.Sprintf("codegen: unhandled expression %T", x))
	}
}

// ident renders a name reference: directive atoms substitute to literals
// (spec §4.5's debug instrumentation section), and a mut primitive
// parameter reads through its pointer.
func (g *Generator) ident(e *ast.Ident) string {
	switch e.Name {
	case "#FILE":
		return fmt.Sprintf("%q", filepath.Base(e.Pos.File))
	case "#FUNCTION":
		if g.curFn != nil {
			return fmt.Sprintf("%q", g.curFn.Name)
		}
		return `""`
	case "#DEBUG":
		if g.debug.Enabled {
			return "true"
		}
		return "false"
	}
	if p := paramOf(g.curFn, e.Name); p != nil && p.Mut && isPrimitiveParam(p) {
		return "(*" + e.Name + ")"
	}
	return e.Name
}

func isPrimitiveParam(p *ast.Param) bool {
	named, ok := p.Type.(*ast.Named)
	return ok && ast.IsPrimitive(named.Name)
}

func typeOfName(x ast.Expr) string {
	if id, ok := x.(*ast.Ident); ok {
		return id.Name
	}
	return x.String()
}

// binary lowers `and`/`&&` and `||` to C's `&&`/`||`; `or` always lowers
// to the `__typeof__` statement-expression of spec §4.5 (left operand if
// truthy, else the right), which serves both as logical or and as null
// coalescing; arithmetic/comparison operators pass through with C
// spellings.
func (g *Generator) binary(e *ast.Binary) string {
	switch e.Op {
	case "and", "&&":
		return "(" + g.expr(e.Left) + ") && (" + g.expr(e.Right) + ")"
	case "or":
		l, r := g.expr(e.Left), g.expr(e.Right)
		return "({ __typeof__(" + l + ") _t = (" + l + "); _t ? _t : (" + r + "); })"
	case "||":
		return "(" + g.expr(e.Left) + ") || (" + g.expr(e.Right) + ")"
	default:
		return "(" + g.expr(e.Left) + " " + e.Op + " " + g.expr(e.Right) + ")"
	}
}

func (g *Generator) call(e *ast.Call) string {
	resolved, ok := g.lowered.Calls[e]
	if !ok {
		args := make([]string, 0, len(e.Args))
		for _, a := range e.Args {
			args = append(args, g.expr(a))
		}
		return g.expr(e.Callee) + "(" + strings.Join(args, ", ") + ")"
	}

	args := make([]string, 0, len(resolved.Args)+1)
	offset := 0
	if resolved.Receiver != nil {
		args = append(args, g.receiverArg(resolved.Receiver, resolved.Fn))
		offset = 1
	}
	for i, a := range resolved.Args {
		var p *ast.Param
		if resolved.Fn != nil && offset+i < len(resolved.Fn.Params) {
			p = &resolved.Fn.Params[offset+i]
		}
		args = append(args, g.argFor(a, resolved.Fn, p))
	}
	return resolved.FuncName + "(" + strings.Join(args, ", ") + ")"
}

// argFor renders one call argument against its bound parameter, applying
// spec §4.3's mutability-at-call-sites rules: a mut struct parameter
// receives the (already pointer-valued) expression, a non-mut struct
// parameter receives the dereferenced value, a mut primitive parameter
// receives an address, and `mut x` against a non-mut parameter has its
// mut stripped (the checker warned).
func (g *Generator) argFor(a ast.Expr, fn *ast.FnDecl, p *ast.Param) string {
	inner := a
	if ma, ok := a.(*ast.MutArg); ok {
		inner = ma.X
	}
	if p == nil {
		return g.expr(inner)
	}
	if paramStructName(fn, *p) != "" {
		if paramIsPointer(fn, *p) {
			return g.structPointerExpr(inner)
		}
		return g.structValueExpr(inner)
	}
	if p.Mut {
		if id, ok := inner.(*ast.Ident); ok {
			if cp := paramOf(g.curFn, id.Name); cp != nil && cp.Mut && isPrimitiveParam(cp) {
				return id.Name // already a pointer, forward it
			}
		}
		return "&(" + g.expr(inner) + ")"
	}
	return g.expr(inner)
}

// receiverArg implements spec §4.3/§4.5's auto-addressing: the receiver
// expression is adapted to the method's first parameter. Under the
// implicit-pointer model every struct-typed expression is already a C
// pointer except an Ident naming a by-value struct parameter of the
// enclosing function, so auto-addressing reduces to that one check.
func (g *Generator) receiverArg(recv ast.Expr, fn *ast.FnDecl) string {
	wantsPointer := true
	if fn != nil && len(fn.Params) > 0 {
		wantsPointer = paramIsPointer(fn, fn.Params[0])
	}
	if wantsPointer {
		return g.structPointerExpr(recv)
	}
	return g.structValueExpr(recv)
}

// structPointerExpr renders a struct-typed expression as a pointer.
func (g *Generator) structPointerExpr(x ast.Expr) string {
	if g.isValueStructExpr(x) {
		return "&" + g.expr(x)
	}
	return g.expr(x)
}

// structValueExpr renders a struct-typed expression as a value.
func (g *Generator) structValueExpr(x ast.Expr) string {
	if g.isValueStructExpr(x) {
		return g.expr(x)
	}
	return "(*" + g.expr(x) + ")"
}

// isValueStructExpr reports whether x denotes a struct held by value in
// the emitted C: an Ident naming a by-value (non-mut, non-pointer)
// struct parameter of the current function, or an explicit dereference.
func (g *Generator) isValueStructExpr(x ast.Expr) bool {
	switch e := x.(type) {
	case *ast.Ident:
		p := paramOf(g.curFn, e.Name)
		return p != nil && paramStructName(g.curFn, *p) != "" && !paramIsPointer(g.curFn, *p)
	case *ast.Unary:
		return e.Op == "*"
	}
	return false
}

func (g *Generator) field(e *ast.Field) string {
	// Under the implicit-pointer model every struct-typed binding is a C
	// pointer, so `.` lowers to `->` except when the object is held by
	// value: a by-value struct parameter or an explicit dereference.
	if g.isValueStructExpr(e.Object) {
		return g.expr(e.Object) + "." + e.Name
	}
	return g.expr(e.Object) + "->" + e.Name
}

func (g *Generator) structLiteral(e *ast.StructLiteral) string {
	return "&(" + e.TypeName + "){ " + g.fieldInits(e.TypeName, e.Fields) + " }"
}

func (g *Generator) fieldInits(typeName string, fields []ast.FieldInit) string {
	parts := make([]string, 0, len(fields))
	for _, fi := range fields {
		parts = append(parts, "."+fi.Name+" = "+g.expr(fi.Value))
	}
	return strings.Join(parts, ", ")
}

// newHeap lowers `new T{...}` to the statement-expression allocator call
// of spec §4.5, with `is_explicit=1` in debug mode.
func (g *Generator) newHeap(e *ast.NewHeap) string {
	p := g.fresh("p")
	malloc := g.mallocCall("sizeof("+e.TypeName+")", true)
	return "({ " + e.TypeName + "* " + p + " = " + malloc + "; *" + p + " = (" + e.TypeName + "){ " + g.fieldInits(e.TypeName, e.Fields) + " }; " + p + "; })"
}

// clone lowers `clone(e)`/`clone<T>(e)` identically to newHeap but with
// is_explicit=0, copying the source value (spec §4.5).
func (g *Generator) clone(e *ast.Clone) string {
	typeName := "__typeof__(*" + g.expr(e.X) + ")"
	if e.TargetType != nil {
		typeName = g.cType(e.TargetType)
		typeName = strings.TrimSuffix(typeName, "*")
	}
	p := g.fresh("p")
	malloc := g.mallocCall("sizeof("+typeName+")", false)
	return "({ " + typeName + "* " + p + " = " + malloc + "; *" + p + " = *(" + g.expr(e.X) + "); " + p + "; })"
}

func (g *Generator) mallocCall(sizeExpr string, isExplicit bool) string {
	if g.debug.Enabled {
		flag := "0"
		if isExplicit {
			flag = "1"
		}
		return g.mallocName() + "(" + sizeExpr + ", " + flag + ")"
	}
	return g.mallocName() + "(" + sizeExpr + ")"
}

// cast lowers `cast<T>(e)`; a cast to a struct type (including from
// `any`) lowers to pointer-to-struct, matching the implicit-pointer
// model (spec §4.5).
func (g *Generator) cast(e *ast.Cast) string {
	target := g.cType(e.TargetType)
	named, isNamed := underlyingNamed(e.TargetType)
	if isNamed && !ast.IsPrimitive(named.Name) {
		return "((" + named.Name + "*)(" + g.expr(e.X) + "))"
	}
	return "((" + target + ")(" + g.expr(e.X) + "))"
}

// staticMethodCall emits `T::m(args)` with no receiver synthesis (spec
// §4.5): a method declared on T dispatches to its mangled name, anything
// else resolves to the plain free function.
func (g *Generator) staticMethodCall(e *ast.StaticMethodCall) string {
	args := make([]string, 0, len(e.Args))
	for _, a := range e.Args {
		args = append(args, g.expr(a))
	}
	name := e.Method
	if fn, ok := g.lowered.Funcs.Lookup(e.TypeName, e.Method); ok && fn.ReceiverType != "" {
		name = e.TypeName + "_" + e.Method
	}
	return name + "(" + strings.Join(args, ", ") + ")"
}

// nullCheck lowers `e!!` to a statement-expression that aborts on null,
// per spec §4.5.
func (g *Generator) nullCheck(e *ast.NullCheck) string {
	v := g.fresh("nn")
	inner := g.expr(e.Operand)
	return "({ __typeof__(" + inner + ") " + v + " = (" + inner + "); " +
		"if (!" + v + ") { fprintf(stderr, \"null check failed\\n\"); abort(); } " + v + "; })"
}
