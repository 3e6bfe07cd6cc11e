package typecheck

import (
	"github.com/shkschneider/czar/internal/ast"
	"github.com/shkschneider/czar/internal/diag"
)

// CTL001 ("missing return on a non-void path") is intentionally never
// raised by this checker: spec §9 records the behavior as
// documented-but-unimplemented in the original and instructs
// reimplementers not to guess intent. The code stays registered in
// internal/diag/codes.go so the taxonomy is complete; see DESIGN.md.

// Checked is the decorated-AST handoff from the type checker to the
// lowering stage: the original file plus the resolved function/struct
// tables. No diagnostics-bearing state crosses this boundary — Check
// always builds a Checked, and the driver consults the diagnostic list
// and aborts before lowering it.
type Checked struct {
	File    *ast.File
	Structs map[string]*ast.StructDecl
	Funcs   *FuncTable
}

// Checker walks the AST with the scope stack of spec §3. Grounded on the
// teacher's TypeChecker (internal/types/typechecker.go): an accumulating
// errors/diagnostics sink plus a top-level Check entry point, retargeted
// from Hindley-Milner inference to Czar's simple nominal typing.
type Checker struct {
	diags   *diag.List
	structs map[string]*ast.StructDecl
	funcs   *FuncTable
	fn      *ast.FnDecl // function currently being checked, for receiver lookup
}

// New builds a Checker reporting into diags.
func New(diags *diag.List) *Checker {
	return &Checker{diags: diags}
}

func (c *Checker) errorf(code string, pos ast.Pos, format string, args ...any) {
	c.diags.Errorf(code, "typecheck", diag.Pos{File: pos.File, Line: pos.Line, Column: pos.Column}, format, args...)
}

func (c *Checker) warnf(code string, pos ast.Pos, format string, args ...any) {
	c.diags.Warnf(code, "typecheck", diag.Pos{File: pos.File, Line: pos.Line, Column: pos.Column}, format, args...)
}

// Check type-checks f, populating the struct and function tables in a
// pre-pass (spec §3) and then walking every function body. It returns a
// Checked regardless of whether diagnostics were recorded; callers must
// consult diags.HasErrors() before trusting the result, matching spec
// §7's "driver aborts if any error-severity diagnostic is present".
func (c *Checker) Check(f *ast.File) *Checked {
	c.structs = make(map[string]*ast.StructDecl)
	c.funcs = newFuncTable()

	for _, d := range f.Decls {
		if s, ok := d.(*ast.StructDecl); ok {
			c.structs[s.Name] = s
		}
	}
	for _, d := range f.Decls {
		if fn, ok := d.(*ast.FnDecl); ok {
			c.checkConstructorDestructorArity(fn)
			c.funcs.register(fn)
		}
	}

	for _, d := range f.Decls {
		if fn, ok := d.(*ast.FnDecl); ok {
			c.checkFn(fn)
		}
	}

	return &Checked{File: f, Structs: c.structs, Funcs: c.funcs}
}

// checkConstructorDestructorArity enforces spec §3's invariant that a
// constructor `T:new(self)` or destructor `T:free(self)` takes exactly
// one parameter.
func (c *Checker) checkConstructorDestructorArity(fn *ast.FnDecl) {
	if fn.ReceiverType == "" || (fn.Name != "new" && fn.Name != "free") {
		return
	}
	if len(fn.Params) != 1 {
		c.errorf(diag.TYP006, fn.Pos, "%s:%s must take exactly one parameter (the receiver), got %d", fn.ReceiverType, fn.Name, len(fn.Params))
	}
}

func (c *Checker) checkFn(fn *ast.FnDecl) {
	c.fn = fn
	scope := newScope(nil)
	for _, p := range fn.Params {
		t := p.Type
		if t == nil && p.Name == "self" && fn.ReceiverType != "" {
			t = &ast.Named{Name: fn.ReceiverType}
		}
		scope.declare(p.Name, &Binding{Type: t, Mutable: p.Mut})
	}
	c.checkBlock(fn.Body, scope)
}

func (c *Checker) checkBlock(b *ast.Block, parent *Scope) *Scope {
	scope := newScope(parent)
	for _, s := range b.Statements {
		c.checkStmt(s, scope)
	}
	return scope
}

func (c *Checker) checkStmt(s ast.Stmt, scope *Scope) {
	switch st := s.(type) {
	case *ast.VarDecl:
		c.checkVarDecl(st, scope)
	case *ast.Return:
		c.checkReturn(st, scope)
	case *ast.ExprStmt:
		c.inferExpr(st.X, scope)
	case *ast.Discard:
		c.inferExpr(st.X, scope)
	case *ast.If:
		c.inferExpr(st.Cond, scope)
		c.checkBlock(st.Then, scope)
		switch e := st.Else.(type) {
		case *ast.Block:
			c.checkBlock(e, scope)
		case *ast.If:
			c.checkStmt(e, scope)
		}
	case *ast.While:
		c.inferExpr(st.Cond, scope)
		c.checkBlock(st.Body, scope)
	case *ast.Free:
		c.checkFree(st, scope)
	case *ast.Defer:
		c.checkStmt(st.Stmt, scope)
	case *ast.Block:
		c.checkBlock(st, scope)
	}
}

func (c *Checker) checkVarDecl(v *ast.VarDecl, scope *Scope) {
	var initType ast.Type
	if v.Init != nil {
		initType = c.inferExpr(v.Init, scope)
	}
	declType := v.Type
	if declType == nil {
		declType = initType
	} else if initType != nil && !declType.Equal(initType) {
		// An untyped integer literal adapts to any declared integer type;
		// everything else must match structurally (spec §3: no implicit
		// conversions between unrelated types).
		if !(isIntegerType(declType) && isIntLiteral(v.Init)) {
			c.errorf(diag.TYP001, v.Pos, "variable %s: declared type %s does not match initializer type %s", v.Name, declType.String(), initType.String())
		}
	}

	b := &Binding{Type: declType, Mutable: v.Mutable}
	switch v.Init.(type) {
	case *ast.NewHeap, *ast.Clone:
		b.NeedsFree = true
	}
	scope.declare(v.Name, b)
}

func (c *Checker) checkReturn(r *ast.Return, scope *Scope) {
	if r.Value != nil {
		c.inferExpr(r.Value, scope)
		if id, ok := r.Value.(*ast.Ident); ok {
			if b, _ := scope.lookup(id.Name); b != nil && b.NeedsFree && !b.WasFreed {
				c.warnf(diag.MEM005, r.Pos, "returning %s whose binding is still heap-owning; cleanup at scope exit will free it before it escapes", id.Name)
			}
		}
	}
	// Cleanup for every active frame, innermost first (spec §4.3). The
	// result is not kept: the lowering stage (internal/lower) re-derives
	// its own frames to synthesize the statement-expression wrapper of
	// spec §4.5.
	for _, f := range framesInnerToOuter(scope) {
		_ = f.pendingCleanup()
	}
}

func (c *Checker) checkFree(fr *ast.Free, scope *Scope) {
	b, owner := scope.lookup(fr.Name)
	if b == nil {
		c.errorf(diag.TYP002, fr.Pos, "undefined identifier %s", fr.Name)
		return
	}
	if !b.NeedsFree {
		c.errorf(diag.MEM004, fr.Pos, "free of non-owning binding %s", fr.Name)
		return
	}
	if b.WasFreed {
		c.errorf(diag.MEM001, fr.Pos, "use of already-freed variable %s", fr.Name)
		return
	}
	b.WasFreed = true
	_ = owner
}

// inferExpr resolves x's static type and reports diagnostics for invalid
// uses along the way (pointer arithmetic, use-after-free, unknown
// fields/methods, wrong arity, immutable assignment).
func (c *Checker) inferExpr(x ast.Expr, scope *Scope) ast.Type {
	switch e := x.(type) {
	case *ast.Int:
		return &ast.Named{Name: "i32"}
	case *ast.Bool:
		return &ast.Named{Name: "bool"}
	case *ast.String:
		return &ast.Pointer{To: &ast.Named{Name: "u8"}}
	case *ast.Null:
		return nil
	case *ast.Ident:
		return c.inferIdent(e, scope)
	case *ast.Binary:
		return c.inferBinary(e, scope)
	case *ast.Unary:
		return c.inferUnary(e, scope)
	case *ast.Assign:
		return c.inferAssign(e, scope)
	case *ast.CompoundAssign:
		c.inferExpr(e.Target, scope)
		return c.inferExpr(e.Value, scope)
	case *ast.Call:
		return c.inferCall(e, scope)
	case *ast.Field:
		return c.inferField(e, scope)
	case *ast.Index:
		return c.inferIndex(e, scope)
	case *ast.StructLiteral:
		return c.inferStructLiteral(e, scope)
	case *ast.NewHeap:
		return c.inferNewHeap(e, scope)
	case *ast.Clone:
		t := c.inferExpr(e.X, scope)
		if e.TargetType != nil {
			// clone always produces a heap pointer; a bare target type
			// names the pointee.
			if _, ok := e.TargetType.(*ast.Pointer); ok {
				return e.TargetType
			}
			return &ast.Pointer{To: e.TargetType, Flags: ast.PointerFlags{IsClone: true}}
		}
		return t
	case *ast.Cast:
		c.inferExpr(e.X, scope)
		return e.TargetType
	case *ast.MethodRef:
		c.inferExpr(e.Object, scope)
		return nil // resolved only in the context of an enclosing Call
	case *ast.StaticMethodCall:
		for _, a := range e.Args {
			c.inferExpr(a, scope)
		}
		if fn, ok := c.funcs.Lookup(e.TypeName, e.Method); ok {
			return fn.ReturnType
		}
		// `T::m` with no method m on T resolves to the free function m
		// (no receiver synthesis, spec §4.5).
		if fn, ok := c.funcs.LookupFree(e.Method); ok {
			return fn.ReturnType
		}
		c.errorf(diag.TYP005, e.Pos, "unknown method %s::%s", e.TypeName, e.Method)
		return nil
	case *ast.NullCheck:
		return c.inferExpr(e.Operand, scope)
	case *ast.MutArg:
		return c.inferExpr(e.X, scope)
	case *ast.NamedArg:
		return c.inferExpr(e.Value, scope)
	case *ast.IsCheck:
		e.Static = staticTypeIs(c.inferExpr(e.X, scope), e.Type)
		return &ast.Named{Name: "bool"}
	case *ast.TypeOf:
		c.inferExpr(e.X, scope)
		return &ast.Named{Name: "any"}
	}
	return nil
}

var integerNames = map[string]bool{
	"i8": true, "i16": true, "i32": true, "i64": true,
	"u8": true, "u16": true, "u32": true, "u64": true,
}

func isIntegerType(t ast.Type) bool {
	n, ok := t.(*ast.Named)
	return ok && integerNames[n.Name]
}

func isIntLiteral(x ast.Expr) bool {
	_, ok := x.(*ast.Int)
	return ok
}

func (c *Checker) inferIdent(e *ast.Ident, scope *Scope) ast.Type {
	// Directive atoms are substituted by the emitter (spec §9): #FILE and
	// #FUNCTION become string literals, #DEBUG a boolean.
	switch e.Name {
	case "#FILE", "#FUNCTION":
		return &ast.Pointer{To: &ast.Named{Name: "u8"}}
	case "#DEBUG":
		return &ast.Named{Name: "bool"}
	}
	b, _ := scope.lookup(e.Name)
	if b == nil {
		c.errorf(diag.TYP002, e.Pos, "undefined identifier %s", e.Name)
		return nil
	}
	if b.WasFreed {
		c.errorf(diag.MEM001, e.Pos, "use of freed variable %s", e.Name)
	}
	return b.Type
}

// inferBinary rejects pointer arithmetic (spec §4.3) and infers a plain
// arithmetic/relational result type for everything else.
func (c *Checker) inferBinary(e *ast.Binary, scope *Scope) ast.Type {
	lt := c.inferExpr(e.Left, scope)
	rt := c.inferExpr(e.Right, scope)
	if e.Op == "+" || e.Op == "-" {
		if isPointer(lt) || isPointer(rt) {
			c.errorf(diag.MEM002, e.Pos, "pointer arithmetic is forbidden: %s %s %s", typeName(lt), e.Op, typeName(rt))
		}
	}
	switch e.Op {
	case "==", "!=", "<", "<=", ">", ">=", "&&", "||", "and", "or":
		return &ast.Named{Name: "bool"}
	default:
		if lt != nil {
			return lt
		}
		return rt
	}
}

func isPointer(t ast.Type) bool {
	_, ok := t.(*ast.Pointer)
	return ok
}

// staticTypeIs decides `expr is Type` at compile time — there is no
// runtime type representation to consult (spec §1: no runtime dispatch).
// Structural equality, with a pointer-to-struct and the bare struct name
// treated as the same type under the implicit-pointer model.
func staticTypeIs(t, want ast.Type) bool {
	if t == nil || want == nil {
		return false
	}
	if t.Equal(want) {
		return true
	}
	if p, ok := t.(*ast.Pointer); ok && p.To.Equal(want) {
		return true
	}
	if p, ok := want.(*ast.Pointer); ok && p.To.Equal(t) {
		return true
	}
	return false
}

func typeName(t ast.Type) string {
	if t == nil {
		return "<unknown>"
	}
	return t.String()
}

func (c *Checker) inferUnary(e *ast.Unary, scope *Scope) ast.Type {
	t := c.inferExpr(e.Operand, scope)
	switch e.Op {
	case "&":
		return &ast.Pointer{To: t}
	case "*":
		if p, ok := t.(*ast.Pointer); ok {
			return p.To
		}
		return t
	default:
		return t
	}
}

// inferAssign rejects writes to immutable bindings and immutable struct
// fields (spec §4.3).
func (c *Checker) inferAssign(e *ast.Assign, scope *Scope) ast.Type {
	switch target := e.Target.(type) {
	case *ast.Ident:
		b, _ := scope.lookup(target.Name)
		if b != nil && !b.Mutable {
			c.errorf(diag.MUT001, e.Pos, "assignment to immutable binding %s", target.Name)
		}
	case *ast.Field:
		if id, ok := target.Object.(*ast.Ident); ok {
			b, _ := scope.lookup(id.Name)
			if b != nil && !b.Mutable {
				c.errorf(diag.MUT001, e.Pos, "assignment to field of immutable variable %s", id.Name)
			}
		}
	}
	c.inferExpr(e.Target, scope)
	return c.inferExpr(e.Value, scope)
}

func (c *Checker) inferField(e *ast.Field, scope *Scope) ast.Type {
	objType := c.inferExpr(e.Object, scope)
	sd := c.structOf(objType)
	if sd == nil {
		return nil
	}
	for _, f := range sd.Fields {
		if f.Name == e.Name {
			return f.Type
		}
	}
	c.errorf(diag.TYP004, e.Pos, "struct %s has no field %s", sd.Name, e.Name)
	return nil
}

func (c *Checker) structOf(t ast.Type) *ast.StructDecl {
	switch tt := t.(type) {
	case *ast.Named:
		return c.structs[tt.Name]
	case *ast.Pointer:
		return c.structOf(tt.To)
	default:
		return nil
	}
}

// inferIndex applies spec §4.3's constant-index bounds check: a
// compile-time-constant index against a fixed-size array is validated
// immediately; a non-constant index produces no check.
func (c *Checker) inferIndex(e *ast.Index, scope *Scope) ast.Type {
	objType := c.inferExpr(e.Object, scope)
	idxType := c.inferExpr(e.Idx, scope)
	_ = idxType
	arr, ok := objType.(*ast.Array)
	if !ok {
		return nil
	}
	if lit, ok := e.Idx.(*ast.Int); ok {
		if lit.Value < 0 || int(lit.Value) >= arr.Size {
			c.errorf(diag.MEM003, e.Pos, "array index %d out of range for array of size %d", lit.Value, arr.Size)
		}
	}
	return arr.Element
}

func (c *Checker) inferStructLiteral(e *ast.StructLiteral, scope *Scope) ast.Type {
	c.checkFieldInits(e.TypeName, e.Fields, scope, e.Pos)
	return &ast.Named{Name: e.TypeName}
}

func (c *Checker) inferNewHeap(e *ast.NewHeap, scope *Scope) ast.Type {
	c.checkFieldInits(e.TypeName, e.Fields, scope, e.Pos)
	return &ast.Pointer{To: &ast.Named{Name: e.TypeName}, Flags: ast.PointerFlags{IsClone: true}}
}

func (c *Checker) checkFieldInits(typeName string, inits []ast.FieldInit, scope *Scope, pos ast.Pos) {
	sd, ok := c.structs[typeName]
	if !ok {
		c.errorf(diag.TYP002, pos, "undefined struct type %s", typeName)
		return
	}
	for _, fi := range inits {
		c.inferExpr(fi.Value, scope)
		found := false
		for _, f := range sd.Fields {
			if f.Name == fi.Name {
				found = true
				break
			}
		}
		if !found {
			c.errorf(diag.TYP004, pos, "struct %s has no field %s", typeName, fi.Name)
		}
	}
}

func (c *Checker) inferCall(e *ast.Call, scope *Scope) ast.Type {
	switch callee := e.Callee.(type) {
	case *ast.MethodRef:
		return c.inferMethodCall(callee, e, scope)
	case *ast.Ident:
		fn, ok := c.funcs.LookupFree(callee.Name)
		if !ok {
			c.errorf(diag.TYP002, e.Pos, "undefined function %s", callee.Name)
			return nil
		}
		c.checkArgs(fn, e.Args, e.Pos, scope)
		return fn.ReturnType
	default:
		c.inferExpr(e.Callee, scope)
		for _, a := range e.Args {
			c.inferExpr(a, scope)
		}
		return nil
	}
}

// inferMethodCall resolves `obj:m(args)`/`obj.m(args)` per spec §4.3:
// look up m under typeof(obj); fall back to the struct's extension
// methods; prepend the receiver to the argument list.
func (c *Checker) inferMethodCall(ref *ast.MethodRef, call *ast.Call, scope *Scope) ast.Type {
	objType := c.inferExpr(ref.Object, scope)
	sd := c.structOf(objType)
	if sd == nil {
		c.errorf(diag.TYP002, ref.Pos, "method call on non-struct value")
		return nil
	}
	fn, ok := c.funcs.Lookup(sd.Name, ref.Method)
	if !ok {
		c.errorf(diag.TYP005, ref.Pos, "unknown method %s on %s", ref.Method, sd.Name)
		return nil
	}
	rest := fn.Params
	if len(rest) > 0 {
		rest = rest[1:] // receiver already supplied by ref.Object
	}
	c.checkArgList(rest, call.Args, call.Pos, scope)
	// Auto-addressing of the receiver (&obj when the method expects a
	// pointer) is synthesized by the emitter; nothing to validate here
	// beyond having resolved the method.
	return fn.ReturnType
}

func (c *Checker) checkArgs(fn *ast.FnDecl, args []ast.Expr, pos ast.Pos, scope *Scope) {
	c.checkArgList(fn.Params, args, pos, scope)
}

// checkArgList implements spec §4.3's argument-resolution algorithm:
// positional arguments must all precede named ones and bind the leading
// parameters in declaration order; each remaining parameter takes its
// named argument, else its default, else it is an error. No argument may
// be bound twice: a named argument for a positionally-bound parameter is
// TYP007.
func (c *Checker) checkArgList(params []ast.Param, args []ast.Expr, pos ast.Pos, scope *Scope) []ast.Expr {
	var positional []ast.Expr
	named := map[string]ast.Expr{}
	seenNamed := false
	for _, a := range args {
		switch arg := a.(type) {
		case *ast.NamedArg:
			seenNamed = true
			if _, dup := named[arg.Name]; dup {
				c.errorf(diag.TYP007, pos, "argument %s bound more than once", arg.Name)
			}
			named[arg.Name] = arg.Value
			c.inferExpr(arg.Value, scope)
		default:
			if seenNamed {
				c.errorf(diag.PAR004, pos, "positional argument follows named argument")
			}
			positional = append(positional, a)
			c.inferExpr(a, scope)
		}
	}

	if len(positional) > len(params) {
		c.errorf(diag.TYP003, pos, "wrong arity: expected at most %d arguments, got %d positional", len(params), len(positional))
	}

	// Positional arguments bind the leading parameters in order; a named
	// argument naming one of those parameters binds it a second time.
	resolved := make([]ast.Expr, 0, len(params))
	for i, p := range params {
		v, hasNamed := named[p.Name]
		if i < len(positional) {
			if hasNamed {
				c.errorf(diag.TYP007, pos, "argument %s bound more than once", p.Name)
				delete(named, p.Name)
			}
			c.checkMutArg(positional[i], p, pos)
			resolved = append(resolved, positional[i])
			continue
		}
		if hasNamed {
			delete(named, p.Name)
			c.checkMutArg(v, p, pos)
			resolved = append(resolved, v)
			continue
		}
		if p.Default != nil {
			resolved = append(resolved, p.Default)
			continue
		}
		c.errorf(diag.TYP008, pos, "missing required argument %s", p.Name)
	}
	for name := range named {
		c.errorf(diag.TYP007, pos, "unknown named argument %s", name)
	}
	return resolved
}

// checkMutArg warns when `mut x` is passed to a parameter not declared
// mut: the keyword is ignored and the argument passes by value (spec
// §4.3's mutability-at-call-sites rule).
func (c *Checker) checkMutArg(a ast.Expr, p ast.Param, pos ast.Pos) {
	if _, ok := a.(*ast.MutArg); ok && !p.Mut {
		c.warnf(diag.MUT002, pos, "mut argument passed to non-mut parameter %s; mut is ignored", p.Name)
	}
}
