package lower

import "github.com/shkschneider/czar/internal/ast"

// lowerExpr recurses into x, resolving any Call whose callee is a
// MethodRef or a declared free function into the codegen-ready
// ResolvedCall shape (spec §4.4's "resolving each Call whose callee is a
// method reference into a concrete (function-name, receiver-expr,
// argument-list) triple"). A StaticMethodCall only has its arguments
// walked.
func (l *Lowerer) lowerExpr(x ast.Expr, frame *ownerFrame) {
	if x == nil {
		return
	}
	switch e := x.(type) {
	case *ast.Binary:
		l.lowerExpr(e.Left, frame)
		l.lowerExpr(e.Right, frame)
	case *ast.Unary:
		l.lowerExpr(e.Operand, frame)
	case *ast.Assign:
		l.lowerExpr(e.Target, frame)
		l.lowerExpr(e.Value, frame)
	case *ast.CompoundAssign:
		l.lowerExpr(e.Target, frame)
		l.lowerExpr(e.Value, frame)
	case *ast.Call:
		l.lowerCall(e, frame)
	case *ast.Field:
		l.lowerExpr(e.Object, frame)
	case *ast.Index:
		l.lowerExpr(e.Object, frame)
		l.lowerExpr(e.Idx, frame)
	case *ast.StructLiteral:
		for _, fi := range e.Fields {
			l.lowerExpr(fi.Value, frame)
		}
	case *ast.NewHeap:
		for _, fi := range e.Fields {
			l.lowerExpr(fi.Value, frame)
		}
	case *ast.Clone:
		l.lowerExpr(e.X, frame)
	case *ast.Cast:
		l.lowerExpr(e.X, frame)
	case *ast.MethodRef:
		l.lowerExpr(e.Object, frame)
	case *ast.StaticMethodCall:
		for _, a := range e.Args {
			l.lowerExpr(a, frame)
		}
	case *ast.NullCheck:
		l.lowerExpr(e.Operand, frame)
	case *ast.MutArg:
		l.lowerExpr(e.X, frame)
	case *ast.NamedArg:
		l.lowerExpr(e.Value, frame)
	case *ast.IsCheck:
		l.lowerExpr(e.X, frame)
	case *ast.TypeOf:
		l.lowerExpr(e.X, frame)
	}
}

func (l *Lowerer) lowerCall(call *ast.Call, frame *ownerFrame) {
	ref, ok := call.Callee.(*ast.MethodRef)
	if !ok {
		l.lowerFreeCall(call, frame)
		return
	}
	l.lowerExpr(ref.Object, frame)

	sd := l.structOfExpr(ref.Object, frame)
	var fn *ast.FnDecl
	if sd != nil {
		fn, _ = l.funcs.Lookup(sd.Name, ref.Method)
	}
	var args []ast.Expr
	if fn != nil {
		params := fn.Params
		if len(params) > 0 {
			params = params[1:]
		}
		args = resolveArgs(params, call.Args)
	} else {
		args = call.Args
	}
	for _, a := range args {
		l.lowerExpr(a, frame)
	}

	l.out.Calls[call] = &ResolvedCall{
		FuncName: cCalleeName(fn, sd, ref.Method),
		Receiver: ref.Object,
		Args:     args,
		Fn:       fn,
	}
}

// cCalleeName is the C function name a resolved method call dispatches
// to: `T:new`/`T:free` map to the constructor/destructor names of spec
// §4.5, other methods to `T_name`, and an extension method keeps its own
// free-function name.
func cCalleeName(fn *ast.FnDecl, sd *ast.StructDecl, method string) string {
	if fn != nil {
		if fn.ReceiverType == "" {
			return fn.Name
		}
		switch fn.Name {
		case "new":
			return fn.ReceiverType + "_constructor"
		case "free":
			return fn.ReceiverType + "_destructor"
		default:
			return fn.ReceiverType + "_" + fn.Name
		}
	}
	if sd != nil {
		return sd.Name + "_" + method
	}
	return method
}

// lowerFreeCall resolves a plain `name(args)` call against the free-
// function table, applying the same positional/named/default resolution
// as a method call so the emitter always receives a final positional
// argument list (spec §8 scenario 5's named/default arguments apply to
// free functions too, not only methods).
func (l *Lowerer) lowerFreeCall(call *ast.Call, frame *ownerFrame) {
	ident, ok := call.Callee.(*ast.Ident)
	if !ok {
		for _, a := range call.Args {
			l.lowerExpr(a, frame)
		}
		return
	}
	fn, ok := l.funcs.LookupFree(ident.Name)
	if !ok {
		for _, a := range call.Args {
			l.lowerExpr(a, frame)
		}
		return
	}
	args := resolveArgs(fn.Params, call.Args)
	for _, a := range args {
		l.lowerExpr(a, frame)
	}
	l.out.Calls[call] = &ResolvedCall{FuncName: fn.Name, Args: args, Fn: fn}
}

// structOfExpr resolves the struct declaration a receiver expression is
// bound to. Literal forms (`V{...}`, `new V{...}`) carry the name
// directly; an Ident receiver is resolved against the enclosing frame
// chain's declareStruct bookkeeping (populated from the variable's
// declared or inferred type) since full per-expression type information
// does not cross the checker/lower boundary — see DESIGN.md.
func (l *Lowerer) structOfExpr(x ast.Expr, frame *ownerFrame) *ast.StructDecl {
	switch e := x.(type) {
	case *ast.StructLiteral:
		return l.structs[e.TypeName]
	case *ast.NewHeap:
		return l.structs[e.TypeName]
	case *ast.Ident:
		return l.structs[frame.lookupStruct(e.Name)]
	case *ast.Field:
		objSD := l.structOfExpr(e.Object, frame)
		if objSD == nil {
			return nil
		}
		for _, f := range objSD.Fields {
			if f.Name == e.Name {
				return l.structs[structNameOfType(f.Type)]
			}
		}
	}
	return nil
}

// resolveArgs re-applies spec §4.3's positional/named/default resolution
// algorithm to produce the final positional argument list the emitter
// consumes. The type checker has already validated arity and naming; this
// pass only needs the resulting order, so it resolves silently instead of
// diagnosing (spec §4.4: "no new semantic information is introduced").
func resolveArgs(params []ast.Param, args []ast.Expr) []ast.Expr {
	var positional []ast.Expr
	named := map[string]ast.Expr{}
	for _, a := range args {
		if na, ok := a.(*ast.NamedArg); ok {
			named[na.Name] = na.Value
		} else {
			positional = append(positional, a)
		}
	}
	resolved := make([]ast.Expr, 0, len(params))
	pi := 0
	for _, p := range params {
		if v, ok := named[p.Name]; ok {
			resolved = append(resolved, v)
			continue
		}
		if pi < len(positional) {
			resolved = append(resolved, positional[pi])
			pi++
			continue
		}
		if p.Default != nil {
			resolved = append(resolved, p.Default)
		}
	}
	return resolved
}
