package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shkschneider/czar/internal/ast"
	"github.com/shkschneider/czar/internal/diag"
)

func TestParseArithmeticMain(t *testing.T) {
	f := mustParse(t, `fn main() i32 { i32 a = 10; i32 b = 20; return a + b; }`)
	require.Len(t, f.Decls, 1)
	fn, ok := f.Decls[0].(*ast.FnDecl)
	require.True(t, ok)
	assert.Equal(t, "main", fn.Name)
	assert.Equal(t, "i32", fn.ReturnType.String())
	require.Len(t, fn.Body.Statements, 3)

	ret, ok := fn.Body.Statements[2].(*ast.Return)
	require.True(t, ok)
	bin, ok := ret.Value.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, "+", bin.Op)
}

func TestParseStructDeclAndHeapAllocation(t *testing.T) {
	f := mustParse(t, `struct P{ i32 x } fn main() i32 { let p: *P = new P{x: 7}; return p.x; }`)
	require.Len(t, f.Decls, 2)

	s, ok := f.Decls[0].(*ast.StructDecl)
	require.True(t, ok)
	require.Len(t, s.Fields, 1)
	assert.Equal(t, "x", s.Fields[0].Name)

	fn := f.Decls[1].(*ast.FnDecl)
	decl, ok := fn.Body.Statements[0].(*ast.VarDecl)
	require.True(t, ok)
	ptrType, ok := decl.Type.(*ast.Pointer)
	require.True(t, ok)
	assert.Equal(t, "P", ptrType.To.String())

	heap, ok := decl.Init.(*ast.NewHeap)
	require.True(t, ok)
	assert.Equal(t, "P", heap.TypeName)
	require.Len(t, heap.Fields, 1)
}

func TestParseEarlyReturnWithIf(t *testing.T) {
	f := mustParse(t, `fn main() i32 {
		let a = new P{x:1};
		let b = new P{x:2};
		if b.x == 2 { return a.x; }
		return b.x;
	}`)
	fn := f.Decls[0].(*ast.FnDecl)
	require.Len(t, fn.Body.Statements, 4)
	ifStmt, ok := fn.Body.Statements[2].(*ast.If)
	require.True(t, ok)
	assert.Nil(t, ifStmt.Else)
	require.Len(t, ifStmt.Then.Statements, 1)
}

func TestParseMethodDeclAndCall(t *testing.T) {
	f := mustParse(t, `struct V{i32 x} fn V:get(mut self) i32 { return self.x } fn main() i32 { let v = V{x:42}; return v:get(); }`)
	getFn := f.Decls[1].(*ast.FnDecl)
	assert.Equal(t, "V", getFn.ReceiverType)
	assert.Equal(t, "get", getFn.Name)
	require.Len(t, getFn.Params, 1)
	assert.True(t, getFn.Params[0].Mut)

	mainFn := f.Decls[2].(*ast.FnDecl)
	ret := mainFn.Body.Statements[1].(*ast.Return)
	call, ok := ret.Value.(*ast.Call)
	require.True(t, ok)
	ref, ok := call.Callee.(*ast.MethodRef)
	require.True(t, ok)
	assert.Equal(t, "get", ref.Method)
}

func TestParseNamedAndDefaultArguments(t *testing.T) {
	f := mustParse(t, `fn f(i32 a, i32 b = 5, i32 c = 10) i32 { return a+b*c } fn main() i32 { return f(2, c: 20); }`)
	fDecl := f.Decls[0].(*ast.FnDecl)
	require.Len(t, fDecl.Params, 3)
	require.NotNil(t, fDecl.Params[1].Default)
	assert.Equal(t, "5", fDecl.Params[1].Default.String())

	mainFn := f.Decls[1].(*ast.FnDecl)
	ret := mainFn.Body.Statements[0].(*ast.Return)
	call := ret.Value.(*ast.Call)
	require.Len(t, call.Args, 2)
	named, ok := call.Args[1].(*ast.NamedArg)
	require.True(t, ok)
	assert.Equal(t, "c", named.Name)
}

func TestParseStaticMethodCall(t *testing.T) {
	f := mustParse(t, `fn main() i32 { return Math::max(1, 2); }`)
	fn := f.Decls[0].(*ast.FnDecl)
	ret := fn.Body.Statements[0].(*ast.Return)
	call, ok := ret.Value.(*ast.StaticMethodCall)
	require.True(t, ok)
	assert.Equal(t, "Math", call.TypeName)
	assert.Equal(t, "max", call.Method)
	assert.Len(t, call.Args, 2)
}

func TestParseCastAndNullCheck(t *testing.T) {
	f := mustParse(t, `fn main() i32 { let x: i32 = cast<i32>(p!!); return x; }`)
	fn := f.Decls[0].(*ast.FnDecl)
	decl := fn.Body.Statements[0].(*ast.VarDecl)
	c, ok := decl.Init.(*ast.Cast)
	require.True(t, ok)
	assert.Equal(t, "i32", c.TargetType.String())
	_, ok = c.X.(*ast.NullCheck)
	assert.True(t, ok)
}

func TestParseCloneForms(t *testing.T) {
	f := mustParse(t, `fn main() i32 { let q = clone(p); let r = clone<P>(p); return 0; }`)
	fn := f.Decls[0].(*ast.FnDecl)

	q := fn.Body.Statements[0].(*ast.VarDecl)
	c1, ok := q.Init.(*ast.Clone)
	require.True(t, ok)
	assert.Nil(t, c1.TargetType)
	_, ok = c1.X.(*ast.Ident)
	assert.True(t, ok)

	r := fn.Body.Statements[1].(*ast.VarDecl)
	c2, ok := r.Init.(*ast.Clone)
	require.True(t, ok)
	require.NotNil(t, c2.TargetType)
	assert.Equal(t, "P", c2.TargetType.String())
}

func TestParseCloneStaysAnIdentifierWithoutCallShape(t *testing.T) {
	f := mustParse(t, `fn main() i32 { return clone; }`)
	fn := f.Decls[0].(*ast.FnDecl)
	ret := fn.Body.Statements[0].(*ast.Return)
	id, ok := ret.Value.(*ast.Ident)
	require.True(t, ok)
	assert.Equal(t, "clone", id.Name)
}

func TestParseDeferAndFree(t *testing.T) {
	f := mustParse(t, `fn main() i32 { let p = new P{x:1}; #defer free p; return 0; }`)
	fn := f.Decls[0].(*ast.FnDecl)
	def, ok := fn.Body.Statements[1].(*ast.Defer)
	require.True(t, ok)
	free, ok := def.Stmt.(*ast.Free)
	require.True(t, ok)
	assert.Equal(t, "p", free.Name)
}

func TestParseUseAfterFreeIsStillSyntacticallyValid(t *testing.T) {
	// Use-after-free is a type-checker concern (spec §4.3), not a parse error.
	f := mustParse(t, `fn main() i32 { let p = new P{x:1}; free p; return p.x; }`)
	fn := f.Decls[0].(*ast.FnDecl)
	require.Len(t, fn.Body.Statements, 3)
}

func TestParsePrecedence(t *testing.T) {
	cases := []struct{ in, want string }{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"1 * 2 + 3", "((1 * 2) + 3)"},
		{"a && b || c", "((a && b) || c)"},
		{"a = b = c", "a = (b = c)"},
		{"1 < 2 == true", "((1 < 2) == true)"},
		{"-a * b", "((-a) * b)"},
	}
	for _, c := range cases {
		f := mustParse(t, "fn main() i32 { "+c.in+"; }")
		fn := f.Decls[0].(*ast.FnDecl)
		var got string
		switch s := fn.Body.Statements[0].(type) {
		case *ast.Discard:
			got = s.X.String()
		case *ast.ExprStmt:
			got = s.X.String()
		}
		assert.Equal(t, c.want, got, c.in)
	}
}

func TestParseErrorRecoveryContinuesAfterBadStatement(t *testing.T) {
	d := mustParseError(t, `fn main() i32 { let = ; return 0; }`)
	assert.True(t, hasCode(d, diag.PAR001))
}

func TestParseArrayType(t *testing.T) {
	f := mustParse(t, `fn main() void { let xs: [i32; 4] = xs; }`)
	fn := f.Decls[0].(*ast.FnDecl)
	decl := fn.Body.Statements[0].(*ast.VarDecl)
	arr, ok := decl.Type.(*ast.Array)
	require.True(t, ok)
	assert.Equal(t, 4, arr.Size)
	assert.Equal(t, "i32", arr.Element.String())
}

func TestParseWhileLoop(t *testing.T) {
	f := mustParse(t, `fn main() i32 { let mut i: i32 = 0; while i < 10 { i += 1; } return i; }`)
	fn := f.Decls[0].(*ast.FnDecl)
	wh, ok := fn.Body.Statements[1].(*ast.While)
	require.True(t, ok)
	require.Len(t, wh.Body.Statements, 1)
	_, ok = wh.Body.Statements[0].(*ast.ExprStmt)
	assert.True(t, ok)
}

func TestParseNewlineTerminatesStatements(t *testing.T) {
	f := mustParse(t, `fn main() i32 {
		i32 a = 10
		i32 b = 20
		return a + b
	}`)
	fn := f.Decls[0].(*ast.FnDecl)
	require.Len(t, fn.Body.Statements, 3)
	_, ok := fn.Body.Statements[2].(*ast.Return)
	assert.True(t, ok)
}

func TestParseOperatorOnNextLineEndsExpression(t *testing.T) {
	// `-c` on its own line is a new statement, not a continuation.
	f := mustParse(t, `fn main() i32 {
		i32 a = b
		-c
		return a
	}`)
	fn := f.Decls[0].(*ast.FnDecl)
	require.Len(t, fn.Body.Statements, 3)
	decl := fn.Body.Statements[0].(*ast.VarDecl)
	_, ok := decl.Init.(*ast.Ident)
	assert.True(t, ok)
}

func TestParsePubAndImport(t *testing.T) {
	f := mustParse(t, `#import "other.cz" pub fn helper() i32 { return 1; }`)
	require.Len(t, f.Decls, 2)
	_, ok := f.Decls[0].(*ast.Directive)
	require.True(t, ok)
	fn := f.Decls[1].(*ast.FnDecl)
	assert.True(t, fn.Pub)
}
