package lower

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shkschneider/czar/internal/ast"
	"github.com/shkschneider/czar/internal/diag"
	"github.com/shkschneider/czar/internal/parser"
	"github.com/shkschneider/czar/internal/typecheck"
)

func lowerSrc(t *testing.T, src string) *Lowered {
	t.Helper()
	var d diag.List
	f := parser.New(src, "test.cz", &d).Parse()
	require.False(t, d.HasErrors())
	checked := typecheck.New(&d).Check(f)
	require.False(t, d.HasErrors())
	return New(checked.Structs, checked.Funcs).Lower(checked.File)
}

// freeNames extracts the FreeName entries of an exit-action list, in
// order, ignoring any replayed #defer statements.
func freeNames(actions []ExitAction) []string {
	var out []string
	for _, a := range actions {
		if a.FreeName != "" {
			out = append(out, a.FreeName)
		}
	}
	return out
}

func TestLowerHeapVarIsOwnedByItsBlock(t *testing.T) {
	lw := lowerSrc(t, `struct P{ i32 x } fn main() i32 { let p: *P = new P{x: 7}; return p.x; }`)
	fn := lw.File.Decls[1].(*ast.FnDecl)
	cleanup := lw.Cleanup[fn.Body]
	assert.Equal(t, []string{"p"}, freeNames(cleanup))
}

func TestLowerEarlyReturnCleansUpBothOwners(t *testing.T) {
	lw := lowerSrc(t, `struct P{ i32 x } fn main() i32 {
		let a = new P{x:1};
		let b = new P{x:2};
		if b.x == 2 { return a.x; }
		return b.x;
	}`)
	fn := lw.File.Decls[1].(*ast.FnDecl)
	ifStmt := fn.Body.Statements[2].(*ast.If)
	innerReturn := ifStmt.Then.Statements[0].(*ast.Return)
	frames := lw.ReturnCleanup[innerReturn]
	// innermost (if-block, empty — a/b are declared in the outer frame),
	// then the outer frame holding b then a in LIFO order.
	require.Len(t, frames, 2)
	assert.Equal(t, []string{"b", "a"}, freeNames(frames[1]))
}

func TestLowerFreedVariableExcludedFromCleanup(t *testing.T) {
	lw := lowerSrc(t, `struct P{ i32 x } fn main() i32 { let p = new P{x:1}; free p; return 0; }`)
	fn := lw.File.Decls[1].(*ast.FnDecl)
	assert.Empty(t, lw.Cleanup[fn.Body])
}

func TestLowerMethodCallResolvesToConcreteFunction(t *testing.T) {
	lw := lowerSrc(t, `struct V{i32 x} fn V:get(mut self) i32 { return self.x } fn main() i32 { let v = V{x:42}; return v:get(); }`)
	mainFn := lw.File.Decls[2].(*ast.FnDecl)
	ret := mainFn.Body.Statements[1].(*ast.Return)
	call := ret.Value.(*ast.Call)
	resolved := lw.Calls[call]
	require.NotNil(t, resolved)
	assert.Equal(t, "V_get", resolved.FuncName)
	require.IsType(t, &ast.Ident{}, resolved.Receiver)
}

func TestLowerNamedAndDefaultArgumentsResolvePositionally(t *testing.T) {
	lw := lowerSrc(t, `fn f(i32 a, i32 b = 5, i32 c = 10) i32 { return a+b*c } fn main() i32 { return f(2, c: 20); }`)
	mainFn := lw.File.Decls[1].(*ast.FnDecl)
	ret := mainFn.Body.Statements[0].(*ast.Return)
	call := ret.Value.(*ast.Call)
	resolved := lw.Calls[call]
	require.NotNil(t, resolved)
	require.Len(t, resolved.Args, 3)
	assert.Equal(t, "2", resolved.Args[0].String())
	assert.Equal(t, "5", resolved.Args[1].String())
	assert.Equal(t, "20", resolved.Args[2].String())
}

func TestLowerDeferCollectedLIFO(t *testing.T) {
	lw := lowerSrc(t, `struct P{ i32 x } fn main() i32 { let p = new P{x:1}; #defer free p; return 0; }`)
	fn := lw.File.Decls[1].(*ast.FnDecl)
	ret := fn.Body.Statements[2].(*ast.Return)
	frames := lw.ReturnCleanup[ret]
	require.Len(t, frames, 1)
	actions := frames[0]
	require.Len(t, actions, 1)
	_, ok := actions[0].Stmt.(*ast.Free)
	assert.True(t, ok, "the #defer'd free should be replayed as a Stmt action, not a plain FreeName")
}

func TestLowerOwnerActionCarriesStructType(t *testing.T) {
	lw := lowerSrc(t, `struct P{ i32 x } fn main() void { let p = new P{x:1}; }`)
	fn := lw.File.Decls[1].(*ast.FnDecl)
	cleanup := lw.Cleanup[fn.Body]
	require.Len(t, cleanup, 1)
	assert.Equal(t, "p", cleanup[0].FreeName)
	assert.Equal(t, "P", cleanup[0].Struct)
}

func TestLowerFreeStatementResolvesStructType(t *testing.T) {
	lw := lowerSrc(t, `struct P{ i32 x } fn main() i32 { let p = new P{x:1}; free p; return 0; }`)
	fn := lw.File.Decls[1].(*ast.FnDecl)
	freeStmt := fn.Body.Statements[1].(*ast.Free)
	assert.Equal(t, "P", lw.FreeStructs[freeStmt])
}

func TestLowerExtensionMethodKeepsFreeFunctionName(t *testing.T) {
	lw := lowerSrc(t, `struct V{i32 x} fn double_x(mut V self) i32 { return self.x * 2 } fn main() i32 { let v = V{x:3}; return v:double_x(); }`)
	mainFn := lw.File.Decls[2].(*ast.FnDecl)
	ret := mainFn.Body.Statements[1].(*ast.Return)
	call := ret.Value.(*ast.Call)
	resolved := lw.Calls[call]
	require.NotNil(t, resolved)
	assert.Equal(t, "double_x", resolved.FuncName)
	require.NotNil(t, resolved.Fn)
}

func TestLowerFlattensBlockWrappedElseIf(t *testing.T) {
	lw := lowerSrc(t, `fn main() i32 {
		if 1 == 1 { return 1; } else { if 2 == 2 { return 2; } }
		return 0;
	}`)
	fn := lw.File.Decls[0].(*ast.FnDecl)
	ifStmt := fn.Body.Statements[0].(*ast.If)
	_, ok := ifStmt.Else.(*ast.If)
	assert.True(t, ok, "block-wrapped else-if should flatten to a direct *ast.If")
}
