package typecheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shkschneider/czar/internal/ast"
	"github.com/shkschneider/czar/internal/diag"
	"github.com/shkschneider/czar/internal/parser"
)

func checkSrc(t *testing.T, src string) *diag.List {
	t.Helper()
	var d diag.List
	f := parser.New(src, "test.cz", &d).Parse()
	require.False(t, d.HasErrors(), "unexpected parse errors: %v", d.All())
	New(&d).Check(f)
	return &d
}

func hasCode(d *diag.List, code string) bool {
	for _, r := range d.All() {
		if r.Code == code {
			return true
		}
	}
	return false
}

func TestCheckArithmeticMainIsClean(t *testing.T) {
	d := checkSrc(t, `fn main() i32 { i32 a = 10; i32 b = 20; return a + b; }`)
	assert.False(t, d.HasErrors())
}

func TestCheckHeapAllocationMarksNeedsFree(t *testing.T) {
	d := checkSrc(t, `struct P{ i32 x } fn main() i32 { let p: *P = new P{x: 7}; return p.x; }`)
	assert.False(t, d.HasErrors())
	// Only a NeedsFree binding may be freed explicitly; any other is MEM004.
	d = checkSrc(t, `struct P{ i32 x } fn main() i32 { let p: *P = new P{x: 7}; free p; return 0; }`)
	assert.False(t, hasCode(d, diag.MEM004))
}

func TestCheckPointerArithmeticRejected(t *testing.T) {
	d := checkSrc(t, `struct P{ i32 x } fn main() i32 { let p: *P = new P{x: 7}; let q: *P = p + 1; return 0; }`)
	assert.True(t, hasCode(d, diag.MEM002))
}

func TestCheckUseAfterFreeRejected(t *testing.T) {
	d := checkSrc(t, `struct P{ i32 x } fn main() i32 { let p = new P{x:1}; free p; return p.x; }`)
	assert.True(t, hasCode(d, diag.MEM001))
}

func TestCheckFreeOfNonOwningBindingRejected(t *testing.T) {
	d := checkSrc(t, `struct P{ i32 x } fn main() i32 { let p = P{x:1}; free p; return 0; }`)
	assert.True(t, hasCode(d, diag.MEM004))
}

func TestCheckArrayBoundsConstantIndex(t *testing.T) {
	d := checkSrc(t, `fn main() void { let xs: [i32; 4]; xs[4] = 0; }`)
	assert.True(t, hasCode(d, diag.MEM003))
}

func TestCheckArrayBoundsNonConstantIndexUnchecked(t *testing.T) {
	d := checkSrc(t, `fn main() void { let xs: [i32; 4]; let mut i: i32 = 10; xs[i] = 0; }`)
	assert.False(t, hasCode(d, diag.MEM003))
}

func TestCheckAssignmentToImmutableBindingRejected(t *testing.T) {
	d := checkSrc(t, `fn main() void { let x: i32 = 1; x = 2; }`)
	assert.True(t, hasCode(d, diag.MUT001))
}

func TestCheckMethodCallResolvesReceiver(t *testing.T) {
	d := checkSrc(t, `struct V{i32 x} fn V:get(mut self) i32 { return self.x } fn main() i32 { let v = V{x:42}; return v:get(); }`)
	assert.False(t, d.HasErrors())
}

func TestCheckUnknownMethodRejected(t *testing.T) {
	d := checkSrc(t, `struct V{i32 x} fn main() i32 { let v = V{x:42}; return v:missing(); }`)
	assert.True(t, hasCode(d, diag.TYP005))
}

func TestCheckNamedAndDefaultArguments(t *testing.T) {
	d := checkSrc(t, `fn f(i32 a, i32 b = 5, i32 c = 10) i32 { return a+b*c } fn main() i32 { return f(2, c: 20); }`)
	assert.False(t, d.HasErrors())
}

func TestCheckMissingRequiredArgumentRejected(t *testing.T) {
	d := checkSrc(t, `fn f(i32 a, i32 b) i32 { return a+b } fn main() i32 { return f(2); }`)
	assert.True(t, hasCode(d, diag.TYP008))
}

func TestCheckDoubleBoundArgumentRejected(t *testing.T) {
	d := checkSrc(t, `fn f(i32 a) i32 { return a } fn main() i32 { return f(1, a: 2); }`)
	assert.True(t, hasCode(d, diag.TYP007))
}

func TestCheckConstructorArityEnforced(t *testing.T) {
	d := checkSrc(t, `struct P{ i32 x } fn P:new(mut self, i32 extra) void { }`)
	assert.True(t, hasCode(d, diag.TYP006))
}

func TestCheckUnknownFieldRejected(t *testing.T) {
	d := checkSrc(t, `struct P{ i32 x } fn main() i32 { let p = P{x:1}; return p.y; }`)
	assert.True(t, hasCode(d, diag.TYP004))
}

func TestCheckUndefinedIdentifierRejected(t *testing.T) {
	d := checkSrc(t, `fn main() i32 { return missing; }`)
	assert.True(t, hasCode(d, diag.TYP002))
}

func TestCheckMutToNonMutParameterWarns(t *testing.T) {
	d := checkSrc(t, `fn f(i32 a) i32 { return a } fn main() i32 { let mut x: i32 = 1; return f(mut x); }`)
	assert.False(t, d.HasErrors())
	assert.True(t, hasCode(d, diag.MUT002))
}

func TestCheckReturningOwningPointerWarns(t *testing.T) {
	d := checkSrc(t, `struct P{ i32 x } fn make() *P { let p = new P{x:1}; return p; }`)
	assert.False(t, d.HasErrors())
	assert.True(t, hasCode(d, diag.MEM005))
}

func TestCheckDirectiveAtomsHaveTypes(t *testing.T) {
	d := checkSrc(t, `fn main() i32 { let f: *u8 = #FILE; let d: bool = #DEBUG; return 0; }`)
	assert.False(t, d.HasErrors())
}

func TestCheckIntLiteralAdaptsToDeclaredIntegerType(t *testing.T) {
	d := checkSrc(t, `fn main() i32 { let big: i64 = 10; return 0; }`)
	assert.False(t, d.HasErrors())
}

func TestCheckTypeMismatchRejected(t *testing.T) {
	d := checkSrc(t, `fn main() i32 { let b: bool = 10; return 0; }`)
	assert.True(t, hasCode(d, diag.TYP001))
}

func TestCheckCloneProducesPointerToTarget(t *testing.T) {
	d := checkSrc(t, `struct P{ i32 x } fn main() i32 { let p = new P{x:1}; let q: *P = clone<P>(p); return q.x; }`)
	assert.False(t, d.HasErrors())
}

func TestCheckIsCheckResolvesStatically(t *testing.T) {
	var d diag.List
	f := parser.New(`struct P{ i32 x } fn main() bool { let p = new P{x:1}; return p is P; }`, "test.cz", &d).Parse()
	require.False(t, d.HasErrors())
	New(&d).Check(f)
	require.False(t, d.HasErrors())

	fn := f.Decls[1].(*ast.FnDecl)
	ret := fn.Body.Statements[1].(*ast.Return)
	is, ok := ret.Value.(*ast.IsCheck)
	require.True(t, ok)
	assert.True(t, is.Static, "a *P binding is a P under the implicit-pointer model")
}

func TestCheckIsCheckMismatchedTypeIsFalse(t *testing.T) {
	var d diag.List
	f := parser.New(`struct P{ i32 x } fn main() bool { let p = new P{x:1}; return p is i32; }`, "test.cz", &d).Parse()
	require.False(t, d.HasErrors())
	New(&d).Check(f)
	require.False(t, d.HasErrors())

	fn := f.Decls[1].(*ast.FnDecl)
	ret := fn.Body.Statements[1].(*ast.Return)
	is := ret.Value.(*ast.IsCheck)
	assert.False(t, is.Static)
}
