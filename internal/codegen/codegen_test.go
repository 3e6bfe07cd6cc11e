package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shkschneider/czar/internal/diag"
	"github.com/shkschneider/czar/internal/lower"
	"github.com/shkschneider/czar/internal/parser"
	"github.com/shkschneider/czar/internal/typecheck"
)

func generate(t *testing.T, src string, debug bool) string {
	t.Helper()
	var d diag.List
	f := parser.New(src, "test.cz", &d).Parse()
	require.False(t, d.HasErrors(), "parse: %v", d.All())
	checked := typecheck.New(&d).Check(f)
	require.False(t, d.HasErrors(), "typecheck: %v", d.All())
	lw := lower.New(checked.Structs, checked.Funcs).Lower(checked.File)
	return New(DebugConfig{Enabled: debug}).Emit(lw)
}

func TestEmitArithmeticMain(t *testing.T) {
	c := generate(t, `fn main() i32 { i32 a = 10; i32 b = 20; return a + b; }`, false)
	assert.Contains(t, c, "int32_t main_main(void)")
	assert.Contains(t, c, "return (a + b);")
	assert.Contains(t, c, "int main(void)")
}

func TestEmitHeapAllocationAndFree(t *testing.T) {
	c := generate(t, `struct P{ i32 x } fn main() i32 { let p: *P = new P{x: 7}; return p.x; }`, false)
	assert.Contains(t, c, "typedef struct P P;")
	assert.Contains(t, c, "malloc(sizeof(P))")
	assert.Contains(t, c, "free(p)")
	assert.Contains(t, c, "p->x")
}

func TestEmitEarlyReturnFreesBothOwnersInOrder(t *testing.T) {
	c := generate(t, `struct P{ i32 x } fn main() i32 {
		let a = new P{x:1};
		let b = new P{x:2};
		if b.x == 2 { return a.x; }
		return b.x;
	}`, false)
	assert.Contains(t, c, "free(b)")
	assert.Contains(t, c, "free(a)")
	assert.Less(t, strings.Index(c, "free(b)"), strings.Index(c, "free(a)"), "b was declared last, so it is freed first")
}

func TestEmitMethodCallAutoAddressing(t *testing.T) {
	c := generate(t, `struct V{i32 x} fn V:get(mut self) i32 { return self.x } fn main() i32 { let v = V{x:42}; return v:get(); }`, false)
	assert.Contains(t, c, "V_get(")
	assert.Contains(t, c, "V_get(V* self)")
}

func TestEmitNamedAndDefaultArguments(t *testing.T) {
	c := generate(t, `fn f(i32 a, i32 b = 5, i32 c = 10) i32 { return a+b*c } fn main() i32 { return f(2, c: 20); }`, false)
	assert.Contains(t, c, "f(2, 5, 20)")
}

func TestEmitConstructorDestructorNames(t *testing.T) {
	c := generate(t, `struct P{ i32 x } fn P:new(mut self) void { } fn P:free(mut self) void { } fn main() i32 { return 0; }`, false)
	assert.Contains(t, c, "P_constructor(")
	assert.Contains(t, c, "P_destructor(")
}

func TestEmitDebugInstrumentation(t *testing.T) {
	c := generate(t, `fn main() i32 { return 0; }`, true)
	assert.Contains(t, c, "_czar_malloc")
	assert.Contains(t, c, "_czar_alloc_explicit")
}

func TestEmitDeferredFreeRunsAtScopeExit(t *testing.T) {
	c := generate(t, `struct P{ i32 x } fn main() i32 { let p = new P{x:1}; #defer free p; return 0; }`, false)
	assert.Contains(t, c, "free(p)")
}

func TestEmitArrayFieldAndLocalKeepSize(t *testing.T) {
	c := generate(t, `struct Row{ [i32; 4] cells } fn main() void { let xs: [i32; 4]; xs[0] = 1; }`, false)
	assert.Contains(t, c, "int32_t cells[4];")
	assert.Contains(t, c, "int32_t xs[4];")
	assert.Contains(t, c, "xs[0] = 1;")
}

func TestEmitConstructorInsertedAfterDeclaration(t *testing.T) {
	c := generate(t, `struct P{ i32 x } fn P:new(mut self) void { } fn main() i32 { let p = new P{x:1}; return p.x; }`, false)
	assert.Contains(t, c, "P_constructor(p);")
}

func TestEmitDestructorBeforeExplicitFree(t *testing.T) {
	c := generate(t, `struct P{ i32 x } fn P:free(mut self) void { } fn main() i32 { let p = new P{x:1}; free p; return 0; }`, false)
	idxDtor := strings.Index(c, "P_destructor(p);")
	idxFree := strings.Index(c, "free(p);")
	require.GreaterOrEqual(t, idxDtor, 0)
	require.GreaterOrEqual(t, idxFree, 0)
	assert.Less(t, idxDtor, idxFree)
}

func TestEmitDestructorBeforeScopeExitFree(t *testing.T) {
	c := generate(t, `struct P{ i32 x } fn P:free(mut self) void { } fn main() void { let p = new P{x:1}; }`, false)
	idxDtor := strings.Index(c, "P_destructor(p);")
	idxFree := strings.Index(c, "free(p);")
	require.GreaterOrEqual(t, idxDtor, 0)
	require.GreaterOrEqual(t, idxFree, 0)
	assert.Less(t, idxDtor, idxFree)
}

func TestEmitDirectiveSubstitutions(t *testing.T) {
	c := generate(t, `fn main() i32 { let f: *u8 = #FILE; let fn_: *u8 = #FUNCTION; let d: bool = #DEBUG; return 0; }`, false)
	assert.Contains(t, c, `"test.cz"`)
	assert.Contains(t, c, `"main"`)
	assert.Contains(t, c, "bool d = false;")
}

func TestEmitAllocatorNameSubstitution(t *testing.T) {
	c := generate(t, "#malloc my_alloc\n#free my_free\nstruct P{ i32 x } fn main() void { let p = new P{x:1}; }", false)
	assert.Contains(t, c, "my_alloc(sizeof(P))")
	assert.Contains(t, c, "my_free(p);")
}

func TestEmitMutPrimitiveParameterLowersToPointer(t *testing.T) {
	c := generate(t, `fn bump(mut i32 n) void { n = n + 1; } fn main() i32 { let mut x: i32 = 1; bump(mut x); return x; }`, false)
	assert.Contains(t, c, "void bump(int32_t* n)")
	assert.Contains(t, c, "(*n) = ((*n) + 1);")
	assert.Contains(t, c, "bump(&(x));")
}

func TestEmitByValueSelfUsesDotAccess(t *testing.T) {
	c := generate(t, `struct V{i32 x} fn V:get(self) i32 { return self.x } fn main() i32 { let v = V{x:7}; return v:get(); }`, false)
	assert.Contains(t, c, "int32_t V_get(V self)")
	assert.Contains(t, c, "self.x")
	assert.Contains(t, c, "V_get((*v))")
}

func TestEmitVoidReturnStillRunsCleanup(t *testing.T) {
	c := generate(t, `struct P{ i32 x } fn main() void { let p = new P{x:1}; if p.x == 1 { return; } }`, false)
	// the early return frees p before leaving
	idxRet := strings.Index(c, "return;")
	idxFree := strings.Index(c, "free(p);")
	require.GreaterOrEqual(t, idxRet, 0)
	require.GreaterOrEqual(t, idxFree, 0)
	assert.Less(t, idxFree, idxRet)
}

func TestEmitCloneCopiesSourceAndOwnsResult(t *testing.T) {
	c := generate(t, `struct P{ i32 x } fn main() i32 { let p = new P{x:1}; let q = clone(p); return q.x; }`, false)
	assert.Contains(t, c, "*(p)")    // the clone copies the pointee
	assert.Contains(t, c, "free(q)") // the clone is heap-owning
	assert.Contains(t, c, "free(p)")
}

func TestEmitCloneTargetTypeIsImplicitAllocation(t *testing.T) {
	c := generate(t, `struct P{ i32 x } fn main() i32 { let p = new P{x:1}; let q = clone<P>(p); return 0; }`, true)
	assert.Contains(t, c, "_czar_malloc(sizeof(P), 1)") // new: explicit
	assert.Contains(t, c, "_czar_malloc(sizeof(P), 0)") // clone: implicit
	assert.Contains(t, c, "P* q =")
}

func TestEmitIsCheckLowersToStaticResult(t *testing.T) {
	c := generate(t, `struct P{ i32 x } fn main() bool { let p = new P{x:1}; let yes: bool = p is P; let no: bool = p is i32; return yes; }`, false)
	assert.Contains(t, c, "bool yes = true;")
	assert.Contains(t, c, "bool no = false;")
}

func TestEmitWhileBodyFreesItsOwnAllocations(t *testing.T) {
	c := generate(t, `struct P{ i32 x } fn main() void { let mut i: i32 = 0; while i < 2 { let p = new P{x:1}; i = i + 1; } }`, false)
	assert.Contains(t, c, "free(p);")
}
