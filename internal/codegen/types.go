package codegen

import (
	"strconv"

	"github.com/shkschneider/czar/internal/ast"
)

// primitiveC maps Czar primitive type names to their C11 spellings, per
// spec §4.5's type-lowering table.
var primitiveC = map[string]string{
	"i8": "int8_t", "i16": "int16_t", "i32": "int32_t", "i64": "int64_t",
	"u8": "uint8_t", "u16": "uint16_t", "u32": "uint32_t", "u64": "uint64_t",
	"f32": "float", "f64": "double",
	"bool": "bool", "void": "void", "any": "void*",
}

// cType lowers a Czar Type to its C spelling. Struct types lower to
// pointer-to-struct (the implicit-pointer model of spec §9): a bare
// Named struct type and a Pointer-to-that-struct both emit `Name*` (the
// typedef name), since every struct-typed binding is a C pointer
// regardless of surface syntax.
func (g *Generator) cType(t ast.Type) string {
	switch tt := t.(type) {
	case nil:
		return "void"
	case *ast.Named:
		if c, ok := primitiveC[tt.Name]; ok {
			return c
		}
		return tt.Name + "*"
	case *ast.Pointer:
		inner := tt.To
		if named, ok := inner.(*ast.Named); ok && !ast.IsPrimitive(named.Name) {
			return named.Name + "*"
		}
		return g.cType(inner) + "*"
	case *ast.Array:
		return g.cType(tt.Element)
	default:
		return "void"
	}
}

// cReturnType lowers a function's declared return type. Struct return
// types always lower to pointer-to-struct even when written as a bare
// Named type, matching cType's struct handling.
func (g *Generator) cReturnType(t ast.Type) string {
	return g.cType(t)
}

// cParamType lowers one parameter's type: a non-mut struct parameter
// lowers to pass-by-value (struct Name, not a pointer); a mut struct
// parameter and a mut primitive parameter lower to pointers, since a
// `mut` parameter expects a pointer for write-through (spec §4.3). An
// explicitly pointer-typed parameter stays a pointer regardless of mut.
func (g *Generator) cParamType(p ast.Param) string {
	if _, isPtr := p.Type.(*ast.Pointer); isPtr {
		return g.cType(p.Type)
	}
	named, ok := p.Type.(*ast.Named)
	if !ok {
		return g.cType(p.Type)
	}
	if ast.IsPrimitive(named.Name) {
		if p.Mut {
			return g.cType(p.Type) + "*"
		}
		return g.cType(p.Type)
	}
	if p.Mut {
		return named.Name + "*"
	}
	return named.Name
}

// paramIsPointer reports whether p lowers to a pointer-typed C parameter
// under cParamType/cParamDeclaratorFor's rules (bare `self` included).
func paramIsPointer(fn *ast.FnDecl, p ast.Param) bool {
	if p.Type == nil {
		return p.Mut // bare self: pointer iff mut
	}
	if _, isPtr := p.Type.(*ast.Pointer); isPtr {
		return true
	}
	return p.Mut
}

// paramStructName is the struct type a parameter carries, or "" for
// primitives and arrays.
func paramStructName(fn *ast.FnDecl, p ast.Param) string {
	if p.Type == nil && p.Name == "self" {
		return fn.ReceiverType
	}
	named, ok := underlyingNamed(p.Type)
	if !ok || ast.IsPrimitive(named.Name) {
		return ""
	}
	return named.Name
}

// cDeclarator renders a full C declarator for a binding named name with
// declared type t. Fixed-size arrays use C's trailing-bracket declarator
// syntax (`int32_t name[4]`) since cType alone only names the element
// type; every other type is `cType(t) + " " + name`.
func (g *Generator) cDeclarator(t ast.Type, name string) string {
	if arr, ok := t.(*ast.Array); ok {
		return g.cType(arr.Element) + " " + name + "[" + strconv.Itoa(arr.Size) + "]"
	}
	return g.cType(t) + " " + name
}

func underlyingNamed(t ast.Type) (*ast.Named, bool) {
	switch tt := t.(type) {
	case *ast.Named:
		return tt, true
	case *ast.Pointer:
		return underlyingNamed(tt.To)
	default:
		return nil, false
	}
}
