package ast

import "fmt"

// Type is the compile-time type representation of spec §3: a closed
// variant over named types, pointers, and fixed-size arrays. Two Types are
// equal iff structurally equal on names, pointer chains, and array sizes.
type Type interface {
	typeNode()
	String() string
	Equal(Type) bool
}

// Named is a primitive (i8..i64, u8..u64, f32, f64, bool, void, any) or a
// user struct name.
type Named struct {
	Name string
}

func (*Named) typeNode() {}
func (n *Named) String() string { return n.Name }
func (n *Named) Equal(o Type) bool {
	other, ok := o.(*Named)
	return ok && other.Name == n.Name
}

// PointerFlags carries the two orthogonal bits a Pointer type tracks.
type PointerFlags struct {
	IsMut   bool // caller passes for write-through
	IsClone bool // compiler-synthesized pointer arising from heap allocation
}

// Pointer is a pointer-to type, with flags distinguishing caller-mutable
// pointers from compiler-synthesized (heap-allocation) ones.
type Pointer struct {
	To    Type
	Flags PointerFlags
}

func (*Pointer) typeNode() {}
func (p *Pointer) String() string { return "*" + p.To.String() }
func (p *Pointer) Equal(o Type) bool {
	other, ok := o.(*Pointer)
	return ok && p.To.Equal(other.To)
}

// Array is a fixed-size array type; the size is known at parse time.
type Array struct {
	Element Type
	Size    int
}

func (*Array) typeNode() {}
func (a *Array) String() string { return fmt.Sprintf("[%s;%d]", a.Element.String(), a.Size) }
func (a *Array) Equal(o Type) bool {
	other, ok := o.(*Array)
	return ok && a.Size == other.Size && a.Element.Equal(other.Element)
}

// Primitive type names recognized by Named; anything else is a struct name.
var PrimitiveNames = map[string]bool{
	"i8": true, "i16": true, "i32": true, "i64": true,
	"u8": true, "u16": true, "u32": true, "u64": true,
	"f32": true, "f64": true, "bool": true, "void": true, "any": true,
}

// IsPrimitive reports whether name denotes one of Czar's primitive types
// rather than a user struct.
func IsPrimitive(name string) bool { return PrimitiveNames[name] }
