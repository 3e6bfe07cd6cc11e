package ast

import (
	"fmt"
	"strings"
)

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

type Int struct {
	Value int64
	Pos   Pos
}

func (*Int) exprNode() {}
func (i *Int) Position() Pos { return i.Pos }
func (i *Int) String() string { return fmt.Sprintf("%d", i.Value) }

type Bool struct {
	Value bool
	Pos   Pos
}

func (*Bool) exprNode() {}
func (b *Bool) Position() Pos { return b.Pos }
func (b *Bool) String() string { return fmt.Sprintf("%t", b.Value) }

type String struct {
	Value string
	Pos   Pos
}

func (*String) exprNode() {}
func (s *String) Position() Pos { return s.Pos }
func (s *String) String() string { return fmt.Sprintf("%q", s.Value) }

type Null struct {
	Pos Pos
}

func (*Null) exprNode() {}
func (n *Null) Position() Pos { return n.Pos }
func (n *Null) String() string { return "null" }

// Ident is a variable or function name reference.
type Ident struct {
	Name string
	Pos  Pos
}

func (*Ident) exprNode() {}
func (i *Ident) Position() Pos { return i.Pos }
func (i *Ident) String() string { return i.Name }

type Binary struct {
	Op    string
	Left  Expr
	Right Expr
	Pos   Pos
}

func (*Binary) exprNode() {}
func (b *Binary) Position() Pos { return b.Pos }
func (b *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left.String(), b.Op, b.Right.String())
}

type Unary struct {
	Op      string
	Operand Expr
	Pos     Pos
}

func (*Unary) exprNode() {}
func (u *Unary) Position() Pos { return u.Pos }
func (u *Unary) String() string { return fmt.Sprintf("(%s%s)", u.Op, u.Operand.String()) }

type Assign struct {
	Target Expr
	Value  Expr
	Pos    Pos
}

func (*Assign) exprNode() {}
func (a *Assign) Position() Pos { return a.Pos }
func (a *Assign) String() string {
	// Right-associative chains render with explicit grouping.
	if _, ok := a.Value.(*Assign); ok {
		return fmt.Sprintf("%s = (%s)", a.Target.String(), a.Value.String())
	}
	return fmt.Sprintf("%s = %s", a.Target.String(), a.Value.String())
}

// CompoundAssign is `target op= value` (+=, -=, *=, /=, %=).
type CompoundAssign struct {
	Op     string
	Target Expr
	Value  Expr
	Pos    Pos
}

func (*CompoundAssign) exprNode() {}
func (c *CompoundAssign) Position() Pos { return c.Pos }
func (c *CompoundAssign) String() string {
	return fmt.Sprintf("%s %s= %s", c.Target.String(), c.Op, c.Value.String())
}

// Call is a direct function call; NamedArg/MutArg args are resolved by the
// type checker (spec §4.3's argument resolution algorithm) before lowering.
type Call struct {
	Callee Expr
	Args   []Expr
	Pos    Pos
}

func (*Call) exprNode() {}
func (c *Call) Position() Pos { return c.Pos }
func (c *Call) String() string {
	parts := make([]string, 0, len(c.Args))
	for _, a := range c.Args {
		parts = append(parts, a.String())
	}
	return fmt.Sprintf("%s(%s)", c.Callee.String(), strings.Join(parts, ", "))
}

// Field is `object.field`.
type Field struct {
	Object Expr
	Name   string
	Pos    Pos
}

func (*Field) exprNode() {}
func (f *Field) Position() Pos { return f.Pos }
func (f *Field) String() string { return f.Object.String() + "." + f.Name }

// Index is `object[index]`.
type Index struct {
	Object Expr
	Idx    Expr
	Pos    Pos
}

func (*Index) exprNode() {}
func (i *Index) Position() Pos { return i.Pos }
func (i *Index) String() string { return fmt.Sprintf("%s[%s]", i.Object.String(), i.Idx.String()) }

// FieldInit is one `name: value` pair inside a struct literal or heap
// allocation.
type FieldInit struct {
	Name  string
	Value Expr
}

// StructLiteral is `TypeName { field: expr, ... }`. Per spec §4.3 this
// triggers an implicit heap-allocate-and-copy at emission time; the
// resulting binding behaves like a pointer.
type StructLiteral struct {
	TypeName string
	Fields   []FieldInit
	Pos      Pos
}

func (*StructLiteral) exprNode() {}
func (s *StructLiteral) Position() Pos { return s.Pos }
func (s *StructLiteral) String() string { return s.TypeName + formatFields(s.Fields) }

// NewHeap is `new TypeName { fields... }`: produces a pointer and
// registers the binding for LIFO scope cleanup.
type NewHeap struct {
	TypeName string
	Fields   []FieldInit
	Pos      Pos
}

func (*NewHeap) exprNode() {}
func (n *NewHeap) Position() Pos { return n.Pos }
func (n *NewHeap) String() string { return "new " + n.TypeName + formatFields(n.Fields) }

func formatFields(fields []FieldInit) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.Name+": "+f.Value.String())
	}
	return " { " + strings.Join(parts, ", ") + " }"
}

// Clone is `clone(expr)` or `clone<T>(expr)`: like NewHeap but copies an
// existing value (is_explicit=0 in the emitted allocator call).
type Clone struct {
	X          Expr
	TargetType Type // nil if untyped `clone(expr)`
	Pos        Pos
}

func (*Clone) exprNode() {}
func (c *Clone) Position() Pos { return c.Pos }
func (c *Clone) String() string {
	if c.TargetType != nil {
		return fmt.Sprintf("clone<%s>(%s)", c.TargetType.String(), c.X.String())
	}
	return fmt.Sprintf("clone(%s)", c.X.String())
}

// Cast is `cast<TargetType>(expr)`.
type Cast struct {
	TargetType Type
	X          Expr
	Pos        Pos
}

func (*Cast) exprNode() {}
func (c *Cast) Position() Pos { return c.Pos }
func (c *Cast) String() string { return fmt.Sprintf("cast<%s>(%s)", c.TargetType.String(), c.X.String()) }

// MethodRef is `object:method` or `object.method` used as a call callee;
// the parser always wraps it immediately in a Call.
type MethodRef struct {
	Object Expr
	Method string
	Pos    Pos
}

func (*MethodRef) exprNode() {}
func (m *MethodRef) Position() Pos { return m.Pos }
func (m *MethodRef) String() string { return m.Object.String() + ":" + m.Method }

// StaticMethodCall is `TypeName::method(args)` — no receiver synthesis.
type StaticMethodCall struct {
	TypeName string
	Method   string
	Args     []Expr
	Pos      Pos
}

func (*StaticMethodCall) exprNode() {}
func (s *StaticMethodCall) Position() Pos { return s.Pos }
func (s *StaticMethodCall) String() string {
	parts := make([]string, 0, len(s.Args))
	for _, a := range s.Args {
		parts = append(parts, a.String())
	}
	return fmt.Sprintf("%s::%s(%s)", s.TypeName, s.Method, strings.Join(parts, ", "))
}

// NullCheck is `operand!!`: aborts at runtime if operand is null.
type NullCheck struct {
	Operand Expr
	Pos     Pos
}

func (*NullCheck) exprNode() {}
func (n *NullCheck) Position() Pos { return n.Pos }
func (n *NullCheck) String() string { return n.Operand.String() + "!!" }

// MutArg is `mut expr` at a call site: synthesizes an address-of when the
// target parameter expects a pointer.
type MutArg struct {
	X   Expr
	Pos Pos
}

func (*MutArg) exprNode() {}
func (m *MutArg) Position() Pos { return m.Pos }
func (m *MutArg) String() string { return "mut " + m.X.String() }

// NamedArg is `name: value` at a call site.
type NamedArg struct {
	Name  string
	Value Expr
	Pos   Pos
}

func (*NamedArg) exprNode() {}
func (n *NamedArg) Position() Pos { return n.Pos }
func (n *NamedArg) String() string { return n.Name + ": " + n.Value.String() }

// IsCheck is `expr is Type`.
type IsCheck struct {
	X    Expr
	Type Type
	Pos  Pos

	// Static is the comparison's statically-resolved result, stamped by
	// the type checker; there is no runtime type representation, so the
	// emitter lowers the whole check to this boolean.
	Static bool
}

func (*IsCheck) exprNode() {}
func (i *IsCheck) Position() Pos { return i.Pos }
func (i *IsCheck) String() string { return fmt.Sprintf("%s is %s", i.X.String(), i.Type.String()) }

// TypeOf is `#FUNCTION`-style introspection of an expression's static
// type, used by directive lowering and diagnostics; not a runtime value.
type TypeOf struct {
	X   Expr
	Pos Pos
}

func (*TypeOf) exprNode() {}
func (t *TypeOf) Position() Pos { return t.Pos }
func (t *TypeOf) String() string { return fmt.Sprintf("typeof(%s)", t.X.String()) }
