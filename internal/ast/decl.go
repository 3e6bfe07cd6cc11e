package ast

import "strings"

// Node is the base interface implemented by every AST node.
type Node interface {
	String() string
	Position() Pos
}

// Decl is a top-level item: StructDecl, FnDecl, or Directive.
type Decl interface {
	Node
	declNode()
}

// File is the root node produced by parsing one source file.
type File struct {
	Decls []Decl
	Pos   Pos
}

func (f *File) Position() Pos { return f.Pos }
func (f *File) String() string {
	parts := make([]string, 0, len(f.Decls))
	for _, d := range f.Decls {
		parts = append(parts, d.String())
	}
	return strings.Join(parts, "\n")
}

// StructField is a single struct field: a name and declared type.
type StructField struct {
	Name string
	Type Type
}

// StructDecl declares a struct type and its fields in declaration order.
type StructDecl struct {
	Name   string
	Fields []StructField
	Pub    bool
	Pos    Pos
}

func (*StructDecl) declNode() {}
func (s *StructDecl) Position() Pos { return s.Pos }
func (s *StructDecl) String() string {
	parts := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		parts = append(parts, f.Name+": "+f.Type.String())
	}
	return "struct " + s.Name + " { " + strings.Join(parts, ", ") + " }"
}

// Param is one function parameter: a name, declared type, optional default
// value expression, and the `mut` prefix flag.
type Param struct {
	Name    string
	Type    Type
	Default Expr // nil if no default
	Mut     bool
}

// FnDecl declares a free function or a method (ReceiverType non-empty).
type FnDecl struct {
	Name         string
	ReceiverType string // "" for a free function
	Params       []Param
	ReturnType   Type
	Body         *Block
	Pub          bool
	Pos          Pos
}

func (*FnDecl) declNode() {}
func (f *FnDecl) Position() Pos { return f.Pos }
func (f *FnDecl) String() string {
	var sb strings.Builder
	sb.WriteString("fn ")
	if f.ReceiverType != "" {
		sb.WriteString(f.ReceiverType + ":")
	}
	sb.WriteString(f.Name + "(")
	parts := make([]string, 0, len(f.Params))
	for _, p := range f.Params {
		s := p.Name + ": " + p.Type.String()
		if p.Default != nil {
			s += " = " + p.Default.String()
		}
		parts = append(parts, s)
	}
	sb.WriteString(strings.Join(parts, ", "))
	sb.WriteString(") ")
	if f.ReturnType != nil {
		sb.WriteString(f.ReturnType.String() + " ")
	}
	sb.WriteString(f.Body.String())
	return sb.String()
}

// IsExtension reports whether fd is a free function whose first parameter
// is named "self" — an extension method registered under that parameter's
// declared type, per spec §3's Function table.
func (f *FnDecl) IsExtension() bool {
	return f.ReceiverType == "" && len(f.Params) > 0 && f.Params[0].Name == "self"
}

// Directive is a top-level compile-time directive such as #import or #use.
type Directive struct {
	Kind string
	Args []string
	Pos  Pos
}

func (*Directive) declNode() {}
func (d *Directive) Position() Pos { return d.Pos }
func (d *Directive) String() string { return "#" + d.Kind + " " + strings.Join(d.Args, " ") }
