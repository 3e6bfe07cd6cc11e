package codegen

import "github.com/shkschneider/czar/internal/ast"

// emitStructs writes one typedef per StructDecl in declaration order
// (spec §4.5 step 2). Self-referential and forward-referencing struct
// fields already lower correctly since cType always renders a struct
// field as `Name*`, which only requires the `typedef struct Name Name;`
// forward declarations written first — never the full definition — to
// compile.
func (g *Generator) emitStructs(f *ast.File) {
	var decls []*ast.StructDecl
	for _, d := range f.Decls {
		if s, ok := d.(*ast.StructDecl); ok {
			decls = append(decls, s)
		}
	}
	for _, s := range decls {
		g.sb.WriteString("typedef struct " + s.Name + " " + s.Name + ";\n")
	}
	if len(decls) > 0 {
		g.sb.WriteString("\n")
	}
	for _, s := range decls {
		g.emitStructDecl(s)
	}
}

func (g *Generator) emitStructDecl(s *ast.StructDecl) {
	g.sb.WriteString("struct " + s.Name + " {\n")
	for _, field := range s.Fields {
		g.sb.WriteString("    " + g.cDeclarator(field.Type, field.Name) + ";\n")
	}
	g.sb.WriteString("};\n\n")
}
