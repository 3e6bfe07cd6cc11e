package ast

import (
	"fmt"
	"strings"
)

// Dump renders n as an indented tree, one node kind per line, for the
// `parser` subcommand's debug output (spec §6). Grounded on the teacher's
// formatCore/formatTyped recursive-indent dumpers
// (internal/repl/repl_format.go): a type switch over node kinds that
// recurses into structural children and falls back to a leaf's own
// String() once there is nothing left to descend into.
func Dump(n Node, indent string) string {
	switch d := n.(type) {
	case *File:
		parts := make([]string, 0, len(d.Decls))
		for _, decl := range d.Decls {
			parts = append(parts, Dump(decl, indent))
		}
		return strings.Join(parts, "\n")
	case *StructDecl:
		fields := make([]string, 0, len(d.Fields))
		for _, f := range d.Fields {
			fields = append(fields, f.Type.String()+" "+f.Name)
		}
		return fmt.Sprintf("%sStruct(%s) { %s }", indent, d.Name, strings.Join(fields, ", "))
	case *FnDecl:
		name := d.Name
		if d.ReceiverType != "" {
			name = d.ReceiverType + ":" + d.Name
		}
		s := fmt.Sprintf("%sFn(%s)", indent, name)
		if d.Body != nil {
			s += "\n" + Dump(d.Body, indent+"  ")
		}
		return s
	case *Directive:
		return fmt.Sprintf("%sDirective(#%s %s)", indent, d.Kind, strings.Join(d.Args, " "))
	case *Block:
		parts := make([]string, 0, len(d.Statements))
		for _, s := range d.Statements {
			parts = append(parts, Dump(s, indent+"  "))
		}
		return fmt.Sprintf("%sBlock\n%s", indent, strings.Join(parts, "\n"))
	case *If:
		s := fmt.Sprintf("%sIf(%s)\n%s", indent, d.Cond.String(), Dump(d.Then, indent+"  "))
		if d.Else != nil {
			s += fmt.Sprintf("\n%sElse\n%s", indent, Dump(d.Else, indent+"  "))
		}
		return s
	case *While:
		return fmt.Sprintf("%sWhile(%s)\n%s", indent, d.Cond.String(), Dump(d.Body, indent+"  "))
	case *VarDecl:
		return fmt.Sprintf("%sVarDecl(%s)", indent, d.String())
	case *Return:
		return fmt.Sprintf("%sReturn(%s)", indent, d.String())
	case *ExprStmt:
		return fmt.Sprintf("%sExprStmt(%s)", indent, d.X.String())
	case *Discard:
		return fmt.Sprintf("%sDiscard(%s)", indent, d.X.String())
	case *Free:
		return fmt.Sprintf("%sFree(%s)", indent, d.Name)
	case *Defer:
		return fmt.Sprintf("%sDefer\n%s", indent, Dump(d.Stmt, indent+"  "))
	default:
		return indent + n.String()
	}
}
