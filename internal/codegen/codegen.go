// Package codegen translates a lowered Czar AST into a single C11
// translation unit, per spec §4.5. Grounded on the teacher's evaluator
// dispatch style (internal/eval/eval_core.go, eval_expressions.go): one
// struct holding configuration plus per-kind-of-node methods, retargeted
// from tree-walking interpretation to tree-walking text emission.
package codegen

import (
	"fmt"
	"strings"

	"github.com/shkschneider/czar/internal/ast"
	"github.com/shkschneider/czar/internal/lower"
)

// DebugConfig carries the `--debug` cross-cutting flag (spec §6, §9's
// "directives as compile-time configuration"): a plain struct consulted
// during emission, not a language construct with runtime representation.
type DebugConfig struct {
	Enabled bool
}

// Generator emits a C11 translation unit from a lowered program.
type Generator struct {
	debug   DebugConfig
	lowered *lower.Lowered
	sb      strings.Builder
	tmp     int

	// curFn is the function currently being emitted: consulted for
	// #FUNCTION substitution and for parameter passing conventions.
	curFn *ast.FnDecl

	// Allocator-name substitutions from #malloc/#free directives (spec
	// §9's "directives as compile-time configuration").
	mallocOverride string
	freeOverride   string
}

// New builds a Generator with the given debug configuration.
func New(debug DebugConfig) *Generator {
	return &Generator{debug: debug}
}

// Emit produces the translation unit text for lw. Code generation itself
// never produces diagnostics (spec §4.5): malformed input reaching this
// stage is a programmer error; an expression kind with no lowering
// panics, and nothing in cmd/czar recovers that panic.
func (g *Generator) Emit(lw *lower.Lowered) string {
	g.lowered = lw
	g.sb.Reset()
	g.applyDirectives(lw.File)

	g.emitPreamble()
	g.emitStructs(lw.File)
	g.emitFunctions(lw.File)
	g.emitMainTrampoline(lw.File)

	return g.sb.String()
}

func (g *Generator) emitPreamble() {
	g.sb.WriteString("#include <stdint.h>\n")
	g.sb.WriteString("#include <stdbool.h>\n")
	g.sb.WriteString("#include <stdio.h>\n")
	g.sb.WriteString("#include <stdlib.h>\n")
	if g.debug.Enabled {
		g.sb.WriteString("\n")
		g.sb.WriteString("static long _czar_alloc_explicit = 0;\n")
		g.sb.WriteString("static long _czar_alloc_implicit = 0;\n")
		g.sb.WriteString("static long _czar_free_count = 0;\n")
		g.sb.WriteString("static long _czar_bytes_current = 0;\n")
		g.sb.WriteString("static long _czar_bytes_peak = 0;\n\n")
		g.sb.WriteString("static void *_czar_malloc(size_t size, int is_explicit) {\n")
		g.sb.WriteString("    void *p = malloc(size);\n")
		g.sb.WriteString("    if (is_explicit) { _czar_alloc_explicit++; } else { _czar_alloc_implicit++; }\n")
		g.sb.WriteString("    _czar_bytes_current += (long)size;\n")
		g.sb.WriteString("    if (_czar_bytes_current > _czar_bytes_peak) { _czar_bytes_peak = _czar_bytes_current; }\n")
		g.sb.WriteString("    return p;\n")
		g.sb.WriteString("}\n\n")
		g.sb.WriteString("static void _czar_free(void *p) {\n")
		g.sb.WriteString("    _czar_free_count++;\n")
		g.sb.WriteString("    free(p);\n")
		g.sb.WriteString("}\n")
	}
	g.sb.WriteString("\n")
}

// applyDirectives consumes the file's top-level compile-time directives:
// #DEBUG enables the same instrumentation as the --debug flag, #malloc
// and #free substitute the allocator function names used for emission.
func (g *Generator) applyDirectives(f *ast.File) {
	for _, d := range f.Decls {
		dir, ok := d.(*ast.Directive)
		if !ok {
			continue
		}
		switch dir.Kind {
		case "DEBUG":
			if len(dir.Args) == 0 || dir.Args[0] != "false" {
				g.debug.Enabled = true
			}
		case "malloc":
			if len(dir.Args) == 1 {
				g.mallocOverride = dir.Args[0]
			}
		case "free":
			if len(dir.Args) == 1 {
				g.freeOverride = dir.Args[0]
			}
		}
	}
}

func (g *Generator) mallocName() string {
	if g.debug.Enabled {
		return "_czar_malloc"
	}
	if g.mallocOverride != "" {
		return g.mallocOverride
	}
	return "malloc"
}

func (g *Generator) freeName() string {
	if g.debug.Enabled {
		return "_czar_free"
	}
	if g.freeOverride != "" {
		return g.freeOverride
	}
	return "free"
}

func (g *Generator) fresh(prefix string) string {
	g.tmp++
	return fmt.Sprintf("_%s%d", prefix, g.tmp)
}

func (g *Generator) emitFunctions(f *ast.File) {
	for _, d := range f.Decls {
		fn, ok := d.(*ast.FnDecl)
		if !ok {
			continue
		}
		g.emitFnDecl(fn)
	}
}

func (g *Generator) emitMainTrampoline(f *ast.File) {
	mainFn := findMain(f)
	if mainFn == nil {
		return
	}
	isVoid := false
	if named, ok := mainFn.ReturnType.(*ast.Named); ok && named.Name == "void" {
		isVoid = true
	}
	g.sb.WriteString("\nint main(void) {\n")
	if isVoid {
		g.sb.WriteString("    main_main();\n")
	} else {
		g.sb.WriteString("    int _rc = main_main();\n")
	}
	if g.debug.Enabled {
		g.sb.WriteString("    fprintf(stderr, \"alloc explicit=%ld implicit=%ld free=%ld peak_bytes=%ld\\n\", " +
			"_czar_alloc_explicit, _czar_alloc_implicit, _czar_free_count, _czar_bytes_peak);\n")
	}
	if isVoid {
		g.sb.WriteString("    return 0;\n")
	} else {
		g.sb.WriteString("    return _rc;\n")
	}
	g.sb.WriteString("}\n")
}

func findMain(f *ast.File) *ast.FnDecl {
	for _, d := range f.Decls {
		if fn, ok := d.(*ast.FnDecl); ok && fn.ReceiverType == "" && fn.Name == "main" {
			return fn
		}
	}
	return nil
}
