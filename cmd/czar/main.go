// Command czar is the Czar compiler driver: lex/parse/typecheck/lower/
// generate C11, with one subcommand per pipeline stage plus `build`/`run`/
// `test` convenience wrappers over the host C compiler (spec §6).
// Grounded on the teacher's cmd/ailang/main.go: a flag-based dispatcher
// over a first positional subcommand argument, with fatih/color for
// severity-colored diagnostics and one run* function per subcommand.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/shkschneider/czar/internal/ast"
	"github.com/shkschneider/czar/internal/codegen"
	"github.com/shkschneider/czar/internal/diag"
	"github.com/shkschneider/czar/internal/lexer"
	"github.com/shkschneider/czar/internal/parser"
	"github.com/shkschneider/czar/internal/pipeline"
	"github.com/shkschneider/czar/internal/testsuite"
)

var (
	Version = "dev"

	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func main() {
	var (
		versionFlag = flag.Bool("version", false, "Print version information")
		helpFlag    = flag.Bool("help", false, "Show help")
		outFlag     = flag.String("o", "a.out", "Output path for build (run ignores it)")
		debugFlag   = flag.Bool("debug", false, "Enable memory-tracking instrumentation")
		jsonFlag    = flag.Bool("json", false, "Emit diagnostics as czar.diagnostic/v1 JSON")
	)
	flag.Parse()

	if *versionFlag {
		fmt.Printf("czar %s\n", bold(Version))
		return
	}
	if *helpFlag || flag.NArg() == 0 {
		printHelp()
		return
	}

	command := flag.Arg(0)
	debug := codegen.DebugConfig{Enabled: *debugFlag}

	switch command {
	case "lexer":
		requireArg(command, 1)
		runLexer(flag.Arg(1), *jsonFlag)
	case "parser":
		requireArg(command, 1)
		runParser(flag.Arg(1), *jsonFlag)
	case "generator":
		requireArg(command, 1)
		runGenerator(flag.Arg(1), debug, *jsonFlag)
	case "build":
		requireArg(command, 1)
		runBuild(flag.Arg(1), *outFlag, debug, *jsonFlag)
	case "run":
		requireArg(command, 1)
		runRun(flag.Arg(1), debug, *jsonFlag)
	case "test":
		path := "."
		if flag.NArg() >= 2 {
			path = flag.Arg(1)
		}
		runTest(path)
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", red("error"), command)
		printHelp()
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println(bold("czar") + " - a small systems language that compiles to C11")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  czar <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  lexer FILE.cz       print one line per token")
	fmt.Println("  parser FILE.cz      print an indented AST rendering")
	fmt.Println("  generator FILE.cz   write FILE.c next to the input")
	fmt.Println("  build FILE.cz       generate C, invoke cc, write the binary")
	fmt.Println("  run FILE.cz         build then execute, propagating exit code")
	fmt.Println("  test DIR            check every .cz file in a directory tree")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  -o OUT       output path for build (default a.out); run ignores it")
	fmt.Println("               and builds into a temporary directory")
	fmt.Println("  --debug      enable memory-tracking instrumentation")
	fmt.Println("  --json       emit diagnostics as czar.diagnostic/v1 JSON")
}

func requireArg(command string, n int) {
	if flag.NArg() <= n {
		fmt.Fprintf(os.Stderr, "%s: %s requires a file argument\n", red("error"), command)
		os.Exit(1)
	}
}

func readSource(path string) string {
	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", red("error"), path, err)
		os.Exit(1)
	}
	return string(content)
}

// printDiagnostics renders every report in d to stderr, colored by
// severity, or as JSON when asJSON is set (spec §7's user-visible format,
// plus the --json rendering option of SPEC_FULL.md §12).
func printDiagnostics(d *diag.List, asJSON bool) {
	for _, r := range d.All() {
		if asJSON {
			text, err := r.ToJSON(true)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
				continue
			}
			fmt.Fprintln(os.Stderr, text)
			continue
		}
		line := r.String()
		if r.Severity == diag.Warning {
			fmt.Fprintln(os.Stderr, yellow(line))
		} else {
			fmt.Fprintln(os.Stderr, red(line))
		}
	}
}

func runLexer(path string, asJSON bool) {
	source := readSource(path)
	var d diag.List
	tokens := lexer.Lex(source, path, &d)
	for _, tok := range tokens {
		fmt.Printf("%s '%s' at %d:%d\n", tok.Kind, tok.Lexeme, tok.Line, tok.Column)
	}
	printDiagnostics(&d, asJSON)
	if d.HasErrors() {
		os.Exit(1)
	}
}

func runParser(path string, asJSON bool) {
	source := readSource(path)
	var d diag.List
	f := parser.New(source, path, &d).Parse()
	printDiagnostics(&d, asJSON)
	if d.HasErrors() {
		os.Exit(1)
	}
	fmt.Println(ast.Dump(f, ""))
}

// compileToC runs the full pipeline through code generation, printing
// diagnostics and exiting 1 on the first stage boundary that has errors
// (spec §7's propagation policy).
func compileToC(path string, debug codegen.DebugConfig, asJSON bool) string {
	source := readSource(path)
	var d diag.List
	cu, ok := pipeline.Compile(path, source, &d, debug)
	printDiagnostics(&d, asJSON)
	if !ok {
		os.Exit(1)
	}
	return cu.Output
}

func runGenerator(path string, debug codegen.DebugConfig, asJSON bool) {
	c := compileToC(path, debug, asJSON)
	outPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".c"
	if err := os.WriteFile(outPath, []byte(c), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "%s: writing %s: %v\n", red("error"), outPath, err)
		os.Exit(1)
	}
}

// ccCompile invokes the host C compiler over cSource, producing outPath.
func ccCompile(cSource, outPath string) error {
	dir, err := os.MkdirTemp("", "czar-build-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	srcPath := filepath.Join(dir, "out.c")
	if err := os.WriteFile(srcPath, []byte(cSource), 0644); err != nil {
		return err
	}
	// The emitted C uses statement expressions and __typeof__, so gnu11
	// rather than strict c11 (spec §6's output contract).
	cmd := exec.Command("cc", "-std=gnu11", srcPath, "-o", outPath)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("cc failed: %w\n%s", err, out)
	}
	return nil
}

func runBuild(path, outPath string, debug codegen.DebugConfig, asJSON bool) {
	c := compileToC(path, debug, asJSON)
	if err := ccCompile(c, outPath); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
		os.Exit(1)
	}
}

func runRun(path string, debug codegen.DebugConfig, asJSON bool) {
	c := compileToC(path, debug, asJSON)
	dir, err := os.MkdirTemp("", "czar-run-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
		os.Exit(1)
	}
	defer os.RemoveAll(dir)

	binPath := filepath.Join(dir, "out.bin")
	if err := ccCompile(c, binPath); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
		os.Exit(1)
	}

	cmd := exec.Command(binPath)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			os.Exit(exitErr.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
		os.Exit(1)
	}
}

func runTest(path string) {
	report, err := testsuite.RunDir(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
		os.Exit(1)
	}
	for _, r := range report.Results {
		if r.Passed {
			fmt.Printf("  %s %s\n", green("ok"), r.Path)
			continue
		}
		fmt.Printf("  %s %s: %s\n", red("FAIL"), r.Path, r.Reason)
	}
	fmt.Printf("\n%d passed, %d failed\n", report.Passed(), report.Failed())
	if report.Failed() > 0 {
		os.Exit(1)
	}
}
