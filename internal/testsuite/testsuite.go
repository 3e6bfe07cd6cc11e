// Package testsuite implements the `test DIR` subcommand (spec §6):
// walking a directory tree of `.cz` files and, for each, either running a
// YAML-manifest-described check (§11's supplement) or falling back to the
// bare per-file syntax check spec.md §6 originally describes. Grounded on
// the teacher's internal/eval_harness/spec.go (YAML-loaded spec struct
// with a LoadSpec constructor) and internal/manifest/manifest.go (status/
// expectation fields validated against an actual run).
package testsuite

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/shkschneider/czar/internal/codegen"
	"github.com/shkschneider/czar/internal/diag"
	"github.com/shkschneider/czar/internal/lexer"
	"github.com/shkschneider/czar/internal/parser"
	"github.com/shkschneider/czar/internal/pipeline"
)

// Manifest describes the expected outcome of compiling one .cz file,
// loaded from a sibling "<name>.czt.yaml" file.
type Manifest struct {
	ExpectError    bool   `yaml:"expect_error"`
	ExpectExitCode int    `yaml:"expect_exit_code"`
	Description    string `yaml:"description"`
}

// LoadManifest reads and parses a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return &m, nil
}

// manifestPath returns the sibling manifest path for a .cz source file.
func manifestPath(czFile string) string {
	return strings.TrimSuffix(czFile, ".cz") + ".czt.yaml"
}

// FileResult is the outcome of checking one .cz file.
type FileResult struct {
	Path   string
	Passed bool
	Reason string // non-empty on failure
}

// Report aggregates the results of walking a directory.
type Report struct {
	Results []FileResult
}

func (r *Report) Passed() int {
	n := 0
	for _, res := range r.Results {
		if res.Passed {
			n++
		}
	}
	return n
}

func (r *Report) Failed() int { return len(r.Results) - r.Passed() }

// RunDir walks dir for .cz files in sorted order, checking each one
// against its sibling manifest if present, or the bare syntax check
// otherwise.
func RunDir(dir string) (*Report, error) {
	var files []string
	err := filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(p, ".cz") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	sort.Strings(files)

	report := &Report{}
	for _, f := range files {
		report.Results = append(report.Results, checkFile(f))
	}
	return report, nil
}

func checkFile(path string) FileResult {
	source, err := os.ReadFile(path)
	if err != nil {
		return FileResult{Path: path, Passed: false, Reason: err.Error()}
	}

	mpath := manifestPath(path)
	if _, err := os.Stat(mpath); err == nil {
		m, err := LoadManifest(mpath)
		if err != nil {
			return FileResult{Path: path, Passed: false, Reason: err.Error()}
		}
		return checkWithManifest(path, string(source), m)
	}
	return checkBareSyntax(path, string(source))
}

// checkBareSyntax is spec.md §6's original "per-file syntax check": a
// file passes if it lexes and parses without an error-severity
// diagnostic.
func checkBareSyntax(path, source string) FileResult {
	var d diag.List
	_ = lexer.Lex(source, path, &d)
	parser.New(source, path, &d).Parse()
	if d.HasErrors() {
		return FileResult{Path: path, Passed: false, Reason: firstError(&d)}
	}
	return FileResult{Path: path, Passed: true}
}

// checkWithManifest compiles path against the outcome m describes: a
// compile-error expectation is checked against the diagnostic list; a
// success expectation additionally builds and runs the emitted C and
// compares the child process's exit code.
func checkWithManifest(path, source string, m *Manifest) FileResult {
	var d diag.List
	cu, ok := pipeline.Compile(path, source, &d, codegen.DebugConfig{})

	if m.ExpectError {
		if !ok && d.HasErrors() {
			return FileResult{Path: path, Passed: true}
		}
		return FileResult{Path: path, Passed: false, Reason: "expected a compile error, got none"}
	}

	if !ok {
		return FileResult{Path: path, Passed: false, Reason: firstError(&d)}
	}

	code, err := buildAndRun(cu.Output)
	if err != nil {
		return FileResult{Path: path, Passed: false, Reason: err.Error()}
	}
	if code != m.ExpectExitCode {
		return FileResult{Path: path, Passed: false,
			Reason: fmt.Sprintf("exit code %d, expected %d", code, m.ExpectExitCode)}
	}
	return FileResult{Path: path, Passed: true}
}

// buildAndRun writes cSource to a temp file, compiles it with the host
// cc, runs the resulting binary, and returns its exit code.
func buildAndRun(cSource string) (int, error) {
	dir, err := os.MkdirTemp("", "czar-test-*")
	if err != nil {
		return 0, err
	}
	defer os.RemoveAll(dir)

	srcPath := filepath.Join(dir, "out.c")
	if err := os.WriteFile(srcPath, []byte(cSource), 0644); err != nil {
		return 0, err
	}
	binPath := filepath.Join(dir, "out.bin")

	build := exec.Command("cc", "-std=gnu11", srcPath, "-o", binPath)
	if out, err := build.CombinedOutput(); err != nil {
		return 0, fmt.Errorf("cc: %w: %s", err, out)
	}

	run := exec.Command(binPath)
	if err := run.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode(), nil
		}
		return 0, err
	}
	return 0, nil
}

func firstError(d *diag.List) string {
	for _, r := range d.All() {
		if r.Severity == diag.Error {
			return r.String()
		}
	}
	return "unknown error"
}
