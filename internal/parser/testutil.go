package parser

import (
	"testing"

	"github.com/shkschneider/czar/internal/ast"
	"github.com/shkschneider/czar/internal/diag"
)

// mustParse parses src and fails the test if any diagnostic was recorded.
func mustParse(t *testing.T, src string) *ast.File {
	t.Helper()
	var d diag.List
	f := New(src, "test.cz", &d).Parse()
	if d.HasErrors() {
		t.Fatalf("unexpected parse errors:\n%v", d.All())
	}
	return f
}

// mustParseError parses src and fails the test if no diagnostic was
// recorded; returns the diagnostic list for further assertions.
func mustParseError(t *testing.T, src string) *diag.List {
	t.Helper()
	var d diag.List
	New(src, "test.cz", &d).Parse()
	if !d.HasErrors() {
		t.Fatalf("expected parse errors for %q but got none", src)
	}
	return &d
}

func hasCode(d *diag.List, code string) bool {
	for _, r := range d.All() {
		if r.Code == code {
			return true
		}
	}
	return false
}
