package testsuite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestRunDirBareSyntaxCheckPassesValidFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ok.cz", `fn main() i32 { return 0; }`)

	report, err := RunDir(dir)
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.True(t, report.Results[0].Passed)
}

func TestRunDirBareSyntaxCheckFailsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.cz", `fn main() i32 { return`)

	report, err := RunDir(dir)
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.False(t, report.Results[0].Passed)
	assert.NotEmpty(t, report.Results[0].Reason)
}

func TestRunDirManifestExpectErrorPassesOnCompileFailure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "uaf.cz", `fn main() i32 { let p = new P{x:1}; free p; return p.x; }`)
	writeFile(t, dir, "uaf.czt.yaml", "expect_error: true\ndescription: use-after-free rejected\n")

	report, err := RunDir(dir)
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.True(t, report.Results[0].Passed)
}

func TestRunDirManifestExpectErrorFailsWhenCompileSucceeds(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "clean.cz", `fn main() i32 { return 0; }`)
	writeFile(t, dir, "clean.czt.yaml", "expect_error: true\n")

	report, err := RunDir(dir)
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.False(t, report.Results[0].Passed)
}

func TestLoadManifestParsesFields(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "spec.czt.yaml", "expect_error: false\nexpect_exit_code: 30\ndescription: arithmetic\n")

	m, err := LoadManifest(p)
	require.NoError(t, err)
	assert.False(t, m.ExpectError)
	assert.Equal(t, 30, m.ExpectExitCode)
	assert.Equal(t, "arithmetic", m.Description)
}

func TestReportPassedAndFailedCounts(t *testing.T) {
	r := &Report{Results: []FileResult{{Passed: true}, {Passed: false}, {Passed: true}}}
	assert.Equal(t, 2, r.Passed())
	assert.Equal(t, 1, r.Failed())
}
