package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListHasErrors(t *testing.T) {
	var l List
	assert.False(t, l.HasErrors())

	l.Warnf(MUT002, "typecheck", Pos{File: "a.cz", Line: 1, Column: 1}, "mut ignored")
	assert.False(t, l.HasErrors(), "warnings alone must not trip HasErrors")

	l.Errorf(TYP001, "typecheck", Pos{File: "a.cz", Line: 2, Column: 3}, "type mismatch: want %s got %s", "i32", "bool")
	assert.True(t, l.HasErrors())
	require.Len(t, l.All(), 2)
}

func TestReportString(t *testing.T) {
	r := New(MEM001, "typecheck", Error, Pos{File: "a.cz", Line: 5, Column: 9}, "use of freed variable p")
	assert.Equal(t, "a.cz:5:9: error: use of freed variable p", r.String())
}

func TestReportToJSON(t *testing.T) {
	r := New(PAR001, "parser", Error, Pos{File: "a.cz", Line: 1, Column: 1}, "unexpected token")
	s, err := r.ToJSON(true)
	require.NoError(t, err)
	assert.Contains(t, s, `"schema":"czar.diagnostic/v1"`)
	assert.Contains(t, s, `"code":"PAR001"`)
}
