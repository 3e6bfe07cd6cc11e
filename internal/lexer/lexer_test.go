package lexer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shkschneider/czar/internal/diag"
)

func lexAll(t *testing.T, src string) ([]Token, *diag.List) {
	t.Helper()
	var d diag.List
	return Lex(src, "test.cz", &d), &d
}

func TestLexerBasicTokens(t *testing.T) {
	toks, d := lexAll(t, `fn main() i32 { return 10 + 20; }`)
	require.False(t, d.HasErrors())

	var kinds []TokenType
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	assert.Equal(t, []TokenType{
		FN, IDENT, LPAREN, RPAREN, IDENT, LBRACE,
		RETURN, INT, PLUS, INT, SEMICOLON, RBRACE, EOF,
	}, kinds)
}

func TestLexerIntegerLiterals(t *testing.T) {
	toks, d := lexAll(t, `1_000 0xFF 0b1010`)
	require.False(t, d.HasErrors())
	require.Len(t, toks, 4) // 3 ints + EOF
	assert.Equal(t, "1000", toks[0].Lexeme)
	assert.Equal(t, "0xFF", toks[1].Lexeme)
	assert.Equal(t, "10", toks[2].Lexeme)
}

func TestLexerOperatorMaximalMunch(t *testing.T) {
	toks, d := lexAll(t, `<<= << < += == = !! ! &&`)
	require.False(t, d.HasErrors())
	var kinds []TokenType
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	// <<= is not a Czar operator, so it lexes as SHL then ASSIGN.
	assert.Equal(t, []TokenType{
		SHL, ASSIGN, SHL, LT, PLUS_ASSIGN, EQ, ASSIGN, BANGBANG, BANG, ANDAND, EOF,
	}, kinds)
}

func TestLexerStringEscapes(t *testing.T) {
	toks, d := lexAll(t, `"a\nb\"c"`)
	require.False(t, d.HasErrors())
	assert.Equal(t, "a\nb\"c", toks[0].Lexeme)
}

func TestLexerUnterminatedString(t *testing.T) {
	_, d := lexAll(t, "\"abc")
	assert.True(t, d.HasErrors())
}

func TestLexerUnknownCharacter(t *testing.T) {
	_, d := lexAll(t, "let x = `")
	assert.True(t, d.HasErrors())
}

func TestLexerComments(t *testing.T) {
	toks, d := lexAll(t, "let x = 1 // trailing\n/* block\ncomment */ let y = 2")
	require.False(t, d.HasErrors())
	var kinds []TokenType
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	assert.Equal(t, []TokenType{LET, IDENT, ASSIGN, INT, LET, IDENT, ASSIGN, INT, EOF}, kinds)
}

func TestLexerDirective(t *testing.T) {
	toks, d := lexAll(t, `#DEBUG #defer free p`)
	require.False(t, d.HasErrors())
	assert.Equal(t, DIRECTIVE, toks[0].Kind)
	assert.Equal(t, "#DEBUG", toks[0].Lexeme)
	assert.Equal(t, DIRECTIVE, toks[1].Kind)
	assert.Equal(t, "#defer", toks[1].Lexeme)
}

func TestLexerPositions(t *testing.T) {
	toks, _ := lexAll(t, "let\nx = 1")
	assert.Equal(t, 1, toks[0].Line)
	require.Len(t, toks, 5) // let, x, =, 1, EOF
	assert.Equal(t, 2, toks[1].Line)
}

func TestLexerFullTokenStream(t *testing.T) {
	toks, d := lexAll(t, `let x = 1;`)
	require.False(t, d.HasErrors())

	want := []Token{
		{Kind: LET, Lexeme: "let", Line: 1, Column: 1},
		{Kind: IDENT, Lexeme: "x", Line: 1, Column: 5},
		{Kind: ASSIGN, Lexeme: "=", Line: 1, Column: 7},
		{Kind: INT, Lexeme: "1", Line: 1, Column: 9},
		{Kind: SEMICOLON, Lexeme: ";", Line: 1, Column: 10},
		{Kind: EOF, Lexeme: "", Line: 1, Column: 10},
	}
	if diff := cmp.Diff(want, toks); diff != "" {
		t.Errorf("token stream mismatch (-want +got):\n%s", diff)
	}
}
