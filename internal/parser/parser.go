// Package parser implements Czar's recursive-descent parser with a
// Pratt-style operator-precedence table for expressions, per spec §4.2.
package parser

import (
	"strconv"

	"github.com/shkschneider/czar/internal/ast"
	"github.com/shkschneider/czar/internal/diag"
	"github.com/shkschneider/czar/internal/lexer"
)

// Parser consumes a token slice and produces an *ast.File, accumulating
// diagnostics rather than failing fast. On any parse error it records a
// diagnostic and resynchronizes at the next statement-level sync point
// (';' or '}'), per spec §4.2's error-recovery rule.
type Parser struct {
	toks  []lexer.Token
	pos   int
	file  string
	diags *diag.List

	prefix map[lexer.TokenType]func() ast.Expr
	infix  map[lexer.TokenType]func(ast.Expr) ast.Expr
}

// New builds a Parser over src, tokenizing it internally.
func New(src, file string, diags *diag.List) *Parser {
	p := &Parser{
		toks:  lexer.Lex(src, file, diags),
		file:  file,
		diags: diags,
	}
	p.prefix = map[lexer.TokenType]func() ast.Expr{}
	p.infix = map[lexer.TokenType]func(ast.Expr) ast.Expr{}
	p.registerExprParsers()
	return p
}

func (p *Parser) cur() lexer.Token {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return p.toks[len(p.toks)-1]
}

func (p *Parser) peek() lexer.Token {
	if p.pos+1 < len(p.toks) {
		return p.toks[p.pos+1]
	}
	return p.toks[len(p.toks)-1]
}

func (p *Parser) advance() lexer.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) at(kind lexer.TokenType) bool { return p.cur().Kind == kind }

func (p *Parser) pos_() ast.Pos {
	t := p.cur()
	return ast.Pos{File: p.file, Line: t.Line, Column: t.Column}
}

// expect consumes the current token if it matches kind, otherwise records
// a PAR001 diagnostic and returns the (unconsumed) current token.
func (p *Parser) expect(kind lexer.TokenType) lexer.Token {
	if p.at(kind) {
		return p.advance()
	}
	p.errorf(diag.PAR001, "expected %s, got %s %q", kind, p.cur().Kind, p.cur().Lexeme)
	return p.cur()
}

func (p *Parser) errorf(code, format string, args ...any) {
	pos := p.pos_()
	p.diags.Errorf(code, "parser", diag.Pos{File: pos.File, Line: pos.Line, Column: pos.Column}, format, args...)
}

// prevLine is the line of the most recently consumed token, used by the
// end-of-line terminator rule.
func (p *Parser) prevLine() int {
	if p.pos == 0 {
		return p.cur().Line
	}
	return p.toks[p.pos-1].Line
}

// terminator ends a statement: an explicit ';' is consumed; a '}' or EOF
// terminates without consuming; otherwise the next token must sit on a
// later line than the statement's last token (spec §4.2: end-of-line and
// ';' are interchangeable terminators).
func (p *Parser) terminator() {
	if p.at(lexer.SEMICOLON) {
		p.advance()
		return
	}
	if p.at(lexer.RBRACE) || p.at(lexer.EOF) {
		return
	}
	if p.cur().Line > p.prevLine() {
		return
	}
	p.errorf(diag.PAR004, "expected end of statement, got %s %q", p.cur().Kind, p.cur().Lexeme)
	p.sync()
}

// sync advances to the next statement-level sync point: ';', '}', or EOF.
// Consumes a trailing ';' so the caller resumes on the statement after it.
func (p *Parser) sync() {
	for !p.at(lexer.EOF) {
		if p.at(lexer.SEMICOLON) {
			p.advance()
			return
		}
		if p.at(lexer.RBRACE) {
			return
		}
		p.advance()
	}
}

// Parse parses the whole token stream into a *ast.File.
func (p *Parser) Parse() *ast.File {
	f := &ast.File{Pos: p.pos_()}
	for !p.at(lexer.EOF) {
		d := p.parseDecl()
		if d != nil {
			f.Decls = append(f.Decls, d)
		}
	}
	return f
}

func (p *Parser) parseDecl() ast.Decl {
	switch p.cur().Kind {
	case lexer.STRUCT:
		return p.parseStructDecl()
	case lexer.FN:
		return p.parseFnDecl()
	case lexer.PUB:
		p.advance()
		switch p.cur().Kind {
		case lexer.STRUCT:
			d := p.parseStructDecl()
			d.Pub = true
			return d
		case lexer.FN:
			d := p.parseFnDecl()
			d.Pub = true
			return d
		default:
			p.errorf(diag.PAR003, "expected struct or fn after pub")
			p.sync()
			return nil
		}
	case lexer.DIRECTIVE:
		return p.parseDirective()
	default:
		p.errorf(diag.PAR003, "expected top-level declaration, got %s %q", p.cur().Kind, p.cur().Lexeme)
		p.sync()
		return nil
	}
}

// parseDirective handles top-level directives (#import "path", #use name,
// #DEBUG, #malloc name, #free name). A directive takes at most one
// argument, and only a token on the directive's own line is taken as it,
// so an argument-less directive does not swallow the next declaration.
func (p *Parser) parseDirective() *ast.Directive {
	pos := p.pos_()
	tok := p.advance()
	d := &ast.Directive{Kind: tok.Lexeme[1:], Pos: pos}
	if !p.at(lexer.SEMICOLON) && !p.at(lexer.EOF) && !p.at(lexer.RBRACE) && p.cur().Line == tok.Line {
		d.Args = append(d.Args, p.advance().Lexeme)
	}
	if p.at(lexer.SEMICOLON) {
		p.advance()
	}
	return d
}

// parseStructDecl parses `struct Name { Type field, ... }`. Fields follow
// the C-style type-then-name order (spec §8's worked examples write
// `struct P{ i32 x }`, never `x: i32`); commas between fields are
// optional.
func (p *Parser) parseStructDecl() *ast.StructDecl {
	pos := p.pos_()
	p.expect(lexer.STRUCT)
	name := p.expect(lexer.IDENT).Lexeme
	p.expect(lexer.LBRACE)
	s := &ast.StructDecl{Name: name, Pos: pos}
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		ftype, fname := p.parseTypeThenName()
		s.Fields = append(s.Fields, ast.StructField{Name: fname, Type: ftype})
		if p.at(lexer.COMMA) {
			p.advance()
		}
	}
	p.expect(lexer.RBRACE)
	return s
}

// parseTypeThenName reads a "Type name" pair as used by struct fields and
// non-receiver parameters. Pointer and array types are read via
// parseType; a bare name denotes a Named type read as plain identifiers.
func (p *Parser) parseTypeThenName() (ast.Type, string) {
	if p.at(lexer.STAR) || p.at(lexer.LBRACKET) {
		t := p.parseType()
		return t, p.expect(lexer.IDENT).Lexeme
	}
	typeName := p.expect(lexer.IDENT).Lexeme
	name := p.expect(lexer.IDENT).Lexeme
	return &ast.Named{Name: typeName}, name
}

func (p *Parser) parseFnDecl() *ast.FnDecl {
	pos := p.pos_()
	p.expect(lexer.FN)

	fn := &ast.FnDecl{Pos: pos}
	name := p.expect(lexer.IDENT).Lexeme
	if p.at(lexer.COLON) {
		p.advance()
		fn.ReceiverType = name
		// `new` and `free` lex as keywords but name the constructor and
		// destructor methods.
		if p.at(lexer.NEW) || p.at(lexer.FREE) {
			fn.Name = p.advance().Lexeme
		} else {
			fn.Name = p.expect(lexer.IDENT).Lexeme
		}
	} else {
		fn.Name = name
	}

	p.expect(lexer.LPAREN)
	for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
		fn.Params = append(fn.Params, p.parseParam())
		if p.at(lexer.COMMA) {
			p.advance()
		}
	}
	p.expect(lexer.RPAREN)

	if !p.at(lexer.LBRACE) {
		fn.ReturnType = p.parseType()
	} else {
		fn.ReturnType = &ast.Named{Name: "void"}
	}

	fn.Body = p.parseBlock()
	return fn
}

// parseParam reads one parameter: `[mut] Type name [= default]`, with one
// exception — a receiver written as the bare word `self` (no type) takes
// its type from the enclosing method's ReceiverType, per spec §3's
// constructor/destructor and method rules. An extension method's `self`
// parameter (no ReceiverType on the fn itself) always carries an explicit
// type, since there is nowhere else to infer it from.
func (p *Parser) parseParam() ast.Param {
	param := ast.Param{}
	if p.at(lexer.MUT) {
		p.advance()
		param.Mut = true
	}
	if p.at(lexer.STAR) || p.at(lexer.LBRACKET) {
		param.Type = p.parseType()
		param.Name = p.expect(lexer.IDENT).Lexeme
	} else {
		first := p.expect(lexer.IDENT).Lexeme
		if p.at(lexer.IDENT) {
			param.Type = &ast.Named{Name: first}
			param.Name = p.advance().Lexeme
		} else {
			param.Name = first
		}
	}
	if p.at(lexer.ASSIGN) {
		p.advance()
		param.Default = p.parseExpr(LOWEST)
	}
	return param
}

func (p *Parser) parseType() ast.Type {
	var base ast.Type
	if p.at(lexer.STAR) {
		p.advance()
		mut := false
		if p.at(lexer.MUT) {
			p.advance()
			mut = true
		}
		base = &ast.Pointer{To: p.parseType(), Flags: ast.PointerFlags{IsMut: mut}}
		return base
	}
	if p.at(lexer.LBRACKET) {
		p.advance()
		elem := p.parseType()
		p.expect(lexer.SEMICOLON)
		sizeTok := p.expect(lexer.INT)
		size, _ := strconv.Atoi(sizeTok.Lexeme)
		p.expect(lexer.RBRACKET)
		return &ast.Array{Element: elem, Size: size}
	}
	name := p.expect(lexer.IDENT).Lexeme
	return &ast.Named{Name: name}
}

func (p *Parser) parseBlock() *ast.Block {
	pos := p.pos_()
	p.expect(lexer.LBRACE)
	b := &ast.Block{Pos: pos}
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		s := p.parseStmt()
		if s != nil {
			b.Statements = append(b.Statements, s)
		}
	}
	p.expect(lexer.RBRACE)
	return b
}
