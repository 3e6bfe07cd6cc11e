package parser

import (
	"github.com/shkschneider/czar/internal/ast"
	"github.com/shkschneider/czar/internal/diag"
	"github.com/shkschneider/czar/internal/lexer"
)

func (p *Parser) parseStmt() ast.Stmt {
	switch p.cur().Kind {
	case lexer.RETURN:
		return p.parseReturn()
	case lexer.LET, lexer.VAL, lexer.VAR:
		return p.parseVarDecl()
	case lexer.IF:
		return p.parseIf()
	case lexer.WHILE:
		return p.parseWhile()
	case lexer.FREE:
		return p.parseFree()
	case lexer.DIRECTIVE:
		return p.parseDeferDirective()
	case lexer.LBRACE:
		return p.parseBlock()
	case lexer.IDENT:
		if p.peek().Kind == lexer.IDENT {
			return p.parseTypedVarDecl()
		}
		return p.parseExprOrDiscardStmt()
	default:
		return p.parseExprOrDiscardStmt()
	}
}

// parseTypedVarDecl handles the C-style local declaration `Type name = init;`
// (spec §8's `i32 a = 10;`), the other surface spelling for a local binding
// alongside `let`/`val`/`var`. Bindings declared this way are immutable,
// matching `let` without `mut`.
func (p *Parser) parseTypedVarDecl() *ast.VarDecl {
	pos := p.pos_()
	typeName := p.advance().Lexeme
	v := &ast.VarDecl{Pos: pos, Type: &ast.Named{Name: typeName}}
	v.Name = p.expect(lexer.IDENT).Lexeme
	if p.at(lexer.ASSIGN) {
		p.advance()
		v.Init = p.parseExpr(LOWEST)
	}
	p.terminator()
	return v
}

func (p *Parser) parseReturn() *ast.Return {
	pos := p.pos_()
	p.expect(lexer.RETURN)
	r := &ast.Return{Pos: pos}
	if !p.at(lexer.SEMICOLON) {
		r.Value = p.parseExpr(LOWEST)
	}
	p.terminator()
	return r
}

// parseVarDecl handles `let|val|var [mut] name[: Type] = init;`. `let`/
// `val` declare immutable bindings unless `mut` is present; `var` is
// accepted as a synonym for `let mut` without the explicit keyword.
func (p *Parser) parseVarDecl() *ast.VarDecl {
	pos := p.pos_()
	kw := p.advance().Kind
	v := &ast.VarDecl{Pos: pos, Mutable: kw == lexer.VAR}
	if p.at(lexer.MUT) {
		p.advance()
		v.Mutable = true
	}
	v.Name = p.expect(lexer.IDENT).Lexeme
	if p.at(lexer.COLON) {
		p.advance()
		v.Type = p.parseType()
	}
	if p.at(lexer.ASSIGN) {
		p.advance()
		v.Init = p.parseExpr(LOWEST)
	}
	p.terminator()
	return v
}

// parseIf flattens `else { if ... }` written directly as `else if ...` at
// parse time (both spellings are accepted); full elseif normalization of
// the block-wrapped form happens in the lowering stage (spec §4.4).
func (p *Parser) parseIf() *ast.If {
	pos := p.pos_()
	p.expect(lexer.IF)
	cond := p.parseExpr(LOWEST)
	then := p.parseBlock()
	stmt := &ast.If{Cond: cond, Then: then, Pos: pos}
	if p.at(lexer.ELSE) {
		p.advance()
		if p.at(lexer.IF) {
			stmt.Else = p.parseIf()
		} else {
			stmt.Else = p.parseBlock()
		}
	}
	return stmt
}

func (p *Parser) parseWhile() *ast.While {
	pos := p.pos_()
	p.expect(lexer.WHILE)
	cond := p.parseExpr(LOWEST)
	body := p.parseBlock()
	return &ast.While{Cond: cond, Body: body, Pos: pos}
}

func (p *Parser) parseFree() *ast.Free {
	pos := p.pos_()
	p.expect(lexer.FREE)
	name := p.expect(lexer.IDENT).Lexeme
	p.terminator()
	return &ast.Free{Name: name, Pos: pos}
}

// parseDeferDirective handles `#defer statement`; any other directive
// appearing in statement position is reported as PAR004 and skipped to
// the next sync point.
func (p *Parser) parseDeferDirective() ast.Stmt {
	pos := p.pos_()
	tok := p.cur()
	if tok.Lexeme != "#defer" {
		p.errorf(diag.PAR004, "unexpected directive %s in statement position", tok.Lexeme)
		p.sync()
		return nil
	}
	p.advance()
	inner := p.parseStmt()
	if inner == nil {
		return nil
	}
	return &ast.Defer{Stmt: inner, Pos: pos}
}

func (p *Parser) parseExprOrDiscardStmt() ast.Stmt {
	pos := p.pos_()
	x := p.parseExpr(LOWEST)
	if x == nil {
		p.sync()
		return nil
	}
	p.terminator()
	if _, ok := x.(*ast.Assign); ok {
		return &ast.ExprStmt{X: x, Pos: pos}
	}
	if _, ok := x.(*ast.CompoundAssign); ok {
		return &ast.ExprStmt{X: x, Pos: pos}
	}
	if _, ok := x.(*ast.Call); ok {
		return &ast.ExprStmt{X: x, Pos: pos}
	}
	return &ast.Discard{X: x, Pos: pos}
}
