package parser

import (
	"strconv"

	"github.com/shkschneider/czar/internal/ast"
	"github.com/shkschneider/czar/internal/diag"
	"github.com/shkschneider/czar/internal/lexer"
)

// Precedence levels, low to high, per spec §4.2.
const (
	LOWEST     int = iota
	ASSIGNMENT     // = += -= *= /= %= (right-assoc)
	LOGIC_OR
	LOGIC_AND
	EQUALITY
	RELATIONAL
	BIT_OR
	BIT_XOR
	BIT_AND
	SHIFT
	ADDITIVE
	MULTIPLICATIVE
	UNARY
	POSTFIX
)

var precedences = map[lexer.TokenType]int{
	lexer.ASSIGN: ASSIGNMENT, lexer.PLUS_ASSIGN: ASSIGNMENT, lexer.MINUS_ASSIGN: ASSIGNMENT,
	lexer.STAR_ASSIGN: ASSIGNMENT, lexer.SLASH_ASSIGN: ASSIGNMENT, lexer.PERCENT_ASSIGN: ASSIGNMENT,
	lexer.OR: LOGIC_OR, lexer.OROR: LOGIC_OR,
	lexer.AND: LOGIC_AND, lexer.ANDAND: LOGIC_AND,
	lexer.EQ: EQUALITY, lexer.NEQ: EQUALITY,
	lexer.LT: RELATIONAL, lexer.GT: RELATIONAL, lexer.LE: RELATIONAL, lexer.GE: RELATIONAL,
	lexer.PIPE: BIT_OR,
	lexer.CARET: BIT_XOR,
	lexer.AMP: BIT_AND,
	lexer.SHL: SHIFT, lexer.SHR: SHIFT,
	lexer.PLUS: ADDITIVE, lexer.MINUS: ADDITIVE,
	lexer.STAR: MULTIPLICATIVE, lexer.SLASH: MULTIPLICATIVE, lexer.PERCENT: MULTIPLICATIVE,
	lexer.BANGBANG: POSTFIX, lexer.DOT: POSTFIX, lexer.COLON: POSTFIX,
	lexer.DCOLON: POSTFIX, lexer.LBRACKET: POSTFIX, lexer.LPAREN: POSTFIX,
	lexer.IS: RELATIONAL,
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.cur().Kind]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) registerExprParsers() {
	p.prefix[lexer.INT] = p.parseIntLit
	p.prefix[lexer.TRUE] = p.parseBoolLit
	p.prefix[lexer.FALSE] = p.parseBoolLit
	p.prefix[lexer.STRING] = p.parseStringLit
	p.prefix[lexer.CHAR] = p.parseCharLit
	p.prefix[lexer.NULL] = p.parseNullLit
	p.prefix[lexer.IDENT] = p.parseIdentOrStructLit
	p.prefix[lexer.LPAREN] = p.parseGroup
	p.prefix[lexer.MINUS] = p.parseUnary
	p.prefix[lexer.BANG] = p.parseUnary
	p.prefix[lexer.AMP] = p.parseUnary
	p.prefix[lexer.STAR] = p.parseUnary
	p.prefix[lexer.TILDE] = p.parseUnary
	p.prefix[lexer.NEW] = p.parseNewHeap
	p.prefix[lexer.CAST] = p.parseCast
	p.prefix[lexer.MUT] = p.parseMutArg
	p.prefix[lexer.DIRECTIVE] = p.parseDirectiveExpr

	for _, k := range []lexer.TokenType{
		lexer.PLUS, lexer.MINUS, lexer.STAR, lexer.SLASH, lexer.PERCENT,
		lexer.EQ, lexer.NEQ, lexer.LT, lexer.GT, lexer.LE, lexer.GE,
		lexer.AND, lexer.OR, lexer.ANDAND, lexer.OROR,
		lexer.PIPE, lexer.CARET, lexer.AMP, lexer.SHL, lexer.SHR,
	} {
		p.infix[k] = p.parseBinary
	}
	p.infix[lexer.ASSIGN] = p.parseAssign
	for _, k := range []lexer.TokenType{
		lexer.PLUS_ASSIGN, lexer.MINUS_ASSIGN, lexer.STAR_ASSIGN, lexer.SLASH_ASSIGN, lexer.PERCENT_ASSIGN,
	} {
		p.infix[k] = p.parseCompoundAssign
	}
	p.infix[lexer.DOT] = p.parseFieldOrMethod
	p.infix[lexer.COLON] = p.parseMethodCall
	p.infix[lexer.DCOLON] = p.parseStaticMethodCall
	p.infix[lexer.LBRACKET] = p.parseIndex
	p.infix[lexer.LPAREN] = p.parseCall
	p.infix[lexer.BANGBANG] = p.parseNullCheckSuffix
	p.infix[lexer.IS] = p.parseIsCheck
}

func (p *Parser) parseExpr(minPrec int) ast.Expr {
	prefixFn, ok := p.prefix[p.cur().Kind]
	if !ok {
		p.errorf(diag.PAR001, "unexpected token %s %q in expression", p.cur().Kind, p.cur().Lexeme)
		return nil
	}
	left := prefixFn()
	if left == nil {
		return nil
	}
	for !p.at(lexer.SEMICOLON) && minPrec < p.peekPrecedence() {
		// An operator on a later line than the expression so far belongs
		// to the next statement: end-of-line terminates (spec §4.2).
		if p.cur().Line > p.prevLine() {
			return left
		}
		infixFn, ok := p.infix[p.cur().Kind]
		if !ok {
			return left
		}
		left = infixFn(left)
	}
	return left
}

func (p *Parser) parseIntLit() ast.Expr {
	pos := p.pos_()
	tok := p.advance()
	lit := tok.Lexeme
	var v int64
	var err error
	if len(lit) > 2 && lit[0] == '0' && (lit[1] == 'x' || lit[1] == 'X') {
		v, err = strconv.ParseInt(lit[2:], 16, 64)
	} else {
		v, err = strconv.ParseInt(lit, 10, 64)
	}
	if err != nil {
		p.diags.Errorf(diag.LEX004, "parser", diag.Pos{File: pos.File, Line: pos.Line, Column: pos.Column}, "malformed numeric literal %q", lit)
	}
	return &ast.Int{Value: v, Pos: pos}
}

func (p *Parser) parseBoolLit() ast.Expr {
	pos := p.pos_()
	tok := p.advance()
	return &ast.Bool{Value: tok.Kind == lexer.TRUE, Pos: pos}
}

func (p *Parser) parseStringLit() ast.Expr {
	pos := p.pos_()
	tok := p.advance()
	return &ast.String{Value: tok.Lexeme, Pos: pos}
}

func (p *Parser) parseCharLit() ast.Expr {
	pos := p.pos_()
	tok := p.advance()
	var v int64
	for _, r := range tok.Lexeme {
		v = int64(r)
		break
	}
	return &ast.Int{Value: v, Pos: pos}
}

func (p *Parser) parseNullLit() ast.Expr {
	pos := p.pos_()
	p.advance()
	return &ast.Null{Pos: pos}
}

// parseIdentOrStructLit disambiguates `TypeName { ... }` struct literals
// from a bare identifier by only treating `{` as a literal opener when the
// identifier starts with an uppercase letter, per spec §4.2. `clone` is
// recognized here as a contextual keyword (it is absent from spec §3's
// reserved-word list): it only becomes a Clone expression when followed
// by `(` or `<`, and stays an ordinary identifier everywhere else.
func (p *Parser) parseIdentOrStructLit() ast.Expr {
	pos := p.pos_()
	name := p.advance().Lexeme
	if name == "clone" && (p.at(lexer.LPAREN) || p.at(lexer.LT)) {
		return p.parseClone(pos)
	}
	if p.at(lexer.LBRACE) && startsUpper(name) {
		return p.parseStructLiteralFields(name, pos)
	}
	return &ast.Ident{Name: name, Pos: pos}
}

// parseClone handles `clone(expr)` and `clone<TargetType>(expr)`.
func (p *Parser) parseClone(pos ast.Pos) ast.Expr {
	c := &ast.Clone{Pos: pos}
	if p.at(lexer.LT) {
		p.advance()
		c.TargetType = p.parseType()
		p.expect(lexer.GT)
	}
	p.expect(lexer.LPAREN)
	c.X = p.parseExpr(LOWEST)
	p.expect(lexer.RPAREN)
	return c
}

func startsUpper(s string) bool {
	return len(s) > 0 && s[0] >= 'A' && s[0] <= 'Z'
}

func (p *Parser) parseStructLiteralFields(typeName string, pos ast.Pos) ast.Expr {
	p.expect(lexer.LBRACE)
	lit := &ast.StructLiteral{TypeName: typeName, Pos: pos}
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		fname := p.expect(lexer.IDENT).Lexeme
		p.expect(lexer.COLON)
		fval := p.parseExpr(LOWEST)
		lit.Fields = append(lit.Fields, ast.FieldInit{Name: fname, Value: fval})
		if p.at(lexer.COMMA) {
			p.advance()
		}
	}
	p.expect(lexer.RBRACE)
	return lit
}

func (p *Parser) parseGroup() ast.Expr {
	p.advance() // '('
	x := p.parseExpr(LOWEST)
	p.expect(lexer.RPAREN)
	return x
}

func (p *Parser) parseUnary() ast.Expr {
	pos := p.pos_()
	op := p.advance().Lexeme
	operand := p.parseExpr(UNARY)
	return &ast.Unary{Op: op, Operand: operand, Pos: pos}
}

func (p *Parser) parseMutArg() ast.Expr {
	pos := p.pos_()
	p.advance() // 'mut'
	x := p.parseExpr(UNARY)
	return &ast.MutArg{X: x, Pos: pos}
}

// parseNewHeap handles `new TypeName { fields... }`.
func (p *Parser) parseNewHeap() ast.Expr {
	pos := p.pos_()
	p.expect(lexer.NEW)
	name := p.expect(lexer.IDENT).Lexeme
	p.expect(lexer.LBRACE)
	n := &ast.NewHeap{TypeName: name, Pos: pos}
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		fname := p.expect(lexer.IDENT).Lexeme
		p.expect(lexer.COLON)
		fval := p.parseExpr(LOWEST)
		n.Fields = append(n.Fields, ast.FieldInit{Name: fname, Value: fval})
		if p.at(lexer.COMMA) {
			p.advance()
		}
	}
	p.expect(lexer.RBRACE)
	return n
}

// parseCast handles `cast<TargetType>(expr)`.
func (p *Parser) parseCast() ast.Expr {
	pos := p.pos_()
	p.expect(lexer.CAST)
	p.expect(lexer.LT)
	target := p.parseType()
	p.expect(lexer.GT)
	p.expect(lexer.LPAREN)
	x := p.parseExpr(LOWEST)
	p.expect(lexer.RPAREN)
	return &ast.Cast{TargetType: target, X: x, Pos: pos}
}

// parseDirectiveExpr handles directive tokens used as expression atoms:
// #FILE, #FUNCTION, #DEBUG — lowered to literals by the code generator.
func (p *Parser) parseDirectiveExpr() ast.Expr {
	pos := p.pos_()
	tok := p.advance()
	return &ast.Ident{Name: tok.Lexeme, Pos: pos}
}

func (p *Parser) parseBinary(left ast.Expr) ast.Expr {
	pos := p.pos_()
	opTok := p.advance()
	prec := precedences[opTok.Kind]
	right := p.parseExpr(prec)
	return &ast.Binary{Op: opTok.Lexeme, Left: left, Right: right, Pos: pos}
}

func (p *Parser) parseAssign(left ast.Expr) ast.Expr {
	pos := p.pos_()
	p.advance() // '='
	value := p.parseExpr(ASSIGNMENT - 1)
	return &ast.Assign{Target: left, Value: value, Pos: pos}
}

func (p *Parser) parseCompoundAssign(left ast.Expr) ast.Expr {
	pos := p.pos_()
	opTok := p.advance()
	op := opTok.Lexeme[:len(opTok.Lexeme)-1] // strip trailing '='
	value := p.parseExpr(ASSIGNMENT - 1)
	return &ast.CompoundAssign{Op: op, Target: left, Value: value, Pos: pos}
}

// parseFieldOrMethod handles `.field` and, per spec §4.2, `.method(args)`
// lowering identically to `:method(args)`.
func (p *Parser) parseFieldOrMethod(left ast.Expr) ast.Expr {
	pos := p.pos_()
	p.advance() // '.'
	name := p.expect(lexer.IDENT).Lexeme
	if p.at(lexer.LPAREN) {
		ref := &ast.MethodRef{Object: left, Method: name, Pos: pos}
		return p.parseCall(ref)
	}
	return &ast.Field{Object: left, Name: name, Pos: pos}
}

func (p *Parser) parseMethodCall(left ast.Expr) ast.Expr {
	pos := p.pos_()
	p.advance() // ':'
	name := p.expect(lexer.IDENT).Lexeme
	ref := &ast.MethodRef{Object: left, Method: name, Pos: pos}
	return p.parseCall(ref)
}

// parseStaticMethodCall handles `TypeName::method(args)`; left must be an
// *ast.Ident naming the type.
func (p *Parser) parseStaticMethodCall(left ast.Expr) ast.Expr {
	pos := p.pos_()
	p.advance() // '::'
	method := p.expect(lexer.IDENT).Lexeme
	p.expect(lexer.LPAREN)
	var args []ast.Expr
	for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
		args = append(args, p.parseCallArg())
		if p.at(lexer.COMMA) {
			p.advance()
		}
	}
	p.expect(lexer.RPAREN)
	typeName := ""
	if id, ok := left.(*ast.Ident); ok {
		typeName = id.Name
	}
	return &ast.StaticMethodCall{TypeName: typeName, Method: method, Args: args, Pos: pos}
}

func (p *Parser) parseIndex(left ast.Expr) ast.Expr {
	pos := p.pos_()
	p.advance() // '['
	idx := p.parseExpr(LOWEST)
	p.expect(lexer.RBRACKET)
	return &ast.Index{Object: left, Idx: idx, Pos: pos}
}

// parseCall handles a regular call `callee(args)` as well as a method
// callee already wrapped as *ast.MethodRef by the caller.
func (p *Parser) parseCall(callee ast.Expr) ast.Expr {
	pos := p.pos_()
	p.expect(lexer.LPAREN)
	var args []ast.Expr
	for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
		args = append(args, p.parseCallArg())
		if p.at(lexer.COMMA) {
			p.advance()
		}
	}
	p.expect(lexer.RPAREN)
	return &ast.Call{Callee: callee, Args: args, Pos: pos}
}

// parseCallArg parses one call argument, recognizing the `name: value`
// named-argument form and the `mut expr` mutable-argument form.
func (p *Parser) parseCallArg() ast.Expr {
	if p.at(lexer.IDENT) && p.peek().Kind == lexer.COLON {
		pos := p.pos_()
		name := p.advance().Lexeme
		p.advance() // ':'
		value := p.parseExpr(ASSIGNMENT)
		return &ast.NamedArg{Name: name, Value: value, Pos: pos}
	}
	return p.parseExpr(ASSIGNMENT)
}

func (p *Parser) parseNullCheckSuffix(left ast.Expr) ast.Expr {
	pos := p.pos_()
	p.advance() // '!!'
	return &ast.NullCheck{Operand: left, Pos: pos}
}

func (p *Parser) parseIsCheck(left ast.Expr) ast.Expr {
	pos := p.pos_()
	p.advance() // 'is'
	t := p.parseType()
	return &ast.IsCheck{X: left, Type: t, Pos: pos}
}
