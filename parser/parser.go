// Package parser turns a kong token stream into a list of top-level
// definitions. It is a classical recursive-descent parser with
// precedence climbing for expressions; no error recovery is
// attempted, the first syntactic mismatch aborts the parse.
package parser

import (
	"github.com/kong-shade/kongc/ast"
	"github.com/kong-shade/kongc/diag"
	"github.com/kong-shade/kongc/lexer"
	"github.com/kong-shade/kongc/token"
	"github.com/kong-shade/kongc/types"
)

// Parser parses kong tokens into an AST.
type Parser struct {
	file   string
	tokens []token.Token
	pos    int
}

// New creates a parser over a token vector.
func New(file string, tokens []token.Token) *Parser {
	return &Parser{file: file, tokens: tokens}
}

// Parse tokenizes and parses source in one step.
func Parse(file, source string) ([]ast.Decl, error) {
	tokens, err := lexer.New(file, source).Tokenize()
	if err != nil {
		return nil, err
	}
	return New(file, tokens).ParseModule()
}

// ParseModule parses the whole token stream into top-level definitions.
func (p *Parser) ParseModule() ([]ast.Decl, error) {
	var decls []ast.Decl
	for !p.check(token.EOF) {
		decl, err := p.definition()
		if err != nil {
			return nil, err
		}
		decls = append(decls, decl)
	}
	return decls, nil
}

// definition parses one top-level definition with its leading
// attributes.
func (p *Parser) definition() (ast.Decl, error) {
	attrs, err := p.attributes()
	if err != nil {
		return nil, err
	}

	switch p.current().Kind {
	case token.KwStruct:
		return p.structDecl(attrs)
	case token.KwFn:
		return p.functionDecl(attrs)
	case token.KwConst:
		return p.constDecl(attrs)
	default:
		return nil, p.errorf("expected a struct, function, or const definition")
	}
}

// attributes parses zero or more `#[...]` tokens preceding a
// definition. The attribute body arrives verbatim from the lexer and
// is split here into name and parameters.
func (p *Parser) attributes() ([]ast.Attribute, error) {
	var attrs []ast.Attribute
	for p.check(token.Attribute) {
		tok := p.advance()
		attr, err := parseAttribute(p.file, tok)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, attr)
	}
	return attrs, nil
}

// structDecl parses `struct Name { member: Type (= default)?; ... }`.
// Pipe descriptor members may omit the type: `vertex = vs;`.
func (p *Parser) structDecl(attrs []ast.Attribute) (ast.Decl, error) {
	start := p.pos
	p.advance() // struct

	name, err := p.expectIdentifier("struct name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LeftBrace); err != nil {
		return nil, err
	}

	var members []*ast.StructMember
	for !p.check(token.RightBrace) {
		member, err := p.structMember()
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	p.advance() // }

	return &ast.StructDecl{
		Name:       name.Lexeme,
		Members:    members,
		Attributes: attrs,
		Span:       p.spanAt(start),
	}, nil
}

func (p *Parser) structMember() (*ast.StructMember, error) {
	start := p.pos
	name, err := p.expectIdentifier("member name")
	if err != nil {
		return nil, err
	}

	member := &ast.StructMember{
		Name: name.Lexeme,
		Span: p.spanAt(start),
	}

	hasType := false
	if p.check(token.Colon) {
		p.advance()
		typeName, arraySize, err := p.typeRef()
		if err != nil {
			return nil, err
		}
		member.TypeName = typeName
		member.ArraySize = arraySize
		hasType = true
	}

	if p.check(token.Equal) {
		p.advance()
		init, err := p.expression()
		if err != nil {
			return nil, err
		}
		member.Default = init
	} else if !hasType {
		return nil, p.errorf("expected ':' or '=' after member name")
	}

	if _, err := p.expect(token.Semicolon); err != nil {
		return nil, err
	}
	return member, nil
}

// functionDecl parses `fn Name(params) -> Type { block }`. The return
// type clause is optional; a missing one means void.
func (p *Parser) functionDecl(attrs []ast.Attribute) (ast.Decl, error) {
	start := p.pos
	p.advance() // fn

	name, err := p.expectIdentifier("function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LeftParen); err != nil {
		return nil, err
	}

	var params []*ast.Parameter
	for !p.check(token.RightParen) {
		if len(params) > 0 {
			if _, err := p.expect(token.Comma); err != nil {
				return nil, err
			}
		}
		paramStart := p.pos
		paramName, err := p.expectIdentifier("parameter name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Colon); err != nil {
			return nil, err
		}
		typeName, _, err := p.typeRef()
		if err != nil {
			return nil, err
		}
		params = append(params, &ast.Parameter{
			Name:     paramName.Lexeme,
			TypeName: typeName,
			Span:     p.spanAt(paramStart),
		})
	}
	p.advance() // )

	returnType := ""
	if p.check(token.Arrow) {
		p.advance()
		if p.check(token.KwVoid) {
			p.advance()
		} else {
			typeName, _, err := p.typeRef()
			if err != nil {
				return nil, err
			}
			returnType = typeName
		}
	}

	body, err := p.block(nil)
	if err != nil {
		return nil, err
	}

	return &ast.FunctionDecl{
		Name:       name.Lexeme,
		Params:     params,
		ReturnType: returnType,
		Attributes: attrs,
		Body:       body,
		Span:       p.spanAt(start),
	}, nil
}

// constDecl parses `const Name: Type (= expr)?;`. Without an
// initializer it declares a resource global.
func (p *Parser) constDecl(attrs []ast.Attribute) (ast.Decl, error) {
	start := p.pos
	p.advance() // const

	name, err := p.expectIdentifier("const name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Colon); err != nil {
		return nil, err
	}
	typeName, arraySize, err := p.typeRef()
	if err != nil {
		return nil, err
	}

	var init ast.Expr
	if p.check(token.Equal) {
		p.advance()
		init, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.Semicolon); err != nil {
		return nil, err
	}

	return &ast.ConstDecl{
		Name:       name.Lexeme,
		TypeName:   typeName,
		ArraySize:  arraySize,
		Init:       init,
		Attributes: attrs,
		Span:       p.spanAt(start),
	}, nil
}

// typeRef parses `Type` or `Type[N]` or `Type[]`.
func (p *Parser) typeRef() (string, uint32, error) {
	name, err := p.expectIdentifier("type name")
	if err != nil {
		return "", 0, err
	}
	if !p.check(token.LeftBracket) {
		return name.Lexeme, 0, nil
	}
	p.advance() // [
	if p.check(token.RightBracket) {
		p.advance()
		return name.Lexeme, types.Unbounded, nil
	}
	size, err := p.expect(token.Number)
	if err != nil {
		return "", 0, err
	}
	if _, err := p.expect(token.RightBracket); err != nil {
		return "", 0, err
	}
	return name.Lexeme, uint32(size.Number), nil
}

// Statements

// block parses `{ ... }`, threading the lexical parent through for
// scope lookup.
func (p *Parser) block(parent *ast.Block) (*ast.Block, error) {
	start := p.pos
	if _, err := p.expect(token.LeftBrace); err != nil {
		return nil, err
	}

	blk := &ast.Block{Parent: parent, Span: p.spanAt(start)}
	for !p.check(token.RightBrace) {
		if p.check(token.EOF) {
			return nil, p.errorf("expected '}'")
		}
		stmt, err := p.statement(blk)
		if err != nil {
			return nil, err
		}
		blk.Stmts = append(blk.Stmts, stmt)
	}
	p.advance() // }
	return blk, nil
}

func (p *Parser) statement(parent *ast.Block) (ast.Stmt, error) {
	switch p.current().Kind {
	case token.KwLet, token.KwMut, token.KwConst:
		return p.localVar(parent)
	case token.KwIf:
		return p.ifStmt(parent)
	case token.KwWhile:
		return p.whileStmt(parent)
	case token.LeftBrace:
		return p.block(parent)
	case token.Identifier:
		// `return` is not a reserved word; it is matched by text.
		if p.current().Lexeme == "return" {
			return p.returnStmt()
		}
	}
	return p.exprStmt()
}

// localVar parses `let x (: Type)? (= init)?;` and the `mut`/`const`
// variants. The declared variable is appended to the enclosing
// block's variable table.
func (p *Parser) localVar(parent *ast.Block) (ast.Stmt, error) {
	start := p.pos
	mutable := p.current().Kind == token.KwMut
	p.advance() // let/mut/const

	name, err := p.expectIdentifier("variable name")
	if err != nil {
		return nil, err
	}

	typeName := ""
	if p.check(token.Colon) {
		p.advance()
		typeName, _, err = p.typeRef()
		if err != nil {
			return nil, err
		}
	}

	var init ast.Expr
	if p.check(token.Equal) {
		p.advance()
		init, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if typeName == "" && init == nil {
		return nil, p.errorf("variable %q needs a type annotation or an initializer", name.Lexeme)
	}
	if _, err := p.expect(token.Semicolon); err != nil {
		return nil, err
	}

	v := &ast.BlockVar{Name: name.Lexeme, Mutable: mutable}
	parent.Vars = append(parent.Vars, v)

	return &ast.LocalVarStmt{
		Var:      v,
		TypeName: typeName,
		Init:     init,
		Span:     p.spanAt(start),
	}, nil
}

func (p *Parser) returnStmt() (ast.Stmt, error) {
	start := p.pos
	p.advance() // return

	var value ast.Expr
	if !p.check(token.Semicolon) {
		var err error
		value, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.Semicolon); err != nil {
		return nil, err
	}
	return &ast.ReturnStmt{Value: value, Span: p.spanAt(start)}, nil
}

func (p *Parser) ifStmt(parent *ast.Block) (ast.Stmt, error) {
	start := p.pos
	p.advance() // if

	if _, err := p.expect(token.LeftParen); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RightParen); err != nil {
		return nil, err
	}

	then, err := p.statement(parent)
	if err != nil {
		return nil, err
	}

	var elseStmt ast.Stmt
	if p.check(token.KwElse) {
		p.advance()
		elseStmt, err = p.statement(parent)
		if err != nil {
			return nil, err
		}
	}

	return &ast.IfStmt{Condition: cond, Then: then, Else: elseStmt, Span: p.spanAt(start)}, nil
}

func (p *Parser) whileStmt(parent *ast.Block) (ast.Stmt, error) {
	start := p.pos
	p.advance() // while

	if _, err := p.expect(token.LeftParen); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RightParen); err != nil {
		return nil, err
	}

	body, err := p.statement(parent)
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmt{Condition: cond, Body: body, Span: p.spanAt(start)}, nil
}

func (p *Parser) exprStmt() (ast.Stmt, error) {
	start := p.pos
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Semicolon); err != nil {
		return nil, err
	}
	return &ast.ExprStmt{Expr: expr, Span: p.spanAt(start)}, nil
}

// Expressions, precedence climbing. High to low: primary, unary,
// multiplicative, additive, comparison, equality, logical and,
// logical or, assignment (right associative).

func (p *Parser) expression() (ast.Expr, error) {
	return p.assignment()
}

var assignOps = map[token.Kind]ast.BinaryOp{
	token.Equal:      ast.OpAssign,
	token.PlusEqual:  ast.OpAddAssign,
	token.MinusEqual: ast.OpSubAssign,
	token.StarEqual:  ast.OpMulAssign,
	token.SlashEqual: ast.OpDivAssign,
}

func (p *Parser) assignment() (ast.Expr, error) {
	left, err := p.logicalOr()
	if err != nil {
		return nil, err
	}

	op, ok := assignOps[p.current().Kind]
	if !ok {
		return left, nil
	}
	pos := p.currentPos()
	p.advance()

	// Right associative: a = b = c parses as a = (b = c).
	right, err := p.assignment()
	if err != nil {
		return nil, err
	}

	switch left.(type) {
	case *ast.Ident, *ast.MemberExpr, *ast.IndexExpr:
	default:
		return nil, diag.New(p.file, pos, "invalid assignment target")
	}

	return &ast.BinaryExpr{
		ExprBase: ast.ExprBase{Span: pos},
		Op:       op,
		Left:     left,
		Right:    right,
	}, nil
}

func (p *Parser) logicalOr() (ast.Expr, error) {
	return p.binary(p.logicalAnd, map[token.Kind]ast.BinaryOp{
		token.PipePipe: ast.OpOr,
	})
}

func (p *Parser) logicalAnd() (ast.Expr, error) {
	return p.binary(p.equality, map[token.Kind]ast.BinaryOp{
		token.AmpAmp: ast.OpAnd,
	})
}

func (p *Parser) equality() (ast.Expr, error) {
	return p.binary(p.comparison, map[token.Kind]ast.BinaryOp{
		token.EqualEqual: ast.OpEquals,
		token.BangEqual:  ast.OpNotEquals,
	})
}

func (p *Parser) comparison() (ast.Expr, error) {
	return p.binary(p.additive, map[token.Kind]ast.BinaryOp{
		token.Less:         ast.OpLess,
		token.LessEqual:    ast.OpLessEqual,
		token.Greater:      ast.OpGreater,
		token.GreaterEqual: ast.OpGreaterEqual,
	})
}

func (p *Parser) additive() (ast.Expr, error) {
	return p.binary(p.multiplicative, map[token.Kind]ast.BinaryOp{
		token.Plus:  ast.OpAdd,
		token.Minus: ast.OpSub,
	})
}

func (p *Parser) multiplicative() (ast.Expr, error) {
	return p.binary(p.unary, map[token.Kind]ast.BinaryOp{
		token.Star:    ast.OpMul,
		token.Slash:   ast.OpDiv,
		token.Percent: ast.OpMod,
	})
}

// binary parses a left-associative run of operators at one precedence
// level.
func (p *Parser) binary(next func() (ast.Expr, error), ops map[token.Kind]ast.BinaryOp) (ast.Expr, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := ops[p.current().Kind]
		if !ok {
			return left, nil
		}
		pos := p.currentPos()
		p.advance()
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{
			ExprBase: ast.ExprBase{Span: pos},
			Op:       op,
			Left:     left,
			Right:    right,
		}
	}
}

func (p *Parser) unary() (ast.Expr, error) {
	switch p.current().Kind {
	case token.Bang:
		pos := p.currentPos()
		p.advance()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{ExprBase: ast.ExprBase{Span: pos}, Op: ast.OpNot, Operand: operand}, nil
	case token.Minus:
		pos := p.currentPos()
		p.advance()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{ExprBase: ast.ExprBase{Span: pos}, Op: ast.OpNegate, Operand: operand}, nil
	}
	return p.postfix()
}

// postfix parses a primary expression followed by any run of call,
// member, and index suffixes.
func (p *Parser) postfix() (ast.Expr, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}

	for {
		switch p.current().Kind {
		case token.LeftParen:
			ident, ok := expr.(*ast.Ident)
			if !ok {
				return nil, p.errorf("only a name can be called")
			}
			args, err := p.callArgs()
			if err != nil {
				return nil, err
			}
			expr = &ast.CallExpr{
				ExprBase: ast.ExprBase{Span: ident.Span},
				Callee:   ident.Name,
				Args:     args,
			}
		case token.Dot:
			pos := p.currentPos()
			p.advance()
			name, err := p.expectIdentifier("member name")
			if err != nil {
				return nil, err
			}
			expr = &ast.MemberExpr{
				ExprBase: ast.ExprBase{Span: pos},
				Base:     expr,
				Name:     name.Lexeme,
			}
		case token.LeftBracket:
			pos := p.currentPos()
			p.advance()
			index, err := p.expression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RightBracket); err != nil {
				return nil, err
			}
			expr = &ast.IndexExpr{
				ExprBase: ast.ExprBase{Span: pos},
				Base:     expr,
				Index:    index,
			}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) callArgs() ([]ast.Expr, error) {
	p.advance() // (
	var args []ast.Expr
	for !p.check(token.RightParen) {
		if len(args) > 0 {
			if _, err := p.expect(token.Comma); err != nil {
				return nil, err
			}
		}
		arg, err := p.expression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	p.advance() // )
	return args, nil
}

func (p *Parser) primary() (ast.Expr, error) {
	tok := p.current()
	pos := p.currentPos()

	switch tok.Kind {
	case token.Number:
		p.advance()
		return &ast.NumberLit{ExprBase: ast.ExprBase{Span: pos}, Value: tok.Number}, nil
	case token.Boolean:
		p.advance()
		return &ast.BooleanLit{ExprBase: ast.ExprBase{Span: pos}, Value: tok.Lexeme == "true"}, nil
	case token.String:
		p.advance()
		return &ast.StringLit{ExprBase: ast.ExprBase{Span: pos}, Value: tok.Lexeme}, nil
	case token.Identifier:
		p.advance()
		return &ast.Ident{ExprBase: ast.ExprBase{Span: pos}, Name: tok.Lexeme}, nil
	case token.LeftParen:
		p.advance()
		inner, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RightParen); err != nil {
			return nil, err
		}
		return &ast.Grouping{ExprBase: ast.ExprBase{Span: pos}, Inner: inner}, nil
	default:
		return nil, p.errorf("expected an expression, found %s", tok.Kind)
	}
}

// Token plumbing

func (p *Parser) current() token.Token {
	return p.tokens[p.pos]
}

func (p *Parser) currentPos() diag.Pos {
	tok := p.current()
	return diag.Pos{Line: tok.Line, Column: tok.Column}
}

func (p *Parser) spanAt(pos int) diag.Pos {
	tok := p.tokens[pos]
	return diag.Pos{Line: tok.Line, Column: tok.Column}
}

func (p *Parser) advance() token.Token {
	tok := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind token.Kind) bool {
	return p.current().Kind == kind
}

func (p *Parser) expect(kind token.Kind) (token.Token, error) {
	if !p.check(kind) {
		return token.Token{}, p.errorf("expected %s, found %s", kind, p.current().Kind)
	}
	return p.advance(), nil
}

func (p *Parser) expectIdentifier(what string) (token.Token, error) {
	if !p.check(token.Identifier) {
		return token.Token{}, p.errorf("expected %s, found %s", what, p.current().Kind)
	}
	return p.advance(), nil
}

func (p *Parser) errorf(format string, args ...any) error {
	return diag.New(p.file, p.currentPos(), format, args...)
}
