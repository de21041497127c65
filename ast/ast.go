// Package ast defines the syntax tree produced by the parser and
// decorated in place by the analyzer: every expression carries a type
// reference that is unresolved until analysis, and every block-local
// variable receives a fresh SSA variable id.
package ast

import (
	"github.com/kong-shade/kongc/diag"
	"github.com/kong-shade/kongc/names"
	"github.com/kong-shade/kongc/types"
)

// Node is the base interface for all AST nodes.
type Node interface {
	Pos() diag.Pos
}

// Decl is the interface for top-level definitions.
type Decl interface {
	Node
	declNode()
}

// Stmt is the interface for statements.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is the interface for expressions. Every expression carries a
// type reference, filled by the analyzer.
type Expr interface {
	Node
	exprNode()
	TypeRef() *types.Ref
}

// ExprBase holds the fields common to all expressions.
type ExprBase struct {
	Span diag.Pos
	Type types.Ref
}

func (e *ExprBase) Pos() diag.Pos       { return e.Span }
func (e *ExprBase) exprNode()           {}
func (e *ExprBase) TypeRef() *types.Ref { return &e.Type }

// Attribute is a #[name] or #[name(args)] annotation attached to the
// definition that follows it.
type Attribute struct {
	Name   string
	NameID names.ID // filled by the analyzer
	Params []AttrParam
	Span   diag.Pos
}

// AttrParam is one attribute argument: a number or an identifier.
type AttrParam struct {
	Ident  string
	Number float64
	IsNum  bool
}

// Definitions

// StructDecl is `struct Name { member: Type (= default)?; ... }`.
// Pipe descriptor structs additionally allow `member = default;` with
// the type omitted.
type StructDecl struct {
	Name       string
	NameID     names.ID
	Members    []*StructMember
	Attributes []Attribute
	Span       diag.Pos
}

func (s *StructDecl) Pos() diag.Pos { return s.Span }
func (s *StructDecl) declNode()     {}

// StructMember is one field of a struct declaration.
type StructMember struct {
	Name      string
	NameID    names.ID
	TypeName  string // empty for untyped pipe members
	ArraySize uint32 // 0 = scalar, types.Unbounded = runtime array
	Default   Expr   // nil if absent
	Span      diag.Pos
}

// FunctionDecl is `fn Name(params) -> Type { block }`. A missing
// `-> Type` leaves ReturnType empty, meaning void.
type FunctionDecl struct {
	Name       string
	NameID     names.ID
	Params     []*Parameter
	ReturnType string
	Attributes []Attribute
	Body       *Block
	Span       diag.Pos
}

func (f *FunctionDecl) Pos() diag.Pos { return f.Span }
func (f *FunctionDecl) declNode()     {}

// Parameter is one function parameter.
type Parameter struct {
	Name     string
	NameID   names.ID
	TypeName string
	Type     types.Ref // filled by the analyzer
	VarID    uint64    // fresh SSA id, filled by the analyzer
	Span     diag.Pos
}

// ConstDecl is a module-scope `const Name: Type (= expr)?;`. With an
// initializer it is a constant value; without one it declares a
// resource global (constant buffer, texture, sampler).
type ConstDecl struct {
	Name       string
	NameID     names.ID
	TypeName   string
	ArraySize  uint32
	Init       Expr // nil for resource globals
	Attributes []Attribute
	Span       diag.Pos
}

func (c *ConstDecl) Pos() diag.Pos { return c.Span }
func (c *ConstDecl) declNode()     {}

// Statements

// Block is `{ ... }`: an ordered statement list plus the table of
// variables declared directly in it, with a parent pointer for
// lexical-scope lookup.
type Block struct {
	Vars   []*BlockVar
	Stmts  []Stmt
	Parent *Block
	Span   diag.Pos
}

func (b *Block) Pos() diag.Pos { return b.Span }
func (b *Block) stmtNode()     {}

// BlockVar is one variable declared in a block.
type BlockVar struct {
	Name    string
	NameID  names.ID
	Type    types.Ref
	VarID   uint64 // fresh SSA id, filled by the analyzer
	Mutable bool
}

// Find looks a name up through the block chain.
func (b *Block) Find(name string) *BlockVar {
	for blk := b; blk != nil; blk = blk.Parent {
		for _, v := range blk.Vars {
			if v.Name == name {
				return v
			}
		}
	}
	return nil
}

// LocalVarStmt is `let x (: Type)? (= init)?;` or the `mut`/`const`
// forms.
type LocalVarStmt struct {
	Var      *BlockVar
	TypeName string // empty when the declaration has no annotation
	Init     Expr   // nil if absent
	Span     diag.Pos
}

func (l *LocalVarStmt) Pos() diag.Pos { return l.Span }
func (l *LocalVarStmt) stmtNode()     {}

// ExprStmt is an expression used as a statement.
type ExprStmt struct {
	Expr Expr
	Span diag.Pos
}

func (e *ExprStmt) Pos() diag.Pos { return e.Span }
func (e *ExprStmt) stmtNode()     {}

// ReturnStmt is `return expr?;`.
type ReturnStmt struct {
	Value Expr // nil for a bare return
	Span  diag.Pos
}

func (r *ReturnStmt) Pos() diag.Pos { return r.Span }
func (r *ReturnStmt) stmtNode()     {}

// IfStmt is `if (cond) stmt [else stmt]`.
type IfStmt struct {
	Condition Expr
	Then      Stmt
	Else      Stmt // nil if absent
	Span      diag.Pos
}

func (i *IfStmt) Pos() diag.Pos { return i.Span }
func (i *IfStmt) stmtNode()     {}

// WhileStmt is `while (cond) stmt`.
type WhileStmt struct {
	Condition Expr
	Body      Stmt
	Span      diag.Pos
}

func (w *WhileStmt) Pos() diag.Pos { return w.Span }
func (w *WhileStmt) stmtNode()     {}

// Expressions

// BinaryExpr covers arithmetic, comparison, logical, and assignment
// operators. Op is the operator's token kind.
type BinaryExpr struct {
	ExprBase
	Op    BinaryOp
	Left  Expr
	Right Expr
}

// BinaryOp enumerates the binary operators the parser produces.
type BinaryOp uint8

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEquals
	OpNotEquals
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpAnd
	OpOr
	OpAssign
	OpAddAssign
	OpSubAssign
	OpMulAssign
	OpDivAssign
)

// String returns the kong-source spelling of the operator.
func (op BinaryOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	case OpEquals:
		return "=="
	case OpNotEquals:
		return "!="
	case OpLess:
		return "<"
	case OpLessEqual:
		return "<="
	case OpGreater:
		return ">"
	case OpGreaterEqual:
		return ">="
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	case OpAssign:
		return "="
	case OpAddAssign:
		return "+="
	case OpSubAssign:
		return "-="
	case OpMulAssign:
		return "*="
	case OpDivAssign:
		return "/="
	default:
		return "?"
	}
}

// IsAssign reports whether the operator is `=` or a compound variant.
func (op BinaryOp) IsAssign() bool {
	return op >= OpAssign
}

// UnaryExpr is `!x` or `-x`.
type UnaryExpr struct {
	ExprBase
	Op      UnaryOp
	Operand Expr
}

// UnaryOp enumerates the unary operators.
type UnaryOp uint8

const (
	OpNot UnaryOp = iota
	OpNegate
)

// BooleanLit is `true` or `false`.
type BooleanLit struct {
	ExprBase
	Value bool
}

// NumberLit is a decimal literal. The tokenizer produces a double;
// the analyzer narrows it to int/uint/float from context.
type NumberLit struct {
	ExprBase
	Value float64
}

// StringLit is a double-quoted literal.
type StringLit struct {
	ExprBase
	Value string
}

// IdentKind says what an identifier resolved to.
type IdentKind uint8

const (
	IdentUnresolved IdentKind = iota
	IdentLocal
	IdentParam
	IdentGlobal
)

// Ident is a bare identifier. The analyzer records what it resolved to
// and the SSA variable id backing it.
type Ident struct {
	ExprBase
	Name   string
	NameID names.ID
	Kind   IdentKind
	VarID  uint64
}

// Grouping is a parenthesized expression.
type Grouping struct {
	ExprBase
	Inner Expr
}

// CallExpr is `f(args)`. The parser cannot tell calls from
// constructors, so `Type(args)` also parses as a call; the analyzer
// marks the node as a constructor in place once the callee resolves
// to a type name.
type CallExpr struct {
	ExprBase
	Callee      string
	NameID      names.ID
	Args        []Expr
	Constructor bool
	TypeID      types.ID // constructed type when Constructor is set
}

// MemberExpr is `base.name`, right-chained so `a.b.c` parses as
// Member(Member(a, b), c). The analyzer records the resolved index
// chain for this single hop: one ordinal for a struct member, one or
// more component indices for a vector swizzle.
type MemberExpr struct {
	ExprBase
	Base    Expr
	Name    string
	NameID  names.ID
	Indices []uint32
	Swizzle bool
}

// IndexExpr is `base[index]`.
type IndexExpr struct {
	ExprBase
	Base  Expr
	Index Expr
}
