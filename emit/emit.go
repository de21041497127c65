// Package emit lowers analyzed function bodies into linear opcode
// buffers. Every produced expression result is bound to a fresh SSA
// variable id that is returned upward so parent nodes can reference
// it.
package emit

import (
	"github.com/kong-shade/kongc/ast"
	"github.com/kong-shade/kongc/diag"
	"github.com/kong-shade/kongc/ir"
	"github.com/kong-shade/kongc/types"
)

// Module lowers every user-defined function in the module. Functions
// that already carry opcodes are left alone, so lowering once per
// source file never doubles a buffer.
func Module(m *ir.Module, file string) error {
	for i := range m.Functions() {
		f := m.Function(ir.FunctionID(i))
		if f.Body == nil || len(f.Code) > 0 {
			continue
		}
		e := &emitter{file: file, module: m, fn: f}
		if err := e.block(f.Body, false); err != nil {
			return err
		}
	}
	return nil
}

type emitter struct {
	file   string
	module *ir.Module
	fn     *ir.Function
}

func (e *emitter) emit(op ir.Op) {
	e.fn.Code = append(e.fn.Code, op)
}

func (e *emitter) alloc(t types.Ref) ir.Variable {
	return ir.Variable{ID: e.module.AllocVarID(), Type: t}
}

func (e *emitter) internalf(pos diag.Pos, format string, args ...any) error {
	return diag.Internal(e.file, pos, format, args...)
}

// block wraps the statements in BLOCK_START/BLOCK_END when wrapped is
// true; function top-level bodies omit the wrapper because the
// backends emit the function braces themselves.
func (e *emitter) block(b *ast.Block, wrapped bool) error {
	if wrapped {
		e.emit(ir.Op{Kind: ir.OpBlockStart})
	}
	for _, stmt := range b.Stmts {
		if err := e.statement(stmt); err != nil {
			return err
		}
	}
	if wrapped {
		e.emit(ir.Op{Kind: ir.OpBlockEnd})
	}
	return nil
}

// body lowers a statement in a control-flow arm. Single statements
// are wrapped in a block so structural opcodes always travel in
// BLOCK_START/BLOCK_END pairs; the textual backends rely on the
// block opcodes to supply braces after IF and WHILE headers, and on
// isElse to print the `else` keyword before the second arm.
func (e *emitter) body(stmt ast.Stmt, isElse bool) error {
	e.emit(ir.Op{Kind: ir.OpBlockStart, IsElse: isElse})
	if b, ok := stmt.(*ast.Block); ok {
		for _, inner := range b.Stmts {
			if err := e.statement(inner); err != nil {
				return err
			}
		}
	} else if err := e.statement(stmt); err != nil {
		return err
	}
	e.emit(ir.Op{Kind: ir.OpBlockEnd})
	return nil
}

func (e *emitter) statement(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.Block:
		return e.block(s, true)

	case *ast.ExprStmt:
		_, err := e.expression(s.Expr)
		return err

	case *ast.LocalVarStmt:
		slot := ir.Variable{ID: ir.VarID(s.Var.VarID), Type: s.Var.Type}
		if s.Init == nil {
			e.emit(ir.Op{Kind: ir.OpVar, Var: slot})
			return nil
		}
		value, err := e.expression(s.Init)
		if err != nil {
			return err
		}
		e.emit(ir.Op{Kind: ir.OpVar, Var: slot})
		e.emit(ir.Op{Kind: ir.OpStoreVariable, From: value, To: slot})
		return nil

	case *ast.ReturnStmt:
		if s.Value == nil {
			e.emit(ir.Op{Kind: ir.OpReturn})
			return nil
		}
		value, err := e.expression(s.Value)
		if err != nil {
			return err
		}
		e.emit(ir.Op{Kind: ir.OpReturn, From: value, HasValue: true})
		return nil

	case *ast.IfStmt:
		cond, err := e.expression(s.Condition)
		if err != nil {
			return err
		}
		op := ir.Op{
			Kind:       ir.OpIf,
			Condition:  cond,
			StartLabel: e.module.AllocVarID(),
			EndLabel:   e.module.AllocVarID(),
			HasElse:    s.Else != nil,
		}
		if s.Else != nil {
			op.ElseLabel = e.module.AllocVarID()
		}
		e.emit(op)
		if err := e.body(s.Then, false); err != nil {
			return err
		}
		if s.Else != nil {
			if err := e.body(s.Else, true); err != nil {
				return err
			}
		}
		return nil

	case *ast.WhileStmt:
		start := e.module.AllocVarID()
		cont := e.module.AllocVarID()
		end := e.module.AllocVarID()

		e.emit(ir.Op{Kind: ir.OpWhileStart, StartLabel: start, ContinueLabel: cont, EndLabel: end})
		cond, err := e.expression(s.Condition)
		if err != nil {
			return err
		}
		e.emit(ir.Op{Kind: ir.OpWhileCondition, Condition: cond, StartLabel: start, ContinueLabel: cont, EndLabel: end})
		if err := e.body(s.Body, false); err != nil {
			return err
		}
		e.emit(ir.Op{Kind: ir.OpWhileEnd, StartLabel: start, ContinueLabel: cont, EndLabel: end})
		return nil

	default:
		return e.internalf(stmt.Pos(), "unhandled statement %T in lowering", stmt)
	}
}

var binaryOps = map[ast.BinaryOp]ir.OpKind{
	ast.OpAdd:          ir.OpAdd,
	ast.OpSub:          ir.OpSub,
	ast.OpMul:          ir.OpMul,
	ast.OpDiv:          ir.OpDiv,
	ast.OpMod:          ir.OpMod,
	ast.OpEquals:       ir.OpEquals,
	ast.OpNotEquals:    ir.OpNotEquals,
	ast.OpLess:         ir.OpLess,
	ast.OpLessEqual:    ir.OpLessEqual,
	ast.OpGreater:      ir.OpGreater,
	ast.OpGreaterEqual: ir.OpGreaterEqual,
	ast.OpAnd:          ir.OpAnd,
	ast.OpOr:           ir.OpOr,
}

var storeVariableOps = map[ast.BinaryOp]ir.OpKind{
	ast.OpAssign:    ir.OpStoreVariable,
	ast.OpAddAssign: ir.OpAddAndStoreVariable,
	ast.OpSubAssign: ir.OpSubAndStoreVariable,
	ast.OpMulAssign: ir.OpMulAndStoreVariable,
	ast.OpDivAssign: ir.OpDivAndStoreVariable,
}

var storeMemberOps = map[ast.BinaryOp]ir.OpKind{
	ast.OpAssign:    ir.OpStoreMember,
	ast.OpAddAssign: ir.OpAddAndStoreMember,
	ast.OpSubAssign: ir.OpSubAndStoreMember,
	ast.OpMulAssign: ir.OpMulAndStoreMember,
	ast.OpDivAssign: ir.OpDivAndStoreMember,
}

func (e *emitter) expression(expr ast.Expr) (ir.Variable, error) {
	switch x := expr.(type) {
	case *ast.NumberLit:
		to := e.alloc(x.Type)
		t, _ := e.module.Types.Lookup(x.Type.Type)
		switch t.Kind {
		case types.KindInt, types.KindUint:
			e.emit(ir.Op{Kind: ir.OpLoadIntConstant, To: to, Int: int64(x.Value)})
		default:
			e.emit(ir.Op{Kind: ir.OpLoadFloatConstant, To: to, Float: x.Value})
		}
		return to, nil

	case *ast.BooleanLit:
		to := e.alloc(x.Type)
		e.emit(ir.Op{Kind: ir.OpLoadBoolConstant, To: to, Bool: x.Value})
		return to, nil

	case *ast.Ident:
		if x.VarID == 0 {
			return ir.Variable{}, e.internalf(x.Span, "identifier %q reached lowering unresolved", x.Name)
		}
		return ir.Variable{ID: ir.VarID(x.VarID), Type: x.Type}, nil

	case *ast.Grouping:
		return e.expression(x.Inner)

	case *ast.UnaryExpr:
		from, err := e.expression(x.Operand)
		if err != nil {
			return ir.Variable{}, err
		}
		to := e.alloc(x.Type)
		kind := ir.OpNot
		if x.Op == ast.OpNegate {
			kind = ir.OpNegate
		}
		e.emit(ir.Op{Kind: kind, From: from, To: to})
		return to, nil

	case *ast.BinaryExpr:
		if x.Op.IsAssign() {
			return e.assignment(x)
		}
		left, err := e.expression(x.Left)
		if err != nil {
			return ir.Variable{}, err
		}
		right, err := e.expression(x.Right)
		if err != nil {
			return ir.Variable{}, err
		}
		result := e.alloc(x.Type)
		e.emit(ir.Op{Kind: binaryOps[x.Op], Left: left, Right: right, Result: result})
		return result, nil

	case *ast.CallExpr:
		args := make([]ir.Variable, 0, len(x.Args))
		for _, arg := range x.Args {
			v, err := e.expression(arg)
			if err != nil {
				return ir.Variable{}, err
			}
			args = append(args, v)
		}
		result := e.alloc(x.Type)
		// Constructors lower as calls carrying the type's name; the
		// backends spell them in target syntax.
		e.emit(ir.Op{Kind: ir.OpCall, Func: x.NameID, Args: args, Result: result})
		return result, nil

	case *ast.MemberExpr:
		chain, err := e.flattenChain(x)
		if err != nil {
			return ir.Variable{}, err
		}
		to := e.alloc(x.Type)
		e.emit(ir.Op{
			Kind:         ir.OpLoadMember,
			From:         chain.root,
			To:           to,
			MemberParent: chain.parent,
			Indices:      chain.indices,
			IndexIsArray: chain.isArray,
		})
		return to, nil

	case *ast.IndexExpr:
		chain, err := e.flattenChain(x)
		if err != nil {
			return ir.Variable{}, err
		}
		to := e.alloc(x.Type)
		e.emit(ir.Op{
			Kind:         ir.OpLoadMember,
			From:         chain.root,
			To:           to,
			MemberParent: chain.parent,
			Indices:      chain.indices,
			IndexIsArray: chain.isArray,
		})
		return to, nil

	default:
		return ir.Variable{}, e.internalf(expr.Pos(), "unhandled expression %T in lowering", expr)
	}
}

// assignment lowers `lhs = rhs` and the compound variants into
// STORE_VARIABLE/STORE_MEMBER opcodes. The stored value doubles as
// the expression result so chained assignment works.
func (e *emitter) assignment(x *ast.BinaryExpr) (ir.Variable, error) {
	value, err := e.expression(x.Right)
	if err != nil {
		return ir.Variable{}, err
	}

	switch lhs := x.Left.(type) {
	case *ast.Ident:
		to := ir.Variable{ID: ir.VarID(lhs.VarID), Type: lhs.Type}
		e.emit(ir.Op{Kind: storeVariableOps[x.Op], From: value, To: to})
		return value, nil

	case *ast.MemberExpr, *ast.IndexExpr:
		chain, err := e.flattenChain(lhs)
		if err != nil {
			return ir.Variable{}, err
		}
		e.emit(ir.Op{
			Kind:         storeMemberOps[x.Op],
			From:         value,
			To:           chain.root,
			MemberParent: chain.parent,
			Indices:      chain.indices,
			IndexIsArray: chain.isArray,
		})
		return value, nil

	default:
		return ir.Variable{}, e.internalf(x.Span, "assignment to a non-lvalue survived analysis")
	}
}

// accessChain is a flattened member/index path from a root variable.
type accessChain struct {
	root    ir.Variable
	parent  types.Ref
	indices []uint32
	isArray []bool
}

// flattenChain turns nested MemberExpr/IndexExpr nodes into the
// root-relative index list the member opcodes carry. Array indices
// must be literals; the opcode format has no slot for a computed
// index.
func (e *emitter) flattenChain(expr ast.Expr) (accessChain, error) {
	var chain accessChain

	var walk func(node ast.Expr) error
	walk = func(node ast.Expr) error {
		switch x := node.(type) {
		case *ast.Ident:
			if x.VarID == 0 {
				return e.internalf(x.Span, "identifier %q reached lowering unresolved", x.Name)
			}
			chain.root = ir.Variable{ID: ir.VarID(x.VarID), Type: x.Type}
			chain.parent = x.Type
			return nil

		case *ast.MemberExpr:
			if err := walk(x.Base); err != nil {
				return err
			}
			for _, index := range x.Indices {
				chain.indices = append(chain.indices, index)
				chain.isArray = append(chain.isArray, false)
			}
			return nil

		case *ast.IndexExpr:
			if err := walk(x.Base); err != nil {
				return err
			}
			lit, ok := x.Index.(*ast.NumberLit)
			if !ok {
				return diag.New(e.file, x.Span, "computed indices are not supported here; use a literal")
			}
			chain.indices = append(chain.indices, uint32(lit.Value))
			chain.isArray = append(chain.isArray, true)
			return nil

		case *ast.Grouping:
			return walk(x.Inner)

		default:
			return diag.New(e.file, node.Pos(), "expected a variable or a member")
		}
	}

	if err := walk(expr); err != nil {
		return accessChain{}, err
	}
	if len(chain.indices) == 0 {
		return accessChain{}, e.internalf(expr.Pos(), "empty access chain")
	}
	return chain, nil
}
