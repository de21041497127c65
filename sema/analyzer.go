// Package sema implements the semantic analyzer. It walks the parsed
// AST in place: every expression gets its type reference filled,
// every local variable and parameter gets a fresh SSA variable id,
// identifiers are resolved against the block chain, the parameter
// list, and the globals, and module-scope globals are grouped into
// descriptor sets.
package sema

import (
	"math"

	"github.com/kong-shade/kongc/ast"
	"github.com/kong-shade/kongc/diag"
	"github.com/kong-shade/kongc/ir"
	"github.com/kong-shade/kongc/names"
	"github.com/kong-shade/kongc/types"
)

// DefaultSetName is the descriptor set globals land in when they
// carry no #[set(...)] attribute.
const DefaultSetName = "set_0"

// RootConstantsSetName is the reserved single-member set.
const RootConstantsSetName = "root_constants"

// Analyzer resolves one parsed module against a symbol environment.
type Analyzer struct {
	file    string
	module  *ir.Module
	current *ir.Function // function whose body is being analyzed
	usedSet map[names.ID]bool
}

// Analyze resolves decls into the module. The AST is mutated in
// place. Analyzing an already-analyzed declaration is a no-op:
// resolved flags stay set and variable ids stay stable. A filled-in
// NameID is the marker for "this declaration has been analyzed".
func Analyze(m *ir.Module, file string, decls []ast.Decl) error {
	a := &Analyzer{file: file, module: m}
	if _, ok := m.FunctionByName(m.Names.Intern("sample")); !ok {
		registerIntrinsics(m)
	}

	// Struct names first, so members can reference structs declared
	// later in the file.
	fresh := make(map[*ast.StructDecl]bool)
	for _, decl := range decls {
		if s, ok := decl.(*ast.StructDecl); ok && s.NameID == names.NoName {
			if err := a.declareStruct(s); err != nil {
				return err
			}
			fresh[s] = true
		}
	}
	for _, decl := range decls {
		if s, ok := decl.(*ast.StructDecl); ok && fresh[s] {
			if err := a.resolveStructMembers(s); err != nil {
				return err
			}
		}
	}

	for _, decl := range decls {
		if c, ok := decl.(*ast.ConstDecl); ok && c.NameID == names.NoName {
			if err := a.analyzeConst(c); err != nil {
				return err
			}
		}
	}

	// Function signatures before bodies, so calls can be forward.
	fids := make(map[*ast.FunctionDecl]ir.FunctionID)
	for _, decl := range decls {
		if f, ok := decl.(*ast.FunctionDecl); ok && f.NameID == names.NoName {
			fid, err := a.declareFunction(f)
			if err != nil {
				return err
			}
			fids[f] = fid
		}
	}
	for _, decl := range decls {
		if f, ok := decl.(*ast.FunctionDecl); ok {
			if fid, isFresh := fids[f]; isFresh {
				if err := a.analyzeBody(fid, f); err != nil {
					return err
				}
			}
		}
	}

	// Pipes last: their members reference functions and const-globals.
	for _, decl := range decls {
		if s, ok := decl.(*ast.StructDecl); ok && hasAttr(s.Attributes, "pipe") && !a.pipeKnown(s.NameID) {
			if err := a.analyzePipe(s); err != nil {
				return err
			}
		}
	}

	return nil
}

func (a *Analyzer) pipeKnown(name names.ID) bool {
	for _, p := range a.module.Pipes() {
		if p.Name == name {
			return true
		}
	}
	return false
}

func hasAttr(attrs []ast.Attribute, name string) bool {
	for _, a := range attrs {
		if a.Name == name {
			return true
		}
	}
	return false
}

func (a *Analyzer) errorf(pos diag.Pos, format string, args ...any) error {
	return diag.New(a.file, pos, format, args...)
}

func (a *Analyzer) resolveAttrs(attrs []ast.Attribute) ir.AttributeList {
	out := make(ir.AttributeList, 0, len(attrs))
	for _, attr := range attrs {
		resolved := ir.Attribute{Name: a.module.Names.Intern(attr.Name)}
		for _, p := range attr.Params {
			if p.IsNum {
				resolved.Params = append(resolved.Params, ir.AttrParam{Number: p.Number, IsNum: true})
			} else {
				resolved.Params = append(resolved.Params, ir.AttrParam{Ident: a.module.Names.Intern(p.Ident)})
			}
		}
		out = append(out, resolved)
	}
	return out
}

// Structs

func (a *Analyzer) declareStruct(s *ast.StructDecl) error {
	s.NameID = a.module.Names.Intern(s.Name)
	if _, exists := a.module.Types.LookupName(s.NameID); exists {
		return a.errorf(s.Span, "duplicate type name %q", s.Name)
	}
	attrNames := make([]names.ID, 0, len(s.Attributes))
	for _, attr := range s.Attributes {
		attrNames = append(attrNames, a.module.Names.Intern(attr.Name))
	}
	a.module.Types.DeclareStruct(s.NameID, attrNames)
	return nil
}

func (a *Analyzer) resolveStructMembers(s *ast.StructDecl) error {
	id, _ := a.module.Types.LookupName(s.NameID)
	isPipe := hasAttr(s.Attributes, "pipe")

	seen := make(map[string]bool, len(s.Members))
	members := make([]types.Member, 0, len(s.Members))
	for _, m := range s.Members {
		if seen[m.Name] {
			return a.errorf(m.Span, "duplicate member %q in struct %q", m.Name, s.Name)
		}
		seen[m.Name] = true
		m.NameID = a.module.Names.Intern(m.Name)

		member := types.Member{Name: m.NameID, ArraySize: m.ArraySize}
		if m.TypeName != "" {
			typeID, ok := a.module.Types.LookupName(a.module.Names.Intern(m.TypeName))
			if !ok {
				return a.errorf(m.Span, "unknown type %q", m.TypeName)
			}
			member.Type = typeID
		} else if !isPipe {
			return a.errorf(m.Span, "member %q needs a type", m.Name)
		}

		// Pipe member defaults reference functions or enum globals by
		// name; they are validated against the registries once those
		// exist, in analyzePipe. Plain struct defaults must be
		// constant expressions.
		if m.Default != nil {
			switch def := m.Default.(type) {
			case *ast.Ident:
				member.DefaultID = a.module.Names.Intern(def.Name)
			case *ast.NumberLit:
				member.Default = constFromNumber(member.Type, a.module.Types, def.Value)
			case *ast.BooleanLit:
				member.Default = types.Const{Kind: types.KindBool, Bool: def.Value, Set: true}
			default:
				return a.errorf(m.Span, "member default for %q must be a literal or an identifier", m.Name)
			}
		}
		members = append(members, member)
	}
	a.module.Types.SetMembers(id, members)
	return nil
}

func constFromNumber(expected types.ID, reg *types.Registry, value float64) types.Const {
	t, ok := reg.Lookup(expected)
	if ok {
		switch t.Kind {
		case types.KindInt:
			return types.Const{Kind: types.KindInt, Int: int64(value), Set: true}
		case types.KindUint:
			return types.Const{Kind: types.KindUint, Uint: uint64(value), Set: true}
		}
	}
	return types.Const{Kind: types.KindFloat, Float: value, Set: true}
}

// Globals

func (a *Analyzer) analyzeConst(c *ast.ConstDecl) error {
	c.NameID = a.module.Names.Intern(c.Name)
	if _, exists := a.module.GlobalByName(c.NameID); exists {
		return a.errorf(c.Span, "duplicate global %q", c.Name)
	}

	typeID, ok := a.module.Types.LookupName(a.module.Names.Intern(c.TypeName))
	if !ok {
		return a.errorf(c.Span, "unknown type %q", c.TypeName)
	}

	g := ir.Global{
		Name:       c.NameID,
		Type:       types.Ref{Type: typeID, ArraySize: c.ArraySize, Resolved: true},
		Attributes: a.resolveAttrs(c.Attributes),
		VarID:      a.module.AllocVarID(),
	}

	if c.Init != nil {
		value, err := a.constValue(c.Init, typeID)
		if err != nil {
			return err
		}
		g.Const = &value
		a.module.AddGlobal(g)
		return nil
	}

	// A const without an initializer is a resource global bound
	// through a descriptor set.
	setName := DefaultSetName
	if attr, ok := g.Attributes.Find(a.module.Names.Intern("set")); ok {
		if len(attr.Params) != 1 || attr.Params[0].IsNum {
			return a.errorf(c.Span, "set attribute takes one name")
		}
		setName = a.module.Names.String(attr.Params[0].Ident)
	}
	g.Set = a.module.Names.Intern(setName)
	g.Writable = g.Attributes.Has(a.module.Names.Intern("write"))

	set := a.module.Set(g.Set)
	if setName == RootConstantsSetName && len(set.Globals) > 0 {
		return a.errorf(c.Span, "root_constants can hold only one global")
	}
	gid := a.module.AddGlobal(g)
	set.Globals = append(set.Globals, gid)
	set.Writable = append(set.Writable, g.Writable)
	return nil
}

// constValue evaluates a constant initializer. Only literals are
// accepted; everything else the language could express here is left
// to the user to precompute.
func (a *Analyzer) constValue(e ast.Expr, expected types.ID) (types.Const, error) {
	switch lit := e.(type) {
	case *ast.NumberLit:
		lit.Type = types.Ref{Type: expected, Resolved: true}
		return constFromNumber(expected, a.module.Types, lit.Value), nil
	case *ast.BooleanLit:
		lit.Type = types.Ref{Type: expected, Resolved: true}
		return types.Const{Kind: types.KindBool, Bool: lit.Value, Set: true}, nil
	default:
		return types.Const{}, a.errorf(e.Pos(), "const initializer must be a literal")
	}
}

// Functions

func (a *Analyzer) declareFunction(f *ast.FunctionDecl) (ir.FunctionID, error) {
	f.NameID = a.module.Names.Intern(f.Name)

	fn := ir.Function{
		Name:       f.NameID,
		Attributes: a.resolveAttrs(f.Attributes),
		Body:       f.Body,
	}

	seen := make(map[string]bool, len(f.Params))
	for _, p := range f.Params {
		if seen[p.Name] {
			return 0, a.errorf(p.Span, "duplicate parameter %q", p.Name)
		}
		seen[p.Name] = true
		p.NameID = a.module.Names.Intern(p.Name)
		typeID, ok := a.module.Types.LookupName(a.module.Names.Intern(p.TypeName))
		if !ok {
			return 0, a.errorf(p.Span, "unknown type %q", p.TypeName)
		}
		p.Type = types.Ref{Type: typeID, Resolved: true}
		p.VarID = uint64(a.module.AllocVarID())
		fn.Params = append(fn.Params, ir.Param{Name: p.NameID, Type: p.Type, VarID: ir.VarID(p.VarID)})
	}

	if f.ReturnType != "" {
		typeID, ok := a.module.Types.LookupName(a.module.Names.Intern(f.ReturnType))
		if !ok {
			return 0, a.errorf(f.Span, "unknown type %q", f.ReturnType)
		}
		fn.Return = types.Ref{Type: typeID, Resolved: true}
	} else {
		fn.Return = types.Ref{Type: a.module.Types.Builtin(types.KindVoid), Resolved: true}
	}

	for _, stage := range []struct {
		name string
		val  ir.Stage
	}{
		{"vertex", ir.StageVertex},
		{"fragment", ir.StageFragment},
		{"compute", ir.StageCompute},
		{"mesh", ir.StageMesh},
		{"amplification", ir.StageAmplification},
	} {
		if fn.Attributes.Has(a.module.Names.Intern(stage.name)) {
			fn.Stage = stage.val
		}
	}

	if attr, ok := fn.Attributes.Find(a.module.Names.Intern("threads")); ok {
		if len(attr.Params) != 3 {
			return 0, a.errorf(f.Span, "threads attribute takes three sizes")
		}
		for i, p := range attr.Params {
			if !p.IsNum {
				return 0, a.errorf(f.Span, "threads attribute takes three sizes")
			}
			fn.Threads[i] = uint32(p.Number)
		}
	} else if fn.Stage == ir.StageCompute {
		return 0, a.errorf(f.Span, "compute function %q requires a threads attribute", f.Name)
	}

	return a.module.AddFunction(fn), nil
}

func (a *Analyzer) analyzeBody(fid ir.FunctionID, f *ast.FunctionDecl) error {
	fn := a.module.Function(fid)
	a.current = fn
	a.usedSet = make(map[names.ID]bool)
	defer func() { a.current = nil }()

	if err := a.analyzeBlock(f.Body); err != nil {
		return err
	}

	// The descriptor-set group is the ordered list of sets this
	// entry point's body touched.
	for _, set := range a.module.Sets() {
		if a.usedSet[set.Name] {
			fn.Sets = append(fn.Sets, set)
		}
	}
	return nil
}

func (a *Analyzer) analyzeBlock(b *ast.Block) error {
	for _, stmt := range b.Stmts {
		if err := a.analyzeStmt(b, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) analyzeStmt(b *ast.Block, stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.Block:
		return a.analyzeBlock(s)

	case *ast.LocalVarStmt:
		var declared types.Ref
		if s.TypeName != "" {
			typeID, ok := a.module.Types.LookupName(a.module.Names.Intern(s.TypeName))
			if !ok {
				return a.errorf(s.Span, "unknown type %q", s.TypeName)
			}
			declared = types.Ref{Type: typeID, Resolved: true}
		}
		if s.Init != nil {
			if err := a.analyzeExpr(b, s.Init, declared.Type); err != nil {
				return err
			}
			initType := *s.Init.TypeRef()
			if declared.Resolved && declared.Type != initType.Type {
				return a.errorf(s.Span, "cannot initialize %q (%s) from %s",
					s.Var.Name, a.typeName(declared.Type), a.typeName(initType.Type))
			}
			if !declared.Resolved {
				declared = initType
			}
		}
		s.Var.NameID = a.module.Names.Intern(s.Var.Name)
		s.Var.Type = declared
		if s.Var.VarID == 0 {
			s.Var.VarID = uint64(a.module.AllocVarID())
		}
		return nil

	case *ast.ExprStmt:
		return a.analyzeExpr(b, s.Expr, 0)

	case *ast.ReturnStmt:
		void := a.module.Types.Builtin(types.KindVoid)
		returns := a.current != nil && a.current.Return.Type != void
		if s.Value == nil {
			if returns {
				return a.errorf(s.Span, "return needs a value here")
			}
			return nil
		}
		if !returns {
			return a.errorf(s.Span, "function does not return a value")
		}
		if err := a.analyzeExpr(b, s.Value, a.current.Return.Type); err != nil {
			return err
		}
		got := s.Value.TypeRef().Type
		if got != a.current.Return.Type {
			return a.errorf(s.Span, "cannot return %s from a function returning %s",
				a.typeName(got), a.typeName(a.current.Return.Type))
		}
		return nil

	case *ast.IfStmt:
		if err := a.analyzeExpr(b, s.Condition, a.module.Types.Builtin(types.KindBool)); err != nil {
			return err
		}
		if err := a.requireBool(s.Condition, "if condition"); err != nil {
			return err
		}
		if err := a.analyzeStmt(b, s.Then); err != nil {
			return err
		}
		if s.Else != nil {
			return a.analyzeStmt(b, s.Else)
		}
		return nil

	case *ast.WhileStmt:
		if err := a.analyzeExpr(b, s.Condition, a.module.Types.Builtin(types.KindBool)); err != nil {
			return err
		}
		if err := a.requireBool(s.Condition, "while condition"); err != nil {
			return err
		}
		return a.analyzeStmt(b, s.Body)

	default:
		return diag.Internal(a.file, stmt.Pos(), "unhandled statement %T", stmt)
	}
}

func (a *Analyzer) requireBool(e ast.Expr, what string) error {
	if e.TypeRef().Type != a.module.Types.Builtin(types.KindBool) {
		return a.errorf(e.Pos(), "%s must be a bool, found %s", what, a.typeName(e.TypeRef().Type))
	}
	return nil
}

func (a *Analyzer) typeName(id types.ID) string {
	t, ok := a.module.Types.Lookup(id)
	if !ok {
		return "?"
	}
	if t.Name != names.NoName {
		return a.module.Names.String(t.Name)
	}
	return t.Kind.String()
}

// Expressions. expected is a typing hint used to narrow number
// literals; 0 (void) means no expectation.

func (a *Analyzer) analyzeExpr(b *ast.Block, e ast.Expr, expected types.ID) error {
	if e.TypeRef().Resolved {
		// Already analyzed; analysis is idempotent.
		return nil
	}

	switch expr := e.(type) {
	case *ast.NumberLit:
		t := a.module.Types.Builtin(types.KindFloat)
		if expectedT, ok := a.module.Types.Lookup(expected); ok {
			switch expectedT.Kind {
			case types.KindInt, types.KindUint:
				if expr.Value != math.Trunc(expr.Value) {
					return a.errorf(expr.Span, "cannot use %v as %s", expr.Value, expectedT.Kind)
				}
				t = expected
			}
		}
		expr.Type = types.Ref{Type: t, Resolved: true}
		return nil

	case *ast.BooleanLit:
		expr.Type = types.Ref{Type: a.module.Types.Builtin(types.KindBool), Resolved: true}
		return nil

	case *ast.StringLit:
		return a.errorf(expr.Span, "string literals cannot appear in shader code")

	case *ast.Ident:
		return a.resolveIdent(b, expr)

	case *ast.Grouping:
		if err := a.analyzeExpr(b, expr.Inner, expected); err != nil {
			return err
		}
		expr.Type = *expr.Inner.TypeRef()
		return nil

	case *ast.UnaryExpr:
		if err := a.analyzeExpr(b, expr.Operand, expected); err != nil {
			return err
		}
		operand := expr.Operand.TypeRef().Type
		switch expr.Op {
		case ast.OpNot:
			if operand != a.module.Types.Builtin(types.KindBool) {
				return a.errorf(expr.Span, "operator ! needs a bool, found %s", a.typeName(operand))
			}
		case ast.OpNegate:
			if !a.isNumeric(operand) {
				return a.errorf(expr.Span, "operator - needs a numeric operand, found %s", a.typeName(operand))
			}
		}
		expr.Type = *expr.Operand.TypeRef()
		return nil

	case *ast.BinaryExpr:
		return a.analyzeBinary(b, expr)

	case *ast.CallExpr:
		return a.analyzeCall(b, expr)

	case *ast.MemberExpr:
		return a.analyzeMember(b, expr)

	case *ast.IndexExpr:
		if err := a.analyzeExpr(b, expr.Base, 0); err != nil {
			return err
		}
		if err := a.analyzeExpr(b, expr.Index, a.module.Types.Builtin(types.KindUint)); err != nil {
			return err
		}
		base := *expr.Base.TypeRef()
		baseT, _ := a.module.Types.Lookup(base.Type)
		switch {
		case base.ArraySize > 0:
			expr.Type = types.Ref{Type: base.Type, Resolved: true}
		case baseT.Kind == types.KindArray:
			expr.Type = types.Ref{Type: baseT.Base, Resolved: true}
		default:
			return a.errorf(expr.Span, "cannot index into %s", a.typeName(base.Type))
		}
		return nil

	default:
		return diag.Internal(a.file, e.Pos(), "unhandled expression %T", e)
	}
}

func (a *Analyzer) resolveIdent(b *ast.Block, expr *ast.Ident) error {
	expr.NameID = a.module.Names.Intern(expr.Name)

	if b != nil {
		if v := b.Find(expr.Name); v != nil {
			if !v.Type.Resolved {
				return a.errorf(expr.Span, "variable %q used before its declaration", expr.Name)
			}
			expr.Kind = ast.IdentLocal
			expr.VarID = v.VarID
			expr.Type = v.Type
			return nil
		}
	}

	if a.current != nil {
		for _, p := range a.current.Params {
			if p.Name == expr.NameID {
				expr.Kind = ast.IdentParam
				expr.VarID = uint64(p.VarID)
				expr.Type = p.Type
				return nil
			}
		}
	}

	if gid, ok := a.module.GlobalByName(expr.NameID); ok {
		g := a.module.Global(gid)
		expr.Kind = ast.IdentGlobal
		expr.VarID = uint64(g.VarID)
		expr.Type = g.Type
		if g.Const == nil {
			a.usedSet[g.Set] = true
		}
		return nil
	}

	return a.errorf(expr.Span, "unknown identifier %q", expr.Name)
}

func (a *Analyzer) isNumeric(id types.ID) bool {
	t, ok := a.module.Types.Lookup(id)
	if !ok {
		return false
	}
	switch t.Kind {
	case types.KindFloat, types.KindInt, types.KindUint,
		types.KindFloat3x3, types.KindFloat4x4:
		return true
	}
	return t.Kind.IsVector()
}

func (a *Analyzer) analyzeBinary(b *ast.Block, expr *ast.BinaryExpr) error {
	if expr.Op.IsAssign() {
		if err := a.analyzeExpr(b, expr.Left, 0); err != nil {
			return err
		}
		if err := a.checkAssignable(b, expr.Left); err != nil {
			return err
		}
		leftType := expr.Left.TypeRef().Type
		if err := a.analyzeExpr(b, expr.Right, leftType); err != nil {
			return err
		}
		if expr.Right.TypeRef().Type != leftType {
			return a.errorf(expr.Span, "cannot assign %s to %s",
				a.typeName(expr.Right.TypeRef().Type), a.typeName(leftType))
		}
		expr.Type = *expr.Right.TypeRef()
		return nil
	}

	if err := a.analyzeExpr(b, expr.Left, 0); err != nil {
		return err
	}
	// Let the left side's type narrow number literals on the right.
	if err := a.analyzeExpr(b, expr.Right, expr.Left.TypeRef().Type); err != nil {
		return err
	}
	left := expr.Left.TypeRef().Type
	right := expr.Right.TypeRef().Type

	switch expr.Op {
	case ast.OpAnd, ast.OpOr:
		boolID := a.module.Types.Builtin(types.KindBool)
		if left != boolID || right != boolID {
			return a.errorf(expr.Span, "operator %s needs bool operands", expr.Op)
		}
		expr.Type = types.Ref{Type: boolID, Resolved: true}
		return nil

	case ast.OpEquals, ast.OpNotEquals, ast.OpLess, ast.OpLessEqual, ast.OpGreater, ast.OpGreaterEqual:
		if left != right {
			return a.errorf(expr.Span, "cannot compare %s with %s", a.typeName(left), a.typeName(right))
		}
		expr.Type = types.Ref{Type: a.module.Types.Builtin(types.KindBool), Resolved: true}
		return nil

	default:
		result, ok := a.arithmeticResult(expr.Op, left, right)
		if !ok {
			return a.errorf(expr.Span, "operator %s not defined for %s and %s",
				expr.Op, a.typeName(left), a.typeName(right))
		}
		expr.Type = types.Ref{Type: result, Resolved: true}
		return nil
	}
}

// arithmeticResult types +,-,*,/,%: same-type operands, scalar-vector
// mixes, and matrix-vector products.
func (a *Analyzer) arithmeticResult(op ast.BinaryOp, left, right types.ID) (types.ID, bool) {
	if !a.isNumeric(left) || !a.isNumeric(right) {
		return 0, false
	}
	if left == right {
		return left, true
	}

	leftT, _ := a.module.Types.Lookup(left)
	rightT, _ := a.module.Types.Lookup(right)
	floatID := a.module.Types.Builtin(types.KindFloat)

	// scalar * vector and vector * scalar
	if left == floatID && rightT.Kind.IsVector() {
		return right, true
	}
	if right == floatID && leftT.Kind.IsVector() {
		return left, true
	}

	// matrix * vector
	if op == ast.OpMul {
		if leftT.Kind == types.KindFloat4x4 && rightT.Kind == types.KindFloat4 {
			return right, true
		}
		if leftT.Kind == types.KindFloat3x3 && rightT.Kind == types.KindFloat3 {
			return right, true
		}
	}
	return 0, false
}

func (a *Analyzer) checkAssignable(b *ast.Block, e ast.Expr) error {
	switch target := e.(type) {
	case *ast.Ident:
		if target.Kind == ast.IdentGlobal {
			gid, _ := a.module.GlobalByName(target.NameID)
			g := a.module.Global(gid)
			if g.Const != nil {
				return a.errorf(target.Span, "cannot assign to constant %q", target.Name)
			}
			if !g.Writable {
				return a.errorf(target.Span, "global %q is not writable", target.Name)
			}
		}
		return nil
	case *ast.MemberExpr, *ast.IndexExpr:
		return nil
	default:
		return a.errorf(e.Pos(), "invalid assignment target")
	}
}
