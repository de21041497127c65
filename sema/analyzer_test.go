package sema

import (
	"testing"

	"github.com/kong-shade/kongc/ast"
	"github.com/kong-shade/kongc/ir"
	"github.com/kong-shade/kongc/names"
	"github.com/kong-shade/kongc/parser"
	"github.com/kong-shade/kongc/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyze(t *testing.T, source string) (*ir.Module, []ast.Decl) {
	t.Helper()
	pool := names.NewPool()
	m := ir.NewModule(pool, types.NewRegistry(pool))
	decls, err := parser.Parse("test.kong", source)
	require.NoError(t, err)
	require.NoError(t, Analyze(m, "test.kong", decls))
	return m, decls
}

func analyzeErr(t *testing.T, source string) error {
	t.Helper()
	pool := names.NewPool()
	m := ir.NewModule(pool, types.NewRegistry(pool))
	decls, err := parser.Parse("test.kong", source)
	require.NoError(t, err)
	err = Analyze(m, "test.kong", decls)
	require.Error(t, err)
	return err
}

func TestStructAndMemberResolution(t *testing.T) {
	m, decls := analyze(t, "struct S { x: float; } fn id(s: S) -> float { return s.x; }")

	sid, ok := m.Types.LookupName(m.Names.Intern("S"))
	require.True(t, ok)
	st, _ := m.Types.Lookup(sid)
	require.Len(t, st.Members, 1)

	f := decls[1].(*ast.FunctionDecl)
	ret := f.Body.Stmts[0].(*ast.ReturnStmt)
	member := ret.Value.(*ast.MemberExpr)
	assert.Equal(t, []uint32{0}, member.Indices)
	assert.True(t, member.Type.Resolved)
	assert.Equal(t, m.Types.Builtin(types.KindFloat), member.Type.Type)
}

func TestEveryExpressionResolvedAfterAnalysis(t *testing.T) {
	_, decls := analyze(t, `
struct S { x: float; y: float3; }
fn f(s: S) -> float {
	let a = s.x * 2.0;
	mut b = a;
	if (a < 1.0) {
		b = b + s.x;
	}
	return b;
}`)

	var check func(e ast.Expr)
	check = func(e ast.Expr) {
		if e == nil {
			return
		}
		assert.True(t, e.TypeRef().Resolved, "expression %T must be resolved", e)
		switch x := e.(type) {
		case *ast.BinaryExpr:
			check(x.Left)
			check(x.Right)
		case *ast.UnaryExpr:
			check(x.Operand)
		case *ast.MemberExpr:
			check(x.Base)
		case *ast.Grouping:
			check(x.Inner)
		case *ast.CallExpr:
			for _, arg := range x.Args {
				check(arg)
			}
		}
	}
	var walkStmt func(s ast.Stmt)
	walkStmt = func(s ast.Stmt) {
		switch x := s.(type) {
		case *ast.Block:
			for _, inner := range x.Stmts {
				walkStmt(inner)
			}
		case *ast.LocalVarStmt:
			check(x.Init)
		case *ast.ExprStmt:
			check(x.Expr)
		case *ast.ReturnStmt:
			check(x.Value)
		case *ast.IfStmt:
			check(x.Condition)
			walkStmt(x.Then)
			if x.Else != nil {
				walkStmt(x.Else)
			}
		case *ast.WhileStmt:
			check(x.Condition)
			walkStmt(x.Body)
		}
	}
	f := decls[1].(*ast.FunctionDecl)
	walkStmt(f.Body)
}

func TestAnalysisIsIdempotent(t *testing.T) {
	m, decls := analyze(t, "struct S { x: float; } fn id(s: S) -> float { return s.x; }")

	f := decls[1].(*ast.FunctionDecl)
	paramID := f.Params[0].VarID
	localBefore := f.Body.Stmts[0].(*ast.ReturnStmt).Value.(*ast.MemberExpr).Indices

	require.NoError(t, Analyze(m, "test.kong", decls[1:2]))
	assert.Equal(t, paramID, f.Params[0].VarID, "variable ids must be stable across re-analysis")
	assert.Equal(t, localBefore, f.Body.Stmts[0].(*ast.ReturnStmt).Value.(*ast.MemberExpr).Indices)
}

func TestSwizzle(t *testing.T) {
	m, decls := analyze(t, "fn f(v: float4) -> float3 { return v.xyz; }")

	f := decls[0].(*ast.FunctionDecl)
	member := f.Body.Stmts[0].(*ast.ReturnStmt).Value.(*ast.MemberExpr)
	assert.Equal(t, []uint32{0, 1, 2}, member.Indices)
	assert.True(t, member.Swizzle)
	assert.Equal(t, m.Types.Builtin(types.KindFloat3), member.Type.Type)
}

func TestColorSwizzleAndSingleComponent(t *testing.T) {
	m, decls := analyze(t, "fn f(v: float4) -> float { return v.a; }")

	f := decls[0].(*ast.FunctionDecl)
	member := f.Body.Stmts[0].(*ast.ReturnStmt).Value.(*ast.MemberExpr)
	assert.Equal(t, []uint32{3}, member.Indices)
	assert.Equal(t, m.Types.Builtin(types.KindFloat), member.Type.Type)
}

func TestSwizzleOutOfRange(t *testing.T) {
	err := analyzeErr(t, "fn f(v: float2) -> float { return v.z; }")
	assert.Contains(t, err.Error(), "bad swizzle")
}

func TestConstructorRewrite(t *testing.T) {
	m, decls := analyze(t, "fn f(p: float3) -> float4 { return float4(p, 1.0); }")

	f := decls[0].(*ast.FunctionDecl)
	call := f.Body.Stmts[0].(*ast.ReturnStmt).Value.(*ast.CallExpr)
	assert.True(t, call.Constructor)
	assert.Equal(t, m.Types.Builtin(types.KindFloat4), call.TypeID)
}

func TestConstructorComponentCount(t *testing.T) {
	err := analyzeErr(t, "fn f(p: float3) -> float4 { return float4(p); }")
	assert.Contains(t, err.Error(), "components")
}

func TestDescriptorSets(t *testing.T) {
	m, _ := analyze(t, `
struct Constants { mvp: float4x4; }
#[set(everything)]
const constants: Constants;
const tex: tex2d;
const samp: sampler;
fn f(v: float4) -> float4 {
	let m = constants.mvp;
	return sample(tex, samp, v.xy);
}
#[fragment]
fn fs(v: float4) -> float4 { return v; }
`)

	sets := m.Sets()
	require.Len(t, sets, 2)
	assert.Equal(t, "everything", m.Names.String(sets[0].Name))
	assert.Equal(t, DefaultSetName, m.Names.String(sets[1].Name))
	require.Len(t, sets[1].Globals, 2)

	// The descriptor-set group of f lists both sets it touches.
	fid, ok := m.FunctionByName(m.Names.Intern("f"))
	require.True(t, ok)
	assert.Len(t, m.Function(fid).Sets, 2)

	// fs touches none.
	fsID, _ := m.FunctionByName(m.Names.Intern("fs"))
	assert.Empty(t, m.Function(fsID).Sets)
}

func TestRootConstantsSingleMember(t *testing.T) {
	err := analyzeErr(t, `
struct A { x: float; }
#[set(root_constants)]
const a: A;
#[set(root_constants)]
const b: A;
`)
	assert.Contains(t, err.Error(), "root_constants")
}

func TestStageAttributes(t *testing.T) {
	m, _ := analyze(t, `
#[vertex]
fn vs(v: float4) -> float4 { return v; }
#[compute]
#[threads(8, 8, 1)]
fn cs() { }
`)

	vsID, _ := m.FunctionByName(m.Names.Intern("vs"))
	assert.Equal(t, ir.StageVertex, m.Function(vsID).Stage)

	csID, _ := m.FunctionByName(m.Names.Intern("cs"))
	cs := m.Function(csID)
	assert.Equal(t, ir.StageCompute, cs.Stage)
	assert.Equal(t, [3]uint32{8, 8, 1}, cs.Threads)

	assert.Len(t, m.EntryPoints(), 2)
}

func TestComputeRequiresThreads(t *testing.T) {
	err := analyzeErr(t, "#[compute]\nfn cs() { }")
	assert.Contains(t, err.Error(), "threads")
}

func TestPipeAnalysis(t *testing.T) {
	m, _ := analyze(t, `
const BlendOne: int = 0;
const BlendSourceAlpha: int = 2;
#[vertex]
fn vs(v: float4) -> float4 { return v; }
#[fragment]
fn fs(v: float4) -> float4 { return v; }
#[pipe]
struct P {
	vertex = vs;
	fragment = fs;
	depth_write = true;
	blend_source = BlendOne;
	blend_destination = BlendSourceAlpha;
}
`)

	pipes := m.Pipes()
	require.Len(t, pipes, 1)
	p := pipes[0]
	assert.True(t, p.HasVertex)
	assert.True(t, p.HasFragment)
	assert.True(t, p.DepthWrite)
	require.True(t, p.BlendSource.Set)
	assert.Equal(t, int64(0), p.BlendSource.Value)
	assert.Equal(t, "one", BlendFactorName(p.BlendSource.Value))
	assert.Equal(t, int64(2), p.BlendDestination.Value)
}

func TestPipeStageMismatch(t *testing.T) {
	err := analyzeErr(t, `
#[fragment]
fn fs(v: float4) -> float4 { return v; }
#[pipe]
struct P { vertex = fs; fragment = fs; }
`)
	assert.Contains(t, err.Error(), "not marked")
}

func TestErrors(t *testing.T) {
	cases := map[string]string{
		"fn f() -> float { return x; }":                       "unknown identifier",
		"fn f(x: Nope) { }":                                   "unknown type",
		"fn f(x: int) { return x; }":                          "does not return a value",
		"fn f() -> float { return; }":                         "return needs a value",
		"struct S { x: float; x: float; }":                    "duplicate member",
		"fn f(x: float, x: float) { }":                        "duplicate parameter",
		"fn f(s: sampler) -> float { return s.x; }":           "not supported",
		"fn f(v: float2) -> float2 { return sample(v); }":     "arguments",
		"fn f(v: float2) -> float { return v.x + true; }":     "not defined for",
		"fn f(v: float2) { if (v.x) { } }":                    "must be a bool",
		"const C: int = 1; fn f() { C = 2; }":                 "cannot assign to constant",
		"fn f() -> float2 { return float2(1.0, 2.0, 3.0); }":  "components",
	}
	for src, want := range cases {
		err := analyzeErr(t, src)
		assert.Contains(t, err.Error(), want, src)
	}
}

func TestNumberNarrowing(t *testing.T) {
	_, decls := analyze(t, "fn f() -> int { let x: int = 3; return x; }")

	f := decls[0].(*ast.FunctionDecl)
	local := f.Body.Stmts[0].(*ast.LocalVarStmt)
	require.True(t, local.Var.Type.Resolved)
}

func TestVariableIDsAreFreshAndMonotonic(t *testing.T) {
	_, decls := analyze(t, "fn f(a: float) -> float { let b = a; let c = b; return c; }")

	f := decls[0].(*ast.FunctionDecl)
	pa := f.Params[0].VarID
	vb := f.Body.Vars[0].VarID
	vc := f.Body.Vars[1].VarID
	assert.Less(t, pa, vb)
	assert.Less(t, vb, vc)
}
