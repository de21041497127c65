package emit

import (
	"testing"

	"github.com/kong-shade/kongc/ir"
	"github.com/kong-shade/kongc/names"
	"github.com/kong-shade/kongc/parser"
	"github.com/kong-shade/kongc/sema"
	"github.com/kong-shade/kongc/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lower(t *testing.T, source string) *ir.Module {
	t.Helper()
	pool := names.NewPool()
	m := ir.NewModule(pool, types.NewRegistry(pool))
	decls, err := parser.Parse("test.kong", source)
	require.NoError(t, err)
	require.NoError(t, sema.Analyze(m, "test.kong", decls))
	require.NoError(t, Module(m, "test.kong"))
	require.NoError(t, ir.Validate(m))
	return m
}

func code(t *testing.T, m *ir.Module, name string) []ir.Op {
	t.Helper()
	fid, ok := m.FunctionByName(m.Names.Intern(name))
	require.True(t, ok)
	return m.Function(fid).Code
}

func kinds(ops []ir.Op) []ir.OpKind {
	out := make([]ir.OpKind, len(ops))
	for i := range ops {
		out[i] = ops[i].Kind
	}
	return out
}

func TestMemberLoad(t *testing.T) {
	m := lower(t, "struct S { x: float; } fn id(s: S) -> float { return s.x; }")

	ops := code(t, m, "id")
	require.Equal(t, []ir.OpKind{ir.OpLoadMember, ir.OpReturn}, kinds(ops))

	load := ops[0]
	sid, _ := m.Types.LookupName(m.Names.Intern("S"))
	assert.Equal(t, sid, load.MemberParent.Type)
	assert.Equal(t, []uint32{0}, load.Indices)
	assert.Equal(t, []bool{false}, load.IndexIsArray)

	ret := ops[1]
	assert.True(t, ret.HasValue)
	assert.Equal(t, load.To.ID, ret.From.ID)
}

func TestLetLowering(t *testing.T) {
	m := lower(t, "fn f() -> float { let x = 1.0; return x; }")

	ops := code(t, m, "f")
	require.Equal(t, []ir.OpKind{
		ir.OpLoadFloatConstant, ir.OpVar, ir.OpStoreVariable, ir.OpReturn,
	}, kinds(ops))
	assert.Equal(t, 1.0, ops[0].Float)
	assert.Equal(t, ops[0].To.ID, ops[2].From.ID)
	assert.Equal(t, ops[1].Var.ID, ops[2].To.ID)
}

func TestWhileOpcodeSequence(t *testing.T) {
	m := lower(t, "fn f() { mut i = 0.0; while (i < 10.0) { i = i + 1.0; } }")

	ops := code(t, m, "f")
	want := []ir.OpKind{
		ir.OpLoadFloatConstant, ir.OpVar, ir.OpStoreVariable,
		ir.OpWhileStart,
		ir.OpLoadFloatConstant, ir.OpLess,
		ir.OpWhileCondition,
		ir.OpBlockStart,
		ir.OpLoadFloatConstant, ir.OpAdd, ir.OpStoreVariable,
		ir.OpBlockEnd,
		ir.OpWhileEnd,
	}
	require.Equal(t, want, kinds(ops))

	var start, condition, end ir.Op
	for _, op := range ops {
		switch op.Kind {
		case ir.OpWhileStart:
			start = op
		case ir.OpWhileCondition:
			condition = op
		case ir.OpWhileEnd:
			end = op
		}
	}
	assert.NotZero(t, start.StartLabel)
	assert.Equal(t, start.StartLabel, condition.StartLabel)
	assert.Equal(t, start.ContinueLabel, end.ContinueLabel)
	assert.Equal(t, start.EndLabel, condition.EndLabel)
	assert.Equal(t, start.EndLabel, end.EndLabel)
}

func TestIfElseLabels(t *testing.T) {
	m := lower(t, "fn f(x: float) { if (x < 1.0) { x += 1.0; } else { x -= 1.0; } }")

	ops := code(t, m, "f")
	var ifOp ir.Op
	var blockStarts []ir.Op
	for _, op := range ops {
		switch op.Kind {
		case ir.OpIf:
			ifOp = op
		case ir.OpBlockStart:
			blockStarts = append(blockStarts, op)
		}
	}
	require.Equal(t, ir.OpIf, ifOp.Kind)
	assert.True(t, ifOp.HasElse)
	assert.NotZero(t, ifOp.StartLabel)
	assert.NotZero(t, ifOp.ElseLabel)
	assert.NotZero(t, ifOp.EndLabel)
	require.Len(t, blockStarts, 2, "then and else arms each get a block")
	assert.False(t, blockStarts[0].IsElse)
	assert.True(t, blockStarts[1].IsElse, "the second arm must be marked as the else block")
}

func TestCompoundAssignVariants(t *testing.T) {
	m := lower(t, `
struct S { v: float; }
fn f(s: S, x: float) {
	x += 1.0;
	x *= 2.0;
	s.v -= 3.0;
	s.v /= 4.0;
}`)

	ops := code(t, m, "f")
	var found []ir.OpKind
	for _, op := range ops {
		switch op.Kind {
		case ir.OpAddAndStoreVariable, ir.OpMulAndStoreVariable, ir.OpSubAndStoreMember, ir.OpDivAndStoreMember:
			found = append(found, op.Kind)
		}
	}
	assert.Equal(t, []ir.OpKind{
		ir.OpAddAndStoreVariable, ir.OpMulAndStoreVariable,
		ir.OpSubAndStoreMember, ir.OpDivAndStoreMember,
	}, found)
}

func TestSwizzleChainIndices(t *testing.T) {
	m := lower(t, "struct V { pos: float4; } fn f(v: V) -> float3 { return v.pos.xyz; }")

	ops := code(t, m, "f")
	load := ops[0]
	require.Equal(t, ir.OpLoadMember, load.Kind)
	assert.Equal(t, []uint32{0, 0, 1, 2}, load.Indices, "member ordinal then swizzle components")
}

func TestArrayIndexChain(t *testing.T) {
	m := lower(t, `
struct Bones { mats: float4x4[64]; }
fn f(b: Bones) -> float4x4 { return b.mats[3]; }`)

	ops := code(t, m, "f")
	load := ops[0]
	require.Equal(t, ir.OpLoadMember, load.Kind)
	assert.Equal(t, []uint32{0, 3}, load.Indices)
	assert.Equal(t, []bool{false, true}, load.IndexIsArray)
}

func TestLogicalLowersToPlainAndOr(t *testing.T) {
	m := lower(t, "fn f(a: bool, b: bool) -> bool { return a && b || a; }")

	ops := code(t, m, "f")
	assert.Equal(t, []ir.OpKind{ir.OpAnd, ir.OpOr, ir.OpReturn}, kinds(ops))
}

func TestCallLowering(t *testing.T) {
	m := lower(t, `
const tex: tex2d;
const samp: sampler;
fn f(uv: float2) -> float4 { return sample(tex, samp, uv); }`)

	ops := code(t, m, "f")
	call := ops[0]
	require.Equal(t, ir.OpCall, call.Kind)
	assert.Equal(t, "sample", m.Names.String(call.Func))
	require.Len(t, call.Args, 3)
}

func TestConstructorLowersAsCall(t *testing.T) {
	m := lower(t, "fn f(p: float3) -> float4 { return float4(p, 1.0); }")

	ops := code(t, m, "f")
	var call ir.Op
	for _, op := range ops {
		if op.Kind == ir.OpCall {
			call = op
		}
	}
	require.Equal(t, ir.OpCall, call.Kind)
	assert.Equal(t, "float4", m.Names.String(call.Func))
}

func TestReturnWithoutValue(t *testing.T) {
	m := lower(t, "fn f() { return; }")

	ops := code(t, m, "f")
	require.Len(t, ops, 1)
	assert.Equal(t, ir.OpReturn, ops[0].Kind)
	assert.False(t, ops[0].HasValue)
}

func TestEveryUseHasPriorDef(t *testing.T) {
	// Validate is already run by lower; this input stresses nesting.
	lower(t, `
struct S { a: float; b: float2; }
fn g(x: float) -> float { return x; }
fn f(s: S) -> float {
	mut acc = 0.0;
	mut i = 0.0;
	while (i < 4.0) {
		if (s.a > 0.5) {
			acc += g(s.b.x);
		} else {
			acc += s.b.y;
		}
		i += 1.0;
	}
	return acc;
}`)
}

func TestVarIDsNotReusedAcrossFunctions(t *testing.T) {
	m := lower(t, "fn f() { let a = 1.0; } fn g() { let b = 2.0; }")

	seen := map[ir.VarID]string{}
	for _, fn := range m.Functions() {
		name := m.Names.String(fn.Name)
		for i := range fn.Code {
			op := fn.Code[i]
			if def := op.Defines(); def != 0 {
				if prev, dup := seen[def]; dup {
					t.Fatalf("id %d defined in both %s and %s", def, prev, name)
				}
				seen[def] = name
			}
		}
	}
}
