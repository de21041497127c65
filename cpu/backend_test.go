// Copyright 2026 The Kong Shade Authors
// SPDX-License-Identifier: MIT

package cpu

import (
	"strings"
	"testing"

	"github.com/kong-shade/kongc/emit"
	"github.com/kong-shade/kongc/ir"
	"github.com/kong-shade/kongc/names"
	"github.com/kong-shade/kongc/parser"
	"github.com/kong-shade/kongc/sema"
	"github.com/kong-shade/kongc/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, source, entry string) string {
	t.Helper()
	pool := names.NewPool()
	m := ir.NewModule(pool, types.NewRegistry(pool))
	decls, err := parser.Parse("test.kong", source)
	require.NoError(t, err)
	require.NoError(t, sema.Analyze(m, "test.kong", decls))
	require.NoError(t, emit.Module(m, "test.kong"))

	fid, ok := m.FunctionByName(m.Names.Intern(entry))
	require.True(t, ok)
	out, err := Compile(m, fid, nil)
	require.NoError(t, err)
	return out
}

func TestStructTypedef(t *testing.T) {
	out := compile(t, "struct S { x: float; v: float3; } fn id(s: S) -> float { return s.x; }", "id")

	assert.Contains(t, out, "typedef struct S {")
	assert.Contains(t, out, "kong_float3 v;")
	assert.Contains(t, out, "float id(S _1)")
	assert.Contains(t, out, "_1.x")
}

func TestComputeDispatchWrapper(t *testing.T) {
	out := compile(t, `
#[compute]
#[threads(8, 4, 2)]
fn cs() { let id = dispatch_thread_id(); }`, "cs")

	assert.Contains(t, out, "static void cs_thread(kong_uint3 _kong_group_id")
	assert.Contains(t, out, "void cs(uint32_t workgroup_count_x, uint32_t workgroup_count_y, uint32_t workgroup_count_z)")
	assert.Contains(t, out, "tx < 8")
	assert.Contains(t, out, "ty < 4")
	assert.Contains(t, out, "tz < 2")
	assert.Contains(t, out, "cs_thread(group_id, thread_id, dispatch_id, group_index);")
	assert.Contains(t, out, "= _kong_dispatch_thread_id;")
}

func TestIfElse(t *testing.T) {
	out := compile(t, `
fn f(x: float) -> float {
	mut y = 0.0;
	if (x < 0.5) {
		y = 1.0;
	} else {
		y = 2.0;
	}
	return y;
}`, "f")

	assert.Contains(t, out, "\t}\n\telse\n\t{\n", "the else arm must be guarded by the else keyword")
	assert.Equal(t, 1, strings.Count(out, "else"))
}

func TestVectorArithmeticUsesHelpers(t *testing.T) {
	out := compile(t, "fn f(a: float3, b: float3) -> float3 { return a + b; }", "f")

	assert.Contains(t, out, "kong_float3_add(_1, _2)")
}

func TestVectorConstructorUsesMakeHelper(t *testing.T) {
	out := compile(t, "fn f(p: float3) -> float4 { return float4(p, 1.0); }", "f")

	assert.Contains(t, out, "kong_make_float4(")
}

func TestSamplingRejected(t *testing.T) {
	pool := names.NewPool()
	m := ir.NewModule(pool, types.NewRegistry(pool))
	decls, err := parser.Parse("test.kong", `
const tex: tex2d;
const samp: sampler;
fn f(uv: float2) -> float4 { return sample(tex, samp, uv); }`)
	require.NoError(t, err)
	require.NoError(t, sema.Analyze(m, "test.kong", decls))
	require.NoError(t, emit.Module(m, "test.kong"))

	fid, _ := m.FunctionByName(m.Names.Intern("f"))
	_, err = Compile(m, fid, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CPU path")
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "kong_cs.c", Filename("cs"))
}
