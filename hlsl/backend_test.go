// Copyright 2026 The Kong Shade Authors
// SPDX-License-Identifier: MIT

package hlsl

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

func TestSimpleFunction(t *testing.T) {
	out := compile(t, "struct S { x: float; } fn id(s: S) -> float { return s.x; }", "id")

	assert.Contains(t, out, "struct S\n{\n\tfloat x;\n};")
	assert.Contains(t, out, "float id(S _1)")
	assert.Contains(t, out, "_1.x")
	assert.Contains(t, out, "return _2;")
}

func TestVertexSemantics(t *testing.T) {
	out := compile(t, `
struct In { pos: float3; }
struct Out { pos: float4; }
#[vertex]
fn vs(i: In) -> Out {
	return Out(float4(i.pos, 1.0));
}`, "vs")

	assert.Contains(t, out, "float4 pos : SV_POSITION;")
	assert.Contains(t, out, "float3 pos : TEXCOORD0;")
	assert.Contains(t, out, "Out vs(In _1)")
	assert.Contains(t, out, "float4(")
}

func TestFragmentTarget(t *testing.T) {
	out := compile(t, `
#[fragment]
fn fs(color: float4) -> float4 { return color; }`, "fs")

	assert.Contains(t, out, ") : SV_TARGET0")
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

func TestWhileLowering(t *testing.T) {
	out := compile(t, "fn f() { mut i = 0.0; while (i < 10.0) { i = i + 1.0; } }", "f")

	assert.Contains(t, out, "while (true)")
	assert.Contains(t, out, "break;")
}

func TestSampleIntrinsic(t *testing.T) {
	out := compile(t, `
const tex: tex2d;
const samp: sampler;
#[fragment]
fn fs(uv: float2) -> float4 { return sample(tex, samp, uv); }`, "fs")

	assert.Contains(t, out, ": register(t0); // tex")
	assert.Contains(t, out, ": register(s0); // samp")
	assert.Contains(t, out, ".Sample(")
}

func TestCBufferRegister(t *testing.T) {
	out := compile(t, `
struct Constants { mvp: float4x4; }
const constants: Constants;
#[vertex]
fn vs(p: float4) -> float4 { return constants.mvp * p; }`, "vs")

	assert.Contains(t, out, "cbuffer constants : register(b0)")
	assert.Contains(t, out, "Constants _")
}

func TestComputeNumthreads(t *testing.T) {
	out := compile(t, `
#[compute]
#[threads(8, 4, 1)]
fn cs() { let id = dispatch_thread_id(); }`, "cs")

	assert.Contains(t, out, "[numthreads(8, 4, 1)]")
	assert.Contains(t, out, "SV_DispatchThreadID")
}

func TestRegisterCounters(t *testing.T) {
	pool := names.NewPool()
	m := ir.NewModule(pool, types.NewRegistry(pool))
	decls, err := parser.Parse("test.kong", `
struct A { x: float; }
const a: A;
const t0: tex2d;
const s0: sampler;
const t1: tex2d;
const b: A;
`)
	require.NoError(t, err)
	require.NoError(t, sema.Analyze(m, "test.kong", decls))

	targets := AssignRegisters(m)
	bySlot := map[RegisterSpace][]uint32{}
	for _, target := range targets {
		bySlot[target.Space] = append(bySlot[target.Space], target.Slot)
	}
	assert.ElementsMatch(t, []uint32{0, 1}, bySlot[SpaceCBuffer])
	assert.ElementsMatch(t, []uint32{0, 1}, bySlot[SpaceTexture])
	assert.ElementsMatch(t, []uint32{0}, bySlot[SpaceSampler])
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "kong_vs.hlsl", Filename("vs"))
}

func TestKeywordSanitize(t *testing.T) {
	out := compile(t, "struct register { x: float; } fn f(r: register) -> float { return r.x; }", "f")

	assert.Contains(t, out, "struct register_")
	assert.Contains(t, out, "float f(register_ _1)")
}

func TestDispatchIntrinsicCall(t *testing.T) {
	out := compile(t, `
#[compute]
#[threads(1, 1, 1)]
fn cs() { let gid = group_id(); }`, "cs")

	assert.Contains(t, out, "= _kong_group_id;")
}
