// Copyright 2026 The Kong Shade Authors
// SPDX-License-Identifier: MIT

package wgsl

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

func TestVertexEntry(t *testing.T) {
	out := compile(t, `
struct In { pos: float3; }
struct Out { pos: float4; }
#[vertex]
fn vs(i: In) -> Out { return Out(float4(i.pos, 1.0)); }`, "vs")

	assert.Contains(t, out, "@builtin(position) pos: vec4<f32>,")
	assert.Contains(t, out, "@location(0) pos: vec3<f32>,")
	assert.Contains(t, out, "@vertex\nfn vs(_1: In) -> Out {")
	assert.Contains(t, out, "vec4<f32>(")
}

func TestFragmentEntry(t *testing.T) {
	out := compile(t, `
#[fragment]
fn fs(color: float4) -> float4 { return color; }`, "fs")

	assert.Contains(t, out, "@fragment")
	assert.Contains(t, out, "@location(0) _1: vec4<f32>")
	assert.Contains(t, out, "-> @location(0) vec4<f32>")
}

func TestDeclarationSyntax(t *testing.T) {
	out := compile(t, "fn f() { mut x = 1.5; x += 1.0; }", "f")

	assert.Contains(t, out, "let _2: f32 = 1.5;")
	assert.Contains(t, out, "var _1: f32;")
	assert.Contains(t, out, "_1 += _3;")
}

func TestIfElse(t *testing.T) {
	out := compile(t, `
fn g(x: float) -> float {
	mut y = 0.0;
	if (x < 0.5) {
		y = 1.0;
	} else {
		y = 2.0;
	}
	return y;
}`, "g")

	assert.Contains(t, out, "\t}\n\telse\n\t{\n", "the else arm must be guarded by the else keyword")
	assert.Equal(t, 1, strings.Count(out, "else"))
}

func TestWhileShape(t *testing.T) {
	out := compile(t, "fn f() { mut i = 0.0; while (i < 3.0) { i += 1.0; } }", "f")

	assert.Contains(t, out, "while (true)")
	assert.Contains(t, out, "break;")
}

func TestComputeWorkgroupSize(t *testing.T) {
	out := compile(t, `
#[compute]
#[threads(64, 1, 1)]
fn cs() { let id = dispatch_thread_id(); }`, "cs")

	assert.Contains(t, out, "@compute @workgroup_size(64, 1, 1)")
	assert.Contains(t, out, "@builtin(global_invocation_id)")
	assert.Contains(t, out, "= _kong_dispatch_thread_id;")
}

func TestBindings(t *testing.T) {
	out := compile(t, `
struct Constants { mvp: float4x4; }
#[set(frame)]
const constants: Constants;
const tex: tex2d;
const samp: sampler;
#[fragment]
fn fs(uv: float2) -> float4 { return sample(tex, samp, uv); }`, "fs")

	assert.Contains(t, out, "@group(0) @binding(0) var<uniform> _")
	assert.Contains(t, out, "@group(1) @binding(0) var _")
	assert.Contains(t, out, "@group(1) @binding(1) var _")
	assert.Contains(t, out, "textureSample(")
}

func TestSampleLod(t *testing.T) {
	out := compile(t, `
const tex: tex2d;
const samp: sampler;
#[fragment]
fn fs(uv: float2) -> float4 { return sample_lod(tex, samp, uv, 2.0); }`, "fs")

	assert.Contains(t, out, "textureSampleLevel(")
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "kong_cs.wgsl", Filename("cs"))
}
