// Copyright 2026 The Kong Shade Authors
// SPDX-License-Identifier: MIT

package glsl

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

func TestVersionHeader(t *testing.T) {
	out := compile(t, "#[fragment]\nfn fs(v: float4) -> float4 { return v; }", "fs")
	assert.Contains(t, out, "#version 450")
}

func TestTypeSpellings(t *testing.T) {
	out := compile(t, `
struct S { a: float2; b: float4x4; c: uint3; }
#[fragment]
fn fs(v: float4) -> float4 { let x = v.xy; return v; }`, "fs")

	assert.Contains(t, out, "vec2 a;")
	assert.Contains(t, out, "mat4 b;")
	assert.Contains(t, out, "uvec3 c;")
	assert.Contains(t, out, "vec2 _")
}

func TestVertexMainWrapper(t *testing.T) {
	out := compile(t, `
struct In { pos: float3; uv: float2; }
struct Out { pos: float4; uv: float2; }
#[vertex]
fn vs(i: In) -> Out {
	return Out(float4(i.pos, 1.0), i.uv);
}`, "vs")

	assert.Contains(t, out, "layout(location = 0) in vec3 _kong_in_pos;")
	assert.Contains(t, out, "layout(location = 1) in vec2 _kong_in_uv;")
	assert.Contains(t, out, "layout(location = 0) out vec2 _kong_out_uv;")
	assert.Contains(t, out, "Out vs(In _1)")
	assert.Contains(t, out, "void main()")
	assert.Contains(t, out, "gl_Position = kong_out.pos;")
	assert.Contains(t, out, "_kong_out_uv = kong_out.uv;")
}

func TestFragmentMainWrapper(t *testing.T) {
	out := compile(t, `
struct V { pos: float4; uv: float2; }
#[fragment]
fn fs(v: V) -> float4 { return float4(v.uv, 0.0, 1.0); }`, "fs")

	assert.Contains(t, out, "layout(location = 0) out vec4 _kong_frag_color;")
	assert.Contains(t, out, "kong_in.pos = gl_FragCoord;")
	assert.Contains(t, out, "_kong_frag_color = fs(kong_in);")
}

func TestConstructorRespelled(t *testing.T) {
	out := compile(t, `
#[fragment]
fn fs(v: float4) -> float4 { return float4(v.xyz, 1.0); }`, "fs")

	assert.Contains(t, out, "vec4(")
	assert.NotContains(t, out, "= float4(")
}

func TestTextureSampling(t *testing.T) {
	out := compile(t, `
const tex: tex2d;
const samp: sampler;
struct V { pos: float4; uv: float2; }
#[fragment]
fn fs(v: V) -> float4 { return sample(tex, samp, v.uv); }`, "fs")

	assert.Contains(t, out, "uniform sampler2D _")
	assert.Contains(t, out, "texture(_")
}

func TestUniformBlock(t *testing.T) {
	out := compile(t, `
struct Constants { mvp: float4x4; }
const constants: Constants;
struct In { pos: float3; }
struct Out { pos: float4; }
#[vertex]
fn vs(i: In) -> Out { return Out(constants.mvp * float4(i.pos, 1.0)); }`, "vs")

	assert.Contains(t, out, "std140) uniform constants_block")
}

func TestIfElse(t *testing.T) {
	out := compile(t, `
#[fragment]
fn fs(v: float4) -> float4 {
	mut y = 0.0;
	if (v.x < 0.5) {
		y = 1.0;
	} else {
		y = 2.0;
	}
	return float4(y, y, y, 1.0);
}`, "fs")

	assert.Contains(t, out, "\t}\n\telse\n\t{\n", "the else arm must be guarded by the else keyword")
	assert.Equal(t, 1, strings.Count(out, "else"))
}

func TestWhileShape(t *testing.T) {
	out := compile(t, `
#[fragment]
fn fs(v: float4) -> float4 {
	mut i = 0.0;
	while (i < 4.0) { i += 1.0; }
	return v;
}`, "fs")

	assert.Contains(t, out, "while (true)")
	assert.Contains(t, out, "break;")
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "kong_vs.glsl", Filename("vs"))
}
