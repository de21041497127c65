package compiler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pipelineSource = `
struct Constants { mvp: float4x4; }
const constants: Constants;

struct In { pos: float3; uv: float2; }
struct Out { pos: float4; uv: float2; }

#[vertex]
fn vs(i: In) -> Out {
	return Out(constants.mvp * float4(i.pos, 1.0), i.uv);
}

const tex: tex2d;
const samp: sampler;

struct V { pos: float4; uv: float2; }

#[fragment]
fn fs(v: V) -> float4 {
	return sample(tex, samp, v.uv);
}

const BlendOne: int = 0;

#[pipe]
struct render {
	vertex = vs;
	fragment = fs;
	depth_write = true;
	blend_source = BlendOne;
}
`

func TestFullPipeline(t *testing.T) {
	c := New()
	require.NoError(t, c.Compile("shader.kong", pipelineSource))

	require.Len(t, c.Module.EntryPoints(), 2)
	require.Len(t, c.Module.Pipes(), 1)

	for _, target := range []Target{TargetHLSL, TargetMSL, TargetGLSL, TargetWGSL} {
		outputs, err := c.Emit(target)
		require.NoError(t, err, "target %d", target)
		assert.Len(t, outputs, 2)
	}
}

// The SPIR-V emitter is vertex/fragment-IO focused: texturing stays
// on the textual backends, so this source keeps the fragment stage
// arithmetic-only.
const spirvSource = `
struct In { pos: float3; }
struct Out { pos: float4; }

#[vertex]
fn vs(i: In) -> Out {
	return Out(float4(i.pos, 1.0));
}

#[fragment]
fn fs(v: float4) -> float4 {
	return v;
}
`

func TestSPIRVOutputsIncludeEmbedding(t *testing.T) {
	c := New()
	require.NoError(t, c.Compile("shader.kong", spirvSource))

	outputs, err := c.Emit(TargetSPIRV)
	require.NoError(t, err)

	names := make([]string, 0, len(outputs))
	for _, o := range outputs {
		names = append(names, o.Filename)
	}
	assert.Contains(t, names, "kong_vs.spirv")
	assert.Contains(t, names, "kong_vs.h")
	assert.Contains(t, names, "kong_vs.c")
	assert.Contains(t, names, "kong_fs.spirv")
}

func TestOutputFilenames(t *testing.T) {
	c := New()
	require.NoError(t, c.Compile("shader.kong", pipelineSource))

	outputs, err := c.Emit(TargetHLSL)
	require.NoError(t, err)
	for _, o := range outputs {
		assert.True(t, strings.HasPrefix(o.Filename, "kong_"))
		assert.True(t, strings.HasSuffix(o.Filename, ".hlsl"))
	}
}

func TestCompileErrorIsPositionTagged(t *testing.T) {
	c := New()
	err := c.Compile("bad.kong", "fn f() {\n\tlet x = ;\n}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.kong:2:")
}

func TestSemanticErrorSurfaces(t *testing.T) {
	c := New()
	err := c.Compile("bad.kong", "fn f(x: int) { return x; }")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not return a value")
}

func TestNoEntryPoints(t *testing.T) {
	c := New()
	require.NoError(t, c.Compile("lib.kong", "fn helper(x: float) -> float { return x; }"))

	_, err := c.Emit(TargetHLSL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no entry points")
}

func TestParseTarget(t *testing.T) {
	for selector, want := range map[string]Target{
		"hlsl": TargetHLSL, "msl": TargetMSL, "metal": TargetMSL,
		"glsl": TargetGLSL, "wgsl": TargetWGSL, "cpu": TargetCPU,
		"c": TargetCPU, "spirv": TargetSPIRV,
	} {
		got, err := ParseTarget(selector)
		require.NoError(t, err)
		assert.Equal(t, want, got, selector)
	}
	_, err := ParseTarget("dxbc")
	assert.Error(t, err)
}

func TestIndependentCompilations(t *testing.T) {
	a := New()
	b := New()
	require.NoError(t, a.Compile("a.kong", "struct S { x: float; } fn f(s: S) -> float { return s.x; }"))
	require.NoError(t, b.Compile("b.kong", "struct T { y: float; } fn g(t: T) -> float { return t.y; }"))

	_, aHasT := a.Types.LookupName(a.Names.Intern("T"))
	assert.False(t, aHasT, "compilations must not share registries")
}
