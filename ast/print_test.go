package ast_test

import (
	"testing"

	"github.com/kong-shade/kongc/ast"
	"github.com/kong-shade/kongc/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Printing a parsed module and reparsing it must reach a fixpoint:
// print(parse(print(parse(src)))) == print(parse(src)).
func roundTrip(t *testing.T, source string) {
	t.Helper()
	first, err := parser.Parse("test.kong", source)
	require.NoError(t, err)
	printed := ast.Print(first)

	second, err := parser.Parse("test.kong", printed)
	require.NoError(t, err, "printed source must reparse:\n%s", printed)
	assert.Equal(t, printed, ast.Print(second), "print must be a fixpoint")
}

func TestRoundTripStructsAndFunctions(t *testing.T) {
	roundTrip(t, `
struct S { x: float; v: float3; }
fn id(s: S) -> float { return s.x; }
`)
}

func TestRoundTripControlFlow(t *testing.T) {
	roundTrip(t, `
fn f(x: float) -> float {
	mut acc = 0.0;
	mut i = 0.0;
	while (i < 10.0) {
		if (x > 0.5) {
			acc += x * 2.0;
		} else {
			acc -= 1.0;
		}
		i += 1.0;
	}
	return acc;
}
`)
}

func TestRoundTripAttributesAndGlobals(t *testing.T) {
	roundTrip(t, `
#[set(lights)]
const lightData: float4;
const BlendOne: int = 0;
#[vertex]
fn vs(p: float4) -> float4 { return p; }
#[compute]
#[threads(64, 1, 1)]
fn cs() { let id = dispatch_thread_id(); }
`)
}

func TestRoundTripExpressions(t *testing.T) {
	roundTrip(t, `
fn f(v: float4, b: bool) -> float {
	let a = (v.x + v.y) * v.z - -v.w;
	let c = !b && v.x < 1.0 || v.y >= 0.0;
	let d = float4(v.xyz, 1.0);
	let e = v.rgba;
	return a;
}
`)
}

func TestRoundTripPipe(t *testing.T) {
	roundTrip(t, `
#[vertex]
fn vs(p: float4) -> float4 { return p; }
#[fragment]
fn fs(p: float4) -> float4 { return p; }
#[pipe]
struct P {
	vertex = vs;
	fragment = fs;
	depth_write = true;
}
`)
}

func TestPrintParenthesizesNesting(t *testing.T) {
	decls, err := parser.Parse("test.kong", "fn f() { let x = 1.0 + 2.0 * 3.0; }")
	require.NoError(t, err)

	printed := ast.Print(decls)
	assert.Contains(t, printed, "(1.0 + (2.0 * 3.0))")
}
