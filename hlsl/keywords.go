// Copyright 2026 The Kong Shade Authors
// SPDX-License-Identifier: MIT

package hlsl

// reservedKeywords are HLSL reserved words a kong identifier must not
// collide with. FXC keywords plus the common intrinsic names users
// actually hit.
var reservedKeywords = map[string]struct{}{
	"AppendStructuredBuffer":  {},
	"BlendState":              {},
	"Buffer":                  {},
	"ByteAddressBuffer":       {},
	"CompileShader":           {},
	"ComputeShader":           {},
	"ConsumeStructuredBuffer": {},
	"DepthStencilState":       {},
	"DepthStencilView":        {},
	"DomainShader":            {},
	"GeometryShader":          {},
	"Hullshader":              {},
	"InputPatch":              {},
	"LineStream":              {},
	"OutputPatch":             {},
	"PixelShader":             {},
	"PointStream":             {},
	"RWBuffer":                {},
	"RWByteAddressBuffer":     {},
	"RWStructuredBuffer":      {},
	"RWTexture1D":             {},
	"RWTexture2D":             {},
	"RWTexture3D":             {},
	"RasterizerState":         {},
	"RenderTargetView":        {},
	"SamplerComparisonState":  {},
	"SamplerState":            {},
	"StructuredBuffer":        {},
	"Texture1D":               {},
	"Texture2D":               {},
	"Texture2DArray":          {},
	"Texture2DMS":             {},
	"Texture3D":               {},
	"TextureCube":             {},
	"TextureCubeArray":        {},
	"TriangleStream":          {},
	"VertexShader":            {},
	"asm":                     {},
	"bool":                    {},
	"break":                   {},
	"case":                    {},
	"cbuffer":                 {},
	"centroid":                {},
	"class":                   {},
	"column_major":            {},
	"compile":                 {},
	"const":                   {},
	"continue":                {},
	"default":                 {},
	"discard":                 {},
	"do":                      {},
	"double":                  {},
	"else":                    {},
	"export":                  {},
	"extern":                  {},
	"false":                   {},
	"float":                   {},
	"for":                     {},
	"fxgroup":                 {},
	"groupshared":             {},
	"half":                    {},
	"if":                      {},
	"in":                      {},
	"inline":                  {},
	"inout":                   {},
	"int":                     {},
	"interface":               {},
	"line":                    {},
	"lineadj":                 {},
	"linear":                  {},
	"matrix":                  {},
	"namespace":               {},
	"nointerpolation":         {},
	"noperspective":           {},
	"out":                     {},
	"packoffset":              {},
	"pass":                    {},
	"point":                   {},
	"precise":                 {},
	"register":                {},
	"return":                  {},
	"row_major":               {},
	"sample":                  {},
	"sampler":                 {},
	"shared":                  {},
	"snorm":                   {},
	"stateblock":              {},
	"static":                  {},
	"string":                  {},
	"struct":                  {},
	"switch":                  {},
	"tbuffer":                 {},
	"technique":               {},
	"texture":                 {},
	"triangle":                {},
	"triangleadj":             {},
	"true":                    {},
	"typedef":                 {},
	"uniform":                 {},
	"unorm":                   {},
	"unsigned":                {},
	"vector":                  {},
	"void":                    {},
	"volatile":                {},
	"while":                   {},
}

// sanitize escapes an identifier that collides with an HLSL reserved
// word. Generated SSA names are underscore-prefixed and never
// collide.
func sanitize(name string) string {
	if _, reserved := reservedKeywords[name]; reserved {
		return name + "_"
	}
	return name
}
