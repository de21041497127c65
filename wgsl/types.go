// Copyright 2026 The Kong Shade Authors
// SPDX-License-Identifier: MIT

package wgsl

import (
	"github.com/kong-shade/kongc/ir"
	"github.com/kong-shade/kongc/types"
)

// typeName spells a kong type in WGSL.
func typeName(m *ir.Module, id types.ID) string {
	t, ok := m.Types.Lookup(id)
	if !ok {
		return "void"
	}
	switch t.Kind {
	case types.KindFloat:
		return "f32"
	case types.KindFloat2:
		return "vec2<f32>"
	case types.KindFloat3:
		return "vec3<f32>"
	case types.KindFloat4:
		return "vec4<f32>"
	case types.KindFloat3x3:
		return "mat3x3<f32>"
	case types.KindFloat4x4:
		return "mat4x4<f32>"
	case types.KindInt:
		return "i32"
	case types.KindInt2:
		return "vec2<i32>"
	case types.KindInt3:
		return "vec3<i32>"
	case types.KindInt4:
		return "vec4<i32>"
	case types.KindUint:
		return "u32"
	case types.KindUint2:
		return "vec2<u32>"
	case types.KindUint3:
		return "vec3<u32>"
	case types.KindUint4:
		return "vec4<u32>"
	case types.KindBool:
		return "bool"
	case types.KindTex2D:
		return "texture_2d<f32>"
	case types.KindTex2DArray:
		return "texture_2d_array<f32>"
	case types.KindTexCube:
		return "texture_cube<f32>"
	case types.KindSampler:
		return "sampler"
	case types.KindStruct:
		return m.Names.String(t.Name)
	case types.KindArray:
		return typeName(m, t.Base)
	default:
		return t.Kind.String()
	}
}
