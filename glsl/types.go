// Copyright 2026 The Kong Shade Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"github.com/kong-shade/kongc/ir"
	"github.com/kong-shade/kongc/types"
)

// typeName spells a kong type in GLSL.
func typeName(m *ir.Module, id types.ID) string {
	t, ok := m.Types.Lookup(id)
	if !ok {
		return "void"
	}
	switch t.Kind {
	case types.KindFloat:
		return "float"
	case types.KindFloat2:
		return "vec2"
	case types.KindFloat3:
		return "vec3"
	case types.KindFloat4:
		return "vec4"
	case types.KindFloat3x3:
		return "mat3"
	case types.KindFloat4x4:
		return "mat4"
	case types.KindInt:
		return "int"
	case types.KindInt2:
		return "ivec2"
	case types.KindInt3:
		return "ivec3"
	case types.KindInt4:
		return "ivec4"
	case types.KindUint:
		return "uint"
	case types.KindUint2:
		return "uvec2"
	case types.KindUint3:
		return "uvec3"
	case types.KindUint4:
		return "uvec4"
	case types.KindBool:
		return "bool"
	case types.KindTex2D:
		return "sampler2D"
	case types.KindTex2DArray:
		return "sampler2DArray"
	case types.KindTexCube:
		return "samplerCube"
	case types.KindStruct:
		return m.Names.String(t.Name)
	case types.KindArray:
		return typeName(m, t.Base)
	default:
		return t.Kind.String()
	}
}
