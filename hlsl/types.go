// Copyright 2026 The Kong Shade Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"github.com/kong-shade/kongc/ir"
	"github.com/kong-shade/kongc/types"
)

// typeName spells a kong type in HLSL. The scalar, vector, and matrix
// built-ins share kong's spelling, so only the opaque resource types
// and user structs need mapping.
func typeName(m *ir.Module, id types.ID) string {
	t, ok := m.Types.Lookup(id)
	if !ok {
		return "void"
	}
	switch t.Kind {
	case types.KindTex2D:
		return "Texture2D"
	case types.KindTex2DArray:
		return "Texture2DArray"
	case types.KindTexCube:
		return "TextureCube"
	case types.KindSampler:
		return "SamplerState"
	case types.KindBVH:
		return "RaytracingAccelerationStructure"
	case types.KindStruct:
		return sanitize(m.Names.String(t.Name))
	case types.KindArray:
		return typeName(m, t.Base)
	default:
		return t.Kind.String()
	}
}
