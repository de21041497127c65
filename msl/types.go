// Copyright 2026 The Kong Shade Authors
// SPDX-License-Identifier: MIT

package msl

import (
	"github.com/kong-shade/kongc/ir"
	"github.com/kong-shade/kongc/types"
)

// typeName spells a kong type in MSL.
func typeName(m *ir.Module, id types.ID) string {
	t, ok := m.Types.Lookup(id)
	if !ok {
		return "void"
	}
	switch t.Kind {
	case types.KindFloat3x3:
		return "float3x3"
	case types.KindFloat4x4:
		return "float4x4"
	case types.KindTex2D:
		return "texture2d<float>"
	case types.KindTex2DArray:
		return "texture2d_array<float>"
	case types.KindTexCube:
		return "texturecube<float>"
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
