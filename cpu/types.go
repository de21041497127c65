// Copyright 2026 The Kong Shade Authors
// SPDX-License-Identifier: MIT

package cpu

import (
	"github.com/kong-shade/kongc/ir"
	"github.com/kong-shade/kongc/types"
)

// typeName spells a kong type in the generated C, leaning on the
// kong_* vector typedefs from the cpucompute header.
func typeName(m *ir.Module, id types.ID) string {
	t, ok := m.Types.Lookup(id)
	if !ok {
		return "void"
	}
	switch t.Kind {
	case types.KindFloat:
		return "float"
	case types.KindFloat2:
		return "kong_float2"
	case types.KindFloat3:
		return "kong_float3"
	case types.KindFloat4:
		return "kong_float4"
	case types.KindFloat3x3:
		return "kong_float3x3"
	case types.KindFloat4x4:
		return "kong_float4x4"
	case types.KindInt:
		return "int32_t"
	case types.KindInt2:
		return "kong_int2"
	case types.KindInt3:
		return "kong_int3"
	case types.KindInt4:
		return "kong_int4"
	case types.KindUint:
		return "uint32_t"
	case types.KindUint2:
		return "kong_uint2"
	case types.KindUint3:
		return "kong_uint3"
	case types.KindUint4:
		return "kong_uint4"
	case types.KindBool:
		return "bool"
	case types.KindStruct:
		return m.Names.String(t.Name)
	case types.KindArray:
		return typeName(m, t.Base)
	default:
		return "void"
	}
}
