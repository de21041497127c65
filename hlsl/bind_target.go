// Copyright 2026 The Kong Shade Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"github.com/kong-shade/kongc/ir"
	"github.com/kong-shade/kongc/types"
)

// RegisterSpace identifies which D3D register file a binding lives
// in.
type RegisterSpace uint8

const (
	SpaceCBuffer RegisterSpace = iota // b registers
	SpaceTexture                      // t registers
	SpaceSampler                      // s registers
	SpaceUAV                          // u registers
)

// BindTarget is one assigned register.
type BindTarget struct {
	Space RegisterSpace
	Slot  uint32
}

// AssignRegisters walks the descriptor sets in order and hands out
// registers from separate cbuffer/texture/sampler/UAV counters, the
// D3D-style policy. The same assignment feeds the host-integration
// emitter so shader and runtime agree on slots.
func AssignRegisters(m *ir.Module) map[ir.GlobalID]BindTarget {
	out := make(map[ir.GlobalID]BindTarget)
	var cbuffer, texture, sampler, uav uint32

	for _, set := range m.Sets() {
		for _, gid := range set.Globals {
			g := m.Global(gid)
			t, _ := m.Types.Lookup(g.Type.Type)
			switch {
			case t.Kind == types.KindSampler:
				out[gid] = BindTarget{Space: SpaceSampler, Slot: sampler}
				sampler++
			case g.Writable:
				out[gid] = BindTarget{Space: SpaceUAV, Slot: uav}
				uav++
			case t.Kind == types.KindTex2D || t.Kind == types.KindTex2DArray || t.Kind == types.KindTexCube || t.Kind == types.KindBVH:
				out[gid] = BindTarget{Space: SpaceTexture, Slot: texture}
				texture++
			default:
				out[gid] = BindTarget{Space: SpaceCBuffer, Slot: cbuffer}
				cbuffer++
			}
		}
	}
	return out
}
